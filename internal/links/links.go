// Package links derives map and direction URLs from free-text locations.
// Locations are encoded, never validated as real places.
package links

import (
	"net/url"
	"strings"
)

const (
	mapsSearchBase = "https://www.google.com/maps/search/?api=1&query="
	directionsBase = "https://www.google.com/maps/dir/?api=1"
)

// MapsLink returns a map search URL for location, or "" if location is empty.
func MapsLink(location string) string {
	if location == "" {
		return ""
	}
	return mapsSearchBase + url.QueryEscape(location)
}

// DirectionsLink returns a route URL between two locations, or "" if either
// endpoint is empty.
func DirectionsLink(from, to string) string {
	if from == "" || to == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(directionsBase)
	b.WriteString("&origin=")
	b.WriteString(url.QueryEscape(from))
	b.WriteString("&destination=")
	b.WriteString(url.QueryEscape(to))
	return b.String()
}
