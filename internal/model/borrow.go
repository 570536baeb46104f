package model

import "time"

// BorrowRecord is one borrow transaction. Item and owner fields are a
// snapshot taken when the request was made.
type BorrowRecord struct {
	ID               string    `json:"id"`
	BorrowerID       string    `json:"borrower_id"`
	BorrowerName     string    `json:"borrower_name"`
	ItemID           string    `json:"item_id"`
	ItemName         string    `json:"item_name"`
	OwnerID          string    `json:"owner_id"`
	OwnerName        string    `json:"owner_name"`
	OwnerPhone       string    `json:"owner_phone"`
	RentPerHour      float64   `json:"rent_per_hour"`
	BorrowerLocation string    `json:"borrower_location"`
	LenderLocation   string    `json:"lender_location"`
	DirectionsLink   string    `json:"directions_link"`
	Status           string    `json:"status"`
	BorrowDate       time.Time `json:"borrow_date"`
}

// Borrow statuses.
const (
	BorrowStatusRequested = "requested"
	BorrowStatusApproved  = "approved"
	BorrowStatusBorrowed  = "borrowed"
	BorrowStatusReturned  = "returned"
)

// IsAssignableBorrowStatus reports whether an owner may set status to s.
// "requested" is only ever set at creation.
func IsAssignableBorrowStatus(s string) bool {
	switch s {
	case BorrowStatusApproved, BorrowStatusBorrowed, BorrowStatusReturned:
		return true
	}
	return false
}
