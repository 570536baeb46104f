// Package upload validates item image uploads and names them for storage.
package upload

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/borrowez/borrowez/internal/id"
)

// MaxSize is the largest accepted upload in bytes.
const MaxSize = 10 * 1024

// AllowedExtensions lists accepted file extensions, lowercase, without dot.
var AllowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
}

// Rejection reasons.
var (
	ErrBadExtension = fmt.Errorf("invalid file type, allowed types: png, jpg, jpeg, gif")
	ErrTooLarge     = fmt.Errorf("file size must be at most %d bytes", MaxSize)
)

// Extension returns the lowercase extension of filename without the dot,
// or "" if there is none.
func Extension(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(filename[i+1:])
}

// Validate accepts filename and byteSize or returns the reason for rejection.
func Validate(filename string, byteSize int64) error {
	if !AllowedExtensions[Extension(filename)] {
		return ErrBadExtension
	}
	if byteSize > MaxSize {
		return ErrTooLarge
	}
	return nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SecureFilename reduces an uploaded file name to a safe ASCII base name.
// Accents are folded, path components dropped, whitespace turned into
// underscores and every other unsafe character removed. The result may be
// empty.
func SecureFilename(name string) string {
	folded, _, err := transform.String(stripMarks, name)
	if err != nil {
		folded = name
	}

	folded = strings.ReplaceAll(folded, `\`, "/")
	folded = path.Base("/" + folded)

	folded = strings.Join(strings.Fields(folded), "_")
	folded = unsafeFilenameChars.ReplaceAllString(folded, "")
	return strings.Trim(folded, "._")
}

// StoredName builds a collision-resistant name for an accepted upload:
// a timestamp prefix, the sanitised original name and a short random suffix
// before the extension.
func StoredName(original string, now time.Time) (string, error) {
	suffix, err := id.Short(6)
	if err != nil {
		return "", err
	}

	ext := unsafeFilenameChars.ReplaceAllString(Extension(original), "")
	base := SecureFilename(original)
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	if base == "" {
		base = "image"
	}

	return fmt.Sprintf("%s_%s_%s.%s", now.Format("20060102_150405"), base, suffix, ext), nil
}
