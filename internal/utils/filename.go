package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const maxFileNameBytes = 255

var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName checks that a caller-supplied name can be used as a single
// key segment under originals/ and resized/. Valid names are returned as is.
func SanitizeFileName(name string) (string, error) {
	switch {
	case strings.TrimSpace(name) == "":
		return "", fmt.Errorf("%w: empty name", ErrInvalidFileName)
	case len(name) > maxFileNameBytes:
		return "", fmt.Errorf("%w: longer than %d bytes", ErrInvalidFileName, maxFileNameBytes)
	case !utf8.ValidString(name):
		return "", fmt.Errorf("%w: not valid UTF-8", ErrInvalidFileName)
	case strings.ContainsAny(name, `/\`):
		return "", fmt.Errorf("%w: contains a path separator", ErrInvalidFileName)
	case strings.Contains(name, ".."):
		return "", fmt.Errorf("%w: contains a traversal sequence", ErrInvalidFileName)
	case name == ".":
		return "", fmt.Errorf("%w: reserved name", ErrInvalidFileName)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("%w: contains control characters", ErrInvalidFileName)
		}
	}
	return name, nil
}

// GenerateFileName builds image-<epoch millis>.<ext>.
func GenerateFileName(now time.Time, ext string) string {
	return fmt.Sprintf("image-%d.%s", now.UnixMilli(), ext)
}
