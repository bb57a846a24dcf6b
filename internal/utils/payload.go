package utils

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var dataURIPattern = regexp.MustCompile(`^data:image/(png|jpeg|jpg);base64,(.+)$`)

var ErrInvalidBase64 = errors.New("invalid base64 image data")

// StripDataURI removes a "data:image/<png|jpeg|jpg>;base64," prefix and
// returns the payload. Anything else is returned unchanged.
func StripDataURI(image string) string {
	matches := dataURIPattern.FindStringSubmatch(image)
	if matches == nil {
		return image
	}
	return matches[2]
}

// DecodeBase64Image decodes a base64 image string, with or without data URI
// prefix. Unpadded input is accepted; any other malformed input is an error.
func DecodeBase64Image(image string) ([]byte, error) {
	payload := StripDataURI(image)

	data, err := base64.StdEncoding.DecodeString(payload)
	if err == nil {
		return data, nil
	}
	if !strings.HasSuffix(payload, "=") {
		if raw, rawErr := base64.RawStdEncoding.DecodeString(payload); rawErr == nil {
			return raw, nil
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidBase64, err)
}
