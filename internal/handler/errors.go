package handler

import (
	"errors"
	"net/http"
)

// Kind classifies a pipeline failure so the response status can be chosen in
// one place.
type Kind int

const (
	KindInput Kind = iota + 1
	KindConfig
	KindCollaborator
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindConfig:
		return "config"
	case KindCollaborator:
		return "collaborator"
	default:
		return "unknown"
	}
}

const (
	MsgMissingImage      = "Missing 'image' in request body"
	MsgInvalidJSON       = "Invalid JSON in request body"
	MsgInvalidBase64     = "Invalid base64 image data"
	MsgImageTooLarge     = "Image exceeds maximum size"
	MsgTooManyPixels     = "Image exceeds maximum pixel count"
	MsgUnsupportedFormat = "Unsupported image format"
	MsgInvalidFileName   = "Invalid 'fileName' in request body"
	MsgMissingBucket     = "Missing environment variable: BUCKET_NAME"
)

// Error is returned by every pipeline step.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Public is the text placed in the response "error" field. Input and config
// errors expose only their fixed message; collaborator errors carry the cause.
func (e *Error) Public() string {
	if e.Kind == KindCollaborator {
		return e.Error()
	}
	return e.Message
}

func inputError(message string, err error) *Error {
	return &Error{Kind: KindInput, Message: message, Err: err}
}

func configError(message string) *Error {
	return &Error{Kind: KindConfig, Message: message}
}

func collaboratorError(message string, err error) *Error {
	return &Error{Kind: KindCollaborator, Message: message, Err: err}
}

// asError normalises any error into *Error; unknown errors count as
// collaborator failures.
func asError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return collaboratorError("unexpected failure", err)
}

func statusCode(e *Error, legacy bool) int {
	if legacy {
		return http.StatusInternalServerError
	}
	if e.Kind == KindInput {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
