package types

// UploadRequest is the JSON body sent by the client.
type UploadRequest struct {
	Image    string `json:"image" validate:"required"`
	FileName string `json:"fileName"`
}

type SuccessResponse struct {
	Message      string `json:"message"`
	OriginalPath string `json:"originalPath"`
	ResizedPath  string `json:"resizedPath"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

const (
	OriginalsPrefix = "originals/"
	ResizedPrefix   = "resized/"
)
