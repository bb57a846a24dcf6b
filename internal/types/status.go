package types

// StatusData represents the inner payload
type StatusData struct {
	FileName     string `json:"fileName"`
	Status       string `json:"status"`
	OriginalPath string `json:"originalPath,omitempty"`
	ResizedPath  string `json:"resizedPath,omitempty"`
	Format       string `json:"format,omitempty"`
	ErrorMsg     string `json:"errorMsg,omitempty"`
}

// StatusMessage represents the full message envelope
type StatusMessage struct {
	Pattern string     `json:"pattern"`
	Data    StatusData `json:"data"`
}

const PROCESSED = "PROCESSED"
const FAILED = "FAILED"
