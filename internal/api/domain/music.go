package domain

// OperationStatus tracks a background audio download.
type OperationStatus string

const (
	OperationPending OperationStatus = "pending"
	OperationReady   OperationStatus = "ready"
	OperationTooLong OperationStatus = "too_long"
	OperationFailed  OperationStatus = "failed"
)

// DownloadOperation is the state of one audio-download request. Records are
// short-lived; clients poll until the status leaves pending.
type DownloadOperation struct {
	ID       string          `json:"operation_id"`
	Status   OperationStatus `json:"status"`
	Title    string          `json:"title,omitempty"`
	Filename string          `json:"filename,omitempty"`
	Link     string          `json:"link,omitempty"`
}

// Track is a fetched audio file as produced by the downloader collaborator.
type Track struct {
	Title           string
	Filename        string
	DurationMinutes float64
	Data            []byte
}
