package api

// StartRequest triggers a new timelapse job over an inclusive date range.
type StartRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// MessageResponse is the generic acknowledgement payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse carries a request failure back to the caller.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ProgressResponse mirrors the live job progress snapshot. Status is one of
// idle, downloading, assembling_video, converting, done.
type ProgressResponse struct {
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Status    string `json:"status"`
}

// StatusResponse aggregates daemon runtime information for API consumers.
type StatusResponse struct {
	Running      bool             `json:"running"`
	PID          int              `json:"pid"`
	JobID        string           `json:"job_id,omitempty"`
	Progress     ProgressResponse `json:"progress"`
	LastError    string           `json:"last_error,omitempty"`
	AssetPresent bool             `json:"asset_present"`
	AssetSize    int64            `json:"asset_size,omitempty"`
	AssetPath    string           `json:"asset_path,omitempty"`
}
