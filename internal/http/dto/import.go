package dto

import (
	"time"

	"soundsift/internal/domain"
)

type ImportRequest struct {
	URL string `json:"url"`
}

func (r *ImportRequest) Validate() []ValidationError {
	return validateSourceURL(r.URL)
}

type ImportJobResponse struct {
	ID        string  `json:"id"`
	SourceURL string  `json:"source_url"`
	Status    string  `json:"status"`
	Progress  float64 `json:"progress"`
	TrackID   *int    `json:"track_id,omitempty"`
	Error     string  `json:"error,omitempty"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

func NewImportJobResponse(j *domain.ImportJob) ImportJobResponse {
	resp := ImportJobResponse{
		ID:        j.ID,
		SourceURL: j.SourceURL,
		Status:    string(j.Status),
		Progress:  j.Progress,
		TrackID:   j.TrackID,
		CreatedAt: j.CreatedAt.Format(time.RFC3339),
		UpdatedAt: j.UpdatedAt.Format(time.RFC3339),
	}
	if j.Error != nil {
		resp.Error = *j.Error
	}
	return resp
}
