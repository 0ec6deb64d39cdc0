package dto

import "github.com/noah-isme/sma-classroom/internal/models"

// ExportFormat selects the document renderer.
type ExportFormat string

const (
	ExportFormatPDF ExportFormat = "pdf"
	ExportFormatCSV ExportFormat = "csv"
)

// ExportSessionRequest asks for a session document.
type ExportSessionRequest struct {
	SessionID string       `json:"session_id" validate:"required"`
	Format    ExportFormat `json:"format,omitempty" validate:"omitempty,oneof=pdf csv"`
}

// ExportSessionResponse describes the stored document.
type ExportSessionResponse struct {
	SessionID    string         `json:"session_id"`
	RelativePath string         `json:"relative_path"`
	Format       ExportFormat   `json:"format"`
	Size         int            `json:"size"`
	Session      models.Session `json:"session"`
}
