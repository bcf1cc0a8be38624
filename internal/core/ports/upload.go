package ports

import (
	"context"
	"io"
)

// UploadResult aggregates the outcome of a CSV import. Per-row failures are
// collected into Errors and never abort the batch.
type UploadResult struct {
	TotalRows    int      `json:"totalRows"`
	SuccessCount int      `json:"successCount"`
	FailureCount int      `json:"failureCount"`
	Errors       []string `json:"errorList"`
}

// UploadService imports sensors and alerts from externally supplied CSV
// files. The filename is used for validation and error messages only.
type UploadService interface {
	ImportSensors(ctx context.Context, filename string, r io.Reader) (*UploadResult, error)
	ImportAlerts(ctx context.Context, filename string, r io.Reader) (*UploadResult, error)
}
