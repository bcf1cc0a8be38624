package ports

import "context"

// ReportService renders alert reports as PDF bytes.
type ReportService interface {
	GenerateAlertReport(ctx context.Context, alertID string) ([]byte, error)
}
