package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog"

	"github.com/firesafety/incident-system/internal/api/metrics"
	"github.com/firesafety/incident-system/internal/core/ports"
)

// ReportService renders alert reports as PDF bytes. When autoSave is on a
// copy of every generated report is written to reportDir.
type ReportService struct {
	alerts    ports.AlertService
	reportDir string
	autoSave  bool
	log       zerolog.Logger
}

func NewReportService(alerts ports.AlertService, reportDir string, autoSave bool, log zerolog.Logger) *ReportService {
	return &ReportService{alerts: alerts, reportDir: reportDir, autoSave: autoSave, log: log}
}

// GenerateAlertReport renders a single-page A4 report for the alert.
func (s *ReportService) GenerateAlertReport(ctx context.Context, alertID string) ([]byte, error) {
	alert, err := s.alerts.GetByID(ctx, alertID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 12, "Fire Safety Incident Report")
	pdf.Ln(16)

	pdf.SetFont("Helvetica", "", 11)
	line := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(45, 8, label)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 8, value, "", "L", false)
	}

	line("Alert ID:", alert.ID)
	line("Type:", string(alert.Type))
	line("Status:", string(alert.Status))
	line("Reported at:", alert.Timestamp.UTC().Format(time.RFC3339))
	line("Sensor:", alert.SensorID)
	if alert.AssignedTo != nil {
		line("Assigned to:", alert.AssignedTo.Username)
	} else {
		line("Assigned to:", "unassigned")
	}
	line("Description:", alert.Description)
	line("Photos:", fmt.Sprintf("%d attached", len(alert.PhotoURLs)))
	for _, url := range alert.PhotoURLs {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.Cell(45, 6, "")
		pdf.MultiCell(0, 6, url, "", "L", false)
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s", time.Now().UTC().Format(time.RFC3339)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render alert report: %w", err)
	}

	if s.autoSave {
		s.saveToFile(alertID, buf.Bytes())
	}

	metrics.ReportsGeneratedTotal.Inc()
	s.log.Info().Str("alert_id", alertID).Int("bytes", buf.Len()).Msg("alert report generated")
	return buf.Bytes(), nil
}

func (s *ReportService) saveToFile(alertID string, data []byte) {
	if err := os.MkdirAll(s.reportDir, 0o755); err != nil {
		s.log.Warn().Err(err).Msg("report auto-save: mkdir failed")
		return
	}
	name := fmt.Sprintf("alert_%s_%s.pdf", alertID, time.Now().UTC().Format("20060102_150405"))
	if err := os.WriteFile(filepath.Join(s.reportDir, name), data, 0o644); err != nil {
		s.log.Warn().Err(err).Str("file", name).Msg("report auto-save: write failed")
	}
}
