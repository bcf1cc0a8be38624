package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/firesafety/incident-system/internal/api/metrics"
	"github.com/firesafety/incident-system/internal/core/domain"
	"github.com/firesafety/incident-system/internal/core/ports"
)

// UploadService imports sensors and alerts from CSV files. The raw upload is
// archived to the configured directory before parsing; per-row failures are
// collected and never abort the batch.
//
// Parsing uses the standard library csv reader: the format is plain RFC 4180
// with a required header row, matched case-insensitively.
type UploadService struct {
	sensors   ports.SensorService
	alerts    ports.AlertService
	uploadDir string
	log       zerolog.Logger
}

func NewUploadService(sensors ports.SensorService, alerts ports.AlertService, uploadDir string, log zerolog.Logger) *UploadService {
	return &UploadService{sensors: sensors, alerts: alerts, uploadDir: uploadDir, log: log}
}

// ImportSensors imports rows with columns: model, location, userId?.
func (s *UploadService) ImportSensors(ctx context.Context, filename string, r io.Reader) (*ports.UploadResult, error) {
	return s.importCSV(ctx, "sensors", filename, r, func(ctx context.Context, row csvRow) error {
		model := row.get("model")
		location := row.get("location")
		if model == "" || location == "" {
			return fmt.Errorf("model and location are required: %w", domain.ErrInvalidInput)
		}
		_, err := s.sensors.Create(ctx, ports.SensorInput{
			Model:          model,
			Location:       location,
			AssignedUserID: row.get("userId"),
		})
		return err
	})
}

// ImportAlerts imports rows with columns: sensorId, type, description,
// status?, photoUrl? (semicolon-separated), userId?.
func (s *UploadService) ImportAlerts(ctx context.Context, filename string, r io.Reader) (*ports.UploadResult, error) {
	return s.importCSV(ctx, "alerts", filename, r, func(ctx context.Context, row csvRow) error {
		sensorID := row.get("sensorId")
		if sensorID == "" {
			return fmt.Errorf("sensorId is required: %w", domain.ErrInvalidInput)
		}
		eventType, err := domain.ParseEventType(strings.ToUpper(row.get("type")))
		if err != nil {
			return fmt.Errorf("unknown event type %q: %w", row.get("type"), err)
		}

		status := domain.AlertStatus("")
		if raw := row.get("status"); raw != "" {
			status, err = domain.ParseAlertStatus(strings.ToUpper(raw))
			if err != nil {
				return fmt.Errorf("unknown status %q: %w", raw, err)
			}
		}

		var photos []string
		if raw := row.get("photoUrl"); raw != "" {
			photos = strings.Split(raw, ";")
		}

		_, err = s.alerts.Create(ctx, ports.AlertInput{
			SensorID:       sensorID,
			Type:           eventType,
			Description:    row.get("description"),
			Status:         status,
			PhotoURLs:      photos,
			AssignedUserID: row.get("userId"),
		})
		return err
	})
}

func (s *UploadService) importCSV(
	ctx context.Context,
	kind, filename string,
	r io.Reader,
	importRow func(ctx context.Context, row csvRow) error,
) (*ports.UploadResult, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return nil, fmt.Errorf("only CSV files are supported: %w", domain.ErrInvalidInput)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("file is empty: %w", domain.ErrInvalidInput)
	}

	s.archive(kind, filename, data)

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w: %v", domain.ErrInvalidInput, err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	result := &ports.UploadResult{Errors: []string{}}
	rowNumber := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNumber++
		result.TotalRows++

		if err == nil {
			err = importRow(ctx, csvRow{columns: columns, record: record})
		}
		if err != nil {
			result.FailureCount++
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s [row %d] : %v", filename, rowNumber, err))
			metrics.CSVRowsTotal.WithLabelValues(kind, "failure").Inc()
			s.log.Warn().Err(err).Str("file", filename).Int("row", rowNumber).Msg("import row failed")
			continue
		}

		result.SuccessCount++
		metrics.CSVRowsTotal.WithLabelValues(kind, "success").Inc()
	}

	s.log.Info().Str("kind", kind).Str("file", filename).
		Int("success", result.SuccessCount).Int("failures", result.FailureCount).
		Msg("import completed")
	return result, nil
}

// archive keeps a timestamped copy of the upload on disk. Failures are
// logged only: archival is not part of the import contract.
func (s *UploadService) archive(kind, filename string, data []byte) {
	if s.uploadDir == "" {
		return
	}
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		s.log.Warn().Err(err).Msg("upload archive: mkdir failed")
		return
	}
	name := fmt.Sprintf("%s_%s_%s", time.Now().UTC().Format("20060102_150405"), kind, filepath.Base(filename))
	if err := os.WriteFile(filepath.Join(s.uploadDir, name), data, 0o644); err != nil {
		s.log.Warn().Err(err).Str("file", name).Msg("upload archive: write failed")
	}
}

// csvRow resolves named columns against the header, case-insensitively.
// Missing columns and short records read as empty strings.
type csvRow struct {
	columns map[string]int
	record  []string
}

func (r csvRow) get(name string) string {
	idx, ok := r.columns[strings.ToLower(name)]
	if !ok || idx >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[idx])
}
