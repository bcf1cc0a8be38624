package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/firesafety/incident-system/internal/core/ports"
)

// ReportHandler serves generated PDF reports.
type ReportHandler struct {
	service ports.ReportService
}

func NewReportHandler(service ports.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// AlertPDF handles GET /api/reports/alerts/:id/pdf.
//
// @Summary      Download an alert report as PDF
// @Tags         reports
// @Produce      application/pdf
// @Security     CookieAuth
// @Param        id   path  string  true  "Alert id"
// @Success      200  {file}    binary
// @Failure      404  {object}  map[string]string
// @Router       /api/reports/alerts/{id}/pdf [get]
func (h *ReportHandler) AlertPDF(c echo.Context) error {
	id := c.Param("id")

	pdf, err := h.service.GenerateAlertReport(c.Request().Context(), id)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="alert-%s.pdf"`, id))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
