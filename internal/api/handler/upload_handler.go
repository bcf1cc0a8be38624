package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/firesafety/incident-system/internal/core/ports"
)

// UploadHandler handles multipart CSV imports.
type UploadHandler struct {
	service ports.UploadService
}

func NewUploadHandler(service ports.UploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

// ImportSensors handles POST /api/upload/sensors.
//
// @Summary      Import sensors from a CSV file
// @Tags         upload
// @Accept       multipart/form-data
// @Produce      json
// @Security     CookieAuth
// @Param        file  formData  file  true  "CSV file (model,location,userId)"
// @Success      200   {object}  ports.UploadResult
// @Failure      400   {object}  map[string]string
// @Router       /api/upload/sensors [post]
func (h *UploadHandler) ImportSensors(c echo.Context) error {
	return h.importFile(c, h.service.ImportSensors)
}

// ImportAlerts handles POST /api/upload/alerts.
//
// @Summary      Import alerts from a CSV file
// @Tags         upload
// @Accept       multipart/form-data
// @Produce      json
// @Security     CookieAuth
// @Param        file  formData  file  true  "CSV file (sensorId,type,description,status,photoUrl,userId)"
// @Success      200   {object}  ports.UploadResult
// @Failure      400   {object}  map[string]string
// @Router       /api/upload/alerts [post]
func (h *UploadHandler) ImportAlerts(c echo.Context) error {
	return h.importFile(c, h.service.ImportAlerts)
}

func (h *UploadHandler) importFile(c echo.Context, importFn func(context.Context, string, io.Reader) (*ports.UploadResult, error)) error {
	header, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}

	src, err := header.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read uploaded file")
	}
	defer src.Close()

	result, err := importFn(c.Request().Context(), header.Filename, src)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}
