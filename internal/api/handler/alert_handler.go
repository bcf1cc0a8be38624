package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/firesafety/incident-system/internal/core/domain"
	"github.com/firesafety/incident-system/internal/core/ports"
)

// AlertHandler handles HTTP requests for the alert lifecycle.
type AlertHandler struct {
	service ports.AlertService
}

func NewAlertHandler(service ports.AlertService) *AlertHandler {
	return &AlertHandler{service: service}
}

// List handles GET /api/alerts.
//
// @Summary      List all alerts
// @Tags         alerts
// @Produce      json
// @Security     CookieAuth
// @Success      200  {array}   alertResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/alerts [get]
func (h *AlertHandler) List(c echo.Context) error {
	alerts, err := h.service.GetAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAlertListResponse(alerts))
}

// Get handles GET /api/alerts/:id.
//
// @Summary      Get an alert by id
// @Tags         alerts
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      string  true  "Alert id"
// @Success      200  {object}  alertResponse
// @Failure      404  {object}  map[string]string
// @Router       /api/alerts/{id} [get]
func (h *AlertHandler) Get(c echo.Context) error {
	alert, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAlertResponse(alert))
}

// ListByStatus handles GET /api/alerts/status/:status.
//
// @Summary      List alerts by status
// @Tags         alerts
// @Produce      json
// @Security     CookieAuth
// @Param        status  path      string  true  "Status (NEW, IN_PROGRESS, RESOLVED)"
// @Success      200     {array}   alertResponse
// @Failure      400     {object}  map[string]string
// @Router       /api/alerts/status/{status} [get]
func (h *AlertHandler) ListByStatus(c echo.Context) error {
	status, err := domain.ParseAlertStatus(c.Param("status"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown status")
	}

	alerts, err := h.service.GetByStatus(c.Request().Context(), status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAlertListResponse(alerts))
}

// ListBySensor handles GET /api/alerts/sensor/:sensorId.
//
// @Summary      List alerts for a sensor
// @Tags         alerts
// @Produce      json
// @Security     CookieAuth
// @Param        sensorId  path      string  true  "Sensor id"
// @Success      200       {array}   alertResponse
// @Router       /api/alerts/sensor/{sensorId} [get]
func (h *AlertHandler) ListBySensor(c echo.Context) error {
	alerts, err := h.service.GetBySensor(c.Request().Context(), c.Param("sensorId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAlertListResponse(alerts))
}

// Create handles POST /api/alerts.
//
// @Summary      Create an alert
// @Tags         alerts
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      alertRequest  true  "Alert details"
// @Success      201   {object}  alertResponse
// @Failure      400   {object}  map[string]string
// @Router       /api/alerts [post]
func (h *AlertHandler) Create(c echo.Context) error {
	var req alertRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	alert, err := h.service.Create(c.Request().Context(), toAlertInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toAlertResponse(alert))
}

// Update handles PUT /api/alerts/:id. The payload fully overwrites the
// alert's mutable fields.
//
// @Summary      Update an alert
// @Tags         alerts
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      string        true  "Alert id"
// @Param        body  body      alertRequest  true  "Alert details"
// @Success      200   {object}  alertResponse
// @Failure      404   {object}  map[string]string
// @Router       /api/alerts/{id} [put]
func (h *AlertHandler) Update(c echo.Context) error {
	var req alertRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	alert, err := h.service.Update(c.Request().Context(), c.Param("id"), toAlertInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAlertResponse(alert))
}

// Delete handles DELETE /api/alerts/:id.
//
// @Summary      Delete an alert
// @Tags         alerts
// @Security     CookieAuth
// @Param        id  path  string  true  "Alert id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/alerts/{id} [delete]
func (h *AlertHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Assign handles PUT /api/alerts/:id/assign?userId=.
//
// @Summary      Assign an alert to a user
// @Tags         alerts
// @Produce      json
// @Security     CookieAuth
// @Param        id      path      string  true  "Alert id"
// @Param        userId  query     string  true  "User id"
// @Success      200     {object}  alertResponse
// @Failure      404     {object}  map[string]string
// @Router       /api/alerts/{id}/assign [put]
func (h *AlertHandler) Assign(c echo.Context) error {
	userID := c.QueryParam("userId")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "userId is required")
	}

	alert, err := h.service.Assign(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAlertResponse(alert))
}

// ChangeStatus handles PUT /api/alerts/:id/status?status=.
//
// @Summary      Change an alert's status
// @Tags         alerts
// @Produce      json
// @Security     CookieAuth
// @Param        id      path      string  true  "Alert id"
// @Param        status  query     string  true  "New status"
// @Success      200     {object}  alertResponse
// @Failure      400     {object}  map[string]string
// @Router       /api/alerts/{id}/status [put]
func (h *AlertHandler) ChangeStatus(c echo.Context) error {
	status, err := domain.ParseAlertStatus(c.QueryParam("status"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown status")
	}

	alert, err := h.service.ChangeStatus(c.Request().Context(), c.Param("id"), status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAlertResponse(alert))
}

// AddPhoto handles POST /api/alerts/:id/photos?photoUrl=.
//
// @Summary      Attach a photo URL to an alert
// @Tags         alerts
// @Produce      json
// @Security     CookieAuth
// @Param        id        path      string  true  "Alert id"
// @Param        photoUrl  query     string  true  "Photo URL"
// @Success      200       {object}  alertResponse
// @Failure      400       {object}  map[string]string
// @Router       /api/alerts/{id}/photos [post]
func (h *AlertHandler) AddPhoto(c echo.Context) error {
	url := c.QueryParam("photoUrl")
	if url == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "photoUrl is required")
	}

	alert, err := h.service.AddPhoto(c.Request().Context(), c.Param("id"), url)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAlertResponse(alert))
}

// RemovePhoto handles DELETE /api/alerts/:id/photos?photoUrl=. Removing an
// absent URL is a no-op.
//
// @Summary      Remove a photo URL from an alert
// @Tags         alerts
// @Produce      json
// @Security     CookieAuth
// @Param        id        path      string  true  "Alert id"
// @Param        photoUrl  query     string  true  "Photo URL"
// @Success      200       {object}  alertResponse
// @Failure      400       {object}  map[string]string
// @Router       /api/alerts/{id}/photos [delete]
func (h *AlertHandler) RemovePhoto(c echo.Context) error {
	url := c.QueryParam("photoUrl")
	if url == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "photoUrl is required")
	}

	alert, err := h.service.RemovePhoto(c.Request().Context(), c.Param("id"), url)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAlertResponse(alert))
}
