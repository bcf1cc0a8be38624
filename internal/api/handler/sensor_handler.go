package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/firesafety/incident-system/internal/core/domain"
	"github.com/firesafety/incident-system/internal/core/ports"
)

// SensorHandler handles HTTP requests for sensor management.
type SensorHandler struct {
	service ports.SensorService
}

func NewSensorHandler(service ports.SensorService) *SensorHandler {
	return &SensorHandler{service: service}
}

type sensorRequest struct {
	Model    string `json:"model"    validate:"required"`
	Location string `json:"location" validate:"required"`
	UserID   string `json:"userId"`
}

type sensorResponse struct {
	ID         string            `json:"id"`
	Model      string            `json:"model"`
	Location   string            `json:"location"`
	AssignedTo *assigneeResponse `json:"assignedTo,omitempty"`
}

func toSensorResponse(s *domain.Sensor) sensorResponse {
	resp := sensorResponse{
		ID:       s.ID,
		Model:    s.Model,
		Location: s.Location,
	}
	if s.AssignedTo != nil {
		resp.AssignedTo = &assigneeResponse{
			UserID:   s.AssignedTo.UserID,
			Username: s.AssignedTo.Username,
		}
	}
	return resp
}

// List handles GET /api/sensors.
//
// @Summary      List all sensors
// @Tags         sensors
// @Produce      json
// @Security     CookieAuth
// @Success      200  {array}  sensorResponse
// @Router       /api/sensors [get]
func (h *SensorHandler) List(c echo.Context) error {
	sensors, err := h.service.GetAll(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]sensorResponse, len(sensors))
	for i, s := range sensors {
		out[i] = toSensorResponse(s)
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /api/sensors/:id.
//
// @Summary      Get a sensor by id
// @Tags         sensors
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      string  true  "Sensor id"
// @Success      200  {object}  sensorResponse
// @Failure      404  {object}  map[string]string
// @Router       /api/sensors/{id} [get]
func (h *SensorHandler) Get(c echo.Context) error {
	sensor, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSensorResponse(sensor))
}

// Create handles POST /api/sensors.
//
// @Summary      Register a sensor
// @Tags         sensors
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      sensorRequest  true  "Sensor details"
// @Success      201   {object}  sensorResponse
// @Failure      400   {object}  map[string]string
// @Router       /api/sensors [post]
func (h *SensorHandler) Create(c echo.Context) error {
	var req sensorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sensor, err := h.service.Create(c.Request().Context(), ports.SensorInput{
		Model:          req.Model,
		Location:       req.Location,
		AssignedUserID: req.UserID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toSensorResponse(sensor))
}

// Update handles PUT /api/sensors/:id.
//
// @Summary      Update a sensor
// @Tags         sensors
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      string         true  "Sensor id"
// @Param        body  body      sensorRequest  true  "Sensor details"
// @Success      200   {object}  sensorResponse
// @Failure      404   {object}  map[string]string
// @Router       /api/sensors/{id} [put]
func (h *SensorHandler) Update(c echo.Context) error {
	var req sensorRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sensor, err := h.service.Update(c.Request().Context(), c.Param("id"), ports.SensorInput{
		Model:          req.Model,
		Location:       req.Location,
		AssignedUserID: req.UserID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSensorResponse(sensor))
}

// Delete handles DELETE /api/sensors/:id.
//
// @Summary      Delete a sensor
// @Tags         sensors
// @Security     CookieAuth
// @Param        id  path  string  true  "Sensor id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/sensors/{id} [delete]
func (h *SensorHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
