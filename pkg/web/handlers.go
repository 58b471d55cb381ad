package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-posture/pkg/camera"
	"github.com/teslashibe/go-posture/pkg/hub"
	"github.com/teslashibe/go-posture/pkg/posture"
	"github.com/teslashibe/go-posture/pkg/tracking"
)

// ActionResponse is returned by the calibration endpoints.
type ActionResponse struct {
	From            posture.Phase `json:"from"`
	To              posture.Phase `json:"to"`
	BaselineSaved   bool          `json:"baseline_saved"`
	BaselineCleared bool          `json:"baseline_cleared"`
	State           State         `json:"state"`
}

// VisibilityRequest is the body of POST /api/visibility.
type VisibilityRequest struct {
	Visible *bool `json:"visible"`
}

// SurfaceRequest is the body of POST /api/surface.
type SurfaceRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// statusFor maps action errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, posture.ErrDetectorNotReady),
		errors.Is(err, tracking.ErrModelNotReady),
		errors.Is(err, tracking.ErrNoVideo):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, posture.ErrNoFace),
		errors.Is(err, posture.ErrNotCalibrated):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, code int, err error) error {
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// handleStatus returns the current dashboard state
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.ctrl.State())
}

func (s *Server) handleCalibration(c *fiber.Ctx) error {
	return s.respondTransition(c, s.ctrl.CalibrationAction)
}

func (s *Server) handleRecalibrate(c *fiber.Ctx) error {
	return s.respondTransition(c, s.ctrl.Recalibrate)
}

func (s *Server) respondTransition(c *fiber.Ctx, action func() (posture.Transition, error)) error {
	t, err := action()
	if err != nil {
		return fail(c, statusFor(err), err)
	}
	return c.JSON(ActionResponse{
		From:            t.From,
		To:              t.To,
		BaselineSaved:   t.BaselineSaved,
		BaselineCleared: t.BaselineCleared,
		State:           s.ctrl.State(),
	})
}

func (s *Server) handleMonitoringStart(c *fiber.Ctx) error {
	if err := s.ctrl.StartMonitoring(); err != nil {
		return fail(c, statusFor(err), err)
	}
	return c.JSON(s.ctrl.State())
}

func (s *Server) handleMonitoringStop(c *fiber.Ctx) error {
	s.ctrl.StopMonitoring()
	return c.JSON(s.ctrl.State())
}

// handleVisibility switches the detection cadence with page visibility.
func (s *Server) handleVisibility(c *fiber.Ctx) error {
	var req VisibilityRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, err)
	}
	if req.Visible == nil {
		return fail(c, fiber.StatusBadRequest, errors.New("visible is required"))
	}

	s.ctrl.SetVisible(*req.Visible)
	return c.JSON(fiber.Map{"visible": *req.Visible})
}

func (s *Server) handleSurface(c *fiber.Ctx) error {
	var req SurfaceRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, err)
	}
	if req.Width < 0 || req.Height < 0 {
		return fail(c, fiber.StatusBadRequest, errors.New("width and height must not be negative"))
	}

	s.setSize(req.Width, req.Height)
	return c.JSON(req)
}

func (s *Server) handleGetCamera(c *fiber.Ctx) error {
	if s.camera == nil {
		return fail(c, fiber.StatusServiceUnavailable, errors.New("camera not configured"))
	}
	return c.JSON(s.camera.GetConfigJSON())
}

// handleSetCamera applies a preset ({"preset": "720p"}) and/or individual fields.
func (s *Server) handleSetCamera(c *fiber.Ctx) error {
	if s.camera == nil {
		return fail(c, fiber.StatusServiceUnavailable, errors.New("camera not configured"))
	}

	params := make(map[string]interface{})
	if err := c.BodyParser(&params); err != nil {
		return fail(c, fiber.StatusBadRequest, err)
	}

	if err := s.camera.UpdateConfig(params); err != nil {
		return fail(c, fiber.StatusBadRequest, err)
	}

	s.AddLog("info", "Camera settings updated")
	return c.JSON(s.camera.GetConfigJSON())
}

// handleCameraCapabilities lists setting limits and preset names.
func (s *Server) handleCameraCapabilities(c *fiber.Ctx) error {
	return c.JSON(camera.Capabilities())
}

// handleGetLogs returns recent log entries
func (s *Server) handleGetLogs(c *fiber.Ctx) error {
	return c.JSON(s.Logs())
}

// serveHub attaches a websocket connection to h until it disconnects.
func (s *Server) serveHub(h *hub.Hub) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		if client := hub.NewClient(h, c); client != nil {
			client.Run()
		}
	}
}
