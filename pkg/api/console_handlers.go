package api

import (
	"errors"
	"syscall"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/jun-zaga/RobotWebControl/pkg/dispatch"
	customlog "github.com/jun-zaga/RobotWebControl/pkg/log"
	"github.com/jun-zaga/RobotWebControl/services"
)

// ConsoleHandler serves the console's settings and status endpoints.
type ConsoleHandler struct {
	settings services.JoystickConfigService
	hub      *Hub
	director *dispatch.Director
	logger   customlog.Logger
}

// RegisterConsoleRoutes registers the console API and the control websocket.
// director may be nil when no live robot is configured.
func RegisterConsoleRoutes(app *fiber.App, settings services.JoystickConfigService, hub *Hub, director *dispatch.Director, logger customlog.Logger) {
	h := &ConsoleHandler{settings: settings, hub: hub, director: director, logger: logger}

	api := app.Group("/api")
	api.Get("/config", h.handleGetConfig)
	api.Put("/config", h.handleUpdateConfig)
	api.Get("/status", h.handleStatus)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/control", websocket.New(func(conn *websocket.Conn) {
		ControlWebSocketHandler(conn, hub, logger)
	}))

	logger.Infof("Registered console API endpoints under /api and control websocket at /ws/control")
}

func (h *ConsoleHandler) handleGetConfig(c *fiber.Ctx) error {
	return c.JSON(h.settings.GetCurrentSettings())
}

func (h *ConsoleHandler) handleUpdateConfig(c *fiber.Ctx) error {
	updated, err := h.settings.UpdateSettings(c.Body())
	if err != nil {
		if errors.Is(err, services.ErrInvalidSettings) {
			return badRequest(c, err.Error())
		}
		return err
	}
	return c.JSON(updated)
}

func (h *ConsoleHandler) handleStatus(c *fiber.Ctx) error {
	status := fiber.Map{
		"ok":       true,
		"sessions": h.hub.Count(),
	}
	if h.director != nil {
		status["dispatch"] = h.director.Metrics()
	}
	return c.JSON(status)
}

// ControlWebSocketHandler runs one control page. Every text frame is a
// ClientEvent answered with a SessionState. When the socket goes away for
// any reason the session is torn down, which sends the stop beacon.
func ControlWebSocketHandler(conn *websocket.Conn, hub *Hub, logger customlog.Logger) {
	session := hub.Open(conn.Query("mock") == "1")
	defer hub.Release(session)

	logger.Infof("Control WebSocket connected: %s", conn.RemoteAddr())

	var writeMu sync.Mutex
	write := func(st SessionState) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(st); err != nil {
			logger.Debugf("Control WS write failed: %v", err)
		}
	}
	session.OnSliderSend(write)
	write(session.State())

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warnf("Control WS read error: %v", err)
			} else if err != websocket.ErrCloseSent && !errors.Is(err, syscall.EPIPE) && !errors.Is(err, syscall.ECONNRESET) {
				logger.Infof("Control WS connection closed: %v", err)
			} else {
				logger.Infof("Control WS connection closed normally.")
			}
			break
		}

		if mt != websocket.TextMessage {
			logger.Infof("Ignoring non-text Control WS message type: %d", mt)
			continue
		}

		st, err := session.HandleMessage(msg)
		if err != nil {
			logger.Warnf("Rejected control event: %v. Message: %s", err, string(msg))
			st.Error = err.Error()
		}
		write(st)
	}
	logger.Infof("Control WebSocket disconnected: %s", conn.RemoteAddr())
}
