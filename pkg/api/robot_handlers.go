package api

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jun-zaga/RobotWebControl/domain/robot"
	customlog "github.com/jun-zaga/RobotWebControl/pkg/log"
)

// RobotHandler serves the robot daemon's command API.
type RobotHandler struct {
	service *robot.Service
	logger  customlog.Logger
	now     func() time.Time
}

// NewRobotHandler creates a handler for the command endpoints.
func NewRobotHandler(service *robot.Service, logger customlog.Logger) *RobotHandler {
	if service == nil {
		panic("robot service cannot be nil in NewRobotHandler")
	}
	if logger == nil {
		panic("logger cannot be nil in NewRobotHandler")
	}
	return &RobotHandler{service: service, logger: logger, now: time.Now}
}

// RegisterRobotRoutes registers the command API on app.
func RegisterRobotRoutes(app *fiber.App, service *robot.Service, logger customlog.Logger) {
	h := NewRobotHandler(service, logger)

	app.Get("/", h.handleStatus)
	app.Get("/health", h.handleHealth)

	api := app.Group("/api")
	api.Post("/drive", h.handleDrive)
	api.Post("/head", h.handleHead)
	api.Post("/waist", h.handleWaist)
	api.Post("/say", h.handleSay)
	api.Post("/stop", h.handleStop)

	logger.Infof("Registered robot command API endpoints under /api")
}

func (h *RobotHandler) handleStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"ok":      true,
		"service": "robotd",
		"status":  h.service.Status(),
	})
}

func (h *RobotHandler) handleHealth(c *fiber.Ctx) error {
	now := h.now()
	return c.JSON(fiber.Map{
		"ok":   true,
		"time": float64(now.UnixNano()) / float64(time.Second),
	})
}

func (h *RobotHandler) handleDrive(c *fiber.Ctx) error {
	data := decodeObject(c.Body())

	l, lok := number(data["l"])
	r, rok := number(data["r"])
	if !lok || !rok {
		return badRequest(c, "l and r must be numbers")
	}

	l, r, err := h.service.Drive(l, r)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true, "l": l, "r": r})
}

func (h *RobotHandler) handleHead(c *fiber.Ctx) error {
	data := decodeObject(c.Body())

	// Either value may be sent alone; only present values are validated.
	var pan, tilt interface{}
	if raw, present := data["pan"]; present && raw != nil {
		v, ok := number(raw)
		if !ok {
			return badRequest(c, "pan must be a number")
		}
		applied, err := h.service.HeadPan(v)
		if err != nil {
			return err
		}
		pan = applied
	}
	if raw, present := data["tilt"]; present && raw != nil {
		v, ok := number(raw)
		if !ok {
			return badRequest(c, "tilt must be a number")
		}
		applied, err := h.service.HeadTilt(v)
		if err != nil {
			return err
		}
		tilt = applied
	}
	return c.JSON(fiber.Map{"ok": true, "pan": pan, "tilt": tilt})
}

func (h *RobotHandler) handleWaist(c *fiber.Ctx) error {
	data := decodeObject(c.Body())

	pos, ok := number(data["pos"])
	if !ok {
		return badRequest(c, "pos must be a number")
	}
	pos, err := h.service.Waist(pos)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true, "pos": pos})
}

func (h *RobotHandler) handleSay(c *fiber.Ctx) error {
	data := decodeObject(c.Body())

	id, fits, ok := integer(data["phraseId"])
	if !ok {
		return badRequest(c, "phraseId must be an int")
	}
	if !fits {
		return badRequest(c, "unknown phraseId")
	}
	if err := h.service.Say(id); err != nil {
		if errors.Is(err, robot.ErrUnknownPhrase) {
			return badRequest(c, "unknown phraseId")
		}
		return err
	}
	return c.JSON(fiber.Map{"ok": true, "phraseId": id})
}

// handleStop ignores the body; the unload beacon sends "{}" as text/plain.
func (h *RobotHandler) handleStop(c *fiber.Ctx) error {
	if err := h.service.Stop(); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": msg})
}

// number accepts JSON numbers only; booleans, strings and null are rejected.
// Magnitudes beyond float64 come back as infinities and clamp like any
// other out-of-range value.
func number(v interface{}) (float64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil && !isRange(err) {
		return 0, false
	}
	return f, true
}

// integer accepts JSON numbers written without fraction or exponent.
// fits is false for integers outside the int range; no phrase has such an id.
func integer(v interface{}) (i int, fits bool, ok bool) {
	n, isNum := v.(json.Number)
	if !isNum {
		return 0, false, false
	}
	i64, err := strconv.ParseInt(string(n), 10, 0)
	if err != nil {
		if isRange(err) {
			return 0, false, true
		}
		return 0, false, false
	}
	return int(i64), true, true
}

func isRange(err error) bool {
	return errors.Is(err, strconv.ErrRange)
}
