package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"

	customlog "github.com/jun-zaga/RobotWebControl/pkg/log"
)

// JSON is the codec used for fiber responses and websocket frames.
var JSON = jsoniter.ConfigCompatibleWithStandardLibrary

// bodyJSON keeps numbers as json.Number so integers, floats and booleans
// can be told apart during validation.
var bodyJSON = jsoniter.Config{UseNumber: true}.Froze()

// FiberConfig returns the fiber settings shared by both servers.
func FiberConfig(appName string, logger customlog.Logger) fiber.Config {
	return fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		JSONEncoder:           JSON.Marshal,
		JSONDecoder:           JSON.Unmarshal,
		ErrorHandler:          ErrorHandler(logger),
	}
}

// ErrorHandler renders errors as {ok:false, error} with the fiber status
// code, or 500 for anything else.
func ErrorHandler(logger customlog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
		}
		if code >= fiber.StatusInternalServerError {
			logger.Errorf("%s %s failed: %v", c.Method(), c.Path(), err)
		}
		return c.Status(code).JSON(fiber.Map{
			"ok":    false,
			"error": err.Error(),
		})
	}
}

// decodeObject parses a JSON object body. Anything else, including an
// empty or malformed body, yields an empty object.
func decodeObject(body []byte) map[string]interface{} {
	var m map[string]interface{}
	if len(body) == 0 || bodyJSON.Unmarshal(body, &m) != nil || m == nil {
		return map[string]interface{}{}
	}
	return m
}
