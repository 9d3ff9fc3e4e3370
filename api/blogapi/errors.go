package blogapi

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/quillblog/quill/storage/model"
)

func errorBody(code, description string) fiber.Map {
	return fiber.Map{
		"error":             code,
		"error_description": description,
	}
}

// writeError maps the error taxonomy to a status code and a JSON body.
// Unexpected errors are logged and not passed to the client.
func writeError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	code := "server_error"
	description := "internal server error"
	switch e := errors.Cause(err).(type) {
	case model.NotFoundError:
		status, code, description = fiber.StatusNotFound, "not_found", e.Error()
	case model.ValidationError:
		status, code, description = fiber.StatusBadRequest, "invalid_request", e.Error()
	case model.ForbiddenError:
		status, code, description = fiber.StatusForbidden, "forbidden", e.Error()
	case model.AlreadyExistsError:
		status, code, description = fiber.StatusConflict, "already_exists", e.Error()
	case model.UnauthorizedError:
		status, code, description = fiber.StatusUnauthorized, "unauthorized", e.Error()
	case model.InvalidTokenError:
		status, code, description = fiber.StatusUnauthorized, "invalid_token", e.Error()
	default:
		log.WithError(err).WithFields(
			log.Fields{
				"method": c.Method(),
				"path":   c.Path(),
			},
		).Error("request failed")
	}
	return c.Status(status).JSON(errorBody(code, description))
}

// idParam parses a numeric id route parameter; ids that cannot exist are
// reported as not found
func idParam(c *fiber.Ctx, name, what string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return 0, model.NotFoundErrorFmt("%s not found: %s", what, raw)
	}
	return uint(id), nil
}

// parseBody parses an optional JSON or form body into out
func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return model.ValidationErrorFmt("invalid body: %s", err.Error())
	}
	return nil
}
