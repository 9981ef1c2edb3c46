package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/symptom-assistant/internal/domain"
)

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, domain.ErrEmptyInput):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrRequestPending),
		errors.Is(err, domain.ErrSpeechInProgress),
		errors.Is(err, domain.ErrVoiceBusy):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrVoiceInputUnsupported),
		errors.Is(err, domain.ErrVoiceOutputUnsupported):
		return fiber.StatusNotImplemented
	case errors.Is(err, domain.ErrSessionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrSessionClosed):
		return fiber.StatusGone
	case errors.Is(err, domain.ErrUnsupportedLanguage):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := StatusFor(err)

		if code == fiber.StatusInternalServerError {
			log.Error("Internal Server Error", zap.Error(err), zap.String("path", c.Path()))
		}

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}
