package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/seu-repo/symptom-assistant/internal/i18n"
)

type LocaleHandler struct{}

func NewLocaleHandler() *LocaleHandler {
	return &LocaleHandler{}
}

func (h *LocaleHandler) Register(router fiber.Router) {
	router.Get("/locales", h.List)
	router.Get("/locales/:lang", h.Get)
}

func (h *LocaleHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"languages": i18n.Supported()})
}

// Get returns the UI strings for a BCP 47 tag such as "hi-IN".
func (h *LocaleHandler) Get(c *fiber.Ctx) error {
	lang, err := i18n.Parse(c.Params("lang"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"language": lang,
		"strings":  i18n.Lookup(lang),
	})
}
