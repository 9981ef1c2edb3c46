package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/symptom-assistant/internal/domain"
	"github.com/seu-repo/symptom-assistant/internal/ports"
)

const defaultRecentLimit = 20

// ConsultationHandler serves stored consultation records. It answers 501
// when the server runs without a database.
type ConsultationHandler struct {
	repo ports.ConsultationRepository
	log  *zap.Logger
}

func NewConsultationHandler(repo ports.ConsultationRepository, log *zap.Logger) *ConsultationHandler {
	return &ConsultationHandler{
		repo: repo,
		log:  log,
	}
}

func (h *ConsultationHandler) Register(router fiber.Router) {
	router.Get("/consultations", h.ListRecent)
	router.Get("/consultations/:id", h.Get)
	router.Get("/sessions/:id/consultations", h.ListBySession)
}

func (h *ConsultationHandler) Get(c *fiber.Ctx) error {
	if h.repo == nil {
		return errNoHistory
	}
	rec, err := h.repo.FindByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if rec == nil {
		return fiber.NewError(fiber.StatusNotFound, "Consultation not found")
	}
	return c.JSON(rec)
}

func (h *ConsultationHandler) ListBySession(c *fiber.Ctx) error {
	if h.repo == nil {
		return errNoHistory
	}
	recs, err := h.repo.ListBySession(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if recs == nil {
		recs = []domain.Consultation{}
	}
	return c.JSON(recs)
}

func (h *ConsultationHandler) ListRecent(c *fiber.Ctx) error {
	if h.repo == nil {
		return errNoHistory
	}
	limit := c.QueryInt("limit", defaultRecentLimit)
	recs, err := h.repo.ListRecent(c.UserContext(), limit)
	if err != nil {
		return err
	}
	if recs == nil {
		recs = []domain.Consultation{}
	}
	return c.JSON(recs)
}

var errNoHistory = fiber.NewError(fiber.StatusNotImplemented, "consultation history is not configured")
