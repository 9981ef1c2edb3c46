package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/symptom-assistant/internal/adapter/voice"
	"github.com/seu-repo/symptom-assistant/internal/domain"
	"github.com/seu-repo/symptom-assistant/internal/i18n"
	"github.com/seu-repo/symptom-assistant/internal/service/dialogue"
)

// SessionHandler exposes dialogue sessions over REST. REST clients have no
// microphone or speaker, so their sessions get the unsupported voice
// adapters.
type SessionHandler struct {
	registry    *dialogue.Registry
	waitTimeout time.Duration
	log         *zap.Logger

	mu        sync.Mutex
	mailboxes map[string]*mailbox
}

func NewSessionHandler(registry *dialogue.Registry, waitTimeout time.Duration, log *zap.Logger) *SessionHandler {
	if waitTimeout <= 0 {
		waitTimeout = 30 * time.Second
	}
	h := &SessionHandler{
		registry:    registry,
		waitTimeout: waitTimeout,
		log:         log,
		mailboxes:   make(map[string]*mailbox),
	}
	registry.OnRemove(h.forget)
	return h
}

func (h *SessionHandler) Register(router fiber.Router) {
	sessions := router.Group("/sessions")
	sessions.Post("/", h.Create)
	sessions.Get("/:id", h.Get)
	sessions.Delete("/:id", h.Delete)
	sessions.Put("/:id/draft", h.SetDraft)
	sessions.Put("/:id/language", h.SetLanguage)
	sessions.Post("/:id/messages", h.Submit)
	sessions.Post("/:id/speak", h.Speak)
	sessions.Post("/:id/speak/stop", h.StopSpeaking)
	sessions.Post("/:id/voice/capture", h.StartVoiceCapture)
}

type CreateSessionRequest struct {
	Language string `json:"language"`
}

type TextRequest struct {
	Text string `json:"text"`
}

type LanguageRequest struct {
	Language string `json:"language"`
}

type SpeakRequest struct {
	Content string `json:"content"`
}

// SessionResponse carries the session snapshot plus any notifications
// produced since the previous response.
type SessionResponse struct {
	State         domain.SessionState   `json:"state"`
	Notifications []domain.Notification `json:"notifications"`
}

func (h *SessionHandler) Create(c *fiber.Ctx) error {
	var req CreateSessionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid body")
		}
	}

	var lang domain.Language
	if req.Language != "" {
		parsed, err := i18n.Parse(req.Language)
		if err != nil {
			return err
		}
		lang = parsed
	}

	box := &mailbox{}
	s := h.registry.Create(dialogue.SessionOptions{
		Language:    lang,
		VoiceInput:  voice.UnsupportedInput{},
		VoiceOutput: voice.UnsupportedOutput{},
		Presenter:   box,
	})

	h.mu.Lock()
	h.mailboxes[s.ID()] = box
	h.mu.Unlock()

	return c.Status(fiber.StatusCreated).JSON(h.respond(s))
}

func (h *SessionHandler) Get(c *fiber.Ctx) error {
	s, err := h.registry.Get(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(h.respond(s))
}

func (h *SessionHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := h.registry.Get(id); err != nil {
		return err
	}
	h.registry.Remove(id)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *SessionHandler) SetDraft(c *fiber.Ctx) error {
	s, err := h.registry.Get(c.Params("id"))
	if err != nil {
		return err
	}

	var req TextRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid body")
	}
	if err := s.SetDraft(req.Text); err != nil {
		return err
	}
	return c.JSON(h.respond(s))
}

func (h *SessionHandler) SetLanguage(c *fiber.Ctx) error {
	s, err := h.registry.Get(c.Params("id"))
	if err != nil {
		return err
	}

	var req LanguageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid body")
	}
	lang, err := i18n.Parse(req.Language)
	if err != nil {
		return err
	}
	if err := s.SetLanguage(lang); err != nil {
		return err
	}
	return c.JSON(h.respond(s))
}

// Submit answers 202 once the message is accepted. With ?wait=true it
// answers 200 after the reply (or the failure) has been applied.
func (h *SessionHandler) Submit(c *fiber.Ctx) error {
	s, err := h.registry.Get(c.Params("id"))
	if err != nil {
		return err
	}

	var req TextRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid body")
	}

	if err := s.Submit(c.UserContext(), req.Text); err != nil {
		return err
	}

	if !c.QueryBool("wait") {
		return c.Status(fiber.StatusAccepted).JSON(h.respond(s))
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.waitTimeout)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		h.log.Warn("Timed out waiting for reply", zap.String("session_id", s.ID()), zap.Error(err))
		return c.Status(fiber.StatusAccepted).JSON(h.respond(s))
	}
	return c.JSON(h.respond(s))
}

func (h *SessionHandler) Speak(c *fiber.Ctx) error {
	s, err := h.registry.Get(c.Params("id"))
	if err != nil {
		return err
	}

	var req SpeakRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid body")
	}
	if err := s.Speak(c.UserContext(), req.Content); err != nil {
		return err
	}
	return c.JSON(h.respond(s))
}

func (h *SessionHandler) StopSpeaking(c *fiber.Ctx) error {
	s, err := h.registry.Get(c.Params("id"))
	if err != nil {
		return err
	}
	if err := s.StopSpeaking(); err != nil {
		return err
	}
	return c.JSON(h.respond(s))
}

func (h *SessionHandler) StartVoiceCapture(c *fiber.Ctx) error {
	s, err := h.registry.Get(c.Params("id"))
	if err != nil {
		return err
	}
	if err := s.StartVoiceCapture(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(h.respond(s))
}

func (h *SessionHandler) respond(s *dialogue.Session) SessionResponse {
	resp := SessionResponse{State: s.State(), Notifications: []domain.Notification{}}

	h.mu.Lock()
	box := h.mailboxes[s.ID()]
	h.mu.Unlock()

	if box != nil {
		resp.Notifications = box.drain()
	}
	return resp
}

func (h *SessionHandler) forget(id string) {
	h.mu.Lock()
	delete(h.mailboxes, id)
	h.mu.Unlock()
}
