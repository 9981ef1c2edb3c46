package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/seu-repo/symptom-assistant/internal/adapter/voice"
	"github.com/seu-repo/symptom-assistant/internal/domain"
	"github.com/seu-repo/symptom-assistant/internal/i18n"
	"github.com/seu-repo/symptom-assistant/internal/observability/telemetry"
	"github.com/seu-repo/symptom-assistant/internal/service/dialogue"
)

const helloWait = 10 * time.Second

// SessionHandler serves /ws/sessions. Each connection owns exactly one
// dialogue session for its lifetime; when the registry drops the session
// (idle eviction, shutdown) the connection is closed so the client can
// reconnect.
type SessionHandler struct {
	registry *dialogue.Registry
	hub      *Hub
	log      *zap.Logger

	mu      sync.Mutex
	clients map[string]*Client
}

func NewSessionHandler(registry *dialogue.Registry, hub *Hub, log *zap.Logger) *SessionHandler {
	h := &SessionHandler{
		registry: registry,
		hub:      hub,
		log:      log,
		clients:  make(map[string]*Client),
	}
	registry.OnRemove(h.disconnect)
	return h
}

func (h *SessionHandler) track(id string, c *Client) {
	h.mu.Lock()
	h.clients[id] = c
	h.mu.Unlock()

	// The session may have been evicted before it was tracked.
	if _, err := h.registry.Get(id); err != nil {
		h.disconnect(id)
	}
}

func (h *SessionHandler) disconnect(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	delete(h.clients, id)
	h.mu.Unlock()

	if !ok {
		return
	}
	c.sendError(domain.ErrSessionClosed.Error())
	c.close()
}

func (h *SessionHandler) Handle(conn *websocket.Conn) {
	client := newClient(conn, h.log)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(helloWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	hello, lang, err := h.readHello(client)
	if err != nil {
		h.log.Debug("Rejected websocket client", zap.Error(err))
		data, _ := encodeFrame(FrameError, ErrorPayload{Message: err.Error()})
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteMessage(websocket.TextMessage, data)
		return
	}
	conn.SetReadDeadline(time.Now().Add(pongWait))

	if !h.hub.Register(client) {
		return
	}
	defer h.hub.Unregister(client)

	done := make(chan struct{})
	go client.writePump(done)

	remote := voice.NewRemote(client, hello.Capabilities)
	session := h.registry.Create(dialogue.SessionOptions{
		Language:    lang,
		VoiceInput:  remote.Input(),
		VoiceOutput: remote.Output(),
		Presenter:   client,
	})
	h.track(session.ID(), client)
	log := h.log.With(zap.String("session_id", session.ID()))
	log.Info("Websocket session opened",
		zap.Bool("speech_recognition", hello.Capabilities.SpeechRecognition),
		zap.Bool("speech_synthesis", hello.Capabilities.SpeechSynthesis),
	)
	client.StateChanged(session.State())

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		h.registry.Remove(session.ID())
		client.close()
		<-done
		log.Info("Websocket session closed")
	}()

	for {
		f, err := client.readFrame()
		if errors.Is(err, errMalformedFrame) {
			client.sendError(err.Error())
			continue
		}
		if err != nil {
			break
		}
		session.Touch()

		if err := h.dispatch(ctx, session, remote, f); err != nil {
			if userVisible(err) {
				log.Debug("Command rejected", zap.String("type", f.Type), zap.Error(err))
				continue
			}
			client.sendError(err.Error())
		}
	}
}

func (h *SessionHandler) readHello(client *Client) (HelloPayload, domain.Language, error) {
	var hello HelloPayload

	f, err := client.readFrame()
	if err != nil {
		return hello, "", err
	}
	if f.Type != FrameHello {
		return hello, "", errors.New("expected hello frame")
	}
	if len(f.Payload) > 0 {
		if err := json.Unmarshal(f.Payload, &hello); err != nil {
			return hello, "", errMalformedFrame
		}
	}

	if hello.Language == "" {
		return hello, "", nil
	}
	lang, err := i18n.Parse(hello.Language)
	if err != nil {
		return hello, "", err
	}
	return hello, lang, nil
}

func (h *SessionHandler) dispatch(ctx context.Context, s *dialogue.Session, remote *voice.Remote, f Frame) error {
	ctx, span := telemetry.StartSpan(ctx, "ws."+f.Type, attribute.String("session.id", s.ID()))
	defer span.End()

	switch {
	case f.Type == FrameSubmit:
		var p TextPayload
		if err := decode(f, &p); err != nil {
			return err
		}
		return s.Submit(ctx, p.Text)

	case f.Type == FrameDraft:
		var p TextPayload
		if err := decode(f, &p); err != nil {
			return err
		}
		return s.SetDraft(p.Text)

	case f.Type == FrameLanguage:
		var p LanguagePayload
		if err := decode(f, &p); err != nil {
			return err
		}
		lang, err := i18n.Parse(p.Language)
		if err != nil {
			return err
		}
		return s.SetLanguage(lang)

	case f.Type == FrameVoiceCapture:
		return s.StartVoiceCapture(ctx)

	case f.Type == FrameSpeak:
		var p SpeakPayload
		if err := decode(f, &p); err != nil {
			return err
		}
		return s.Speak(ctx, p.Content)

	case f.Type == FrameSpeakStop:
		return s.StopSpeaking()

	case strings.HasPrefix(f.Type, FrameVoiceInputPrefix):
		ev := domain.VoiceInputEvent{Kind: domain.VoiceInputEventKind(strings.TrimPrefix(f.Type, FrameVoiceInputPrefix))}
		if !ev.Kind.Valid() {
			return errUnknownFrame(f.Type)
		}
		if ev.Kind == domain.VoiceInputResult {
			var p TranscriptPayload
			if err := decode(f, &p); err != nil {
				return err
			}
			ev.Transcript = p.Transcript
		}
		remote.DispatchInput(ev)
		return nil

	case strings.HasPrefix(f.Type, FrameVoiceOutputPrefix):
		ev := domain.VoiceOutputEvent{Kind: domain.VoiceOutputEventKind(strings.TrimPrefix(f.Type, FrameVoiceOutputPrefix))}
		if !ev.Kind.Valid() {
			return errUnknownFrame(f.Type)
		}
		var p PlaybackPayload
		if err := decode(f, &p); err != nil {
			return err
		}
		remote.DispatchOutput(p.ID, ev)
		return nil
	}

	return errUnknownFrame(f.Type)
}

func errUnknownFrame(kind string) error {
	return errors.New("unknown frame type " + kind)
}

func decode(f Frame, v interface{}) error {
	if len(f.Payload) == 0 {
		return errMalformedFrame
	}
	if err := json.Unmarshal(f.Payload, v); err != nil {
		return errMalformedFrame
	}
	return nil
}

// userVisible reports whether the session already told the user about err
// through a notification, or whether it is deliberately silent.
func userVisible(err error) bool {
	for _, target := range []error{
		domain.ErrEmptyInput,
		domain.ErrRequestPending,
		domain.ErrSpeechInProgress,
		domain.ErrVoiceBusy,
		domain.ErrVoiceInputUnsupported,
		domain.ErrVoiceOutputUnsupported,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// SetupRoutes mounts the session socket on app.
func SetupRoutes(app *fiber.App, handler *SessionHandler) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/sessions", websocket.New(handler.Handle))
}
