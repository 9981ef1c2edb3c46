package websocket

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	gorilla "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/seu-repo/symptom-assistant/internal/adapter/classifier"
	"github.com/seu-repo/symptom-assistant/internal/adapter/voice"
	"github.com/seu-repo/symptom-assistant/internal/domain"
	"github.com/seu-repo/symptom-assistant/internal/mocks"
	"github.com/seu-repo/symptom-assistant/internal/service/dialogue"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

type testServer struct {
	url      string
	registry *dialogue.Registry
	hub      *Hub
	recorder *mocks.MockRecorder
}

func startServer(t *testing.T, opts ...func(*dialogue.RegistryConfig)) *testServer {
	t.Helper()
	log := newTestLogger()

	recorder := mocks.NewMockRecorder()
	cfg := dialogue.RegistryConfig{
		Classifier: classifier.NewKeywordClassifier(0),
		Recorder:   recorder,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	registry := dialogue.NewRegistry(cfg, log)
	hub := NewHub()
	go hub.Run()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	SetupRoutes(app, NewSessionHandler(registry, hub, log))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go app.Listener(ln)

	t.Cleanup(func() {
		hub.Shutdown()
		registry.CloseAll()
		app.Shutdown()
	})

	return &testServer{
		url:      "ws://" + ln.Addr().String() + "/ws/sessions",
		registry: registry,
		hub:      hub,
		recorder: recorder,
	}
}

func dial(t *testing.T, url string) *gorilla.Conn {
	t.Helper()
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *gorilla.Conn, kind string, payload interface{}) {
	t.Helper()
	data, err := encodeFrame(kind, payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := conn.WriteMessage(gorilla.TextMessage, data); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// next reads frames until one of the given type arrives.
func next(t *testing.T, conn *gorilla.Conn, kind string) Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var f Frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("waiting for %s: %v", kind, err)
		}
		if f.Type == kind {
			return f
		}
	}
}

// nextState reads state frames until match accepts one.
func nextState(t *testing.T, conn *gorilla.Conn, match func(domain.SessionState) bool) domain.SessionState {
	t.Helper()
	for {
		f := next(t, conn, FrameState)
		var p StatePayload
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			t.Fatalf("decode state: %v", err)
		}
		if match(p.State) {
			return p.State
		}
	}
}

func TestSessionHandler_SubmitFlow(t *testing.T) {
	// Arrange
	srv := startServer(t)
	conn := dial(t, srv.url)

	// Act
	send(t, conn, FrameHello, HelloPayload{Language: "en-US"})
	initial := nextState(t, conn, func(domain.SessionState) bool { return true })
	send(t, conn, FrameSubmit, TextPayload{Text: "I have a fever"})
	final := nextState(t, conn, func(s domain.SessionState) bool { return len(s.Messages) == 2 })

	// Assert
	if initial.ID == "" || initial.Language != domain.LanguageEnglish {
		t.Errorf("unexpected initial state: %+v", initial)
	}
	if final.IsRequestPending {
		t.Error("pending should be cleared")
	}
	if final.Messages[1].Suggestion != domain.SuggestionRest || final.Messages[1].Confidence != "80%" {
		t.Errorf("unexpected reply: %+v", final.Messages[1])
	}
	select {
	case <-srv.recorder.Recorded:
	case <-time.After(3 * time.Second):
		t.Error("consultation was not recorded")
	}
}

func TestSessionHandler_VoiceRoundTrip(t *testing.T) {
	// Arrange
	srv := startServer(t)
	conn := dial(t, srv.url)
	send(t, conn, FrameHello, HelloPayload{
		Language:     "hi",
		Capabilities: voice.Capabilities{SpeechRecognition: true, SpeechSynthesis: true},
	})
	nextState(t, conn, func(domain.SessionState) bool { return true })

	// Act
	send(t, conn, FrameVoiceCapture, nil)
	cmd := next(t, conn, voice.CommandCaptureStart)
	send(t, conn, FrameVoiceInputPrefix+"result", TranscriptPayload{Transcript: "मुझे सिरदर्द है"})
	send(t, conn, FrameVoiceInputPrefix+"end", nil)
	state := nextState(t, conn, func(s domain.SessionState) bool { return !s.IsListening && s.DraftInput != "" })

	send(t, conn, FrameSpeak, SpeakPayload{Content: "आराम करें"})
	speak := next(t, conn, voice.CommandSpeak)

	// Assert
	var capture voice.CapturePayload
	json.Unmarshal(cmd.Payload, &capture)
	if capture.Language != domain.LanguageHindi {
		t.Errorf("capture language = %q", capture.Language)
	}
	if state.DraftInput != "मुझे सिरदर्द है" || len(state.Messages) != 0 {
		t.Errorf("unexpected state after capture: %+v", state)
	}
	var sp voice.SpeakPayload
	json.Unmarshal(speak.Payload, &sp)
	if sp.Locale != "hi-IN" {
		t.Errorf("speak locale = %q", sp.Locale)
	}
}

func TestSessionHandler_NoVoiceCapabilities(t *testing.T) {
	// Arrange
	srv := startServer(t)
	conn := dial(t, srv.url)
	send(t, conn, FrameHello, HelloPayload{})
	nextState(t, conn, func(domain.SessionState) bool { return true })

	// Act
	send(t, conn, FrameSpeak, SpeakPayload{Content: "hello"})
	f := next(t, conn, FrameNotification)

	// Assert
	var n domain.Notification
	json.Unmarshal(f.Payload, &n)
	if n.Code != domain.CodeVoiceOutputUnsupported {
		t.Errorf("notification code = %q", n.Code)
	}
}

func TestSessionHandler_RejectsBadInput(t *testing.T) {
	// Arrange
	srv := startServer(t)
	conn := dial(t, srv.url)
	send(t, conn, FrameHello, nil)
	nextState(t, conn, func(domain.SessionState) bool { return true })

	// Act
	conn.WriteMessage(gorilla.TextMessage, []byte("not json"))
	malformed := next(t, conn, FrameError)
	send(t, conn, "dance", nil)
	unknown := next(t, conn, FrameError)

	// Assert
	if malformed.Payload == nil || unknown.Payload == nil {
		t.Error("error frames should carry a message")
	}
	if srv.registry.Len() != 1 {
		t.Errorf("connection should stay open, registry has %d sessions", srv.registry.Len())
	}
}

func TestSessionHandler_HelloRequired(t *testing.T) {
	// Arrange
	srv := startServer(t)
	conn := dial(t, srv.url)

	// Act
	send(t, conn, FrameSubmit, TextPayload{Text: "fever"})
	f := next(t, conn, FrameError)

	// Assert
	if f.Type != FrameError {
		t.Errorf("frame type = %q", f.Type)
	}
	if srv.registry.Len() != 0 {
		t.Error("no session should be created without hello")
	}
}

func TestSessionHandler_DisconnectRemovesSession(t *testing.T) {
	// Arrange
	srv := startServer(t)
	conn := dial(t, srv.url)
	send(t, conn, FrameHello, nil)
	nextState(t, conn, func(domain.SessionState) bool { return true })

	// Act
	conn.Close()

	// Assert
	deadline := time.Now().Add(3 * time.Second)
	for srv.registry.Len() != 0 || srv.hub.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("session not removed: registry=%d hub=%d", srv.registry.Len(), srv.hub.Len())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSessionHandler_IdleEvictionClosesConnection(t *testing.T) {
	// Arrange
	srv := startServer(t, func(cfg *dialogue.RegistryConfig) { cfg.IdleTimeout = time.Second })
	conn := dial(t, srv.url)
	send(t, conn, FrameHello, nil)
	nextState(t, conn, func(domain.SessionState) bool { return true })

	// Act
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var frames []Frame
	var readErr error
	for {
		var f Frame
		if readErr = conn.ReadJSON(&f); readErr != nil {
			break
		}
		frames = append(frames, f)
	}

	// Assert
	if netErr, ok := readErr.(net.Error); ok && netErr.Timeout() {
		t.Fatal("connection stayed open after its session was evicted")
	}
	if len(frames) == 0 || frames[len(frames)-1].Type != FrameError {
		t.Errorf("expected a closing error frame, got %+v", frames)
	}
	deadline := time.Now().Add(3 * time.Second)
	for srv.registry.Len() != 0 || srv.hub.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("not cleaned up: registry=%d hub=%d", srv.registry.Len(), srv.hub.Len())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSessionHandler_FramesKeepSessionAlive(t *testing.T) {
	// Arrange
	srv := startServer(t, func(cfg *dialogue.RegistryConfig) { cfg.IdleTimeout = time.Second })
	conn := dial(t, srv.url)
	send(t, conn, FrameHello, nil)
	nextState(t, conn, func(domain.SessionState) bool { return true })

	// Act
	for i := 0; i < 6; i++ {
		send(t, conn, FrameDraft, TextPayload{Text: "still typing"})
		time.Sleep(400 * time.Millisecond)
	}
	send(t, conn, FrameSubmit, TextPayload{Text: "I have a fever"})
	state := nextState(t, conn, func(s domain.SessionState) bool { return len(s.Messages) == 2 })

	// Assert
	if state.Messages[1].Suggestion != domain.SuggestionRest {
		t.Errorf("unexpected reply: %+v", state.Messages[1])
	}
	if srv.registry.Len() != 1 {
		t.Errorf("active session evicted, registry has %d", srv.registry.Len())
	}
}

func TestSessionHandler_StalePlaybackEndIgnored(t *testing.T) {
	// Arrange
	srv := startServer(t)
	conn := dial(t, srv.url)
	send(t, conn, FrameHello, HelloPayload{Capabilities: voice.Capabilities{SpeechSynthesis: true}})
	nextState(t, conn, func(domain.SessionState) bool { return true })

	send(t, conn, FrameSpeak, SpeakPayload{Content: "first"})
	var first voice.SpeakPayload
	json.Unmarshal(next(t, conn, voice.CommandSpeak).Payload, &first)
	send(t, conn, FrameSpeakStop, nil)
	next(t, conn, voice.CommandCancel)
	send(t, conn, FrameSpeak, SpeakPayload{Content: "second"})
	var second voice.SpeakPayload
	json.Unmarshal(next(t, conn, voice.CommandSpeak).Payload, &second)

	// Act
	send(t, conn, FrameVoiceOutputPrefix+"end", PlaybackPayload{ID: first.ID})
	send(t, conn, FrameDraft, TextPayload{Text: "marker"})
	afterStale := nextState(t, conn, func(s domain.SessionState) bool { return s.DraftInput == "marker" })
	send(t, conn, FrameVoiceOutputPrefix+"end", PlaybackPayload{ID: second.ID})
	afterEnd := nextState(t, conn, func(s domain.SessionState) bool { return !s.IsSpeaking })

	// Assert
	if first.ID == second.ID {
		t.Fatalf("utterances share id %d", first.ID)
	}
	if !afterStale.IsSpeaking {
		t.Error("late end of the stopped utterance ended the current one")
	}
	if afterEnd.IsSpeaking {
		t.Error("end of the current utterance should clear speaking")
	}
}

func TestSessionHandler_UnknownVoiceEventRejected(t *testing.T) {
	// Arrange
	srv := startServer(t)
	conn := dial(t, srv.url)
	send(t, conn, FrameHello, HelloPayload{Capabilities: voice.Capabilities{SpeechRecognition: true}})
	nextState(t, conn, func(domain.SessionState) bool { return true })
	send(t, conn, FrameVoiceCapture, nil)
	next(t, conn, voice.CommandCaptureStart)

	// Act
	send(t, conn, FrameVoiceInputPrefix+"junk", nil)
	f := next(t, conn, FrameError)

	// Assert
	var p ErrorPayload
	json.Unmarshal(f.Payload, &p)
	if p.Message != "unknown frame type voice.input.junk" {
		t.Errorf("error message = %q", p.Message)
	}
}
