package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	wsproto "github.com/seu-repo/symptom-assistant/internal/adapter/websocket"
	"github.com/seu-repo/symptom-assistant/internal/domain"
)

const dialTimeout = 10 * time.Second

// ChatClient is a text-only session client. It announces no voice
// capabilities, so the server answers voice requests with notifications.
type ChatClient struct {
	url      string
	language string
	out      io.Writer
	log      *zap.Logger

	conn *websocket.Conn

	mu      sync.Mutex
	printed int
	pending bool
}

func NewChatClient(url, language string, out io.Writer, log *zap.Logger) *ChatClient {
	return &ChatClient{url: url, language: language, out: out, log: log}
}

func (c *ChatClient) Connect(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, c.url, nil)
	if err != nil {
		return err
	}
	c.conn = conn

	return c.send(ctx, wsproto.FrameHello, wsproto.HelloPayload{Language: c.language})
}

// Run reads lines from in until EOF, /quit or ctx is done, while printing
// server frames as they arrive.
func (c *ChatClient) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	readErr := make(chan error, 1)
	go func() {
		readErr <- c.readLoop(ctx)
		cancel()
	}()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			select {
			case err := <-readErr:
				return err
			default:
				return ctx.Err()
			}
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := c.handleLine(ctx, strings.TrimSpace(line))
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}

func (c *ChatClient) handleLine(ctx context.Context, line string) (bool, error) {
	switch {
	case line == "":
		return false, nil
	case line == "/quit":
		return true, nil
	case strings.HasPrefix(line, "/lang "):
		lang := strings.TrimSpace(strings.TrimPrefix(line, "/lang "))
		return false, c.send(ctx, wsproto.FrameLanguage, wsproto.LanguagePayload{Language: lang})
	default:
		return false, c.send(ctx, wsproto.FrameSubmit, wsproto.TextPayload{Text: line})
	}
}

func (c *ChatClient) readLoop(ctx context.Context) error {
	for {
		var frame wsproto.Frame
		if err := wsjson.Read(ctx, c.conn, &frame); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		c.log.Debug("Frame received", zap.String("type", frame.Type))

		if err := c.render(frame); err != nil {
			c.log.Warn("Malformed frame", zap.String("type", frame.Type), zap.Error(err))
		}
	}
}

func (c *ChatClient) render(frame wsproto.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch frame.Type {
	case wsproto.FrameState:
		var p wsproto.StatePayload
		if err := json.Unmarshal(frame.Payload, &p); err != nil {
			return err
		}
		c.renderState(p.State)
	case wsproto.FrameNotification:
		var n domain.Notification
		if err := json.Unmarshal(frame.Payload, &n); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "[%s] %s\n", n.Kind, n.Text)
	case wsproto.FrameError:
		var p wsproto.ErrorPayload
		if err := json.Unmarshal(frame.Payload, &p); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "[error] %s\n", p.Message)
	}
	return nil
}

// renderState prints only the messages appended since the last snapshot.
func (c *ChatClient) renderState(state domain.SessionState) {
	if len(state.Messages) < c.printed {
		c.printed = 0
	}
	for _, m := range state.Messages[c.printed:] {
		if m.Role == domain.RoleUser {
			continue
		}
		fmt.Fprintf(c.out, "assistant: %s\n", m.Content)
		if m.Confidence != "" {
			fmt.Fprintf(c.out, "  confidence %s, suggestion: %s\n", m.Confidence, m.Suggestion)
		}
	}
	c.printed = len(state.Messages)

	if state.IsRequestPending && !c.pending {
		fmt.Fprintln(c.out, "assistant is thinking...")
	}
	c.pending = state.IsRequestPending
}

func (c *ChatClient) send(ctx context.Context, kind string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return wsjson.Write(ctx, c.conn, wsproto.Frame{Type: kind, Payload: raw})
}

func (c *ChatClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close(websocket.StatusNormalClosure, "bye")
}
