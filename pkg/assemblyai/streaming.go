package assemblyai

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ankitcoder135/AI-Voice-Agent/internal/voice"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeTimeout     = 5 * time.Second
	terminateTimeout = 3 * time.Second
)

var ErrSessionClosed = errors.New("assemblyai: session closed")

// Transcriber opens v3 universal streaming sessions authenticated with a temporary token.
type Transcriber struct {
	cfg    Config
	dialer *websocket.Dialer
	log    *logrus.Logger
}

func NewTranscriber(cfg Config, log *logrus.Logger) *Transcriber {
	return &Transcriber{
		cfg:    cfg.withDefaults(),
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		log:    log,
	}
}

func (t *Transcriber) Open(ctx context.Context, cfg voice.TranscriptionConfig) (voice.TranscriptionSession, error) {
	if cfg.Token == "" {
		return nil, errors.New("assemblyai: streaming token is required")
	}

	wsURL, err := buildStreamURL(t.cfg.APIURL, cfg)
	if err != nil {
		return nil, err
	}

	conn, resp, err := t.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("assemblyai websocket connect (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("assemblyai websocket connect: %w", err)
	}

	s := &session{
		conn:   conn,
		events: make(chan voice.TranscriptionEvent, 64),
		done:   make(chan struct{}),
		log:    t.log,
	}
	go s.readLoop()

	return s, nil
}

type session struct {
	conn   *websocket.Conn
	events chan voice.TranscriptionEvent
	done   chan struct{}
	log    *logrus.Logger

	writeMu   sync.Mutex
	closing   atomic.Bool
	closeOnce sync.Once
}

type message struct {
	Type            string `json:"type"`
	ID              string `json:"id"`
	Transcript      string `json:"transcript"`
	Utterance       string `json:"utterance"`
	EndOfTurn       bool   `json:"end_of_turn"`
	TurnIsFormatted bool   `json:"turn_is_formatted"`
	AudioDuration   int    `json:"audio_duration_seconds"`
	SessionDuration int    `json:"session_duration_seconds"`
	Error           string `json:"error"`
}

func (s *session) Events() <-chan voice.TranscriptionEvent {
	return s.events
}

func (s *session) Send(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}
	if s.closing.Load() {
		return ErrSessionClosed
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := s.conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
		return fmt.Errorf("failed to send audio: %w", err)
	}
	return nil
}

// Close asks the service to terminate the session and waits for the read
// loop to finish, forcing the socket shut when ctx or the grace period ends.
func (s *session) Close(ctx context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		s.closing.Store(true)

		s.writeMu.Lock()
		_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		err = s.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"Terminate"}`))
		s.writeMu.Unlock()

		timer := time.NewTimer(terminateTimeout)
		defer timer.Stop()
		select {
		case <-s.done:
		case <-timer.C:
		case <-ctx.Done():
		}
		_ = s.conn.Close()
	})
	<-s.done

	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		return fmt.Errorf("failed to terminate session: %w", err)
	}
	return nil
}

func (s *session) readLoop() {
	defer close(s.done)
	defer close(s.events)

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			s.finish(err)
			return
		}

		var msg message
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.log.WithFields(logrus.Fields{
				"error": err.Error(),
			}).Debug("Skipping malformed streaming message")
			continue
		}

		if msg.Error != "" {
			s.events <- voice.ErrorEvent(msg.Error)
			continue
		}

		switch msg.Type {
		case "Begin":
			s.events <- voice.OpenedEvent(msg.ID)
		case "Turn":
			if ev, ok := turnEvent(msg); ok {
				s.events <- ev
			}
		case "Termination":
			s.log.WithFields(logrus.Fields{
				"audio_seconds":   msg.AudioDuration,
				"session_seconds": msg.SessionDuration,
			}).Debug("Streaming session terminated")
		}
	}
}

func (s *session) finish(err error) {
	var closeErr *websocket.CloseError
	switch {
	case errors.As(err, &closeErr):
		s.events <- voice.ClosedEvent(closeErr.Code, closeErr.Text)
	case s.closing.Load():
		s.events <- voice.ClosedEvent(websocket.CloseNormalClosure, "")
	default:
		s.events <- voice.ErrorEvent(err.Error())
		s.events <- voice.ClosedEvent(websocket.CloseAbnormalClosure, "")
	}
}

// turnEvent maps a Turn message. Partials prefer the running utterance while
// a finished turn carries the full transcript.
func turnEvent(msg message) (voice.TranscriptionEvent, bool) {
	if msg.EndOfTurn {
		text := strings.TrimSpace(msg.Transcript)
		return voice.TurnEvent(text, true), text != ""
	}

	text := strings.TrimSpace(msg.Utterance)
	if text == "" {
		text = strings.TrimSpace(msg.Transcript)
	}
	return voice.TurnEvent(text, false), text != ""
}

func buildStreamURL(apiURL string, cfg voice.TranscriptionConfig) (string, error) {
	base := strings.TrimSpace(apiURL)
	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}

	u, err := url.Parse(strings.TrimRight(base, "/") + "/ws")
	if err != nil {
		return "", fmt.Errorf("invalid AssemblyAI streaming url: %w", err)
	}

	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = voice.SampleRate
	}
	silence := cfg.MaxTurnSilence
	if silence <= 0 {
		silence = voice.DefaultMaxTurnSilence
	}

	q := u.Query()
	q.Set("sample_rate", strconv.Itoa(sampleRate))
	q.Set("encoding", "pcm_s16le")
	q.Set("format_turns", "true")
	q.Set("max_turn_silence", strconv.FormatInt(silence.Milliseconds(), 10))
	q.Set("token", cfg.Token)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
