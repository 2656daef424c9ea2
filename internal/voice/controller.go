package voice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ankitcoder135/AI-Voice-Agent/internal/entity"
	"github.com/sirupsen/logrus"
)

const (
	DefaultMaxTurnSilence = 5000 * time.Millisecond

	EmptyReplyFallback     = "I'm here. Could you please repeat that?"
	ResponderErrorFallback = "Sorry, I had trouble responding. Please try again."
)

var (
	ErrAlreadyConnected = errors.New("voice: room session already active")
	ErrPlaybackStopped  = errors.New("voice: playback stopped")
)

// RoomConfig is the fixed configuration of one discussion room.
type RoomConfig struct {
	RoomID         string
	Topic          string
	CoachingOption string
	ExpertName     string
	Prompt         string
}

type Dependencies struct {
	Tokens      TokenSource
	Transcriber Transcriber
	Microphone  Microphone
	Responder   Responder
	Synthesizer Synthesizer
	Player      Player
	Store       ConversationStore
	Observer    Observer
	Log         *logrus.Logger
}

type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

func WithRevealInterval(interval time.Duration) Option {
	return func(c *Controller) {
		c.animator = NewAnimator(interval)
	}
}

func WithDedupWindow(window time.Duration) Option {
	return func(c *Controller) {
		c.state = newSessionState(window)
	}
}

func WithRecorderConfig(cfg RecorderConfig) Option {
	return func(c *Controller) {
		c.recorderCfg = cfg.withDefaults()
	}
}

func WithInitialHistory(entries []entity.ConversationEntry) Option {
	return func(c *Controller) {
		c.history = NewHistory(entries)
	}
}

// liveSession groups the resources owned by one connection.
type liveSession struct {
	ctx           context.Context
	cancel        context.CancelFunc
	transcription TranscriptionSession
	mic           MicStream
	graph         *Graph
	recorder      *Recorder
	eventsDone    chan struct{}
}

// Controller runs the voice conversation of one discussion room.
type Controller struct {
	room        RoomConfig
	deps        Dependencies
	log         *logrus.Logger
	observer    Observer
	state       *sessionState
	history     *History
	animator    *Animator
	playback    *Playback
	recorderCfg RecorderConfig
	now         func() time.Time

	lifecycle sync.Mutex

	liveMu sync.Mutex
	live   *liveSession
}

func NewController(room RoomConfig, deps Dependencies, opts ...Option) *Controller {
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	if deps.Observer == nil {
		deps.Observer = NopObserver{}
	}

	c := &Controller{
		room:        room,
		deps:        deps,
		log:         deps.Log,
		observer:    deps.Observer,
		state:       newSessionState(DefaultDedupWindow),
		history:     NewHistory(nil),
		animator:    NewAnimator(DefaultRevealInterval),
		recorderCfg: RecorderConfig{}.withDefaults(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.playback = NewPlayback(deps.Synthesizer, deps.Player, deps.Log)
	c.playback.OnSpeaking(
		func() { c.notify(c.state.startSpeaking()) },
		func(bool) { c.notify(c.state.stopSpeaking()) },
	)

	return c
}

func (c *Controller) Room() RoomConfig {
	return c.room
}

func (c *Controller) Status() Status {
	return c.state.status()
}

func (c *Controller) History() []entity.ConversationEntry {
	return c.history.Snapshot()
}

func (c *Controller) notify(status Status) {
	c.observer.StatusChanged(status)
}

func (c *Controller) fields() logrus.Fields {
	return logrus.Fields{
		"room_id": c.room.RoomID,
	}
}

// Connect fetches a token, opens the transcription session and starts the
// microphone pipeline. Any failure leaves the controller in the error state
// with nothing running.
func (c *Controller) Connect(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	status, err := c.state.beginConnect()
	if err != nil {
		return err
	}

	if stale := c.takeLive(); stale != nil {
		c.teardown(ctx, stale)
	}
	c.notify(status)

	token, err := c.deps.Tokens.Token(ctx)
	if err != nil {
		return c.connectFailed("failed to get transcription token", err)
	}

	sessionCtx, cancel := context.WithCancel(context.Background())
	transcription, err := c.deps.Transcriber.Open(ctx, TranscriptionConfig{
		Token:          token,
		SampleRate:     c.recorderCfg.SampleRate,
		MaxTurnSilence: DefaultMaxTurnSilence,
	})
	if err != nil {
		cancel()
		return c.connectFailed("failed to open transcription session", err)
	}

	live := &liveSession{
		ctx:           sessionCtx,
		cancel:        cancel,
		transcription: transcription,
		eventsDone:    make(chan struct{}),
	}
	go c.consume(live)

	mic, err := c.deps.Microphone.Open(ctx, c.recorderCfg.SampleRate)
	if err != nil {
		failure := c.connectFailed("microphone unavailable", err)
		c.teardown(ctx, live)
		return failure
	}

	live.mic = mic
	live.graph = NewVoiceGraph(c.recorderCfg.SampleRate)
	live.recorder = NewRecorder(c.recorderCfg, mic, live.graph, c.state.isListening, transcription.Send, c.log)
	live.recorder.Start()

	c.liveMu.Lock()
	c.live = live
	c.liveMu.Unlock()

	c.log.WithFields(c.fields()).Info("Discussion room connected")
	return nil
}

func (c *Controller) connectFailed(message string, err error) error {
	full := fmt.Sprintf("%s: %v", message, err)
	if status, ok := c.state.failed(full); ok {
		c.notify(status)
	}
	c.log.WithFields(logrus.Fields{
		"room_id": c.room.RoomID,
		"error":   err.Error(),
	}).Error(message)
	return fmt.Errorf("%s: %w", message, err)
}

func (c *Controller) consume(live *liveSession) {
	defer close(live.eventsDone)
	for ev := range live.transcription.Events() {
		c.handleEvent(live.ctx, ev)
	}
}

// HandleEvent is the single entry point for transcription events.
func (c *Controller) HandleEvent(ev TranscriptionEvent) {
	ctx := context.Background()
	c.liveMu.Lock()
	if c.live != nil {
		ctx = c.live.ctx
	}
	c.liveMu.Unlock()
	c.handleEvent(ctx, ev)
}

func (c *Controller) handleEvent(ctx context.Context, ev TranscriptionEvent) {
	switch ev.Kind {
	case EventOpened:
		if status, ok := c.state.opened(); ok {
			c.log.WithFields(logrus.Fields{
				"room_id":    c.room.RoomID,
				"session_id": ev.SessionID,
			}).Info("Transcription session opened")
			c.notify(status)
		}
	case EventTurn:
		c.handleTurn(ctx, ev)
	case EventError:
		if status, ok := c.state.failed(ev.Message); ok {
			c.log.WithFields(logrus.Fields{
				"room_id": c.room.RoomID,
				"message": ev.Message,
			}).Error("Transcription session error")
			c.notify(status)
		}
	case EventClosed:
		if status, ok := c.state.remoteClosed(); ok {
			c.log.WithFields(logrus.Fields{
				"room_id": c.room.RoomID,
				"code":    ev.Code,
				"reason":  ev.Reason,
			}).Info("Transcription session closed")
			c.notify(status)
		}
	default:
		c.log.WithFields(c.fields()).Debugf("Ignoring transcription event %s", ev.Kind)
	}
}

func (c *Controller) handleTurn(ctx context.Context, ev TranscriptionEvent) {
	text := strings.TrimSpace(ev.Text)

	if !ev.IsFinal {
		phase := c.state.status().State.Phase
		if text != "" && (phase == PhaseConnected || phase == PhaseConnectedPaused) {
			c.observer.PartialTranscript(text)
		}
		return
	}
	if text == "" {
		return
	}

	verdict, status := c.state.acceptTurn(text, c.now())
	if verdict != turnAccepted {
		c.log.WithFields(logrus.Fields{
			"room_id": c.room.RoomID,
			"reason":  verdict.String(),
		}).Debug("Dropped final transcript")
		return
	}

	c.observer.PartialTranscript("")
	c.appendEntry(entity.RoleUser, text)
	c.notify(status)

	go c.runExchange(ctx, text)
}

func (c *Controller) appendEntry(role entity.Role, content string) int {
	index, entry := c.history.Append(role, content)
	c.observer.EntryAppended(index, entry)
	return index
}

// runExchange performs one responder round trip. The processing latch was
// taken by acceptTurn and is released on return.
func (c *Controller) runExchange(ctx context.Context, message string) {
	defer func() {
		c.notify(c.state.endExchange())
	}()

	c.notify(c.state.pauseForExchange())
	c.playback.Stop()

	reply, err := c.deps.Responder.Respond(ctx, ResponderRequest{
		Prompt:  c.room.Prompt,
		Message: message,
		History: CleanHistory(c.history.Snapshot()),
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.log.WithFields(logrus.Fields{
			"room_id": c.room.RoomID,
			"error":   err.Error(),
		}).Warn("Responder call failed")
		c.appendEntry(entity.RoleAssistant, ResponderErrorFallback)
		c.notify(c.state.setTyping(false))
		return
	}
	if strings.TrimSpace(reply) == "" {
		reply = EmptyReplyFallback
	}

	index := c.appendEntry(entity.RoleAssistant, "")
	revealErr := c.animator.Reveal(ctx, reply, func(prefix string) {
		if entry, ok := c.history.Update(index, prefix); ok {
			c.observer.EntryUpdated(index, entry)
		}
	})
	c.notify(c.state.setTyping(false))
	if revealErr != nil {
		return
	}

	c.playback.Speak(ctx, reply, c.room.ExpertName)
}

// Disconnect tears the live session down in order and persists the
// conversation once. It is a no-op when nothing is connected.
func (c *Controller) Disconnect(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	live := c.takeLive()
	if live == nil {
		if c.state.status().State.Phase != PhaseDisconnected {
			c.notify(c.state.reset())
		}
		return nil
	}

	c.notify(c.state.beginDisconnect())
	c.teardown(ctx, live)
	c.notify(c.state.reset())

	c.log.WithFields(c.fields()).Info("Discussion room disconnected")
	return nil
}

func (c *Controller) takeLive() *liveSession {
	c.liveMu.Lock()
	defer c.liveMu.Unlock()
	live := c.live
	c.live = nil
	return live
}

// teardown releases every resource of a live session. Each step runs even if
// an earlier one failed. The conversation is persisted when the session got
// as far as running the microphone.
func (c *Controller) teardown(ctx context.Context, live *liveSession) {
	if live.recorder != nil {
		live.recorder.Stop()
	}
	if live.mic != nil {
		if err := live.mic.Close(); err != nil {
			c.log.WithFields(logrus.Fields{
				"room_id": c.room.RoomID,
				"error":   err.Error(),
			}).Warn("Failed to release microphone")
		}
	}
	if live.recorder != nil {
		live.recorder.Wait()
	}
	if live.graph != nil {
		live.graph.Reset()
	}

	c.playback.Stop()
	live.cancel()

	if err := live.transcription.Close(ctx); err != nil {
		c.log.WithFields(logrus.Fields{
			"room_id": c.room.RoomID,
			"error":   err.Error(),
		}).Warn("Failed to close transcription session")
	}
	<-live.eventsDone
	c.state.waitExchanges()

	if live.mic == nil {
		return
	}
	if err := c.deps.Store.SaveConversation(ctx, c.room.RoomID, c.history.Snapshot()); err != nil {
		c.log.WithFields(logrus.Fields{
			"room_id": c.room.RoomID,
			"error":   err.Error(),
		}).Error("Failed to persist conversation")
	}
}
