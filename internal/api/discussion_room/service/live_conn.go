package discussionRoomService

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/ankitcoder135/AI-Voice-Agent/internal/api/discussion_room"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/entity"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/voice"
	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	micOpenTimeout = 30 * time.Second
	micQueueBlocks = 32
)

var (
	errRoomClosed   = errors.New("live session closed")
	errMicTimeout   = errors.New("microphone request timed out")
	errMicDenied    = errors.New("microphone access denied")
	errPlaybackFail = errors.New("client playback failed")
)

// LiveConn is the server side of a live session websocket.
type LiveConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
}

type MicRequestFrame struct {
	Type       string `json:"type"`
	SampleRate int    `json:"sample_rate"`
	BlockSize  int    `json:"block_size"`
}

// frameWriter serializes JSON frames onto the socket.
type frameWriter struct {
	conn LiveConn
	mu   sync.Mutex
	log  *logrus.Entry
}

func (w *frameWriter) send(frame interface{}) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		w.log.WithField("error", err.Error()).Debug("Failed to write live frame")
		return err
	}
	return nil
}

func (w *frameWriter) sendError(message string) {
	_ = w.send(discussion_room.SignalFrame{Type: discussion_room.FrameError, Message: message})
}

// remoteMicrophone asks the browser for its microphone and turns the binary
// frames it streams back into a voice.MicStream.
type remoteMicrophone struct {
	out       *frameWriter
	mu        sync.Mutex
	pending   chan error
	stream    *remoteMicStream
	closed    chan struct{}
	closeOnce sync.Once
	timeout   time.Duration
}

func newRemoteMicrophone(out *frameWriter) *remoteMicrophone {
	return &remoteMicrophone{
		out:     out,
		closed:  make(chan struct{}),
		timeout: micOpenTimeout,
	}
}

func (m *remoteMicrophone) Open(ctx context.Context, sampleRate int) (voice.MicStream, error) {
	ready := make(chan error, 1)
	m.mu.Lock()
	m.pending = ready
	m.mu.Unlock()

	if err := m.out.send(MicRequestFrame{
		Type:       discussion_room.FrameMicRequest,
		SampleRate: sampleRate,
		BlockSize:  voice.BlockSize,
	}); err != nil {
		m.clearPending(ready)
		return nil, err
	}

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	select {
	case err := <-ready:
		if err != nil {
			return nil, err
		}
	case <-ctx.Done():
		m.clearPending(ready)
		return nil, ctx.Err()
	case <-m.closed:
		return nil, errRoomClosed
	case <-timer.C:
		m.clearPending(ready)
		return nil, errMicTimeout
	}

	stream := newRemoteMicStream()
	m.mu.Lock()
	m.stream = stream
	m.mu.Unlock()
	return stream, nil
}

func (m *remoteMicrophone) clearPending(ready chan error) {
	m.mu.Lock()
	if m.pending == ready {
		m.pending = nil
	}
	m.mu.Unlock()
}

// resolve answers the outstanding Open, if any.
func (m *remoteMicrophone) resolve(err error) {
	m.mu.Lock()
	ready := m.pending
	m.pending = nil
	m.mu.Unlock()

	if ready != nil {
		ready <- err
	}
}

func (m *remoteMicrophone) push(samples []float32) {
	m.mu.Lock()
	stream := m.stream
	m.mu.Unlock()

	if stream != nil && len(samples) > 0 {
		stream.push(samples)
	}
}

func (m *remoteMicrophone) shutdown() {
	m.closeOnce.Do(func() { close(m.closed) })

	m.mu.Lock()
	stream := m.stream
	m.mu.Unlock()
	if stream != nil {
		_ = stream.Close()
	}
}

type remoteMicStream struct {
	blocks    chan []float32
	done      chan struct{}
	closeOnce sync.Once
	rest      []float32
}

func newRemoteMicStream() *remoteMicStream {
	return &remoteMicStream{
		blocks: make(chan []float32, micQueueBlocks),
		done:   make(chan struct{}),
	}
}

// push never blocks the socket reader; blocks are dropped while the queue is full.
func (s *remoteMicStream) push(samples []float32) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.blocks <- samples:
	default:
	}
}

func (s *remoteMicStream) Read(block []float32) (int, error) {
	if len(s.rest) == 0 {
		select {
		case samples := <-s.blocks:
			s.rest = samples
		case <-s.done:
			return 0, io.EOF
		}
	}

	n := copy(block, s.rest)
	s.rest = s.rest[n:]
	return n, nil
}

func (s *remoteMicStream) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

// remotePlayer ships speech to the browser and waits for it to report the end
// of playback.
type remotePlayer struct {
	out       *frameWriter
	mu        sync.Mutex
	current   chan error
	closed    chan struct{}
	closeOnce sync.Once
}

func newRemotePlayer(out *frameWriter) *remotePlayer {
	return &remotePlayer{
		out:    out,
		closed: make(chan struct{}),
	}
}

func (p *remotePlayer) Play(ctx context.Context, speech voice.Speech) error {
	done := make(chan error, 1)
	p.mu.Lock()
	p.current = done
	p.mu.Unlock()

	if err := p.out.send(discussion_room.SpeechFrame{
		Type:     discussion_room.FrameSpeech,
		Audio:    base64.StdEncoding.EncodeToString(speech.Audio),
		MimeType: speech.MimeType,
	}); err != nil {
		p.take(done)
		return err
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if p.take(done) {
			_ = p.out.send(discussion_room.SignalFrame{Type: discussion_room.FrameSpeechStop})
		}
		return ctx.Err()
	case <-p.closed:
		return voice.ErrPlaybackStopped
	}
}

func (p *remotePlayer) take(done chan error) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != done {
		return false
	}
	p.current = nil
	return true
}

func (p *remotePlayer) Stop() {
	p.mu.Lock()
	done := p.current
	p.current = nil
	p.mu.Unlock()

	if done == nil {
		return
	}
	_ = p.out.send(discussion_room.SignalFrame{Type: discussion_room.FrameSpeechStop})
	done <- voice.ErrPlaybackStopped
}

// finish resolves the clip that is playing with the client's verdict.
func (p *remotePlayer) finish(err error) {
	p.mu.Lock()
	done := p.current
	p.current = nil
	p.mu.Unlock()

	if done != nil {
		done <- err
	}
}

func (p *remotePlayer) shutdown() {
	p.closeOnce.Do(func() { close(p.closed) })
}

// liveObserver mirrors controller events onto the socket.
type liveObserver struct {
	out *frameWriter
}

func (o liveObserver) StatusChanged(status voice.Status) {
	_ = o.out.send(discussion_room.StatusFrame{
		Type:       discussion_room.FrameStatus,
		State:      string(status.State.Phase),
		Message:    status.State.Message,
		Typing:     status.Typing,
		Speaking:   status.Speaking,
		Processing: status.Processing,
	})
}

func (o liveObserver) PartialTranscript(text string) {
	_ = o.out.send(discussion_room.PartialFrame{Type: discussion_room.FramePartial, Text: text})
}

func (o liveObserver) EntryAppended(index int, entry entity.ConversationEntry) {
	o.entry(index, entry, discussion_room.EntryOpAppend)
}

func (o liveObserver) EntryUpdated(index int, entry entity.ConversationEntry) {
	o.entry(index, entry, discussion_room.EntryOpUpdate)
}

func (o liveObserver) entry(index int, entry entity.ConversationEntry, op string) {
	_ = o.out.send(discussion_room.EntryFrame{
		Type:    discussion_room.FrameEntry,
		Index:   index,
		Role:    entry.Role,
		Content: entry.Content,
		Op:      op,
	})
}
