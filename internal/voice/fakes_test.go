package voice

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/ankitcoder135/AI-Voice-Agent/internal/entity"
)

var errSessionClosed = errors.New("session closed")

type fakeTokens struct {
	token string
	err   error
	calls int
	mu    sync.Mutex
}

func (f *fakeTokens) Token(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.token, f.err
}

type fakeSession struct {
	events    chan TranscriptionEvent
	mu        sync.Mutex
	sent      [][]byte
	sendErr   error
	closed    bool
	closeOnce sync.Once
}

func newFakeSession() *fakeSession {
	return &fakeSession{events: make(chan TranscriptionEvent, 32)}
}

func (s *fakeSession) Send(chunk []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errSessionClosed
	}
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, chunk)
	return nil
}

func (s *fakeSession) Events() <-chan TranscriptionEvent {
	return s.events
}

func (s *fakeSession) Close(context.Context) error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.events)
	})
	return nil
}

func (s *fakeSession) emit(ev TranscriptionEvent) {
	s.events <- ev
}

func (s *fakeSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *fakeSession) sentChunks() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.sent))
	copy(out, s.sent)
	return out
}

type fakeTranscriber struct {
	session *fakeSession
	err     error
	mu      sync.Mutex
	configs []TranscriptionConfig
}

func (f *fakeTranscriber) Open(_ context.Context, cfg TranscriptionConfig) (TranscriptionSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configs = append(f.configs, cfg)
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func (f *fakeTranscriber) opens() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.configs)
}

type fakeMicStream struct {
	blocks    chan []float32
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeMicStream() *fakeMicStream {
	return &fakeMicStream{
		blocks: make(chan []float32, 16),
		closed: make(chan struct{}),
	}
}

func (m *fakeMicStream) Read(block []float32) (int, error) {
	select {
	case <-m.closed:
		return 0, io.EOF
	case data := <-m.blocks:
		return copy(block, data), nil
	}
}

func (m *fakeMicStream) Close() error {
	m.closeOnce.Do(func() { close(m.closed) })
	return nil
}

func (m *fakeMicStream) isClosed() bool {
	select {
	case <-m.closed:
		return true
	default:
		return false
	}
}

type fakeMicrophone struct {
	stream *fakeMicStream
	err    error
}

func (f *fakeMicrophone) Open(context.Context, int) (MicStream, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stream, nil
}

type fakeResponder struct {
	mu      sync.Mutex
	reqs    []ResponderRequest
	respond func(ctx context.Context, req ResponderRequest) (string, error)
}

func (f *fakeResponder) Respond(ctx context.Context, req ResponderRequest) (string, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	respond := f.respond
	f.mu.Unlock()
	return respond(ctx, req)
}

func (f *fakeResponder) calls() []ResponderRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ResponderRequest, len(f.reqs))
	copy(out, f.reqs)
	return out
}

type fakeSynthesizer struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text, _ string) (Speech, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	if f.err != nil {
		return Speech{}, f.err
	}
	return Speech{Audio: []byte("mp3:" + text), MimeType: "audio/mpeg"}, nil
}

func (f *fakeSynthesizer) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.texts))
	copy(out, f.texts)
	return out
}

// fakePlayer finishes immediately when auto is set, otherwise it blocks until
// finish, Stop or context cancellation.
type fakePlayer struct {
	auto    bool
	err     error
	finish  chan struct{}
	mu      sync.Mutex
	plays   int
	stops   int
	current chan struct{}
}

func newFakePlayer(auto bool) *fakePlayer {
	return &fakePlayer{auto: auto, finish: make(chan struct{})}
}

func (p *fakePlayer) Play(ctx context.Context, _ Speech) error {
	p.mu.Lock()
	p.plays++
	stop := make(chan struct{})
	p.current = stop
	p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	if p.auto {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-stop:
		return ErrPlaybackStopped
	case <-p.finish:
		return nil
	}
}

func (p *fakePlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
	if p.current != nil {
		close(p.current)
		p.current = nil
	}
}

func (p *fakePlayer) playCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.plays
}

type fakeStore struct {
	mu    sync.Mutex
	saves [][]entity.ConversationEntry
	err   error
}

func (f *fakeStore) SaveConversation(_ context.Context, _ string, conversation []entity.ConversationEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves = append(f.saves, conversation)
	return f.err
}

func (f *fakeStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

type recordingObserver struct {
	mu       sync.Mutex
	statuses []Status
	partials []string
	appended []entity.ConversationEntry
}

func (o *recordingObserver) StatusChanged(status Status) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses = append(o.statuses, status)
}

func (o *recordingObserver) PartialTranscript(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.partials = append(o.partials, text)
}

func (o *recordingObserver) EntryAppended(_ int, entry entity.ConversationEntry) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.appended = append(o.appended, entry)
}

func (o *recordingObserver) EntryUpdated(int, entity.ConversationEntry) {}

func (o *recordingObserver) phases() []Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Phase, 0, len(o.statuses))
	for _, s := range o.statuses {
		out = append(out, s.State.Phase)
	}
	return out
}

func (o *recordingObserver) partialTexts() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.partials))
	copy(out, o.partials)
	return out
}
