package voice

import (
	"context"
	"time"

	"github.com/ankitcoder135/AI-Voice-Agent/internal/entity"
)

type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type TranscriptionConfig struct {
	Token          string
	SampleRate     int
	MaxTurnSilence time.Duration
}

type Transcriber interface {
	Open(ctx context.Context, cfg TranscriptionConfig) (TranscriptionSession, error)
}

// TranscriptionSession is a live recognition stream. Events is closed once the
// session is over, including after Close.
type TranscriptionSession interface {
	Send(chunk []byte) error
	Events() <-chan TranscriptionEvent
	Close(ctx context.Context) error
}

type Microphone interface {
	Open(ctx context.Context, sampleRate int) (MicStream, error)
}

// MicStream delivers mono float32 samples. Close unblocks a pending Read.
type MicStream interface {
	Read(block []float32) (int, error)
	Close() error
}

type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ResponderRequest struct {
	Prompt  string
	Message string
	History []HistoryMessage
}

type Responder interface {
	Respond(ctx context.Context, req ResponderRequest) (string, error)
}

type Speech struct {
	Audio    []byte
	MimeType string
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text, expertName string) (Speech, error)
}

// Player plays one clip at a time. Play returns nil on natural end and
// ErrPlaybackStopped when Stop interrupted it.
type Player interface {
	Play(ctx context.Context, speech Speech) error
	Stop()
}

type ConversationStore interface {
	SaveConversation(ctx context.Context, roomID string, conversation []entity.ConversationEntry) error
}

type Observer interface {
	StatusChanged(status Status)
	PartialTranscript(text string)
	EntryAppended(index int, entry entity.ConversationEntry)
	EntryUpdated(index int, entry entity.ConversationEntry)
}

type NopObserver struct{}

func (NopObserver) StatusChanged(Status) {}
func (NopObserver) PartialTranscript(string) {}
func (NopObserver) EntryAppended(int, entity.ConversationEntry) {}
func (NopObserver) EntryUpdated(int, entity.ConversationEntry) {}
