package speaker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ankitcoder135/AI-Voice-Agent/internal/voice"
	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

const (
	DefaultSampleRate beep.SampleRate = 44100
	resampleQuality                   = 4
)

var ErrUnsupportedFormat = errors.New("speaker: only audio/mpeg is supported")

// Speaker plays MP3 speech on the default output device, resampled to one
// fixed device rate.
type Speaker struct {
	rate beep.SampleRate

	initOnce sync.Once
	initErr  error

	mu   sync.Mutex
	stop chan struct{}
}

func New(rate beep.SampleRate) *Speaker {
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	return &Speaker{rate: rate}
}

func (s *Speaker) init() error {
	s.initOnce.Do(func() {
		s.initErr = speaker.Init(s.rate, s.rate.N(time.Second/10))
	})
	return s.initErr
}

func decode(sp voice.Speech) (beep.StreamSeekCloser, beep.Format, error) {
	if sp.MimeType != "" && sp.MimeType != "audio/mpeg" && sp.MimeType != "audio/mp3" {
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, sp.MimeType)
	}
	streamer, format, err := mp3.Decode(io.NopCloser(bytes.NewReader(sp.Audio)))
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("decode mp3: %w", err)
	}
	return streamer, format, nil
}

// Play blocks until the clip ends, Stop is called or ctx is done.
func (s *Speaker) Play(ctx context.Context, sp voice.Speech) error {
	streamer, format, err := decode(sp)
	if err != nil {
		return err
	}
	defer streamer.Close()

	if err := s.init(); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	var src beep.Streamer = streamer
	if format.SampleRate != s.rate {
		src = beep.Resample(resampleQuality, format.SampleRate, s.rate, streamer)
	}

	done := make(chan struct{})
	stop := make(chan struct{})
	ctrl := &beep.Ctrl{Streamer: beep.Seq(src, beep.Callback(func() { close(done) }))}

	s.mu.Lock()
	if s.stop != nil {
		close(s.stop)
	}
	s.stop = stop
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.stop == stop {
			s.stop = nil
		}
		s.mu.Unlock()
	}()

	speaker.Play(ctrl)

	select {
	case <-done:
		return nil
	case <-stop:
		silence(ctrl)
		return voice.ErrPlaybackStopped
	case <-ctx.Done():
		silence(ctrl)
		return ctx.Err()
	}
}

func silence(ctrl *beep.Ctrl) {
	speaker.Lock()
	ctrl.Streamer = nil
	speaker.Unlock()
}

func (s *Speaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}
