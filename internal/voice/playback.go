package voice

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

type PlaybackPhase string

const (
	PlaybackIdle         PlaybackPhase = "idle"
	PlaybackSynthesizing PlaybackPhase = "synthesizing"
	PlaybackPlaying      PlaybackPhase = "playing"
)

// Playback owns the single speech slot. A new Speak replaces whatever is in
// flight and Stop may be called at any time.
type Playback struct {
	synth  Synthesizer
	player Player
	log    *logrus.Logger

	onStart func()
	onStop  func(natural bool)

	mu     sync.Mutex
	phase  PlaybackPhase
	slot   uint64
	cancel context.CancelFunc
}

func NewPlayback(synth Synthesizer, player Player, log *logrus.Logger) *Playback {
	return &Playback{
		synth:   synth,
		player:  player,
		log:     log,
		phase:   PlaybackIdle,
		onStart: func() {},
		onStop:  func(bool) {},
	}
}

// OnSpeaking registers the hooks fired when audio starts and when it stops.
func (p *Playback) OnSpeaking(start func(), stop func(natural bool)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onStart = start
	p.onStop = stop
}

func (p *Playback) Phase() PlaybackPhase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

// Speak synthesizes and plays text, returning when playback ends, fails or is
// stopped. Failures are logged, never returned.
func (p *Playback) Speak(ctx context.Context, text, expertName string) {
	p.Stop()

	p.mu.Lock()
	p.slot++
	slot := p.slot
	slotCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.phase = PlaybackSynthesizing
	p.mu.Unlock()
	defer cancel()

	speech, err := p.synth.Synthesize(slotCtx, text, expertName)
	if err != nil {
		if slotCtx.Err() == nil {
			p.log.WithFields(logrus.Fields{
				"expert": expertName,
				"error":  err.Error(),
			}).Warn("Speech synthesis failed")
		}
		p.release(slot, false)
		return
	}

	p.mu.Lock()
	if p.slot != slot || slotCtx.Err() != nil {
		p.mu.Unlock()
		return
	}
	p.phase = PlaybackPlaying
	onStart := p.onStart
	p.mu.Unlock()
	onStart()

	err = p.player.Play(slotCtx, speech)
	if err != nil && !errors.Is(err, ErrPlaybackStopped) && slotCtx.Err() == nil {
		p.log.WithFields(logrus.Fields{
			"mime_type": speech.MimeType,
			"error":     err.Error(),
		}).Warn("Speech playback failed")
	}

	p.release(slot, err == nil)
}

// release returns the slot to idle if it is still current and fires onStop
// for a slot that reached the playing phase.
func (p *Playback) release(slot uint64, natural bool) {
	p.mu.Lock()
	if p.slot != slot {
		p.mu.Unlock()
		return
	}
	wasPlaying := p.phase == PlaybackPlaying
	p.phase = PlaybackIdle
	p.cancel = nil
	onStop := p.onStop
	p.mu.Unlock()

	if wasPlaying {
		onStop(natural)
	}
}

// Stop interrupts synthesis or playback. It is a no-op when idle.
func (p *Playback) Stop() {
	p.mu.Lock()
	if p.phase == PlaybackIdle {
		p.mu.Unlock()
		return
	}
	wasPlaying := p.phase == PlaybackPlaying
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.phase = PlaybackIdle
	p.slot++
	onStop := p.onStop
	p.mu.Unlock()

	p.player.Stop()
	if wasPlaying {
		onStop(false)
	}
}
