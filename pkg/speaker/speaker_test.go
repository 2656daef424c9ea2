package speaker

import (
	"context"
	"testing"

	"github.com/ankitcoder135/AI-Voice-Agent/internal/voice"
	"github.com/faiface/beep"
	"github.com/stretchr/testify/assert"
)

func TestPlayRejectsUnsupportedFormat(t *testing.T) {
	s := New(0)

	err := s.Play(context.Background(), voice.Speech{Audio: []byte("RIFF"), MimeType: "audio/wav"})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestStopWithoutPlayback(t *testing.T) {
	s := New(22050)

	assert.NotPanics(t, func() {
		s.Stop()
		s.Stop()
	})
	assert.Equal(t, beep.SampleRate(22050), s.rate)
	assert.Equal(t, DefaultSampleRate, New(0).rate)
}
