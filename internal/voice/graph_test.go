package voice

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sine(freq float64, amplitude float32, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = amplitude * float32(math.Sin(2*math.Pi*freq*float64(i)/SampleRate))
	}
	return out
}

func TestNoiseGateSilencesQuietBlock(t *testing.T) {
	gate := NewNoiseGate(GateThreshold)

	quiet := make([]float32, BlockSize)
	for i := range quiet {
		quiet[i] = 0.005
	}
	gate.Process(quiet)
	for _, s := range quiet {
		if s != 0 {
			t.Fatalf("expected silence, got %v", s)
		}
	}

	loud := sine(440, 0.5, BlockSize)
	want := append([]float32(nil), loud...)
	gate.Process(loud)
	assert.Equal(t, want, loud)
}

func TestHighPassAttenuatesRumble(t *testing.T) {
	rumble := sine(30, 0.5, SampleRate)
	inRMS := RMS(rumble[SampleRate/2:])
	NewHighPass(HighPassCutoff, SampleRate).Process(rumble)
	assert.Less(t, RMS(rumble[SampleRate/2:]), 0.1*inRMS)

	voice := sine(1000, 0.5, SampleRate)
	inRMS = RMS(voice[SampleRate/2:])
	NewHighPass(HighPassCutoff, SampleRate).Process(voice)
	assert.Greater(t, RMS(voice[SampleRate/2:]), 0.95*inRMS)
}

func TestCompressorReducesLoudAndLiftsQuiet(t *testing.T) {
	cfg := CompressorConfig{
		ThresholdDB: CompressorThresholdDB,
		KneeDB:      CompressorKneeDB,
		Ratio:       CompressorRatio,
		Attack:      CompressorAttack,
		Release:     CompressorRelease,
	}

	loud := sine(1000, 0.9, SampleRate)
	inRMS := RMS(loud[SampleRate/2:])
	NewCompressor(cfg, SampleRate).Process(loud)
	assert.Less(t, RMS(loud[SampleRate/2:]), 0.5*inRMS)

	quiet := sine(1000, 0.001, SampleRate)
	inRMS = RMS(quiet[SampleRate/2:])
	NewCompressor(cfg, SampleRate).Process(quiet)
	assert.Greater(t, RMS(quiet[SampleRate/2:]), inRMS)
}

func TestVoiceGraphGatesBackgroundNoise(t *testing.T) {
	graph := NewVoiceGraph(SampleRate)
	rng := rand.New(rand.NewSource(7))

	noise := make([]float32, BlockSize)
	for i := range noise {
		noise[i] = float32(rng.Float64()*2-1) * 1e-4
	}
	graph.Process(noise)
	assert.Zero(t, RMS(noise))

	speech := sine(300, 0.3, BlockSize)
	graph.Process(speech)
	assert.Greater(t, RMS(speech), GateThreshold)
}

func TestGraphResetClearsFilterState(t *testing.T) {
	hp := NewHighPass(HighPassCutoff, SampleRate)
	hp.Process(sine(1000, 0.5, 64))
	hp.Reset()
	assert.Zero(t, hp.x1)
	assert.Zero(t, hp.y1)

	c := NewCompressor(CompressorConfig{ThresholdDB: -50, KneeDB: 40, Ratio: 6, Attack: 0.003, Release: 0.25}, SampleRate)
	c.Process(sine(1000, 0.9, 512))
	assert.Less(t, c.reductionDB, 0.0)
	c.Reset()
	assert.Zero(t, c.reductionDB)
}
