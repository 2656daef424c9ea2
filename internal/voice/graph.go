package voice

import "math"

const (
	SampleRate = 16000
	BlockSize  = 4096

	HighPassCutoff = 120.0

	CompressorThresholdDB = -50.0
	CompressorKneeDB      = 40.0
	CompressorRatio       = 6.0
	CompressorAttack      = 0.003
	CompressorRelease     = 0.25

	GateThreshold = 0.01
)

// Stage transforms one block of mono samples in place.
type Stage interface {
	Process(block []float32)
	Reset()
}

// Graph runs blocks through its stages in order.
type Graph struct {
	stages []Stage
}

func NewGraph(stages ...Stage) *Graph {
	return &Graph{stages: stages}
}

// NewVoiceGraph builds the speech conditioning chain used for transcription.
func NewVoiceGraph(sampleRate int) *Graph {
	return NewGraph(
		NewHighPass(HighPassCutoff, sampleRate),
		NewCompressor(CompressorConfig{
			ThresholdDB: CompressorThresholdDB,
			KneeDB:      CompressorKneeDB,
			Ratio:       CompressorRatio,
			Attack:      CompressorAttack,
			Release:     CompressorRelease,
		}, sampleRate),
		NewNoiseGate(GateThreshold),
		NewGain(1),
	)
}

func (g *Graph) Process(block []float32) {
	for _, stage := range g.stages {
		stage.Process(block)
	}
}

func (g *Graph) Reset() {
	for _, stage := range g.stages {
		stage.Reset()
	}
}

// HighPass is a second order Butterworth high-pass biquad.
type HighPass struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

func NewHighPass(cutoff float64, sampleRate int) *HighPass {
	w0 := 2 * math.Pi * cutoff / float64(sampleRate)
	cosW0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * (1 / math.Sqrt2))
	a0 := 1 + alpha

	return &HighPass{
		b0: (1 + cosW0) / 2 / a0,
		b1: -(1 + cosW0) / a0,
		b2: (1 + cosW0) / 2 / a0,
		a1: -2 * cosW0 / a0,
		a2: (1 - alpha) / a0,
	}
}

func (f *HighPass) Process(block []float32) {
	for i, s := range block {
		x := float64(s)
		y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
		f.x2, f.x1 = f.x1, x
		f.y2, f.y1 = f.y1, y
		block[i] = float32(y)
	}
}

func (f *HighPass) Reset() {
	f.x1, f.x2, f.y1, f.y2 = 0, 0, 0, 0
}

type CompressorConfig struct {
	ThresholdDB float64
	KneeDB      float64
	Ratio       float64
	Attack      float64
	Release     float64
}

// Compressor is a feed-forward soft-knee compressor with automatic makeup gain.
type Compressor struct {
	cfg         CompressorConfig
	attackCoef  float64
	releaseCoef float64
	makeupDB    float64
	reductionDB float64
}

func NewCompressor(cfg CompressorConfig, sampleRate int) *Compressor {
	c := &Compressor{
		cfg:         cfg,
		attackCoef:  math.Exp(-1 / (cfg.Attack * float64(sampleRate))),
		releaseCoef: math.Exp(-1 / (cfg.Release * float64(sampleRate))),
	}
	c.makeupDB = -0.6 * c.staticReduction(0)
	return c
}

// staticReduction returns the gain change in dB (zero or negative) for a level.
func (c *Compressor) staticReduction(levelDB float64) float64 {
	over := levelDB - c.cfg.ThresholdDB
	slope := 1/c.cfg.Ratio - 1
	knee := c.cfg.KneeDB

	switch {
	case 2*over < -knee:
		return 0
	case knee > 0 && 2*math.Abs(over) <= knee:
		return slope * (over + knee/2) * (over + knee/2) / (2 * knee)
	default:
		return slope * over
	}
}

func (c *Compressor) Process(block []float32) {
	for i, s := range block {
		level := math.Abs(float64(s))
		levelDB := -120.0
		if level > 1e-6 {
			levelDB = 20 * math.Log10(level)
		}

		target := c.staticReduction(levelDB)
		coef := c.releaseCoef
		if target < c.reductionDB {
			coef = c.attackCoef
		}
		c.reductionDB = coef*c.reductionDB + (1-coef)*target

		block[i] = float32(float64(s) * math.Pow(10, (c.reductionDB+c.makeupDB)/20))
	}
}

func (c *Compressor) Reset() {
	c.reductionDB = 0
}

// NoiseGate silences blocks whose RMS energy is below the threshold.
type NoiseGate struct {
	threshold float64
}

func NewNoiseGate(threshold float64) *NoiseGate {
	return &NoiseGate{threshold: threshold}
}

func (g *NoiseGate) Process(block []float32) {
	if RMS(block) >= g.threshold {
		return
	}
	for i := range block {
		block[i] = 0
	}
}

func (g *NoiseGate) Reset() {}

type Gain struct {
	level float32
}

func NewGain(level float32) *Gain {
	return &Gain{level: level}
}

func (g *Gain) Process(block []float32) {
	if g.level == 1 {
		return
	}
	for i := range block {
		block[i] *= g.level
	}
}

func (g *Gain) Reset() {}

func RMS(block []float32) float64 {
	if len(block) == 0 {
		return 0
	}
	var sum float64
	for _, s := range block {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(block)))
}
