package voice

import (
	"encoding/binary"
	"math"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

const DefaultChunkDuration = 250 * time.Millisecond

type RecorderConfig struct {
	SampleRate    int
	BlockSize     int
	ChunkDuration time.Duration
}

func (c RecorderConfig) withDefaults() RecorderConfig {
	if c.SampleRate <= 0 {
		c.SampleRate = SampleRate
	}
	if c.BlockSize <= 0 {
		c.BlockSize = BlockSize
	}
	if c.ChunkDuration <= 0 {
		c.ChunkDuration = DefaultChunkDuration
	}
	return c
}

func (c RecorderConfig) chunkSamples() int {
	return int(int64(c.SampleRate) * int64(c.ChunkDuration) / int64(time.Second))
}

// Recorder pumps microphone blocks through the conditioning graph and forwards
// fixed duration PCM chunks while the gate allows it.
type Recorder struct {
	cfg     RecorderConfig
	stream  MicStream
	graph   *Graph
	allow   func() bool
	send    func(chunk []byte) error
	log     *logrus.Logger
	stopped atomic.Bool
	done    chan struct{}
}

func NewRecorder(
	cfg RecorderConfig,
	stream MicStream,
	graph *Graph,
	allow func() bool,
	send func(chunk []byte) error,
	log *logrus.Logger,
) *Recorder {
	return &Recorder{
		cfg:    cfg.withDefaults(),
		stream: stream,
		graph:  graph,
		allow:  allow,
		send:   send,
		log:    log,
		done:   make(chan struct{}),
	}
}

func (r *Recorder) Start() {
	go r.pump()
}

// Stop halts forwarding immediately. The pump exits once the stream returns,
// which Close on the MicStream guarantees; use Wait to join it.
func (r *Recorder) Stop() {
	r.stopped.Store(true)
}

func (r *Recorder) Wait() {
	<-r.done
}

func (r *Recorder) pump() {
	defer close(r.done)

	block := make([]float32, r.cfg.BlockSize)
	chunkSamples := r.cfg.chunkSamples()
	pending := make([]float32, 0, chunkSamples+r.cfg.BlockSize)

	for !r.stopped.Load() {
		n, err := r.stream.Read(block)
		if err != nil {
			if !r.stopped.Load() {
				r.log.WithFields(logrus.Fields{
					"error": err.Error(),
				}).Warn("Microphone stream ended")
			}
			return
		}
		if n == 0 {
			continue
		}

		r.graph.Process(block[:n])
		pending = append(pending, block[:n]...)

		for len(pending) >= chunkSamples {
			chunk := EncodePCM16(pending[:chunkSamples])
			pending = append(pending[:0], pending[chunkSamples:]...)
			r.forward(chunk)
		}
	}
}

func (r *Recorder) forward(chunk []byte) {
	if r.stopped.Load() || !r.allow() {
		return
	}
	if err := r.send(chunk); err != nil {
		r.log.WithFields(logrus.Fields{
			"bytes": len(chunk),
			"error": err.Error(),
		}).Warn("Failed to forward audio chunk")
	}
}

// EncodePCM16 converts float samples in [-1, 1] to signed 16-bit little endian.
func EncodePCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(s*32767)))
	}
	return out
}

// DecodeFloat32 reads little endian float32 samples, ignoring a trailing partial sample.
func DecodeFloat32(data []byte) []float32 {
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out
}
