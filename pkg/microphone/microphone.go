package microphone

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ankitcoder135/AI-Voice-Agent/internal/voice"
	"github.com/gordonklaus/portaudio"
	"github.com/sirupsen/logrus"
)

const queueSize = 8

// Microphone captures mono float32 blocks from the default input device.
type Microphone struct {
	blockSize int
	log       *logrus.Logger
}

func New(blockSize int, log *logrus.Logger) *Microphone {
	if blockSize <= 0 {
		blockSize = voice.BlockSize
	}
	return &Microphone{blockSize: blockSize, log: log}
}

func (m *Microphone) Open(ctx context.Context, sampleRate int) (voice.MicStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}

	buf := make([]float32, m.blockSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), len(buf), buf)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("start input stream: %w", err)
	}

	s := &micStream{
		stream: stream,
		buf:    buf,
		blocks: make(chan []float32, queueSize),
		done:   make(chan struct{}),
		log:    m.log,
	}
	s.wg.Add(1)
	go s.pump()
	return s, nil
}

type micStream struct {
	stream *portaudio.Stream
	buf    []float32
	blocks chan []float32
	done   chan struct{}
	log    *logrus.Logger

	wg        sync.WaitGroup
	closeOnce sync.Once
	mu        sync.Mutex
	err       error
}

// pump owns the portaudio stream; it is the only goroutine touching it.
func (s *micStream) pump() {
	defer s.wg.Done()
	defer close(s.blocks)
	defer func() {
		_ = s.stream.Stop()
		_ = s.stream.Close()
		_ = portaudio.Terminate()
	}()

	for {
		select {
		case <-s.done:
			return
		default:
		}

		if err := s.stream.Read(); err != nil {
			if errors.Is(err, portaudio.InputOverflowed) {
				s.log.Debug("Microphone input overflowed")
				continue
			}
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
			return
		}

		block := make([]float32, len(s.buf))
		copy(block, s.buf)
		select {
		case s.blocks <- block:
		case <-s.done:
			return
		default:
			s.log.Debug("Microphone block dropped, reader is behind")
		}
	}
}

func (s *micStream) Read(block []float32) (int, error) {
	select {
	case b, ok := <-s.blocks:
		if !ok {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.err != nil {
				return 0, s.err
			}
			return 0, io.EOF
		}
		return copy(block, b), nil
	case <-s.done:
		return 0, io.EOF
	}
}

func (s *micStream) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.wg.Wait()
	return nil
}
