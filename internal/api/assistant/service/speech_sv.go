package assistantService

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ankitcoder135/AI-Voice-Agent/internal/api/assistant"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/voice"
	contextPkg "github.com/ankitcoder135/AI-Voice-Agent/pkg/context"
	"github.com/ankitcoder135/AI-Voice-Agent/pkg/redis"
	"github.com/ankitcoder135/AI-Voice-Agent/pkg/response"
	"github.com/ankitcoder135/AI-Voice-Agent/pkg/tts"
	"github.com/sirupsen/logrus"
)

const speechCacheTTL = 24 * time.Hour

// Synthesize returns MP3 speech for text, served from the Redis cache when the
// same voice already spoke the same text. Identical concurrent requests share
// one synthesis call.
func (s *assistantService) Synthesize(ctx context.Context, text, expertName string) (voice.Speech, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if strings.TrimSpace(text) == "" {
		return voice.Speech{}, assistant.ErrTextRequired
	}

	key := s.utils.ContentKey(tts.VoiceFor(expertName).GetName(), text)
	fields := logrus.Fields{
		"request_id": requestID,
		"cache_key":  key,
	}

	if s.redis != nil {
		audio, err := s.redis.GetSpeech(ctx, key)
		if err == nil {
			s.log.WithFields(fields).Debug("Speech cache hit")
			return voice.Speech{Audio: audio, MimeType: tts.MimeTypeMP3}, nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.log.WithFields(fields).WithField("error", err.Error()).Warn("Speech cache unavailable")
		}
	}

	result, err, shared := s.speech.Do(key, func() (interface{}, error) {
		speech, err := s.synthesizer.Synthesize(ctx, text, expertName)
		if err != nil {
			return nil, err
		}

		if s.redis != nil {
			if err := s.redis.SetSpeech(context.WithoutCancel(ctx), key, speech.Audio, speechCacheTTL); err != nil {
				s.log.WithFields(fields).WithField("error", err.Error()).Warn("Failed to cache speech")
			}
		}
		return speech, nil
	})
	if err != nil {
		s.log.WithFields(fields).WithField("error", err.Error()).Error("Speech synthesis failed")
		return voice.Speech{}, response.WithDetails(assistant.ErrSpeechFailed, err)
	}

	if shared {
		s.log.WithFields(fields).Debug("Speech synthesis shared with concurrent request")
	}
	return result.(voice.Speech), nil
}
