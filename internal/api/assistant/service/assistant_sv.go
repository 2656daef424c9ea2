package assistantService

import (
	"github.com/ankitcoder135/AI-Voice-Agent/internal/api/assistant"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/entity"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/voice"
	contextPkg "github.com/ankitcoder135/AI-Voice-Agent/pkg/context"
	"github.com/ankitcoder135/AI-Voice-Agent/pkg/response"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *assistantService) Token(ctx context.Context) (assistant.TokenResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	token, err := s.tokens.Token(ctx)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to issue transcription token")
		return assistant.TokenResponse{}, response.WithDetails(assistant.ErrTokenFailed, err)
	}

	return assistant.TokenResponse{Token: token}, nil
}

func (s *assistantService) AIModel(ctx context.Context, req assistant.AIModelRequest) (assistant.AIModelResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	content, err := s.responder.Respond(ctx, voice.ResponderRequest{
		Prompt:  req.Prompt,
		Message: req.Msg,
		History: req.History,
	})
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Language model call failed")
		return assistant.AIModelResponse{}, response.WithDetails(assistant.ErrAIModel, err)
	}

	return assistant.AIModelResponse{
		Response: assistant.AIModelMessage{Role: "assistant", Content: content},
	}, nil
}

func (s *assistantService) CoachingOptions() assistant.CoachingOptionsResponse {
	options := make([]assistant.CoachingOptionResponse, 0, len(entity.CoachingOptions))
	for _, option := range entity.CoachingOptions {
		options = append(options, assistant.CoachingOptionResponse{
			CoachingOption: option,
			Kind:           entity.KindOf(option.Name),
		})
	}

	return assistant.CoachingOptionsResponse{
		Options: options,
		Experts: entity.Experts,
	}
}
