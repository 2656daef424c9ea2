package assistantHandler

import (
	assistantService "github.com/ankitcoder135/AI-Voice-Agent/internal/api/assistant/service"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AssistantHandler struct {
	log              *logrus.Logger
	validator        *validator.Validate
	middleware       middleware.Middleware
	assistantService assistantService.IAssistantService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	assistantService assistantService.IAssistantService,
) *AssistantHandler {
	return &AssistantHandler{
		log:              log,
		validator:        validate,
		middleware:       middleware,
		assistantService: assistantService,
	}
}

func (h *AssistantHandler) Start(srv fiber.Router) {
	assistant := srv.Group("/assistant", h.middleware.NewRateLimiter)

	assistant.Get("/token", h.GetToken)
	assistant.Post("/ai-model", h.AIModel)
	assistant.Post("/tts", h.TextToSpeech)
	assistant.Post("/generate-notes", h.middleware.NewTokenMiddleware, h.GenerateNotes)
	assistant.Get("/coaching-options", h.CoachingOptions)
}
