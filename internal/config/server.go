package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ankitcoder135/AI-Voice-Agent/database/postgres"
	assistantHandler "github.com/ankitcoder135/AI-Voice-Agent/internal/api/assistant/handler"
	assistantService "github.com/ankitcoder135/AI-Voice-Agent/internal/api/assistant/service"
	discussionRoomHandler "github.com/ankitcoder135/AI-Voice-Agent/internal/api/discussion_room/handler"
	discussionRoomRepository "github.com/ankitcoder135/AI-Voice-Agent/internal/api/discussion_room/repository"
	discussionRoomService "github.com/ankitcoder135/AI-Voice-Agent/internal/api/discussion_room/service"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/middleware"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/voice"
	"github.com/ankitcoder135/AI-Voice-Agent/pkg/assemblyai"
	"github.com/ankitcoder135/AI-Voice-Agent/pkg/gemini"
	"github.com/ankitcoder135/AI-Voice-Agent/pkg/openai"
	"github.com/ankitcoder135/AI-Voice-Agent/pkg/redis"
	"github.com/ankitcoder135/AI-Voice-Agent/pkg/s3"
	"github.com/ankitcoder135/AI-Voice-Agent/pkg/tts"
	"github.com/ankitcoder135/AI-Voice-Agent/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type ServerOption func(*Server) error

type Server struct {
	engine      *fiber.App
	db          *sqlx.DB
	log         *logrus.Logger
	middleware  middleware.Middleware
	validator   *validator.Validate
	utils       utils.IUtils
	handlers    []handler
	redisServer redis.IRedis
	s3Client    s3.ItfS3
	chatClient  openai.IChat
	responder   voice.Responder
	closers     []func() error
	synthesizer tts.ISynthesizer
	tokens      voice.TokenSource
	transcriber voice.Transcriber
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.middleware == nil {
		return nil, fmt.Errorf("middleware is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		s.closers = append(s.closers, db.Close)
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithMiddleware(opts ...middleware.Option) ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log, opts...)
		return nil
	}
}

// WithS3Client enables notes export. Without AWS_BUCKET_NAME the client stays nil.
func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

// WithLLM wires the OpenAI compatible chat client used for notes and, unless
// LLM_PROVIDER selects the native Gemini SDK, for coaching turns as well.
func WithLLM() ServerOption {
	return func(s *Server) error {
		s.chatClient = openai.New(openai.ConfigFromEnv())
		s.responder = s.chatClient

		provider := strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER")))
		switch provider {
		case "", ProviderOpenAI:
		case ProviderGemini:
			client, err := gemini.NewGeminiClient()
			if err != nil {
				if s.log != nil {
					s.log.Errorf("Failed to create Gemini client: %v", err)
				}
				return fmt.Errorf("failed to create Gemini client: %w", err)
			}
			s.responder = client
			s.closers = append(s.closers, client.Close)
		default:
			return fmt.Errorf("unknown LLM_PROVIDER %q", provider)
		}
		return nil
	}
}

func WithTTS() ServerOption {
	return func(s *Server) error {
		client, err := tts.New(context.Background())
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to create text-to-speech client: %v", err)
			}
			return fmt.Errorf("failed to create text-to-speech client: %w", err)
		}
		s.synthesizer = client
		s.closers = append(s.closers, client.Close)
		return nil
	}
}

func WithAssemblyAI() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before assemblyai")
		}
		cfg := assemblyai.ConfigFromEnv()
		if cfg.APIKey == "" {
			s.log.Warn("ASSEMBLY_API_KEY is empty, token and live endpoints will fail")
		}
		s.tokens = assemblyai.NewTokenClient(cfg)
		s.transcriber = assemblyai.NewTranscriber(cfg, s.log)
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	roomRepo := discussionRoomRepository.New(s.db, s.log)

	// Assistant
	assistantServices := assistantService.NewAssistantService(
		s.log, s.tokens, s.responder, s.chatClient, s.synthesizer,
		roomRepo, s.redisServer, s.s3Client, s.utils,
	)
	assistantHandlers := assistantHandler.New(s.log, s.validator, s.middleware, assistantServices)

	// Discussion rooms, live sessions speak through the cached synthesizer
	roomServices := discussionRoomService.NewDiscussionRoomService(
		s.log, roomRepo, s.redisServer, s.utils,
		discussionRoomService.LiveDependencies{
			Tokens:      s.tokens,
			Transcriber: s.transcriber,
			Responder:   s.responder,
			Synthesizer: assistantServices,
		},
	)
	roomHandlers := discussionRoomHandler.New(s.log, s.validator, s.middleware, roomServices)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, assistantHandlers, roomHandlers)
}

func (s *Server) Run() error {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())
	router := s.engine.Group("/api/v1")

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

// Shutdown stops accepting requests, waits for in-flight ones and then
// releases every client the options opened.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.engine.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown fiber: %w", err))
	}

	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
