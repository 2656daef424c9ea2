package assistantService

import (
	"github.com/ankitcoder135/AI-Voice-Agent/internal/api/assistant"
	discussionRoomRepository "github.com/ankitcoder135/AI-Voice-Agent/internal/api/discussion_room/repository"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/entity"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/voice"
	"github.com/ankitcoder135/AI-Voice-Agent/pkg/openai"
	"github.com/ankitcoder135/AI-Voice-Agent/pkg/redis"
	"github.com/ankitcoder135/AI-Voice-Agent/pkg/s3"
	"github.com/ankitcoder135/AI-Voice-Agent/pkg/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"golang.org/x/sync/singleflight"
)

type IAssistantService interface {
	Token(ctx context.Context) (assistant.TokenResponse, error)
	AIModel(ctx context.Context, req assistant.AIModelRequest) (assistant.AIModelResponse, error)
	Synthesize(ctx context.Context, text, expertName string) (voice.Speech, error)
	GenerateNotes(ctx context.Context, req assistant.GenerateNotesRequest) (assistant.GenerateNotesResponse, error)
	CoachingOptions() assistant.CoachingOptionsResponse
}

type NotesGenerator interface {
	GenerateNotes(ctx context.Context, req openai.NotesRequest) (entity.FeedbackArtifact, error)
}

type assistantService struct {
	log                      *logrus.Logger
	tokens                   voice.TokenSource
	responder                voice.Responder
	notes                    NotesGenerator
	synthesizer              voice.Synthesizer
	discussionRoomRepository discussionRoomRepository.Repository
	redis                    redis.IRedis
	s3                       s3.ItfS3
	utils                    utils.IUtils
	speech                   singleflight.Group
}

func NewAssistantService(
	log *logrus.Logger,
	tokens voice.TokenSource,
	responder voice.Responder,
	notes NotesGenerator,
	synthesizer voice.Synthesizer,
	dr discussionRoomRepository.Repository,
	redis redis.IRedis,
	s3 s3.ItfS3,
	utils utils.IUtils,
) IAssistantService {
	return &assistantService{
		log:                      log,
		tokens:                   tokens,
		responder:                responder,
		notes:                    notes,
		synthesizer:              synthesizer,
		discussionRoomRepository: dr,
		redis:                    redis,
		s3:                       s3,
		utils:                    utils,
	}
}
