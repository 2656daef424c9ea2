package discussionRoomService

import (
	"github.com/ankitcoder135/AI-Voice-Agent/internal/api/discussion_room"
	discussionRoomRepository "github.com/ankitcoder135/AI-Voice-Agent/internal/api/discussion_room/repository"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/entity"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/voice"
	"github.com/ankitcoder135/AI-Voice-Agent/pkg/redis"
	"github.com/ankitcoder135/AI-Voice-Agent/pkg/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IDiscussionRoomService interface {
	CreateRoom(ctx context.Context, req discussion_room.CreateRoomRequest) (discussion_room.CreateRoomResponse, error)
	GetRoom(ctx context.Context, userID, roomID string) (entity.DiscussionRoom, error)
	ListRooms(ctx context.Context, req discussion_room.ListRoomsRequest) ([]entity.DiscussionRoom, error)
	UpdateConversation(ctx context.Context, userID, roomID string, conversation []entity.ConversationEntry) error
	SaveConversation(ctx context.Context, roomID string, conversation []entity.ConversationEntry) error
	RunLive(ctx context.Context, userID, roomID string, conn LiveConn) error
}

// LiveDependencies are the collaborators a server hosted voice session needs.
// Microphone, player and observer are bound to each websocket.
type LiveDependencies struct {
	Tokens      voice.TokenSource
	Transcriber voice.Transcriber
	Responder   voice.Responder
	Synthesizer voice.Synthesizer
}

func (d LiveDependencies) ready() bool {
	return d.Tokens != nil && d.Transcriber != nil && d.Responder != nil && d.Synthesizer != nil
}

type discussionRoomService struct {
	log                      *logrus.Logger
	discussionRoomRepository discussionRoomRepository.Repository
	redis                    redis.IRedis
	utils                    utils.IUtils
	live                     LiveDependencies
	controllerOpts           []voice.Option
}

type Option func(*discussionRoomService)

// WithControllerOptions tunes every live controller, e.g. the reveal interval.
func WithControllerOptions(opts ...voice.Option) Option {
	return func(s *discussionRoomService) {
		s.controllerOpts = append(s.controllerOpts, opts...)
	}
}

func NewDiscussionRoomService(
	log *logrus.Logger,
	dr discussionRoomRepository.Repository,
	redis redis.IRedis,
	utils utils.IUtils,
	live LiveDependencies,
	opts ...Option,
) IDiscussionRoomService {
	s := &discussionRoomService{
		log:                      log,
		discussionRoomRepository: dr,
		redis:                    redis,
		utils:                    utils,
		live:                     live,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
