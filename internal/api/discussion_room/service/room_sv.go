package discussionRoomService

import (
	"errors"
	"time"

	"github.com/ankitcoder135/AI-Voice-Agent/internal/api/discussion_room"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/entity"
	contextPkg "github.com/ankitcoder135/AI-Voice-Agent/pkg/context"
	"github.com/ankitcoder135/AI-Voice-Agent/pkg/response"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *discussionRoomService) CreateRoom(ctx context.Context, req discussion_room.CreateRoomRequest) (discussion_room.CreateRoomResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	option, ok := entity.CoachingOptionByName(req.CoachingOption)
	if !ok {
		s.log.WithFields(logrus.Fields{
			"request_id":      requestID,
			"coaching_option": req.CoachingOption,
		}).Warn("Unknown coaching option")
		return discussion_room.CreateRoomResponse{}, discussion_room.ErrUnknownCoachingOption
	}

	if !entity.IsKnownExpert(req.ExpertName) {
		s.log.WithFields(logrus.Fields{
			"request_id":  requestID,
			"expert_name": req.ExpertName,
		}).Warn("Unknown expert")
		return discussion_room.CreateRoomResponse{}, discussion_room.ErrUnknownExpert
	}

	repo, err := s.discussionRoomRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return discussion_room.CreateRoomResponse{}, err
	}

	ULID, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate ULID")
		return discussion_room.CreateRoomResponse{}, err
	}

	room := entity.DiscussionRoom{
		ID:             ULID,
		UserID:         req.UserID,
		Topic:          req.Topic,
		CoachingOption: option.Name,
		ExpertName:     req.ExpertName,
		Conversation:   []entity.ConversationEntry{},
	}

	if err := repo.Room.CreateRoom(ctx, room); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create discussion room")
		return discussion_room.CreateRoomResponse{}, response.WithDetails(discussion_room.ErrCreateRoom, err)
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"room_id":    room.ID,
		"user_id":    room.UserID,
	}).Info("Discussion room created")

	return discussion_room.CreateRoomResponse{ID: room.ID}, nil
}

// GetRoom loads a room and checks that it belongs to userID.
func (s *discussionRoomService) GetRoom(ctx context.Context, userID, roomID string) (entity.DiscussionRoom, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.discussionRoomRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return entity.DiscussionRoom{}, err
	}

	room, err := repo.Room.GetRoomByID(ctx, roomID)
	if err != nil {
		return entity.DiscussionRoom{}, err
	}

	if room.UserID != userID {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"room_id":    roomID,
			"user_id":    userID,
		}).Warn("Discussion room belongs to another user")
		return entity.DiscussionRoom{}, discussion_room.ErrRoomForbidden
	}

	return room, nil
}

func (s *discussionRoomService) ListRooms(ctx context.Context, req discussion_room.ListRoomsRequest) ([]entity.DiscussionRoom, error) {
	requestID := contextPkg.GetRequestID(ctx)

	kind := entity.RoomKind(req.Kind)
	if kind != "" && kind != entity.RoomKindLecture && kind != entity.RoomKindFeedback {
		return nil, discussion_room.ErrInvalidKind
	}

	repo, err := s.discussionRoomRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return nil, err
	}

	rooms, err := repo.Room.GetRoomsByUserID(ctx, req.UserID)
	if err != nil {
		return nil, response.WithDetails(discussion_room.ErrGetRooms, err)
	}

	if kind == "" {
		return rooms, nil
	}

	filtered := make([]entity.DiscussionRoom, 0, len(rooms))
	for _, room := range rooms {
		if entity.KindOf(room.CoachingOption) == kind {
			filtered = append(filtered, room)
		}
	}
	return filtered, nil
}

func (s *discussionRoomService) UpdateConversation(ctx context.Context, userID, roomID string, conversation []entity.ConversationEntry) error {
	if _, err := s.GetRoom(ctx, userID, roomID); err != nil {
		return err
	}
	return s.SaveConversation(ctx, roomID, conversation)
}

// SaveConversation replaces the stored conversation without an ownership
// check. Live sessions use it after the room was already authorized.
func (s *discussionRoomService) SaveConversation(ctx context.Context, roomID string, conversation []entity.ConversationEntry) error {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.discussionRoomRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return err
	}

	if err := repo.Room.UpdateConversation(ctx, roomID, conversation); err != nil {
		if errors.Is(err, discussion_room.ErrRoomNotFound) {
			return err
		}
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"room_id":    roomID,
			"error":      err.Error(),
		}).Error("Failed to save conversation")
		return response.WithDetails(discussion_room.ErrUpdateRoom, err)
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"room_id":    roomID,
		"entries":    len(conversation),
	}).Debug("Conversation saved")
	return nil
}
