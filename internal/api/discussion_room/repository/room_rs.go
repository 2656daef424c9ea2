package discussionRoomRepository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ankitcoder135/AI-Voice-Agent/internal/api/discussion_room"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/entity"
	contextPkg "github.com/ankitcoder135/AI-Voice-Agent/pkg/context"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type DiscussionRoomDB struct {
	ID             sql.NullString `db:"id"`
	UserID         sql.NullString `db:"user_id"`
	Topic          sql.NullString `db:"topic"`
	CoachingOption sql.NullString `db:"coaching_option"`
	ExpertName     sql.NullString `db:"expert_name"`
	Conversation   []byte         `db:"conversation"`
	Feedback       []byte         `db:"feedback"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (r *roomRepository) CreateRoom(c context.Context, room entity.DiscussionRoom) error {
	requestID := contextPkg.GetRequestID(c)

	conversation, err := encodeConversation(room.Conversation)
	if err != nil {
		return err
	}

	now := time.Now()
	argsKV := map[string]interface{}{
		"id":              room.ID,
		"user_id":         room.UserID,
		"topic":           room.Topic,
		"coaching_option": room.CoachingOption,
		"expert_name":     room.ExpertName,
		"conversation":    conversation,
		"created_at":      now,
		"updated_at":      now,
	}

	query, args, err := sqlx.Named(queryCreateRoom, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateRoom")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating discussion room")
		return err
	}

	return nil
}

func (r *roomRepository) GetRoomByID(c context.Context, id string) (entity.DiscussionRoom, error) {
	requestID := contextPkg.GetRequestID(c)
	var room DiscussionRoomDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryGetRoomByID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetRoomByID named query preparation err")
		return entity.DiscussionRoom{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&room); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"room_id":    id,
			}).Warn("GetRoomByID no rows found")
			return entity.DiscussionRoom{}, discussion_room.ErrRoomNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetRoomByID execution err")
		return entity.DiscussionRoom{}, err
	}

	return r.makeDiscussionRoom(c, room), nil
}

func (r *roomRepository) GetRoomsByUserID(c context.Context, userID string) ([]entity.DiscussionRoom, error) {
	requestID := contextPkg.GetRequestID(c)
	var rooms []DiscussionRoomDB

	argsKV := map[string]interface{}{
		"user_id": userID,
	}

	query, args, err := sqlx.Named(queryGetRoomsByUserID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetRoomsByUserID named query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	if err := r.q.SelectContext(c, &rooms, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetRoomsByUserID execution err")
		return nil, err
	}

	result := make([]entity.DiscussionRoom, 0, len(rooms))
	for _, room := range rooms {
		result = append(result, r.makeDiscussionRoom(c, room))
	}

	return result, nil
}

func (r *roomRepository) UpdateConversation(c context.Context, id string, conversation []entity.ConversationEntry) error {
	encoded, err := encodeConversation(conversation)
	if err != nil {
		return err
	}

	return r.update(c, queryUpdateConversation, "UpdateConversation", map[string]interface{}{
		"id":           id,
		"conversation": encoded,
		"updated_at":   time.Now(),
	})
}

func (r *roomRepository) UpdateFeedback(c context.Context, id string, feedback entity.FeedbackArtifact) error {
	encoded, err := json.Marshal(feedback)
	if err != nil {
		return err
	}

	return r.update(c, queryUpdateFeedback, "UpdateFeedback", map[string]interface{}{
		"id":         id,
		"feedback":   encoded,
		"updated_at": time.Now(),
	})
}

func (r *roomRepository) update(c context.Context, namedQuery, operation string, argsKV map[string]interface{}) error {
	requestID := contextPkg.GetRequestID(c)

	query, args, err := sqlx.Named(namedQuery, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error(operation + " named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error(operation + " execution err")
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return discussion_room.ErrRoomNotFound
	}

	return nil
}

func encodeConversation(conversation []entity.ConversationEntry) ([]byte, error) {
	if conversation == nil {
		conversation = []entity.ConversationEntry{}
	}
	return json.Marshal(conversation)
}

func (r *roomRepository) makeDiscussionRoom(c context.Context, room DiscussionRoomDB) entity.DiscussionRoom {
	result := entity.DiscussionRoom{
		ID:             room.ID.String,
		UserID:         room.UserID.String,
		Topic:          room.Topic.String,
		CoachingOption: room.CoachingOption.String,
		ExpertName:     room.ExpertName.String,
		Conversation:   []entity.ConversationEntry{},
		CreatedAt:      room.CreatedAt,
		UpdatedAt:      room.UpdatedAt,
	}

	if len(room.Conversation) > 0 {
		if err := json.Unmarshal(room.Conversation, &result.Conversation); err != nil {
			r.log.WithFields(logrus.Fields{
				"request_id": contextPkg.GetRequestID(c),
				"room_id":    result.ID,
				"error":      err.Error(),
			}).Warn("Stored conversation is not valid JSON")
			result.Conversation = []entity.ConversationEntry{}
		}
	}

	if len(room.Feedback) > 0 {
		var feedback entity.FeedbackArtifact
		if err := json.Unmarshal(room.Feedback, &feedback); err == nil {
			result.Feedback = &feedback
		}
	}

	return result
}
