package assistantService

import (
	"context"
	"strings"

	"github.com/ankitcoder135/AI-Voice-Agent/internal/api/assistant"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/api/discussion_room"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/entity"
	contextPkg "github.com/ankitcoder135/AI-Voice-Agent/pkg/context"
	"github.com/ankitcoder135/AI-Voice-Agent/pkg/openai"
	"github.com/ankitcoder135/AI-Voice-Agent/pkg/response"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

const notesContentType = "application/json"

// GenerateNotes produces the feedback artifact for a finished session and
// stores it on the room together with the final conversation.
func (s *assistantService) GenerateNotes(ctx context.Context, req assistant.GenerateNotesRequest) (assistant.GenerateNotesResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)
	fields := logrus.Fields{
		"request_id": requestID,
		"room_id":    req.RoomID,
	}

	if strings.TrimSpace(req.RoomID) == "" {
		return assistant.GenerateNotesResponse{}, assistant.ErrRoomIDRequired
	}

	repo, err := s.discussionRoomRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(fields).WithField("error", err.Error()).Error("Failed to create new client")
		return assistant.GenerateNotesResponse{}, err
	}

	if req.UserID != "" {
		room, err := repo.Room.GetRoomByID(ctx, req.RoomID)
		if err != nil {
			return assistant.GenerateNotesResponse{}, err
		}
		if room.UserID != req.UserID {
			s.log.WithFields(fields).Warn("Notes requested for another user's room")
			return assistant.GenerateNotesResponse{}, discussion_room.ErrRoomForbidden
		}
	}

	feedback, err := s.notes.GenerateNotes(ctx, openai.NotesRequest{
		Topic:          req.Topic,
		CoachingOption: req.CoachingOption,
		ExpertName:     req.ExpertName,
		Conversation:   req.Conversation,
	})
	if err != nil {
		s.log.WithFields(fields).WithField("error", err.Error()).Error("Notes generation failed")
		return assistant.GenerateNotesResponse{}, response.WithDetails(assistant.ErrNotesFailed, err)
	}

	if err := repo.Room.UpdateFeedback(ctx, req.RoomID, feedback); err != nil {
		s.log.WithFields(fields).WithField("error", err.Error()).Error("Failed to save feedback")
		return assistant.GenerateNotesResponse{}, response.WithDetails(assistant.ErrSaveFeedback, err)
	}

	if req.Conversation != nil {
		if err := repo.Room.UpdateConversation(ctx, req.RoomID, req.Conversation); err != nil {
			s.log.WithFields(fields).WithField("error", err.Error()).Warn("Failed to save conversation with notes")
		}
	}

	res := assistant.GenerateNotesResponse{Success: true, Feedback: feedback}
	res.ExportURL = s.exportNotes(ctx, req.RoomID, feedback, fields)

	s.log.WithFields(fields).Info("Notes generated")
	return res, nil
}

// exportNotes uploads the artifact to object storage and returns a presigned
// link, or "" when storage is not configured or the upload fails.
func (s *assistantService) exportNotes(ctx context.Context, roomID string, feedback entity.FeedbackArtifact, fields logrus.Fields) string {
	if s.s3 == nil {
		return ""
	}

	body, err := jsoniter.MarshalIndent(feedback, "", "  ")
	if err != nil {
		return ""
	}

	key := "notes/" + roomID + ".json"
	if _, err := s.s3.UploadBytes(ctx, key, body, notesContentType); err != nil {
		s.log.WithFields(fields).WithField("error", err.Error()).Warn("Failed to export notes")
		return ""
	}

	url, err := s.s3.PresignUrl(key)
	if err != nil {
		s.log.WithFields(fields).WithField("error", err.Error()).Warn("Failed to presign notes export")
		return ""
	}
	return url
}
