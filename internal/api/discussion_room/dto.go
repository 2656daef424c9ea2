package discussion_room

import (
	"time"

	"github.com/ankitcoder135/AI-Voice-Agent/internal/entity"
)

type CreateRoomRequest struct {
	UserID         string `json:"-"`
	Topic          string `json:"topic" validate:"required,max=500"`
	CoachingOption string `json:"coachingOption" validate:"required"`
	ExpertName     string `json:"expertName" validate:"required"`
}

type CreateRoomResponse struct {
	ID string `json:"id"`
}

type ListRoomsRequest struct {
	UserID string `json:"-"`
	Kind   string `query:"kind" validate:"omitempty,oneof=lecture feedback"`
}

type UpdateConversationRequest struct {
	Conversation []ConversationEntryRequest `json:"conversation" validate:"dive"`
}

type ConversationEntryRequest struct {
	Role    string `json:"role" validate:"required,oneof=User Assistant"`
	Content string `json:"content"`
}

type RoomResponse struct {
	ID             string                     `json:"id"`
	Topic          string                     `json:"topic"`
	CoachingOption string                     `json:"coachingOption"`
	ExpertName     string                     `json:"expertName"`
	Kind           entity.RoomKind            `json:"kind"`
	Conversation   []entity.ConversationEntry `json:"conversation"`
	Feedback       *entity.FeedbackArtifact   `json:"feedback,omitempty"`
	CreatedAt      time.Time                  `json:"createdAt"`
	UpdatedAt      time.Time                  `json:"updatedAt"`
}

type ListRoomsResponse struct {
	Rooms []RoomResponse `json:"rooms"`
}

func NewRoomResponse(room entity.DiscussionRoom) RoomResponse {
	conversation := room.Conversation
	if conversation == nil {
		conversation = []entity.ConversationEntry{}
	}

	return RoomResponse{
		ID:             room.ID,
		Topic:          room.Topic,
		CoachingOption: room.CoachingOption,
		ExpertName:     room.ExpertName,
		Kind:           entity.KindOf(room.CoachingOption),
		Conversation:   conversation,
		Feedback:       room.Feedback,
		CreatedAt:      room.CreatedAt,
		UpdatedAt:      room.UpdatedAt,
	}
}

func (r UpdateConversationRequest) Entries() []entity.ConversationEntry {
	entries := make([]entity.ConversationEntry, 0, len(r.Conversation))
	for _, e := range r.Conversation {
		entries = append(entries, entity.ConversationEntry{Role: entity.Role(e.Role), Content: e.Content})
	}
	return entries
}

// Live session frames. The client sends binary microphone blocks plus the
// JSON control frames below; the server answers with JSON frames only.
const (
	FrameConnect       = "connect"
	FrameDisconnect    = "disconnect"
	FrameMicReady      = "mic_ready"
	FrameMicDenied     = "mic_denied"
	FramePlaybackEnded = "playback_ended"
	FramePlaybackError = "playback_error"

	FrameStatus     = "status"
	FramePartial    = "partial"
	FrameEntry      = "entry"
	FrameMicRequest = "mic_request"
	FrameSpeech     = "speech"
	FrameSpeechStop = "speech_stop"
	FrameError      = "error"

	EntryOpAppend = "append"
	EntryOpUpdate = "update"
)

type ClientFrame struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

type StatusFrame struct {
	Type       string `json:"type"`
	State      string `json:"state"`
	Message    string `json:"message,omitempty"`
	Typing     bool   `json:"typing"`
	Speaking   bool   `json:"speaking"`
	Processing bool   `json:"processing"`
}

type PartialFrame struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type EntryFrame struct {
	Type    string      `json:"type"`
	Index   int         `json:"index"`
	Role    entity.Role `json:"role"`
	Content string      `json:"content"`
	Op      string      `json:"op"`
}

type SpeechFrame struct {
	Type     string `json:"type"`
	Audio    string `json:"audio"`
	MimeType string `json:"mime_type"`
}

type SignalFrame struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}
