package assistant

import (
	"github.com/ankitcoder135/AI-Voice-Agent/internal/entity"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/voice"
)

type TokenResponse struct {
	Token string `json:"token"`
}

type AIModelRequest struct {
	Prompt  string                 `json:"prompt"`
	Msg     string                 `json:"msg"`
	History []voice.HistoryMessage `json:"history"`
}

type AIModelMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type AIModelResponse struct {
	Response AIModelMessage `json:"response"`
}

type TTSRequest struct {
	Text       string `json:"text"`
	ExpertName string `json:"expertName"`
}

type TTSResponse struct {
	Success  bool   `json:"success"`
	Audio    string `json:"audio"`
	MimeType string `json:"mimeType"`
}

type GenerateNotesRequest struct {
	UserID         string                     `json:"-"`
	RoomID         string                     `json:"roomId"`
	Topic          string                     `json:"topic"`
	CoachingOption string                     `json:"coachingOption"`
	ExpertName     string                     `json:"expertName"`
	Conversation   []entity.ConversationEntry `json:"conversation"`
}

type GenerateNotesResponse struct {
	Success   bool                    `json:"success"`
	Feedback  entity.FeedbackArtifact `json:"feedback"`
	ExportURL string                  `json:"export_url,omitempty"`
}

type CoachingOptionResponse struct {
	entity.CoachingOption
	Kind entity.RoomKind `json:"kind"`
}

type CoachingOptionsResponse struct {
	Options []CoachingOptionResponse `json:"options"`
	Experts []entity.Expert          `json:"experts"`
}
