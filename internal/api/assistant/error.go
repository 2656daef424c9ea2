package assistant

import "github.com/ankitcoder135/AI-Voice-Agent/pkg/response"

var (
	ErrTextRequired   = response.NewError(400, "Text is required")
	ErrRoomIDRequired = response.NewError(400, "roomId is required")
	ErrTokenFailed    = response.NewError(500, "Failed to get transcription token")
	ErrAIModel        = response.NewError(500, "AIModel API error")
	ErrSpeechFailed   = response.NewError(500, "Failed to generate speech")
	ErrNotesFailed    = response.NewError(500, "generateNotes API error")
	ErrSaveFeedback   = response.NewError(500, "failed to save feedback")
)
