package assistantHandler

import (
	"context"
	"encoding/base64"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ankitcoder135/AI-Voice-Agent/internal/api/assistant"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/api/discussion_room"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/entity"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/middleware"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/voice"
	jwtPkg "github.com/ankitcoder135/AI-Voice-Agent/pkg/jwt"
	"github.com/ankitcoder135/AI-Voice-Agent/pkg/log"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	_ = os.Setenv("APP_ENV", "test")
	_ = os.Setenv(jwtPkg.AccessTokenSecret, "assistant-test-secret")
	os.Exit(m.Run())
}

type fakeAssistantService struct {
	aiReq    assistant.AIModelRequest
	notesReq assistant.GenerateNotesRequest
}

func (f *fakeAssistantService) Token(context.Context) (assistant.TokenResponse, error) {
	return assistant.TokenResponse{Token: "tok-1"}, nil
}

func (f *fakeAssistantService) AIModel(_ context.Context, req assistant.AIModelRequest) (assistant.AIModelResponse, error) {
	f.aiReq = req
	return assistant.AIModelResponse{Response: assistant.AIModelMessage{Role: "assistant", Content: "echo: " + req.Msg}}, nil
}

func (f *fakeAssistantService) Synthesize(_ context.Context, text, _ string) (voice.Speech, error) {
	if strings.TrimSpace(text) == "" {
		return voice.Speech{}, assistant.ErrTextRequired
	}
	return voice.Speech{Audio: []byte("ID3"), MimeType: "audio/mpeg"}, nil
}

func (f *fakeAssistantService) GenerateNotes(_ context.Context, req assistant.GenerateNotesRequest) (assistant.GenerateNotesResponse, error) {
	f.notesReq = req
	if req.RoomID == "" {
		return assistant.GenerateNotesResponse{}, assistant.ErrRoomIDRequired
	}
	if req.RoomID == "other" {
		return assistant.GenerateNotesResponse{}, discussion_room.ErrRoomForbidden
	}
	return assistant.GenerateNotesResponse{Success: true, Feedback: entity.FeedbackArtifact{Summary: "ok"}}, nil
}

func (f *fakeAssistantService) CoachingOptions() assistant.CoachingOptionsResponse {
	return assistant.CoachingOptionsResponse{Experts: entity.Experts}
}

func newTestApp(t *testing.T) (*fiber.App, *fakeAssistantService, string) {
	t.Helper()
	svc := &fakeAssistantService{}

	logger := log.NewLogger()
	mw := middleware.New(logger)
	app := fiber.New()
	app.Use(mw.NewRequestIDMiddleware())
	New(logger, validator.New(), mw, svc).Start(app.Group("/api/v1"))

	token, _, err := jwtPkg.Sign(map[string]interface{}{"id": "user-1"}, time.Hour)
	require.NoError(t, err)
	return app, svc, token
}

func do(t *testing.T, app *fiber.App, method, target, token, body string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, jsoniter.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func TestGetToken(t *testing.T) {
	app, _, _ := newTestApp(t)

	status, body := do(t, app, "GET", "/api/v1/assistant/token", "", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "tok-1", body["token"])
}

func TestAIModelHandler(t *testing.T) {
	app, svc, _ := newTestApp(t)

	status, body := do(t, app, "POST", "/api/v1/assistant/ai-model", "",
		`{"prompt":"Coach me","msg":"hello","history":[{"role":"user","content":"hello"}]}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Coach me", svc.aiReq.Prompt)
	require.Len(t, svc.aiReq.History, 1)

	response, ok := body["response"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "assistant", response["role"])
	assert.Equal(t, "echo: hello", response["content"])
}

func TestTextToSpeechHandler(t *testing.T) {
	app, _, _ := newTestApp(t)

	status, body := do(t, app, "POST", "/api/v1/assistant/tts", "", `{"text":"hi","expertName":"Vyom"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "audio/mpeg", body["mimeType"])
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("ID3")), body["audio"])

	status, body = do(t, app, "POST", "/api/v1/assistant/tts", "", `{"text":""}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Text is required", body["error"])
}

func TestGenerateNotesHandler(t *testing.T) {
	app, svc, token := newTestApp(t)

	status, _ := do(t, app, "POST", "/api/v1/assistant/generate-notes", "", `{"roomId":"room-1"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body := do(t, app, "POST", "/api/v1/assistant/generate-notes", token,
		`{"roomId":"room-1","topic":"Go","conversation":[{"role":"User","content":"hi"}]}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "user-1", svc.notesReq.UserID)
	assert.Len(t, svc.notesReq.Conversation, 1)

	status, _ = do(t, app, "POST", "/api/v1/assistant/generate-notes", token, `{}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = do(t, app, "POST", "/api/v1/assistant/generate-notes", token, `{"roomId":"other"}`)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestCoachingOptionsHandler(t *testing.T) {
	app, _, _ := newTestApp(t)

	status, body := do(t, app, "GET", "/api/v1/assistant/coaching-options", "", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["experts"], len(entity.Experts))
}
