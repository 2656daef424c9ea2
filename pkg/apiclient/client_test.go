package apiclient

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ankitcoder135/AI-Voice-Agent/internal/api/assistant"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/entity"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/voice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	auth   string
	body   string
}

func newServer(t *testing.T, status int, reply string) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.auth = r.Header.Get("Authorization")
		rec.body = string(raw)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/v1/", "jwt-1"), rec
}

func TestToken(t *testing.T) {
	c, rec := newServer(t, http.StatusOK, `{"token":"tmp-1"}`)

	token, err := c.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tmp-1", token)
	assert.Equal(t, "/api/v1/assistant/token", rec.path)
	assert.Equal(t, "Bearer jwt-1", rec.auth)
}

func TestRespond(t *testing.T) {
	c, rec := newServer(t, http.StatusOK, `{"response":{"role":"assistant","content":"Hello there"}}`)

	reply, err := c.Respond(context.Background(), voice.ResponderRequest{
		Prompt:  "Coach",
		Message: "hi",
		History: []voice.HistoryMessage{{Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello there", reply)
	assert.Equal(t, http.MethodPost, rec.method)
	assert.JSONEq(t, `{"prompt":"Coach","msg":"hi","history":[{"role":"user","content":"hi"}]}`, rec.body)
}

func TestSynthesize(t *testing.T) {
	audio := base64.StdEncoding.EncodeToString([]byte("ID3-data"))
	c, rec := newServer(t, http.StatusOK, `{"success":true,"audio":"`+audio+`","mimeType":"audio/mpeg"}`)

	speech, err := c.Synthesize(context.Background(), "hello", "Vyom")
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3-data"), speech.Audio)
	assert.Equal(t, "audio/mpeg", speech.MimeType)
	assert.JSONEq(t, `{"text":"hello","expertName":"Vyom"}`, rec.body)
}

func TestSaveConversation(t *testing.T) {
	c, rec := newServer(t, http.StatusOK, `{}`)

	err := c.SaveConversation(context.Background(), "room-1", []entity.ConversationEntry{
		{Role: entity.RoleUser, Content: "hi"},
		{Role: entity.RoleAssistant, Content: "hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, rec.method)
	assert.Equal(t, "/api/v1/discussion-rooms/room-1/conversation", rec.path)
	assert.JSONEq(t, `{"conversation":[{"role":"User","content":"hi"},{"role":"Assistant","content":"hello"}]}`, rec.body)
}

func TestGetRoom(t *testing.T) {
	c, _ := newServer(t, http.StatusOK,
		`{"id":"room-1","topic":"Go","coachingOption":"Mock Interview","expertName":"Vyom","kind":"feedback","conversation":[{"role":"User","content":"hi"}]}`)

	room, err := c.GetRoom(context.Background(), "room-1")
	require.NoError(t, err)
	assert.Equal(t, "Mock Interview", room.CoachingOption)
	assert.Equal(t, entity.RoomKindFeedback, room.Kind)
	require.Len(t, room.Conversation, 1)
}

func TestGenerateNotes(t *testing.T) {
	c, rec := newServer(t, http.StatusOK, `{"success":true,"feedback":{"summary":"s","notes":[],"feedback":"f","action_items":[]}}`)

	res, err := c.GenerateNotes(context.Background(), assistant.GenerateNotesRequest{UserID: "ignored", RoomID: "room-1"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "s", res.Feedback.Summary)
	assert.NotContains(t, rec.body, "ignored")
}

func TestAPIError(t *testing.T) {
	c, _ := newServer(t, http.StatusInternalServerError, `{"error":"AIModel API error","details":"quota"}`)

	_, err := c.Respond(context.Background(), voice.ResponderRequest{Message: "hi"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "AIModel API error", apiErr.Message)
	assert.Equal(t, "quota", apiErr.Details)

	c, _ = newServer(t, http.StatusBadGateway, `upstream down`)
	_, err = c.Token(context.Background())
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}
