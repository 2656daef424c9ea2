package openai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ankitcoder135/AI-Voice-Agent/internal/entity"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/voice"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessagesDefaultsAndFilters(t *testing.T) {
	messages := BuildMessages(voice.ResponderRequest{
		Message: "What is recursion?",
		History: []voice.HistoryMessage{
			{Role: "User", Content: "hi"},
			{Role: "Assistant", Content: "  "},
			{Role: "ASSISTANT", Content: "Hello!"},
			{Role: "system", Content: "sneaky"},
		},
	})

	require.Len(t, messages, 5)
	assert.Equal(t, openai.ChatMessageRoleSystem, messages[0].Role)
	assert.Equal(t, DefaultSystemPrompt, messages[0].Content)
	assert.Equal(t, openai.ChatMessageRoleUser, messages[1].Role)
	assert.Equal(t, openai.ChatMessageRoleAssistant, messages[2].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, messages[3].Role)
	assert.Equal(t, "sneaky", messages[3].Content)
	assert.Equal(t, "What is recursion?", messages[4].Content)
}

func TestBuildMessagesSkipsRepeatedUserMessage(t *testing.T) {
	req := voice.ResponderRequest{
		Prompt:  "You are a tutor.",
		Message: "What is recursion?",
		History: []voice.HistoryMessage{{Role: "User", Content: "What is recursion?"}},
	}
	messages := BuildMessages(req)
	require.Len(t, messages, 2)
	assert.Equal(t, "You are a tutor.", messages[0].Content)

	req.Message = "   "
	assert.Len(t, BuildMessages(req), 2)
}

type completionServer struct {
	mu       sync.Mutex
	bodies   []string
	failJSON bool
	content  string
}

func (s *completionServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.bodies = append(s.bodies, string(body))
		s.mu.Unlock()

		var req openai.ChatCompletionRequest
		require.NoError(t, json.Unmarshal(body, &req))
		if s.failJSON && req.ResponseFormat != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"response_format unsupported","type":"invalid_request_error"}}`))
			return
		}

		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: "assistant", Content: s.content},
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func newTestClient(t *testing.T, s *completionServer) IChat {
	srv := httptest.NewServer(s.handler(t))
	t.Cleanup(srv.Close)
	return New(Config{APIKey: "test-key", BaseURL: srv.URL + "/"})
}

func TestRespondReturnsFirstChoice(t *testing.T) {
	s := &completionServer{content: "Recursion is a function calling itself."}
	client := newTestClient(t, s)

	reply, err := client.Respond(context.Background(), voice.ResponderRequest{Message: "What is recursion?"})

	require.NoError(t, err)
	assert.Equal(t, "Recursion is a function calling itself.", reply)
	require.Len(t, s.bodies, 1)
	assert.Contains(t, s.bodies[0], `"model":"gemini-2.0-flash"`)
}

func TestGenerateNotesFallsBackWithoutResponseFormat(t *testing.T) {
	s := &completionServer{
		failJSON: true,
		content:  `{"summary":"Covered recursion.","notes":["base case"],"feedback":"Good.","action_items":["practice"]}`,
	}
	client := newTestClient(t, s)

	artifact, err := client.GenerateNotes(context.Background(), NotesRequest{
		Topic:          "Recursion",
		CoachingOption: "Topic Base Lecture",
		ExpertName:     "Joanna",
		Conversation: []entity.ConversationEntry{
			{Role: entity.RoleUser, Content: "What is recursion?"},
			{Role: entity.RoleAssistant, Content: "A function calling itself."},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, entity.FeedbackArtifact{
		Summary:     "Covered recursion.",
		Notes:       []string{"base case"},
		Feedback:    "Good.",
		ActionItems: []string{"practice"},
	}, artifact)

	require.Len(t, s.bodies, 2)
	assert.Contains(t, s.bodies[0], `"json_object"`)
	assert.NotContains(t, s.bodies[1], `"json_object"`)
	assert.Contains(t, s.bodies[1], `Using the conversation above, generate the JSON now.`)
	assert.Contains(t, s.bodies[1], `about topic \"Recursion\"`)
}

func TestParseFeedbackFallback(t *testing.T) {
	artifact := ParseFeedback("plain prose answer")
	assert.Equal(t, "plain prose answer", artifact.Summary)
	assert.Equal(t, "plain prose answer", artifact.Feedback)
	assert.Empty(t, artifact.Notes)
	assert.NotNil(t, artifact.Notes)

	empty := ParseFeedback("")
	assert.Equal(t, "No summary provided.", empty.Summary)
	assert.Equal(t, "No feedback provided.", empty.Feedback)

	fenced := ParseFeedback("```json\n{\"summary\":\"s\",\"feedback\":\"f\"}\n```")
	assert.Equal(t, "s", fenced.Summary)
	assert.Equal(t, []string{}, fenced.ActionItems)
}
