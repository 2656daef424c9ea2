package gemini

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/ankitcoder135/AI-Voice-Agent/internal/voice"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const DefaultModel = "gemini-2.0-flash"

// IGemini answers coaching turns through the native Gemini API.
type IGemini interface {
	Respond(ctx context.Context, req voice.ResponderRequest) (string, error)
	Close() error
}

type geminiClient struct {
	modelName string
	client    *genai.Client
}

func NewGeminiClient() (IGemini, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	modelName := os.Getenv("GEMINI_MODEL_NAME")
	if modelName == "" {
		modelName = DefaultModel
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &geminiClient{
		modelName: modelName,
		client:    client,
	}, nil
}

func (g *geminiClient) Respond(ctx context.Context, req voice.ResponderRequest) (string, error) {
	model := g.client.GenerativeModel(g.modelName)

	prompt := req.Prompt
	if strings.TrimSpace(prompt) == "" {
		prompt = "You are a helpful assistant."
	}
	model.SystemInstruction = genai.NewUserContent(genai.Text(prompt))

	history, message := SplitHistory(req)
	if message == "" {
		return "", errors.New("gemini: nothing to respond to")
	}

	chat := model.StartChat()
	chat.History = history

	res, err := chat.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", err
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no response from Gemini API")
	}

	var b strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	return b.String(), nil
}

// SplitHistory converts the request into chat history plus the message to
// send. When the message repeats the last user entry that entry is sent
// instead of being duplicated.
func SplitHistory(req voice.ResponderRequest) ([]*genai.Content, string) {
	contents := make([]*genai.Content, 0, len(req.History))
	for _, m := range req.History {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		role := "user"
		if strings.EqualFold(m.Role, "assistant") {
			role = "model"
		}
		contents = append(contents, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}

	message := req.Message
	if n := len(contents); n > 0 && contents[n-1].Role == "user" {
		last := string(contents[n-1].Parts[0].(genai.Text))
		if strings.TrimSpace(message) == "" || last == message {
			return contents[:n-1], last
		}
	}
	if strings.TrimSpace(message) == "" {
		return contents, ""
	}

	return contents, message
}

func (g *geminiClient) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
