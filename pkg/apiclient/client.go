package apiclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ankitcoder135/AI-Voice-Agent/internal/api/assistant"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/api/discussion_room"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/entity"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/voice"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// APIError is a non 2xx answer from the server.
type APIError struct {
	Status  int
	Message string `json:"error"`
	Details string `json:"details"`
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("api %d: %s (%s)", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("api %d: %s", e.Status, e.Message)
}

// Client talks to the voice agent API on behalf of one signed in user. It
// satisfies the token, responder, synthesizer and conversation store ports so a
// local controller can run against a remote server.
type Client struct {
	baseURL     string
	accessToken string
	http        *http.Client
}

func New(baseURL, accessToken string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		http:        &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) Token(ctx context.Context) (string, error) {
	var res assistant.TokenResponse
	if err := c.do(ctx, http.MethodGet, "/assistant/token", nil, &res); err != nil {
		return "", err
	}
	return res.Token, nil
}

func (c *Client) Respond(ctx context.Context, req voice.ResponderRequest) (string, error) {
	var res assistant.AIModelResponse
	err := c.do(ctx, http.MethodPost, "/assistant/ai-model", assistant.AIModelRequest{
		Prompt:  req.Prompt,
		Msg:     req.Message,
		History: req.History,
	}, &res)
	if err != nil {
		return "", err
	}
	return res.Response.Content, nil
}

func (c *Client) Synthesize(ctx context.Context, text, expertName string) (voice.Speech, error) {
	var res assistant.TTSResponse
	err := c.do(ctx, http.MethodPost, "/assistant/tts", assistant.TTSRequest{Text: text, ExpertName: expertName}, &res)
	if err != nil {
		return voice.Speech{}, err
	}

	audio, err := base64.StdEncoding.DecodeString(res.Audio)
	if err != nil {
		return voice.Speech{}, fmt.Errorf("decode audio: %w", err)
	}
	return voice.Speech{Audio: audio, MimeType: res.MimeType}, nil
}

func (c *Client) GetRoom(ctx context.Context, roomID string) (discussion_room.RoomResponse, error) {
	var res discussion_room.RoomResponse
	err := c.do(ctx, http.MethodGet, "/discussion-rooms/"+url.PathEscape(roomID), nil, &res)
	return res, err
}

func (c *Client) SaveConversation(ctx context.Context, roomID string, conversation []entity.ConversationEntry) error {
	req := discussion_room.UpdateConversationRequest{
		Conversation: make([]discussion_room.ConversationEntryRequest, 0, len(conversation)),
	}
	for _, e := range conversation {
		req.Conversation = append(req.Conversation, discussion_room.ConversationEntryRequest{
			Role:    string(e.Role),
			Content: e.Content,
		})
	}
	return c.do(ctx, http.MethodPut, "/discussion-rooms/"+url.PathEscape(roomID)+"/conversation", req, nil)
}

func (c *Client) GenerateNotes(ctx context.Context, req assistant.GenerateNotesRequest) (assistant.GenerateNotesResponse, error) {
	var res assistant.GenerateNotesResponse
	err := c.do(ctx, http.MethodPost, "/assistant/generate-notes", req, &res)
	return res, err
}
