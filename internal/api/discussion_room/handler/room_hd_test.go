package discussionRoomHandler

import (
	"context"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ankitcoder135/AI-Voice-Agent/internal/api/discussion_room"
	discussionRoomService "github.com/ankitcoder135/AI-Voice-Agent/internal/api/discussion_room/service"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/entity"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/middleware"
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
	_ = os.Setenv(jwtPkg.AccessTokenSecret, "handler-test-secret")
	os.Exit(m.Run())
}

type fakeRoomService struct {
	created      discussion_room.CreateRoomRequest
	listed       discussion_room.ListRoomsRequest
	rooms        map[string]entity.DiscussionRoom
	conversation []entity.ConversationEntry
}

func (f *fakeRoomService) CreateRoom(_ context.Context, req discussion_room.CreateRoomRequest) (discussion_room.CreateRoomResponse, error) {
	f.created = req
	if _, ok := entity.CoachingOptionByName(req.CoachingOption); !ok {
		return discussion_room.CreateRoomResponse{}, discussion_room.ErrUnknownCoachingOption
	}
	return discussion_room.CreateRoomResponse{ID: "room-new"}, nil
}

func (f *fakeRoomService) GetRoom(_ context.Context, userID, roomID string) (entity.DiscussionRoom, error) {
	room, ok := f.rooms[roomID]
	if !ok {
		return entity.DiscussionRoom{}, discussion_room.ErrRoomNotFound
	}
	if room.UserID != userID {
		return entity.DiscussionRoom{}, discussion_room.ErrRoomForbidden
	}
	return room, nil
}

func (f *fakeRoomService) ListRooms(_ context.Context, req discussion_room.ListRoomsRequest) ([]entity.DiscussionRoom, error) {
	f.listed = req
	var out []entity.DiscussionRoom
	for _, room := range f.rooms {
		if room.UserID == req.UserID {
			out = append(out, room)
		}
	}
	return out, nil
}

func (f *fakeRoomService) UpdateConversation(ctx context.Context, userID, roomID string, conversation []entity.ConversationEntry) error {
	if _, err := f.GetRoom(ctx, userID, roomID); err != nil {
		return err
	}
	f.conversation = conversation
	return nil
}

func (f *fakeRoomService) SaveConversation(context.Context, string, []entity.ConversationEntry) error {
	return nil
}

func (f *fakeRoomService) RunLive(context.Context, string, string, discussionRoomService.LiveConn) error {
	return nil
}

func newTestApp(t *testing.T) (*fiber.App, *fakeRoomService, string) {
	t.Helper()
	svc := &fakeRoomService{rooms: map[string]entity.DiscussionRoom{
		"room-1": {ID: "room-1", UserID: "user-1", Topic: "Go", CoachingOption: "Mock Interview", ExpertName: "Vyom"},
		"room-2": {ID: "room-2", UserID: "user-2", Topic: "Zen", CoachingOption: "Meditation", ExpertName: "Joanna"},
	}}

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

func TestCreateRoomHandler(t *testing.T) {
	app, svc, token := newTestApp(t)

	status, body := do(t, app, "POST", "/api/v1/discussion-rooms", token,
		`{"topic":"Go","coachingOption":"Mock Interview","expertName":"Vyom"}`)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "room-new", body["id"])
	assert.Equal(t, "user-1", svc.created.UserID)

	status, body = do(t, app, "POST", "/api/v1/discussion-rooms", token,
		`{"topic":"Go","coachingOption":"Karaoke","expertName":"Vyom"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "unknown coaching option", body["error"])

	status, body = do(t, app, "POST", "/api/v1/discussion-rooms", token, `{"topic":"Go"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
}

func TestRoomsRequireToken(t *testing.T) {
	app, _, _ := newTestApp(t)

	status, _ := do(t, app, "GET", "/api/v1/discussion-rooms", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestGetRoomHandler(t *testing.T) {
	app, _, token := newTestApp(t)

	status, body := do(t, app, "GET", "/api/v1/discussion-rooms/room-1", token, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "feedback", body["kind"])
	assert.Equal(t, []interface{}{}, body["conversation"])

	status, _ = do(t, app, "GET", "/api/v1/discussion-rooms/room-2", token, "")
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = do(t, app, "GET", "/api/v1/discussion-rooms/missing", token, "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestListRoomsHandler(t *testing.T) {
	app, svc, token := newTestApp(t)

	status, body := do(t, app, "GET", "/api/v1/discussion-rooms?kind=feedback", token, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "feedback", svc.listed.Kind)
	assert.Len(t, body["rooms"], 1)

	status, _ = do(t, app, "GET", "/api/v1/discussion-rooms?kind=nope", token, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestUpdateConversationHandler(t *testing.T) {
	app, svc, token := newTestApp(t)

	status, _ := do(t, app, "PUT", "/api/v1/discussion-rooms/room-1/conversation", token,
		`{"conversation":[{"role":"User","content":"hi"},{"role":"Assistant","content":"hello"}]}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []entity.ConversationEntry{
		{Role: entity.RoleUser, Content: "hi"},
		{Role: entity.RoleAssistant, Content: "hello"},
	}, svc.conversation)

	status, _ = do(t, app, "PUT", "/api/v1/discussion-rooms/room-1/conversation", token,
		`{"conversation":[{"role":"Robot","content":"beep"}]}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestLiveRequiresUpgrade(t *testing.T) {
	app, _, token := newTestApp(t)

	status, _ := do(t, app, "GET", "/api/v1/discussion-rooms/room-1/live?access_token="+token, "", "")
	assert.Equal(t, fiber.StatusUpgradeRequired, status)
}
