package discussionRoomHandler

import (
	discussionRoomService "github.com/ankitcoder135/AI-Voice-Agent/internal/api/discussion_room/service"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type DiscussionRoomHandler struct {
	log                   *logrus.Logger
	validator             *validator.Validate
	middleware            middleware.Middleware
	discussionRoomService discussionRoomService.IDiscussionRoomService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	discussionRoomService discussionRoomService.IDiscussionRoomService,
) *DiscussionRoomHandler {
	return &DiscussionRoomHandler{
		log:                   log,
		validator:             validate,
		middleware:            middleware,
		discussionRoomService: discussionRoomService,
	}
}

func (h *DiscussionRoomHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	rooms := srv.Group("/discussion-rooms", h.middleware.NewTokenMiddleware)

	rooms.Post("/", h.CreateRoom)
	rooms.Get("/", h.ListRooms)
	rooms.Get("/:id", h.GetRoom)
	rooms.Put("/:id/conversation", h.UpdateConversation)
	rooms.Get("/:id/live", wsMiddleware, websocket.New(h.handleLiveWebSocket))
}
