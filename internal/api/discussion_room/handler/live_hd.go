package discussionRoomHandler

import (
	"context"
	"time"

	"github.com/ankitcoder135/AI-Voice-Agent/internal/entity"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/middleware"
	contextPkg "github.com/ankitcoder135/AI-Voice-Agent/pkg/context"
	"github.com/ankitcoder135/AI-Voice-Agent/pkg/log"
	"github.com/gofiber/websocket/v2"
)

const (
	liveReadTimeout  = 2 * time.Minute
	liveWriteTimeout = 10 * time.Second
)

// deadlineConn refreshes socket deadlines around every read and write.
type deadlineConn struct {
	*websocket.Conn
}

func (c deadlineConn) ReadMessage() (int, []byte, error) {
	if err := c.SetReadDeadline(time.Now().Add(liveReadTimeout)); err != nil {
		return 0, nil, err
	}
	return c.Conn.ReadMessage()
}

func (c deadlineConn) WriteMessage(messageType int, data []byte) error {
	if err := c.SetWriteDeadline(time.Now().Add(liveWriteTimeout)); err != nil {
		return err
	}
	return c.Conn.WriteMessage(messageType, data)
}

func (h *DiscussionRoomHandler) handleLiveWebSocket(c *websocket.Conn) {
	requestID, _ := c.Locals(middleware.RequestIDKey).(string)
	if requestID == "" {
		requestID = "unknown"
	}
	ctx := contextPkg.WithRequestID(context.Background(), requestID)
	roomID := c.Params("id")

	fields := log.Fields{
		"request_id": requestID,
		"room_id":    roomID,
	}

	user, ok := c.Locals("user").(entity.UserLoginData)
	if !ok {
		h.log.WithFields(fields).Warn("Live socket without authenticated user")
		_ = c.WriteJSON(map[string]string{"type": "error", "message": "Unauthorized"})
		return
	}
	ctx = contextPkg.WithUserID(ctx, user.ID)

	c.SetPingHandler(func(data string) error {
		_ = c.SetReadDeadline(time.Now().Add(liveReadTimeout))
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.WithFields(fields).Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	h.log.WithFields(fields).Info("Live discussion room client connected")
	defer h.log.WithFields(fields).Info("Live discussion room client disconnected")

	if err := h.discussionRoomService.RunLive(ctx, user.ID, roomID, deadlineConn{Conn: c}); err != nil {
		h.log.WithFields(fields).WithField("error", err.Error()).Warn("Live session rejected")
	}
}
