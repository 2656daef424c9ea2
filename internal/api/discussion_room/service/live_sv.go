package discussionRoomService

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ankitcoder135/AI-Voice-Agent/internal/api/discussion_room"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/entity"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/voice"
	contextPkg "github.com/ankitcoder135/AI-Voice-Agent/pkg/context"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

const (
	liveLockTTL        = 2 * time.Hour
	liveReleaseTimeout = 5 * time.Second
)

// RunLive hosts a voice controller for the room on conn until the socket
// closes. Only one live session per room may run across instances.
func (s *discussionRoomService) RunLive(ctx context.Context, userID, roomID string, conn LiveConn) error {
	requestID := contextPkg.GetRequestID(ctx)
	fields := logrus.Fields{
		"request_id": requestID,
		"room_id":    roomID,
		"user_id":    userID,
	}
	out := &frameWriter{conn: conn, log: s.log.WithFields(fields)}

	if !s.live.ready() {
		out.sendError(discussion_room.ErrLiveUnavailable.Error())
		return discussion_room.ErrLiveUnavailable
	}

	room, err := s.GetRoom(ctx, userID, roomID)
	if err != nil {
		out.sendError(err.Error())
		return err
	}

	release, err := s.lockRoom(ctx, roomID, fields)
	if err != nil {
		out.sendError(err.Error())
		return err
	}
	defer release()

	prompt := ""
	if option, ok := entity.CoachingOptionByName(room.CoachingOption); ok {
		prompt = option.Prompt(room.Topic)
	}

	mic := newRemoteMicrophone(out)
	player := newRemotePlayer(out)

	opts := append([]voice.Option{voice.WithInitialHistory(room.Conversation)}, s.controllerOpts...)
	controller := voice.NewController(voice.RoomConfig{
		RoomID:         room.ID,
		Topic:          room.Topic,
		CoachingOption: room.CoachingOption,
		ExpertName:     room.ExpertName,
		Prompt:         prompt,
	}, voice.Dependencies{
		Tokens:      s.live.Tokens,
		Transcriber: s.live.Transcriber,
		Microphone:  mic,
		Responder:   s.live.Responder,
		Synthesizer: s.live.Synthesizer,
		Player:      player,
		Store:       s,
		Observer:    liveObserver{out: out},
		Log:         s.log,
	}, opts...)

	s.log.WithFields(fields).Info("Live session started")

	session := &liveSession{
		out:        out,
		mic:        mic,
		player:     player,
		controller: controller,
		log:        s.log.WithFields(fields),
	}
	session.serve(ctx)

	s.log.WithFields(fields).Info("Live session ended")
	return nil
}

// lockRoom claims the room for this connection and returns its release func.
func (s *discussionRoomService) lockRoom(ctx context.Context, roomID string, fields logrus.Fields) (func(), error) {
	if s.redis == nil {
		return func() {}, nil
	}

	owner, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		return nil, err
	}

	acquired, err := s.redis.AcquireRoomLock(ctx, roomID, owner, liveLockTTL)
	if err != nil {
		s.log.WithFields(fields).WithField("error", err.Error()).Error("Failed to lock discussion room")
		return nil, err
	}
	if !acquired {
		s.log.WithFields(fields).Warn("Discussion room already has a live session")
		return nil, discussion_room.ErrRoomBusy
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), liveReleaseTimeout)
		defer cancel()
		if err := s.redis.ReleaseRoomLock(releaseCtx, roomID, owner); err != nil {
			s.log.WithFields(fields).WithField("error", err.Error()).Warn("Failed to release discussion room lock")
		}
	}, nil
}

type liveSession struct {
	out        *frameWriter
	mic        *remoteMicrophone
	player     *remotePlayer
	controller *voice.Controller
	log        *logrus.Entry
	pending    sync.WaitGroup
}

func (l *liveSession) serve(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)

	defer func() {
		cancel()
		l.mic.shutdown()
		l.player.shutdown()
		l.pending.Wait()

		if err := l.controller.Disconnect(context.WithoutCancel(parent)); err != nil {
			l.log.WithField("error", err.Error()).Warn("Failed to disconnect live session")
		}
	}()

	liveObserver{out: l.out}.StatusChanged(l.controller.Status())

	for {
		messageType, data, err := l.conn().ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				l.log.WithField("error", err.Error()).Warn("Live socket closed unexpectedly")
			}
			return
		}

		switch messageType {
		case websocket.BinaryMessage:
			l.mic.push(voice.DecodeFloat32(data))
		case websocket.TextMessage:
			l.handleFrame(ctx, data)
		}
	}
}

func (l *liveSession) conn() LiveConn {
	return l.out.conn
}

func (l *liveSession) handleFrame(ctx context.Context, data []byte) {
	var frame discussion_room.ClientFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		l.out.sendError("invalid frame")
		return
	}

	switch frame.Type {
	case discussion_room.FrameConnect:
		l.async(func() {
			if err := l.controller.Connect(ctx); err != nil {
				l.out.sendError(err.Error())
			}
		})
	case discussion_room.FrameDisconnect:
		l.async(func() {
			if err := l.controller.Disconnect(context.WithoutCancel(ctx)); err != nil {
				l.out.sendError(err.Error())
			}
		})
	case discussion_room.FrameMicReady:
		l.mic.resolve(nil)
	case discussion_room.FrameMicDenied:
		l.mic.resolve(withMessage(errMicDenied, frame.Message))
	case discussion_room.FramePlaybackEnded:
		l.player.finish(nil)
	case discussion_room.FramePlaybackError:
		l.player.finish(withMessage(errPlaybackFail, frame.Message))
	default:
		l.out.sendError("unknown frame type: " + frame.Type)
	}
}

func (l *liveSession) async(fn func()) {
	l.pending.Add(1)
	go func() {
		defer l.pending.Done()
		fn()
	}()
}

func withMessage(err error, message string) error {
	if message == "" {
		return err
	}
	return fmt.Errorf("%w: %s", err, message)
}
