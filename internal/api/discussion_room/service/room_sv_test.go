package discussionRoomService

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/api/discussion_room"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/entity"
	"github.com/ankitcoder135/AI-Voice-Agent/pkg/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRoom(t *testing.T) {
	f := newLiveFixture(t, false)
	f.mock.ExpectExec("INSERT INTO discussion_rooms").
		WithArgs(sqlmock.AnyArg(), "user-1", "Go", "Mock Interview", "Vyom", []byte("[]"), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	res, err := f.svc.CreateRoom(context.Background(), discussion_room.CreateRoomRequest{
		UserID:         "user-1",
		Topic:          "Go",
		CoachingOption: "Mock Interview",
		ExpertName:     "Vyom",
	})
	require.NoError(t, err)
	assert.Len(t, res.ID, 26)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateRoomValidation(t *testing.T) {
	f := newLiveFixture(t, false)

	_, err := f.svc.CreateRoom(context.Background(), discussion_room.CreateRoomRequest{
		UserID: "user-1", Topic: "Go", CoachingOption: "Karaoke", ExpertName: "Vyom",
	})
	assert.ErrorIs(t, err, discussion_room.ErrUnknownCoachingOption)

	_, err = f.svc.CreateRoom(context.Background(), discussion_room.CreateRoomRequest{
		UserID: "user-1", Topic: "Go", CoachingOption: "Meditation", ExpertName: "Nobody",
	})
	assert.ErrorIs(t, err, discussion_room.ErrUnknownExpert)
}

func TestCreateRoomDatabaseError(t *testing.T) {
	f := newLiveFixture(t, false)
	f.mock.ExpectExec("INSERT INTO discussion_rooms").WillReturnError(errors.New("disk full"))

	_, err := f.svc.CreateRoom(context.Background(), discussion_room.CreateRoomRequest{
		UserID: "user-1", Topic: "Go", CoachingOption: "Meditation", ExpertName: "Joanna",
	})
	assert.ErrorIs(t, err, discussion_room.ErrCreateRoom)

	var respErr *response.Error
	require.True(t, errors.As(err, &respErr))
	assert.Equal(t, "disk full", respErr.Details)
}

func TestListRoomsByKind(t *testing.T) {
	f := newLiveFixture(t, false)
	now := time.Now()
	rows := func() *sqlmock.Rows {
		return sqlmock.NewRows(roomColumns).
			AddRow("r3", "user-1", "Go", "Mock Interview", "Vyom", []byte(`[]`), nil, now, now).
			AddRow("r2", "user-1", "Calm", "Meditation", "Joanna", []byte(`[]`), nil, now, now).
			AddRow("r1", "user-1", "SQL", "Ques Ans Prep", "Sallie", []byte(`[]`), nil, now, now)
	}
	f.mock.ExpectQuery("FROM discussion_rooms WHERE user_id").WithArgs("user-1").WillReturnRows(rows())
	f.mock.ExpectQuery("FROM discussion_rooms WHERE user_id").WithArgs("user-1").WillReturnRows(rows())
	f.mock.ExpectQuery("FROM discussion_rooms WHERE user_id").WithArgs("user-1").WillReturnRows(rows())

	ids := func(rooms []entity.DiscussionRoom) []string {
		out := make([]string, 0, len(rooms))
		for _, r := range rooms {
			out = append(out, r.ID)
		}
		return out
	}

	feedback, err := f.svc.ListRooms(context.Background(), discussion_room.ListRoomsRequest{UserID: "user-1", Kind: "feedback"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r3", "r1"}, ids(feedback))

	lecture, err := f.svc.ListRooms(context.Background(), discussion_room.ListRoomsRequest{UserID: "user-1", Kind: "lecture"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r2"}, ids(lecture))

	all, err := f.svc.ListRooms(context.Background(), discussion_room.ListRoomsRequest{UserID: "user-1"})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = f.svc.ListRooms(context.Background(), discussion_room.ListRoomsRequest{UserID: "user-1", Kind: "other"})
	assert.ErrorIs(t, err, discussion_room.ErrInvalidKind)
}

func TestUpdateConversationChecksOwner(t *testing.T) {
	f := newLiveFixture(t, false)
	f.expectRoom("someone-else")

	err := f.svc.UpdateConversation(context.Background(), "user-1", "room-1", nil)
	assert.ErrorIs(t, err, discussion_room.ErrRoomForbidden)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUpdateConversation(t *testing.T) {
	f := newLiveFixture(t, false)
	f.expectRoom("user-1")
	f.mock.ExpectExec("UPDATE discussion_rooms SET conversation").
		WithArgs([]byte(`[{"role":"User","content":"hi"}]`), sqlmock.AnyArg(), "room-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := f.svc.UpdateConversation(context.Background(), "user-1", "room-1", []entity.ConversationEntry{
		{Role: entity.RoleUser, Content: "hi"},
	})
	require.NoError(t, err)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}
