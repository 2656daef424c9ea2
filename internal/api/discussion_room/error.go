package discussion_room

import "github.com/ankitcoder135/AI-Voice-Agent/pkg/response"

var (
	ErrRoomNotFound          = response.NewError(404, "discussion room not found")
	ErrRoomForbidden         = response.NewError(403, "discussion room does not belong to user")
	ErrUnknownCoachingOption = response.NewError(400, "unknown coaching option")
	ErrUnknownExpert         = response.NewError(400, "unknown expert")
	ErrInvalidKind           = response.NewError(400, "kind must be lecture or feedback")
	ErrRoomBusy              = response.NewError(409, "discussion room already has a live session")
	ErrCreateRoom            = response.NewError(500, "failed to create discussion room")
	ErrUpdateRoom            = response.NewError(500, "failed to update discussion room")
	ErrGetRooms              = response.NewError(500, "failed to get discussion rooms")
	ErrLiveUnavailable       = response.NewError(503, "live sessions are not available")
)
