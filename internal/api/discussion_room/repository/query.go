package discussionRoomRepository

const (
	queryCreateRoom = `
		INSERT INTO discussion_rooms (
			id,
			user_id,
			topic,
			coaching_option,
			expert_name,
			conversation,
			created_at,
			updated_at
		) VALUES (
			:id,
			:user_id,
			:topic,
			:coaching_option,
			:expert_name,
			:conversation,
			:created_at,
			:updated_at
		)
	`

	queryGetRoomByID = `
		SELECT
			id,
			user_id,
			topic,
			coaching_option,
			expert_name,
			conversation,
			feedback,
			created_at,
			updated_at
		FROM discussion_rooms
		WHERE id = :id
	`

	queryGetRoomsByUserID = `
		SELECT
			id,
			user_id,
			topic,
			coaching_option,
			expert_name,
			conversation,
			feedback,
			created_at,
			updated_at
		FROM discussion_rooms
		WHERE user_id = :user_id
		ORDER BY created_at DESC
	`

	queryUpdateConversation = `
		UPDATE discussion_rooms
		SET
			conversation = :conversation,
			updated_at = :updated_at
		WHERE id = :id
	`

	queryUpdateFeedback = `
		UPDATE discussion_rooms
		SET
			feedback = :feedback,
			updated_at = :updated_at
		WHERE id = :id
	`
)
