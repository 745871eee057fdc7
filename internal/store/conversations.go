package store

import (
	"database/sql"
	"strconv"

	"chatcord-backend/internal/models"
	"chatcord-backend/internal/snowflake"
)

// GetOrCreateConversation returns the direct message thread between two
// users, creating it on first contact. The pair is normalized so the same
// two users always resolve to the same row.
func (s *Store) GetOrCreateConversation(userID int64, otherUserID int64) (models.Conversation, error) {
	var conversation models.Conversation

	if userID == otherUserID {
		return conversation, ErrInvalidArgument
	}

	var otherExists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)", otherUserID).Scan(&otherExists)
	if err != nil {
		return conversation, err
	}
	if !otherExists {
		return conversation, ErrNotFound
	}

	userOneID, userTwoID := userID, otherUserID
	if userOneID > userTwoID {
		userOneID, userTwoID = userTwoID, userOneID
	}

	err = s.db.QueryRow(
		"SELECT id, user_one_id, user_two_id FROM conversations WHERE user_one_id = ? AND user_two_id = ?",
		userOneID, userTwoID,
	).Scan(&conversation.ID, &conversation.UserOneID, &conversation.UserTwoID)
	if err == nil {
		return conversation, nil
	} else if err != sql.ErrNoRows {
		return conversation, err
	}

	conversationID, err := snowflake.Generate()
	if err != nil {
		return conversation, err
	}

	_, err = s.db.Exec(
		"INSERT INTO conversations (id, user_one_id, user_two_id) VALUES (?, ?, ?)",
		conversationID, userOneID, userTwoID,
	)
	if err != nil {
		return conversation, err
	}

	conversation.ID = conversationID
	conversation.UserOneID = userOneID
	conversation.UserTwoID = userTwoID
	return conversation, nil
}

func (s *Store) isConversationParticipant(conversationID int64, userID int64) (bool, error) {
	var isParticipant bool
	err := s.db.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM conversations WHERE id = ? AND (user_one_id = ? OR user_two_id = ?))",
		conversationID, userID, userID,
	).Scan(&isParticipant)
	return isParticipant, err
}

// CreateDirectMessage persists a message in a conversation on behalf of
// userID, who must be one of its two participants.
func (s *Store) CreateDirectMessage(conversationID int64, userID int64, content string, attachment *models.Attachment) (models.DirectMessage, error) {
	var msg models.DirectMessage

	if content == "" && attachment == nil {
		return msg, ErrInvalidArgument
	}

	isParticipant, err := s.isConversationParticipant(conversationID, userID)
	if err != nil {
		return msg, err
	}
	if !isParticipant {
		return msg, ErrNotFound
	}

	messageID, err := snowflake.Generate()
	if err != nil {
		return msg, err
	}

	attachmentValue, err := marshalAttachment(attachment)
	if err != nil {
		return msg, err
	}

	createdAt := snowflake.CreationTime(messageID)

	_, err = s.db.Exec(
		"INSERT INTO direct_messages (id, conversation_id, user_id, content, attachment, deleted, edited, created_at, updated_at) VALUES (?, ?, ?, ?, ?, FALSE, FALSE, ?, ?)",
		messageID, conversationID, userID, nullableContent(content), attachmentValue, createdAt, createdAt,
	)
	if err != nil {
		return msg, err
	}

	return s.GetDirectMessage(messageID)
}

func (s *Store) GetDirectMessage(messageID int64) (models.DirectMessage, error) {
	row := s.db.QueryRow(`
		SELECT
			m.id, m.conversation_id, m.user_id, m.content, m.attachment,
			m.deleted, m.edited, m.created_at, m.updated_at,
			u.display_name, u.picture
		FROM
			direct_messages m
		LEFT JOIN
			users u ON m.user_id = u.id
		WHERE
			m.id = ?
	`, messageID)

	msg, err := scanDirectMessage(row)
	if err == sql.ErrNoRows {
		return msg, ErrNotFound
	}
	return msg, err
}

func scanDirectMessage(row rowScanner) (models.DirectMessage, error) {
	var msg models.DirectMessage
	var content, attachment, displayName, picture sql.NullString

	err := row.Scan(
		&msg.ID, &msg.ConversationID, &msg.UserID, &content, &attachment,
		&msg.Deleted, &msg.Edited, &msg.CreatedAt, &msg.UpdatedAt,
		&displayName, &picture,
	)
	if err != nil {
		return msg, err
	}

	if content.Valid {
		msg.Content = &content.String
	}

	msg.Attachment, err = unmarshalAttachment(attachment)
	if err != nil {
		return msg, err
	}

	if displayName.Valid {
		msg.User = models.User{DisplayName: displayName.String, Picture: picture.String}
	} else {
		msg.User = departedUser
	}

	return msg, nil
}

// FetchDirectPage is FetchPage for a conversation. Same cursor contract:
// newest first, strictly older than cursor, NextCursor only on a full page.
func (s *Store) FetchDirectPage(conversationID int64, userID int64, cursor int64, pageSize int) (models.DirectPage, error) {
	page := models.DirectPage{Items: []models.DirectMessage{}}

	isParticipant, err := s.isConversationParticipant(conversationID, userID)
	if err != nil {
		return page, err
	}
	if !isParticipant {
		return page, ErrNotFound
	}

	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	rows, err := s.db.Query(`
		SELECT
			m.id, m.conversation_id, m.user_id, m.content, m.attachment,
			m.deleted, m.edited, m.created_at, m.updated_at,
			u.display_name, u.picture
		FROM
			direct_messages m
		LEFT JOIN
			users u ON m.user_id = u.id
		WHERE
			m.conversation_id = ? AND (? = 0 OR m.id < ?)
		ORDER BY
			m.id DESC
		LIMIT ?
	`, conversationID, cursor, cursor, pageSize)
	if err != nil {
		return page, err
	}
	defer rows.Close()

	for rows.Next() {
		msg, err := scanDirectMessage(rows)
		if err != nil {
			return page, err
		}
		page.Items = append(page.Items, msg)
	}

	if err := rows.Err(); err != nil {
		return page, err
	}

	if len(page.Items) == pageSize {
		page.NextCursor = strconv.FormatInt(page.Items[len(page.Items)-1].ID, 10)
	}

	return page, nil
}

// UpdateDirectMessage is author-only, like channel message edits.
func (s *Store) UpdateDirectMessage(messageID int64, requesterID int64, content string) (models.DirectMessage, error) {
	var msg models.DirectMessage

	if content == "" {
		return msg, ErrInvalidArgument
	}

	var authorID int64
	var deleted bool
	err := s.db.QueryRow("SELECT user_id, deleted FROM direct_messages WHERE id = ?", messageID).Scan(&authorID, &deleted)
	if err == sql.ErrNoRows {
		return msg, ErrNotFound
	} else if err != nil {
		return msg, err
	}

	if authorID != requesterID {
		return msg, ErrPermissionDenied
	}
	if deleted {
		return msg, ErrInvalidArgument
	}

	updateID, err := snowflake.Generate()
	if err != nil {
		return msg, err
	}

	_, err = s.db.Exec(
		"UPDATE direct_messages SET content = ?, edited = TRUE, updated_at = ? WHERE id = ?",
		content, snowflake.CreationTime(updateID), messageID,
	)
	if err != nil {
		return msg, err
	}

	return s.GetDirectMessage(messageID)
}

// SoftDeleteDirectMessage clears a direct message. There are no elevated
// roles inside a conversation, so only the author may delete.
func (s *Store) SoftDeleteDirectMessage(messageID int64, requesterID int64) (models.DirectMessage, error) {
	var msg models.DirectMessage

	var authorID int64
	err := s.db.QueryRow("SELECT user_id FROM direct_messages WHERE id = ?", messageID).Scan(&authorID)
	if err == sql.ErrNoRows {
		return msg, ErrNotFound
	} else if err != nil {
		return msg, err
	}

	if authorID != requesterID {
		return msg, ErrPermissionDenied
	}

	updateID, err := snowflake.Generate()
	if err != nil {
		return msg, err
	}

	_, err = s.db.Exec(
		"UPDATE direct_messages SET content = NULL, attachment = NULL, deleted = TRUE, updated_at = ? WHERE id = ?",
		snowflake.CreationTime(updateID), messageID,
	)
	if err != nil {
		return msg, err
	}

	return s.GetDirectMessage(messageID)
}
