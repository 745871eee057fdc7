package store

import (
	"database/sql"
	"encoding/json"
	"strconv"

	"chatcord-backend/internal/models"
	"chatcord-backend/internal/snowflake"

	"go.uber.org/zap"
)

// DefaultPageSize matches the batch size the web client requests per page.
const DefaultPageSize = 25

// Store is the durable side of the chat core: message rows are append-only,
// deletion is a soft flag so pagination never loses thread continuity.
type Store struct {
	db    *sql.DB
	sugar *zap.SugaredLogger
}

func New(db *sql.DB, sugar *zap.SugaredLogger) *Store {
	return &Store{db: db, sugar: sugar}
}

func nullableContent(content string) any {
	if content == "" {
		return nil
	}
	return content
}

func marshalAttachment(attachment *models.Attachment) (any, error) {
	if attachment == nil {
		return nil, nil
	}
	bytes, err := json.Marshal(attachment)
	if err != nil {
		return nil, err
	}
	return string(bytes), nil
}

func unmarshalAttachment(raw sql.NullString) (*models.Attachment, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var attachment models.Attachment
	if err := json.Unmarshal([]byte(raw.String), &attachment); err != nil {
		return nil, err
	}
	return &attachment, nil
}

// departedUser is what readers see in place of an author whose account no
// longer exists. Message rows keep only a weak reference to their author.
var departedUser = models.User{DisplayName: "Deleted User"}

// CreateMessage persists a message in a channel on behalf of userID.
// The caller must be a member of the channel's server. At least one of
// content and attachment must be present.
func (s *Store) CreateMessage(channelID int64, userID int64, content string, attachment *models.Attachment) (models.Message, error) {
	var msg models.Message

	if content == "" && attachment == nil {
		return msg, ErrInvalidArgument
	}

	var serverID int64
	err := s.db.QueryRow("SELECT server_id FROM channels WHERE id = ?", channelID).Scan(&serverID)
	if err == sql.ErrNoRows {
		return msg, ErrNotFound
	} else if err != nil {
		return msg, err
	}

	var isMember bool
	err = s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM server_members WHERE server_id = ? AND user_id = ?)", serverID, userID).Scan(&isMember)
	if err != nil {
		return msg, err
	}
	if !isMember {
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

	// created_at derives from the snowflake so row order and timestamp
	// order can never disagree
	createdAt := snowflake.CreationTime(messageID)

	_, err = s.db.Exec(
		"INSERT INTO messages (id, channel_id, user_id, content, attachment, deleted, edited, created_at, updated_at) VALUES (?, ?, ?, ?, ?, FALSE, FALSE, ?, ?)",
		messageID, channelID, userID, nullableContent(content), attachmentValue, createdAt, createdAt,
	)
	if err != nil {
		return msg, err
	}

	return s.GetMessage(messageID)
}

// GetMessage returns a single message joined with its author's profile, or
// the departed-user placeholder when the author's account is gone.
func (s *Store) GetMessage(messageID int64) (models.Message, error) {
	row := s.db.QueryRow(`
		SELECT
			m.id, m.channel_id, m.user_id, m.content, m.attachment,
			m.deleted, m.edited, m.created_at, m.updated_at,
			u.display_name, u.picture
		FROM
			messages m
		LEFT JOIN
			users u ON m.user_id = u.id
		WHERE
			m.id = ?
	`, messageID)

	msg, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return msg, ErrNotFound
	}
	return msg, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (models.Message, error) {
	var msg models.Message
	var content, attachment, displayName, picture sql.NullString

	err := row.Scan(
		&msg.ID, &msg.ChannelID, &msg.UserID, &content, &attachment,
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

// FetchPage returns up to pageSize messages of a channel, newest first,
// strictly older than cursor (all newest when cursor is 0). NextCursor is
// only set on a full page; a short page means end of history. Soft-deleted
// rows stay in place with cleared content. The caller must be a member of
// the channel's server, same as for CreateMessage.
func (s *Store) FetchPage(channelID int64, userID int64, cursor int64, pageSize int) (models.Page, error) {
	page := models.Page{Items: []models.Message{}}

	var serverID int64
	err := s.db.QueryRow("SELECT server_id FROM channels WHERE id = ?", channelID).Scan(&serverID)
	if err == sql.ErrNoRows {
		return page, ErrNotFound
	} else if err != nil {
		return page, err
	}

	var isMember bool
	err = s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM server_members WHERE server_id = ? AND user_id = ?)", serverID, userID).Scan(&isMember)
	if err != nil {
		return page, err
	}
	if !isMember {
		return page, ErrNotFound
	}

	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	rows, err := s.db.Query(`
		SELECT
			m.id, m.channel_id, m.user_id, m.content, m.attachment,
			m.deleted, m.edited, m.created_at, m.updated_at,
			u.display_name, u.picture
		FROM
			messages m
		LEFT JOIN
			users u ON m.user_id = u.id
		WHERE
			m.channel_id = ? AND (? = 0 OR m.id < ?)
		ORDER BY
			m.id DESC
		LIMIT ?
	`, channelID, cursor, cursor, pageSize)
	if err != nil {
		return page, err
	}
	defer rows.Close()

	for rows.Next() {
		msg, err := scanMessage(rows)
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

// UpdateMessage replaces the content of a message. Only the author may edit,
// and a soft-deleted message can't be brought back through an edit.
func (s *Store) UpdateMessage(messageID int64, requesterID int64, content string) (models.Message, error) {
	var msg models.Message

	if content == "" {
		return msg, ErrInvalidArgument
	}

	var authorID int64
	var deleted bool
	err := s.db.QueryRow("SELECT user_id, deleted FROM messages WHERE id = ?", messageID).Scan(&authorID, &deleted)
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
		"UPDATE messages SET content = ?, edited = TRUE, updated_at = ? WHERE id = ?",
		content, snowflake.CreationTime(updateID), messageID,
	)
	if err != nil {
		return msg, err
	}

	return s.GetMessage(messageID)
}

// SoftDeleteMessage clears content and attachment and sets the deleted flag,
// keeping the row for thread continuity. Allowed for the author, the server
// owner, and members with an elevated role.
func (s *Store) SoftDeleteMessage(messageID int64, requesterID int64) (models.Message, error) {
	var msg models.Message

	var authorID, serverID int64
	err := s.db.QueryRow(`
		SELECT m.user_id, c.server_id
		FROM messages m
		JOIN channels c ON m.channel_id = c.id
		WHERE m.id = ?
	`, messageID).Scan(&authorID, &serverID)
	if err == sql.ErrNoRows {
		return msg, ErrNotFound
	} else if err != nil {
		return msg, err
	}

	if authorID != requesterID {
		elevated, err := s.HasElevatedRole(serverID, requesterID)
		if err != nil {
			return msg, err
		}
		if !elevated {
			return msg, ErrPermissionDenied
		}
	}

	updateID, err := snowflake.Generate()
	if err != nil {
		return msg, err
	}

	_, err = s.db.Exec(
		"UPDATE messages SET content = NULL, attachment = NULL, deleted = TRUE, updated_at = ? WHERE id = ?",
		snowflake.CreationTime(updateID), messageID,
	)
	if err != nil {
		return msg, err
	}

	return s.GetMessage(messageID)
}

func (s *Store) HasElevatedRole(serverID int64, userID int64) (bool, error) {
	var ownsServer bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM servers WHERE id = ? AND owner_id = ?)", serverID, userID).Scan(&ownsServer)
	if err != nil {
		return false, err
	}
	if ownsServer {
		return true, nil
	}

	var role string
	err = s.db.QueryRow("SELECT role FROM server_members WHERE server_id = ? AND user_id = ?", serverID, userID).Scan(&role)
	if err == sql.ErrNoRows {
		return false, nil
	} else if err != nil {
		return false, err
	}

	return role == models.RoleAdmin || role == models.RoleModerator, nil
}
