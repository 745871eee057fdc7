package models

import "time"

type User struct {
	ID          int64  `json:"id,string,omitempty"`
	Email       string `json:"email,omitempty"`
	UserName    string `json:"userName,omitempty"`
	DisplayName string `json:"displayName"`
	Picture     string `json:"picture"`
	Password    []byte `json:"password,omitempty"`
}

type Server struct {
	ID      int64  `json:"id,string"`
	OwnerID int64  `json:"ownerID,string"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Banner  string `json:"banner"`
}

type Channel struct {
	ID       int64  `json:"id,string"`
	ServerID int64  `json:"serverID,string"`
	Name     string `json:"name"`
}

// Member roles, in ascending order of privilege.
const (
	RoleMember    = "member"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

type Member struct {
	ServerID int64     `json:"serverID,string"`
	UserID   int64     `json:"userID,string"`
	Role     string    `json:"role"`
	Since    time.Time `json:"since"`
}

// Attachment is the reference stored next to a message's content,
// serialized as a JSON object in the attachment column.
type Attachment struct {
	URL  string `json:"url"`
	Type string `json:"type"`
	Name string `json:"name"`
}

// Message content and attachment are pointers: both are cleared on soft
// delete, and at least one must be present at creation time.
type Message struct {
	ID         int64       `json:"id,string"`
	ChannelID  int64       `json:"channelID,string"`
	UserID     int64       `json:"userID,string"`
	Content    *string     `json:"content"`
	Attachment *Attachment `json:"attachment"`
	Deleted    bool        `json:"deleted"`
	Edited     bool        `json:"edited"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
	User       User        `json:"user"`
}

// Conversation is a direct message thread between two users. UserOneID is
// always the smaller snowflake so each pair maps to exactly one row.
type Conversation struct {
	ID        int64 `json:"id,string"`
	UserOneID int64 `json:"userOneID,string"`
	UserTwoID int64 `json:"userTwoID,string"`
}

// DirectMessage mirrors Message for one-on-one conversations.
type DirectMessage struct {
	ID             int64       `json:"id,string"`
	ConversationID int64       `json:"conversationID,string"`
	UserID         int64       `json:"userID,string"`
	Content        *string     `json:"content"`
	Attachment     *Attachment `json:"attachment"`
	Deleted        bool        `json:"deleted"`
	Edited         bool        `json:"edited"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
	User           User        `json:"user"`
}

// Page is one chunk of reverse-chronological history. NextCursor is empty
// when the page came back short, which signals end of history to the client.
type Page struct {
	Items      []Message `json:"items"`
	NextCursor string    `json:"nextCursor,omitempty"`
}

type DirectPage struct {
	Items      []DirectMessage `json:"items"`
	NextCursor string          `json:"nextCursor,omitempty"`
}

type ConfigFile struct {
	Address           string
	Port              string
	BehindNginx       bool
	TlsCert           string
	TlsKey            string
	Cors              bool
	PrintHttpRequests bool
	LogToFile         bool
	LogLevel          string
	JwtSecret         string
	SnowflakeWorkerID int64
	SelfContained     bool
	DbUser            string
	DbPassword        string
	DbAddress         string
	DbPort            string
	DbDatabase        string
	SmtpUsername      string
	SmtpPassword      string
	SmtpServer        string
	SmtpPort          int
}
