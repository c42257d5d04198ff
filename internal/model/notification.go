package model

import "time"

const (
	// NotificationClaim is emitted when an item receives a new claim.
	NotificationClaim = "claim"
	// NotificationMessage is emitted when a conversation receives a message.
	NotificationMessage = "message"
	// NotificationDeletionWarning is emitted before an entity is purged.
	NotificationDeletionWarning = "deletion_warning"
)

// A Notification represents a database record.
type Notification struct {
	Base `msgpack:",inline" storm:"inline"`

	// UserID is the recipient, ActorID the user that triggered the event.
	UserID  string     `json:"user_id"           msgpack:"user_id"  storm:"index"`
	ActorID string     `json:"actor_id"          msgpack:"actor_id" storm:"index"`
	ItemID  string     `json:"item_id"           msgpack:"item_id"  storm:"index"`
	Type    string     `json:"type"              msgpack:"type"     storm:"index"`
	Title   string     `json:"title"             msgpack:"title"`
	Body    string     `json:"body"              msgpack:"body"`
	ReadAt  *time.Time `json:"read_at,omitempty" msgpack:"read_at"`
}
