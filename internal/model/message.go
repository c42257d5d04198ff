package model

// A Message represents a database record.
type Message struct {
	Base `msgpack:",inline" storm:"inline"`

	ConversationID string `json:"conversation_id" msgpack:"conversation_id" storm:"index"`
	SenderID       string `json:"sender_id"       msgpack:"sender_id"       storm:"index"`
	Body           string `json:"body"            msgpack:"body"`
}
