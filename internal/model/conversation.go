package model

// A Conversation is a two-party thread about an item, between the user that
// posted it and an inquirer.
type Conversation struct {
	Base `msgpack:",inline" storm:"inline"`

	ItemID     string `json:"item_id"     msgpack:"item_id"     storm:"index"`
	OwnerID    string `json:"owner_id"    msgpack:"owner_id"    storm:"index"`
	InquirerID string `json:"inquirer_id" msgpack:"inquirer_id" storm:"index"`
}

// HasParticipant returns true when the given user takes part in the conversation.
func (c *Conversation) HasParticipant(userID string) bool {
	return c.OwnerID == userID || c.InquirerID == userID
}
