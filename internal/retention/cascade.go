package retention

import "github.com/pkg/errors"

// deleteRelatedData removes every record depending on the given item:
// conversations about the item, their messages, and the notifications and
// claims referencing it.
func (e *Engine) deleteRelatedData(itemID string) (CascadeResult, error) {
	var result CascadeResult

	conversations, err := e.db.FindConversationsByItem(itemID)
	if err != nil {
		return result, errors.Wrap(err, "could not list item conversations")
	}

	ids := make([]string, 0, len(conversations))
	for _, conversation := range conversations {
		ids = append(ids, conversation.ID)
	}

	// Messages go first so a partial failure never leaves orphans pointing at
	// a deleted conversation.
	result.MessagesDeleted, err = e.db.DeleteMessagesByConversations(ids)
	if err != nil {
		return result, errors.Wrap(err, "could not delete item messages")
	}

	result.ConversationsDeleted, err = e.db.DeleteConversations(ids)
	if err != nil {
		return result, errors.Wrap(err, "could not delete item conversations")
	}

	result.NotificationsDeleted, err = e.db.DeleteNotificationsByItem(itemID)
	if err != nil {
		return result, errors.Wrap(err, "could not delete item notifications")
	}

	result.ClaimsDeleted, err = e.db.DeleteClaimsByItem(itemID)
	if err != nil {
		return result, errors.Wrap(err, "could not delete item claims")
	}

	return result, nil
}
