package retention

import (
	"github.com/campusfound/campusfound/internal/cferror"
	"github.com/campusfound/campusfound/internal/model"
	"github.com/pkg/errors"
)

// CancelItemDeletion resets every deletion field of the item and refreshes its
// activity timestamp, re-admitting it to the active state. It is idempotent on
// items that are not scheduled.
func (e *Engine) CancelItemDeletion(id string) (*model.Item, error) {
	item, err := e.db.FindItem(id)
	if err != nil {
		if e.db.IsNotFound(err) {
			return nil, cferror.NewNotFound("No such item.")
		}
		return nil, errors.Wrap(err, "could not load item")
	}

	item.ScheduledForDeletion = false
	item.DeletionScheduledAt = nil
	item.DeletionReason = ""
	item.LastActivityAt = e.now().UTC()

	if err := e.db.Save(item); err != nil {
		return nil, errors.Wrap(err, "could not cancel item deletion")
	}

	e.logger.WithField("item_id", item.ID).Info("item deletion cancelled")
	return item, nil
}

// CancelUserDeletion resets every deletion field of the user and refreshes the
// login timestamp, re-admitting the account to the active state. It is
// idempotent on users that are not scheduled.
func (e *Engine) CancelUserDeletion(id string) (*model.User, error) {
	user, err := e.db.FindUser(id)
	if err != nil {
		if e.db.IsNotFound(err) {
			return nil, cferror.NewNotFound("No such user.")
		}
		return nil, errors.Wrap(err, "could not load user")
	}

	user.ScheduledForDeletion = false
	user.DeletionScheduledAt = nil
	user.DeletionWarningEmailSent = false
	user.LastLoginAt = e.now().UTC()

	if err := e.db.Save(user); err != nil {
		return nil, errors.Wrap(err, "could not cancel user deletion")
	}

	e.logger.WithField("user_id", user.ID).Info("user deletion cancelled")
	return user, nil
}

// ScheduledItems returns every item currently scheduled for deletion.
func (e *Engine) ScheduledItems() ([]*model.Item, error) {
	return e.db.FindScheduledItems()
}

// ScheduledUsers returns every user currently scheduled for deletion.
func (e *Engine) ScheduledUsers() ([]*model.User, error) {
	return e.db.FindScheduledUsers()
}
