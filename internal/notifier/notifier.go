// Package notifier dispatches user-facing notifications: templated emails and
// persisted in-app notification records.
package notifier

import (
	"context"
	"fmt"

	"github.com/campusfound/campusfound/internal/database"
	"github.com/campusfound/campusfound/internal/mailer"
	"github.com/campusfound/campusfound/internal/model"
	"github.com/pkg/errors"
)

type (
	// A Dispatcher sends templated emails and records in-app notifications.
	Dispatcher interface {
		// SendItemDeletionWarning emails the owner of an item that is about to
		// be purged and records an in-app notification.
		SendItemDeletionWarning(ctx context.Context, owner *model.User, item *model.Item, daysRemaining int) error
		// SendUserDeletionWarning emails a user whose account is about to be
		// purged and records an in-app notification.
		SendUserDeletionWarning(ctx context.Context, user *model.User, daysRemaining int) error
		// NotifyClaim records an in-app notification for a new claim.
		NotifyClaim(owner *model.User, claimant *model.User, item *model.Item) error
		// NotifyMessage records an in-app notification for a new message.
		NotifyMessage(recipientID string, sender *model.User, item *model.Item) error
	}

	dispatcher struct {
		db          database.Client
		mailer      mailer.Mailer
		frontendURL string
	}
)

// New returns a Dispatcher persisting notifications in db and sending emails
// through m. frontendURL is embedded as link target in warning emails.
func New(db database.Client, m mailer.Mailer, frontendURL string) Dispatcher {
	return &dispatcher{
		db:          db,
		mailer:      m,
		frontendURL: frontendURL,
	}
}

// SendItemDeletionWarning emails the owner of an item that is about to be
// purged and records an in-app notification.
func (d *dispatcher) SendItemDeletionWarning(ctx context.Context, owner *model.User, item *model.Item, daysRemaining int) error {
	subject, html, err := mailer.ItemDeletionWarning(mailer.ItemWarningData{
		Name:          owner.Name,
		ItemTitle:     item.Title,
		DaysRemaining: daysRemaining,
		ItemURL:       fmt.Sprintf("%s/items/%s", d.frontendURL, item.ID),
	})
	if err != nil {
		return err
	}

	if err := d.mailer.Send(ctx, owner.Email, subject, html); err != nil {
		return err
	}

	return errors.Wrap(d.db.Save(&model.Notification{
		UserID: owner.ID,
		ItemID: item.ID,
		Type:   model.NotificationDeletionWarning,
		Title:  subject,
		Body:   fmt.Sprintf("Your listing %q will be deleted in %d day(s) unless it sees activity.", item.Title, daysRemaining),
	}), "could not record item warning notification")
}

// SendUserDeletionWarning emails a user whose account is about to be purged
// and records an in-app notification.
func (d *dispatcher) SendUserDeletionWarning(ctx context.Context, user *model.User, daysRemaining int) error {
	subject, html, err := mailer.UserDeletionWarning(mailer.UserWarningData{
		Name:          user.Name,
		DaysRemaining: daysRemaining,
		LoginURL:      fmt.Sprintf("%s/login", d.frontendURL),
	})
	if err != nil {
		return err
	}

	if err := d.mailer.Send(ctx, user.Email, subject, html); err != nil {
		return err
	}

	return errors.Wrap(d.db.Save(&model.Notification{
		UserID: user.ID,
		Type:   model.NotificationDeletionWarning,
		Title:  subject,
		Body:   fmt.Sprintf("Your account will be deleted in %d day(s) unless you sign in.", daysRemaining),
	}), "could not record user warning notification")
}

// NotifyClaim records an in-app notification for a new claim.
func (d *dispatcher) NotifyClaim(owner *model.User, claimant *model.User, item *model.Item) error {
	return errors.Wrap(d.db.Save(&model.Notification{
		UserID:  owner.ID,
		ActorID: claimant.ID,
		ItemID:  item.ID,
		Type:    model.NotificationClaim,
		Title:   fmt.Sprintf("New claim on %q", item.Title),
		Body:    fmt.Sprintf("%s claims the item %q.", claimant.Name, item.Title),
	}), "could not record claim notification")
}

// NotifyMessage records an in-app notification for a new message.
func (d *dispatcher) NotifyMessage(recipientID string, sender *model.User, item *model.Item) error {
	return errors.Wrap(d.db.Save(&model.Notification{
		UserID:  recipientID,
		ActorID: sender.ID,
		ItemID:  item.ID,
		Type:    model.NotificationMessage,
		Title:   fmt.Sprintf("New message about %q", item.Title),
		Body:    fmt.Sprintf("%s sent you a message about %q.", sender.Name, item.Title),
	}), "could not record message notification")
}
