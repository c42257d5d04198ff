package database

import (
	"time"

	"github.com/campusfound/campusfound/internal/model"
)

type (
	// A Client can interacts with the database.
	Client interface {
		// Save inserts or updates the entry in database with the given model.
		Save(m model.Model) error
		// Delete deletes the entry in database with the given model.
		Delete(m model.Model) error
		// Close the database.
		Close() error
		// IsNotFound returns true if err is a not found error.
		IsNotFound(err error) bool
		// IsAlreadyExists returns true if err is an already exists error.
		IsAlreadyExists(err error) bool

		UserInteraction
		SessionInteraction
		ItemInteraction
		ClaimInteraction
		ConversationInteraction
		MessageInteraction
		NotificationInteraction
	}

	// An UserInteraction defines all the methods used to interact with user records.
	UserInteraction interface {
		// FindUser returns the user for the given id (UUID).
		FindUser(id string) (*model.User, error)
		// FindUserByMail returns the user for the given email.
		FindUserByMail(email string) (*model.User, error)
		// FindInactiveUsers returns active non-admin users whose last login is
		// older than the cutoff and that are not scheduled for deletion yet.
		FindInactiveUsers(cutoff time.Time) ([]*model.User, error)
		// FindDeactivatedUsers returns non-admin users deactivated before the
		// cutoff and not scheduled for deletion yet.
		FindDeactivatedUsers(cutoff time.Time) ([]*model.User, error)
		// FindUsersToWarn returns users scheduled for deletion that have not
		// received a warning email yet.
		FindUsersToWarn() ([]*model.User, error)
		// FindUsersToPurge returns non-admin users scheduled for deletion
		// strictly before the cutoff.
		FindUsersToPurge(cutoff time.Time) ([]*model.User, error)
		// FindScheduledUsers returns all users scheduled for deletion.
		FindScheduledUsers() ([]*model.User, error)
	}

	// A SessionInteraction defines all the methods used to interact with session records.
	SessionInteraction interface {
		// FindSessionByAccessToken returns the session for the given access token.
		FindSessionByAccessToken(token string) (*model.Session, error)
		// FindSessionByTokens returns the session for the given access and refresh token.
		FindSessionByTokens(access, refresh string) (*model.Session, error)
		// FindSessionsByUserID returns all sessions for the given user id.
		FindSessionsByUserID(userID string) ([]*model.Session, error)
		// DeleteSessionsByUser deletes all sessions of the given user.
		DeleteSessionsByUser(userID string) (int, error)
		// DeleteExpiredSessions deletes all sessions past their expiry.
		DeleteExpiredSessions() (int, error)
	}

	// An ItemInteraction defines all the methods used to interact with item records.
	ItemInteraction interface {
		// FindItem returns the item for the given id (UUID).
		FindItem(id string) (*model.Item, error)
		// FindItems returns items matching the given category and status,
		// most recently active first. Empty parameters match everything.
		FindItems(category, status string) ([]*model.Item, error)
		// FindItemsByUser returns all items posted by the given user.
		FindItemsByUser(userID string) ([]*model.Item, error)
		// FindInactiveItems returns items whose last activity is older than the
		// cutoff and that are not scheduled for deletion yet.
		FindInactiveItems(cutoff time.Time) ([]*model.Item, error)
		// FindItemsScheduledBetween returns items scheduled for deletion with
		// a scheduling date in [start, end).
		FindItemsScheduledBetween(start, end time.Time) ([]*model.Item, error)
		// FindItemsToPurge returns items scheduled for deletion strictly
		// before the cutoff.
		FindItemsToPurge(cutoff time.Time) ([]*model.Item, error)
		// FindScheduledItems returns all items scheduled for deletion.
		FindScheduledItems() ([]*model.Item, error)
	}

	// A ClaimInteraction defines all the methods used to interact with claim records.
	ClaimInteraction interface {
		// FindClaim returns the claim for the given id (UUID).
		FindClaim(id string) (*model.Claim, error)
		// FindClaimsByItem returns all claims on the given item.
		FindClaimsByItem(itemID string) ([]*model.Claim, error)
		// DeleteClaimsByItem deletes all claims on the given item.
		DeleteClaimsByItem(itemID string) (int, error)
		// DeleteClaimsByClaimant deletes all claims filed by the given user.
		DeleteClaimsByClaimant(userID string) (int, error)
	}

	// A ConversationInteraction defines all the methods used to interact with conversation records.
	ConversationInteraction interface {
		// FindConversation returns the conversation for the given id (UUID).
		FindConversation(id string) (*model.Conversation, error)
		// FindConversationsByItem returns all conversations about the given item.
		FindConversationsByItem(itemID string) ([]*model.Conversation, error)
		// FindConversationsByParticipant returns all conversations the given
		// user takes part in, as owner or inquirer.
		FindConversationsByParticipant(userID string) ([]*model.Conversation, error)
		// DeleteConversations deletes the conversations with the given ids.
		DeleteConversations(ids []string) (int, error)
	}

	// A MessageInteraction defines all the methods used to interact with message records.
	MessageInteraction interface {
		// FindMessagesByConversation returns the messages of a conversation in
		// chronological order.
		FindMessagesByConversation(conversationID string) ([]*model.Message, error)
		// DeleteMessagesByConversations deletes all messages belonging to the
		// given conversations.
		DeleteMessagesByConversations(conversationIDs []string) (int, error)
	}

	// A NotificationInteraction defines all the methods used to interact with notification records.
	NotificationInteraction interface {
		// FindNotification returns the notification for the given id (UUID).
		FindNotification(id string) (*model.Notification, error)
		// FindNotificationsByRecipient returns the notifications addressed to
		// the given user, most recent first.
		FindNotificationsByRecipient(userID string) ([]*model.Notification, error)
		// DeleteNotificationsByItem deletes all notifications referencing the
		// given item.
		DeleteNotificationsByItem(itemID string) (int, error)
		// DeleteNotificationsByUser deletes all notifications referencing the
		// given user, as recipient or as actor.
		DeleteNotificationsByUser(userID string) (int, error)
	}
)
