package database

import (
	"time"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/codec/msgpack"
	"github.com/asdine/storm/v3/q"
	"github.com/gofrs/uuid"
	"github.com/campusfound/campusfound/internal/model"
	"github.com/pkg/errors"
)

type strm struct {
	db *storm.DB
}

// StormCodec is the format used to store data in the database.
var StormCodec = storm.Codec(msgpack.Codec)

var indexed = []model.Model{
	&model.User{},
	&model.Session{},
	&model.Item{},
	&model.Claim{},
	&model.Conversation{},
	&model.Message{},
	&model.Notification{},
}

// StormInit initializes Storm database.
func StormInit(database string) error {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return errors.Wrap(err, "could not get database connection")
	}
	defer db.Close()

	for _, m := range indexed {
		if err := db.Init(m); err != nil {
			return errors.Wrapf(err, "could not init %T index", m)
		}
	}
	return nil
}

// StormReIndex reindex Storm database.
func StormReIndex(database string) error {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return errors.Wrap(err, "could not get database connection")
	}
	defer db.Close()

	for _, m := range indexed {
		if err := db.ReIndex(m); err != nil {
			return errors.Wrapf(err, "could not reindex %T", m)
		}
	}
	return nil
}

// StormOpen returns a new Storm database connection.
func StormOpen(database string) (Client, error) {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return nil, errors.Wrap(err, "could not get database connection")
	}

	return &strm{
		db: db,
	}, nil
}

// Save inserts or updates the entry in database with the given model.
func (c *strm) Save(m model.Model) error {
	t := time.Now().UTC()
	m.SetUpdatedAt(t)

	if m.GetID() == "" {
		m.SetID(uuid.Must(uuid.NewV4()).String())
		m.SetCreatedAt(t)
	}

	return errors.Wrap(c.db.Save(m), "could not save the model")
}

// Delete deletes the entry in database with the given model.
func (c *strm) Delete(m model.Model) error {
	return errors.Wrap(c.db.DeleteStruct(m), "could not delete the model")
}

// Close the database.
func (c *strm) Close() error {
	return c.db.Close()
}

// IsNotFound returns true if err is a not found error.
func (c *strm) IsNotFound(err error) bool {
	return errors.Cause(err) == storm.ErrNotFound
}

// IsAlreadyExists returns true if err is an already exists error.
func (c *strm) IsAlreadyExists(err error) bool {
	return errors.Cause(err) == storm.ErrAlreadyExists
}

//
// Users
//

// FindUser returns the user for the given id (UUID).
func (c *strm) FindUser(id string) (*model.User, error) {
	var user model.User
	if err := c.db.One("ID", id, &user); err != nil {
		return nil, errors.Wrap(err, "find user by id")
	}
	return &user, nil
}

// FindUserByMail returns the user for the given email.
func (c *strm) FindUserByMail(email string) (*model.User, error) {
	var user model.User
	if err := c.db.One("Email", email, &user); err != nil {
		return nil, errors.Wrap(err, "find user by mail")
	}
	return &user, nil
}

// FindInactiveUsers returns active non-admin users whose last login is older
// than the cutoff and that are not scheduled for deletion yet.
func (c *strm) FindInactiveUsers(cutoff time.Time) ([]*model.User, error) {
	users := make([]*model.User, 0)
	err := c.db.Select(
		q.Eq("IsActive", true),
		q.Eq("ScheduledForDeletion", false),
		q.Not(q.Eq("Role", model.RoleAdmin)),
		q.Lt("LastLoginAt", cutoff),
	).OrderBy("LastLoginAt").Find(&users)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find inactive users")
	}
	return users, nil
}

// FindDeactivatedUsers returns non-admin users deactivated before the cutoff
// and not scheduled for deletion yet.
func (c *strm) FindDeactivatedUsers(cutoff time.Time) ([]*model.User, error) {
	users := make([]*model.User, 0)
	err := c.db.Select(
		q.Eq("IsActive", false),
		q.Eq("ScheduledForDeletion", false),
		q.Not(q.Eq("Role", model.RoleAdmin)),
	).Find(&users)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find deactivated users")
	}

	// DeactivatedAt is a nullable pointer so it is filtered here rather than
	// through an index matcher.
	selected := users[:0]
	for _, user := range users {
		if user.DeactivatedAt != nil && user.DeactivatedAt.Before(cutoff) {
			selected = append(selected, user)
		}
	}
	return selected, nil
}

// FindUsersToWarn returns users scheduled for deletion that have not received
// a warning email yet.
func (c *strm) FindUsersToWarn() ([]*model.User, error) {
	users := make([]*model.User, 0)
	err := c.db.Select(q.Eq("ScheduledForDeletion", true)).OrderBy("CreatedAt").Find(&users)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find users to warn")
	}

	selected := users[:0]
	for _, user := range users {
		if !user.DeletionWarningEmailSent {
			selected = append(selected, user)
		}
	}
	return selected, nil
}

// FindUsersToPurge returns non-admin users scheduled for deletion strictly
// before the cutoff.
func (c *strm) FindUsersToPurge(cutoff time.Time) ([]*model.User, error) {
	users := make([]*model.User, 0)
	err := c.db.Select(
		q.Eq("ScheduledForDeletion", true),
		q.Not(q.Eq("Role", model.RoleAdmin)),
	).Find(&users)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find users to purge")
	}

	selected := users[:0]
	for _, user := range users {
		if user.DeletionScheduledAt != nil && user.DeletionScheduledAt.Before(cutoff) {
			selected = append(selected, user)
		}
	}
	return selected, nil
}

// FindScheduledUsers returns all users scheduled for deletion.
func (c *strm) FindScheduledUsers() ([]*model.User, error) {
	users := make([]*model.User, 0)
	err := c.db.Select(q.Eq("ScheduledForDeletion", true)).OrderBy("CreatedAt").Find(&users)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find scheduled users")
	}
	return users, nil
}

//
// Sessions
//

// FindSessionByAccessToken returns the session for the given access token.
func (c *strm) FindSessionByAccessToken(token string) (*model.Session, error) {
	var session model.Session
	if err := c.db.One("AccessToken", token, &session); err != nil {
		return nil, errors.Wrap(err, "find session by access token")
	}
	return &session, nil
}

// FindSessionByTokens returns the session for the given access and refresh token.
func (c *strm) FindSessionByTokens(access, refresh string) (*model.Session, error) {
	var session model.Session
	err := c.db.Select(q.Eq("AccessToken", access), q.Eq("RefreshToken", refresh)).First(&session)
	if err != nil {
		return nil, errors.Wrap(err, "find session by tokens")
	}
	return &session, nil
}

// FindSessionsByUserID returns all the sessions for the given user id.
func (c *strm) FindSessionsByUserID(userID string) ([]*model.Session, error) {
	sessions := make([]*model.Session, 0)
	err := c.db.Select(q.Eq("UserID", userID)).OrderBy("CreatedAt").Find(&sessions)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find sessions by user id")
	}
	return sessions, nil
}

// DeleteSessionsByUser deletes all sessions of the given user.
func (c *strm) DeleteSessionsByUser(userID string) (int, error) {
	return c.deleteAll(&model.Session{}, "delete sessions by user", q.Eq("UserID", userID))
}

// DeleteExpiredSessions deletes all sessions past their expiry.
func (c *strm) DeleteExpiredSessions() (int, error) {
	return c.deleteAll(&model.Session{}, "delete expired sessions", q.Lt("ExpireAt", time.Now()))
}

//
// Items
//

// FindItem returns the item for the given id (UUID).
func (c *strm) FindItem(id string) (*model.Item, error) {
	var item model.Item
	if err := c.db.One("ID", id, &item); err != nil {
		return nil, errors.Wrap(err, "could not find item")
	}
	return &item, nil
}

// FindItems returns items matching the given category and status, most
// recently active first. Empty parameters match everything.
func (c *strm) FindItems(category, status string) ([]*model.Item, error) {
	query := []q.Matcher{q.Eq("ScheduledForDeletion", false)}
	if category != "" {
		query = append(query, q.Eq("Category", category))
	}
	if status != "" {
		query = append(query, q.Eq("Status", status))
	}

	items := make([]*model.Item, 0)
	err := c.db.Select(query...).OrderBy("LastActivityAt").Reverse().Find(&items)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find items")
	}
	return items, nil
}

// FindItemsByUser returns all items posted by the given user.
func (c *strm) FindItemsByUser(userID string) ([]*model.Item, error) {
	items := make([]*model.Item, 0)
	err := c.db.Select(q.Eq("PostedBy", userID)).OrderBy("CreatedAt").Find(&items)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find items by user")
	}
	return items, nil
}

// FindInactiveItems returns items whose last activity is older than the
// cutoff and that are not scheduled for deletion yet.
func (c *strm) FindInactiveItems(cutoff time.Time) ([]*model.Item, error) {
	items := make([]*model.Item, 0)
	err := c.db.Select(
		q.Eq("ScheduledForDeletion", false),
		q.Lt("LastActivityAt", cutoff),
	).OrderBy("LastActivityAt").Find(&items)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find inactive items")
	}
	return items, nil
}

// FindItemsScheduledBetween returns items scheduled for deletion with a
// scheduling date in [start, end).
func (c *strm) FindItemsScheduledBetween(start, end time.Time) ([]*model.Item, error) {
	items, err := c.FindScheduledItems()
	if err != nil {
		return nil, err
	}

	selected := items[:0]
	for _, item := range items {
		at := item.DeletionScheduledAt
		if at != nil && !at.Before(start) && at.Before(end) {
			selected = append(selected, item)
		}
	}
	return selected, nil
}

// FindItemsToPurge returns items scheduled for deletion strictly before the cutoff.
func (c *strm) FindItemsToPurge(cutoff time.Time) ([]*model.Item, error) {
	items, err := c.FindScheduledItems()
	if err != nil {
		return nil, err
	}

	selected := items[:0]
	for _, item := range items {
		if item.DeletionScheduledAt != nil && item.DeletionScheduledAt.Before(cutoff) {
			selected = append(selected, item)
		}
	}
	return selected, nil
}

// FindScheduledItems returns all items scheduled for deletion.
func (c *strm) FindScheduledItems() ([]*model.Item, error) {
	items := make([]*model.Item, 0)
	err := c.db.Select(q.Eq("ScheduledForDeletion", true)).OrderBy("CreatedAt").Find(&items)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find scheduled items")
	}
	return items, nil
}

//
// Claims
//

// FindClaim returns the claim for the given id (UUID).
func (c *strm) FindClaim(id string) (*model.Claim, error) {
	var claim model.Claim
	if err := c.db.One("ID", id, &claim); err != nil {
		return nil, errors.Wrap(err, "could not find claim")
	}
	return &claim, nil
}

// FindClaimsByItem returns all claims on the given item.
func (c *strm) FindClaimsByItem(itemID string) ([]*model.Claim, error) {
	claims := make([]*model.Claim, 0)
	err := c.db.Select(q.Eq("ItemID", itemID)).OrderBy("CreatedAt").Find(&claims)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find claims by item")
	}
	return claims, nil
}

// DeleteClaimsByItem deletes all claims on the given item.
func (c *strm) DeleteClaimsByItem(itemID string) (int, error) {
	return c.deleteAll(&model.Claim{}, "delete claims by item", q.Eq("ItemID", itemID))
}

// DeleteClaimsByClaimant deletes all claims filed by the given user.
func (c *strm) DeleteClaimsByClaimant(userID string) (int, error) {
	return c.deleteAll(&model.Claim{}, "delete claims by claimant", q.Eq("ClaimantID", userID))
}

//
// Conversations
//

// FindConversation returns the conversation for the given id (UUID).
func (c *strm) FindConversation(id string) (*model.Conversation, error) {
	var conversation model.Conversation
	if err := c.db.One("ID", id, &conversation); err != nil {
		return nil, errors.Wrap(err, "could not find conversation")
	}
	return &conversation, nil
}

// FindConversationsByItem returns all conversations about the given item.
func (c *strm) FindConversationsByItem(itemID string) ([]*model.Conversation, error) {
	conversations := make([]*model.Conversation, 0)
	err := c.db.Select(q.Eq("ItemID", itemID)).OrderBy("CreatedAt").Find(&conversations)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find conversations by item")
	}
	return conversations, nil
}

// FindConversationsByParticipant returns all conversations the given user
// takes part in, as owner or inquirer.
func (c *strm) FindConversationsByParticipant(userID string) ([]*model.Conversation, error) {
	conversations := make([]*model.Conversation, 0)
	err := c.db.Select(
		q.Or(q.Eq("OwnerID", userID), q.Eq("InquirerID", userID)),
	).OrderBy("CreatedAt").Find(&conversations)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find conversations by participant")
	}
	return conversations, nil
}

// DeleteConversations deletes the conversations with the given ids.
func (c *strm) DeleteConversations(ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return c.deleteAll(&model.Conversation{}, "delete conversations", q.In("ID", ids))
}

//
// Messages
//

// FindMessagesByConversation returns the messages of a conversation in
// chronological order.
func (c *strm) FindMessagesByConversation(conversationID string) ([]*model.Message, error) {
	messages := make([]*model.Message, 0)
	err := c.db.Select(q.Eq("ConversationID", conversationID)).OrderBy("CreatedAt").Find(&messages)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find messages by conversation")
	}
	return messages, nil
}

// DeleteMessagesByConversations deletes all messages belonging to the given
// conversations.
func (c *strm) DeleteMessagesByConversations(conversationIDs []string) (int, error) {
	if len(conversationIDs) == 0 {
		return 0, nil
	}
	return c.deleteAll(&model.Message{}, "delete messages by conversations", q.In("ConversationID", conversationIDs))
}

//
// Notifications
//

// FindNotification returns the notification for the given id (UUID).
func (c *strm) FindNotification(id string) (*model.Notification, error) {
	var notification model.Notification
	if err := c.db.One("ID", id, &notification); err != nil {
		return nil, errors.Wrap(err, "could not find notification")
	}
	return &notification, nil
}

// FindNotificationsByRecipient returns the notifications addressed to the
// given user, most recent first.
func (c *strm) FindNotificationsByRecipient(userID string) ([]*model.Notification, error) {
	notifications := make([]*model.Notification, 0)
	err := c.db.Select(q.Eq("UserID", userID)).OrderBy("CreatedAt").Reverse().Find(&notifications)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find notifications by recipient")
	}
	return notifications, nil
}

// DeleteNotificationsByItem deletes all notifications referencing the given item.
func (c *strm) DeleteNotificationsByItem(itemID string) (int, error) {
	return c.deleteAll(&model.Notification{}, "delete notifications by item", q.Eq("ItemID", itemID))
}

// DeleteNotificationsByUser deletes all notifications referencing the given
// user, as recipient or as actor.
func (c *strm) DeleteNotificationsByUser(userID string) (int, error) {
	return c.deleteAll(&model.Notification{}, "delete notifications by user",
		q.Or(q.Eq("UserID", userID), q.Eq("ActorID", userID)))
}

// deleteAll removes every record of kind matching the given matchers and
// returns the number of deleted records.
func (c *strm) deleteAll(kind model.Model, msg string, matchers ...q.Matcher) (int, error) {
	n, err := c.db.Select(matchers...).Count(kind)
	if err != nil && !c.IsNotFound(err) {
		return 0, errors.Wrap(err, msg)
	}
	if n == 0 {
		return 0, nil
	}

	err = c.db.Select(matchers...).Delete(kind)
	if err != nil && !c.IsNotFound(err) {
		return 0, errors.Wrap(err, msg)
	}
	return n, nil
}
