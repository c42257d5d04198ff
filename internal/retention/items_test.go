package retention_test

import (
	"context"
	"testing"
	"time"

	"github.com/campusfound/campusfound/internal/model"
	"github.com/campusfound/campusfound/internal/retention"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkInactiveItems(t *testing.T) {
	engine, db, _, _, cleanup := setup(t, retention.DefaultConfig())
	defer cleanup()

	now := time.Now().UTC()
	engine.SetClock(func() time.Time { return now })

	owner := createUser(db, "owner@campus.lan", now)
	stale := createItem(db, owner.ID, now.AddDate(0, 0, -61))
	fresh := createItem(db, owner.ID, now.AddDate(0, 0, -10))

	results, err := engine.MarkInactiveItems(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, stale.ID, results[0].ItemID)

	marked, err := db.FindItem(stale.ID)
	require.NoError(t, err)
	assert.True(t, marked.ScheduledForDeletion)
	require.NotNil(t, marked.DeletionScheduledAt)
	assert.WithinDuration(t, now, *marked.DeletionScheduledAt, time.Second)
	assert.Equal(t, model.DeletionReasonInactivity, marked.DeletionReason)

	untouched, err := db.FindItem(fresh.ID)
	require.NoError(t, err)
	assert.False(t, untouched.ScheduledForDeletion)
	assert.Nil(t, untouched.DeletionScheduledAt)

	// Marked items are not selected again.
	results, err = engine.MarkInactiveItems(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSendItemWarnings(t *testing.T) {
	engine, db, dispatcher, _, cleanup := setup(t, retention.DefaultConfig())
	defer cleanup()

	now := time.Now().UTC()
	engine.SetClock(func() time.Time { return now })

	owner := createUser(db, "owner@campus.lan", now)

	// One grace day left, inside the selection window.
	expiring := createItem(db, owner.ID, now.AddDate(0, 0, -70))
	scheduleItem(db, expiring, now.Add(-156*time.Hour)) // 6.5 days ago

	// Freshly marked, outside the window.
	recent := createItem(db, owner.ID, now.AddDate(0, 0, -70))
	scheduleItem(db, recent, now.AddDate(0, 0, -2))

	// Orphaned item, owner already purged.
	orphan := createItem(db, "", now.AddDate(0, 0, -70))
	scheduleItem(db, orphan, now.Add(-156*time.Hour))

	results, err := engine.SendItemWarnings(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	byItem := make(map[string]retention.ItemWarned)
	for _, r := range results {
		byItem[r.ItemID] = r
	}

	warned := byItem[expiring.ID]
	assert.True(t, warned.EmailSent)
	assert.Equal(t, 1, warned.DaysRemaining)
	assert.Equal(t, 1, dispatcher.itemWarnings[expiring.ID])

	skipped := byItem[orphan.ID]
	assert.False(t, skipped.EmailSent)
	assert.Equal(t, "item has no owner", skipped.Err)

	_, ok := byItem[recent.ID]
	assert.False(t, ok)
}

func TestSendItemWarningsEmailFailure(t *testing.T) {
	engine, db, dispatcher, _, cleanup := setup(t, retention.DefaultConfig())
	defer cleanup()

	now := time.Now().UTC()
	engine.SetClock(func() time.Time { return now })
	dispatcher.failItems = true

	owner := createUser(db, "owner@campus.lan", now)
	item := createItem(db, owner.ID, now.AddDate(0, 0, -70))
	scheduleItem(db, item, now.Add(-156*time.Hour))

	results, err := engine.SendItemWarnings(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].EmailSent)
	assert.NotEmpty(t, results[0].Err)
}

func TestPurgeItems(t *testing.T) {
	engine, db, _, store, cleanup := setup(t, retention.DefaultConfig())
	defer cleanup()

	now := time.Now().UTC()
	engine.SetClock(func() time.Time { return now })

	owner := createUser(db, "owner@campus.lan", now)
	inquirer := createUser(db, "inquirer@campus.lan", now)

	expired := createItem(db, owner.ID, now.AddDate(0, 0, -70))
	expired.ImageURL = "https://res.cloudinary.com/campus/image/upload/v1570979139/lostfound/backpack.jpg"
	require.NoError(t, db.Save(expired))
	scheduleItem(db, expired, now.AddDate(0, 0, -8))

	// Exactly at the grace boundary, spared until tomorrow.
	boundary := createItem(db, owner.ID, now.AddDate(0, 0, -70))
	scheduleItem(db, boundary, now.AddDate(0, 0, -7))

	conversation := &model.Conversation{ItemID: expired.ID, OwnerID: owner.ID, InquirerID: inquirer.ID}
	require.NoError(t, db.Save(conversation))
	require.NoError(t, db.Save(&model.Message{ConversationID: conversation.ID, SenderID: inquirer.ID, Body: "Is it still there?"}))
	require.NoError(t, db.Save(&model.Message{ConversationID: conversation.ID, SenderID: owner.ID, Body: "Yes."}))
	require.NoError(t, db.Save(&model.Claim{ItemID: expired.ID, ClaimantID: inquirer.ID, Status: model.ClaimPending}))
	require.NoError(t, db.Save(&model.Notification{UserID: owner.ID, ActorID: inquirer.ID, ItemID: expired.ID, Type: model.NotificationClaim}))

	results, err := engine.PurgeItems(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)

	result := results[0]
	assert.Equal(t, expired.ID, result.ItemID)
	assert.True(t, result.Success)
	assert.True(t, result.ImageDeleted)
	assert.Equal(t, 1, result.ConversationsDeleted)
	assert.Equal(t, 2, result.MessagesDeleted)
	assert.Equal(t, 1, result.ClaimsDeleted)
	assert.Equal(t, 1, result.NotificationsDeleted)
	assert.Equal(t, []string{"lostfound/backpack"}, store.deleted)

	_, err = db.FindItem(expired.ID)
	assert.True(t, db.IsNotFound(err))

	_, err = db.FindItem(boundary.ID)
	assert.NoError(t, err)

	conversations, err := db.FindConversationsByItem(expired.ID)
	require.NoError(t, err)
	assert.Empty(t, conversations)

	messages, err := db.FindMessagesByConversation(conversation.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestPurgeItemsPartialFailure(t *testing.T) {
	engine, db, _, store, cleanup := setup(t, retention.DefaultConfig())
	defer cleanup()

	now := time.Now().UTC()
	engine.SetClock(func() time.Time { return now })
	store.fail["lostfound/two"] = "rate limited"

	owner := createUser(db, "owner@campus.lan", now)

	items := make([]*model.Item, 3)
	for i, name := range []string{"one", "two", "three"} {
		items[i] = createItem(db, owner.ID, now.AddDate(0, 0, -70))
		items[i].ImageURL = "https://res.cloudinary.com/campus/image/upload/lostfound/" + name + ".jpg"
		require.NoError(t, db.Save(items[i]))
		scheduleItem(db, items[i], now.AddDate(0, 0, -8))
	}

	results, err := engine.PurgeItems(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)

	byItem := make(map[string]retention.ItemPurged)
	for _, r := range results {
		byItem[r.ItemID] = r
	}

	assert.True(t, byItem[items[0].ID].Success)
	assert.True(t, byItem[items[2].ID].Success)

	failed := byItem[items[1].ID]
	assert.False(t, failed.Success)
	assert.Contains(t, failed.Err, "rate limited")

	// The failed item survives for the next sweep.
	_, err = db.FindItem(items[1].ID)
	assert.NoError(t, err)
	_, err = db.FindItem(items[0].ID)
	assert.True(t, db.IsNotFound(err))
	_, err = db.FindItem(items[2].ID)
	assert.True(t, db.IsNotFound(err))
}

func TestItemLifecycle(t *testing.T) {
	engine, db, dispatcher, _, cleanup := setup(t, retention.DefaultConfig())
	defer cleanup()

	epoch := time.Now().UTC()
	now := epoch
	engine.SetClock(func() time.Time { return now })

	owner := createUser(db, "owner@campus.lan", now)
	item := createItem(db, owner.ID, epoch.AddDate(0, 0, -61))

	// Day 0: the inactivity scan marks the item.
	marked, err := engine.MarkInactiveItems(context.Background())
	require.NoError(t, err)
	require.Len(t, marked, 1)

	// Day 6.5: one grace day left, warning goes out.
	now = epoch.Add(156 * time.Hour)
	warned, err := engine.SendItemWarnings(context.Background())
	require.NoError(t, err)
	require.Len(t, warned, 1)
	assert.True(t, warned[0].EmailSent)
	assert.Equal(t, 1, dispatcher.itemWarnings[item.ID])

	// Day 7+: the grace period has elapsed, the item is purged.
	now = epoch.Add(170 * time.Hour)
	purged, err := engine.PurgeItems(context.Background())
	require.NoError(t, err)
	require.Len(t, purged, 1)
	assert.True(t, purged[0].Success)

	_, err = db.FindItem(item.ID)
	assert.True(t, db.IsNotFound(err))
}
