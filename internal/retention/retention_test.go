package retention_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/campusfound/campusfound/internal/database"
	"github.com/campusfound/campusfound/internal/imagestore"
	"github.com/campusfound/campusfound/internal/model"
	"github.com/campusfound/campusfound/internal/retention"
	"github.com/sirupsen/logrus"
)

// fakeDispatcher records warning emails instead of sending them.
type fakeDispatcher struct {
	mu           sync.Mutex
	itemWarnings map[string]int // item id -> days remaining
	userWarnings map[string]int // user id -> days remaining
	failItems    bool
	failUsers    bool
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{
		itemWarnings: make(map[string]int),
		userWarnings: make(map[string]int),
	}
}

func (d *fakeDispatcher) SendItemDeletionWarning(_ context.Context, _ *model.User, item *model.Item, daysRemaining int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failItems {
		return fmt.Errorf("smtp unreachable")
	}
	d.itemWarnings[item.ID] = daysRemaining
	return nil
}

func (d *fakeDispatcher) SendUserDeletionWarning(_ context.Context, user *model.User, daysRemaining int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failUsers {
		return fmt.Errorf("smtp unreachable")
	}
	d.userWarnings[user.ID] = daysRemaining
	return nil
}

func (d *fakeDispatcher) NotifyClaim(_, _ *model.User, _ *model.Item) error { return nil }

func (d *fakeDispatcher) NotifyMessage(_ string, _ *model.User, _ *model.Item) error { return nil }

// fakeStore records deleted asset ids instead of reaching Cloudinary.
type fakeStore struct {
	mu      sync.Mutex
	deleted []string
	fail    map[string]string // asset id -> error message
}

func newFakeStore() *fakeStore {
	return &fakeStore{fail: make(map[string]string)}
}

func (s *fakeStore) ExtractAssetID(rawurl string) string {
	return imagestore.ExtractAssetID(rawurl)
}

func (s *fakeStore) DeleteAssets(_ context.Context, ids []string) []imagestore.AssetResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]imagestore.AssetResult, 0, len(ids))
	for _, id := range ids {
		if msg, ok := s.fail[id]; ok {
			results = append(results, imagestore.AssetResult{ID: id, Err: msg})
			continue
		}
		s.deleted = append(s.deleted, id)
		results = append(results, imagestore.AssetResult{ID: id, Success: true})
	}
	return results
}

func setup(t *testing.T, cfg retention.Config) (*retention.Engine, database.Client, *fakeDispatcher, *fakeStore, func()) {
	t.Helper()

	tmpfile, err := os.CreateTemp("", "campusfound.*.db")
	if err != nil {
		panic(err)
	}
	filename := tmpfile.Name()
	tmpfile.Close()

	db, err := database.StormOpen(filename)
	if err != nil {
		panic(err)
	}

	dispatcher := newFakeDispatcher()
	store := newFakeStore()

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.PanicLevel)

	engine, err := retention.NewEngine(db, dispatcher, store, cfg, logger)
	if err != nil {
		panic(err)
	}

	return engine, db, dispatcher, store, func() {
		db.Close()
		os.RemoveAll(filename)
	}
}

func createUser(db database.Client, email string, lastLogin time.Time) *model.User {
	user := model.NewUser()
	user.Email = email
	user.Name = "George Abitbol"
	user.LastLoginAt = lastLogin
	if err := db.Save(user); err != nil {
		panic(err)
	}
	return user
}

func createItem(db database.Client, ownerID string, lastActivity time.Time) *model.Item {
	item := &model.Item{
		Title:          "Black backpack",
		Category:       "bags",
		Location:       "Library, floor 2",
		Status:         model.StatusFound,
		PostedBy:       ownerID,
		LastActivityAt: lastActivity,
	}
	if err := db.Save(item); err != nil {
		panic(err)
	}
	return item
}

func scheduleItem(db database.Client, item *model.Item, at time.Time) {
	item.ScheduledForDeletion = true
	item.DeletionScheduledAt = &at
	item.DeletionReason = model.DeletionReasonInactivity
	if err := db.Save(item); err != nil {
		panic(err)
	}
}

func scheduleUser(db database.Client, user *model.User, at time.Time) {
	user.ScheduledForDeletion = true
	user.DeletionScheduledAt = &at
	user.DeletionWarningEmailSent = false
	if err := db.Save(user); err != nil {
		panic(err)
	}
}
