package retention

import (
	"time"

	"github.com/campusfound/campusfound/internal/database"
	"github.com/campusfound/campusfound/internal/model"
	"github.com/pkg/errors"
)

type (
	// A UserSelectionStrategy decides which users qualify for deletion marking.
	UserSelectionStrategy interface {
		// Name identifies the strategy in results and logs.
		Name() string
		// Candidates returns the users to schedule for deletion. Admins and
		// already-scheduled users are never returned.
		Candidates(db database.Client, now time.Time) ([]*model.User, error)
	}

	// InactivityStrategy selects active users that have not logged in for Days.
	InactivityStrategy struct {
		Days int
	}

	// DeactivationStrategy selects users deactivated more than Days ago.
	DeactivationStrategy struct {
		Days int
	}
)

// Name identifies the strategy in results and logs.
func (s InactivityStrategy) Name() string { return StrategyInactivity }

// Candidates returns active users whose last login is older than the threshold.
func (s InactivityStrategy) Candidates(db database.Client, now time.Time) ([]*model.User, error) {
	return db.FindInactiveUsers(now.AddDate(0, 0, -s.Days))
}

// Name identifies the strategy in results and logs.
func (s DeactivationStrategy) Name() string { return StrategyDeactivation }

// Candidates returns users deactivated before the threshold.
func (s DeactivationStrategy) Candidates(db database.Client, now time.Time) ([]*model.User, error) {
	return db.FindDeactivatedUsers(now.AddDate(0, 0, -s.Days))
}

func strategyFor(cfg Config) (UserSelectionStrategy, error) {
	switch cfg.Strategy {
	case StrategyInactivity:
		return InactivityStrategy{Days: cfg.InactivityDays}, nil
	case StrategyDeactivation:
		return DeactivationStrategy{Days: cfg.InactivityDays}, nil
	}
	return nil, errors.Errorf("unknown user deletion strategy: %s", cfg.Strategy)
}
