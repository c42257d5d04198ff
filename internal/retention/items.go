package retention

import (
	"context"

	"github.com/campusfound/campusfound/internal/model"
	"github.com/pkg/errors"
)

// MarkInactiveItems schedules for deletion every item whose last activity is
// older than the inactivity threshold. No notification is sent at this stage.
// A persistence failure aborts the whole scan.
func (e *Engine) MarkInactiveItems(ctx context.Context) ([]ItemMarked, error) {
	now := e.now().UTC()

	items, err := e.db.FindInactiveItems(e.cfg.InactivityCutoff(now))
	if err != nil {
		return nil, errors.Wrap(err, "could not scan inactive items")
	}

	results := make([]ItemMarked, 0, len(items))
	for _, item := range items {
		at := now
		item.ScheduledForDeletion = true
		item.DeletionScheduledAt = &at
		item.DeletionReason = model.DeletionReasonInactivity

		if err := e.db.Save(item); err != nil {
			stageCounter.WithLabelValues(stageItemMark, outcomeFailure).Inc()
			return results, errors.Wrapf(err, "could not mark item %s", item.ID)
		}

		stageCounter.WithLabelValues(stageItemMark, outcomeSuccess).Inc()
		results = append(results, ItemMarked{
			ItemID:         item.ID,
			Title:          item.Title,
			OwnerID:        item.PostedBy,
			LastActivityAt: item.LastActivityAt,
		})

		e.logger.WithFields(map[string]interface{}{
			"item_id":       item.ID,
			"last_activity": item.LastActivityAt,
		}).Info("item marked for deletion")
	}

	return results, nil
}

// SendItemWarnings emails the owner of every item whose deletion is one day
// away. The selection is a fixed time window over the scheduling date, so a
// run missed for more than the window's width skips the affected items.
// Email failures are recorded per item and never abort the batch.
func (e *Engine) SendItemWarnings(ctx context.Context) ([]ItemWarned, error) {
	now := e.now().UTC()

	// Window centered one grace day before expiry: items scheduled between
	// grace and grace-1 days ago.
	end := now.AddDate(0, 0, -(e.cfg.GracePeriodDays - 1))
	start := end.Add(-e.cfg.WarningWindow)

	items, err := e.db.FindItemsScheduledBetween(start, end)
	if err != nil {
		return nil, errors.Wrap(err, "could not scan items to warn")
	}

	results := make([]ItemWarned, 0, len(items))
	for _, item := range items {
		result := ItemWarned{
			ItemID:        item.ID,
			Title:         item.Title,
			OwnerID:       item.PostedBy,
			DaysRemaining: 1,
		}
		if item.DeletionScheduledAt != nil {
			if d := e.daysRemaining(*item.DeletionScheduledAt, now); d > 1 {
				result.DaysRemaining = d
			}
		}

		result.EmailSent, result.Err = e.warnItemOwner(ctx, item, result.DaysRemaining)
		if result.EmailSent {
			stageCounter.WithLabelValues(stageItemWarn, outcomeSuccess).Inc()
		} else {
			stageCounter.WithLabelValues(stageItemWarn, outcomeFailure).Inc()
		}
		results = append(results, result)
	}

	return results, nil
}

func (e *Engine) warnItemOwner(ctx context.Context, item *model.Item, daysRemaining int) (sent bool, errmsg string) {
	if item.PostedBy == "" {
		return false, "item has no owner"
	}

	owner, err := e.db.FindUser(item.PostedBy)
	if err != nil {
		return false, err.Error()
	}

	cctx, cancel := e.externalCallContext(ctx)
	defer cancel()

	if err := e.notifier.SendItemDeletionWarning(cctx, owner, item, daysRemaining); err != nil {
		e.logger.WithError(err).WithField("item_id", item.ID).Warn("item warning email failed")
		return false, err.Error()
	}
	return true, ""
}

// PurgeItems permanently removes every item whose grace period has elapsed,
// together with its image asset and dependent records. A failure while
// processing one item is recorded in its result and the sweep continues.
func (e *Engine) PurgeItems(ctx context.Context) ([]ItemPurged, error) {
	now := e.now().UTC()

	items, err := e.db.FindItemsToPurge(e.cfg.GraceCutoff(now))
	if err != nil {
		return nil, errors.Wrap(err, "could not scan items to purge")
	}

	results := make([]ItemPurged, 0, len(items))
	for _, item := range items {
		result := ItemPurged{
			ItemID:  item.ID,
			Title:   item.Title,
			OwnerID: item.PostedBy,
		}

		if err := e.purgeItem(ctx, item, &result); err != nil {
			result.Err = err.Error()
			stageCounter.WithLabelValues(stageItemPurge, outcomeFailure).Inc()
			e.logger.WithError(err).WithField("item_id", item.ID).Error("item purge failed")
		} else {
			result.Success = true
			stageCounter.WithLabelValues(stageItemPurge, outcomeSuccess).Inc()
			e.logger.WithField("item_id", item.ID).Info("item purged")
		}
		results = append(results, result)
	}

	return results, nil
}

func (e *Engine) purgeItem(ctx context.Context, item *model.Item, result *ItemPurged) error {
	if item.ImageURL != "" {
		deleted, err := e.deleteItemImage(ctx, item.ImageURL)
		if err != nil {
			return err
		}
		result.ImageDeleted = deleted
	}

	cascade, err := e.deleteRelatedData(item.ID)
	result.ConversationsDeleted = cascade.ConversationsDeleted
	result.MessagesDeleted = cascade.MessagesDeleted
	result.NotificationsDeleted = cascade.NotificationsDeleted
	result.ClaimsDeleted = cascade.ClaimsDeleted
	if err != nil {
		return err
	}

	return e.db.Delete(item)
}

func (e *Engine) deleteItemImage(ctx context.Context, imageURL string) (bool, error) {
	id := e.images.ExtractAssetID(imageURL)
	if id == "" {
		return false, nil
	}

	cctx, cancel := e.externalCallContext(ctx)
	defer cancel()

	res := e.images.DeleteAssets(cctx, []string{id})
	if len(res) == 1 && res[0].Err != "" {
		return false, errors.Errorf("could not delete image asset %s: %s", id, res[0].Err)
	}
	return len(res) == 1 && res[0].Success, nil
}
