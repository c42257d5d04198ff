package retention

import (
	"context"

	"github.com/campusfound/campusfound/internal/model"
	"github.com/pkg/errors"
)

// MarkInactiveUsers schedules for deletion every user selected by the
// configured strategy. Admin accounts and already-scheduled users are never
// selected. A persistence failure aborts the whole scan.
func (e *Engine) MarkInactiveUsers(ctx context.Context) ([]UserMarked, error) {
	now := e.now().UTC()

	users, err := e.strategy.Candidates(e.db, now)
	if err != nil {
		return nil, errors.Wrap(err, "could not scan users to mark")
	}

	results := make([]UserMarked, 0, len(users))
	for _, user := range users {
		at := now
		user.ScheduledForDeletion = true
		user.DeletionScheduledAt = &at
		user.DeletionWarningEmailSent = false

		if err := e.db.Save(user); err != nil {
			stageCounter.WithLabelValues(stageUserMark, outcomeFailure).Inc()
			return results, errors.Wrapf(err, "could not mark user %s", user.ID)
		}

		stageCounter.WithLabelValues(stageUserMark, outcomeSuccess).Inc()
		results = append(results, UserMarked{
			UserID:   user.ID,
			Name:     user.Name,
			Email:    user.Email,
			Strategy: e.strategy.Name(),
		})

		e.logger.WithFields(map[string]interface{}{
			"user_id":  user.ID,
			"strategy": e.strategy.Name(),
		}).Info("user marked for deletion")
	}

	return results, nil
}

// SendUserWarnings emails every scheduled user that has not been warned yet.
// The warning flag is persisted on success so repeated runs never send
// duplicates. Email failures are recorded per user and never abort the batch.
func (e *Engine) SendUserWarnings(ctx context.Context) ([]UserWarned, error) {
	now := e.now().UTC()

	users, err := e.db.FindUsersToWarn()
	if err != nil {
		return nil, errors.Wrap(err, "could not scan users to warn")
	}

	results := make([]UserWarned, 0, len(users))
	for _, user := range users {
		result := UserWarned{
			UserID: user.ID,
			Email:  user.Email,
		}

		if user.DeletionScheduledAt == nil {
			result.Err = "user has no deletion schedule date"
			stageCounter.WithLabelValues(stageUserWarn, outcomeFailure).Inc()
			results = append(results, result)
			continue
		}

		result.DaysRemaining = e.daysRemaining(*user.DeletionScheduledAt, now)
		if result.DaysRemaining <= 0 || result.DaysRemaining > e.cfg.GracePeriodDays {
			// Outside the warning range, the purge sweep handles it.
			results = append(results, result)
			continue
		}

		if err := e.warnUser(ctx, user, result.DaysRemaining); err != nil {
			result.Err = err.Error()
			stageCounter.WithLabelValues(stageUserWarn, outcomeFailure).Inc()
			e.logger.WithError(err).WithField("user_id", user.ID).Warn("user warning email failed")
			results = append(results, result)
			continue
		}

		user.DeletionWarningEmailSent = true
		if err := e.db.Save(user); err != nil {
			result.Err = err.Error()
			stageCounter.WithLabelValues(stageUserWarn, outcomeFailure).Inc()
			results = append(results, result)
			continue
		}

		result.EmailSent = true
		stageCounter.WithLabelValues(stageUserWarn, outcomeSuccess).Inc()
		results = append(results, result)
	}

	return results, nil
}

func (e *Engine) warnUser(ctx context.Context, user *model.User, daysRemaining int) error {
	cctx, cancel := e.externalCallContext(ctx)
	defer cancel()

	return e.notifier.SendUserDeletionWarning(cctx, user, daysRemaining)
}

// PurgeUsers permanently removes every user whose grace period has elapsed,
// together with their items, image assets, conversations, messages,
// notifications, claims and sessions. A failure while processing one user is
// recorded in its result and the sweep continues.
func (e *Engine) PurgeUsers(ctx context.Context) ([]UserPurged, error) {
	now := e.now().UTC()

	users, err := e.db.FindUsersToPurge(e.cfg.GraceCutoff(now))
	if err != nil {
		return nil, errors.Wrap(err, "could not scan users to purge")
	}

	results := make([]UserPurged, 0, len(users))
	for _, user := range users {
		result := UserPurged{
			UserID: user.ID,
			Email:  user.Email,
		}

		if err := e.purgeUser(ctx, user, &result); err != nil {
			result.Err = err.Error()
			stageCounter.WithLabelValues(stageUserPurge, outcomeFailure).Inc()
			e.logger.WithError(err).WithField("user_id", user.ID).Error("user purge failed")
		} else {
			result.Success = true
			stageCounter.WithLabelValues(stageUserPurge, outcomeSuccess).Inc()
			e.logger.WithField("user_id", user.ID).Info("user purged")
		}
		results = append(results, result)
	}

	return results, nil
}

func (e *Engine) purgeUser(ctx context.Context, user *model.User, result *UserPurged) error {
	items, err := e.db.FindItemsByUser(user.ID)
	if err != nil {
		return errors.Wrap(err, "could not list user items")
	}

	// Batch-delete the image assets of all the user's items first.
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.ImageURL == "" {
			continue
		}
		if id := e.images.ExtractAssetID(item.ImageURL); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) > 0 {
		cctx, cancel := e.externalCallContext(ctx)
		deleted := e.images.DeleteAssets(cctx, ids)
		cancel()
		for _, res := range deleted {
			if res.Success {
				result.ImagesDeleted++
			} else {
				e.logger.WithFields(map[string]interface{}{
					"user_id":  user.ID,
					"asset_id": res.ID,
					"error":    res.Err,
				}).Warn("image asset deletion failed")
			}
		}
	}

	// Conversations the user takes part in, including those about other
	// people's items.
	conversations, err := e.db.FindConversationsByParticipant(user.ID)
	if err != nil {
		return errors.Wrap(err, "could not list user conversations")
	}
	conversationIDs := make([]string, 0, len(conversations))
	for _, conversation := range conversations {
		conversationIDs = append(conversationIDs, conversation.ID)
	}

	n, err := e.db.DeleteMessagesByConversations(conversationIDs)
	if err != nil {
		return errors.Wrap(err, "could not delete user messages")
	}
	result.MessagesDeleted += n

	n, err = e.db.DeleteConversations(conversationIDs)
	if err != nil {
		return errors.Wrap(err, "could not delete user conversations")
	}
	result.ConversationsDeleted += n

	n, err = e.db.DeleteNotificationsByUser(user.ID)
	if err != nil {
		return errors.Wrap(err, "could not delete user notifications")
	}
	result.NotificationsDeleted += n

	n, err = e.db.DeleteClaimsByClaimant(user.ID)
	if err != nil {
		return errors.Wrap(err, "could not delete user claims")
	}
	result.ClaimsDeleted += n

	for _, item := range items {
		cascade, err := e.deleteRelatedData(item.ID)
		result.ConversationsDeleted += cascade.ConversationsDeleted
		result.MessagesDeleted += cascade.MessagesDeleted
		result.NotificationsDeleted += cascade.NotificationsDeleted
		result.ClaimsDeleted += cascade.ClaimsDeleted
		if err != nil {
			return errors.Wrapf(err, "could not delete dependents of item %s", item.ID)
		}

		if err := e.db.Delete(item); err != nil {
			return errors.Wrapf(err, "could not delete item %s", item.ID)
		}
		result.ItemsDeleted++
	}

	n, err = e.db.DeleteSessionsByUser(user.ID)
	if err != nil {
		return errors.Wrap(err, "could not delete user sessions")
	}
	result.SessionsDeleted += n

	return errors.Wrap(e.db.Delete(user), "could not delete user")
}
