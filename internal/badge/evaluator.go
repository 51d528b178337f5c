package badge

import (
	"context"
	"time"

	"sportbeacon/internal/analytics"
	"sportbeacon/internal/logger"
	"sportbeacon/internal/metrics"
	"sportbeacon/internal/streak"
)

// Notifier delivers the unlock notification for rare and better badges.
// Failures are non-fatal.
type Notifier interface {
	SendBadgeUnlocked(ctx context.Context, userID int, title, rarity string) error
}

// Evaluator matches catalog criteria against a user's current activity and
// awards badges at most once per (user, badge). Calling it twice with the
// same inputs awards nothing on the second call.
type Evaluator interface {
	Evaluate(ctx context.Context, userID int, activityType string, data ActivityData) ([]Badge, error)
	ListByUser(ctx context.Context, userID int) ([]Badge, error)
}

type evaluator struct {
	repo     Repository
	tracker  streak.Tracker
	emitter  analytics.Emitter
	notifier Notifier
	now      func() time.Time
}

func NewEvaluator(repo Repository, tracker streak.Tracker, emitter analytics.Emitter, notifier Notifier) Evaluator {
	return &evaluator{
		repo:     repo,
		tracker:  tracker,
		emitter:  emitter,
		notifier: notifier,
		now:      time.Now,
	}
}

func (e *evaluator) Evaluate(ctx context.Context, userID int, activityType string, data ActivityData) ([]Badge, error) {
	existing, err := e.repo.ExistingBadgeIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	awarded := []Badge{}
	for _, criterion := range Catalog {
		if !criterion.AppliesTo(activityType) || existing[criterion.ID] {
			continue
		}

		satisfied, err := e.satisfied(ctx, criterion, userID, activityType, data)
		if err != nil {
			return awarded, err
		}
		if !satisfied {
			continue
		}

		b := Badge{
			UserID:              userID,
			BadgeID:             criterion.ID,
			Title:               criterion.Title,
			Rarity:              criterion.Rarity,
			XPReward:            criterion.Reward.XP,
			MonetaryRewardCents: criterion.Reward.MonetaryCents,
			UnlockedAt:          e.now(),
		}

		inserted, err := e.repo.Insert(ctx, &b)
		if err != nil {
			return awarded, err
		}
		if !inserted {
			// A concurrent evaluation awarded it first.
			continue
		}

		if err := e.repo.CreditReward(ctx, userID, b.XPReward, b.MonetaryRewardCents); err != nil {
			logger.Errorf("Failed to credit badge reward %s to user %d: %v", b.BadgeID, userID, err)
		}

		metrics.RecordBadgeAwarded(b.Rarity)
		e.emitter.Emit(ctx, "badge_unlocked", map[string]interface{}{
			"user_id":  userID,
			"badge_id": b.BadgeID,
			"rarity":   b.Rarity,
		})

		if b.Rarity != RarityCommon && e.notifier != nil {
			if err := e.notifier.SendBadgeUnlocked(ctx, userID, b.Title, b.Rarity); err != nil {
				logger.Errorf("Failed to queue badge notification for user %d: %v", userID, err)
			}
		}

		awarded = append(awarded, b)
	}

	return awarded, nil
}

func (e *evaluator) satisfied(ctx context.Context, c Criterion, userID int, activityType string, data ActivityData) (bool, error) {
	switch c.Kind {
	case KindCount:
		return int64(e.countValue(c.Field, data)) >= c.Target, nil

	case KindStreak:
		res, err := e.currentStreak(ctx, userID, activityType)
		if err != nil {
			return false, err
		}
		return int64(res) >= c.Target, nil

	case KindAmount:
		return data.CumulativeTipCents >= c.Target, nil

	case KindComposite:
		return data.FollowerCount >= c.Conditions.MinFollowers &&
			data.EngagementRate >= c.Conditions.MinEngagementRate &&
			data.PostCount >= c.Conditions.MinPosts, nil

	default:
		return false, nil
	}
}

func (e *evaluator) countValue(field string, data ActivityData) int {
	switch field {
	case FieldTipCount:
		return data.TipCount
	case FieldPostCount:
		return data.PostCount
	case FieldFollowerCount:
		return data.FollowerCount
	default:
		return 0
	}
}

func (e *evaluator) currentStreak(ctx context.Context, userID int, activityType string) (int, error) {
	var res streak.Result
	var err error
	if activityType == ActivityTipReceived {
		res, err = e.tracker.ForCreator(ctx, userID)
	} else {
		res, err = e.tracker.ForTipper(ctx, userID)
	}
	if err != nil {
		return 0, err
	}
	return res.Current, nil
}

func (e *evaluator) ListByUser(ctx context.Context, userID int) ([]Badge, error) {
	return e.repo.ListByUser(ctx, userID)
}
