package services

import (
	"context"
	"fmt"

	"github.com/OraComigo/metrics"
	"github.com/OraComigo/models"
)

type GraceResult struct {
	Graces        int                   `json:"graces"`
	Level         models.SpiritualLevel `json:"level"`
	Total_Prayers int                   `json:"totalPrayers"`
	Streak        int                   `json:"streak"`
}

type PrayerRecord struct {
	Prayer_ID    string      `json:"prayerId"`
	Prayer_Count int         `json:"prayerCount"`
	Graces       GraceResult `json:"graces"`
}

func (s *Store) GracesPerPrayer() int {
	return s.gracesPerPrayer
}

// AwardGraces credits amount graces to the user and records the activity for
// today.
func (s *Store) AwardGraces(ctx context.Context, userID string, amount int) (GraceResult, error) {
	if amount < 0 {
		return GraceResult{}, fmt.Errorf("grace amount %d must not be negative: %w", amount, models.ErrValidation)
	}

	var result GraceResult
	err := s.mutate(ctx, []string{userKey(userID)}, func() error {
		u, err := s.userLocked(userID)
		if err != nil {
			return err
		}
		result = awardGraces(u, amount, s.clock.Today())
		return nil
	})
	return result, err
}

// RecordPrayer is the "I prayed this" action: the prayer's count goes up by one
// and the user earns the per-prayer grace reward.
func (s *Store) RecordPrayer(ctx context.Context, userID, prayerID string) (PrayerRecord, error) {
	var record PrayerRecord
	err := s.mutate(ctx, []string{userKey(userID), prayerKey(prayerID)}, func() error {
		u, err := s.userLocked(userID)
		if err != nil {
			return err
		}
		p, err := s.prayerLocked(prayerID)
		if err != nil {
			return err
		}
		if !p.IsPublished() {
			return fmt.Errorf("prayer %s is awaiting review: %w", prayerID, models.ErrValidation)
		}

		p.Prayer_Count++
		record = PrayerRecord{
			Prayer_ID:    p.Prayer_ID,
			Prayer_Count: p.Prayer_Count,
			Graces:       awardGraces(u, s.gracesPerPrayer, s.clock.Today()),
		}
		return nil
	})
	if err != nil {
		return PrayerRecord{}, err
	}

	metrics.RecordPrayer(s.gracesPerPrayer)
	return record, nil
}

func awardGraces(u *models.User, amount int, today string) GraceResult {
	u.Graces += amount
	u.Total_Prayers++

	if u.History == nil {
		u.History = make(map[string]models.DayCompletion)
	}
	if _, ok := u.History[today]; !ok {
		u.History[today] = models.DayCompletion{}
	}

	u.Level = models.LevelFor(u.Graces)
	u.Streak = ComputeStreak(u.History, today)

	return GraceResult{
		Graces:        u.Graces,
		Level:         u.Level,
		Total_Prayers: u.Total_Prayers,
		Streak:        u.Streak,
	}
}
