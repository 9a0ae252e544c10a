package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/OraComigo/models"
)

// AddScheduleSlot appends a new, uncompleted slot. A period may hold any number
// of slots.
func (s *Store) AddScheduleSlot(ctx context.Context, userID string, period models.Period, prayerID string) ([]models.PrayerSchedule, error) {
	if !period.Valid() {
		return nil, fmt.Errorf("unknown period %q: %w", period, models.ErrValidation)
	}

	var schedule []models.PrayerSchedule
	err := s.mutate(ctx, []string{userKey(userID)}, func() error {
		u, err := s.userLocked(userID)
		if err != nil {
			return err
		}
		if err := s.requireSchedulable(prayerID); err != nil {
			return err
		}

		today := s.clock.Today()
		rollSchedule(u, today)
		u.Schedule = append(u.Schedule, models.PrayerSchedule{
			Schedule_ID: s.ids.NewID("sched"),
			Period:      period,
			Prayer_ID:   prayerID,
		})
		refreshToday(u, today)
		schedule = slices.Clone(u.Schedule)
		return nil
	})
	return schedule, err
}

// UpdateScheduleSlot points an existing slot at another prayer.
func (s *Store) UpdateScheduleSlot(ctx context.Context, userID, slotID, prayerID string) ([]models.PrayerSchedule, error) {
	var schedule []models.PrayerSchedule
	err := s.mutate(ctx, []string{userKey(userID)}, func() error {
		u, err := s.userLocked(userID)
		if err != nil {
			return err
		}
		if err := s.requireSchedulable(prayerID); err != nil {
			return err
		}
		idx, err := slotIndex(u, slotID)
		if err != nil {
			return err
		}

		rollSchedule(u, s.clock.Today())
		u.Schedule[idx].Prayer_ID = prayerID
		schedule = slices.Clone(u.Schedule)
		return nil
	})
	return schedule, err
}

func (s *Store) RemoveScheduleSlot(ctx context.Context, userID, slotID string) ([]models.PrayerSchedule, error) {
	var schedule []models.PrayerSchedule
	err := s.mutate(ctx, []string{userKey(userID)}, func() error {
		u, err := s.userLocked(userID)
		if err != nil {
			return err
		}
		idx, err := slotIndex(u, slotID)
		if err != nil {
			return err
		}

		today := s.clock.Today()
		rollSchedule(u, today)
		u.Schedule = slices.Delete(u.Schedule, idx, idx+1)
		refreshToday(u, today)
		schedule = slices.Clone(u.Schedule)
		return nil
	})
	return schedule, err
}

// ToggleSlotCompletion flips a slot and rewrites today's completion record.
func (s *Store) ToggleSlotCompletion(ctx context.Context, userID, slotID string) (*models.User, error) {
	var out *models.User
	err := s.mutate(ctx, []string{userKey(userID)}, func() error {
		u, err := s.userLocked(userID)
		if err != nil {
			return err
		}
		idx, err := slotIndex(u, slotID)
		if err != nil {
			return err
		}

		today := s.clock.Today()
		rollSchedule(u, today)
		u.Schedule[idx].Completed = !u.Schedule[idx].Completed

		if u.History == nil {
			u.History = make(map[string]models.DayCompletion)
		}
		u.History[today] = dayCompletion(u.Schedule)
		u.Streak = ComputeStreak(u.History, today)

		out = u.Clone()
		return nil
	})
	return out, err
}

// rollSchedule clears completion flags left over from a previous day.
func rollSchedule(u *models.User, today string) {
	if u.Schedule_Date == today {
		return
	}
	if u.Schedule_Date != "" {
		for i := range u.Schedule {
			u.Schedule[i].Completed = false
		}
	}
	u.Schedule_Date = today
}

// refreshToday recomputes an existing record for today after the slot list
// changed. Editing the list is not activity, so no record is created.
func refreshToday(u *models.User, today string) {
	if _, ok := u.History[today]; !ok {
		return
	}
	u.History[today] = dayCompletion(u.Schedule)
	u.Streak = ComputeStreak(u.History, today)
}

// requireSchedulable accepts only published prayers, the same ones
// RecordPrayer lets a user pray.
func (s *Store) requireSchedulable(prayerID string) error {
	p, err := s.prayerLocked(prayerID)
	if err != nil {
		return err
	}
	if !p.IsPublished() {
		return fmt.Errorf("prayer %s is awaiting review: %w", prayerID, models.ErrValidation)
	}
	return nil
}

// dayCompletion marks a period complete when it has at least one slot and all
// of its slots are completed.
func dayCompletion(schedule []models.PrayerSchedule) models.DayCompletion {
	complete := func(period models.Period) bool {
		seen := false
		for _, slot := range schedule {
			if slot.Period != period {
				continue
			}
			if !slot.Completed {
				return false
			}
			seen = true
		}
		return seen
	}
	return models.DayCompletion{
		Morning:   complete(models.PeriodMorning),
		Afternoon: complete(models.PeriodAfternoon),
		Night:     complete(models.PeriodNight),
	}
}

func slotIndex(u *models.User, slotID string) (int, error) {
	idx := slices.IndexFunc(u.Schedule, func(slot models.PrayerSchedule) bool {
		return slot.Schedule_ID == slotID
	})
	if idx < 0 {
		return -1, fmt.Errorf("schedule slot %s: %w", slotID, models.ErrNotFound)
	}
	return idx, nil
}
