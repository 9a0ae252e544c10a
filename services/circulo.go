package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/OraComigo/models"
)

type MembershipResult struct {
	Joined_Circulo_IDs []string `json:"joinedCirculoIds"`
	Member_Count       int      `json:"memberCount"`
	Is_Member          bool     `json:"isMember"`
}

func (s *Store) ListCirculos() []*models.Circulo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Circulo, 0, len(s.circuloOrder))
	for _, id := range s.circuloOrder {
		unlock := s.locks.lock(circuloKey(id))
		out = append(out, s.circulos[id].Clone())
		unlock()
	}
	return out
}

func (s *Store) GetCirculo(circuloID string) (*models.Circulo, error) {
	var out *models.Circulo
	err := s.withEntities([]string{circuloKey(circuloID)}, func() error {
		c, err := s.circuloLocked(circuloID)
		if err != nil {
			return err
		}
		out = c.Clone()
		return nil
	})
	return out, err
}

// GetCirculoMembers lists users whose joined set contains the circle.
func (s *Store) GetCirculoMembers(circuloID string) ([]models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	unlock := s.locks.lock(circuloKey(circuloID))
	c, err := s.circuloLocked(circuloID)
	if err != nil {
		unlock()
		return nil, err
	}
	leaderID := c.Leader_ID
	moderators := slices.Clone(c.Moderator_IDs)
	unlock()

	members := []models.Member{}
	for _, id := range s.userOrder {
		unlock := s.locks.lock(userKey(id))
		u := s.users[id]
		if u.HasJoined(circuloID) {
			members = append(members, models.Member{
				User_ID:      u.User_ID,
				Name:         u.Name,
				Avatar_Url:   u.Avatar_Url,
				City:         u.City,
				Level:        u.Level,
				Is_Moderator: slices.Contains(moderators, u.User_ID),
				Is_Leader:    u.User_ID == leaderID,
			})
		}
		unlock()
	}
	return members, nil
}

// CreateCirculo allocates a circle led by the creator, who becomes its first
// member and moderator.
func (s *Store) CreateCirculo(ctx context.Context, creatorID string, input models.CirculoCreate) (*models.Circulo, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("circulo name is required: %w", models.ErrValidation)
	}

	var out *models.Circulo
	err := s.insert(ctx, func() error {
		creator, err := s.userLocked(creatorID)
		if err != nil {
			return err
		}

		c := &models.Circulo{
			Circulo_ID:      s.ids.NewID("c"),
			Name:            name,
			Description:     strings.TrimSpace(input.Description),
			Leader_ID:       creator.User_ID,
			Moderator_IDs:   []string{creator.User_ID},
			Member_Count:    1,
			Image_Url:       input.Image_Url,
			Cover_Image_Url: input.Cover_Image_Url,
			External_Links:  []models.ExternalLink{},
			Posts:           make(map[string]*models.Post),
			Root_Post_IDs:   []string{},
			Schedule:        []models.CirculoScheduleItem{},
			Datetime_Create: s.clock.Now(),
		}
		s.circulos[c.Circulo_ID] = c
		s.circuloOrder = append(s.circuloOrder, c.Circulo_ID)
		creator.Joined_Circulo_IDs = append(creator.Joined_Circulo_IDs, c.Circulo_ID)

		out = c.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("circulo_id", out.Circulo_ID).Str("leader_id", creatorID).Msg("Circulo created")
	return out, nil
}

// ToggleMembership joins or leaves a circle. The joined set and the member
// count change together under both entity locks.
func (s *Store) ToggleMembership(ctx context.Context, userID, circuloID string) (MembershipResult, error) {
	var result MembershipResult
	err := s.mutate(ctx, []string{userKey(userID), circuloKey(circuloID)}, func() error {
		u, err := s.userLocked(userID)
		if err != nil {
			return err
		}
		c, err := s.circuloLocked(circuloID)
		if err != nil {
			return err
		}

		if u.HasJoined(circuloID) {
			if c.IsLeader(userID) {
				return fmt.Errorf("leader cannot leave circulo %s: %w", circuloID, models.ErrPermissionDenied)
			}
			u.Joined_Circulo_IDs = removeID(u.Joined_Circulo_IDs, circuloID)
			c.Moderator_IDs = removeID(c.Moderator_IDs, userID)
			c.Member_Count--
		} else {
			u.Joined_Circulo_IDs = append(u.Joined_Circulo_IDs, circuloID)
			c.Member_Count++
		}

		result = MembershipResult{
			Joined_Circulo_IDs: slices.Clone(u.Joined_Circulo_IDs),
			Member_Count:       c.Member_Count,
			Is_Member:          u.HasJoined(circuloID),
		}
		return nil
	})
	return result, err
}

// SetModeratorRole grants or revokes moderation. The leader always stays a
// moderator.
func (s *Store) SetModeratorRole(ctx context.Context, circuloID, actorID, targetID string, isModerator bool) (*models.Circulo, error) {
	var out *models.Circulo
	err := s.mutate(ctx, []string{circuloKey(circuloID), userKey(targetID)}, func() error {
		c, err := s.requireModerator(circuloID, actorID)
		if err != nil {
			return err
		}
		target, err := s.userLocked(targetID)
		if err != nil {
			return err
		}

		if isModerator {
			if !target.HasJoined(circuloID) {
				return fmt.Errorf("user %s is not a member of circulo %s: %w", targetID, circuloID, models.ErrValidation)
			}
			if !c.IsModerator(targetID) {
				c.Moderator_IDs = append(c.Moderator_IDs, targetID)
			}
		} else {
			if c.IsLeader(targetID) {
				return fmt.Errorf("leader of circulo %s cannot be demoted: %w", circuloID, models.ErrPermissionDenied)
			}
			c.Moderator_IDs = removeID(c.Moderator_IDs, targetID)
		}

		out = c.Clone()
		return nil
	})
	return out, err
}

// RemoveMember expels a member and strips any moderator role they held.
func (s *Store) RemoveMember(ctx context.Context, circuloID, actorID, targetID string) (*models.Circulo, error) {
	var out *models.Circulo
	err := s.mutate(ctx, []string{circuloKey(circuloID), userKey(targetID)}, func() error {
		c, err := s.requireModerator(circuloID, actorID)
		if err != nil {
			return err
		}
		if c.IsLeader(targetID) {
			return fmt.Errorf("leader of circulo %s cannot be removed: %w", circuloID, models.ErrPermissionDenied)
		}
		target, err := s.userLocked(targetID)
		if err != nil {
			return err
		}

		if target.HasJoined(circuloID) {
			target.Joined_Circulo_IDs = removeID(target.Joined_Circulo_IDs, circuloID)
			c.Member_Count--
		}
		c.Moderator_IDs = removeID(c.Moderator_IDs, targetID)

		out = c.Clone()
		return nil
	})
	if err == nil {
		log.Info().Str("circulo_id", circuloID).Str("actor_id", actorID).Str("target_id", targetID).Msg("Member removed")
	}
	return out, err
}

func (s *Store) UpdateCirculoProfile(ctx context.Context, circuloID, actorID string, patch models.CirculoUpdate) (*models.Circulo, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, fmt.Errorf("circulo name cannot be empty: %w", models.ErrValidation)
	}
	if patch.External_Links != nil {
		for _, link := range *patch.External_Links {
			if strings.TrimSpace(link.Title) == "" || strings.TrimSpace(link.Url) == "" {
				return nil, fmt.Errorf("external links need a title and url: %w", models.ErrValidation)
			}
		}
	}

	var out *models.Circulo
	err := s.mutate(ctx, []string{circuloKey(circuloID)}, func() error {
		c, err := s.requireModerator(circuloID, actorID)
		if err != nil {
			return err
		}

		if patch.Name != nil {
			c.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Description != nil {
			c.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.Image_Url != nil {
			c.Image_Url = *patch.Image_Url
		}
		if patch.Cover_Image_Url != nil {
			c.Cover_Image_Url = *patch.Cover_Image_Url
		}
		if patch.External_Links != nil {
			c.External_Links = slices.Clone(*patch.External_Links)
		}

		out = c.Clone()
		return nil
	})
	return out, err
}

func (s *Store) AddScheduleItem(ctx context.Context, circuloID, actorID string, input models.ScheduleItemInput) (*models.Circulo, error) {
	if err := s.validateScheduleItem(input); err != nil {
		return nil, err
	}

	var out *models.Circulo
	err := s.mutate(ctx, []string{circuloKey(circuloID)}, func() error {
		c, err := s.requireModerator(circuloID, actorID)
		if err != nil {
			return err
		}
		if _, err := s.prayerLocked(input.Prayer_ID); err != nil {
			return err
		}

		c.Schedule = append(c.Schedule, models.CirculoScheduleItem{
			Item_ID:   s.ids.NewID("item"),
			Title:     strings.TrimSpace(input.Title),
			Time:      strings.TrimSpace(input.Time),
			Prayer_ID: input.Prayer_ID,
		})
		out = c.Clone()
		return nil
	})
	return out, err
}

func (s *Store) UpdateScheduleItem(ctx context.Context, circuloID, itemID, actorID string, input models.ScheduleItemInput) (*models.Circulo, error) {
	if err := s.validateScheduleItem(input); err != nil {
		return nil, err
	}

	var out *models.Circulo
	err := s.mutate(ctx, []string{circuloKey(circuloID)}, func() error {
		c, err := s.requireModerator(circuloID, actorID)
		if err != nil {
			return err
		}
		idx, err := scheduleItemIndex(c, itemID)
		if err != nil {
			return err
		}
		if _, err := s.prayerLocked(input.Prayer_ID); err != nil {
			return err
		}

		c.Schedule[idx] = models.CirculoScheduleItem{
			Item_ID:   itemID,
			Title:     strings.TrimSpace(input.Title),
			Time:      strings.TrimSpace(input.Time),
			Prayer_ID: input.Prayer_ID,
		}
		out = c.Clone()
		return nil
	})
	return out, err
}

func (s *Store) DeleteScheduleItem(ctx context.Context, circuloID, itemID, actorID string) (*models.Circulo, error) {
	var out *models.Circulo
	err := s.mutate(ctx, []string{circuloKey(circuloID)}, func() error {
		c, err := s.requireModerator(circuloID, actorID)
		if err != nil {
			return err
		}
		idx, err := scheduleItemIndex(c, itemID)
		if err != nil {
			return err
		}

		c.Schedule = slices.Delete(c.Schedule, idx, idx+1)
		out = c.Clone()
		return nil
	})
	return out, err
}

// requireModerator must be called with the circle's lock held.
func (s *Store) requireModerator(circuloID, actorID string) (*models.Circulo, error) {
	c, err := s.circuloLocked(circuloID)
	if err != nil {
		return nil, err
	}
	if !c.IsModerator(actorID) {
		return nil, fmt.Errorf("user %s does not moderate circulo %s: %w", actorID, circuloID, models.ErrPermissionDenied)
	}
	return c, nil
}

// requireMember must be called with the author's lock held.
func (s *Store) requireMember(circuloID, userID string) (*models.User, error) {
	u, err := s.userLocked(userID)
	if err != nil {
		return nil, err
	}
	if !u.HasJoined(circuloID) {
		return nil, fmt.Errorf("user %s is not a member of circulo %s: %w", userID, circuloID, models.ErrPermissionDenied)
	}
	return u, nil
}

func (s *Store) validateScheduleItem(input models.ScheduleItemInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("schedule item title is required: %w", models.ErrValidation)
	}
	if strings.TrimSpace(input.Prayer_ID) == "" {
		return fmt.Errorf("schedule item prayer is required: %w", models.ErrValidation)
	}
	return nil
}

func scheduleItemIndex(c *models.Circulo, itemID string) (int, error) {
	idx := slices.IndexFunc(c.Schedule, func(item models.CirculoScheduleItem) bool {
		return item.Item_ID == itemID
	})
	if idx < 0 {
		return -1, fmt.Errorf("schedule item %s: %w", itemID, models.ErrNotFound)
	}
	return idx, nil
}
