package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/OraComigo/models"
)

const DefaultPrayerTitle = "Sem Título"

// ListPrayers returns the catalogue newest first. Pending submissions are only
// visible to editors.
func (s *Store) ListPrayers(viewerID string) []*models.Prayer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	editor := false
	unlock := s.locks.lock(userKey(viewerID))
	if u, ok := s.users[viewerID]; ok {
		editor = u.IsEditor()
	}
	unlock()

	out := make([]*models.Prayer, 0, len(s.prayerOrder))
	for _, id := range s.prayerOrder {
		unlock := s.locks.lock(prayerKey(id))
		p := s.prayers[id]
		if p.IsPublished() || editor {
			out = append(out, p.Clone())
		}
		unlock()
	}
	return out
}

func (s *Store) GetPrayer(prayerID string) (*models.Prayer, error) {
	var out *models.Prayer
	err := s.withEntities([]string{prayerKey(prayerID)}, func() error {
		p, err := s.prayerLocked(prayerID)
		if err != nil {
			return err
		}
		out = p.Clone()
		return nil
	})
	return out, err
}

// AddPrayer publishes an editor's prayer immediately. Anyone else's submission
// is kept as pending until an editor approves it.
func (s *Store) AddPrayer(ctx context.Context, authorID string, input models.PrayerCreate) (*models.Prayer, error) {
	if !input.Category.Valid() {
		return nil, fmt.Errorf("unknown category %q: %w", input.Category, models.ErrValidation)
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, fmt.Errorf("prayer text is required: %w", models.ErrValidation)
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = DefaultPrayerTitle
	}

	var out *models.Prayer
	err := s.insert(ctx, func() error {
		author, err := s.userLocked(authorID)
		if err != nil {
			return err
		}
		if input.Parent_Prayer_ID != nil {
			if _, err := s.prayerLocked(*input.Parent_Prayer_ID); err != nil {
				return err
			}
		}

		status := models.PrayerStatusPending
		if author.IsEditor() {
			status = models.PrayerStatusPublished
		}
		tags := slices.Clone(input.Tags)
		if tags == nil {
			tags = []string{}
		}

		p := &models.Prayer{
			Prayer_ID:        s.ids.NewID("p"),
			Title:            title,
			Text:             input.Text,
			Latin_Text:       input.Latin_Text,
			Category:         input.Category,
			Tags:             tags,
			Image_Url:        input.Image_Url,
			Author_ID:        author.User_ID,
			Author_Name:      author.Name,
			Datetime_Create:  s.clock.Now(),
			Parent_Prayer_ID: input.Parent_Prayer_ID,
			Is_Devotion:      input.Is_Devotion,
			Status:           status,
		}
		s.prayers[p.Prayer_ID] = p
		s.prayerOrder = slices.Insert(s.prayerOrder, 0, p.Prayer_ID)

		out = p.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("prayer_id", out.Prayer_ID).Str("author_id", authorID).Str("status", out.Status).Msg("Prayer submitted")
	return out, nil
}

func (s *Store) ApprovePrayer(ctx context.Context, editorID, prayerID string) (*models.Prayer, error) {
	var out *models.Prayer
	err := s.mutate(ctx, []string{userKey(editorID), prayerKey(prayerID)}, func() error {
		if err := s.requireEditor(editorID); err != nil {
			return err
		}
		p, err := s.prayerLocked(prayerID)
		if err != nil {
			return err
		}

		p.Status = models.PrayerStatusPublished
		out = p.Clone()
		return nil
	})
	return out, err
}

// UpdatePrayer merges the patch into a prayer. The id, author and prayer count
// are never changed here.
func (s *Store) UpdatePrayer(ctx context.Context, editorID, prayerID string, patch models.PrayerUpdate) (*models.Prayer, error) {
	if patch.Category != nil && !patch.Category.Valid() {
		return nil, fmt.Errorf("unknown category %q: %w", *patch.Category, models.ErrValidation)
	}
	if patch.Text != nil && strings.TrimSpace(*patch.Text) == "" {
		return nil, fmt.Errorf("prayer text cannot be empty: %w", models.ErrValidation)
	}
	if patch.Parent_Prayer_ID != nil && *patch.Parent_Prayer_ID == prayerID {
		return nil, fmt.Errorf("prayer cannot be its own parent: %w", models.ErrValidation)
	}

	var out *models.Prayer
	err := s.mutate(ctx, []string{userKey(editorID), prayerKey(prayerID)}, func() error {
		if err := s.requireEditor(editorID); err != nil {
			return err
		}
		p, err := s.prayerLocked(prayerID)
		if err != nil {
			return err
		}

		if patch.Title != nil {
			p.Title = strings.TrimSpace(*patch.Title)
			if p.Title == "" {
				p.Title = DefaultPrayerTitle
			}
		}
		if patch.Text != nil {
			p.Text = *patch.Text
		}
		if patch.Latin_Text != nil {
			p.Latin_Text = patch.Latin_Text
		}
		if patch.Category != nil {
			p.Category = *patch.Category
		}
		if patch.Tags != nil {
			p.Tags = slices.Clone(*patch.Tags)
		}
		if patch.Image_Url != nil {
			p.Image_Url = patch.Image_Url
		}
		if patch.Parent_Prayer_ID != nil {
			p.Parent_Prayer_ID = patch.Parent_Prayer_ID
		}
		if patch.Is_Devotion != nil {
			p.Is_Devotion = *patch.Is_Devotion
		}

		out = p.Clone()
		return nil
	})
	return out, err
}

// ToggleFavorite adds or removes a prayer from the user's favourites and
// returns the new set.
func (s *Store) ToggleFavorite(ctx context.Context, userID, prayerID string) ([]string, error) {
	var favorites []string
	err := s.mutate(ctx, []string{userKey(userID)}, func() error {
		u, err := s.userLocked(userID)
		if err != nil {
			return err
		}

		if slices.Contains(u.Favorite_Prayer_IDs, prayerID) {
			u.Favorite_Prayer_IDs = removeID(u.Favorite_Prayer_IDs, prayerID)
		} else {
			if _, err := s.prayerLocked(prayerID); err != nil {
				return err
			}
			u.Favorite_Prayer_IDs = append(u.Favorite_Prayer_IDs, prayerID)
		}

		favorites = slices.Clone(u.Favorite_Prayer_IDs)
		return nil
	})
	return favorites, err
}

// requireEditor must be called with the user's lock held.
func (s *Store) requireEditor(userID string) error {
	u, err := s.userLocked(userID)
	if err != nil {
		return err
	}
	if !u.IsEditor() {
		return fmt.Errorf("user %s is not an editor: %w", userID, models.ErrPermissionDenied)
	}
	return nil
}
