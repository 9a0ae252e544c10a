package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/OraComigo/metrics"
	"github.com/OraComigo/models"
)

const MaxPostLength = 2000

// AddPost creates a top-level post at the head of the circle's feed. Only
// members may post.
func (s *Store) AddPost(ctx context.Context, circuloID, authorID string, input models.PostCreate) (*models.Post, error) {
	text, err := validatePostText(input.Text)
	if err != nil {
		return nil, err
	}

	var out *models.Post
	err = s.mutate(ctx, []string{userKey(authorID), circuloKey(circuloID)}, func() error {
		c, err := s.circuloLocked(circuloID)
		if err != nil {
			return err
		}
		author, err := s.requireMember(circuloID, authorID)
		if err != nil {
			return err
		}

		p := s.newPost(author, text, input)
		c.InsertRootPost(p)
		out = p.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordPost(false)
	return out, nil
}

// AddReply appends a reply to the end of the parent's replies. A parent that
// cannot be found is ignored: the returned reply is nil and so is the error.
// The parent's author id is returned so callers can notify them.
func (s *Store) AddReply(ctx context.Context, circuloID, parentPostID, authorID string, input models.PostCreate) (*models.Post, string, error) {
	text, err := validatePostText(input.Text)
	if err != nil {
		return nil, "", err
	}

	var (
		out            *models.Post
		parentAuthorID string
	)
	err = s.withEntities([]string{userKey(authorID), circuloKey(circuloID)}, func() error {
		c, err := s.circuloLocked(circuloID)
		if err != nil {
			return err
		}
		author, err := s.requireMember(circuloID, authorID)
		if err != nil {
			return err
		}

		parent, ok := c.Posts[parentPostID]
		if !ok {
			log.Debug().Str("circulo_id", circuloID).Str("parent_post_id", parentPostID).Msg("Reply parent not found, ignoring")
			return nil
		}

		p := s.newPost(author, text, input)
		c.AppendReply(parentPostID, p)
		out = p.Clone()
		parentAuthorID = parent.Author_ID
		return nil
	})
	if err != nil || out == nil {
		return nil, "", err
	}

	if err := s.Save(ctx); err != nil {
		return nil, "", err
	}
	metrics.RecordPost(true)
	return out, parentAuthorID, nil
}

// React adds, removes or switches the user's reaction on a post. A user holds
// at most one reaction per post.
func (s *Store) React(ctx context.Context, circuloID, postID, userID, emoji string) (*models.Post, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return nil, fmt.Errorf("emoji is required: %w", models.ErrValidation)
	}

	var out *models.Post
	err := s.mutate(ctx, []string{userKey(userID), circuloKey(circuloID)}, func() error {
		c, err := s.circuloLocked(circuloID)
		if err != nil {
			return err
		}
		if _, err := s.requireMember(circuloID, userID); err != nil {
			return err
		}
		p, err := postLocked(c, postID)
		if err != nil {
			return err
		}

		p.Reactions = toggleReaction(p.Reactions, userID, emoji)
		out = p.Clone()
		return nil
	})
	return out, err
}

// DeletePost removes a post or reply together with every reply beneath it.
func (s *Store) DeletePost(ctx context.Context, circuloID, postID, actorID string) error {
	var removed int
	err := s.mutate(ctx, []string{circuloKey(circuloID)}, func() error {
		c, err := s.requireModerator(circuloID, actorID)
		if err != nil {
			return err
		}
		if _, err := postLocked(c, postID); err != nil {
			return err
		}

		removed = c.RemoveSubtree(postID)
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().
		Str("circulo_id", circuloID).
		Str("post_id", postID).
		Str("actor_id", actorID).
		Int("removed", removed).
		Msg("Post deleted")
	return nil
}

// PinPost toggles the pin on a top-level post. Pinning one post unpins every
// other, so a circle never has more than one pinned post.
func (s *Store) PinPost(ctx context.Context, circuloID, postID, actorID string) (*models.Post, error) {
	var out *models.Post
	err := s.mutate(ctx, []string{circuloKey(circuloID)}, func() error {
		c, err := s.requireModerator(circuloID, actorID)
		if err != nil {
			return err
		}
		target, ok := c.Posts[postID]
		if !ok || !target.IsTopLevel() {
			return fmt.Errorf("top-level post %s: %w", postID, models.ErrNotFound)
		}

		wasPinned := target.Is_Pinned
		for _, id := range c.Root_Post_IDs {
			if p, ok := c.Posts[id]; ok {
				p.Is_Pinned = false
			}
		}
		target.Is_Pinned = !wasPinned

		out = target.Clone()
		return nil
	})
	return out, err
}

func (s *Store) newPost(author *models.User, text string, input models.PostCreate) *models.Post {
	mentionedPrayers := slices.Clone(input.Mentioned_Prayer_IDs)
	for _, id := range models.ReferencedPrayerIDs(text) {
		if !slices.Contains(mentionedPrayers, id) {
			mentionedPrayers = append(mentionedPrayers, id)
		}
	}

	return &models.Post{
		Post_ID:              s.ids.NewID("post"),
		Author_ID:            author.User_ID,
		Author_Name:          author.Name,
		Author_Avatar_Url:    author.Avatar_Url,
		Text:                 text,
		Mentioned_Prayer_IDs: mentionedPrayers,
		Mentioned_User_IDs:   slices.Clone(input.Mentioned_User_IDs),
		Datetime_Create:      s.clock.Now(),
		Reactions:            []models.Reaction{},
		Reply_IDs:            []string{},
	}
}

func postLocked(c *models.Circulo, postID string) (*models.Post, error) {
	p, ok := c.Posts[postID]
	if !ok {
		return nil, fmt.Errorf("post %s: %w", postID, models.ErrNotFound)
	}
	return p, nil
}

func toggleReaction(reactions []models.Reaction, userID, emoji string) []models.Reaction {
	idx := slices.IndexFunc(reactions, func(r models.Reaction) bool { return r.User_ID == userID })
	switch {
	case idx < 0:
		return append(reactions, models.Reaction{User_ID: userID, Emoji: emoji})
	case reactions[idx].Emoji == emoji:
		return slices.Delete(reactions, idx, idx+1)
	default:
		reactions[idx].Emoji = emoji
		return reactions
	}
}

func validatePostText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("post text is required: %w", models.ErrValidation)
	}
	if utf8.RuneCountInString(text) > MaxPostLength {
		return "", fmt.Errorf("post text exceeds %d characters: %w", MaxPostLength, models.ErrValidation)
	}
	return text, nil
}
