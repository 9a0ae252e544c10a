package services

import (
	"context"
	"fmt"
	"net/mail"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/OraComigo/models"
)

const MinPasswordLength = 6

// Signup registers a new account. The password hash is kept in the store's
// credential map, never on the user record.
func (s *Store) Signup(ctx context.Context, input models.UserSignup) (*models.User, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" {
		return nil, fmt.Errorf("name is required: %w", models.ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("invalid email %q: %w", input.Email, models.ErrValidation)
	}
	if len(input.Password) < MinPasswordLength {
		return nil, fmt.Errorf("password must have at least %d characters: %w", MinPasswordLength, models.ErrValidation)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var out *models.User
	err = s.insert(ctx, func() error {
		if s.findByEmailLocked(email) != nil {
			return fmt.Errorf("email %s already registered: %w", email, models.ErrConflict)
		}

		role := models.RoleUser
		if slices.Contains(s.editorEmails, email) {
			role = models.RoleEditor
		}

		u := &models.User{
			User_ID:         s.ids.NewID("u"),
			Name:            name,
			Email:           email,
			City:            strings.TrimSpace(input.City),
			Avatar_Url:      input.Avatar_Url,
			Role:            role,
			Datetime_Create: s.clock.Now(),
		}
		normalizeUser(u)

		s.users[u.User_ID] = u
		s.userOrder = append(s.userOrder, u.User_ID)
		s.credentials[u.User_ID] = string(passwordHash)

		out = u.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("user_id", out.User_ID).Str("role", string(out.Role)).Msg("User signed up")
	return out, nil
}

// Authenticate checks an email and password pair. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *Store) Authenticate(email, password string) (*models.User, error) {
	email = normalizeEmail(email)

	s.mu.RLock()
	u := s.findByEmailLocked(email)
	var hash string
	if u != nil {
		hash = s.credentials[u.User_ID]
	}
	s.mu.RUnlock()

	if u == nil || hash == "" {
		return nil, fmt.Errorf("invalid credentials: %w", models.ErrPermissionDenied)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", models.ErrPermissionDenied)
	}
	return s.GetUser(u.User_ID)
}

// GetUser returns a copy of the user with the streak recomputed for today.
func (s *Store) GetUser(userID string) (*models.User, error) {
	var out *models.User
	err := s.withEntities([]string{userKey(userID)}, func() error {
		u, err := s.userLocked(userID)
		if err != nil {
			return err
		}
		out = u.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	if out.Schedule_Date != "" && out.Schedule_Date != today {
		for i := range out.Schedule {
			out.Schedule[i].Completed = false
		}
	}
	out.Streak = ComputeStreak(out.History, today)
	return out, nil
}

// StorePushToken registers a device token for the user, replacing any earlier
// registration of the same token.
func (s *Store) StorePushToken(ctx context.Context, userID, token, platform string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("push token is required: %w", models.ErrValidation)
	}

	return s.insert(ctx, func() error {
		if _, err := s.userLocked(userID); err != nil {
			return err
		}

		// a device belongs to the last user who registered it
		for id, tokens := range s.pushTokens {
			s.pushTokens[id] = slices.DeleteFunc(tokens, func(t models.PushToken) bool { return t.Push_Token == token })
			if len(s.pushTokens[id]) == 0 {
				delete(s.pushTokens, id)
			}
		}
		s.pushTokens[userID] = append(s.pushTokens[userID], models.PushToken{
			Push_Token:      token,
			Platform:        platform,
			Datetime_Update: s.clock.Now(),
		})
		return nil
	})
}

func (s *Store) PushTokens(userID string) []models.PushToken {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.pushTokens[userID])
}

// RemovePushTokens drops tokens the push provider reported as invalid.
func (s *Store) RemovePushTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	return s.insert(ctx, func() error {
		for id, existing := range s.pushTokens {
			s.pushTokens[id] = slices.DeleteFunc(existing, func(t models.PushToken) bool {
				return slices.Contains(tokens, t.Push_Token)
			})
			if len(s.pushTokens[id]) == 0 {
				delete(s.pushTokens, id)
			}
		}
		return nil
	})
}

func (s *Store) findByEmailLocked(email string) *models.User {
	for _, id := range s.userOrder {
		if u := s.users[id]; u.Email == email {
			return u
		}
	}
	return nil
}
