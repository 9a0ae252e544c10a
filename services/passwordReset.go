package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/OraComigo/models"
)

const (
	ResetCodeTTL     = 15 * time.Minute
	MaxResetAttempts = 3
)

var errInvalidResetCode = fmt.Errorf("invalid or expired verification code: %w", models.ErrPermissionDenied)

// RequestPasswordReset issues a fresh 6-digit code for the account, replacing
// any earlier one. An unknown email is not an error: the user is nil.
func (s *Store) RequestPasswordReset(email string) (*models.User, string, error) {
	email = normalizeEmail(email)

	code, err := generate6DigitCode()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate verification code: %w", err)
	}

	var out *models.User
	err = s.exclusive(func() error {
		u := s.findByEmailLocked(email)
		if u == nil {
			return nil
		}
		s.resetCodes[u.User_ID] = &models.PasswordResetCode{
			User_ID:    u.User_ID,
			Code:       code,
			Expires_At: s.clock.Now().Add(ResetCodeTTL),
		}
		out = u.Clone()
		return nil
	})
	if err != nil || out == nil {
		return nil, "", err
	}

	log.Info().Str("user_id", out.User_ID).Msg("Password reset code issued")
	return out, code, nil
}

// VerifyResetCode checks a code and returns the account it belongs to. Every
// attempt counts, so a code is dead after MaxResetAttempts guesses.
func (s *Store) VerifyResetCode(email, code string) (string, error) {
	email = normalizeEmail(email)

	var userID string
	err := s.exclusive(func() error {
		u := s.findByEmailLocked(email)
		if u == nil {
			return errInvalidResetCode
		}
		pending, ok := s.resetCodes[u.User_ID]
		if !ok || s.clock.Now().After(pending.Expires_At) {
			return errInvalidResetCode
		}
		if pending.Attempts >= MaxResetAttempts {
			return fmt.Errorf("maximum verification attempts exceeded: %w", models.ErrPermissionDenied)
		}

		pending.Attempts++
		if subtle.ConstantTimeCompare([]byte(pending.Code), []byte(code)) != 1 {
			return errInvalidResetCode
		}
		userID = u.User_ID
		return nil
	})
	return userID, err
}

// ResetPassword replaces the user's password hash and drops the pending code.
func (s *Store) ResetPassword(ctx context.Context, userID, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return fmt.Errorf("password must have at least %d characters: %w", MinPasswordLength, models.ErrValidation)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.insert(ctx, func() error {
		if _, err := s.userLocked(userID); err != nil {
			return err
		}
		s.credentials[userID] = string(passwordHash)
		delete(s.resetCodes, userID)
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().Str("user_id", userID).Msg("Password reset")
	return nil
}

func generate6DigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
