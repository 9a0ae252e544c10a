package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OraComigo/models"
)

func signupForReset(t *testing.T, ts *testStore) *models.User {
	t.Helper()
	u, err := ts.Signup(context.Background(), models.UserSignup{
		Name:     "Maria",
		Email:    "maria@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return u
}

func TestRequestPasswordReset(t *testing.T) {
	ts := newTestStore(t)
	u := signupForReset(t, ts)

	t.Run("unknown email yields no user", func(t *testing.T) {
		got, code, err := ts.RequestPasswordReset("nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.Empty(t, code)
	})

	t.Run("known email gets a 6-digit code", func(t *testing.T) {
		got, code, err := ts.RequestPasswordReset(" MARIA@example.com ")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, u.User_ID, got.User_ID)
		assert.Regexp(t, `^\d{6}$`, code)
	})
}

func TestVerifyResetCode(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(ts *testStore, code string) string
		expectErr bool
	}{
		{
			name:  "correct code",
			setup: func(_ *testStore, code string) string { return code },
		},
		{
			name:      "wrong code",
			setup:     func(_ *testStore, code string) string { return wrongCode(code) },
			expectErr: true,
		},
		{
			name: "expired code",
			setup: func(ts *testStore, code string) string {
				ts.clock.now = ts.clock.now.Add(ResetCodeTTL + time.Second)
				return code
			},
			expectErr: true,
		},
		{
			name: "locked after too many attempts",
			setup: func(ts *testStore, code string) string {
				for i := 0; i < MaxResetAttempts; i++ {
					_, _ = ts.VerifyResetCode("maria@example.com", wrongCode(code))
				}
				return code
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestStore(t)
			u := signupForReset(t, ts)
			_, code, err := ts.RequestPasswordReset(u.Email)
			require.NoError(t, err)

			userID, err := ts.VerifyResetCode(u.Email, tt.setup(ts, code))
			if tt.expectErr {
				assert.True(t, errors.Is(err, models.ErrPermissionDenied))
				assert.Empty(t, userID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, u.User_ID, userID)
		})
	}
}

func TestResetPassword(t *testing.T) {
	ts := newTestStore(t)
	u := signupForReset(t, ts)
	ctx := context.Background()

	_, code, err := ts.RequestPasswordReset(u.Email)
	require.NoError(t, err)

	err = ts.ResetPassword(ctx, u.User_ID, "123")
	assert.True(t, errors.Is(err, models.ErrValidation))

	require.NoError(t, ts.ResetPassword(ctx, u.User_ID, "novaSenha1"))

	_, err = ts.Authenticate(u.Email, "password123")
	assert.True(t, errors.Is(err, models.ErrPermissionDenied))
	_, err = ts.Authenticate(u.Email, "novaSenha1")
	assert.NoError(t, err)

	_, err = ts.VerifyResetCode(u.Email, code)
	assert.True(t, errors.Is(err, models.ErrPermissionDenied), "code is consumed by the reset")

	err = ts.ResetPassword(ctx, "missing", "novaSenha1")
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func wrongCode(code string) string {
	if code == "000000" {
		return "000001"
	}
	return "000000"
}
