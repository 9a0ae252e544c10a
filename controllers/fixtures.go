package controllers

import (
	"context"
	"testing"

	"github.com/OraComigo/models"
)

// Test fixture data for use in tests

// MockUserSignup is a regular account. Password is "password123".
func MockUserSignup() models.UserSignup {
	return models.UserSignup{
		Name:     "Maria",
		Email:    "maria@example.com",
		Password: "password123",
		City:     "Piracicaba",
	}
}

func MockMemberSignup() models.UserSignup {
	return models.UserSignup{
		Name:     "João",
		Email:    "joao@example.com",
		Password: "password123",
		City:     "São Paulo",
	}
}

// MockEditorSignup is promoted to editor by the test server's editor list.
func MockEditorSignup() models.UserSignup {
	return models.UserSignup{
		Name:     "Frei Carlos",
		Email:    "editor@example.com",
		Password: "password123",
	}
}

func MockPrayerCreate() models.PrayerCreate {
	return models.PrayerCreate{
		Title:    "Ave Maria",
		Text:     "Ave Maria, cheia de graça...",
		Category: models.CategoryMarianas,
		Tags:     []string{"maria"},
	}
}

// mustSignup registers a fixture account directly through the store.
func mustSignup(t *testing.T, s *Server, input models.UserSignup) *models.User {
	t.Helper()
	u, err := s.Store.Signup(context.Background(), input)
	if err != nil {
		t.Fatalf("signup %s: %v", input.Email, err)
	}
	return u
}

// mustReload returns the stored version of a user after mutations.
func mustReload(t *testing.T, s *Server, userID string) *models.User {
	t.Helper()
	u, err := s.Store.GetUser(userID)
	if err != nil {
		t.Fatalf("get user %s: %v", userID, err)
	}
	return u
}
