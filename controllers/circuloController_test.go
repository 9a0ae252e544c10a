package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OraComigo/models"
	"github.com/OraComigo/services"
)

// seedCirculo creates a circle led by leader and joins every member to it.
func seedCirculo(t *testing.T, s *Server, leader *models.User, members ...*models.User) *models.Circulo {
	t.Helper()
	ctx := context.Background()
	circulo, err := s.Store.CreateCirculo(ctx, leader.User_ID, models.CirculoCreate{Name: "Terço dos Homens"})
	require.NoError(t, err)
	for _, m := range members {
		_, err := s.Store.ToggleMembership(ctx, m.User_ID, circulo.Circulo_ID)
		require.NoError(t, err)
	}
	return circulo
}

func TestCreateCirculo(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
	}{
		{"valid circle", models.CirculoCreate{Name: "Terço", Description: "Toda terça"}, http.StatusCreated},
		{"missing name", map[string]string{"description": "sem nome"}, http.StatusBadRequest},
		{"blank name", models.CirculoCreate{Name: "   "}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SetupTestServer(t)
			user := mustSignup(t, s, MockUserSignup())

			c, w := SetupTestContext()
			SetAuthenticatedUser(c, user)
			SetJSONBody(c, "POST", "/circulos", tt.body)
			s.CreateCirculo(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusCreated {
				return
			}

			var response struct {
				Circulo models.CirculoView `json:"circulo"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, user.User_ID, response.Circulo.Leader_ID)
			assert.Equal(t, []string{user.User_ID}, response.Circulo.Moderator_IDs)
			assert.Equal(t, 1, response.Circulo.Member_Count)
			assert.True(t, mustReload(t, s, user.User_ID).HasJoined(response.Circulo.Circulo_ID))
		})
	}
}

func TestGetCirculo(t *testing.T) {
	s := SetupTestServer(t)
	leader := mustSignup(t, s, MockUserSignup())
	visitor := mustSignup(t, s, MockMemberSignup())
	circulo := seedCirculo(t, s, leader)

	_, err := s.Store.AddPost(context.Background(), circulo.Circulo_ID, leader.User_ID, models.PostCreate{Text: "Bem-vindos!"})
	require.NoError(t, err)

	tests := []struct {
		name        string
		viewer      *models.User
		isMember    bool
		isModerator bool
	}{
		{"leader", leader, true, true},
		{"visitor", visitor, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := SetupTestContext()
			SetAuthenticatedUser(c, mustReload(t, s, tt.viewer.User_ID))
			SetParams(c, "circulo_id", circulo.Circulo_ID)
			s.GetCirculo(c)

			require.Equal(t, http.StatusOK, w.Code)
			var response struct {
				Circulo     models.CirculoView `json:"circulo"`
				IsMember    bool               `json:"isMember"`
				IsModerator bool               `json:"isModerator"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.isMember, response.IsMember)
			assert.Equal(t, tt.isModerator, response.IsModerator)
			require.Len(t, response.Circulo.Posts, 1)
			assert.Equal(t, "Bem-vindos!", response.Circulo.Posts[0].Text)
		})
	}

	t.Run("unknown circle", func(t *testing.T) {
		c, w := SetupTestContext()
		SetAuthenticatedUser(c, leader)
		SetParams(c, "circulo_id", "missing")
		s.GetCirculo(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestToggleMembership(t *testing.T) {
	s := SetupTestServer(t)
	leader := mustSignup(t, s, MockUserSignup())
	member := mustSignup(t, s, MockMemberSignup())
	circulo := seedCirculo(t, s, leader)

	toggle := func(user *models.User) (int, services.MembershipResult) {
		c, w := SetupTestContext()
		SetAuthenticatedUser(c, user)
		SetParams(c, "circulo_id", circulo.Circulo_ID)
		s.ToggleMembership(c)

		var result services.MembershipResult
		if w.Code == http.StatusOK {
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		}
		return w.Code, result
	}

	code, result := toggle(member)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, result.Is_Member)
	assert.Equal(t, 2, result.Member_Count)

	code, result = toggle(member)
	require.Equal(t, http.StatusOK, code)
	assert.False(t, result.Is_Member)
	assert.Equal(t, 1, result.Member_Count)

	code, _ = toggle(leader)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestGetCirculoMembers(t *testing.T) {
	s := SetupTestServer(t)
	leader := mustSignup(t, s, MockUserSignup())
	member := mustSignup(t, s, MockMemberSignup())
	circulo := seedCirculo(t, s, leader, member)

	c, w := SetupTestContext()
	SetAuthenticatedUser(c, member)
	SetParams(c, "circulo_id", circulo.Circulo_ID)
	s.GetCirculoMembers(c)

	require.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Members []models.Member `json:"members"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Members, 2)
	assert.NotContains(t, w.Body.String(), "email")

	byID := map[string]models.Member{}
	for _, m := range response.Members {
		byID[m.User_ID] = m
	}
	assert.True(t, byID[leader.User_ID].Is_Leader)
	assert.True(t, byID[leader.User_ID].Is_Moderator)
	assert.False(t, byID[member.User_ID].Is_Moderator)
}

func TestSetModeratorRole(t *testing.T) {
	promote, demote := true, false

	tests := []struct {
		name           string
		actor          string
		target         string
		body           interface{}
		expectedStatus int
	}{
		{"leader promotes member", "leader", "member", models.ModeratorRoleUpdate{Is_Moderator: &promote}, http.StatusOK},
		{"member cannot promote", "member", "member", models.ModeratorRoleUpdate{Is_Moderator: &promote}, http.StatusForbidden},
		{"leader cannot be demoted", "leader", "leader", models.ModeratorRoleUpdate{Is_Moderator: &demote}, http.StatusForbidden},
		{"non-member cannot be promoted", "leader", "outsider", models.ModeratorRoleUpdate{Is_Moderator: &promote}, http.StatusBadRequest},
		{"missing flag", "leader", "member", map[string]string{}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SetupTestServer(t)
			users := map[string]*models.User{
				"leader":   mustSignup(t, s, MockUserSignup()),
				"member":   mustSignup(t, s, MockMemberSignup()),
				"outsider": mustSignup(t, s, MockEditorSignup()),
			}
			circulo := seedCirculo(t, s, users["leader"], users["member"])

			c, w := SetupTestContext()
			SetAuthenticatedUser(c, users[tt.actor])
			SetJSONBody(c, "PUT", "/circulos/"+circulo.Circulo_ID+"/moderators/"+users[tt.target].User_ID, tt.body)
			SetParams(c, "circulo_id", circulo.Circulo_ID, "user_id", users[tt.target].User_ID)
			s.SetModeratorRole(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				stored, err := s.Store.GetCirculo(circulo.Circulo_ID)
				require.NoError(t, err)
				assert.True(t, stored.IsModerator(users[tt.target].User_ID))
			}
		})
	}
}

func TestRemoveMember(t *testing.T) {
	tests := []struct {
		name           string
		actor          string
		target         string
		expectedStatus int
	}{
		{"leader removes member", "leader", "member", http.StatusOK},
		{"member cannot remove", "member", "leader", http.StatusForbidden},
		{"leader cannot be removed", "leader", "leader", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := SetupTestServer(t)
			users := map[string]*models.User{
				"leader": mustSignup(t, s, MockUserSignup()),
				"member": mustSignup(t, s, MockMemberSignup()),
			}
			circulo := seedCirculo(t, s, users["leader"], users["member"])

			c, w := SetupTestContext()
			SetAuthenticatedUser(c, users[tt.actor])
			SetParams(c, "circulo_id", circulo.Circulo_ID, "user_id", users[tt.target].User_ID)
			s.RemoveMember(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.False(t, mustReload(t, s, users[tt.target].User_ID).HasJoined(circulo.Circulo_ID))
				stored, err := s.Store.GetCirculo(circulo.Circulo_ID)
				require.NoError(t, err)
				assert.Equal(t, 1, stored.Member_Count)
			}
		})
	}
}

func TestUpdateCirculo(t *testing.T) {
	s := SetupTestServer(t)
	leader := mustSignup(t, s, MockUserSignup())
	member := mustSignup(t, s, MockMemberSignup())
	circulo := seedCirculo(t, s, leader, member)

	description := "Rezamos juntos toda terça"
	links := []models.ExternalLink{{Title: "Instagram", Url: "https://instagram.com/terco"}}
	badLinks := []models.ExternalLink{{Title: "", Url: ""}}

	tests := []struct {
		name           string
		actor          *models.User
		patch          models.CirculoUpdate
		expectedStatus int
	}{
		{"moderator updates profile", leader, models.CirculoUpdate{Description: &description, External_Links: &links}, http.StatusOK},
		{"member is denied", member, models.CirculoUpdate{Description: &description}, http.StatusForbidden},
		{"invalid link", leader, models.CirculoUpdate{External_Links: &badLinks}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := SetupTestContext()
			SetAuthenticatedUser(c, tt.actor)
			SetJSONBody(c, "PATCH", "/circulos/"+circulo.Circulo_ID, tt.patch)
			SetParams(c, "circulo_id", circulo.Circulo_ID)
			s.UpdateCirculo(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}

	stored, err := s.Store.GetCirculo(circulo.Circulo_ID)
	require.NoError(t, err)
	assert.Equal(t, description, stored.Description)
	assert.Equal(t, links, stored.External_Links)
}

func TestCirculoScheduleItems(t *testing.T) {
	s := SetupTestServer(t)
	leader := mustSignup(t, s, MockUserSignup())
	member := mustSignup(t, s, MockMemberSignup())
	editor := mustSignup(t, s, MockEditorSignup())
	prayer := seedPublishedPrayer(t, s, editor, MockPrayerCreate())
	circulo := seedCirculo(t, s, leader, member)

	item := models.ScheduleItemInput{Title: "Terço", Time: "Toda Terça-feira, 20h", Prayer_ID: prayer.Prayer_ID}

	c, w := SetupTestContext()
	SetAuthenticatedUser(c, member)
	SetJSONBody(c, "POST", "/circulos/"+circulo.Circulo_ID+"/schedule", item)
	SetParams(c, "circulo_id", circulo.Circulo_ID)
	s.AddScheduleItem(c)
	assert.Equal(t, http.StatusForbidden, w.Code)

	c, w = SetupTestContext()
	SetAuthenticatedUser(c, leader)
	SetJSONBody(c, "POST", "/circulos/"+circulo.Circulo_ID+"/schedule", item)
	SetParams(c, "circulo_id", circulo.Circulo_ID)
	s.AddScheduleItem(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		Schedule []models.CirculoScheduleItem `json:"schedule"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Schedule, 1)
	itemID := response.Schedule[0].Item_ID

	item.Time = "Toda Quinta-feira, 19h"
	c, w = SetupTestContext()
	SetAuthenticatedUser(c, leader)
	SetJSONBody(c, "PUT", "/circulos/"+circulo.Circulo_ID+"/schedule/"+itemID, item)
	SetParams(c, "circulo_id", circulo.Circulo_ID, "item_id", itemID)
	s.UpdateScheduleItem(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Quinta-feira")

	c, w = SetupTestContext()
	SetAuthenticatedUser(c, leader)
	SetParams(c, "circulo_id", circulo.Circulo_ID, "item_id", itemID)
	s.DeleteScheduleItem(c)
	require.Equal(t, http.StatusOK, w.Code)

	c, w = SetupTestContext()
	SetAuthenticatedUser(c, leader)
	SetParams(c, "circulo_id", circulo.Circulo_ID, "item_id", itemID)
	s.DeleteScheduleItem(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
