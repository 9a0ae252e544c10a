package models

import (
	"maps"
	"slices"
	"time"
)

type UserRole string

const (
	RoleUser   UserRole = "USER"
	RoleEditor UserRole = "EDITOR"
)

// DayCompletion is the per-day record kept in User.History.
type DayCompletion struct {
	Morning   bool `json:"morning"`
	Afternoon bool `json:"afternoon"`
	Night     bool `json:"night"`
}

type User struct {
	User_ID             string                   `json:"id"`
	Name                string                   `json:"name"`
	Email               string                   `json:"email"`
	City                string                   `json:"city"`
	Avatar_Url          string                   `json:"avatarUrl"`
	Graces              int                      `json:"graces"`
	Total_Prayers       int                      `json:"totalPrayers"`
	Streak              int                      `json:"streak"`
	Level               SpiritualLevel           `json:"level"`
	Favorite_Prayer_IDs []string                 `json:"favoritePrayerIds"`
	Joined_Circulo_IDs  []string                 `json:"joinedCirculoIds"`
	Role                UserRole                 `json:"role"`
	Schedule            []PrayerSchedule         `json:"schedule"`
	Schedule_Date       string                   `json:"scheduleDate,omitempty"`
	History             map[string]DayCompletion `json:"history"`
	Datetime_Create     time.Time                `json:"datetimeCreate"`
}

type UserSignup struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	City       string `json:"city"`
	Avatar_Url string `json:"avatarUrl"`
}

type Login struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (u *User) IsEditor() bool {
	return u.Role == RoleEditor
}

func (u *User) HasJoined(circuloID string) bool {
	return slices.Contains(u.Joined_Circulo_IDs, circuloID)
}

func (u *User) Clone() *User {
	out := *u
	out.Favorite_Prayer_IDs = slices.Clone(u.Favorite_Prayer_IDs)
	out.Joined_Circulo_IDs = slices.Clone(u.Joined_Circulo_IDs)
	out.Schedule = slices.Clone(u.Schedule)
	out.History = maps.Clone(u.History)
	return &out
}

// Member is the public projection returned by circle member listings.
type Member struct {
	User_ID      string         `json:"id"`
	Name         string         `json:"name"`
	Avatar_Url   string         `json:"avatarUrl"`
	City         string         `json:"city"`
	Level        SpiritualLevel `json:"level"`
	Is_Moderator bool           `json:"isModerator"`
	Is_Leader    bool           `json:"isLeader"`
}
