package models

import "time"

type PushToken struct {
	Push_Token      string    `json:"pushToken"`
	Platform        string    `json:"platform"`
	Datetime_Update time.Time `json:"datetimeUpdate"`
}

type PushTokenRequest struct {
	PushToken string `json:"pushToken" binding:"required"`
	Platform  string `json:"platform" binding:"required,oneof=ios android"`
}
