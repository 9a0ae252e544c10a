package models

import "time"

// PasswordResetCode is the pending reset for one user. Codes live only in
// memory; a restart invalidates them.
type PasswordResetCode struct {
	User_ID    string    `json:"userId"`
	Code       string    `json:"-"`
	Expires_At time.Time `json:"expiresAt"`
	Attempts   int       `json:"attempts"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyResetCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}
