package model

import "time"

// Faculty is an instructor account that owns courses and a weekly schedule.
type Faculty struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterRequest is the payload for creating a faculty account.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Name     string `json:"name" binding:"required,min=2,max=255"`
}

// LoginRequest is the payload for faculty authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=1,max=128"`
}

// AuthResponse is returned after a successful login or registration.
type AuthResponse struct {
	Token   string  `json:"token"`
	Faculty Faculty `json:"faculty"`
}
