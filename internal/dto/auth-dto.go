package dto

import "time"

type LoginDTO struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type AuthResponseDTO struct {
	AccessToken string         `json:"access_token"`
	ExpiresAt   time.Time      `json:"expires_at"`
	User        UserProfileDTO `json:"user"`
}

type UserProfileDTO struct {
	ID       uint64 `json:"id"`
	FullName string `json:"full_name"`
	Username string `json:"username"`
	RoleCode string `json:"role_code"`
	RoleName string `json:"role_name"`
}
