package entities

import "time"

type Role struct {
	ID   uint64 `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type User struct {
	ID         uint64    `json:"id"`
	FullName   string    `json:"full_name"`
	NationalID *string   `json:"national_id,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	Email      *string   `json:"email,omitempty"`
	Username   string    `json:"username"`
	Password   string    `json:"-"`
	RoleID     uint64    `json:"role_id"`
	RoleCode   string    `json:"role_code"`
	RoleName   string    `json:"role_name"`
	CreatedAt  time.Time `json:"created_at"`
}
