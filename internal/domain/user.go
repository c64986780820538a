package domain

import (
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"    // may edit shifts, exceptions and the policy
	RoleOperator Role = "operator" // kiosk account, may record attempts
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}
