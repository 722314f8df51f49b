package models

import "time"

type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleNormalAdmin Role = "NORMAL_ADMIN"
	RoleUser        Role = "USER"
)

// IsAdmin couvre le super admin et les admins délégués.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleNormalAdmin
}

type User struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	PhoneNumber string          `json:"phoneNumber,omitempty"`
	Password    string          `json:"-"`
	Role        Role            `json:"role"`
	CreatedAt   time.Time       `json:"createdAt"`
	Address     *Address        `json:"address,omitempty"`
	OrderItems  []OrderItemView `json:"orderItemList,omitempty"`
}

type PasswordResetToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	Used      bool
}

// Expired indique si le jeton n'est plus utilisable à l'instant now.
func (t PasswordResetToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
