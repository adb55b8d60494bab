package models

import (
	"errors"
	"strings"
	"time"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleManager || r == RoleAdmin
}

// CanModerateBooks covers verify/reject and editing other donors' books.
func (r Role) CanModerateBooks() bool { return r == RoleManager || r == RoleAdmin }

func (r Role) IsAdmin() bool { return r == RoleAdmin }

type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func (a Address) Complete() bool {
	return a.Line1 != "" && a.City != "" && a.State != "" && a.PostalCode != ""
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Institution  string    `json:"institution,omitempty"`
	RewardPoints int       `json:"reward_points"`
	Address      Address   `json:"address"`
	Phone        string    `json:"phone,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return errors.New("name is required")
	}
	if !strings.Contains(u.Email, "@") {
		return errors.New("invalid email")
	}
	if u.Role == "" {
		u.Role = RoleStudent
	}
	if !u.Role.Valid() {
		return errors.New("invalid role")
	}
	return nil
}

// CanPay gates checkout-session creation: the gateway needs a full
// postal address and a phone number on file.
func (u *User) CanPay() bool {
	return u.Address.Complete() && u.Phone != ""
}
