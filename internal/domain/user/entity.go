// Package user defines the identity domain entity
package user

import (
	"strings"
	"time"
)

// User represents a registered identity
type User struct {
	id           int64
	username     string
	email        string
	passwordHash string
	name         string
	familyName   string
	phoneNumber  string
	profession   string
	age          *int
	role         Role
	createdAt    time.Time
}

// Role represents the stored role flag of a user
type Role string

const (
	RoleStandard Role = "user"
	RoleAdmin    Role = "admin"
)

// Profile holds the personal details supplied at registration
type Profile struct {
	Name        string
	FamilyName  string
	PhoneNumber string
	Profession  string
	Age         *int
}

// NewUser creates a standard user from an already hashed password
func NewUser(username, email, passwordHash string, profile Profile) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" {
		return nil, ErrEmptyUsername
	}
	if email == "" {
		return nil, ErrEmptyEmail
	}
	if passwordHash == "" {
		return nil, ErrEmptyPassword
	}
	if profile.Age != nil && *profile.Age < 0 {
		return nil, ErrInvalidAge
	}

	return &User{
		username:     username,
		email:        email,
		passwordHash: passwordHash,
		name:         profile.Name,
		familyName:   profile.FamilyName,
		phoneNumber:  profile.PhoneNumber,
		profession:   profile.Profession,
		age:          profile.Age,
		role:         RoleStandard,
		createdAt:    time.Now().UTC(),
	}, nil
}

// Reconstitute rebuilds a user from persisted state
func Reconstitute(id int64, username, email, passwordHash string, profile Profile, role Role, createdAt time.Time) *User {
	return &User{
		id:           id,
		username:     username,
		email:        email,
		passwordHash: passwordHash,
		name:         profile.Name,
		familyName:   profile.FamilyName,
		phoneNumber:  profile.PhoneNumber,
		profession:   profile.Profession,
		age:          profile.Age,
		role:         role,
		createdAt:    createdAt,
	}
}

// ID returns the user's ID
func (u *User) ID() int64 { return u.id }

// Username returns the user's username
func (u *User) Username() string { return u.username }

// Email returns the user's email
func (u *User) Email() string { return u.email }

// PasswordHash returns the stored password hash
func (u *User) PasswordHash() string { return u.passwordHash }

// Role returns the stored role
func (u *User) Role() Role { return u.role }

// CreatedAt returns the registration time
func (u *User) CreatedAt() time.Time { return u.createdAt }

// Profile returns the user's personal details
func (u *User) Profile() Profile {
	return Profile{
		Name:        u.name,
		FamilyName:  u.familyName,
		PhoneNumber: u.phoneNumber,
		Profession:  u.profession,
		Age:         u.age,
	}
}

// IsAdmin reports whether the stored role is administrator
func (u *User) IsAdmin() bool {
	return u.role == RoleAdmin
}

// AssignID sets the identifier generated by storage
func (u *User) AssignID(id int64) {
	u.id = id
}

// ChangePassword replaces the password hash
func (u *User) ChangePassword(passwordHash string) error {
	if passwordHash == "" {
		return ErrEmptyPassword
	}
	u.passwordHash = passwordHash
	return nil
}

// PromoteToAdmin grants the administrator role
func (u *User) PromoteToAdmin() {
	u.role = RoleAdmin
}
