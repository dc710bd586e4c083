// Package pantry models the ingredients a user keeps at home
package pantry

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the calendar date format of expiration dates
const DateLayout = "2006-01-02"

var (
	ErrEmptyName             = errors.New("ingredient name is required")
	ErrInvalidExpirationDate = errors.New("expiration date must be formatted as YYYY-MM-DD")
)

// Ingredient is a pantry entry owned by one user
type Ingredient struct {
	ID             int64
	UserID         int64
	Name           string
	ExpirationDate *time.Time
}

// NewIngredient creates a pantry entry. expiration may be empty, a calendar
// date or an RFC 3339 timestamp.
func NewIngredient(userID int64, name, expiration string) (*Ingredient, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}

	ing := &Ingredient{UserID: userID, Name: name}
	if expiration = strings.TrimSpace(expiration); expiration != "" {
		date, err := ParseDate(expiration)
		if err != nil {
			return nil, err
		}
		ing.ExpirationDate = &date
	}
	return ing, nil
}

// ParseDate parses an expiration date
func ParseDate(value string) (time.Time, error) {
	for _, layout := range []string{DateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidExpirationDate
}

// ExpiresBefore reports whether the ingredient has an expiration date
// strictly before t
func (i Ingredient) ExpiresBefore(t time.Time) bool {
	return i.ExpirationDate != nil && i.ExpirationDate.Before(t)
}

// AnyExpiresBefore reports whether any ingredient expires before t
func AnyExpiresBefore(items []Ingredient, t time.Time) bool {
	for _, item := range items {
		if item.ExpiresBefore(t) {
			return true
		}
	}
	return false
}

// Names returns the set of lowercased ingredient names
func Names(items []Ingredient) map[string]struct{} {
	names := make(map[string]struct{}, len(items))
	for _, item := range items {
		names[strings.ToLower(item.Name)] = struct{}{}
	}
	return names
}
