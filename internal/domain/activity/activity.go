// Package activity describes what users have done: votes cast, comments
// written and recipes shared.
package activity

import "time"

// Log groups activity records, either for one user or for everyone
type Log struct {
	Likes    []Like
	Comments []Comment
	Recipes  []Recipe
}

// Like is a recorded vote
type Like struct {
	UserID   int64
	RecipeID int64
	IsLike   bool
}

// Comment is a written comment
type Comment struct {
	UserID    int64
	RecipeID  int64
	Text      string
	CreatedAt time.Time
}

// Recipe is a shared recipe
type Recipe struct {
	UserID int64
	ID     int64
	Name   string
}
