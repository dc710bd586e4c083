package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	age := 31

	t.Run("ValidInput_ShouldCreateStandardUser", func(t *testing.T) {
		u, err := NewUser(" alice ", "alice@example.com", "$2a$hash", Profile{Name: "Alice", FamilyName: "Smith", Age: &age})

		require.NoError(t, err)
		assert.Equal(t, "alice", u.Username())
		assert.Equal(t, RoleStandard, u.Role())
		assert.False(t, u.IsAdmin())
		assert.Equal(t, &age, u.Profile().Age)
		assert.Zero(t, u.ID())
		assert.False(t, u.CreatedAt().IsZero())
	})

	t.Run("MissingFields_ShouldFail", func(t *testing.T) {
		_, err := NewUser("", "a@b.c", "hash", Profile{})
		assert.ErrorIs(t, err, ErrEmptyUsername)

		_, err = NewUser("alice", "  ", "hash", Profile{})
		assert.ErrorIs(t, err, ErrEmptyEmail)

		_, err = NewUser("alice", "a@b.c", "", Profile{})
		assert.ErrorIs(t, err, ErrEmptyPassword)
	})

	t.Run("NegativeAge_ShouldFail", func(t *testing.T) {
		negative := -1
		_, err := NewUser("alice", "a@b.c", "hash", Profile{Age: &negative})
		assert.ErrorIs(t, err, ErrInvalidAge)
	})
}

func TestUserMutations(t *testing.T) {
	u := Reconstitute(7, "bob", "bob@example.com", "old", Profile{Name: "Bob"}, RoleStandard, time.Now())

	require.NoError(t, u.ChangePassword("new"))
	assert.Equal(t, "new", u.PasswordHash())
	assert.ErrorIs(t, u.ChangePassword(""), ErrEmptyPassword)

	u.PromoteToAdmin()
	assert.True(t, u.IsAdmin())
	assert.Equal(t, int64(7), u.ID())
}
