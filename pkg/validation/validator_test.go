package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Passw0rd!", true},
		{"aB3$efgh", true},
		{"Sh0rt!", false},
		{"password1!", false},
		{"PASSWORD1!", false},
		{"Password!!", false},
		{"Password11", false},
		{"Passw0rd!?", false},
		{"Pass w0rd!", false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidPassword(tt.password))
		})
	}
}

type registration struct {
	Username string `json:"username" validate:"required,min=4"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
	Age      *int   `json:"age" validate:"omitempty,min=0"`
}

func TestStruct(t *testing.T) {
	t.Run("Valid_ShouldPass", func(t *testing.T) {
		err := Struct(registration{Username: "alice", Email: "alice@example.com", Password: "Passw0rd!"})

		assert.NoError(t, err)
	})

	t.Run("ShortUsername_ShouldUseJSONName", func(t *testing.T) {
		err := Struct(registration{Username: "al", Email: "alice@example.com", Password: "Passw0rd!"})

		assert.EqualError(t, err, "username must be at least 4 characters")
	})

	t.Run("BadEmail_ShouldFail", func(t *testing.T) {
		err := Struct(registration{Username: "alice", Email: "nope", Password: "Passw0rd!"})

		assert.EqualError(t, err, "email must be a valid email")
	})

	t.Run("WeakPassword_ShouldFail", func(t *testing.T) {
		err := Struct(registration{Username: "alice", Email: "alice@example.com", Password: "password"})

		assert.ErrorContains(t, err, "password must be at least 8 characters")
	})

	t.Run("NegativeAge_ShouldFail", func(t *testing.T) {
		age := -1
		err := Struct(registration{Username: "alice", Email: "alice@example.com", Password: "Passw0rd!", Age: &age})

		assert.EqualError(t, err, "age must be at least 0")
	})
}
