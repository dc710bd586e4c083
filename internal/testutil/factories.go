package testutil

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/zerowastechef/server/internal/domain/recipe"
	"github.com/zerowastechef/server/internal/domain/user"
	"github.com/zerowastechef/server/internal/ports/inbound"
)

// ValidPassword satisfies the password strength rule
const ValidPassword = "Str0ng!Pass"

// Factory generates test data from a seeded faker
type Factory struct {
	faker *gofakeit.Faker
}

// NewFactory creates a factory. A zero seed picks a time based one.
func NewFactory(seed int64) *Factory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{faker: gofakeit.New(seed)}
}

// RegisterCommand returns a registration request that passes validation
func (f *Factory) RegisterCommand() inbound.RegisterCommand {
	age := f.faker.Number(18, 80)
	return inbound.RegisterCommand{
		Username:    f.Username(),
		Email:       f.Email(),
		Password:    ValidPassword,
		Name:        f.faker.FirstName(),
		FamilyName:  f.faker.LastName(),
		PhoneNumber: f.faker.Phone(),
		Profession:  f.faker.JobTitle(),
		Age:         &age,
	}
}

// Username returns a unique username of at least four characters
func (f *Factory) Username() string {
	return fmt.Sprintf("%s_%d", f.faker.Username(), f.faker.Number(1000, 9999))
}

// Email returns a unique email address
func (f *Factory) Email() string {
	return fmt.Sprintf("%d.%s", f.faker.Number(1000, 9999), f.faker.Email())
}

// User builds an unsaved standard user
func (f *Factory) User() *user.User {
	u, err := user.NewUser(f.Username(), f.Email(), "$2a$04$hash", user.Profile{
		Name:       f.faker.FirstName(),
		FamilyName: f.faker.LastName(),
	})
	if err != nil {
		panic(err)
	}
	return u
}

// Details returns recipe fields with the given comma separated ingredients
func (f *Factory) Details(ingredients string) recipe.Details {
	prep := f.faker.Number(5, 30)
	cook := f.faker.Number(5, 60)
	return recipe.Details{
		Name:         f.faker.Dessert(),
		Category:     "Dessert",
		Ingredients:  ingredients,
		Instructions: f.faker.Sentence(8),
		DietaryInfo:  "Vegetarian",
		PrepTime:     &prep,
		CookTime:     &cook,
	}
}

// Recipe builds an unsaved recipe owned by userID
func (f *Factory) Recipe(userID int64, ingredients string) *recipe.Recipe {
	r, err := recipe.NewRecipe(userID, f.Details(ingredients))
	if err != nil {
		panic(err)
	}
	return r
}
