package scenarios

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bookshelf-qa/library-e2e/internal/schema"
)

func registrationCases() []Case {
	return []Case{
		{ID: "CT-API-004", Suite: SuiteRegistration, Title: "Register a random user", Run: registerUser},
	}
}

func registerUser(ctx context.Context, env *Env) error {
	reg, err := env.Users.RegisterTestUser(ctx)
	if err != nil {
		return err
	}
	if !reg.Response.IsSuccess() {
		return &ExpectationError{
			Step:     "register user " + reg.Email,
			Expected: "2xx",
			Actual:   reg.Response.String(),
		}
	}
	if err := expectContract(env, "register user", schema.KindRegistered, reg.Response); err != nil {
		return err
	}
	env.Logger.Info("registered test user", slog.Int("user_id", reg.UserID), slog.String("email", reg.Email))
	return expectf("assigned user id", reg.Registered(), "id > 0", fmt.Sprintf("%d (status %d)", reg.UserID, reg.Response.StatusCode))
}
