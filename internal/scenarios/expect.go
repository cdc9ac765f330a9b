package scenarios

import (
	"fmt"

	"github.com/bookshelf-qa/library-e2e/internal/client"
	"github.com/bookshelf-qa/library-e2e/internal/schema"
)

// ExpectationError is a failed assertion inside a case.
type ExpectationError struct {
	Step     string
	Expected string
	Actual   string
	Err      error
}

func (e *ExpectationError) Error() string {
	msg := fmt.Sprintf("%s: expected %s, got %s", e.Step, e.Expected, e.Actual)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExpectationError) Unwrap() error {
	return e.Err
}

func expectf(step string, ok bool, expected string, actual any) error {
	if ok {
		return nil
	}
	return &ExpectationError{Step: step, Expected: expected, Actual: fmt.Sprint(actual)}
}

func expectStatus(step string, resp *client.Response, status int) error {
	if resp.StatusCode == status {
		return nil
	}
	return &ExpectationError{
		Step:     step,
		Expected: fmt.Sprintf("status %d", status),
		Actual:   resp.String(),
	}
}

// expectRejection checks a {mensagem} failure body.
func expectRejection(env *Env, step string, resp *client.Response, status int, message string) error {
	if err := expectStatus(step, resp, status); err != nil {
		return err
	}
	if err := expectContract(env, step, schema.KindMessage, resp); err != nil {
		return err
	}
	return expectf(step, resp.Message() == message, fmt.Sprintf("mensagem %q", message), fmt.Sprintf("%q", resp.Message()))
}

func expectContract(env *Env, step string, kind schema.Kind, resp *client.Response) error {
	if err := env.Schemas.Check(kind, resp.Body); err != nil {
		return &ExpectationError{
			Step:     step,
			Expected: string(kind) + " body",
			Actual:   string(resp.Body),
			Err:      err,
		}
	}
	return nil
}
