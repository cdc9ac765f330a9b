package scenarios

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bookshelf-qa/library-e2e/internal/schema"
)

func statisticsCases() []Case {
	return []Case{
		{ID: "CT-API-005", Suite: SuiteStatistics, Title: "Get library statistics", Run: libraryStatistics},
	}
}

// libraryStatistics checks shape and the per-type breakdown. Counter values
// are only read: other suites may be changing them concurrently.
func libraryStatistics(ctx context.Context, env *Env) error {
	stats, resp, err := env.API.Statistics.Get(ctx)
	if err != nil {
		return err
	}
	if err := expectStatus("get statistics", resp, http.StatusOK); err != nil {
		return err
	}
	if err := expectContract(env, "get statistics", schema.KindStatistics, resp); err != nil {
		return err
	}
	return expectf("users by type add up",
		stats.Consistent(),
		fmt.Sprintf("alunos+funcionarios+admins == totalUsuarios (%d)", stats.TotalUsers),
		stats.UsersByType.Sum())
}
