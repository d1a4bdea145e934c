package preflight

import (
	"context"

	"expertstats/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check. token is the effective session
// token (config, environment, or stored login); the API check is skipped
// when it is empty.
func RunAll(ctx context.Context, cfg *config.Config, token string) []Result {
	if cfg == nil {
		return nil
	}

	results := DirectoryChecks(cfg)
	session := CheckSession(token)
	results = append(results, session)
	if session.Passed {
		results = append(results, CheckAPI(ctx, cfg.API.BaseURL, token))
	}
	return results
}

// DirectoryChecks verifies the data, log, and cache directories.
func DirectoryChecks(cfg *config.Config) []Result {
	return []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir),
	}
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, result)
		}
	}
	return failed
}
