//go:build integration

package integration

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/require"

	"athenaq/internal/config"
	"athenaq/internal/query"
)

// ---------------------------------------------------------------------------
// Path helpers
// ---------------------------------------------------------------------------

// projectRoot returns the absolute path to the repository root.
// Derived from this file's location: test/integration/helpers_test.go → up 2 dirs.
func projectRoot() string {
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(thisFile), "..", "..")
}

func dotEnvPath() string {
	return filepath.Join(projectRoot(), ".env")
}

// ---------------------------------------------------------------------------
// Prerequisites
// ---------------------------------------------------------------------------

// athenaEnv is a live session against the account configured in .env.
type athenaEnv struct {
	Config  *config.Config
	AWS     aws.Config
	Session *query.Session
}

func checkPrerequisites(t *testing.T) {
	t.Helper()

	// Load .env and check the Athena target
	require.NoError(t, config.LoadDotEnv(dotEnvPath()))
	for _, envVar := range []string{"AWS_REGION", "ATHENA_OUTPUT_LOCATION", "ATHENA_DATABASE"} {
		if os.Getenv(envVar) == "" {
			t.Skipf("required env var %s not set (check .env)", envVar)
		}
	}
}

// setupAthena builds a session with a bounded, failure-aware poll policy so a
// broken account fails the test instead of hanging it.
func setupAthena(t *testing.T) *athenaEnv {
	t.Helper()
	checkPrerequisites(t)

	cfg, err := config.LoadFromEnv()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	awsCfg, err := query.LoadAWSConfig(ctx, cfg)
	require.NoError(t, err)

	opts := query.OptionsFromConfig(cfg)
	opts.Poll = query.PollPolicy{
		InitialDelay:  time.Second,
		RetryDelay:    2 * time.Second,
		MaxAttempts:   90,
		DetectFailure: true,
	}
	opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	return &athenaEnv{
		Config:  cfg,
		AWS:     awsCfg,
		Session: query.NewSession(query.NewClient(awsCfg), opts),
	}
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	t.Cleanup(cancel)
	return ctx
}
