package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/spf13/cobra"

	"athenaq/internal/config"
	"athenaq/internal/query"
	"athenaq/internal/storage"
	"athenaq/internal/testutil"
)

// testEnv is a root command wired to mocks, with captured output.
type testEnv struct {
	cmd    *cobra.Command
	api    *testutil.MockAthenaAPI
	store  *testutil.MockObjectStore
	stdout *bytes.Buffer
	stderr *bytes.Buffer

	awsCfg      *config.Config
	storeScheme storage.Scheme
}

// newTestEnv isolates HOME and the Athena environment so no real config is
// loaded, and makes polling immediate.
func newTestEnv(t *testing.T, api *testutil.MockAthenaAPI) *testEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		"ATHENA_DATABASE", "ATHENA_OUTPUT_LOCATION", "ATHENA_WORKGROUP", "ATHENA_CATALOG",
		"AWS_REGION", "ATHENAQ_LOG_LEVEL", "ATHENAQ_FORMAT", "ATHENA_PAGE_SIZE",
		"ATHENA_POLL_MAX_ATTEMPTS", "ATHENA_POLL_DETECT_FAILURE",
		"S3_KEY_ID", "S3_SECRET", "S3_ENDPOINT",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("ATHENA_POLL_INITIAL_DELAY", "0s")
	t.Setenv("ATHENA_POLL_RETRY_DELAY", "1ms")

	env := &testEnv{
		api:    api,
		store:  &testutil.MockObjectStore{},
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	d := &deps{
		stdout: env.stdout,
		stderr: env.stderr,
		loadAWS: func(_ context.Context, cfg *config.Config) (aws.Config, error) {
			env.awsCfg = cfg
			return aws.Config{Region: cfg.Region}, nil
		},
		newClient: func(aws.Config) query.API { return api },
		openStore: func(_ context.Context, scheme storage.Scheme, _ aws.Config, _ *config.StorageConfig) (storage.ObjectStore, error) {
			env.storeScheme = scheme
			return env.store, nil
		},
		isTerminal: func() bool { return false },
	}
	env.cmd = newRootCmd(d)
	return env
}

func (e *testEnv) run(args ...string) error {
	e.cmd.SetArgs(args)
	return e.cmd.ExecuteContext(context.Background())
}
