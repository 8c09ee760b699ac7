// Package cli implements the athenaq command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"athenaq/internal/config"
	"athenaq/internal/format"
	"athenaq/internal/query"
	"athenaq/internal/storage"
)

var (
	version = "dev"
	commit  = "none"
)

// deps is the outside world the commands talk to. Tests swap it out.
type deps struct {
	stdout io.Writer
	stderr io.Writer

	loadAWS    func(ctx context.Context, cfg *config.Config) (aws.Config, error)
	newClient  func(awsCfg aws.Config) query.API
	openStore  func(ctx context.Context, scheme storage.Scheme, awsCfg aws.Config, cfg *config.StorageConfig) (storage.ObjectStore, error)
	isTerminal func() bool
}

func defaultDeps() *deps {
	return &deps{
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		loadAWS:   query.LoadAWSConfig,
		newClient: func(awsCfg aws.Config) query.API { return query.NewClient(awsCfg) },
		openStore: storage.Open,
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stderr.Fd()))
		},
	}
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	d := defaultDeps()
	rootCmd := newRootCmd(d)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(d.stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// flagValues holds everything the persistent flags bind to.
type flagValues struct {
	database       string
	outputLocation string
	workGroup      string
	catalog        string
	region         string
	format         string
	profile        string
	logLevel       string
	maxAttempts    int
	detectFailure  bool
	noSpinner      bool
}

// app is the state resolved once per invocation by PersistentPreRunE.
type app struct {
	deps   *deps
	flags  flagValues
	cfg    *config.Config
	format format.Name
	logger *slog.Logger
}

func newRootCmd(d *deps) *cobra.Command {
	a := &app{deps: d}
	var (
		header  bool
		saveURI string
		presign string
	)

	rootCmd := &cobra.Command{
		Use:   "athenaq QUERY",
		Short: "Run a query on AWS Athena and print the results",
		Long: "Submits QUERY to AWS Athena, waits until its results are readable and\n" +
			"prints them to stdout, tab-separated by default.",
		Example: `  athenaq "SELECT * FROM access_logs LIMIT 10" --header > results.tsv
  athenaq -d weblogs --format table "SELECT status, count(*) FROM access_logs GROUP BY 1"
  athenaq "SELECT * FROM t" --save s3://exports/daily/t.tsv --presign 1h`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.resolve(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runQuery(cmd.Context(), args[0], queryOptions{
				header:  header,
				saveURI: saveURI,
				presign: presign,
			})
		},
	}
	rootCmd.SetOut(d.stdout)
	rootCmd.SetErr(d.stderr)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&a.flags.database, "database", "d", config.DefaultDatabase, "Database to run queries against")
	pf.StringVar(&a.flags.outputLocation, "output-location", config.DefaultOutputLocation, "S3 location where Athena stages results")
	pf.StringVar(&a.flags.workGroup, "workgroup", "", "Athena workgroup")
	pf.StringVar(&a.flags.catalog, "catalog", "", "Data catalog")
	pf.StringVar(&a.flags.region, "region", "", "AWS region (defaults to the SDK chain)")
	pf.StringVar(&a.flags.format, "format", string(format.TSV), "Output format (tsv, table, json)")
	pf.StringVarP(&a.flags.profile, "profile", "p", "", "Config profile to use")
	pf.StringVar(&a.flags.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	pf.IntVar(&a.flags.maxAttempts, "max-attempts", 0, "Give up after this many readiness checks (0 = never)")
	pf.BoolVar(&a.flags.detectFailure, "detect-failure", false, "Stop waiting when the query fails or is cancelled")
	pf.BoolVar(&a.flags.noSpinner, "no-spinner", false, "Do not show a progress spinner while waiting")

	rootCmd.Flags().BoolVar(&header, "header", false, "Output includes header")
	rootCmd.Flags().StringVar(&saveURI, "save", "", "Also upload the results to s3://, gs:// or az:// URI")
	rootCmd.Flags().StringVar(&presign, "presign", "", "Print a presigned URL for the saved object, valid for this duration (e.g. 1h)")

	rootCmd.AddCommand(newRepairCmd(a))
	rootCmd.AddCommand(newVersionCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// resolve applies precedence flag > env > profile > default and sets up
// logging.
func (a *app) resolve(flags *pflag.FlagSet) error {
	userCfg, err := LoadUserConfig()
	if err != nil {
		// Config file is optional
		userCfg = emptyUserConfig()
	}
	p, err := userCfg.ActiveProfile(a.flags.profile)
	if err != nil {
		return err
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pick := func(name, env string, flagVal string, profileVal string, target *string) {
		switch {
		case flags.Changed(name):
			*target = flagVal
		case os.Getenv(env) != "":
			// already loaded from the environment
		case profileVal != "":
			*target = profileVal
		}
	}
	pick("database", "ATHENA_DATABASE", a.flags.database, p.Database, &cfg.Database)
	pick("output-location", "ATHENA_OUTPUT_LOCATION", a.flags.outputLocation, p.OutputLocation, &cfg.OutputLocation)
	pick("workgroup", "ATHENA_WORKGROUP", a.flags.workGroup, p.WorkGroup, &cfg.WorkGroup)
	pick("catalog", "ATHENA_CATALOG", a.flags.catalog, p.Catalog, &cfg.Catalog)
	pick("region", "AWS_REGION", a.flags.region, p.Region, &cfg.Region)
	pick("log-level", "ATHENAQ_LOG_LEVEL", a.flags.logLevel, "", &cfg.LogLevel)

	formatName := a.flags.format
	if !flags.Changed("format") {
		if v := os.Getenv("ATHENAQ_FORMAT"); v != "" {
			formatName = v
		} else if p.Format != "" {
			formatName = p.Format
		}
	}
	if a.format, err = format.Parse(formatName); err != nil {
		return err
	}

	if flags.Changed("max-attempts") {
		if a.flags.maxAttempts < 0 {
			return fmt.Errorf("--max-attempts must not be negative")
		}
		cfg.Poll.MaxAttempts = a.flags.maxAttempts
	}
	if flags.Changed("detect-failure") {
		cfg.Poll.DetectFailure = a.flags.detectFailure
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(a.deps.stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	for _, w := range cfg.Warnings {
		a.logger.Info("config", "warning", w)
	}
	return nil
}

// session builds a query session from the resolved configuration.
func (a *app) session(ctx context.Context) (*query.Session, aws.Config, error) {
	awsCfg, err := a.deps.loadAWS(ctx, a.cfg)
	if err != nil {
		return nil, aws.Config{}, err
	}
	opts := query.OptionsFromConfig(a.cfg)
	opts.Logger = a.logger
	return query.NewSession(a.deps.newClient(awsCfg), opts), awsCfg, nil
}

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "completion [bash|zsh|fish|powershell]",
		Short:             "Generate shell completion scripts",
		Args:              cobra.ExactArgs(1),
		PersistentPreRunE: skipResolve,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
	return cmd
}
