package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/m-zajac/ghanalyzer/internal/adapter/github"
	"github.com/m-zajac/ghanalyzer/internal/app"
	"github.com/m-zajac/ghanalyzer/internal/database"
	"github.com/m-zajac/ghanalyzer/internal/limiter"
	"github.com/m-zajac/ghanalyzer/internal/telemetry"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const serviceName = "ghanalyzer"

// cli holds state shared by all commands.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string
	token      string

	conf Config
	l    *logrus.Logger

	closers []func()
}

func newCLI(stdout, stderr io.Writer) *cli {
	return &cli{
		stdout: stdout,
		stderr: stderr,
	}
}

// close runs registered cleanups in reverse order.
func (c *cli) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func (c *cli) onClose(f func()) {
	c.closers = append(c.closers, f)
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "ghanalyzer",
		Short: "GitHub repository issues and contributors analyzer",
		Long: `ghanalyzer fetches issues and contributor stats of a GitHub repository
and reports aggregated statistics. It can also run as HTTP and gRPC server.

Configuration is read from GHANALYZER_* env variables and optional toml file.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return app.InvalidRequestError(err.Error())
	})

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to toml config file")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&c.token, "token", "", "github api token")

	root.AddCommand(
		c.issuesCommand(),
		c.contributorsCommand(),
		c.serveCommand(),
		c.queryCommand(),
	)

	return root
}

// setup loads config, applies global flags and prepares logger and tracing.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	conf, err := loadConfig(c.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("token") {
		conf.GithubAPIToken = c.token
	}
	if flags.Changed("log-level") {
		conf.LogLevel = c.logLevel
	}
	c.conf = conf

	level, err := logrus.ParseLevel(conf.LogLevel)
	if err != nil {
		return app.InvalidRequestError(fmt.Sprintf("invalid log level %q", conf.LogLevel))
	}
	c.l = logrus.New()
	c.l.Out = c.stderr
	c.l.Level = level

	shutdown, err := telemetry.Setup(cmd.Context(), serviceName, conf.OTLPEndpoint, c.l.WithField("component", "telemetry"))
	if err != nil {
		return fmt.Errorf("setting up telemetry: %w", err)
	}
	c.onClose(func() {
		if err := shutdown(context.Background()); err != nil {
			c.l.Errorf("telemetry shutdown: %v", err)
		}
	})

	return nil
}

// clientOptions selects how github data is persisted.
type clientOptions struct {
	// noStore disables persistent store.
	noStore bool
	// blocking fetches missing data synchronously, otherwise updates are scheduled in background.
	blocking bool
}

// githubClient builds the github client stack:
// rate limited http -> rest client -> persistent stale data -> memory cache.
func (c *cli) githubClient(opts clientOptions) (app.GithubClient, error) {
	httpClient := &http.Client{
		Timeout: c.conf.GithubAPITimeout.D(),
	}
	limitedHTTPClient := limiter.NewHTTPDoer(
		httpClient,
		c.conf.GithubAPIRateLimit,
		c.conf.GithubAPIBurst,
	)

	var client app.GithubClient = github.NewClient(
		limitedHTTPClient,
		c.conf.GithubAPIAddress,
		c.conf.GithubAPIToken,
	)

	if !opts.noStore {
		kvStore, err := database.NewKVStore(c.conf.storeConfig())
		if err != nil {
			return nil, fmt.Errorf("opening %s store: %w", c.conf.StoreDriver, err)
		}
		c.onClose(func() {
			if err := kvStore.Close(); err != nil {
				c.l.Errorf("closing store: %v", err)
			}
		})

		var staleOpts []github.StaleDataOption
		if opts.blocking {
			staleOpts = append(staleOpts, github.WithBlockingUpdates())
		}
		staleDataClient, err := github.NewClientWithStaleData(
			client,
			kvStore,
			c.conf.DataTTL.D(),
			c.conf.DataRefreshTTL.D(),
			c.l,
			staleOpts...,
		)
		if err != nil {
			return nil, fmt.Errorf("creating github stale data client: %w", err)
		}
		staleDataClient.RunScheduler()
		c.onClose(staleDataClient.Close)
		client = staleDataClient
	}

	cachedClient, err := github.NewCachedClient(
		client,
		c.conf.CacheSize,
		c.conf.CacheTTL.D(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating github client cache: %w", err)
	}

	return cachedClient, nil
}

// noArgs rejects positional arguments as invalid input.
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return app.InvalidRequestError(fmt.Sprintf("unexpected argument %q for %q", args[0], cmd.CommandPath()))
	}
	return nil
}

func requireRepo(repo string) error {
	if repo == "" {
		return app.InvalidRequestError("--repo is required")
	}
	_, err := app.ParseRepository(repo)
	return err
}
