package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"virtual-env-server/internal/browser"
	"virtual-env-server/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type rootOptions struct {
	cfg       config.Config
	dir       string
	noBrowser bool
	logLevel  string
}

func newRootCommand() *cobra.Command {
	opts := rootOptions{cfg: config.Default()}

	cmd := &cobra.Command{
		Use:           "web [OPTIONS]",
		Short:         "Serve the virtual environment front-end and open it in a browser",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := interruptContext(cmd.Context())
			defer stop()
			return runServe(ctx, cmd, opts)
		},
	}

	installServeFlags(cmd.Flags(), &opts)
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.AddCommand(newRequestsCommand())

	return cmd
}

// interruptContext is cancelled by the first SIGINT or SIGTERM. The
// handlers are released at that point, so a second Ctrl+C during the
// graceful stop kills the process.
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ctx, stop
}

func installServeFlags(flags *pflag.FlagSet, opts *rootOptions) {
	flags.IntVarP(&opts.cfg.Port, "port", "p", opts.cfg.Port, "HTTP server port")
	flags.StringVar(&opts.cfg.Host, "host", opts.cfg.Host, "Interface to bind, empty for all interfaces")
	flags.StringVar(&opts.dir, "dir", "", "Directory to serve (default: the directory containing this program; under \"go run\" that is a temporary build directory, so pass --dir)")
	flags.StringVar(&opts.cfg.Landing, "landing", opts.cfg.Landing, "File served for requests to /")
	flags.BoolVar(&opts.noBrowser, "no-browser", false, "Do not open a browser on startup")
	flags.StringVar(&opts.cfg.AccessDB, "access-db", "", "Record requests in this SQLite database")
	flags.DurationVar(&opts.cfg.ShutdownTimeout, "shutdown-timeout", opts.cfg.ShutdownTimeout, "Time allowed for in-flight requests on shutdown")
}

func newLogger(level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger, nil
}

func runServe(ctx context.Context, cmd *cobra.Command, opts rootOptions) error {
	logger, err := newLogger(opts.logLevel)
	if err != nil {
		return err
	}

	cfg := opts.cfg
	cfg.OpenBrowser = !opts.noBrowser
	if err := cfg.Validate(); err != nil {
		return err
	}

	// The database path is relative to where the user ran the command,
	// not to the served directory.
	if cfg.AccessDB != "" {
		if cfg.AccessDB, err = filepath.Abs(cfg.AccessDB); err != nil {
			return fmt.Errorf("failed to resolve access db path: %w", err)
		}
	}

	dir := opts.dir
	if dir == "" {
		if dir, err = executableDir(); err != nil {
			return err
		}
	}
	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("failed to change directory to %s: %w", dir, err)
	}
	cfg.Root = "."
	logger.WithField("dir", dir).Debug("serving directory")

	var launcher browser.Launcher = browser.System{}
	if !cfg.OpenBrowser {
		launcher = browser.Disabled
	}

	ws := newWebServer(cfg, cmd.OutOrStdout(), logger, launcher)
	if err := ws.Start(ctx); err != nil {
		return err
	}
	return ws.Wait(ctx)
}

// executableDir returns the directory holding the running binary
func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}
