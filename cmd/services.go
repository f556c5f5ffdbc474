// ABOUTME: Wires configuration, logging, session, API client, and cache for commands
// ABOUTME: Shared helpers for exit codes, JSON output, and signed-in checks

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/kabar-app/kabar/internal/client"
	"github.com/kabar-app/kabar/internal/config"
	"github.com/kabar-app/kabar/internal/logger"
	"github.com/kabar-app/kabar/internal/query"
	"github.com/kabar-app/kabar/internal/session"
	"github.com/kabar-app/kabar/internal/storage"
	"github.com/kabar-app/kabar/internal/validation"
	"github.com/spf13/cobra"
)

// Exit codes
const (
	exitOK         = 0
	exitValidation = 1
	exitError      = 2
)

// errNotSignedIn is reported by commands that need a session
var errNotSignedIn = errors.New("not signed in; run 'kabar login' first")

// services is everything a command can use
type services struct {
	cfg      *config.Config
	logger   *slog.Logger
	session  *session.Manager
	client   *client.Client
	cache    *query.Cache
	uploader *storage.Uploader
}

// newServices builds the object graph. The client reads its token from the
// session manager and ends the session on any 401.
func newServices(cfg *config.Config, log *slog.Logger) *services {
	store := session.NewFileStore(cfg.ConfigDir, log)
	mgr := session.NewManager(store, nil, session.WithLogger(log))
	c := client.New(cfg.APIURL,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithTokenSource(mgr),
		client.WithUnauthorizedHandler(mgr.HandleUnauthorized),
		client.WithLogger(log),
	)
	mgr.SetAuthenticator(c)

	svc := &services{
		cfg:     cfg,
		logger:  log,
		session: mgr,
		client:  c,
		cache:   query.New(query.WithStaleTime(cfg.QueryStaleTime), query.WithLogger(log)),
	}
	if cfg.Storage.Configured() {
		up, err := storage.New(cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Warn("Image uploads disabled", "error", err)
		} else {
			svc.uploader = up
		}
	}
	return svc
}

// commandFunc is the testable body of a non-interactive command
type commandFunc func(ctx context.Context, svc *services, w io.Writer, args []string) int

// runWithServices adapts a commandFunc to cobra, logging to stderr
func runWithServices(run commandFunc) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		cfg, err := loadConfig(ctx)
		if err != nil {
			fmt.Fprintf(os.Stdout, "Error: %v\n", err)
			os.Exit(exitError)
		}
		log := logger.Init(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stderr})

		exitCode := run(ctx, newServices(cfg, log), os.Stdout, args)
		if exitCode != exitOK {
			os.Exit(exitCode)
		}
	}
}

// requireUser restores the stored session and returns its user
func requireUser(ctx context.Context, svc *services) (*client.User, error) {
	if svc.session.Init(ctx) != session.Authenticated {
		return nil, errNotSignedIn
	}
	return svc.session.User(), nil
}

// fail prints err and picks the exit code: local validation failures
// are 1, everything else is 2.
func fail(w io.Writer, err error) int {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		fmt.Fprintf(w, "Invalid input: %v\n", verrs)
		return exitValidation
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		fmt.Fprintf(w, "Error: %s\n", client.Message(err))
		return exitError
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	return exitError
}

// writeJSON prints v as indented JSON
func writeJSON(w io.Writer, v any) int {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}

// parseID reads a positive numeric id argument
func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, validation.Errors{"id": fmt.Sprintf("id must be a positive number, got %q", arg)}
	}
	return id, nil
}
