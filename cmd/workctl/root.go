package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/work-near-me/client/internal/config"
	"github.com/work-near-me/client/internal/logger"
	"github.com/work-near-me/client/internal/session"
	"github.com/work-near-me/client/internal/store"
	"github.com/work-near-me/client/pkg/api"
)

// app carries the wired-up services every command works against.
type app struct {
	cfg     *config.Config
	store   store.Store
	client  *api.Client
	session *session.Service
	log     zerolog.Logger
	closers []func() error
}

func (a *app) close() {
	for _, fn := range a.closers {
		if err := fn(); err != nil {
			a.log.Warn().Err(err).Msg("close failed")
		}
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	a := &app{}

	root := &cobra.Command{
		Use:           "workctl",
		Short:         "Client for the work-near-me job marketplace",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env is fine; real environment variables still apply.
			_ = godotenv.Load()
			logger.Init(verbose)
			return a.init(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newNearbyCmd(a),
		newJobsCmd(a),
		newRateCmd(a),
	)
	return root
}

// init builds the store, API client, and session service, and restores any
// persisted session.
func (a *app) init(ctx context.Context) error {
	a.cfg = config.Load()
	a.log = logger.Get()

	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	a.store = st

	a.client = api.New(a.cfg.APIBaseURL, a.store, a.log)
	a.session = session.New(a.client, a.store, a.log)

	if err := a.session.Restore(ctx); err != nil {
		a.log.Warn().Err(err).Msg("could not restore session")
	}
	return nil
}

func (a *app) openStore(ctx context.Context) (store.Store, error) {
	switch a.cfg.SessionStore {
	case config.StoreMemory:
		return store.NewMemory(), nil
	case config.StoreFile:
		return store.NewFile(a.cfg.SessionFile), nil
	case config.StoreRedis:
		s, err := store.NewRedis(ctx, a.cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("open redis session store: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	case config.StorePostgres:
		s, err := store.NewPostgres(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres session store: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	default:
		return nil, fmt.Errorf("unknown SESSION_STORE %q", a.cfg.SessionStore)
	}
}

// requireAuth guards commands that need a logged-in user.
func (a *app) requireAuth() error {
	if !a.session.IsAuthenticated() {
		return fmt.Errorf("not logged in, run `workctl login` first")
	}
	return nil
}
