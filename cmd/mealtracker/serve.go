package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	adapthttp "mealtracker/internal/adapter/http"
	"mealtracker/internal/app"
	"mealtracker/internal/metrics"

	"github.com/coreos/go-oidc/v3/oidc"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

const sessionPurgeInterval = time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web app and JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	reg := metrics.SetupPrometheus()
	m := metrics.NewManager(cfg.MetricsNamespace, "server", reg)

	st, err := openStore(cfg, m, true)
	if err != nil {
		return err
	}
	defer st.Close()

	svc, err := newServices(cfg, st, m)
	if err != nil {
		return err
	}

	watcher := app.NewWatcher(svc.dashboard, st.notifier, m)
	defer watcher.Close()

	oidcCfg, err := setupOIDC(ctx)
	if err != nil {
		return err
	}

	h := adapthttp.New(adapthttp.Services{
		Tracker:   svc.tracker,
		Library:   svc.library,
		Targets:   svc.targets,
		Days:      svc.days,
		Workouts:  svc.workouts,
		Dashboard: svc.dashboard,
		Auth:      svc.auth,
		Watcher:   watcher,
	}, adapthttp.Options{
		WebDir:            cfg.WebDir,
		AuthDisabled:      cfg.AuthDisabled,
		DefaultUserID:     cfg.DefaultUserID,
		ForwardAuthHeader: cfg.ForwardAuthHeader,
		OIDC:              oidcCfg,
		Metrics:           m,
		Gatherer:          reg,
	}).Handler()

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      h,
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
	}

	go purgeSessions(ctx, svc.auth)

	errc := make(chan error, 1)
	go func() {
		log.Infof(" > server listening on: [%s]", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Debug("graceful shutdown initiated ...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server shutdown: %s", err)
	}
	log.Info("server shut down")
	return nil
}

func setupOIDC(ctx context.Context) (adapthttp.OIDCConfig, error) {
	if !cfg.OIDC.Enabled {
		return adapthttp.OIDCConfig{}, nil
	}
	provider, err := oidc.NewProvider(ctx, cfg.OIDC.Issuer)
	if err != nil {
		return adapthttp.OIDCConfig{}, err
	}
	return adapthttp.OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: &oauth2.Config{
			ClientID:     cfg.OIDC.ClientID,
			ClientSecret: cfg.OIDC.ClientSecret,
			RedirectURL:  cfg.OIDC.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

func purgeSessions(ctx context.Context, auth *app.AuthService) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := auth.PurgeExpired(ctx); err != nil {
				log.Warnf("purge sessions: %s", err)
			}
		}
	}
}
