package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-idp-bridge/claims"
	"github.com/jrsteele09/go-idp-bridge/internal/config"
	"github.com/jrsteele09/go-idp-bridge/internal/logging"
	"github.com/jrsteele09/go-idp-bridge/localsession"
	"github.com/jrsteele09/go-idp-bridge/provider"
	"github.com/jrsteele09/go-idp-bridge/server"
	"github.com/jrsteele09/go-idp-bridge/strategy"
	"github.com/jrsteele09/go-idp-bridge/users"
	"github.com/jrsteele09/go-idp-bridge/users/memrepo"
	"github.com/jrsteele09/go-idp-bridge/users/sqliterepo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(logging.Options{Level: c.GetLogLevel(), Pretty: c.GetLogPretty()})
	displayAppname(c.GetAppName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collection, closer, err := openCollection(ctx, c)
	if err != nil {
		return err
	}
	defer closer.Close()

	handler, err := newHandler(ctx, c, collection, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{Addr: c.GetPort(), Handler: handler}
	errs := make(chan error, 1)
	go func() {
		errs <- listenAndServe(srv, logger)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	return shutdown(srv)
}

// openCollection returns the sqlite collection when SQLITE_PATH is set, and
// an in-memory one otherwise.
func openCollection(ctx context.Context, c config.Config) (users.Collection, io.Closer, error) {
	if path := c.GetSQLitePath(); path != "" {
		repo, err := sqliterepo.Open(ctx, path, c.GetCollection())
		if err != nil {
			return nil, nil, fmt.Errorf("open user store: %w", err)
		}
		return repo, repo, nil
	}
	return memrepo.New(c.GetCollection()), nopCloser{}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newHandler(ctx context.Context, c config.Config, collection users.Collection, logger zerolog.Logger) (http.Handler, error) {
	client, err := provider.New(ctx, c, nil, logging.Named(logger, "provider"))
	if err != nil {
		return nil, err
	}

	remapper := claims.NewRemapper(c.GetFieldMappings(), logging.Named(logger, "remapper"))
	resolver := users.NewResolver(collection, remapper, logging.Named(logger, "resolver"))

	var opts []strategy.BridgeOption
	if c.GetLocalSessionSecret() != "" {
		opts = append(opts, strategy.WithLocalSessions(localsession.NewJWTVerifier(c), users.NewCollections(collection)))
	}
	bridge := strategy.NewBridge(client, resolver, c.GetCookieName(), logger, opts...)

	return server.New(c, client, strategy.Chain{bridge}, logger), nil
}

func listenAndServe(server *http.Server, logger zerolog.Logger) error {
	logger.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
