package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-token-auth/auth"
	"github.com/jrsteele09/go-token-auth/internal/config"
	"github.com/jrsteele09/go-token-auth/internal/database"
	"github.com/jrsteele09/go-token-auth/internal/logging"
	"github.com/jrsteele09/go-token-auth/server"
	"github.com/jrsteele09/go-token-auth/token"
	"github.com/jrsteele09/go-token-auth/token/jwt"
	"github.com/jrsteele09/go-token-auth/token/refresh"
	"github.com/jrsteele09/go-token-auth/token/refresh/redisrepo"
	"github.com/jrsteele09/go-token-auth/users"
	pguserrepo "github.com/jrsteele09/go-token-auth/users/pgrepo"
	fakeuserrepo "github.com/jrsteele09/go-token-auth/users/repofake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
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

	c := config.New()
	logging.Setup(c.GetLogLevel(), !c.IsProduction())
	displayAppname(c.GetAppName())

	if err := config.Validate(c); err != nil {
		return err
	}

	ctx := context.Background()
	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn().Err(err).Msg("close failed")
			}
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	var serverOptions []server.Option
	serverOptions = append(serverOptions, server.WithRegistry(registry))

	userRepo, db, err := openUserRepo(ctx, c)
	if err != nil {
		return err
	}
	if db != nil {
		closers = append(closers, db.Close)
		serverOptions = append(serverOptions, server.WithHealthCheck("postgres", func(ctx context.Context) error {
			return database.Ping(ctx, db, time.Second)
		}))
	}

	digestRepo, err := openDigestRepo(c, userRepo)
	if err != nil {
		return err
	}
	if rr, ok := digestRepo.(*redisrepo.Repo); ok {
		closers = append(closers, rr.Close)
		serverOptions = append(serverOptions, server.WithHealthCheck("redis", rr.Ping))
	}

	issuer := jwt.NewIssuer(
		token.NewHMACSigner(c.GetAccessSecret()),
		token.NewHMACSigner(c.GetRefreshSecret()),
		jwt.WithAccessExpiry(c.GetAccessTokenExpiry()),
		jwt.WithRefreshExpiry(c.GetRefreshTokenExpiry()),
		jwt.WithIssuerName(c.GetIssuer()),
	)

	authService, err := auth.NewService(userRepo, issuer, refresh.NewStore(digestRepo),
		auth.WithMetrics(auth.NewMetrics(registry)))
	if err != nil {
		return fmt.Errorf("auth.NewService: %w", err)
	}

	handler, err := server.New(c, authService, serverOptions...)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(httpServer)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func openUserRepo(ctx context.Context, c config.Config) (users.UserRepo, *sql.DB, error) {
	if c.GetUserStore() != config.UserStorePostgres {
		log.Info().Msg("Using in-memory user store")
		return fakeuserrepo.NewFakeUserRepo(), nil, nil
	}
	db, err := database.OpenPostgres(ctx, c.GetDatabaseURL())
	if err != nil {
		return nil, nil, err
	}
	log.Info().Msg("Using postgres user store")
	return pguserrepo.NewPostgresRepository(db), db, nil
}

func openDigestRepo(c config.Config, userRepo users.UserRepo) (refresh.DigestRepo, error) {
	if c.GetRefreshStore() != config.RefreshStoreRedis {
		return refresh.NewUserDigestRepo(userRepo), nil
	}
	opts, err := redis.ParseURL(c.GetRedisURL())
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}
	log.Info().Str("addr", opts.Addr).Msg("Using redis refresh store")
	return redisrepo.New(redis.NewClient(opts), c.GetRedisPrefix(), c.GetRefreshTokenExpiry()), nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
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
