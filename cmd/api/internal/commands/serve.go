package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ledgerline/identity-core/internal/config"
	"github.com/ledgerline/identity-core/internal/domain/company"
	"github.com/ledgerline/identity-core/internal/domain/user"
	appHTTP "github.com/ledgerline/identity-core/internal/handler/http"
	"github.com/ledgerline/identity-core/internal/pkg/database"
	"github.com/ledgerline/identity-core/internal/pkg/jwt"
	"github.com/ledgerline/identity-core/internal/pkg/oauth"
	"github.com/ledgerline/identity-core/internal/pkg/password"
	"github.com/ledgerline/identity-core/internal/repository/memory"
	"github.com/ledgerline/identity-core/internal/repository/postgresql"
	serviceAuth "github.com/ledgerline/identity-core/internal/service/auth"
	serviceCompany "github.com/ledgerline/identity-core/internal/service/company"
	serviceUser "github.com/ledgerline/identity-core/internal/service/user"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type ServeCmd struct {
	Listen string `help:"HTTP listen address, defaults to :APP_PORT" default:""`
}

type stores struct {
	tx        database.Transactor
	users     user.UserRepository
	companies company.CompanyRepository
	db        *database.DB
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(parseLevel(cfg.App.LogLevel), cfg.App.Env, globals.Version)
	slog.SetDefault(logger)
	logger.Info("Starting server", "store", cfg.Store.Driver, "revocation", cfg.Revocation.Driver)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	if st.db != nil {
		defer st.db.Close()
	}

	revoked, closeRevoked, err := openRevocationStore(ctx, cfg, st.db)
	if err != nil {
		return err
	}
	defer closeRevoked()

	hasher := password.NewBcryptHasher(cfg.Password.BcryptCost, cfg.Password.HashConcurrency)
	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, revoked)

	directory := serviceUser.NewDirectory(st.users, hasher)
	provisioner := serviceCompany.NewProvisioner(st.companies)
	authService := serviceAuth.NewAuthService(st.tx, provisioner, directory, hasher, jwtService)
	guard := serviceAuth.NewGuard(jwtService, directory)

	var googleService oauth.GoogleService
	if cfg.OAuth2Google.Enabled() {
		googleService = oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL)
	}

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			Logger:         logger,
			LogLevel:       parseLevel(cfg.App.LogLevel),
			AllowedOrigins: cfg.App.AllowedOrigins,
			RequestTimeout: cfg.App.RequestTimeout,
			GoogleLogin:    googleService != nil,
		},
		guard,
		appHTTP.NewAuthHandler(authService, googleService, cfg.App.FrontendURL),
		appHTTP.NewUserHandler(directory),
	)

	addr := c.Listen
	if addr == "" {
		addr = fmt.Sprintf(":%d", cfg.App.Port)
	}
	server := configureHTTPServer(addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Listening for HTTP connections", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		logger.Info("Shutting down server")
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStores(ctx context.Context, cfg *config.Config) (stores, error) {
	if cfg.Store.Driver == config.DriverMemory {
		store := memory.NewStore()
		return stores{
			tx:        store,
			users:     memory.NewUserRepository(store),
			companies: memory.NewCompanyRepository(store),
		}, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return stores{}, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := postgresql.RunMigrations(ctx, db); err != nil {
			db.Close()
			return stores{}, err
		}
	}
	return stores{
		tx:        postgresql.NewTxManager(db),
		users:     postgresql.NewUserRepository(db),
		companies: postgresql.NewCompanyRepository(db),
		db:        db,
	}, nil
}

func openRevocationStore(ctx context.Context, cfg *config.Config, db *database.DB) (jwt.RevocationStore, func(), error) {
	switch cfg.Revocation.Driver {
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return jwt.NewRedisRevocationStore(client), func() { _ = client.Close() }, nil
	case config.DriverPostgres:
		return postgresql.NewRevocationRepository(db), func() {}, nil
	default:
		return jwt.NewMemoryRevocationStore(), func() {}, nil
	}
}
