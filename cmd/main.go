package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	httpapi "github.com/immxrtalbeast/roomkeeper/internal/api/http"
	"github.com/immxrtalbeast/roomkeeper/internal/config"
	"github.com/immxrtalbeast/roomkeeper/internal/identity"
	"github.com/immxrtalbeast/roomkeeper/internal/repository"
	"github.com/immxrtalbeast/roomkeeper/internal/service"
	"github.com/immxrtalbeast/roomkeeper/internal/store"
	"github.com/immxrtalbeast/roomkeeper/lib/logger/sl"
	"github.com/immxrtalbeast/roomkeeper/lib/logger/slogpretty"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.MustLoad()
	log := setupLogger(cfg.Env)

	st, err := openStore(cfg.Store)
	if err != nil {
		log.Error("failed to open store", slog.String("driver", cfg.Store.Driver), sl.Err(err))
		os.Exit(1)
	}
	defer st.Close()

	roomRepo := repository.NewStoreRoomRepository(st)
	userRepo := repository.NewStoreUserRepository(st)

	roomService := service.NewRoomService(st, roomRepo, userRepo, log)
	queryService := service.NewRoomQueryService(roomRepo, userRepo, log)
	userService := service.NewUserService(userRepo, log)
	feed := service.NewRoomListFeed(st, queryService, cfg.Feed.Buffer, log)

	issuer, err := identity.NewIssuer(cfg.Auth.SessionSecret)
	if err != nil {
		log.Error("failed to create session issuer", sl.Err(err))
		os.Exit(1)
	}
	verifier, err := identity.NewVerifier(cfg.Auth.SessionSecret)
	if err != nil {
		log.Error("failed to create session verifier", sl.Err(err))
		os.Exit(1)
	}

	roomController := httpapi.NewRoomController(roomService, queryService, feed, cfg.HTTP.AllowedOrigins, log)
	userController := httpapi.NewUserController(userService, log)
	authController := httpapi.NewAuthController(issuer, cfg.Auth.CookieName, cfg.Auth.SessionTTL, cfg.Env == envProd, log)

	router := httpapi.SetupRouter(httpapi.RouterOptions{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Auth:           identity.Middleware(verifier, cfg.Auth.CookieName, log),
		DevSessions:    cfg.Env == envLocal,
	}, roomController, userController, authController)

	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("starting application",
			slog.String("addr", cfg.HTTP.Address),
			slog.String("env", cfg.Env),
			slog.String("store", cfg.Store.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", sl.Err(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", sl.Err(err))
	}
}

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = setupPrettySlog()
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}

func openStore(cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case config.StoreMemory:
		return store.NewMemoryStore(), nil
	case config.StoreRedis:
		return store.NewRedisStore(cfg.RedisURL, cfg.RedisPrefix)
	case config.StorePostgres:
		return store.OpenPostgres(cfg.PostgresDSN, cfg.PollInterval)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
