package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/shortlink/internal/config"
	"github.com/fsdevblog/shortlink/internal/controllers"
	"github.com/fsdevblog/shortlink/internal/db"
	"github.com/fsdevblog/shortlink/internal/services"
)

const (
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

type App struct {
	config     config.Config
	conn       *db.Conn
	dbServices *services.Services
	Logger     *logrus.Logger
}

// New открывает хранилище и собирает сервисный слой.
func New(appConf config.Config) (*App, error) {
	logger := appConf.Logger
	if logger == nil {
		logger = logrus.New()
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	conn, connErr := db.NewConnectionFactory(ctx, db.FactoryConfig{
		StorageType: db.StorageType(appConf.DBType),
		PostgresDSN: appConf.DatabaseDSN,
		SQLitePath:  appConf.SQLitePath,
		Logger:      logger,
	})
	if connErr != nil {
		return nil, fmt.Errorf("open storage: %w", connErr)
	}

	dbServices, servicesErr := services.Factory(conn, services.AllocatorOptions{
		CodeLength:  appConf.CodeLength,
		MaxAttempts: appConf.MaxAllocAttempts,
	}, logger)
	if servicesErr != nil {
		return nil, errors.Join(fmt.Errorf("init services: %w", servicesErr), conn.Close())
	}

	return &App{
		config:     appConf,
		conn:       conn,
		dbServices: dbServices,
		Logger:     logger,
	}, nil
}

// Must вызывает панику если произошла ошибка.
func Must(a *App, err error) *App {
	if err != nil {
		panic(err)
	}
	return a
}

// Run запускает web сервер и блокируется до отмены ctx, SIGINT/SIGTERM или ошибки сервера.
// После остановки сервера закрывает хранилище.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	router := controllers.SetupRouter(controllers.RouterParams{
		ShortLinkService: a.dbServices.ShortLinkService,
		PingService:      a.dbServices.PingService,
		AppConf:          &a.config,
		Logger:           a.Logger,
	})

	listener, err := net.Listen("tcp", a.config.ServerAddress)
	if err != nil {
		return errors.Join(fmt.Errorf("listen %s: %w", a.config.ServerAddress, err), a.conn.Close())
	}

	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second, //nolint:mnd
	}

	errChan := make(chan error, 1)
	go func() {
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr
		}
	}()
	a.Logger.WithField("address", listener.Addr().String()).Info("Server started")

	var serverErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("Shutdown command received")
	case serverErr = <-errChan:
		a.Logger.WithError(serverErr).Error("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		a.Logger.WithError(shutdownErr).Error("graceful shutdown")
		serverErr = errors.Join(serverErr, shutdownErr)
	}

	if closeErr := a.conn.Close(); closeErr != nil {
		a.Logger.WithError(closeErr).Error("close storage")
		serverErr = errors.Join(serverErr, closeErr)
	}

	return serverErr
}
