// Command openackd serves the OpenAck send API: message submission
// and the people directory.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/openack/openack"
	"github.com/openack/openack/internal/config"
	"github.com/openack/openack/internal/httpapi"
	"github.com/openack/openack/translog"

	_ "github.com/openack/openack/directory"
	_ "github.com/openack/openack/mailbox"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg := config.Load("8080")

	// The send API validates against the people listing only; it
	// never resolves tokens.
	dir, err := openack.OpenDirectory(openack.DirectoryConfig{
		Type:       "file",
		PeopleFile: cfg.PeopleFile,
		Options:    map[string]string{"watch": strconv.FormatBool(cfg.WatchDirectory)},
	})
	if err != nil {
		logger.Error("open directory", "error", err)
		os.Exit(1)
	}
	defer func() { _ = dir.Close() }()

	store, err := openack.Open(openack.StoreConfig{
		Type:     "mailbox",
		BasePath: cfg.MessagesRoot,
	}, openack.Deps{
		Directory:      dir,
		TransactionLog: translog.NewFileLogger(cfg.TransactionLog),
		Logger:         logger,
	})
	if err != nil {
		logger.Error("open store", "error", err)
		os.Exit(1)
	}

	handler := httpapi.NewHandler(store, dir, logger)
	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: httpapi.SendRouter(handler),
	}

	go func() {
		logger.Info("send API listening", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down send API")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "error", err)
		os.Exit(1)
	}
}
