package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Zacy-Sokach/RagChat/internal/stub"
)

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	answersFile := flag.String("answers", "", "yaml file mapping questions to answers")
	status := flag.Int("status", 0, "force every /ask to fail with this HTTP status")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var answers map[string]string
	if *answersFile != "" {
		loaded, err := stub.LoadAnswers(*answersFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		answers = loaded
	}

	srv := &http.Server{
		Addr: *addr,
		Handler: stub.New(stub.Options{
			Answers:     answers,
			ForceStatus: *status,
			Logger:      log,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info("ragstub listening", "addr", *addr, "forced_status", *status)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}
