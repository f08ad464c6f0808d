package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/cardiobridge-backend/internal/app"
	apihttp "github.com/yungbote/cardiobridge-backend/internal/http"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/envutil"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("failed to start app: %v", err)
	}
	defer a.Close()

	address := ":" + envutil.String("PORT", "8080")
	server := apihttp.NewServer(a.Router, address)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Log.Info("Server listening", "address", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		a.Log.Error("Server exited with error", "error", err)
		return
	}
	a.Log.Info("Server stopped")
}
