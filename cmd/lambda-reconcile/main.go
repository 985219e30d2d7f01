package main

// Build the scheduled reconcile binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-reconcile

import (
	"context"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"wallpaper-backend/internal/bootstrap"
	"wallpaper-backend/internal/reconcile"
	"wallpaper-backend/internal/shared/config"
	"wallpaper-backend/internal/shared/telemetry"
)

var (
	initOnce sync.Once
	initErr  error
	app      *bootstrap.App
)

func initApp(ctx context.Context) {
	cfg, err := config.Load()
	if err != nil {
		initErr = err
		return
	}
	app, initErr = bootstrap.Build(ctx, cfg)
}

// handler runs one sweep per scheduled EventBridge event.
func handler(ctx context.Context, event events.CloudWatchEvent) (reconcile.Result, error) {
	initOnce.Do(func() { initApp(context.WithoutCancel(ctx)) })
	if initErr != nil {
		telemetry.Error("bootstrap.failed", map[string]any{"err": initErr})
		return reconcile.Result{}, initErr
	}

	telemetry.Info("reconcile.trigger", map[string]any{
		"event_id": event.ID,
		"source":   event.Source,
	})
	return app.ReconcileService.Sweep(ctx)
}

func main() {
	lambda.Start(handler)
}
