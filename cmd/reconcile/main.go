package main

// Run one reconciliation sweep and print the result:
//   go run ./cmd/reconcile

import (
	"context"
	"encoding/json"
	"os"

	"wallpaper-backend/internal/bootstrap"
	"wallpaper-backend/internal/shared/config"
	"wallpaper-backend/internal/shared/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	defer telemetry.Sync()

	cfg, err := config.Load()
	if err != nil {
		telemetry.Error("config.invalid", map[string]any{"err": err})
		return 1
	}
	ctx := context.Background()

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		telemetry.Error("bootstrap.failed", map[string]any{"err": err})
		return 1
	}
	defer app.Close(ctx)

	result, err := app.ReconcileService.Sweep(ctx)
	_ = json.NewEncoder(os.Stdout).Encode(result)
	if err != nil {
		telemetry.Error("reconcile.failed", map[string]any{"err": err})
		return 1
	}
	return 0
}
