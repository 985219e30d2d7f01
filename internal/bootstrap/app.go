package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"wallpaper-backend/internal/reconcile"
	"wallpaper-backend/internal/shared/config"
	"wallpaper-backend/internal/shared/server"
	"wallpaper-backend/internal/shared/storage/db"
	"wallpaper-backend/internal/shared/storage/docdb"
	"wallpaper-backend/internal/shared/storage/object"
	imagekitstore "wallpaper-backend/internal/shared/storage/object/imagekit"
	localstore "wallpaper-backend/internal/shared/storage/object/local"
	miniostore "wallpaper-backend/internal/shared/storage/object/minio"
	s3store "wallpaper-backend/internal/shared/storage/object/s3"
	"wallpaper-backend/internal/shared/telemetry"
	"wallpaper-backend/internal/users"
	"wallpaper-backend/internal/wallpapers"
	"wallpaper-backend/internal/webhooks"
)

// App holds every constructed dependency. Nothing here is process-global.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Mongo            *mongo.Client
	Store            object.ObjectStore
	MediaDir         string
	WallpapersRepo   wallpapers.Repo
	UsersRepo        users.Repo
	WallpaperService *wallpapers.Service
	UsersService     *users.Service
	ReconcileService *reconcile.Service
	Sweeper          *reconcile.Sweeper
	WallpaperHandler *wallpapers.Handler
	WebhookHandler   *webhooks.Handler
}

// Build connects the configured stores and wires services, handlers and the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	app := &App{Config: cfg}

	if err := app.buildDocStore(ctx); err != nil {
		return nil, err
	}
	store, mediaDir, err := buildObjectStore(ctx, cfg)
	if err != nil {
		_ = app.Close(context.Background())
		return nil, err
	}
	app.Store = store
	app.MediaDir = mediaDir

	verifier, err := buildVerifier(cfg)
	if err != nil {
		_ = app.Close(context.Background())
		return nil, err
	}

	app.UsersService = users.NewService(app.UsersRepo)
	app.WallpaperService = wallpapers.NewService(app.WallpapersRepo, app.Store, app.UsersRepo)
	app.ReconcileService = reconcile.NewService(app.WallpapersRepo, app.UsersRepo)
	app.Sweeper = &reconcile.Sweeper{Svc: app.ReconcileService, Interval: cfg.ReconcileEvery}
	app.WallpaperHandler = wallpapers.NewHandler(app.WallpaperService, cfg.MaxUploadBytes)
	app.WebhookHandler = webhooks.NewHandler(app.UsersService, verifier)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:   cfg,
		Handlers: []server.RouteRegistrar{app.WallpaperHandler, app.WebhookHandler},
		MediaDir: app.MediaDir,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          cfg.Env,
		"doc_store":    cfg.DocStore,
		"object_store": cfg.ObjectStoreType,
	})
	return app, nil
}

// Close releases database connections.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.Mongo != nil {
		errs = append(errs, a.Mongo.Disconnect(ctx))
	}
	return errors.Join(errs...)
}

func (a *App) buildDocStore(ctx context.Context) error {
	cfg := a.Config
	switch cfg.DocStore {
	case "mongo":
		client, database, err := docdb.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.ConnectTimeout)
		if err != nil {
			return a.fallback(err)
		}
		if err := docdb.EnsureIndexes(ctx, database); err != nil {
			_ = client.Disconnect(context.Background())
			return fmt.Errorf("mongo indexes: %w", err)
		}
		a.Mongo = client
		a.WallpapersRepo = wallpapers.NewMongoRepo(database.Collection(docdb.WallpapersCollection))
		a.UsersRepo = users.NewMongoRepo(database.Collection(docdb.UsersCollection))
		return nil
	case "postgres":
		sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsForRuntime())
		if err != nil {
			return a.fallback(err)
		}
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			_ = sqlDB.Close()
			return fmt.Errorf("run migrations: %w", err)
		}
		a.DB = sqlDB
		a.WallpapersRepo = &wallpapers.PGRepo{DB: sqlDB}
		a.UsersRepo = &users.PGRepo{DB: sqlDB}
		return nil
	default:
		a.useMemory()
		return nil
	}
}

// fallback keeps dev environments usable when the configured store is down.
func (a *App) fallback(err error) error {
	if !a.Config.IsDevLike() {
		return err
	}
	telemetry.Warn("bootstrap.doc_store.fallback", map[string]any{
		"doc_store": a.Config.DocStore,
		"err":       err,
	})
	a.useMemory()
	return nil
}

func (a *App) useMemory() {
	a.WallpapersRepo = wallpapers.NewMemoryRepo()
	a.UsersRepo = users.NewMemoryRepo()
}

func buildObjectStore(ctx context.Context, cfg config.Config) (object.ObjectStore, string, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		store, err := s3store.New(ctx, s3store.Options{
			Region:        cfg.AWSRegion,
			Bucket:        cfg.S3.Bucket,
			Prefix:        cfg.S3.Prefix,
			PublicBaseURL: cfg.S3.PublicBaseURL,
			MaxBytes:      cfg.MaxUploadBytes,
		})
		return store, "", err
	case "minio":
		store, err := miniostore.New(ctx, miniostore.Options{
			Endpoint:      cfg.Minio.Endpoint,
			AccessKey:     cfg.Minio.AccessKey,
			SecretKey:     cfg.Minio.SecretKey,
			Bucket:        cfg.Minio.Bucket,
			PublicBaseURL: cfg.Minio.PublicBaseURL,
			MaxBytes:      cfg.MaxUploadBytes,
		})
		return store, "", err
	case "imagekit":
		store, err := imagekitstore.New(imagekitstore.Options{
			PrivateKey:  cfg.ImageKit.PrivateKey,
			PublicKey:   cfg.ImageKit.PublicKey,
			URLEndpoint: cfg.ImageKit.URLEndpoint,
			MaxBytes:    cfg.MaxUploadBytes,
		})
		return store, "", err
	default:
		return localstore.New(cfg.LocalStoreDir, cfg.PublicBaseURL, cfg.MaxUploadBytes), cfg.LocalStoreDir, nil
	}
}

func buildVerifier(cfg config.Config) (webhooks.Verifier, error) {
	if strings.TrimSpace(cfg.ClerkWebhookSecret) == "" {
		telemetry.Warn("bootstrap.webhook.unconfigured", map[string]any{
			"route": "/api/webhooks/clerk",
		})
		return nil, nil
	}
	return webhooks.NewSvixVerifier(cfg.ClerkWebhookSecret)
}
