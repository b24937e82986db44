package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/rayansaffron/storefront/auth"
	"github.com/rayansaffron/storefront/chat"
	"github.com/rayansaffron/storefront/config"
	"github.com/rayansaffron/storefront/database"
	"github.com/rayansaffron/storefront/events"
	handler "github.com/rayansaffron/storefront/handlers"
	"github.com/rayansaffron/storefront/jpegcodec"
	"github.com/rayansaffron/storefront/logging"
	"github.com/rayansaffron/storefront/media"
	"github.com/rayansaffron/storefront/models"
	"github.com/rayansaffron/storefront/notify"
	"github.com/rayansaffron/storefront/repository"
	"github.com/rayansaffron/storefront/response"
	"github.com/rayansaffron/storefront/router"
	"github.com/rayansaffron/storefront/storage"
	"github.com/rayansaffron/storefront/upload"
	"github.com/rayansaffron/storefront/webpcodec"
)

// bodyLimit admits a full product upload plus form overhead.
const bodyLimit = 12*int(upload.MaxFileBytes) + 1<<20

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	response.SetVerbose(cfg.AppEnv == "development")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL, !cfg.IsProduction())
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error("closing the database connection", "err", err)
		}
	}()
	if err := database.MigrateModels(db, &models.User{}, &models.Order{}); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	mongoClient, mongoDB, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error("closing the mongo connection", "err", err)
		}
	}()

	store, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	watermark, err := media.NewWatermark(media.DefaultWatermarkText)
	if err != nil {
		return fmt.Errorf("build watermark: %w", err)
	}
	orchestrator := upload.New(
		media.NewEncoder(watermark, media.Codecs{JPEG: jpegcodec.Encode, WebP: webpcodec.Encode}),
		storage.NewPublisher(store, cfg.PublishTimeout),
		upload.Options{
			TempDir:     cfg.UploadTempDir,
			Concurrency: cfg.UploadConcurrency,
			Logger:      log.With("component", "upload"),
		},
	)

	var notifier handler.Notifier = notify.Log{Logger: log}
	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			return err
		}
		notifier = tg
	}

	deps := router.Deps{
		Users:      repository.NewUserRepository(db),
		Orders:     repository.NewOrderRepository(db),
		Products:   repository.NewProductRepository(mongoDB),
		Blogs:      repository.NewBlogRepository(mongoDB),
		Tokens:     auth.NewService(cfg.JWTSecret, cfg.TokenDuration),
		Uploads:    orchestrator,
		Events:     events.Nop{},
		Notifier:   notifier,
		AssetStore: store.Name(),
		Logger:     log,
		AccessLog:  true,
	}

	if cfg.GeminiAPIKey != "" {
		assistant, err := chat.NewAssistant(ctx, cfg.GeminiAPIKey, cfg.ChatModel)
		if err != nil {
			return err
		}
		deps.Chat = assistant
	}

	if cfg.NATSURL != "" {
		bus, err := events.Connect(cfg.NATSURL, cfg.UploadEventsSubject)
		if err != nil {
			return fmt.Errorf("connect to nats: %w", err)
		}
		defer bus.Close()
		deps.Events = bus
	}

	app := fiber.New(fiber.Config{
		AppName:      "rayan-saffron",
		BodyLimit:    bodyLimit,
		ErrorHandler: response.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New())

	router.SetupRoutes(app, deps)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "port", cfg.Port, "asset_store", store.Name())
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	return app.ShutdownWithTimeout(10 * time.Second)
}

func buildStore(ctx context.Context, cfg *config.Config) (storage.Store, func(), error) {
	noop := func() {}
	switch cfg.AssetBackend {
	case config.BackendGCS:
		gcs, err := storage.NewGCSStore(ctx, cfg.GCSBucketName, cfg.GCSPublicBaseURL)
		if err != nil {
			return nil, noop, err
		}
		return gcs, closer(gcs), nil
	case config.BackendMemory:
		return storage.NewMemoryStore("http://localhost:" + cfg.Port + "/assets"), noop, nil
	default:
		cld, err := storage.NewCloudinaryStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			return nil, noop, err
		}
		return cld, noop, nil
	}
}

func closer(c io.Closer) func() {
	return func() {
		if err := c.Close(); err != nil {
			slog.Error("closing asset store", "err", err)
		}
	}
}
