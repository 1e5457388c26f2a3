package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/buildatscale/bas-server/internal/config"
	"github.com/buildatscale/bas-server/internal/handlers"
	handler_analytics "github.com/buildatscale/bas-server/internal/handlers/analytics"
	"github.com/buildatscale/bas-server/internal/mailer"
	"github.com/buildatscale/bas-server/internal/middlewares"
	"github.com/buildatscale/bas-server/internal/services"
	"github.com/buildatscale/bas-server/internal/store"
	"github.com/buildatscale/bas-server/internal/store/analytics"
	"github.com/buildatscale/bas-server/internal/youtube"
	"github.com/buildatscale/bas-server/migrations"
	"github.com/redis/go-redis/v9"
)

const clickhouseMigrations = "file://./migrations/analytics"

type Application struct {
	Logger      *log.Logger
	Config      *config.Config
	db          *sql.DB
	RedisClient *redis.Client
	DBConn      driver.Conn

	Ingester *services.Ingester

	MiddlewareHandler        *middlewares.MiddlewareHandler
	PlaylistHandler          *handlers.PlaylistHandler
	VideoHandler             *handlers.VideoHandler
	RequestHandler           *handlers.RequestHandler
	NewsletterHandler        *handlers.NewsletterHandler
	IngestHandler            *handlers.IngestHandler
	AnalyticsPlaylistHandler *handler_analytics.AnalyticsPlaylistHandler
}

func NewApplication(ctx context.Context, cfg *config.Config) (*Application, error) {
	logger := log.New(os.Stdout, "LOGGING: ", log.Ldate|log.Ltime)

	app := &Application{
		Logger: logger,
		Config: cfg,
	}

	playlistStore, videoStore, err := app.openStores(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	var analyticsStore analytics.AnalyticsPlaylistStore
	var snapshots services.SnapshotRecorder
	if cfg.ClickhouseURL != "" {
		chStore, err := app.openAnalytics(ctx)
		if err != nil {
			app.Close()
			return nil, err
		}
		analyticsStore = chStore
		snapshots = chStore
	} else {
		logger.Println("CLICKHOUSE_URL not set, playlist analytics disabled")
	}

	client, err := youtube.NewClient(ctx, cfg.YouTubeAPIKey, logger)
	if err != nil {
		logger.Println("Error creating YouTube client")
		app.Close()
		return nil, err
	}

	app.Ingester = services.NewIngester(services.IngesterOptions{
		PlaylistLoader: youtube.NewPlaylistLoader(client, cfg.YouTubeChannelID, cfg.PlaylistMaxResults, logger),
		PlaylistStore:  playlistStore,
		VideoLoader:    youtube.NewVideoLoader(client, cfg.YouTubeChannelID, cfg.VideoMaxResults, logger),
		VideoStore:     videoStore,
		Snapshots:      snapshots,
		Logger:         logger,
	})

	var m mailer.Mailer
	if cfg.ResendAPIKey != "" {
		m = mailer.NewResendMailer(cfg.ResendAPIKey)
	} else {
		logger.Println("RESEND_API_KEY not set, form submissions will be rejected")
	}
	mail := handlers.MailSettings{From: cfg.MailFrom, To: cfg.MailTo}

	app.MiddlewareHandler = middlewares.NewMiddlewareHandler(logger, cfg.AdminAPIKey, cfg.AllowedOrigins)
	app.PlaylistHandler = handlers.NewPlaylistHandler(playlistStore, logger)
	app.VideoHandler = handlers.NewVideoHandler(videoStore, logger)
	app.RequestHandler = handlers.NewRequestHandler(m, mail, logger)
	app.NewsletterHandler = handlers.NewNewsletterHandler(m, cfg.ResendAudienceID, mail, logger)
	app.IngestHandler = handlers.NewIngestHandler(app.Ingester, logger)
	app.AnalyticsPlaylistHandler = handler_analytics.NewAnalyticsPlaylistHandler(analyticsStore, logger)

	return app, nil
}

func (app *Application) openStores(ctx context.Context) (store.PlaylistStore, store.VideoStore, error) {
	switch app.Config.StoreBackend {
	case config.StorePostgres:
		pgDB, err := store.ConnectPGDB(ctx, app.Config.DBURL, app.Logger)
		if err != nil {
			app.Logger.Println("Error connecting to db")
			return nil, nil, err
		}
		app.db = pgDB

		if err := store.MigrateFS(pgDB, migrations.FS, "db"); err != nil {
			app.Logger.Println("Postgresql migration failed")
			return nil, nil, err
		}
		app.Logger.Println("Database migrated...")

		return store.NewPostgresPlaylistStore(pgDB), store.NewPostgresVideoStore(pgDB), nil

	case config.StoreRedis:
		redisClient, err := store.ConnectRedis(ctx, app.Config.RedisURL)
		if err != nil {
			app.Logger.Println("Error connecting to redis")
			return nil, nil, err
		}
		app.RedisClient = redisClient

		return store.NewRedisPlaylistStore(redisClient), store.NewRedisVideoStore(redisClient), nil

	case config.StoreMemory:
		return store.NewMemoryPlaylistStore(), store.NewMemoryVideoStore(), nil
	}

	return nil, nil, fmt.Errorf("unknown store backend %q", app.Config.StoreBackend)
}

func (app *Application) openAnalytics(ctx context.Context) (*analytics.ClickhousePlaylistStore, error) {
	opts := store.ClickhouseOptions{
		Addr:     app.Config.ClickhouseURL,
		Database: app.Config.ClickhouseDatabase,
		Username: app.Config.ClickhouseUsername,
		Password: app.Config.ClickhousePassword,
	}

	dbConn, err := store.ConnectClickhouse(ctx, opts, app.Logger)
	if err != nil {
		app.Logger.Println("Error connecting to clickhouse")
		return nil, err
	}
	app.DBConn = dbConn

	if err := store.MigrateClickhouse(opts, clickhouseMigrations); err != nil {
		app.Logger.Println("Clickhouse migration failed")
		return nil, err
	}

	return analytics.NewClickhousePlaylistStore(dbConn), nil
}

// Close releases whichever backends were opened.
func (app *Application) Close() {
	if app.db != nil {
		app.db.Close()
	}
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
	if app.DBConn != nil {
		app.DBConn.Close()
	}
}
