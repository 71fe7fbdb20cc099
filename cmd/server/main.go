package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/socialkit/pkg/config"
	"github.com/dmitrymomot/socialkit/pkg/file"
	"github.com/dmitrymomot/socialkit/pkg/httpserver"
	"github.com/dmitrymomot/socialkit/pkg/logger"
	"github.com/dmitrymomot/socialkit/pkg/mongo"
	"github.com/dmitrymomot/socialkit/pkg/pg"
	"github.com/dmitrymomot/socialkit/pkg/push"
	"github.com/dmitrymomot/socialkit/pkg/realtime"
	"github.com/dmitrymomot/socialkit/pkg/redis"
	"github.com/dmitrymomot/socialkit/pkg/requestid"
	"github.com/dmitrymomot/socialkit/svc/customer"
	"github.com/dmitrymomot/socialkit/svc/messaging"
	"github.com/dmitrymomot/socialkit/svc/notification"
	"github.com/dmitrymomot/socialkit/svc/payment"
	"github.com/dmitrymomot/socialkit/svc/user"
)

type appConfig struct {
	Env         string        `env:"APP_ENV" envDefault:"development"`
	Name        string        `env:"APP_NAME" envDefault:"socialkit"`
	RedisRelay  bool          `env:"REALTIME_REDIS_RELAY" envDefault:"true"`
	HealthProbe time.Duration `env:"HEALTH_TIMEOUT" envDefault:"5s"`

	HTTP     httpserver.Config
	Mongo    mongo.Config
	Postgres pg.Config
	Redis    redis.Config
	Push     push.Config
	Realtime realtime.Config
	Files    file.Config
	Payment  payment.Config
}

// services is the application layer handed to request handlers.
type services struct {
	Customers     *customer.Service
	Notifications *notification.Service
	Messaging     *messaging.Service
	Payments      *payment.Gateway
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load[appConfig]()
	if err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(logger.ParseEnvironment(cfg.Env), cfg.Name),
		logger.WithContextExtractors(requestid.Extractor()),
	)
	logger.SetAsDefault(log)

	mongoClient, err := mongo.New(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	db := mongoClient.Database(cfg.Mongo.Database)

	pool, err := pg.Connect(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool, cfg.Postgres, payment.Migrations, log); err != nil {
		return err
	}

	users := user.NewMongoDirectory(db)
	customers := customer.NewMongoStore(db)
	notifications := notification.NewMongoStore(db)
	conversations := messaging.NewMongoConversationStore(db)
	messages := messaging.NewMongoMessageStore(db)
	for _, s := range []interface{ Indexes(context.Context) error }{users, customers, notifications, conversations, messages} {
		if err := s.Indexes(ctx); err != nil {
			return err
		}
	}

	sender, err := newPushSender(ctx, cfg.Push, log)
	if err != nil {
		return err
	}

	hub := realtime.NewHub(cfg.Realtime, realtime.WithHubLogger(log))
	var emitter realtime.Emitter = hub
	checks := []httpserver.Check{
		{Name: "mongo", Probe: mongo.Healthcheck(mongoClient)},
		{Name: "postgres", Probe: pg.Healthcheck(pool)},
	}
	if cfg.RedisRelay {
		rdb, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()

		relay := realtime.NewRedisEmitter(rdb, cfg.Realtime.RedisChannel, log)
		emitter = relay
		checks = append(checks, httpserver.Check{Name: "redis", Probe: redis.Healthcheck(rdb)})
		go func() {
			if err := relay.Relay(ctx, hub); err != nil && !errors.Is(err, context.Canceled) {
				log.ErrorContext(ctx, "realtime relay stopped", logger.Error(err))
			}
		}()
	}

	storage, err := file.NewStorage(ctx, cfg.Files)
	if err != nil {
		return err
	}
	cleaner := file.NewCleaner(storage, file.WithCleanerLogger(log))

	notifier := notification.NewNotifier(notifications, users, sender, emitter, notification.WithNotifierLogger(log))
	gateway, err := payment.NewGateway(payment.NewStripeClient(cfg.Payment), payment.NewPgAccountStore(pool), cfg.Payment, payment.WithLogger(log))
	if err != nil {
		return err
	}
	app := services{
		Customers:     customer.NewService(customers, users, customer.WithLogger(log)),
		Notifications: notification.NewService(notifications, users, notification.WithLogger(log)),
		Messaging: messaging.NewService(conversations, messages, users, notifier,
			messaging.WithLogger(log),
			messaging.WithFileCleaner(cleaner),
		),
		Payments: gateway,
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware, middleware.RealIP, middleware.Recoverer)
	r.Get("/health", httpserver.HealthHandler(log, cfg.HealthProbe, checks...))
	r.Method(http.MethodGet, "/ws", realtime.NewHandler(hub, resolveUser, cfg.Realtime, realtime.WithHandlerLogger(log)))
	r.Post("/webhooks/stripe", app.Payments.WebhookHandler())

	srv := httpserver.New(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.OnShutdown(func(context.Context) error { return hub.Close() }),
		httpserver.OnShutdown(func(context.Context) error {
			app.Messaging.Wait()
			return nil
		}),
	)
	return srv.Run(ctx, r)
}

func newPushSender(ctx context.Context, cfg push.Config, log *slog.Logger) (push.Sender, error) {
	if !cfg.Enabled {
		log.InfoContext(ctx, "push notifications disabled")
		return push.NoopSender{}, nil
	}
	client, err := push.NewFirebaseClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return push.NewFirebaseSender(client, push.WithLogger(log), push.WithBatchSize(cfg.BatchSize)), nil
}

// resolveUser reads the caller's user id. Authentication happens in front of
// this service, which forwards the id in X-User-ID.
func resolveUser(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.Header.Get("X-User-ID"))
	if raw == "" {
		raw = strings.TrimSpace(r.URL.Query().Get("user_id"))
	}
	id, err := bson.ObjectIDFromHex(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", realtime.ErrUnauthorized, err)
	}
	return id.Hex(), nil
}
