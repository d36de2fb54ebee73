package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/siyaamtanzeel/Motoshop/configs"
	"github.com/siyaamtanzeel/Motoshop/internal/adapter/cache"
	"github.com/siyaamtanzeel/Motoshop/internal/adapter/gateway"
	httpadapter "github.com/siyaamtanzeel/Motoshop/internal/adapter/http"
	"github.com/siyaamtanzeel/Motoshop/internal/adapter/http/middleware"
	"github.com/siyaamtanzeel/Motoshop/internal/adapter/kafka"
	"github.com/siyaamtanzeel/Motoshop/internal/adapter/queue"
	"github.com/siyaamtanzeel/Motoshop/internal/adapter/repo"
	"github.com/siyaamtanzeel/Motoshop/internal/logging"
	"github.com/siyaamtanzeel/Motoshop/internal/security"
	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
)

type App struct {
	Router *gin.Engine
	Server *http.Server

	cfg       configs.Config
	log       *slog.Logger
	rabbit    *queue.Router
	callbacks *kafka.Consumer
	closers   []func()
}

// OpenDB opens and pings MySQL with the configured pool limits.
func OpenDB(ctx context.Context, cfg configs.Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MySQL.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	}
	if cfg.MySQL.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	}
	if cfg.MySQL.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	}

	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql ping: %w", err)
	}
	return db, nil
}

// InitWithConfig wires every adapter and use case. Close releases what it opened.
func InitWithConfig(ctx context.Context, cfg configs.Config) (*App, error) {
	app := &App{cfg: cfg, log: logging.New("bootstrap")}
	ok := false
	defer func() {
		if !ok {
			app.Close()
		}
	}()

	db, err := OpenDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, func() { _ = db.Close() })

	rdb, err := cache.NewClient(ctx, cache.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, func() { _ = rdb.Close() })

	// infra
	orders := repo.NewMySQLOrderRepo(db)
	bikes := repo.NewMySQLBikeRepo(db)
	users := repo.NewMySQLUserRepo(db)
	journal := repo.NewMySQLCallbackJournal(db)
	news := repo.NewMySQLNewsRepo(db)
	idem := cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)
	statusCache := cache.NewRedisCache(rdb, cfg.Redis.CacheTTL)

	var pub usecase.EventPublisher
	if cfg.Rabbit.URL != "" {
		producer, err := app.setupRabbit(statusCache)
		if err != nil {
			return nil, err
		}
		pub = producer
	} else {
		app.log.Warn("rabbitmq.url empty; status events stay local to the redis view")
	}

	tokens := security.NewTokens(security.TokenConfig{
		Secret:   cfg.Security.JWTSecret,
		Issuer:   cfg.Security.Issuer,
		Audience: cfg.Security.Audience,
		TTL:      cfg.Security.TTL,
	})
	gw := gateway.NewSSLCommerz(gateway.Config{
		StoreID:       cfg.Payment.StoreID,
		StorePassword: cfg.Payment.StorePassword,
		Live:          cfg.Payment.Live,
		APIBase:       cfg.Payment.APIBase,
		PublicURL:     cfg.Payment.PublicURL,
		Timeout:       cfg.Payment.Timeout,
	}, &http.Client{Timeout: cfg.Payment.Timeout})

	events := usecase.NewStatusEvents(statusCache, pub)

	// use cases
	identity := usecase.NewIdentity(users, security.BcryptHasher{Cost: cfg.Security.BcryptCost}, tokens)
	reconcile := usecase.NewReconcilePayment(orders, events)
	callbacks := usecase.NewProcessCallback(reconcile, journal)

	if len(cfg.Kafka.Brokers) > 0 {
		if err := app.setupKafka(callbacks); err != nil {
			return nil, err
		}
	}

	// init handlers + routers + middleware
	h := httpadapter.Handlers{
		Auth: httpadapter.NewAuthHandler(identity),
		Orders: httpadapter.NewOrderHandler(
			usecase.NewCreateOrder(orders, bikes, idem, events, cfg.Payment.Currency),
			usecase.NewQueryOrders(orders, statusCache),
			usecase.NewManageOrders(orders, events),
		),
		Payment: httpadapter.NewPaymentHandler(
			usecase.NewInitiatePayment(orders, users, gw, usecase.PaymentSettings{AttemptTTL: cfg.Payment.AttemptTTL}),
			callbacks,
			cfg.Payment.ClientURL,
			cfg.Payment.Timeout+5*time.Second,
		),
		Catalog: httpadapter.NewCatalogHandler(usecase.NewCatalog(bikes)),
		News:    httpadapter.NewNewsHandler(usecase.NewNews(news)),
		Admin:   httpadapter.NewAdminHandler(usecase.NewAdmin(users, bikes, orders)),
	}
	authz := middleware.NewAuthz(tokens, identity)
	cv := middleware.NewCallbackVerify(security.NewCallbackVerifier(cfg.Payment.StorePassword), cfg.Payment.ClientURL)

	app.Router = httpadapter.NewRouter(h, authz, cv)
	app.Server = &http.Server{
		Addr:         cfg.App.HTTPAddr,
		Handler:      app.Router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ok = true
	return app, nil
}

func (a *App) setupRabbit(statusCache usecase.OrderCache) (*queue.RabbitProducer, error) {
	conn, err := queue.Dial(a.cfg.Rabbit.URL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = conn.Close() })

	pubCh, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	producer, err := queue.NewRabbitProducer(pubCh)
	if err != nil {
		return nil, err
	}

	// consumers get their own channel; confirm mode stays on the publisher's
	subCh, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	go a.watchClose(subCh)

	projection := queue.NewStatusProjection(statusCache)
	router := queue.NewRouter(subCh, queue.WithPrefetch(a.cfg.Rabbit.Prefetch))
	router.Register(queue.QueueStatusProjection, projection.Handler())
	a.rabbit = router
	return producer, nil
}

func (a *App) watchClose(ch *amqp.Channel) {
	if err := <-ch.NotifyClose(make(chan *amqp.Error, 1)); err != nil {
		a.log.Error("amqp channel closed", "err", err)
	}
}

func (a *App) setupKafka(callbacks *usecase.ProcessCallback) error {
	grp, err := kafka.NewGroup(a.cfg.Kafka.Brokers, a.cfg.Kafka.GroupID)
	if err != nil {
		return fmt.Errorf("kafka group: %w", err)
	}
	a.closers = append(a.closers, func() { _ = grp.Close() })

	h := kafka.NewCallbackReconciler(callbacks)
	a.callbacks = kafka.NewConsumer(grp, []string{a.cfg.Kafka.TopicCallbacks}, h.Handle)
	return nil
}

// Run serves HTTP and the background consumers until ctx is cancelled,
// then shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	if a.rabbit != nil {
		if err := a.rabbit.Start(ctx); err != nil {
			return fmt.Errorf("start rabbit router: %w", err)
		}
	}
	if a.callbacks != nil {
		go func() {
			if err := a.callbacks.Start(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, sarama.ErrClosedConsumerGroup) {
				a.log.Error("kafka consumer stopped", "err", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("listening", "addr", a.Server.Addr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return a.Server.Shutdown(sctx)
}

// Close releases connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
