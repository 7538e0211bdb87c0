package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/niksmo/pc-catalog/config"
	"github.com/niksmo/pc-catalog/internal/adapter"
	"github.com/niksmo/pc-catalog/internal/adapter/catalogfile"
	"github.com/niksmo/pc-catalog/internal/adapter/httphandler"
	"github.com/niksmo/pc-catalog/internal/adapter/kafka"
	"github.com/niksmo/pc-catalog/internal/adapter/storage"
	"github.com/niksmo/pc-catalog/internal/core/imagery"
	"github.com/niksmo/pc-catalog/internal/core/port"
	"github.com/niksmo/pc-catalog/internal/core/service"
	"github.com/niksmo/pc-catalog/pkg/schema"
)

type outbound struct {
	source   port.CatalogSource
	storage  port.ProductsStorage
	producer port.ProductsProducer
}

type App struct {
	ctx        context.Context
	cfg        config.Config
	images     imagery.Resolver
	brokerCfg  kafka.ClientConfig
	serde      schema.Serde
	sqldb      *storage.SQLDB
	producer   *kafka.ProductsProducer
	consumer   *kafka.ProductsConsumer
	outbound   outbound
	service    service.Service
	httpServer httphandler.HTTPServer
}

func New(ctx context.Context, cfg config.Config) *App {
	app := &App{ctx: ctx, cfg: cfg}

	app.initLogger()
	app.initImagePolicy()
	app.initSource()
	app.initStorage()
	app.initBroker()
	app.initCoreService()
	app.initConsumer()
	app.initInboundAdapters()

	return app
}

func (app *App) initLogger() {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}

func (app *App) initImagePolicy() {
	const op = "App.initImagePolicy"

	table, err := catalogfile.LoadPolicyTable(app.cfg.Catalog.ImagePolicyFile)
	if err != nil {
		app.fallDown(op, err)
	}
	app.images = imagery.NewResolver(table)
}

func (app *App) initSource() {
	const op = "App.initSource"

	if app.cfg.Catalog.Source == "" {
		slog.Warn("catalog source is not configured", "op", op)
		return
	}

	source, err := catalogfile.NewSource(app.cfg.Catalog.Source)
	if err != nil {
		app.fallDown(op, err)
	}
	app.outbound.source = source
}

func (app *App) initStorage() {
	const op = "App.initStorage"

	if app.cfg.SQLDB == "" {
		slog.Info("sql storage is disabled", "op", op)
		return
	}

	sqldb, err := storage.NewSQLDB(app.ctx, app.cfg.SQLDB)
	if err != nil {
		app.fallDown(op, err)
	}
	app.sqldb = &sqldb
	app.outbound.storage = storage.NewProductsRepository(sqldb)
}

func (app *App) initBroker() {
	const op = "App.initBroker"
	broker := app.cfg.Broker

	if !broker.Enabled() {
		slog.Info("listings ingestion is disabled", "op", op)
		return
	}

	app.brokerCfg = kafka.ClientConfig{SeedBrokers: broker.SeedBrokers}
	if broker.TLS.Enabled() {
		tlsCfg, err := adapter.MakeTLSConfig(
			broker.TLS.CA, broker.TLS.Cert, broker.TLS.Key,
		)
		if err != nil {
			app.fallDown(op, err)
		}
		app.brokerCfg.TLS = tlsCfg
	}

	registry, err := schema.NewRegistryFromURLs(broker.SchemaRegistryURLs...)
	if err != nil {
		app.fallDown(op, err)
	}

	serde, err := schema.NewSerdeProductV1(
		app.ctx,
		schema.SubjectOpt(broker.Topics.Listings+"-value"),
		schema.SchemaIdentifierOpt(registry),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.serde = serde

	producer, err := kafka.NewProductsProducer(
		kafka.ProducerClientOpt(app.ctx, app.brokerCfg, broker.Topics.Listings),
		kafka.ProducerEncoderOpt(serde),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.producer = &producer
	app.outbound.producer = producer
}

func (app *App) initCoreService() {
	app.service = service.New(
		app.outbound.source,
		app.outbound.storage,
		app.outbound.producer,
		app.images,
	)
}

func (app *App) initConsumer() {
	const op = "App.initConsumer"
	broker := app.cfg.Broker

	if app.serde == nil {
		return
	}

	consumer, err := kafka.NewProductsConsumer(
		kafka.ConsumerClientOpt(
			app.brokerCfg,
			broker.Topics.Listings,
			broker.Consumers.CatalogGroup,
		),
		kafka.ConsumerDecoderOpt(app.serde),
		kafka.ProductsConsumerSaverOpt(app.service),
	)
	if err != nil {
		app.fallDown(op, err)
	}
	app.consumer = &consumer
}

func (app *App) initInboundAdapters() {
	addr := app.cfg.HTTPServerAddr
	mux := http.NewServeMux()
	httphandler.RegisterCatalog(mux, app.service, app.cfg.Catalog.PageSize)
	httphandler.RegisterStatus(mux, app.service)
	httphandler.RegisterListings(mux, app.service)

	handler := httphandler.AllowJSON(mux)
	app.httpServer = httphandler.NewHTTPServer(addr, handler)
}

// Run loads the initial catalog then starts serving.
func (app *App) Run(stopFn context.CancelFunc) {
	const op = "App.Run"
	log := slog.With("op", op)

	if err := app.service.Restore(app.ctx); err != nil {
		log.Error("failed to restore catalog", "err", err)
	}

	if err := app.service.Refresh(app.ctx); err != nil {
		log.Error("failed to load catalog", "err", err)
	}

	go app.httpServer.Run(stopFn)
	go app.service.RunRefresher(app.ctx, app.cfg.Catalog.RefreshInterval)

	if app.consumer != nil {
		go app.consumer.Run(app.ctx)
	}

	log.Info("application is running")
}

func (app *App) Close(ctx context.Context) {
	slog.Info("application is closing...")

	app.httpServer.Close(ctx)

	if app.consumer != nil {
		app.consumer.Close()
	}
	if app.producer != nil {
		app.producer.Close()
	}
	if app.sqldb != nil {
		app.sqldb.Close()
	}

	slog.Info("application is closed")
}

func (app *App) fallDown(op string, err error) {
	panic(fmt.Errorf("%s: %w", op, err))
}
