package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/niksmo/pc-catalog/config"
	"github.com/niksmo/pc-catalog/internal/adapter"
	"github.com/niksmo/pc-catalog/internal/adapter/catalogfile"
	"github.com/niksmo/pc-catalog/internal/adapter/kafka"
	"github.com/niksmo/pc-catalog/pkg/schema"
	"github.com/niksmo/pc-catalog/pkg/sigctx"
	"github.com/spf13/pflag"
)

const defaultBatchSize = 500

func main() {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg := config.Load()
	location, batchSize := getFlagsValues(cfg.Catalog.Source)

	if err := run(sigCtx, cfg, location, batchSize); err != nil {
		slog.Error("failed to ingest catalog", "err", err)
		fallDown()
	}
}

// getFlagsValues returns the catalog location, the first positional
// argument or the configured source, and the batch size.
func getFlagsValues(source string) (string, int) {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	_ = cmdLine.String("config", "", "config file")
	batchSize := cmdLine.IntP("batch-size", "b", defaultBatchSize, "records per produce call")
	_ = cmdLine.Parse(os.Args[1:])

	if cmdLine.NArg() > 0 {
		source = cmdLine.Arg(0)
	}
	if *batchSize <= 0 {
		*batchSize = defaultBatchSize
	}
	return source, *batchSize
}

func run(
	ctx context.Context, cfg config.Config, location string, batchSize int,
) error {
	if !cfg.Broker.Enabled() {
		return errors.New("broker.seed_brokers is empty")
	}

	source, err := catalogfile.NewSource(location)
	if err != nil {
		return err
	}

	start := time.Now()
	c, err := source.LoadCatalog(ctx)
	if err != nil {
		return err
	}
	slog.Info("catalog is loaded", "nProducts", len(c.Products), "nSites", len(c.Sites))

	producer, err := newProducer(ctx, cfg)
	if err != nil {
		return err
	}
	defer producer.Close()

	for i := 0; i < len(c.Products); i += batchSize {
		batch := c.Products[i:min(i+batchSize, len(c.Products))]
		if err := producer.ProduceProducts(ctx, batch); err != nil {
			return err
		}
	}

	slog.Info(
		"catalog is published",
		"topic", cfg.Broker.Topics.Listings,
		"nProducts", len(c.Products),
		"elapsed", time.Since(start).String(),
	)
	return nil
}

func newProducer(
	ctx context.Context, cfg config.Config,
) (kafka.ProductsProducer, error) {
	clientCfg := kafka.ClientConfig{SeedBrokers: cfg.Broker.SeedBrokers}
	if tls := cfg.Broker.TLS; tls.Enabled() {
		tlsCfg, err := adapter.MakeTLSConfig(tls.CA, tls.Cert, tls.Key)
		if err != nil {
			return kafka.ProductsProducer{}, err
		}
		clientCfg.TLS = tlsCfg
	}

	registry, err := schema.NewRegistryFromURLs(cfg.Broker.SchemaRegistryURLs...)
	if err != nil {
		return kafka.ProductsProducer{}, err
	}

	serde, err := schema.NewSerdeProductV1(
		ctx,
		schema.SubjectOpt(cfg.Broker.Topics.Listings+"-value"),
		schema.SchemaIdentifierOpt(registry),
	)
	if err != nil {
		return kafka.ProductsProducer{}, fmt.Errorf("schema: %w", err)
	}

	return kafka.NewProductsProducer(
		kafka.ProducerClientOpt(ctx, clientCfg, cfg.Broker.Topics.Listings),
		kafka.ProducerEncoderOpt(serde),
	)
}

func fallDown() {
	os.Exit(2)
}
