package main

import (
	"fmt"
	"os"
	"time"

	"github.com/niksmo/pc-catalog/config"
	"github.com/niksmo/pc-catalog/internal/adapter"
	"github.com/niksmo/pc-catalog/internal/adapter/kafka"
	"github.com/niksmo/pc-catalog/pkg/sigctx"
)

const (
	partitions        = 3
	replicationFactor = 3
	minInsyncReplicas = "1"
	compact           = "compact"
)

func main() {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg := config.Load()
	if !cfg.Broker.Enabled() {
		printFail(fmt.Errorf("broker.seed_brokers is empty"))
		os.Exit(2)
	}

	clientCfg := kafka.ClientConfig{SeedBrokers: cfg.Broker.SeedBrokers}
	if tls := cfg.Broker.TLS; tls.Enabled() {
		tlsCfg, err := adapter.MakeTLSConfig(tls.CA, tls.Cert, tls.Key)
		if err != nil {
			printFail(err)
			os.Exit(2)
		}
		clientCfg.TLS = tlsCfg
	}

	maker, closeMaker, err := kafka.NewTopicMaker(clientCfg)
	if err != nil {
		printFail(err)
		os.Exit(2)
	}
	defer closeMaker()

	printStart(cfg)
	defer printComplete(time.Now())

	// listings are keyed by product ID, the latest listing wins
	err = maker.MakeTopics(sigCtx, kafka.TopicSpec{
		Name:              cfg.Broker.Topics.Listings,
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		CleanupPolicy:     compact,
		MinInsyncReplicas: minInsyncReplicas,
	})
	if err != nil {
		printFail(err)
		return
	}
}

func printStart(cfg config.Config) {
	fmt.Printf(`initializing topics...
	- %q

`,
		cfg.Broker.Topics.Listings,
	)
}

func printComplete(start time.Time) {
	fmt.Printf("\ncomplete in %s\n", time.Since(start))
}

func printFail(err error) {
	fmt.Printf("failed to create topics: \n%s\n", err)
}
