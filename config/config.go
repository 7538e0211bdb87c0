package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "CATALOG_CONFIG_FILE"

type catalog struct {
	Source          string        `mapstructure:"source"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	PageSize        int           `mapstructure:"page_size"`
	ImagePolicyFile string        `mapstructure:"image_policy_file"`
}

type consumers struct {
	CatalogGroup string `mapstructure:"catalog_group"`
}

type topics struct {
	Listings string `mapstructure:"listings"`
}

type brokerTLS struct {
	CA   string `mapstructure:"ca"`
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

// Enabled reports whether all TLS files are set.
func (t brokerTLS) Enabled() bool {
	return t.CA != "" && t.Cert != "" && t.Key != ""
}

type broker struct {
	SeedBrokers        []string  `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string  `mapstructure:"schema_registry_urls"`
	TLS                brokerTLS `mapstructure:"tls"`
	Topics             topics    `mapstructure:"topics"`
	Consumers          consumers `mapstructure:"consumers"`
}

// Enabled reports whether kafka ingestion is configured.
func (b broker) Enabled() bool {
	return len(b.SeedBrokers) != 0
}

type Config struct {
	LogLevel       slog.Level `mapstructure:"log_level"`
	HTTPServerAddr string     `mapstructure:"http_server_addr"`
	SQLDB          string     `mapstructure:"sql_db"`
	Catalog        catalog    `mapstructure:"catalog"`
	Broker         broker     `mapstructure:"broker"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("http_server_addr", ":8000")
	v.SetDefault("catalog.refresh_interval", 6*time.Hour)
	v.SetDefault("catalog.page_size", 24)
	v.SetDefault("broker.topics.listings", "listings")
	v.SetDefault("broker.consumers.catalog_group", "catalog")
}

func Load() Config {
	cfg, err := LoadFile(getConfigFilepath())
	if err != nil {
		die(err)
	}
	return cfg
}

// LoadFile reads the config file at path on top of the defaults.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, err
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.UnmarshalExact(&cfg, hook); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	cmdLine.ParseErrorsWhitelist.UnknownFlags = true
	arg := cmdLine.String("config", "/config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	SQLDB=%q

	Catalog:
	Source=%q
	RefreshInterval=%q
	PageSize=%d
	ImagePolicyFile=%q

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	TLS=%t
	Topics:
		Listings=%q
	Consumers:
		CatalogGroup=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		maskDSN(c.SQLDB),
		c.Catalog.Source,
		c.Catalog.RefreshInterval,
		c.Catalog.PageSize,
		c.Catalog.ImagePolicyFile,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.TLS.Enabled(),
		c.Broker.Topics.Listings,
		c.Broker.Consumers.CatalogGroup,
	)
}

// maskDSN hides the password of a postgres url.
func maskDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || scheme+3 > at {
		return dsn
	}
	creds := dsn[scheme+3 : at]
	user, _, ok := strings.Cut(creds, ":")
	if !ok {
		return dsn
	}
	return dsn[:scheme+3] + user + ":***" + dsn[at:]
}
