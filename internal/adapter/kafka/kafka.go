package kafka

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	"github.com/niksmo/pc-catalog/internal/core/domain"
	"github.com/niksmo/pc-catalog/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var ErrTooFewOpts = errors.New("too few options")

// ClientConfig holds connection settings shared by producers,
// consumers and admin clients. TLS is optional.
type ClientConfig struct {
	SeedBrokers []string
	TLS         *tls.Config
}

func (c ClientConfig) opts() []kgo.Opt {
	opts := []kgo.Opt{kgo.SeedBrokers(c.SeedBrokers...)}
	if c.TLS != nil {
		opts = append(opts, kgo.DialTLSConfig(c.TLS))
	}
	return opts
}

type ProducerOpt func(*producerOpts) error

type producerOpts struct {
	cl      ProducerClient
	encoder Encoder
}

func ProducerClientOpt(
	ctx context.Context, cfg ClientConfig, topic string,
) ProducerOpt {
	return func(opts *producerOpts) error {
		cl, err := kgo.NewClient(append(
			cfg.opts(),
			kgo.DefaultProduceTopicAlways(),
			kgo.DefaultProduceTopic(topic),
			kgo.RequiredAcks(kgo.AllISRAcks()),
			kgo.AllowAutoTopicCreation(),
		)...)
		if err != nil {
			return err
		}

		if err := cl.Ping(ctx); err != nil {
			cl.Close()
			return err
		}
		opts.cl = cl
		return nil
	}
}

// ProducerWithClientOpt sets an already created client.
func ProducerWithClientOpt(cl ProducerClient) ProducerOpt {
	return func(opts *producerOpts) error {
		if cl == nil {
			return errors.New("producer client is nil")
		}
		opts.cl = cl
		return nil
	}
}

func ProducerEncoderOpt(encoder Encoder) ProducerOpt {
	return func(opts *producerOpts) error {
		if encoder == nil {
			return errors.New("encoder is nil")
		}
		opts.encoder = encoder
		return nil
	}
}

type ProducerClient interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

type ConsumerClient interface {
	PollFetches(context.Context) kgo.Fetches
	CommitUncommittedOffsets(context.Context) error
	Close()
}

type Encoder interface {
	Encode(v any) ([]byte, error)
}

type Decoder interface {
	Decode(b []byte, v any) error
}

type Serde interface {
	Encoder
	Decoder
}

func makeOp(s ...string) string {
	return strings.Join(s, ".")
}

func opErr(err error, op ...string) error {
	return fmt.Errorf("%s: %w", makeOp(op...), err)
}

func productToSchemaV1(v domain.Product) (s schema.ProductV1) {
	s.ID = v.ID
	s.Title = v.Title
	s.Price = v.Price
	s.CompareAtPrice = v.CompareAtPrice
	s.DiscountPercentage = v.DiscountPercentage
	s.Retailer = v.Retailer
	s.Site = v.Site
	s.Category = v.Category
	s.InStock = v.InStock
	s.URL = v.URL
	s.ImageURL = v.ImageURL
	s.Image.Text = v.Image.Text
	s.Image.Src = v.Image.Src
	s.ProcessedImage = v.ProcessedImage
	s.DetectedCurrency = v.DetectedCurrency
	s.RawPrice = v.RawPrice
	s.RawCompareAtPrice = v.RawCompareAtPrice
	return
}

func schemaV1ToProduct(s schema.ProductV1) (v domain.Product) {
	v.ID = s.ID
	v.Title = s.Title
	v.Price = s.Price
	v.CompareAtPrice = s.CompareAtPrice
	v.DiscountPercentage = s.DiscountPercentage
	v.Retailer = s.Retailer
	v.Site = s.Site
	v.Category = s.Category
	v.InStock = s.InStock
	v.URL = s.URL
	v.ImageURL = s.ImageURL
	v.Image.Text = s.Image.Text
	v.Image.Src = s.Image.Src
	v.ProcessedImage = s.ProcessedImage
	v.DetectedCurrency = s.DetectedCurrency
	v.RawPrice = s.RawPrice
	v.RawCompareAtPrice = s.RawCompareAtPrice
	return
}
