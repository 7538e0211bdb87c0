package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/niksmo/pc-catalog/internal/core/domain"
	"github.com/niksmo/pc-catalog/internal/core/port"
	"github.com/niksmo/pc-catalog/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

const slowDownDelay = time.Second

type ConsumerOpt func(*consumerOpts) error

func ConsumerClientOpt(
	cfg ClientConfig, topic, group string,
) ConsumerOpt {
	return func(co *consumerOpts) error {
		cl, err := kgo.NewClient(append(
			cfg.opts(),
			kgo.ConsumeTopics(topic),
			kgo.ConsumerGroup(group),
			kgo.DisableAutoCommit(),
		)...)
		if err != nil {
			return err
		}
		co.cl = cl
		return nil
	}
}

// ConsumerWithClientOpt sets an already created client.
func ConsumerWithClientOpt(cl ConsumerClient) ConsumerOpt {
	return func(co *consumerOpts) error {
		if cl == nil {
			return errors.New("consumer client is nil")
		}
		co.cl = cl
		return nil
	}
}

func ConsumerDecoderOpt(decoder Decoder) ConsumerOpt {
	return func(co *consumerOpts) error {
		if decoder == nil {
			return errors.New("decoder is nil")
		}
		co.decoder = decoder
		return nil
	}
}

func ProductsConsumerSaverOpt(ps port.ProductsSaver) ConsumerOpt {
	return func(co *consumerOpts) error {
		if ps == nil {
			return errors.New("products saver is nil")
		}
		co.productsSaver = ps
		return nil
	}
}

type consumerOpts struct {
	cl            ConsumerClient
	decoder       Decoder
	productsSaver port.ProductsSaver
}

func (co *consumerOpts) apply(opts ...ConsumerOpt) error {
	for _, opt := range opts {
		if err := opt(co); err != nil {
			return err
		}
	}
	if co.cl == nil || co.decoder == nil || co.productsSaver == nil {
		return ErrTooFewOpts
	}
	return nil
}

type consumerParent interface {
	processFetches(context.Context, kgo.Fetches) error
}

// A consumer is used for composition.
//
// Fetching records from kafka broker, committing offsets
// and closing underlying [kgo.Client].
type consumer struct {
	opPrefix      string
	parent        consumerParent
	cl            ConsumerClient
	slowDownTimer *time.Timer
}

func (c consumer) run(ctx context.Context) {
	const op = "run"
	log := slog.With("op", makeOp(c.opPrefix, op))

	log.Info("running")

	for {
		select {
		case <-ctx.Done():
			return
		default:
			err := c.consume(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					continue
				}
				log.Error("failed to consume", "err", err)
				c.slowDown(ctx)
			}
		}
	}
}

func (c consumer) consume(ctx context.Context) error {
	const op = "consume"

	fetches, err := c.pollFetches(ctx)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}

	if fetches.Empty() {
		return nil
	}

	err = c.parent.processFetches(ctx, fetches)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}

	err = c.commit(ctx)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}
	return nil
}

func (c consumer) pollFetches(ctx context.Context) (kgo.Fetches, error) {
	const op = "pollFetches"

	fetches := c.cl.PollFetches(ctx)
	if err := fetches.Err0(); err != nil {
		return nil, opErr(err, c.opPrefix, op)
	}

	err := c.handleFetchesErrs(fetches)
	if err != nil {
		return nil, opErr(err, c.opPrefix, op)
	}

	return fetches, nil
}

func (c consumer) handleFetchesErrs(fetches kgo.Fetches) error {
	var errsMessages []string
	fetches.EachError(func(t string, p int32, err error) {
		if err != nil {
			errMsg := fmt.Sprintf(
				"topic %q partition %d: %q", t, p, err,
			)
			errsMessages = append(errsMessages, errMsg)
		}
	})

	if len(errsMessages) != 0 {
		return errors.New(strings.Join(errsMessages, "; "))
	}
	return nil
}

func (c consumer) slowDown(ctx context.Context) {
	c.slowDownTimer.Reset(slowDownDelay)
	select {
	case <-ctx.Done():
	case <-c.slowDownTimer.C:
	}
}

func (c consumer) commit(ctx context.Context) error {
	const op = "commit"

	err := ctx.Err()
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}

	err = c.cl.CommitUncommittedOffsets(ctx)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}
	return nil
}

func (c consumer) close() {
	const op = "close"
	log := slog.With("op", makeOp(c.opPrefix, op))

	c.slowDownTimer.Stop()

	log.Info("closing consumer...")
	c.cl.Close()
	log.Info("consumer is closed")
}

// A ProductsConsumer consumes normalized listings
// then sends them to the core service for save.
type ProductsConsumer struct {
	opPrefix string
	consumer consumer
	saver    port.ProductsSaver
	decoder  Decoder
}

func NewProductsConsumer(opts ...ConsumerOpt) (pc ProductsConsumer, err error) {
	const op = "NewProductsConsumer"

	var options consumerOpts
	if err := options.apply(opts...); err != nil {
		return pc, opErr(err, op)
	}

	opPrefix := "ProductsConsumer"

	pc.opPrefix = opPrefix
	pc.saver = options.productsSaver
	pc.decoder = options.decoder

	pc.consumer = consumer{
		opPrefix:      opPrefix,
		parent:        pc,
		cl:            options.cl,
		slowDownTimer: time.NewTimer(0),
	}

	return pc, nil
}

func (c ProductsConsumer) Run(ctx context.Context) {
	c.consumer.run(ctx)
}

func (c ProductsConsumer) Close() {
	c.consumer.close()
}

func (c ProductsConsumer) processFetches(
	ctx context.Context, fetches kgo.Fetches,
) error {
	const op = "processFetches"

	values := c.toDomain(fetches)
	if len(values) == 0 {
		return nil
	}

	err := c.saver.SaveProducts(ctx, values)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}
	return nil
}

// toDomain skips records that cannot be decoded.
func (c ProductsConsumer) toDomain(
	fetches kgo.Fetches,
) (vs []domain.Product) {
	const op = "toDomain"
	log := slog.With("op", makeOp(c.opPrefix, op))

	fetches.EachRecord(func(r *kgo.Record) {
		v, err := c.decodeRecValue(r)
		if err != nil {
			log.Error(
				"failed to decode value",
				"err", opErr(err, c.opPrefix, op),
				"offset", r.Offset,
			)
			return
		}
		vs = append(vs, v)
	})
	return vs
}

func (c ProductsConsumer) decodeRecValue(
	r *kgo.Record,
) (domain.Product, error) {
	var s schema.ProductV1
	err := c.decoder.Decode(r.Value, &s)
	if err != nil {
		return domain.Product{}, err
	}
	return schemaV1ToProduct(s), nil
}
