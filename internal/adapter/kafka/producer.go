package kafka

import (
	"context"
	"log/slog"

	"github.com/niksmo/pc-catalog/internal/core/domain"
	"github.com/niksmo/pc-catalog/internal/core/port"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.ProductsProducer = ProductsProducer{}

// A producer is used for composition.
//
// Producing records to kafka broker and closing underlying [kgo.Client].
type producer struct {
	opPrefix string
	cl       ProducerClient
}

func (p producer) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p producer) produce(
	ctx context.Context, rs ...*kgo.Record,
) error {
	const op = "produce"
	res := p.cl.ProduceSync(ctx, rs...)
	if err := res.FirstErr(); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

// A ProductsProducer produces normalized [domain.Product] listings
// keyed by product ID.
type ProductsProducer struct {
	producer producer
	encoder  Encoder
	opPrefix string
}

func NewProductsProducer(
	opts ...ProducerOpt,
) (ProductsProducer, error) {
	const op = "NewProductsProducer"

	if len(opts) != 2 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return ProductsProducer{}, opErr(err, op)
		}
	}

	opPrefix := "ProductsProducer"
	p := producer{
		opPrefix: opPrefix,
		cl:       options.cl,
	}

	return ProductsProducer{
		encoder:  options.encoder,
		producer: p,
		opPrefix: opPrefix,
	}, nil
}

func (p ProductsProducer) Close() {
	p.producer.close()
}

func (p ProductsProducer) ProduceProducts(
	ctx context.Context, vs []domain.Product,
) error {
	const op = "ProduceProducts"

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	if len(vs) == 0 {
		return nil
	}

	rs, err := p.createRecords(vs)
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}

	if err := p.producer.produce(ctx, rs...); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	slog.Debug(
		"products are produced",
		"op", makeOp(p.opPrefix, op), "nProducts", len(rs),
	)
	return nil
}

func (p ProductsProducer) createRecords(
	vs []domain.Product,
) (rs []*kgo.Record, err error) {
	const op = "createRecords"

	rs = make([]*kgo.Record, 0, len(vs))
	for _, v := range vs {
		s := productToSchemaV1(v)
		b, err := p.encoder.Encode(s)
		if err != nil {
			return nil, opErr(err, p.opPrefix, op)
		}
		rs = append(rs, &kgo.Record{Key: []byte(s.ID), Value: b})
	}

	return rs, nil
}
