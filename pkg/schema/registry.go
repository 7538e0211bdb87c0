package schema

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/sr"
)

var _ SchemaIdentifier = Registry{}

type schemaCreator interface {
	CreateSchema(
		ctx context.Context, subject string, s sr.Schema,
	) (sr.SubjectSchema, error)
}

// Registry determines schema IDs by registering avro schemas
// in a schema registry. Registering an existing schema returns its ID.
type Registry struct {
	client schemaCreator
}

func NewRegistry(client schemaCreator) Registry {
	return Registry{client}
}

// NewRegistryFromURLs creates a schema registry client for the urls.
func NewRegistryFromURLs(urls ...string) (Registry, error) {
	const op = "NewRegistryFromURLs"

	client, err := sr.NewClient(sr.URLs(urls...))
	if err != nil {
		return Registry{}, fmt.Errorf("%s: %w", op, err)
	}
	return Registry{client}, nil
}

func (r Registry) DetermineID(
	ctx context.Context, subject, schemaText string,
) (int, error) {
	const op = "Registry.DetermineID"
	log := slog.With("op", op)

	ss, err := r.client.CreateSchema(
		ctx, subject, sr.Schema{Type: sr.TypeAvro, Schema: schemaText},
	)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	log.Info(
		"schema is registered",
		"subject", ss.Subject, "version", ss.Version, "id", ss.ID,
	)
	return ss.ID, nil
}
