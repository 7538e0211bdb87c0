package catalogfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/niksmo/pc-catalog/internal/core/domain"
	"github.com/niksmo/pc-catalog/internal/core/ingest"
	"github.com/spf13/cast"
)

var ErrMalformed = errors.New("malformed catalog file")

type rawSite struct {
	LastUpdated any             `json:"last_updated"`
	Products    []ingest.Record `json:"products"`
}

// Decode reads a catalog file of the form
//
//	{"last_updated": ..., "total_products": ..., "sites": {"name": {...}}}
//
// Sites keep their file order.
func Decode(r io.Reader) (domain.Catalog, error) {
	const op = "catalogfile.Decode"

	dec := json.NewDecoder(r)
	c, err := decodeCatalog(dec)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func decodeCatalog(dec *json.Decoder) (c domain.Catalog, err error) {
	if err := expectDelim(dec, '{'); err != nil {
		return c, err
	}

	for dec.More() {
		key, err := nextKey(dec)
		if err != nil {
			return c, err
		}

		switch key {
		case "last_updated":
			var v any
			if err := dec.Decode(&v); err != nil {
				return c, err
			}
			c.LastUpdated = cast.ToString(v)
		case "sites":
			if err := decodeSites(dec, &c); err != nil {
				return c, err
			}
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return c, err
			}
		}
	}

	return c, expectDelim(dec, '}')
}

func decodeSites(dec *json.Decoder, c *domain.Catalog) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("%w: sites must be an object, got %v", ErrMalformed, tok)
	}

	for dec.More() {
		name, err := nextKey(dec)
		if err != nil {
			return err
		}

		var site rawSite
		if err := dec.Decode(&site); err != nil {
			return fmt.Errorf("site %q: %w", name, err)
		}

		ps := ingest.NormalizeAll(site.Products, name)
		c.Products = append(c.Products, ps...)
		c.Sites = append(c.Sites, domain.SiteStatus{
			Name:         name,
			LastUpdated:  cast.ToString(site.LastUpdated),
			ProductCount: len(ps),
		})
	}

	return expectDelim(dec, '}')
}

func nextKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected object key, got %v", ErrMalformed, tok)
	}
	return key, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: expected %q, got %v", ErrMalformed, want, tok)
	}
	return nil
}
