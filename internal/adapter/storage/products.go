package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/niksmo/pc-catalog/internal/core/domain"
	"github.com/niksmo/pc-catalog/internal/core/port"
)

var _ port.ProductsStorage = (*ProductsRepository)(nil)

var ErrNotFound = domain.ErrProductNotFound

const upsertProductQuery = `
	INSERT INTO products (
		id, title, price, compare_at_price, discount_percentage,
		retailer, site, category, in_stock, url,
		image_url, image_text, image_src, processed_image,
		detected_currency, raw_price, raw_compare_at_price
	)
	VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9,
		$10, $11, $12, $13, $14, $15, $16, $17
	)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		price = EXCLUDED.price,
		compare_at_price = EXCLUDED.compare_at_price,
		discount_percentage = EXCLUDED.discount_percentage,
		retailer = EXCLUDED.retailer,
		site = EXCLUDED.site,
		category = EXCLUDED.category,
		in_stock = EXCLUDED.in_stock,
		url = EXCLUDED.url,
		image_url = EXCLUDED.image_url,
		image_text = EXCLUDED.image_text,
		image_src = EXCLUDED.image_src,
		processed_image = EXCLUDED.processed_image,
		detected_currency = EXCLUDED.detected_currency,
		raw_price = EXCLUDED.raw_price,
		raw_compare_at_price = EXCLUDED.raw_compare_at_price,
		updated_at = now();
`

const selectProductsQuery = `
	SELECT
		id, title, price, compare_at_price, discount_percentage,
		retailer, site, category, in_stock, url,
		image_url, image_text, image_src, processed_image,
		detected_currency, raw_price, raw_compare_at_price
	FROM products
`

type ProductsRepository struct {
	sqldb sqldb
}

func NewProductsRepository(sqldb sqldb) ProductsRepository {
	return ProductsRepository{sqldb}
}

// StoreProducts upserts products in one transaction.
func (r ProductsRepository) StoreProducts(
	ctx context.Context, vs []domain.Product,
) (storeErr error) {
	const op = "ProductsRepository.StoreProducts"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tx, err := r.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}

	defer func() {
		if storeErr == nil {
			if err := tx.Commit(); err != nil {
				storeErr = fmt.Errorf("%s: failed to commit: %w", op, err)
			}
			return
		}

		err := tx.Rollback()
		if err != nil {
			log.Error("failed to rollback tx", "err", err)
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertProductQuery)
	if err != nil {
		return fmt.Errorf("%s: failed to prepare stmt: %w", op, err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			log.Error("failed to close prepared stmt", "err", err)
		}
	}()

	for _, v := range vs {
		_, err := stmt.ExecContext(ctx,
			v.ID, v.Title, v.Price, v.CompareAtPrice, v.DiscountPercentage,
			v.Retailer, v.Site, v.Category, v.InStock, v.URL,
			v.ImageURL, v.Image.Text, v.Image.Src, v.ProcessedImage,
			v.DetectedCurrency, v.RawPrice, v.RawCompareAtPrice,
		)
		if err != nil {
			return fmt.Errorf("%s: failed to exec: %w", op, err)
		}
	}

	log.Debug("products are stored", "nProducts", len(vs))
	return nil
}

// ReadProducts returns all products in first insertion order.
func (r ProductsRepository) ReadProducts(
	ctx context.Context,
) (vs []domain.Product, err error) {
	const op = "ProductsRepository.ReadProducts"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.sqldb.QueryContext(ctx, selectProductsQuery+" ORDER BY seq ASC;")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", "err", err)
		}
	}()

	for rows.Next() {
		v, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		vs = append(vs, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}

// ReadProduct returns the product with the given ID.
func (r ProductsRepository) ReadProduct(
	ctx context.Context, id string,
) (domain.Product, error) {
	const op = "ProductsRepository.ReadProduct"

	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	row := r.sqldb.QueryRowContext(ctx, selectProductsQuery+" WHERE id = $1;", id)
	v, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (v domain.Product, err error) {
	err = s.Scan(
		&v.ID, &v.Title, &v.Price, &v.CompareAtPrice, &v.DiscountPercentage,
		&v.Retailer, &v.Site, &v.Category, &v.InStock, &v.URL,
		&v.ImageURL, &v.Image.Text, &v.Image.Src, &v.ProcessedImage,
		&v.DetectedCurrency, &v.RawPrice, &v.RawCompareAtPrice,
	)
	return v, err
}
