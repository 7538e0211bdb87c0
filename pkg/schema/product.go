package schema

import "github.com/hamba/avro/v2"

type (
	ProductV1 struct {
		ID                 string  `avro:"id"`
		Title              string  `avro:"title"`
		Price              float64 `avro:"price"`
		CompareAtPrice     float64 `avro:"compare_at_price"`
		DiscountPercentage int     `avro:"discount_percentage"`
		Retailer           string  `avro:"retailer"`
		Site               string  `avro:"site"`
		Category           string  `avro:"category"`
		InStock            bool    `avro:"in_stock"`
		URL                string  `avro:"url"`
		ImageURL           string  `avro:"image_url"`
		Image              ImageV1 `avro:"image"`
		ProcessedImage     string  `avro:"processed_image"`
		DetectedCurrency   string  `avro:"detected_currency"`
		RawPrice           string  `avro:"raw_price"`
		RawCompareAtPrice  string  `avro:"raw_compare_at_price"`
	}

	ImageV1 struct {
		Text string `avro:"text"`
		Src  string `avro:"src"`
	}
)

// ProductV1Avro returns the parsed [ProductSchemaTextV1].
// It panics if the schema text is invalid.
func ProductV1Avro() avro.Schema {
	return avro.MustParse(ProductSchemaTextV1)
}
