package schema

const ProductSchemaTextV1 = `{
	"type": "record",
	"namespace": "catalog",
	"name": "product",
	"fields": [
		{"name": "id", "type": "string"},
		{"name": "title", "type": "string"},
		{"name": "price", "type": "double"},
		{"name": "compare_at_price", "type": "double", "default": 0},
		{"name": "discount_percentage", "type": "int", "default": 0},
		{"name": "retailer", "type": "string"},
		{"name": "site", "type": "string", "default": ""},
		{"name": "category", "type": "string"},
		{"name": "in_stock", "type": "boolean", "default": true},
		{"name": "url", "type": "string"},
		{"name": "image_url", "type": "string", "default": ""},
		{
			"name": "image",
			"type": {
				"type": "record",
				"name": "image",
				"fields": [
					{"name": "text", "type": "string"},
					{"name": "src", "type": "string"}
				]
			}
		},
		{"name": "processed_image", "type": "string", "default": ""},
		{"name": "detected_currency", "type": "string", "default": "IQD"},
		{"name": "raw_price", "type": "string", "default": ""},
		{"name": "raw_compare_at_price", "type": "string", "default": ""}
	]
}`
