package imagery

import (
	"testing"

	"github.com/niksmo/pc-catalog/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeStore(t *testing.T) {
	tests := map[string]string{
		"Alityan":       "alityan",
		"GlobalIraq":    "globaliraq",
		"Kolshzin":      "kolshzin",
		"3D-Iraq":       "3d-iraq",
		"Iraq PC Store": "3d-iraq",
		"SpiderNet":     "spniq",
		"SPNIQ":         "spniq",
		"Joker Center":  "jokercenter",
		"Galaxy IQ":     "galaxy iq",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, NormalizeStore(in))
		})
	}
}

func TestResolve(t *testing.T) {
	table := DefaultPolicyTable()

	t.Run("DisabledStoreIgnoresProcessed", func(t *testing.T) {
		p := domain.Product{
			Retailer:       "SpiderNet",
			ImageURL:       "https://spniq.example/gpu.jpg",
			ProcessedImage: "/processed/gpu.png",
		}
		res := Resolve(p, table)
		assert.Equal(t, domain.ImageOriginal, res.Type)
		assert.Equal(t, "https://spniq.example/gpu.jpg", res.URL)
	})

	t.Run("UnknownStore", func(t *testing.T) {
		p := domain.Product{
			Retailer:       "Galaxy IQ",
			Image:          domain.ImageField{Text: "https://galaxy.example/a.jpg"},
			ProcessedImage: "/processed/a.png",
		}
		res := Resolve(p, table)
		assert.Equal(t, domain.ImageOriginal, res.Type)
		assert.Equal(t, "https://galaxy.example/a.jpg", res.URL)
	})

	t.Run("Processed", func(t *testing.T) {
		p := domain.Product{
			Retailer:       "GlobalIraq",
			Category:       "gpu",
			ImageURL:       "https://global.example/a.jpg",
			ProcessedImage: "/processed/a.png",
		}
		res := Resolve(p, table)
		assert.Equal(t, domain.ImageProcessed, res.Type)
		assert.Equal(t, "/processed/a.png", res.URL)
	})

	t.Run("ProcessedMissing", func(t *testing.T) {
		p := domain.Product{
			Retailer: "Alityan",
			Image:    domain.ImageField{Src: "https://alityan.example/src.jpg"},
		}
		res := Resolve(p, table)
		assert.Equal(t, domain.ImageOriginal, res.Type)
		assert.Equal(t, "https://alityan.example/src.jpg", res.URL)
	})

	t.Run("CategoryNotCovered", func(t *testing.T) {
		table := PolicyTable{
			"kolshzin": {Enabled: true, Categories: []string{"GPU"}},
		}
		gpu := domain.Product{
			Retailer: "Kolshzin", Category: "gpu",
			ImageURL: "/a.jpg", ProcessedImage: "/a.png",
		}
		cpu := gpu
		cpu.Category = "CPU"

		assert.Equal(t, domain.ImageProcessed, Resolve(gpu, table).Type)
		assert.Equal(t, domain.ImageOriginal, Resolve(cpu, table).Type)
	})

	t.Run("Placeholder", func(t *testing.T) {
		res := Resolve(domain.Product{Retailer: "Joker"}, table)
		assert.Equal(t, domain.ImagePlaceholder, res.Type)
		assert.Equal(t, PlaceholderPath, res.URL)
	})
}

func TestOriginalURLOrder(t *testing.T) {
	p := domain.Product{
		ImageURL: "/direct.jpg",
		Image:    domain.ImageField{Text: "/text.jpg"},
	}
	url, ok := OriginalURL(p)
	assert.True(t, ok)
	assert.Equal(t, "/direct.jpg", url)

	p.ImageURL = ""
	url, _ = OriginalURL(p)
	assert.Equal(t, "/text.jpg", url)
}

func TestPolicyChecks(t *testing.T) {
	table := DefaultPolicyTable()

	assert.True(t, table.IsBackgroundRemovalEnabled("3D Iraq"))
	assert.False(t, table.IsBackgroundRemovalEnabled("SPNIQ"))
	assert.False(t, table.IsBackgroundRemovalEnabled("Unknown"))

	assert.True(t, table.IsCategoryEnabled("Alityan", "ram"))
	assert.False(t, table.IsCategoryEnabled("SPNIQ", "ram"))
}

func TestNewResolverDefaults(t *testing.T) {
	r := NewResolver(nil)
	p := domain.Product{
		Retailer:       "SPNIQ",
		Category:       "GPU",
		ImageURL:       "/spniq.jpg",
		ProcessedImage: "/spniq.png",
	}
	assert.Equal(t, Resolve(p, DefaultPolicyTable()), r.Resolve(p))
	assert.Equal(t, domain.ImageOriginal, r.Resolve(p).Type)
}
