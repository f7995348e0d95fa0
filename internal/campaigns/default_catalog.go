package campaigns

import (
	"github.com/google/uuid"

	"github.com/pooladgaran/campane-backend/internal/pricing"
)

// catalogNamespace seeds deterministic IDs for the built-in catalog so
// clients keep stable product ids across restarts.
var catalogNamespace = uuid.MustParse("7a1d2f60-9c3b-4e8d-b1a4-5f0c6d8e9a21")

type defaultProduct struct {
	name  string
	price int64
}

// defaultProducts is the fallback catalog served when a campaign has no
// products of its own (or the products table is missing entirely, which
// happens on fresh environments before seeding). Prices are whole toman.
var defaultProducts = []defaultProduct{
	{name: "دریل شارژی", price: 4_500_000},
	{name: "فرز آهنگری", price: 3_200_000},
	{name: "اره عمود بر", price: 2_800_000},
	{name: "پیچ گوشتی برقی", price: 1_900_000},
	{name: "مینی فرز", price: 2_400_000},
	{name: "دریل چکشی", price: 5_100_000},
}

// DefaultCatalog returns the built-in product set as pricing catalog entries.
func DefaultCatalog() []pricing.CatalogEntry {
	entries := make([]pricing.CatalogEntry, 0, len(defaultProducts))
	for _, product := range defaultProducts {
		entries = append(entries, pricing.CatalogEntry{
			ID:        uuid.NewSHA1(catalogNamespace, []byte(product.name)),
			Name:      product.name,
			UnitPrice: product.price,
		})
	}
	return entries
}
