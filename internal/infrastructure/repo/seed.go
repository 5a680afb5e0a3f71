package repo

import (
	"context"

	"github.com/shopspring/decimal"

	"cafe-orders/internal/domain"
)

type ProductStore interface {
	PutProduct(ctx context.Context, p domain.Product) error
	ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error)
}

func product(id, name string, price int64, category, desc string) domain.Product {
	return domain.Product{
		ID:          id,
		Name:        name,
		Price:       decimal.NewFromInt(price),
		Category:    category,
		Description: desc,
		IsAvailable: true,
	}
}

// SeedProducts is the starter menu installed into an empty catalog.
func SeedProducts() []domain.Product {
	const hot, cold, dessert = "Sıcak İçecekler", "Soğuk İçecekler", "Tatlılar"
	return []domain.Product{
		product("turk-kahvesi", "Türk Kahvesi", 30, hot, "Geleneksel lezzet, bol köpüklü."),
		product("latte", "Latte", 45, hot, "Sütlü, yumuşak içimli kahve keyfi."),
		product("espresso", "Espresso", 25, hot, "Kısa ve yoğun."),
		product("cay", "Çay", 15, hot, "Demli Türk çayı."),
		product("sahlep", "Sahlep", 40, hot, "Tarçınlı, geleneksel tat."),
		product("limonata", "Limonata", 35, cold, "Ev yapımı taze limonata."),
		product("portakal-suyu", "Taze Sıkma Portakal Suyu", 40, cold, "Taze sıkılmış portakal."),
		product("ice-latte", "Ice Latte", 50, cold, "Buz gibi latte."),
		product("cheesecake", "Frambuazlı Cheesecake", 65, dessert, "Hafif ve meyveli."),
		product("sufle", "Sufle", 70, dessert, "Akışkan çikolatalı."),
		product("waffle", "Meyveli Waffle", 80, dessert, "Taze meyveli çıtır waffle."),
	}
}

// Seed installs SeedProducts when the catalog is empty and reports whether it did.
func Seed(ctx context.Context, s ProductStore) (bool, error) {
	existing, err := s.ListProducts(ctx, domain.ProductFilter{})
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	for _, p := range SeedProducts() {
		if err := s.PutProduct(ctx, p); err != nil {
			return false, err
		}
	}
	return true, nil
}
