// internal/platform/di/storefront/dev_seed.go
package storefront

import (
	"time"

	productdom "cosmetica/internal/domain/product"
)

// devProducts is the catalog served with STORE_BACKEND=memory.
func devProducts() []productdom.Product {
	base := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	day := 24 * time.Hour
	return []productdom.Product{
		{ID: "rose-toner", Name: "Rose Water Toner", Brand: "Aura", Category: "skincare", Price: 24, Image: "/images/rose-toner.jpg", InStock: true, CreatedAt: base,
			Description: "Alcohol-free toner with Damask rose water."},
		{ID: "night-cream", Name: "Ceramide Night Cream", Brand: "Aura", Category: "skincare", Price: 42, Image: "/images/night-cream.jpg", InStock: true, CreatedAt: base.Add(day),
			Description: "Rich overnight moisturizer with ceramides and squalane."},
		{ID: "matte-lip", Name: "Velvet Matte Lipstick", Brand: "Velour", Category: "makeup", Price: 18, Image: "/images/matte-lip.jpg", InStock: true, CreatedAt: base.Add(2 * day),
			Description: "Long-wear matte finish in twelve shades."},
		{ID: "brow-gel", Name: "Tinted Brow Gel", Brand: "Velour", Category: "makeup", Price: 16, Image: "/images/brow-gel.jpg", InStock: true, CreatedAt: base.Add(3 * day)},
		{ID: "vit-c-serum", Name: "Vitamin C Serum", Brand: "Lumen", Category: "skincare", Price: 55, Image: "/images/vit-c-serum.jpg", InStock: false, CreatedAt: base.Add(4 * day),
			Description: "15% ascorbic acid brightening serum."},
		{ID: "hair-oil", Name: "Argan Hair Oil", Brand: "Lumen", Category: "haircare", Price: 29, Image: "/images/hair-oil.jpg", InStock: true, CreatedAt: base.Add(5 * day)},
	}
}
