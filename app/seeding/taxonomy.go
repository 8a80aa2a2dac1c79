package seeding

import "github.com/tabrima/storefront/models"

// iconUpdate assigns an icon to one of the store's first categories.
type iconUpdate struct {
	Name string
	Icon string
}

// The first five categories keep their hand-written descriptions on
// reseed: only the icon is refreshed.
var iconUpdates = []iconUpdate{
	{Name: "Soins Visage", Icon: "bi-person-hearts"},
	{Name: "Soins Corps", Icon: "bi-droplet-half"},
	{Name: "Cheveux", Icon: "bi-scissors"},
	{Name: "Parfums", Icon: "bi-wind"},
	{Name: "Accessoires", Icon: "bi-gem"},
}

var bodyCareCategories = []models.Category{
	{Name: "Gommages & Tabrima", Description: "Gommages traditionnels et mélanges Tabrima", Icon: "bi-stars"},
	{Name: "Huiles Naturelles", Description: "Huiles de massage et soins hydratants", Icon: "bi-flower1"},
	{Name: "Savons Artisanaux", Description: "Savons naturels et gommants", Icon: "bi-box-seam"},
	{Name: "Kits Bien-être", Description: "Coffrets complets pour rituels de beauté", Icon: "bi-gift"},
}

func defaultDescription(name string) string {
	return "Gamme de produits pour " + name
}
