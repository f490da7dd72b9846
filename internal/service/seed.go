package service

import "stationers/internal/domain"

// SeedCatalog стартовый ассортимент магазина (цены в пайсах)
func SeedCatalog() []domain.Product {
	return []domain.Product{
		{Name: "Ball Pen Pack (10)", Description: "Smooth blue ink ball pens for everyday writing.", Category: domain.CategoryWriting, Price: 12000, StockQuantity: 50, ImageURL: "/assets/generated/ball-pens.dim_400x300.png"},
		{Name: "Fountain Pen", Description: "Classic fountain pen with a fine steel nib.", Category: domain.CategoryWriting, Price: 45000, StockQuantity: 12, ImageURL: "/assets/generated/fountain-pen.dim_400x300.png"},
		{Name: "HB Pencils (12)", Description: "Graphite pencils for school and sketching.", Category: domain.CategoryWriting, Price: 6000, StockQuantity: 80, ImageURL: "/assets/generated/pencils.dim_400x300.png"},
		{Name: "A4 Copier Paper Ream", Description: "500 sheets of 75 gsm bright white paper.", Category: domain.CategoryPaper, Price: 32000, StockQuantity: 30, ImageURL: "/assets/generated/a4-ream.dim_400x300.png"},
		{Name: "Ruled Notebook", Description: "200 page single-line notebook.", Category: domain.CategoryPaper, Price: 8500, StockQuantity: 100, ImageURL: "/assets/generated/notebook.dim_400x300.png"},
		{Name: "Watercolour Set", Description: "24 vibrant pan colours with brush.", Category: domain.CategoryArtSupplies, Price: 55000, StockQuantity: 8, ImageURL: "/assets/generated/watercolours.dim_400x300.png"},
		{Name: "Sketch Pad A3", Description: "Acid-free drawing paper, 40 sheets.", Category: domain.CategoryArtSupplies, Price: 27500, StockQuantity: 4, ImageURL: "/assets/generated/sketch-pad.dim_400x300.png"},
		{Name: "Stapler with Pins", Description: "Desk stapler with 1000 No. 10 pins.", Category: domain.CategoryOfficeEssentials, Price: 18000, StockQuantity: 25, ImageURL: "/assets/generated/stapler.dim_400x300.png"},
		{Name: "Box File", Description: "Sturdy board box file for documents.", Category: domain.CategoryOfficeEssentials, Price: 15000, StockQuantity: 0, ImageURL: "/assets/generated/box-file.dim_400x300.png"},
		{Name: "Geometry Box", Description: "Compass, divider, protractor and scales.", Category: domain.CategorySchoolSupplies, Price: 16000, StockQuantity: 40, ImageURL: "/assets/generated/geometry-box.dim_400x300.png"},
		{Name: "School Bag Tag Set", Description: "Name labels for books and bags.", Category: domain.CategorySchoolSupplies, Price: 5000, StockQuantity: 60, ImageURL: "/assets/generated/name-labels.dim_400x300.png"},
	}
}
