package repositories

import (
	"fmt"
	"os"

	"ocelo_loyalty_backend/internal/models"

	"gopkg.in/yaml.v3"
)

// Defaults are the collections used when storage holds nothing usable.
type Defaults struct {
	Config    models.AppConfig  `yaml:"config"`
	Products  []models.Product  `yaml:"products"`
	Customers []models.Customer `yaml:"customers"`
}

// BuiltinDefaults returns the storefront's shipped configuration and demo data.
// Demo customers carry no credentials; staff set passwords before they can log in.
func BuiltinDefaults() Defaults {
	return Defaults{
		Config: models.AppConfig{
			PrimaryColor:     "#001B3D",
			AccentColor:      "#FF4D00",
			LogoURL:          "https://picsum.photos/seed/ocelo/200/200",
			SystemGuide:      "Bienvenido al sistema de fidelización de Ocelo Vision. Por cada compra que realices, acumulas el 5% del valor en puntos. Los puntos tienen una vigencia de 365 días.",
			RedeemConditions: "Los puntos pueden ser canjeados por cualquier producto disponible en nuestra óptica.",
			Currency:         "ARS",
			Language:         "Español",
			PointExpiryDays:  365,
			PointsPerArs:     0.05,
		},
		Products: []models.Product{
			{
				ID:          "1",
				Name:        "Classic Noir Shade",
				Category:    "Sol",
				Price:       45900,
				Stock:       24,
				ImageURL:    "https://images.unsplash.com/photo-1572635196237-14b3f281503f?auto=format&fit=crop&q=80&w=400",
				Description: "Edición original de Ocelo con protección UV400.",
			},
			{
				ID:          "2",
				Name:        "Aviation Gold",
				Category:    "Sol",
				Price:       62150,
				Stock:       3,
				ImageURL:    "https://images.unsplash.com/photo-1511499767390-90342f16bca4?auto=format&fit=crop&q=80&w=400",
				Description: "Marcos dorados premium con lentes degradados.",
			},
		},
		Customers: []models.Customer{
			{ID: "user_sandra", Name: "Sandra Brander", Email: "sandra@ocelo.com", Phone: "+54 9 11 9999-8888", ReferralCode: "SANDRA-OCELO", TotalPoints: 10000},
			{ID: "user_1", Name: "Mariana Rodriguez", Email: "marian@ocelo.com", Phone: "+54 9 11 5555-4444", ReferralCode: "OCELO-MARI-2024", TotalPoints: 16450, Referrals: []string{"user_2"}},
			{ID: "user_2", Name: "Juan Alvarez", Email: "juan@ocelo.com", Phone: "+54 9 11 2233-4455", ReferralCode: "OCELO-JUAN-11", TotalPoints: 2100},
		},
	}
}

// LoadDefaultsFile overlays the YAML file at path onto the built-in defaults.
// Sections absent from the file keep their built-in values.
func LoadDefaultsFile(path string) (Defaults, error) {
	defaults := BuiltinDefaults()
	if path == "" {
		return defaults, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return defaults, fmt.Errorf("could not read defaults file %s: %w", path, err)
	}

	var overlay struct {
		Config    *models.AppConfig `yaml:"config"`
		Products  []models.Product  `yaml:"products"`
		Customers []models.Customer `yaml:"customers"`
	}
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return defaults, fmt.Errorf("could not parse defaults file %s: %w", path, err)
	}

	if overlay.Config != nil {
		defaults.Config = *overlay.Config
	}
	if overlay.Products != nil {
		defaults.Products = overlay.Products
	}
	if overlay.Customers != nil {
		defaults.Customers = overlay.Customers
	}
	return defaults, nil
}
