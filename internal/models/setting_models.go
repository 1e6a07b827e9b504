package models

// AppConfig holds the global branding and business settings. It is replaced wholesale by staff.
type AppConfig struct {
	PrimaryColor     string  `json:"primaryColor" yaml:"primaryColor" binding:"required"`
	AccentColor      string  `json:"accentColor" yaml:"accentColor" binding:"required"`
	LogoURL          string  `json:"logoUrl" yaml:"logoUrl"`
	SystemGuide      string  `json:"systemGuide" yaml:"systemGuide"`
	RedeemConditions string  `json:"redeemConditions" yaml:"redeemConditions"`
	Currency         string  `json:"currency" yaml:"currency" binding:"required"`
	Language         string  `json:"language" yaml:"language"`
	PointExpiryDays  int     `json:"pointExpiryDays" yaml:"pointExpiryDays"`
	PointsPerArs     float64 `json:"pointsPerArs" yaml:"pointsPerArs"` // Points earned per currency unit spent
}
