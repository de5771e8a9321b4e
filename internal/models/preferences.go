package models

const (
	ThemeLight = "light"
	ThemeDark  = "dark"

	DefaultModel    = "gemini-3-flash-preview"
	DeepModel       = "gemini-3-pro-preview"
	DraftModel      = "gemini-flash-lite-latest"
	DefaultLanguage = "uk"

	DataVersion = "4"
)

type Preferences struct {
	Theme          string `json:"theme"`
	PreferredModel string `json:"preferredModel"`
	Language       string `json:"language"`
	APIKey         string `json:"apiKey,omitempty"`
	VirtualDate    string `json:"virtualDate,omitempty"`
}

// Masked hides the stored API key, keeping whether one is set.
func (p Preferences) Masked() Preferences {
	if p.APIKey != "" {
		p.APIKey = "********"
	}
	return p
}

type UpdatePreferencesRequest struct {
	Theme          *string `json:"theme" validate:"omitempty,oneof=light dark"`
	PreferredModel *string `json:"preferredModel" validate:"omitempty,min=1"`
	Language       *string `json:"language" validate:"omitempty,oneof=uk en"`
	APIKey         *string `json:"apiKey"`
}

type VirtualDateRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

type DeviceTokenRequest struct {
	Token string `json:"token" validate:"required"`
}
