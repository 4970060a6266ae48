package session

// Theme is an accent colour palette selectable in the config view
type Theme struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Preview     string `json:"preview"`
}

// DefaultThemeID is used when nothing valid is persisted
const DefaultThemeID = "poa"

var themes = []Theme{
	{ID: "poa", Name: "POA Emerald", Description: "El tema original del sistema", Preview: "#10b981"},
	{ID: "ocean", Name: "Ocean Blue", Description: "Tonos de azul marino profesional", Preview: "#0ea5e9"},
	{ID: "royal", Name: "Royal Purple", Description: "Violeta elegante para despachos", Preview: "#8b5cf6"},
	{ID: "sunset", Name: "Sunset Orange", Description: "Tonos cálidos energéticos", Preview: "#f97316"},
	{ID: "corporate", Name: "Corporate Blue", Description: "Azul corporativo clásico", Preview: "#3b82f6"},
}

// Themes lists the selectable palettes
func Themes() []Theme {
	out := make([]Theme, len(themes))
	copy(out, themes)
	return out
}

// LookupTheme finds a theme by id
func LookupTheme(id string) (Theme, bool) {
	for _, t := range themes {
		if t.ID == id {
			return t, true
		}
	}
	return Theme{}, false
}
