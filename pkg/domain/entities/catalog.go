package entities

// ConfigField describes one configuration variable a bot template needs.
type ConfigField struct {
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Placeholder string `json:"placeholder,omitempty"`
	Default     string `json:"default,omitempty"`
}

// CatalogEntry is an immutable, deployable bot template. Entries are loaded
// at startup and never mutated by the orchestrator.
type CatalogEntry struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Repository  string                 `json:"repository"`
	ManifestURL string                 `json:"manifestUrl,omitempty"`
	Schema      map[string]ConfigField `json:"schema"`
	Description string                 `json:"description,omitempty"`
	Category    string                 `json:"category,omitempty"`
	Keywords    []string               `json:"keywords,omitempty"`
	Popularity  int                    `json:"popularity,omitempty"`
	LogoURL     string                 `json:"logoUrl,omitempty"`

	// Per-template pipeline overrides. When empty the orchestrator falls
	// back to git clone / npm install / npm start.
	FetchCommand   []string `json:"-"`
	InstallCommand []string `json:"-"`
	StartCommand   []string `json:"-"`
}

// Clone returns a deep copy, so callers can hold the entry while a live
// schema refresh rewrites the stored one.
func (e *CatalogEntry) Clone() *CatalogEntry {
	out := *e
	out.Schema = make(map[string]ConfigField, len(e.Schema))
	for k, v := range e.Schema {
		out.Schema[k] = v
	}
	out.Keywords = append([]string(nil), e.Keywords...)
	out.FetchCommand = append([]string(nil), e.FetchCommand...)
	out.InstallCommand = append([]string(nil), e.InstallCommand...)
	out.StartCommand = append([]string(nil), e.StartCommand...)
	return &out
}
