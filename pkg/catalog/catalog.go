package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wolfhost/botpanel-backend/internal/consts"
	"github.com/wolfhost/botpanel-backend/internal/logger"
	"github.com/wolfhost/botpanel-backend/pkg/domain/entities"
	"github.com/wolfhost/botpanel-backend/pkg/domain/errs"
)

// Source is a read-only lookup over deployable bot templates.
type Source interface {
	List() []*entities.CatalogEntry
	Get(id string) (*entities.CatalogEntry, error)
	RefreshSchema(ctx context.Context, id string)
}

// StaticSource serves a fixed set of entries loaded at startup, optionally
// refreshed from each template's live manifest. Lookups return copies, so a
// concurrent refresh never mutates a schema a deploy is validating against.
type StaticSource struct {
	mu         sync.RWMutex
	entries    map[string]*entities.CatalogEntry
	order      []string
	httpClient *http.Client
}

func NewStaticSource(entries []*entities.CatalogEntry) *StaticSource {
	s := &StaticSource{
		entries:    make(map[string]*entities.CatalogEntry, len(entries)),
		order:      make([]string, 0, len(entries)),
		httpClient: &http.Client{Timeout: consts.ManifestFetchTimeout},
	}
	for _, entry := range entries {
		s.entries[entry.ID] = entry
		s.order = append(s.order, entry.ID)
	}
	return s
}

func (s *StaticSource) List() []*entities.CatalogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entities.CatalogEntry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entries[id].Clone())
	}
	return out
}

func (s *StaticSource) Get(id string) (*entities.CatalogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, &errs.NotFoundError{Entity: "catalog entry", ID: id}
	}
	return entry.Clone(), nil
}

// manifest is the app.json-style file bot repositories ship to declare the
// variables they need.
type manifest struct {
	Env map[string]struct {
		Description string `json:"description"`
		Required    bool   `json:"required"`
		Value       string `json:"value"`
	} `json:"env"`
}

// RefreshSchema fetches the entry's live manifest and merges its variables
// into the static schema. Best-effort: on any failure the static schema is
// kept as-is.
func (s *StaticSource) RefreshSchema(ctx context.Context, id string) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return
	}
	url := entry.ManifestURL
	if url == "" {
		url = manifestURLFromRepo(entry.Repository)
	}
	if url == "" {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.Warn("failed to fetch catalog manifest",
			zap.String("catalogId", id),
			zap.Error(err))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logger.Warn("catalog manifest fetch returned non-OK status",
			zap.String("catalogId", id),
			zap.Int("status", resp.StatusCode))
		return
	}

	var m manifest
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		logger.Warn("failed to decode catalog manifest",
			zap.String("catalogId", id),
			zap.Error(err))
		return
	}

	s.mu.Lock()
	if entry.Schema == nil {
		entry.Schema = make(map[string]entities.ConfigField)
	}
	for name, v := range m.Env {
		entry.Schema[name] = entities.ConfigField{
			Description: v.Description,
			Required:    v.Required,
			Default:     v.Value,
		}
	}
	s.mu.Unlock()
	logger.Debug("catalog schema refreshed",
		zap.String("catalogId", id),
		zap.Int("fields", len(m.Env)))
}

func manifestURLFromRepo(repo string) string {
	repo = strings.TrimSuffix(repo, ".git")
	if rest, ok := strings.CutPrefix(repo, "https://github.com/"); ok {
		return fmt.Sprintf("https://raw.githubusercontent.com/%s/main/app.json", rest)
	}
	return ""
}

// DefaultEntries is the built-in catalog served when no external catalog
// store is configured.
func DefaultEntries() []*entities.CatalogEntry {
	return []*entities.CatalogEntry{
		{
			ID:         "wolf-bot",
			Name:       "WOLF-BOT",
			Repository: "https://github.com/wolfhost/wolf-bot",
			Schema: map[string]entities.ConfigField{
				"SESSION_ID": {
					Description: "Pairing session id issued by the bot",
					Required:    true,
					Placeholder: "WOLF-BOT_xxxxx",
				},
				"PHONE_NUMBER": {
					Description: "WhatsApp number in international format",
					Required:    true,
					Placeholder: "+254700000000",
				},
				"PREFIX": {
					Description: "Command prefix",
					Default:     ".",
				},
			},
			Description: "Multi-device WhatsApp bot with group management and media tools",
			Category:    "whatsapp",
			Keywords:    []string{"whatsapp", "baileys", "multi-device"},
			Popularity:  1280,
		},
		{
			ID:         "nova-md",
			Name:       "NOVA-MD",
			Repository: "https://github.com/wolfhost/nova-md",
			Schema: map[string]entities.ConfigField{
				"SESSION_ID": {
					Description: "Base64 session string",
					Required:    true,
				},
				"OWNER_NUMBER": {
					Description: "Bot owner's number",
					Required:    true,
					Placeholder: "+15550001111",
				},
			},
			Description: "Lightweight markdown-styled WhatsApp assistant",
			Category:    "whatsapp",
			Keywords:    []string{"whatsapp", "assistant"},
			Popularity:  540,
		},
		{
			ID:         "echo-tg",
			Name:       "Echo Telegram Bot",
			Repository: "https://github.com/wolfhost/echo-tg",
			Schema: map[string]entities.ConfigField{
				"BOT_TOKEN": {
					Description: "Telegram bot token from BotFather",
					Required:    true,
				},
			},
			Description: "Starter Telegram bot template",
			Category:    "telegram",
			Keywords:    []string{"telegram"},
			Popularity:  210,
		},
	}
}
