package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfhost/botpanel-backend/pkg/domain/entities"
	"github.com/wolfhost/botpanel-backend/pkg/domain/errs"
)

func TestStaticSourceListKeepsOrder(t *testing.T) {
	source := NewStaticSource(DefaultEntries())

	entries := source.List()
	require.Len(t, entries, 3)
	assert.Equal(t, "wolf-bot", entries[0].ID)
	assert.Equal(t, "nova-md", entries[1].ID)
	assert.Equal(t, "echo-tg", entries[2].ID)
}

func TestStaticSourceGet(t *testing.T) {
	source := NewStaticSource(DefaultEntries())

	entry, err := source.Get("wolf-bot")
	require.NoError(t, err)
	assert.Equal(t, "WOLF-BOT", entry.Name)
	assert.True(t, entry.Schema["SESSION_ID"].Required)
	assert.Equal(t, ".", entry.Schema["PREFIX"].Default)
}

func TestStaticSourceGetReturnsIsolatedCopy(t *testing.T) {
	source := NewStaticSource(DefaultEntries())

	entry, err := source.Get("wolf-bot")
	require.NoError(t, err)
	entry.Schema["INJECTED"] = entities.ConfigField{Required: true}

	fresh, err := source.Get("wolf-bot")
	require.NoError(t, err)
	_, ok := fresh.Schema["INJECTED"]
	assert.False(t, ok, "callers must not be able to mutate the stored schema")
}

func TestStaticSourceGetUnknown(t *testing.T) {
	source := NewStaticSource(DefaultEntries())

	_, err := source.Get("missing-bot")
	var notFound *errs.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, err.Error(), "missing-bot")
}

func TestRefreshSchemaMergesManifest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"env": {
				"SESSION_ID": {"description": "session string", "required": true},
				"AUTO_READ":  {"description": "auto-read messages", "value": "false"}
			}
		}`))
	}))
	defer srv.Close()

	entry := &entities.CatalogEntry{
		ID:          "wolf-bot",
		Name:        "WOLF-BOT",
		ManifestURL: srv.URL + "/app.json",
		Schema: map[string]entities.ConfigField{
			"PHONE_NUMBER": {Required: true},
		},
	}
	source := NewStaticSource([]*entities.CatalogEntry{entry})

	source.RefreshSchema(context.Background(), "wolf-bot")

	got, err := source.Get("wolf-bot")
	require.NoError(t, err)
	assert.True(t, got.Schema["SESSION_ID"].Required)
	assert.Equal(t, "session string", got.Schema["SESSION_ID"].Description)
	assert.Equal(t, "false", got.Schema["AUTO_READ"].Default)
	// Static fields survive the merge.
	assert.True(t, got.Schema["PHONE_NUMBER"].Required)
}

func TestRefreshSchemaKeepsStaticOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	entry := &entities.CatalogEntry{
		ID:          "wolf-bot",
		ManifestURL: srv.URL + "/app.json",
		Schema: map[string]entities.ConfigField{
			"SESSION_ID": {Required: true},
		},
	}
	source := NewStaticSource([]*entities.CatalogEntry{entry})

	source.RefreshSchema(context.Background(), "wolf-bot")

	got, _ := source.Get("wolf-bot")
	require.Len(t, got.Schema, 1)
	assert.True(t, got.Schema["SESSION_ID"].Required)
}

func TestRefreshSchemaUnknownIDIsNoop(t *testing.T) {
	source := NewStaticSource(DefaultEntries())
	assert.NotPanics(t, func() {
		source.RefreshSchema(context.Background(), "missing-bot")
	})
}

func TestManifestURLFromRepo(t *testing.T) {
	assert.Equal(t,
		"https://raw.githubusercontent.com/wolfhost/wolf-bot/main/app.json",
		manifestURLFromRepo("https://github.com/wolfhost/wolf-bot"))
	assert.Equal(t,
		"https://raw.githubusercontent.com/wolfhost/wolf-bot/main/app.json",
		manifestURLFromRepo("https://github.com/wolfhost/wolf-bot.git"))
	assert.Equal(t, "", manifestURLFromRepo("https://gitlab.com/some/repo"))
}
