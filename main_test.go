package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/firecrawl/appgen/internal/catalog"
	"github.com/firecrawl/appgen/internal/config"
	"github.com/firecrawl/appgen/internal/history"
	"github.com/firecrawl/appgen/internal/logging"
	"github.com/firecrawl/appgen/internal/viewer"
)

func TestWriteTemplatesJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTemplates(&buf, catalog.All(), "json"))

	var got []catalog.Template
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, catalog.All(), got)
}

func TestWriteTemplatesYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTemplates(&buf, catalog.All(), "yaml"))

	var got []map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 5)
	assert.Equal(t, "nextjs", got[0]["id"])
	assert.NotContains(t, buf.String(), "<svg", "icons are left out of yaml")
}

func TestWriteTemplatesTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTemplates(&buf, catalog.All(), "table"))
	out := buf.String()
	for _, id := range catalog.IDs() {
		assert.Contains(t, out, id)
	}

	buf.Reset()
	require.NoError(t, writeTemplates(&buf, nil, ""))
	assert.Contains(t, buf.String(), "No templates match.")
}

func TestWriteTemplatesUnknownFormat(t *testing.T) {
	err := writeTemplates(&bytes.Buffer{}, catalog.All(), "xml")
	assert.ErrorIs(t, err, errUnknownFormat)
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.GenerationDelay = 10 * time.Millisecond
	return cfg
}

func TestRunGenerate(t *testing.T) {
	out := filepath.Join(t.TempDir(), "app")
	store := history.NewStore(filepath.Join(t.TempDir(), "history.json"))
	var buf bytes.Buffer

	err := runGenerate(context.Background(), testConfig(), logging.Discard(), generateOptions{
		Template: "express",
		Prompt:   "a url shortener",
		Out:      out,
		History:  store,
	}, &buf)
	require.NoError(t, err)

	printed := buf.String()
	assert.Contains(t, printed, "── index.js (javascript) ──")
	assert.Contains(t, printed, "── package.json (json) ──")
	assert.Contains(t, printed, "Generated from prompt: a url shortener")
	assert.Contains(t, printed, "Using template: express")

	data, err := os.ReadFile(filepath.Join(out, "index.js"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "a url shortener")
	_, err = os.Stat(filepath.Join(out, "package.json"))
	assert.NoError(t, err)

	entries, err := store.Load()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "express", entries[0].Template)
	assert.Equal(t, out, entries[0].Path)
	assert.Equal(t, []string{"index.js", "package.json"}, entries[0].Files)
}

func TestWriteHistory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeHistory(&buf, nil))
	assert.Contains(t, buf.String(), "No exports yet.")

	buf.Reset()
	require.NoError(t, writeHistory(&buf, []history.Entry{{
		Template:  "vue",
		Prompt:    strings.Repeat("long prompt ", 10),
		Path:      "/tmp/vue-app",
		CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}}))
	out := buf.String()
	assert.Contains(t, out, "2026-03-01 09:30")
	assert.Contains(t, out, "/tmp/vue-app")
	assert.Contains(t, out, "…")
}

func TestRunGeneratePreview(t *testing.T) {
	var buf bytes.Buffer
	err := runGenerate(context.Background(), testConfig(), logging.Discard(), generateOptions{
		Template: "react",
		Prompt:   "a chat app",
		Preview:  true,
	}, &buf)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "\n"+viewer.Ellipsis+"\n")
	assert.NotContains(t, buf.String(), "react-dom", "preview stops before the dependencies")
}

func TestRunGenerateRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		opts generateOptions
		want string
	}{
		{"unknown template", generateOptions{Template: "rails", Prompt: "x"}, "unknown template"},
		{"empty prompt", generateOptions{Template: "vue", Prompt: "   "}, "prompt must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runGenerate(context.Background(), testConfig(), logging.Discard(), tt.opts, &bytes.Buffer{})
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want), err.Error())
		})
	}
}

func TestRunGenerateCancelled(t *testing.T) {
	cfg := config.Default()
	cfg.GenerationDelay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := runGenerate(ctx, cfg, logging.Discard(), generateOptions{Template: "vue", Prompt: "x"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
