package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jwebster45206/npc-dialogue/internal/storage"
	"github.com/jwebster45206/npc-dialogue/pkg/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const miraJSON = `{
  "id": "tavern_keeper_01",
  "name": "Mira",
  "role": "tavern keeper",
  "backstory": "Mira has run the Ember & Ale for twenty years.",
  "personality": "Warm, observant, protective of her regulars.",
  "speech_style": "Plain words, the odd tavern idiom."
}`

func writeFile(t *testing.T, path, body string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()
	v := &PersonaValidator{}

	p, err := v.validateFile(writeFile(t, filepath.Join(dir, "tavern_keeper_01.json"), miraJSON))
	require.NoError(t, err)
	assert.Equal(t, "tavern_keeper_01", p.ID)
	assert.Equal(t, "Mira", p.Name)
}

func TestValidateFile_Rejections(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		filename string
		body     string
		want     string
	}{
		{"wrong extension", "mira.yaml", miraJSON, ".json extension"},
		{"bad filename", "Tavern-Keeper.json", miraJSON, "lowercase snake_case"},
		{"invalid json", "broken.json", `{"name":`, "invalid JSON"},
		{"unknown field", "extra.json", `{"name":"Mira","mood":"grumpy"}`, "strict JSON"},
		{"missing fields", "partial.json", `{"name":"Mira","role":"tavern keeper"}`, "missing required fields: backstory, personality, speech_style"},
		{"id mismatch", "other_npc.json", miraJSON, `does not match filename`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &PersonaValidator{}
			_, err := v.validateFile(writeFile(t, filepath.Join(dir, tt.filename), tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateContent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "npcs", "tavern_keeper_01.json"), miraJSON)
	writeFile(t, filepath.Join(dir, "npcs", "blacksmith_02.json"),
		`{"name":"Bram","role":"blacksmith","backstory":"b","personality":"p","speech_style":"s"}`)
	writeFile(t, filepath.Join(dir, "npcs", "draft.json"), `{"name":"Nobody"}`)

	personas, errs := (&PersonaValidator{}).validateContent(dir)

	require.Len(t, personas, 2)
	assert.Equal(t, "blacksmith_02", personas[0].ID)
	assert.Equal(t, "tavern_keeper_01", personas[1].ID)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "draft.json")
}

func TestValidateContent_Empty(t *testing.T) {
	_, errs := (&PersonaValidator{}).validateContent(t.TempDir())
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "no persona files found")
}

func TestSeed(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	dir := t.TempDir()
	p, err := (&PersonaValidator{}).validateFile(writeFile(t, filepath.Join(dir, "tavern_keeper_01.json"), miraJSON))
	require.NoError(t, err)

	require.NoError(t, seed(mr.Addr(), []*actor.Persona{p}, "Emberfall lore"))

	store, err := storage.NewRedisStorage(mr.Addr(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer store.Close()

	loaded, err := store.LoadPersona(context.Background(), "tavern_keeper_01")
	require.NoError(t, err)
	assert.Equal(t, p, loaded)

	lore, err := store.LoadWorldLore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Emberfall lore", lore)
}
