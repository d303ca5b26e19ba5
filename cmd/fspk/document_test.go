package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefFlagsLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ref.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"driveId":"d","itemId":"i","name":"a.pdf","title":"A","url":"https://x/a.pdf"}`), 0o600))

	f := refFlags{file: path}
	f.ref.Title = "Override"

	ref, err := f.load()
	require.NoError(t, err)
	assert.Equal(t, "d", ref.DriveID)
	assert.Equal(t, "a.pdf", ref.Name)
	assert.Equal(t, "Override", ref.Title)
}

func TestRefFlagsLoadFlagsOnly(t *testing.T) {
	f := refFlags{}
	f.ref.Name = "b.docx"
	f.ref.URL = "https://x/b.docx"

	ref, err := f.load()
	require.NoError(t, err)
	assert.Equal(t, "b.docx", ref.Name)
	assert.Equal(t, "https://x/b.docx", ref.URL)
}

func TestRefFlagsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ref.json")
	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o600))

	_, err := (&refFlags{file: path}).load()
	assert.Error(t, err)

	_, err = (&refFlags{file: filepath.Join(t.TempDir(), "missing.json")}).load()
	assert.Error(t, err)
}

func TestCommandTree(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		for _, sub := range c.Commands() {
			names = append(names, c.Name()+" "+sub.Name())
		}
	}
	assert.Subset(t, names, []string{
		"deploy prevectorized", "deploy pull-pipeline",
		"document upload", "document ingest", "document delete",
	})
}
