package resources

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFetchLocalOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "some.vocab")
	assert.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	prevDir := Dir
	Dir = dir
	defer func() { Dir = prevDir }()

	b, err := Fetch(context.Background(), "some.vocab")
	assert.NoError(t, err)
	assert.Equal(t, "hello", string(b))
}

func TestFetchUnknownResource(t *testing.T) {
	_, err := Fetch(context.Background(), "does-not-exist.vocab")
	assert.Error(t, err)
}
