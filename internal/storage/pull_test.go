package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memObjects struct {
	objects    map[string]string
	downloaded []string
}

func (m *memObjects) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	for k, v := range m.objects {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			out = append(out, ObjectInfo{Key: k, Size: int64(len(v))})
		}
	}
	return out, nil
}

func (m *memObjects) DownloadObject(ctx context.Context, key string, destPath string) error {
	m.downloaded = append(m.downloaded, key)
	return os.WriteFile(destPath, []byte(m.objects[key]), 0o644)
}

func (m *memObjects) UploadObject(ctx context.Context, key string, data []byte) error {
	m.objects[key] = string(data)
	return nil
}

func TestDownloadLatestCSV(t *testing.T) {
	store := &memObjects{objects: map[string]string{
		"inventory/2025-07-01.csv": "old",
		"inventory/2025-08-01.csv": "new",
		"inventory/readme.txt":     "skip",
	}}

	dir := t.TempDir()
	path, err := DownloadLatestCSV(context.Background(), store, "inventory/", "", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2025-08-01.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestDownloadLatestCSVOverride(t *testing.T) {
	store := &memObjects{objects: map[string]string{"inventory/a.csv": "a"}}

	path, err := DownloadLatestCSV(context.Background(), store, "inventory", "a.csv", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, []string{"inventory/a.csv"}, store.downloaded)
	assert.Equal(t, "a.csv", filepath.Base(path))
}

func TestDownloadLatestCSVNone(t *testing.T) {
	store := &memObjects{objects: map[string]string{"inventory/a.txt": "a"}}
	_, err := DownloadLatestCSV(context.Background(), store, "inventory/", "", t.TempDir())
	assert.Error(t, err)
}

func TestResolveObjectKey(t *testing.T) {
	assert.Equal(t, "inventory/a.csv", resolveObjectKey("inventory/", "a.csv"))
	assert.Equal(t, "inventory/a.csv", resolveObjectKey("inventory", "/inventory/a.csv"))
	assert.Equal(t, "a.csv", resolveObjectKey("", "/a.csv"))
}

func TestObjectRelativePath(t *testing.T) {
	assert.Equal(t, "sub/a.csv", objectRelativePath("inventory/", "inventory/sub/a.csv"))
	assert.Equal(t, "a.csv", objectRelativePath("", "x/y/a.csv"))
	assert.Equal(t, "evil.csv", objectRelativePath("inventory", "inventory/../../evil.csv"))
}
