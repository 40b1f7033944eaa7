package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DownloadLatestCSV fetches one CSV object into destDir and returns its local
// path. With an override key that object is fetched; otherwise the last CSV
// under prefix in key order is, which for timestamped names is the newest.
func DownloadLatestCSV(ctx context.Context, client ObjectStorage, prefix, override, destDir string) (string, error) {
	key := ""
	if override != "" {
		key = resolveObjectKey(prefix, override)
	} else {
		listPrefix := strings.TrimSpace(prefix)
		objects, err := client.ListObjects(ctx, listPrefix)
		if err != nil {
			return "", fmt.Errorf("failed to list objects for prefix %s: %w", listPrefix, err)
		}
		var keys []string
		for _, obj := range objects {
			if strings.HasSuffix(strings.ToLower(obj.Key), ".csv") {
				keys = append(keys, obj.Key)
			}
		}
		if len(keys) == 0 {
			return "", fmt.Errorf("no CSV files found for prefix %s", prefix)
		}
		sort.Strings(keys)
		key = keys[len(keys)-1]
	}

	localPath := filepath.Join(destDir, objectRelativePath(prefix, key))
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to prepare directory for %s: %w", localPath, err)
	}
	if err := client.DownloadObject(ctx, key, localPath); err != nil {
		return "", err
	}
	return localPath, nil
}

func resolveObjectKey(prefix, override string) string {
	if override == "" {
		return strings.TrimSpace(prefix)
	}
	if prefix == "" {
		return strings.TrimPrefix(override, "/")
	}

	prefixTrimmed := strings.TrimSuffix(strings.TrimSpace(prefix), "/")
	overrideTrimmed := strings.TrimPrefix(strings.TrimSpace(override), "/")

	if strings.HasPrefix(overrideTrimmed, prefixTrimmed) {
		return overrideTrimmed
	}
	return fmt.Sprintf("%s/%s", prefixTrimmed, overrideTrimmed)
}

func objectRelativePath(prefix, key string) string {
	if prefix == "" {
		return filepath.Base(key)
	}
	prefixTrimmed := strings.TrimSuffix(strings.TrimSpace(prefix), "/")
	rel := strings.TrimPrefix(key, prefixTrimmed+"/")
	if rel == "" || strings.Contains(rel, "..") {
		return filepath.Base(key)
	}
	return rel
}
