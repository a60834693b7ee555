package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// ArtifactStore syncs a local artifact directory with a bucket prefix.
type ArtifactStore struct {
	objects ObjectStorage
	prefix  string
}

func NewArtifactStore(objects ObjectStorage, prefix string) *ArtifactStore {
	return &ArtifactStore{objects: objects, prefix: strings.Trim(prefix, "/")}
}

// Pull downloads every object under the prefix into dir, keeping relative paths.
func (s *ArtifactStore) Pull(ctx context.Context, dir string) ([]string, error) {
	listPrefix := s.prefix
	if listPrefix != "" {
		listPrefix += "/"
	}
	objects, err := s.objects.ListObjects(ctx, listPrefix)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, obj := range objects {
		rel := strings.TrimPrefix(obj.Key, listPrefix)
		if rel == "" || strings.HasSuffix(rel, "/") {
			continue
		}
		dest := filepath.Join(dir, filepath.FromSlash(rel))
		if !strings.HasPrefix(dest, filepath.Clean(dir)+string(os.PathSeparator)) {
			return nil, fmt.Errorf("object key %q escapes %s", obj.Key, dir)
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return nil, fmt.Errorf("failed creating directory for %s: %w", dest, err)
		}
		if err := s.objects.DownloadObject(ctx, obj.Key, dest); err != nil {
			return nil, err
		}
		log.Debug().Str("key", obj.Key).Str("path", dest).Msg("storage: pulled artifact")
		paths = append(paths, dest)
	}
	return paths, nil
}

// Push uploads every regular file in dir under the prefix.
func (s *ArtifactStore) Push(ctx context.Context, dir string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		key := path.Join(s.prefix, filepath.ToSlash(rel))
		if err := s.objects.UploadObject(ctx, key, p); err != nil {
			return err
		}
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("push artifacts from %s: %w", dir, err)
	}
	return keys, nil
}
