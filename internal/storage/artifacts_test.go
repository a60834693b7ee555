package storage

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/ppic-monitor/internal/config"
	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

type memoryObjects struct {
	data map[string][]byte
}

func (m *memoryObjects) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	for k, v := range m.data {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			out = append(out, ObjectInfo{Key: k, Size: int64(len(v))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memoryObjects) DownloadObject(ctx context.Context, key, destPath string) error {
	return os.WriteFile(destPath, m.data[key], 0o644)
}

func (m *memoryObjects) UploadObject(ctx context.Context, key, srcPath string) error {
	b, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}
	m.data[key] = b
	return nil
}

func TestArtifactStorePull(t *testing.T) {
	objects := &memoryObjects{data: map[string][]byte{
		"models/model_tree.json":         []byte(`{"nodes":[]}`),
		"models/monitoring/anomaly.json": []byte(`{}`),
		"other/ignored.json":             []byte(`{}`),
	}}
	dir := t.TempDir()

	paths, err := NewArtifactStore(objects, "/models/").Pull(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "model_tree.json"),
		filepath.Join(dir, "monitoring", "anomaly.json"),
	}, paths)

	body, err := os.ReadFile(filepath.Join(dir, "model_tree.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"nodes":[]}`, string(body))
}

func TestArtifactStorePullRejectsEscapingKeys(t *testing.T) {
	objects := &memoryObjects{data: map[string][]byte{"models/../../etc/passwd": []byte("x")}}
	_, err := NewArtifactStore(objects, "models").Pull(context.Background(), t.TempDir())
	assert.Error(t, err)
}

func TestArtifactStorePush(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "monitoring"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model_tree.json"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "monitoring", "anomaly.json"), []byte("b"), 0o644))

	objects := &memoryObjects{data: map[string][]byte{}}
	keys, err := NewArtifactStore(objects, "models").Push(context.Background(), dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"models/model_tree.json", "models/monitoring/anomaly.json"}, keys)
	assert.Equal(t, []byte("b"), objects.data["models/monitoring/anomaly.json"])
}

func TestNewMinioClientRequiresConfig(t *testing.T) {
	_, err := NewMinioClient(config.StorageConfig{})
	assert.ErrorIs(t, err, domain.ErrNotReady)

	c, err := NewMinioClient(config.StorageConfig{
		Endpoint: "http://localhost:9000", Bucket: "ppic", AccessKey: "k", SecretKey: "s", UseSSL: true,
	})
	require.NoError(t, err)
	assert.NotNil(t, c)
}
