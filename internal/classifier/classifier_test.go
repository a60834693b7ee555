package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/ppic-monitor/internal/config"
	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

const sampleTree = `{
  "name": "material_risk",
  "labels": ["Merah", "Kuning", "Hijau"],
  "nodes": [
    {"feature": "stok_tersedia", "threshold": 100, "left": 1, "right": 2},
    {"label": "Merah"},
    {"feature": "seksi_tujuan=Press", "threshold": 0.5, "left": 3, "right": 4},
    {"label": "Hijau"},
    {"label": "Kuning"}
  ]
}`

func obs(section string, stock float64) domain.MaterialObservation {
	return domain.MaterialObservation{
		Section:         section,
		Component:       "Bolt M8",
		AvailableStock:  stock,
		ConsumptionRate: 10,
		LeadTime:        4,
	}
}

func TestTreePredict(t *testing.T) {
	tree, err := ReadTree(strings.NewReader(sampleTree))
	require.NoError(t, err)

	ctx := context.Background()
	tests := []struct {
		name string
		in   domain.MaterialObservation
		want string
	}{
		{"low stock goes left", obs("Press", 80), "Merah"},
		{"threshold is inclusive", obs("Press", 100), "Merah"},
		{"one-hot section match", obs("Press", 150), "Kuning"},
		{"unseen section reads as zero", obs("Welding", 150), "Hijau"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tree.Predict(ctx, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadTreeRejectsInvalidArtifacts(t *testing.T) {
	cases := map[string]string{
		"empty":          `{"name":"x","nodes":[]}`,
		"unlabeled leaf": `{"name":"x","nodes":[{}]}`,
		"backward edge":  `{"name":"x","nodes":[{"feature":"a","left":0,"right":1},{"label":"A"}]}`,
		"out of range":   `{"name":"x","nodes":[{"feature":"a","left":1,"right":5},{"label":"A"}]}`,
		"not json":       `nope`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadTree(strings.NewReader(raw))
			assert.Error(t, err)
		})
	}
}

func TestLoadTreeFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleTree), 0o644))

	tree, err := LoadTree(path)
	require.NoError(t, err)
	assert.Equal(t, "material_risk", tree.Name)

	_, err = LoadTree(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestRemotePredict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req remoteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Press", req.Section)
		assert.Equal(t, 80.0, req.Stock)
		_ = json.NewEncoder(w).Encode(remoteResponse{Label: "Kuning"})
	}))
	defer srv.Close()

	label, err := NewRemote(srv.URL, time.Second).Predict(context.Background(), obs("Press", 80))
	require.NoError(t, err)
	assert.Equal(t, "Kuning", label)
}

func TestRemotePredictErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model offline", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewRemote(srv.URL, time.Second).Predict(context.Background(), obs("Press", 80))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer empty.Close()

	_, err = NewRemote(empty.URL, time.Second).Predict(context.Background(), obs("Press", 80))
	assert.Error(t, err)
}

type memoryCache struct {
	labels map[string]string
}

func (m *memoryCache) GetPrediction(_ context.Context, o domain.MaterialObservation) (string, bool, error) {
	l, ok := m.labels[o.Section]
	return l, ok, nil
}

func (m *memoryCache) SetPrediction(_ context.Context, o domain.MaterialObservation, label string) error {
	m.labels[o.Section] = label
	return nil
}

func (m *memoryCache) InvalidateAll(context.Context) error {
	m.labels = map[string]string{}
	return nil
}

func (m *memoryCache) Close() error { return nil }

func TestCachedPredictCallsInnerOnce(t *testing.T) {
	var calls atomic.Int32
	inner := Func(func(ctx context.Context, o domain.MaterialObservation) (string, error) {
		calls.Add(1)
		return "Hijau", nil
	})

	c := NewCached(inner, &memoryCache{labels: map[string]string{}})
	for i := 0; i < 3; i++ {
		label, err := c.Predict(context.Background(), obs("Press", 150))
		require.NoError(t, err)
		assert.Equal(t, "Hijau", label)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestCachedPredictDoesNotStoreErrors(t *testing.T) {
	boom := errors.New("boom")
	mc := &memoryCache{labels: map[string]string{}}
	c := NewCached(Func(func(context.Context, domain.MaterialObservation) (string, error) {
		return "", boom
	}), mc)

	_, err := c.Predict(context.Background(), obs("Press", 150))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, mc.labels)
}

func TestNewFallsBackWhenArtifactMissing(t *testing.T) {
	c, err := New(config.ClassifierConfig{ArtifactPath: filepath.Join(t.TempDir(), "nope.json")}, nil)
	require.NoError(t, err)
	assert.Nil(t, c)
}
