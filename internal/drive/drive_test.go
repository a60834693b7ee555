package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

const datasetCSV = "tanggal,seksi_tujuan,nama_komponen,stok_tersedia,konsumsi_per_jam,lead_time\n" +
	"2024-03-01,Press,Bolt M8,120,10,4\n" +
	"2024-03-01,Welding,Nut M6,80,5,2\n"

type fakeSource struct {
	files    []*File
	contents map[string]string
}

func (f *fakeSource) ListFiles(ctx context.Context, folderID string) ([]*File, error) {
	return f.files, nil
}

func (f *fakeSource) GetFile(ctx context.Context, fileID string) (*File, error) {
	for _, file := range f.files {
		if file.ID == fileID {
			return file, nil
		}
	}
	return nil, fmt.Errorf("file %s: %w", fileID, domain.ErrNotFound)
}

func (f *fakeSource) DownloadFile(ctx context.Context, fileID string, w io.Writer) error {
	_, err := io.WriteString(w, f.contents[fileID])
	return err
}

func (f *fakeSource) FindFolderByPath(ctx context.Context, path string) (string, error) {
	if path == "plant/daily" {
		return "folder-1", nil
	}
	return "", fmt.Errorf("folder %s: %w", path, domain.ErrNotFound)
}

type recordingWriter struct {
	rows []domain.MaterialObservation
}

func (r *recordingWriter) UpsertObservations(ctx context.Context, obs []domain.MaterialObservation) (int, error) {
	r.rows = append(r.rows, obs...)
	return len(obs), nil
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		files: []*File{
			{ID: "1", Name: "snapshot.csv"},
			{ID: "2", Name: "notes.txt"},
			{ID: "3", Name: "broken.csv"},
		},
		contents: map[string]string{
			"1": datasetCSV,
			"2": "hello",
			"3": "tanggal,seksi_tujuan\n2024-03-01,Press\n",
		},
	}
}

func TestDownloadFolderSkipsNonDatasets(t *testing.T) {
	dir := t.TempDir()
	paths, err := NewDownloader(newFakeSource()).DownloadFolder(context.Background(), DownloadOptions{DownloadDir: dir})
	require.NoError(t, err)

	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "snapshot.csv"), paths[0])

	body, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, datasetCSV, string(body))
}

func TestDownloadFolderRequiresDir(t *testing.T) {
	_, err := NewDownloader(newFakeSource()).DownloadFolder(context.Background(), DownloadOptions{})
	assert.Error(t, err)
}

func TestIngestFile(t *testing.T) {
	writer := &recordingWriter{}
	svc := NewIngestService(newFakeSource(), writer, t.TempDir())

	n, err := svc.IngestFile(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, writer.rows, 2)
	assert.Equal(t, "Welding", writer.rows[1].Section)

	_, err = svc.IngestFile(context.Background(), "2")
	assert.Error(t, err)

	_, err = svc.IngestFile(context.Background(), "3")
	assert.ErrorIs(t, err, domain.ErrMissingField)
}

func newTestRouter(t *testing.T) *mux.Router {
	src := newFakeSource()
	router := mux.NewRouter()
	NewHandler(src, NewIngestService(src, &recordingWriter{}, t.TempDir())).RegisterRoutes(router)
	return router
}

func TestHandlerListFiles(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/drive/files?path=plant/daily", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var files []File
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &files))
	assert.Len(t, files, 3)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/drive/files?path=missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerIngest(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/drive/ingest?fileId=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"rows":2`))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/drive/ingest", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/drive/ingest?fileId=3", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/drive/ingest?fileId=9", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuoteEscapesQueryLiterals(t *testing.T) {
	assert.Equal(t, `Plant\'s data`, quote("Plant's data"))
	assert.Equal(t, `a\\b`, quote(`a\b`))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(fmt.Errorf("x: %w", domain.ErrNotReady)))
	assert.Equal(t, http.StatusBadGateway, statusFor(fmt.Errorf("x: %w", domain.ErrUpstream)))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("x")))
}
