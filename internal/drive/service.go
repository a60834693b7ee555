// Package drive pulls plant dataset exports from a Google Drive folder and
// ingests them into the observation store.
package drive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

const (
	rootFolder   = "root"
	folderMime   = "application/vnd.google-apps.folder"
	fileFields   = "id, name, mimeType, modifiedTime, size"
	listPageSize = 200
)

// Service is a read-only Drive client authenticated as a service account.
type Service struct {
	files *drive.FilesService
}

func NewService(ctx context.Context, credentialsJSON string) (*Service, error) {
	if credentialsJSON == "" {
		return nil, fmt.Errorf("drive credentials not configured: %w", domain.ErrNotReady)
	}

	jwt, err := google.JWTConfigFromJSON([]byte(credentialsJSON), drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse drive service account: %w", err)
	}
	srv, err := drive.NewService(ctx, option.WithHTTPClient(jwt.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create drive client: %w", err)
	}
	return &Service{files: srv.Files}, nil
}

// File is the subset of Drive metadata exposed by the admin routes.
type File struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
	Size         int64  `json:"size,string,omitempty"`
}

func toFile(f *drive.File) *File {
	return &File{ID: f.Id, Name: f.Name, MimeType: f.MimeType, ModifiedTime: f.ModifiedTime, Size: f.Size}
}

// ListFiles returns every non-trashed file directly inside a folder, following
// pagination. An empty folder ID means the drive root.
func (s *Service) ListFiles(ctx context.Context, folderID string) ([]*File, error) {
	if folderID == "" {
		folderID = rootFolder
	}

	var files []*File
	call := s.files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed=false", quote(folderID))).
		Fields("nextPageToken", "files("+fileFields+")").
		OrderBy("modifiedTime desc").
		PageSize(listPageSize)
	err := call.Pages(ctx, func(page *drive.FileList) error {
		for _, f := range page.Files {
			files = append(files, toFile(f))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list drive folder %s: %w: %w", folderID, domain.ErrUpstream, err)
	}
	return files, nil
}

func (s *Service) GetFile(ctx context.Context, fileID string) (*File, error) {
	f, err := s.files.Get(fileID).Fields(fileFields).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get drive file %s: %w: %w", fileID, domain.ErrUpstream, err)
	}
	return toFile(f), nil
}

func (s *Service) DownloadFile(ctx context.Context, fileID string, w io.Writer) error {
	resp, err := s.files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return fmt.Errorf("download drive file %s: %w: %w", fileID, domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("read drive file %s: %w", fileID, err)
	}
	return nil
}

// FindFolderByPath walks a slash separated folder path from the drive root.
func (s *Service) FindFolderByPath(ctx context.Context, path string) (string, error) {
	current := rootFolder
	for _, name := range strings.Split(path, "/") {
		if name == "" {
			continue
		}
		result, err := s.files.List().
			Q(fmt.Sprintf("'%s' in parents and name='%s' and mimeType='%s' and trashed=false",
				quote(current), quote(name), folderMime)).
			Fields("files(id)").
			PageSize(1).
			Context(ctx).
			Do()
		if err != nil {
			return "", fmt.Errorf("find drive folder %s: %w: %w", name, domain.ErrUpstream, err)
		}
		if len(result.Files) == 0 {
			return "", fmt.Errorf("drive folder %s: %w", name, domain.ErrNotFound)
		}
		current = result.Files[0].Id
	}
	return current, nil
}

// quote escapes a value for use inside a single quoted Drive query literal.
func quote(v string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v)
}
