// Package drive stores generated reports as text files in a dedicated
// folder of the user's Google Drive.
package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

var ErrFileNotFound = errors.New("file not found in Drive")

// File is a stored object inside the application folder.
type File struct {
	ID   string
	Name string
}

// Client wraps the Drive API for one authenticated user. The
// application folder id is resolved lazily and cached; the resolve is
// serialized, but the provider offers no atomic create-if-absent, so
// two separate clients racing on first use can still create duplicate
// folders.
type Client struct {
	svc        *drivev3.Service
	retry      *retrier
	folderName string

	folderMu sync.Mutex
	folderID string
}

// NewClient builds a Drive client from the user's OAuth access token.
func NewClient(ctx context.Context, accessToken, folderName string) (*Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	svc, err := drivev3.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return NewClientWithService(svc, folderName), nil
}

// NewClientWithService wires an already-built Drive service. Used by
// tests to point the client at a fake provider.
func NewClientWithService(svc *drivev3.Service, folderName string) *Client {
	return &Client{
		svc:        svc,
		retry:      newRetrier(),
		folderName: folderName,
	}
}

// EnsureFolder resolves the application folder, creating it on first
// use, and returns its id. Lookup-then-create is not transactional on
// the provider side; the lock only keeps this client from duplicating
// its own work.
func (c *Client) EnsureFolder(ctx context.Context) (string, error) {
	c.folderMu.Lock()
	defer c.folderMu.Unlock()
	if c.folderID != "" {
		return c.folderID, nil
	}

	query := fmt.Sprintf("mimeType='%s' and name='%s' and trashed=false", folderMimeType, escapeQuery(c.folderName))
	list, err := executeWithRetry(c.retry, func() (*drivev3.FileList, error) {
		return c.svc.Files.List().Q(query).Fields("files(id)").Spaces("drive").Context(ctx).Do()
	})
	if err != nil {
		return "", fmt.Errorf("failed to look up app folder: %w", err)
	}
	if len(list.Files) > 0 && list.Files[0].Id != "" {
		c.folderID = list.Files[0].Id
		return c.folderID, nil
	}

	folder, err := executeWithRetry(c.retry, func() (*drivev3.File, error) {
		return c.svc.Files.Create(&drivev3.File{
			Name:     c.folderName,
			MimeType: folderMimeType,
		}).Fields("id").Context(ctx).Do()
	})
	if err != nil {
		return "", fmt.Errorf("failed to create app folder: %w", err)
	}
	c.folderID = folder.Id
	return c.folderID, nil
}

// List returns the files in the application folder, newest first.
func (c *Client) List(ctx context.Context) ([]File, error) {
	folderID, err := c.EnsureFolder(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("'%s' in parents and trashed=false", folderID)
	list, err := executeWithRetry(c.retry, func() (*drivev3.FileList, error) {
		return c.svc.Files.List().Q(query).Fields("files(id, name)").OrderBy("createdTime desc").Spaces("drive").Context(ctx).Do()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	files := make([]File, 0, len(list.Files))
	for _, f := range list.Files {
		files = append(files, File{ID: f.Id, Name: f.Name})
	}
	return files, nil
}

// Save creates a new text file in the application folder. Name
// collisions are not checked; every save produces a new object.
func (c *Client) Save(ctx context.Context, name, content string) (string, error) {
	folderID, err := c.EnsureFolder(ctx)
	if err != nil {
		return "", err
	}

	file, err := executeWithRetry(c.retry, func() (*drivev3.File, error) {
		return c.svc.Files.Create(&drivev3.File{
			Name:     name,
			Parents:  []string{folderID},
			MimeType: "text/plain",
		}).Media(strings.NewReader(content)).Fields("id").Context(ctx).Do()
	})
	if err != nil {
		return "", fmt.Errorf("failed to create file in Drive: %w", err)
	}
	if file.Id == "" {
		return "", errors.New("failed to create file in Drive: no id returned")
	}
	return file.Id, nil
}

// SaveOrUpdate treats the name as a key: it replaces the content of an
// existing file with that exact name (under parentID, or the Drive
// root) or creates it. Used for registry-style JSON documents, unlike
// Save which always appends a new report.
func (c *Client) SaveOrUpdate(ctx context.Context, name, content, parentID string) (string, error) {
	fileID, err := c.findIDByName(ctx, name, parentID)
	if err != nil {
		return "", err
	}

	if fileID != "" {
		updated, err := executeWithRetry(c.retry, func() (*drivev3.File, error) {
			return c.svc.Files.Update(fileID, &drivev3.File{}).Media(strings.NewReader(content)).Fields("id").Context(ctx).Do()
		})
		if err != nil {
			return "", fmt.Errorf("failed to update file in Drive: %w", err)
		}
		if updated.Id != "" {
			return updated.Id, nil
		}
		return fileID, nil
	}

	meta := &drivev3.File{Name: name, MimeType: "application/json"}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}
	created, err := executeWithRetry(c.retry, func() (*drivev3.File, error) {
		return c.svc.Files.Create(meta).Media(strings.NewReader(content)).Fields("id").Context(ctx).Do()
	})
	if err != nil {
		return "", fmt.Errorf("failed to create file in Drive: %w", err)
	}
	return created.Id, nil
}

// Read downloads a file's media content by id and returns it as a string.
func (c *Client) Read(ctx context.Context, fileID string) (string, error) {
	resp, err := executeWithRetry(c.retry, func() (io.ReadCloser, error) {
		r, err := c.svc.Files.Get(fileID).Context(ctx).Download()
		if err != nil {
			return nil, err
		}
		return r.Body, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to read file content: %w", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return "", fmt.Errorf("failed to read file content: %w", err)
	}
	return string(data), nil
}

// ReadByName reads a file by its exact name under parentID (or the
// Drive root). Returns ErrFileNotFound when no such file exists.
func (c *Client) ReadByName(ctx context.Context, name, parentID string) (string, error) {
	fileID, err := c.findIDByName(ctx, name, parentID)
	if err != nil {
		return "", err
	}
	if fileID == "" {
		return "", ErrFileNotFound
	}
	return c.Read(ctx, fileID)
}

// Delete removes a file by id.
func (c *Client) Delete(ctx context.Context, fileID string) error {
	_, err := executeWithRetry(c.retry, func() (struct{}, error) {
		return struct{}{}, c.svc.Files.Delete(fileID).Context(ctx).Do()
	})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (c *Client) findIDByName(ctx context.Context, name, parentID string) (string, error) {
	query := fmt.Sprintf("name='%s' and trashed=false", escapeQuery(name))
	if parentID != "" {
		query += fmt.Sprintf(" and '%s' in parents", parentID)
	} else {
		query += " and 'root' in parents"
	}

	list, err := executeWithRetry(c.retry, func() (*drivev3.FileList, error) {
		return c.svc.Files.List().Q(query).Fields("files(id)").Spaces("drive").Context(ctx).Do()
	})
	if err != nil {
		return "", fmt.Errorf("failed to look up file by name: %w", err)
	}
	if len(list.Files) > 0 && list.Files[0].Id != "" {
		return list.Files[0].Id, nil
	}
	return "", nil
}

func escapeQuery(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `'`, `\'`)
}
