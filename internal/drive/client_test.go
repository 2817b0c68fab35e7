package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// fakeDrive is an in-memory Drive provider behind an httptest server.
type fakeDrive struct {
	mu        sync.Mutex
	nextID    int
	files     map[string]*fakeFile // id -> file
	listCalls int
	failures  int // remaining 500s to serve before succeeding
}

type fakeFile struct {
	ID      string
	Name    string
	MIME    string
	Parents []string
	Content string
}

func (f *fakeDrive) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		if f.failures > 0 {
			f.failures--
			f.mu.Unlock()
			http.Error(w, `{"error":{"code":500,"message":"backend"}}`, http.StatusInternalServerError)
			return
		}
		f.mu.Unlock()

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/files":
			f.list(w, r)
		case r.Method == http.MethodPost:
			f.create(w, r)
		case r.Method == http.MethodPatch:
			f.update(w, r)
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/files/"):
			f.download(w, r)
		case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/files/"):
			f.delete(w, r)
		default:
			http.Error(w, "unexpected request "+r.Method+" "+r.URL.Path, http.StatusBadRequest)
		}
	})
}

func (f *fakeDrive) list(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++

	q := r.URL.Query().Get("q")
	var out []map[string]string
	for _, file := range f.files {
		if strings.Contains(q, "mimeType='application/vnd.google-apps.folder'") && file.MIME != folderMimeType {
			continue
		}
		if strings.Contains(q, "name='") && !strings.Contains(q, "name='"+file.Name+"'") {
			continue
		}
		if strings.Contains(q, "' in parents") {
			parent := parentFromQuery(q)
			if parent != "" && !contains(file.Parents, parent) {
				continue
			}
		}
		out = append(out, map[string]string{"id": file.ID, "name": file.Name})
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"files": out})
}

func parentFromQuery(q string) string {
	idx := strings.Index(q, "' in parents")
	if idx < 0 {
		return ""
	}
	start := strings.LastIndex(q[:idx], "'")
	return q[start+1 : idx]
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func (f *fakeDrive) create(w http.ResponseWriter, r *http.Request) {
	meta, content := readUpload(r)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	file := &fakeFile{
		ID:      fmt.Sprintf("file-%d", f.nextID),
		Name:    meta.Name,
		MIME:    meta.MimeType,
		Parents: meta.Parents,
		Content: content,
	}
	f.files[file.ID] = file
	json.NewEncoder(w).Encode(map[string]string{"id": file.ID})
}

func (f *fakeDrive) update(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path)
	_, content := readUpload(r)

	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[id]
	if !ok {
		http.Error(w, `{"error":{"code":404}}`, http.StatusNotFound)
		return
	}
	file.Content = content
	json.NewEncoder(w).Encode(map[string]string{"id": file.ID})
}

func (f *fakeDrive) download(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[pathID(r.URL.Path)]
	if !ok {
		http.Error(w, `{"error":{"code":404}}`, http.StatusNotFound)
		return
	}
	io.WriteString(w, file.Content)
}

func (f *fakeDrive) delete(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, pathID(r.URL.Path))
	w.WriteHeader(http.StatusNoContent)
}

func pathID(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	return parts[len(parts)-1]
}

// readUpload handles both metadata-only JSON bodies and multipart
// media uploads.
func readUpload(r *http.Request) (drivev3.File, string) {
	var meta drivev3.File
	body, _ := io.ReadAll(r.Body)

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/") {
		// First part is JSON metadata, second is the media.
		raw := string(body)
		parts := strings.Split(raw, "\r\n\r\n")
		if len(parts) >= 3 {
			metaJSON := strings.SplitN(parts[1], "\r\n", 2)[0]
			json.Unmarshal([]byte(metaJSON), &meta)
			content := parts[2]
			if idx := strings.Index(content, "\r\n--"); idx >= 0 {
				content = content[:idx]
			}
			return meta, content
		}
		return meta, ""
	}

	json.Unmarshal(body, &meta)
	return meta, ""
}

func newTestClient(t *testing.T) (*Client, *fakeDrive) {
	t.Helper()
	fake := &fakeDrive{files: make(map[string]*fakeFile)}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	svc, err := drivev3.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	c := NewClientWithService(svc, "iNFORiA_Reports")
	c.retry.sleep = func(time.Duration) {}
	return c, fake
}

func TestEnsureFolderCreatesOnceAndCaches(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()

	id, err := c.EnsureFolder(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	fake.mu.Lock()
	created := fake.files[id]
	fake.mu.Unlock()
	require.NotNil(t, created)
	assert.Equal(t, "iNFORiA_Reports", created.Name)
	assert.Equal(t, folderMimeType, created.MIME)

	again, err := c.EnsureFolder(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, again)

	fake.mu.Lock()
	listCalls := fake.listCalls
	fake.mu.Unlock()
	assert.Equal(t, 1, listCalls, "cached folder id should skip the second lookup")
}

func TestEnsureFolderReusesExisting(t *testing.T) {
	c, fake := newTestClient(t)

	fake.files["folder-1"] = &fakeFile{ID: "folder-1", Name: "iNFORiA_Reports", MIME: folderMimeType}

	id, err := c.EnsureFolder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "folder-1", id)
	assert.Len(t, fake.files, 1)
}

func TestSaveStoresReportInFolder(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()

	id, err := c.Save(ctx, "Informe_2026-01-15.txt", "# Informe\ncontenido")
	require.NoError(t, err)

	fake.mu.Lock()
	file := fake.files[id]
	fake.mu.Unlock()
	require.NotNil(t, file)
	assert.Equal(t, "Informe_2026-01-15.txt", file.Name)
	assert.Equal(t, "text/plain", file.MIME)
	assert.Equal(t, "# Informe\ncontenido", file.Content)
	require.Len(t, file.Parents, 1)
	assert.Equal(t, file.Parents[0], c.folderID)
}

func TestSaveReadRoundTrip(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	id, err := c.Save(ctx, "informe.txt", "texto del informe")
	require.NoError(t, err)

	got, err := c.Read(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "texto del informe", got)
}

func TestSaveOrUpdateReplacesByName(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()

	folderID, err := c.EnsureFolder(ctx)
	require.NoError(t, err)

	first, err := c.SaveOrUpdate(ctx, "patients.json", `[]`, folderID)
	require.NoError(t, err)

	second, err := c.SaveOrUpdate(ctx, "patients.json", `[{"email":"a@b.c"}]`, folderID)
	require.NoError(t, err)
	assert.Equal(t, first, second, "same name should update, not create")

	fake.mu.Lock()
	count := 0
	for _, f := range fake.files {
		if f.Name == "patients.json" {
			count++
		}
	}
	content := fake.files[first].Content
	fake.mu.Unlock()
	assert.Equal(t, 1, count)
	assert.Equal(t, `[{"email":"a@b.c"}]`, content)
}

func TestReadByNameMissingFile(t *testing.T) {
	c, _ := newTestClient(t)

	folderID, err := c.EnsureFolder(context.Background())
	require.NoError(t, err)

	_, err = c.ReadByName(context.Background(), "patients.json", folderID)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestEnsureFolderRetriesServerErrors(t *testing.T) {
	c, fake := newTestClient(t)
	fake.failures = 2

	id, err := c.EnsureFolder(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestEnsureFolderConcurrentFirstUse(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	ids := make([]string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := c.EnsureFolder(ctx)
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Len(t, fake.files, 1, "racing resolvers on one client must not duplicate the folder")
}

func TestDeleteRemovesFile(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()

	id, err := c.Save(ctx, "informe.txt", "x")
	require.NoError(t, err)

	require.NoError(t, c.Delete(ctx, id))

	fake.mu.Lock()
	_, ok := fake.files[id]
	fake.mu.Unlock()
	assert.False(t, ok)
}

func TestEscapeQuery(t *testing.T) {
	assert.Equal(t, `plain`, escapeQuery(`plain`))
	assert.Equal(t, `O\'Brien`, escapeQuery(`O'Brien`))
	assert.Equal(t, `a\\b`, escapeQuery(`a\b`))
}
