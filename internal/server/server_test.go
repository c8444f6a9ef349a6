package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"grabarr/internal/domain/consts"
	"grabarr/internal/models"

	"github.com/rs/zerolog"
)

// fakeDownloader implements Downloader for handler tests.
type fakeDownloader struct {
	outputDir string
	result    *models.DownloadResult
	info      *models.VideoInfo
	err       error
}

func (f *fakeDownloader) Download(ctx context.Context, url string, dlType models.DownloadType) (*models.DownloadResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	res := *f.result
	res.DownloadType = string(dlType)
	return &res, nil
}

func (f *fakeDownloader) Info(ctx context.Context, url string) (*models.VideoInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.info, nil
}

func (f *fakeDownloader) OutputDir() string   { return f.outputDir }
func (f *fakeDownloader) Platforms() []string { return []string{"YouTube", "TikTok"} }

type fakeHistory struct {
	recs []models.DownloadRecord
}

func (f *fakeHistory) LatestDownloads(limit int) ([]models.DownloadRecord, error) {
	if limit < len(f.recs) {
		return f.recs[:limit], nil
	}
	return f.recs, nil
}

func newTestServer(t *testing.T, dl Downloader, history HistoryStore) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(dl, history, zerolog.Nop()).Router())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHandleDownloadSuccess(t *testing.T) {
	dl := &fakeDownloader{
		result: &models.DownloadResult{
			Status:   consts.StatusSuccess,
			Message:  "Video downloaded successfully.",
			FilePath: "/downloads/video.mp4",
			Platform: "YouTube",
			FileSize: "5.0 MB",
			Duration: "03:33",
		},
	}
	srv := newTestServer(t, dl, nil)

	resp := postJSON(t, srv.URL+"/download", models.DownloadRequest{
		URL:          "https://www.youtube.com/watch?v=abc123",
		DownloadType: "video",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	got := decodeBody[models.DownloadResult](t, resp)
	if got.Status != consts.StatusSuccess {
		t.Errorf("Status = %q, want success", got.Status)
	}
	if got.DownloadType != "video" {
		t.Errorf("DownloadType = %q, want video", got.DownloadType)
	}
	if got.FilePath != "/downloads/video.mp4" {
		t.Errorf("FilePath = %q", got.FilePath)
	}
}

func TestHandleDownloadErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        *models.Error
		wantStatus int
	}{
		{
			name:       "unsupported platform",
			err:        &models.Error{Kind: models.KindUnsupportedPlatform, Message: "Unsupported platform or invalid URL."},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "extraction failure",
			err:        &models.Error{Kind: models.KindExtraction, Message: "Failed to extract video information.", Platform: "YouTube"},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "download failure",
			err:        &models.Error{Kind: models.KindDownload, Message: "Download failed.", Platform: "TikTok"},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "filesystem failure",
			err:        &models.Error{Kind: models.KindFilesystem, Message: "Destination not writable."},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &fakeDownloader{err: tt.err}, nil)

			resp := postJSON(t, srv.URL+"/download", models.DownloadRequest{
				URL:          "https://www.youtube.com/watch?v=abc123",
				DownloadType: "video",
			})
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}

			got := decodeBody[models.DownloadResult](t, resp)
			if got.Status != consts.StatusError {
				t.Errorf("Status = %q, want error", got.Status)
			}
			if got.FilePath != "" {
				t.Errorf("FilePath = %q, want empty", got.FilePath)
			}
			if got.Message != tt.err.Message {
				t.Errorf("Message = %q, want %q", got.Message, tt.err.Message)
			}
		})
	}
}

func TestHandleDownloadBadRequests(t *testing.T) {
	srv := newTestServer(t, &fakeDownloader{result: &models.DownloadResult{Status: consts.StatusSuccess}}, nil)

	tests := []struct {
		name string
		body string
	}{
		{name: "empty URL", body: `{"url":"","download_type":"video"}`},
		{name: "bad download type", body: `{"url":"https://youtu.be/x","download_type":"gif"}`},
		{name: "malformed JSON", body: `{"url": nope`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/download", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("POST: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestHandleTelegramDownloadStreamsFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("these are the downloaded media bytes")
	path := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	dl := &fakeDownloader{
		outputDir: dir,
		result: &models.DownloadResult{
			Status:   consts.StatusSuccess,
			FilePath: path,
			Platform: "YouTube",
		},
	}
	srv := newTestServer(t, dl, nil)

	resp := postJSON(t, srv.URL+"/download/telegram", models.DownloadRequest{
		URL:          "https://www.youtube.com/watch?v=abc123",
		DownloadType: "video",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != consts.MimeVideo {
		t.Errorf("Content-Type = %q, want %q", ct, consts.MimeVideo)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, `filename="clip.mp4"`) {
		t.Errorf("Content-Disposition = %q", cd)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !bytes.Equal(body, content) {
		t.Error("body does not match file content")
	}

	// Body byte length must equal the Content-Length header.
	cl, err := strconv.Atoi(resp.Header.Get("Content-Length"))
	if err != nil {
		t.Fatalf("Content-Length header: %v", err)
	}
	if cl != len(body) {
		t.Errorf("Content-Length = %d, body length = %d", cl, len(body))
	}
}

func TestHandleTelegramDownloadAudioMime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "track.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	dl := &fakeDownloader{
		outputDir: dir,
		result:    &models.DownloadResult{Status: consts.StatusSuccess, FilePath: path},
	}
	srv := newTestServer(t, dl, nil)

	resp := postJSON(t, srv.URL+"/download/telegram", models.DownloadRequest{
		URL:          "https://www.youtube.com/watch?v=abc123",
		DownloadType: "audio",
	})
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != consts.MimeAudio {
		t.Errorf("Content-Type = %q, want %q", ct, consts.MimeAudio)
	}
}

func TestHandleTelegramDownloadErrorReturnsJSON(t *testing.T) {
	dl := &fakeDownloader{err: &models.Error{Kind: models.KindUnsupportedPlatform, Message: "Unsupported platform or invalid URL."}}
	srv := newTestServer(t, dl, nil)

	resp := postJSON(t, srv.URL+"/download/telegram", models.DownloadRequest{
		URL:          "https://not-a-real-site.example/x",
		DownloadType: "video",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	got := decodeBody[models.DownloadResult](t, resp)
	if got.Status != consts.StatusError {
		t.Errorf("Status = %q, want error", got.Status)
	}
}

func TestHandleInfo(t *testing.T) {
	dl := &fakeDownloader{
		info: &models.VideoInfo{
			Status:   consts.StatusSuccess,
			Platform: "YouTube",
			Title:    "Some Video",
			Duration: "03:33",
			Formats:  models.Formats{Video: []string{"1080p"}, Audio: []string{"128kbps"}},
		},
	}
	srv := newTestServer(t, dl, nil)

	resp := postJSON(t, srv.URL+"/info", models.InfoRequest{URL: "https://www.youtube.com/watch?v=abc123"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	got := decodeBody[models.VideoInfo](t, resp)
	if got.Title != "Some Video" || got.Platform != "YouTube" {
		t.Errorf("unexpected info: %+v", got)
	}

	resp = postJSON(t, srv.URL+"/info", models.InfoRequest{URL: ""})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty URL status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestHandleListFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.mp4"), []byte("aaaa"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.mp3"), []byte("bb"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0o755); err != nil {
		t.Fatalf("mkdir fixture: %v", err)
	}

	srv := newTestServer(t, &fakeDownloader{outputDir: dir}, nil)

	resp, err := http.Get(srv.URL + "/files")
	if err != nil {
		t.Fatalf("GET /files: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	type listing struct {
		Status string      `json:"status"`
		Files  []fileEntry `json:"files"`
		Count  int         `json:"count"`
	}
	got := decodeBody[listing](t, resp)
	if got.Count != 2 || len(got.Files) != 2 {
		t.Fatalf("count = %d, files = %d, want 2 each", got.Count, len(got.Files))
	}
	for _, f := range got.Files {
		if f.Size == 0 || f.DownloadURL != "/files/"+f.Filename {
			t.Errorf("bad file entry: %+v", f)
		}
	}
}

func TestHandleGetFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("stored bytes")
	if err := os.WriteFile(filepath.Join(dir, "keep.mp4"), content, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	srv := newTestServer(t, &fakeDownloader{outputDir: dir}, nil)

	resp, err := http.Get(srv.URL + "/files/keep.mp4")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if !bytes.Equal(body, content) {
		t.Error("served bytes do not match file")
	}

	resp, err = http.Get(srv.URL + "/files/missing.mp4")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing file status = %d, want 404", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/files/..%2Fsecret")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		t.Error("path traversal was not rejected")
	}
}

func TestHandleHistory(t *testing.T) {
	history := &fakeHistory{recs: []models.DownloadRecord{
		{ID: 2, URL: "https://youtu.be/b", Platform: "YouTube", DownloadType: "video", CreatedAt: time.Now()},
		{ID: 1, URL: "https://youtu.be/a", Platform: "YouTube", DownloadType: "audio", CreatedAt: time.Now().Add(-time.Hour)},
	}}
	srv := newTestServer(t, &fakeDownloader{}, history)

	type listing struct {
		Status    string                  `json:"status"`
		Downloads []models.DownloadRecord `json:"downloads"`
		Count     int                     `json:"count"`
	}

	resp, err := http.Get(srv.URL + "/history")
	if err != nil {
		t.Fatalf("GET /history: %v", err)
	}
	got := decodeBody[listing](t, resp)
	if got.Count != 2 {
		t.Errorf("count = %d, want 2", got.Count)
	}

	resp, err = http.Get(srv.URL + "/history?limit=1")
	if err != nil {
		t.Fatalf("GET /history: %v", err)
	}
	got = decodeBody[listing](t, resp)
	if got.Count != 1 {
		t.Errorf("limited count = %d, want 1", got.Count)
	}

	resp, err = http.Get(srv.URL + "/history?limit=bogus")
	if err != nil {
		t.Fatalf("GET /history: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bogus limit status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleHealthAndRoot(t *testing.T) {
	srv := newTestServer(t, &fakeDownloader{}, nil)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	got := decodeBody[map[string]string](t, resp)
	if got["status"] != "healthy" {
		t.Errorf("health status = %q", got["status"])
	}

	resp, err = http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	root := decodeBody[map[string]any](t, resp)
	if root["version"] != Version {
		t.Errorf("version = %v, want %q", root["version"], Version)
	}
	if _, ok := root["supported_platforms"]; !ok {
		t.Error("root response missing supported_platforms")
	}
}
