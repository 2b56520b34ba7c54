// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/ytingest/internal/models"
)

// FakeSource is a test double for [services.VideoSource].
//
// Videos are looked up by URL for ExtractInfo and by ID for Download.
type FakeSource struct {
	mu sync.Mutex

	Videos      map[string]models.VideoInfo
	Collection  []models.VideoInfo
	ExtractErr  error
	ListErr     error
	DownloadErr map[string]error
	PanicOn     string // Download panics for this video id
	PanicList   bool   // ExtractInfo and listings panic

	Downloads []string
}

func (f *FakeSource) ExtractInfo(ctx context.Context, url string) (*models.VideoInfo, error) {
	if f.PanicList {
		panic("extract exploded")
	}
	if f.ExtractErr != nil {
		return nil, f.ExtractErr
	}
	info, ok := f.Videos[url]
	if !ok {
		return nil, errors.New("video unavailable")
	}
	return &info, nil
}

func (f *FakeSource) ExtractPlaylist(ctx context.Context, url string, skip, limit int) ([]models.VideoInfo, error) {
	return f.page(skip, limit)
}

func (f *FakeSource) ExtractChannel(ctx context.Context, url string, skip, limit int) ([]models.VideoInfo, error) {
	return f.page(skip, limit)
}

func (f *FakeSource) page(skip, limit int) ([]models.VideoInfo, error) {
	if f.PanicList {
		panic("listing exploded")
	}
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	if skip >= len(f.Collection) {
		return nil, nil
	}
	end := len(f.Collection)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return append([]models.VideoInfo(nil), f.Collection[skip:end]...), nil
}

func (f *FakeSource) Download(ctx context.Context, info models.VideoInfo) (string, string, error) {
	f.mu.Lock()
	f.Downloads = append(f.Downloads, info.ID)
	f.mu.Unlock()

	if info.ID == f.PanicOn {
		panic("download exploded")
	}
	if err := f.DownloadErr[info.ID]; err != nil {
		return "", "", err
	}
	return "/tmp/" + info.ID + ".mp3", "/tmp/" + info.ID + ".jpg", nil
}

// DownloadCount returns the number of Download calls so far.
func (f *FakeSource) DownloadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Downloads)
}

// FakeSink is a test double for [services.MediaSink].
type FakeSink struct {
	mu      sync.Mutex
	Err     error
	Uploads []string
}

func (f *FakeSink) Upload(ctx context.Context, audioPath, thumbnailPath string, info models.VideoInfo) (string, string, error) {
	f.mu.Lock()
	f.Uploads = append(f.Uploads, info.ID)
	f.mu.Unlock()

	if f.Err != nil {
		return "", "", f.Err
	}
	return "https://media.test/songs/" + info.ID + ".mp3", "https://media.test/covers/" + info.ID + ".jpg", nil
}

// UploadCount returns the number of Upload calls so far.
func (f *FakeSink) UploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Uploads)
}

// FakeCatalog is a test double for [services.Catalog].
type FakeCatalog struct {
	mu         sync.Mutex
	Known      map[string]bool
	ExistsErr  error
	PublishErr error
	Checked    []string
	Published  []models.Song
}

func (f *FakeCatalog) Exists(ctx context.Context, id, title string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Checked = append(f.Checked, id)
	if f.ExistsErr != nil {
		return false, f.ExistsErr
	}
	return f.Known[id], nil
}

func (f *FakeCatalog) Publish(ctx context.Context, song models.Song) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishErr != nil {
		return f.PublishErr
	}
	f.Published = append(f.Published, song)
	return nil
}

// CheckCount returns the number of Exists calls so far.
func (f *FakeCatalog) CheckCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Checked)
}

// PublishedCount returns the number of songs accepted so far.
func (f *FakeCatalog) PublishedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Published)
}

// FakeRecorder collects item outcomes in memory.
type FakeRecorder struct {
	mu      sync.Mutex
	Err     error
	Results []models.ItemResult
}

func (f *FakeRecorder) RecordOutcome(taskID string, res models.ItemResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Results = append(f.Results, res)
	return f.Err
}

// Outcomes returns the recorded outcomes in order.
func (f *FakeRecorder) Outcomes() []models.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Outcome, 0, len(f.Results))
	for _, r := range f.Results {
		out = append(out, r.Outcome)
	}
	return out
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
