package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/ytingest/internal/models"
	"github.com/desertthunder/ytingest/internal/shared"
	tu "github.com/desertthunder/ytingest/internal/testing"
)

func newTestCatalog(url string, client *http.Client) *CatalogService {
	return NewCatalogService(NewAPIService(url, client), shared.NewLogger(io.Discard))
}

func TestCatalogService(t *testing.T) {
	t.Run("Exists", func(t *testing.T) {
		t.Run("Registered Song", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/checkSongExistsByYtId" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				var body map[string]string
				json.NewDecoder(r.Body).Decode(&body)
				if body["id"] != "abc" || body["title"] != "Song" {
					t.Errorf("unexpected body %v", body)
				}
				json.NewEncoder(w).Encode(map[string]bool{"exists": true})
			}))
			defer server.Close()

			exists, err := newTestCatalog(server.URL, nil).Exists(context.Background(), "abc", "Song")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !exists {
				t.Error("expected song to exist")
			}
		})

		t.Run("Non-200 Means Not Registered", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer server.Close()

			exists, err := newTestCatalog(server.URL, nil).Exists(context.Background(), "abc", "Song")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if exists {
				t.Error("expected song not to exist")
			}
		})

		t.Run("Malformed Body Is An API Error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>gateway</html>"))
			}))
			defer server.Close()

			exists, err := newTestCatalog(server.URL, nil).Exists(context.Background(), "abc", "Song")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
			if exists {
				t.Error("expected song not to exist")
			}
		})

		t.Run("Transport Failure", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("dial failed"))}
			_, err := newTestCatalog("http://catalog.test", client).Exists(context.Background(), "abc", "Song")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})
	})

	t.Run("Publish", func(t *testing.T) {
		t.Run("Sends Song Payload", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/addSong" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				var body map[string]any
				json.NewDecoder(r.Body).Decode(&body)
				for _, key := range []string{"title", "songURL", "coverURL", "id", "artist", "duration"} {
					if _, ok := body[key]; !ok {
						t.Errorf("payload missing %s: %v", key, body)
					}
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			song := models.NewSong(models.VideoInfo{ID: "abc", Title: "Song", Artist: "A", Duration: 200}, "https://s", "https://c")
			if err := newTestCatalog(server.URL, nil).Publish(context.Background(), song); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Rejected Song", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "duplicate", http.StatusConflict)
			}))
			defer server.Close()

			err := newTestCatalog(server.URL, nil).Publish(context.Background(), models.Song{ID: "abc"})
			if !errors.Is(err, shared.ErrPublishFailed) {
				t.Errorf("expected ErrPublishFailed, got %v", err)
			}
		})
	})
}
