// ABOUTME: Integration tests for the full article workflow
// ABOUTME: Tests end-to-end scenarios including sync, mutations, media caching, and offline reads

package test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/harper/stash/internal/mediacache"
	"github.com/harper/stash/internal/models"
	"github.com/harper/stash/internal/mutate"
	"github.com/harper/stash/internal/remote"
	"github.com/harper/stash/internal/store"
	syncengine "github.com/harper/stash/internal/sync"
)

// fakeAPI is an in-memory article server speaking the remote wire protocol.
type fakeAPI struct {
	articles []*models.Article
	nextID   int64
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/articles", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			excluded := map[int64]bool{}
			if raw := r.URL.Query().Get("exclude"); raw != "" {
				for _, part := range strings.Split(raw, ",") {
					id, _ := strconv.ParseInt(part, 10, 64)
					excluded[id] = true
				}
			}
			var out []*models.Article
			for _, a := range f.articles {
				if !excluded[a.ID] {
					out = append(out, a)
				}
			}
			json.NewEncoder(w).Encode(out)
		case http.MethodPost:
			var req struct {
				URL  string `json:"url"`
				Tags string `json:"tags"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			f.nextID++
			now := time.Now().UTC()
			title := "Saved " + req.URL
			a := &models.Article{
				ID:        f.nextID,
				Title:     &title,
				URL:       &req.URL,
				Tags:      req.Tags,
				CreatedAt: now,
				UpdatedAt: now,
			}
			f.articles = append(f.articles, a)
			json.NewEncoder(w).Encode(a)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/v1/articles/", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/v1/articles/"), 10, 64)
		idx := -1
		for i, a := range f.articles {
			if a.ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodPatch:
			var fields map[string]any
			json.NewDecoder(r.Body).Decode(&fields)
			a := f.articles[idx]
			if v, ok := fields["isFavorite"].(bool); ok {
				a.IsFavorite = v
			}
			if v, ok := fields["tags"].(string); ok {
				a.Tags = v
			}
			if v, ok := fields["readingProgress"].(float64); ok {
				a.ReadingProgress = int(v)
			}
			a.UpdatedAt = time.Now().UTC()
			json.NewEncoder(w).Encode(a)
		case http.MethodDelete:
			f.articles = append(f.articles[:idx], f.articles[idx+1:]...)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/cat.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("png-bytes"))
	})

	return mux
}

func seedArticle(id int64, title, content string, age time.Duration) *models.Article {
	now := time.Now().UTC().Add(-age)
	u := fmt.Sprintf("https://example.com/%d", id)
	return &models.Article{
		ID:        id,
		Title:     &title,
		Content:   &content,
		URL:       &u,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TestFullWorkflow walks the complete lifecycle: initial sync with image
// caching, delta sync, mutations, progress, and an offline read from cache.
func TestFullWorkflow(t *testing.T) {
	tmpDir := t.TempDir()
	const userID = "alice"

	api := &fakeAPI{nextID: 100}
	server := httptest.NewServer(api.handler())
	defer server.Close()

	imgURL := server.URL + "/cat.png"
	api.articles = []*models.Article{
		seedArticle(1, "Older article", "Plain text body.", 48*time.Hour),
		seedArticle(2, "Newer article", fmt.Sprintf("Look: ![cat](%s)", imgURL), 1*time.Hour),
	}

	st, err := store.NewSQLiteStore(filepath.Join(tmpDir, "stash.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	client := remote.New(server.URL, "test-token", nil)
	media := mediacache.New(filepath.Join(tmpDir, "media"), nil)
	engine := syncengine.New(st, client, media, nil)
	mutator := mutate.New(st, client, nil)
	ctx := context.Background()

	// Initial sync: both articles arrive, newest first, image cached.
	res, err := engine.Sync(ctx, userID, syncengine.WithImages())
	if err != nil {
		t.Fatalf("initial sync failed: %v", err)
	}
	if res.Err != nil {
		t.Fatalf("unexpected stale result: %v", res.Err)
	}
	if len(res.New) != 2 || len(res.All) != 2 {
		t.Fatalf("expected 2 new / 2 total, got %d / %d", len(res.New), len(res.All))
	}
	if res.All[0].ID != 2 {
		t.Errorf("expected newest article first, got ID %d", res.All[0].ID)
	}

	cachedPath := media.PathFor(userID, 2, imgURL)
	if _, err := os.Stat(cachedPath); err != nil {
		t.Errorf("expected cached image at %s: %v", cachedPath, err)
	}
	if got := media.Resolve(userID, 2, imgURL); got != cachedPath {
		t.Errorf("Resolve returned %s, want cached path", got)
	}

	// A new remote article appears; delta sync brings only that one.
	api.articles = append(api.articles, seedArticle(3, "Brand new", "Hello.", 0))
	res, err = engine.Sync(ctx, userID)
	if err != nil {
		t.Fatalf("delta sync failed: %v", err)
	}
	if len(res.New) != 1 || res.New[0].ID != 3 {
		t.Fatalf("expected exactly article 3 as new, got %+v", res.New)
	}
	if len(res.All) != 3 {
		t.Fatalf("expected 3 total after delta sync, got %d", len(res.All))
	}

	// Mutations write through to the server and update the local copy.
	if err := mutator.SetTags(ctx, userID, 2, "archive, longform"); err != nil {
		t.Fatalf("failed to set tags: %v", err)
	}
	fav, err := mutator.ToggleFavorite(ctx, userID, 2)
	if err != nil {
		t.Fatalf("failed to toggle favorite: %v", err)
	}
	if !fav {
		t.Error("expected article 2 to be favorited")
	}
	if err := mutator.SetProgress(ctx, userID, 3, 40); err != nil {
		t.Fatalf("failed to set progress: %v", err)
	}
	if err := mutator.Delete(ctx, userID, 1); err != nil {
		t.Fatalf("failed to delete article: %v", err)
	}

	created, err := mutator.Save(ctx, userID, "https://example.com/fresh", "inbox")
	if err != nil {
		t.Fatalf("failed to save article: %v", err)
	}
	if created.ID != 101 {
		t.Errorf("expected server-assigned ID 101, got %d", created.ID)
	}

	articles, ok, err := st.Load(ctx, userID)
	if err != nil || !ok {
		t.Fatalf("failed to load local articles: ok=%v err=%v", ok, err)
	}
	if len(articles) != 3 {
		t.Fatalf("expected 3 local articles after delete+save, got %d", len(articles))
	}
	byID := map[int64]*models.Article{}
	for _, a := range articles {
		byID[a.ID] = a
	}
	if byID[1] != nil {
		t.Error("deleted article 1 still present locally")
	}
	if !byID[2].IsFavorite {
		t.Error("favorite flip not persisted locally")
	}
	if byID[3].ReadingProgress != 40 {
		t.Errorf("progress not persisted, got %d", byID[3].ReadingProgress)
	}
	if got := byID[2].Tags; got != "archive,longform" {
		t.Errorf("tags not normalized and persisted, got %q", got)
	}

	// The server goes away; a sync still serves the cached collection.
	server.Close()
	res, err = engine.Sync(ctx, userID)
	if err != nil {
		t.Fatalf("offline sync should fall back to cache, got error: %v", err)
	}
	if res.Err == nil {
		t.Error("offline sync should mark the result stale")
	}
	if len(res.All) != 3 {
		t.Errorf("offline sync should return the cached 3 articles, got %d", len(res.All))
	}
	if len(res.New) != 0 {
		t.Errorf("offline sync should report nothing new, got %d", len(res.New))
	}
}

// TestFreshUserOffline verifies the one hard failure: no cache and no network.
func TestFreshUserOffline(t *testing.T) {
	st := store.NewMemoryStore()

	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	client := remote.New(deadURL, "token", nil)
	engine := syncengine.New(st, client, nil, nil)

	_, err := engine.Sync(context.Background(), "nobody")
	if !errors.Is(err, syncengine.ErrNoFallback) {
		t.Fatalf("expected ErrNoFallback with no cache and no network, got %v", err)
	}
}
