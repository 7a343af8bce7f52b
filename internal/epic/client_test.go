package epic_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"timelapse/internal/epic"
	"timelapse/internal/logging"
	"timelapse/internal/testsupport"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatal(err)
	}
	return parsed
}

func TestImagesForDayDecodesListing(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"image":"epic_1b_20210601003145","date":"2021-06-01 00:31:45"},{"image":"epic_1b_20210601012356","date":"2021-06-01 01:23:56"}]`))
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.EPIC.BaseURL = server.URL

	client := epic.NewClient(cfg, server.Client(), nil, logging.NewNop())
	images, err := client.ImagesForDay(context.Background(), day(t, "2021-06-01"))
	if err != nil {
		t.Fatalf("list day: %v", err)
	}
	if gotPath != "/natural/date/2021-06-01" {
		t.Fatalf("unexpected request path %q", gotPath)
	}
	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}
	if images[0].Name != "epic_1b_20210601003145" {
		t.Fatalf("listing order not preserved: %+v", images)
	}
}

func TestImagesForDayNon200MeansEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no imagery", http.StatusNotFound)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.EPIC.BaseURL = server.URL

	client := epic.NewClient(cfg, server.Client(), nil, logging.NewNop())
	images, err := client.ImagesForDay(context.Background(), day(t, "2021-06-02"))
	if err != nil {
		t.Fatalf("non-200 must not be an error: %v", err)
	}
	if len(images) != 0 {
		t.Fatalf("expected empty listing, got %d", len(images))
	}
}

func TestImageURL(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.EPIC.ArchiveURL = "https://example.test/archive"

	client := epic.NewClient(cfg, http.DefaultClient, nil, logging.NewNop())
	url, err := client.ImageURL(epic.Image{Name: "epic_1b_x", Date: "2021-06-01 00:31:45"})
	if err != nil {
		t.Fatal(err)
	}
	want := "https://example.test/archive/natural/2021/06/01/png/epic_1b_x.png"
	if url != want {
		t.Fatalf("expected %q, got %q", want, url)
	}

	if _, err := client.ImageURL(epic.Image{Name: "bad", Date: "junk"}); err == nil {
		t.Fatal("expected error for malformed capture date")
	}
}

func TestDownloadFailsOnNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.EPIC.ArchiveURL = server.URL

	client := epic.NewClient(cfg, server.Client(), nil, logging.NewNop())
	if _, err := client.Download(context.Background(), epic.Image{Name: "img", Date: "2021-06-01 00:00:00"}); err == nil {
		t.Fatal("expected error for failed image download")
	}
}

func TestDayCacheRoundTrip(t *testing.T) {
	cache, err := epic.OpenDayCache(filepath.Join(t.TempDir(), "days.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer cache.Close()

	ctx := context.Background()
	images := []epic.Image{{Name: "a", Date: "2021-06-01 00:00:00"}}

	if _, hit, err := cache.Get(ctx, "natural", "2021-06-01"); err != nil || hit {
		t.Fatalf("expected clean miss, hit=%v err=%v", hit, err)
	}
	if err := cache.Put(ctx, "natural", "2021-06-01", images); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, hit, err := cache.Get(ctx, "natural", "2021-06-01")
	if err != nil || !hit {
		t.Fatalf("expected hit, hit=%v err=%v", hit, err)
	}
	if len(got) != 1 || got[0].Name != "a" {
		t.Fatalf("unexpected cached listing %+v", got)
	}

	// An empty listing is a valid hit: the day genuinely had no imagery.
	if err := cache.Put(ctx, "natural", "2021-06-02", nil); err != nil {
		t.Fatal(err)
	}
	got, hit, err = cache.Get(ctx, "natural", "2021-06-02")
	if err != nil || !hit {
		t.Fatalf("expected hit for empty day, hit=%v err=%v", hit, err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty listing, got %+v", got)
	}
}

func TestCachedListingSkipsCatalog(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"image":"a","date":"2021-06-01 00:00:00"}]`))
	}))
	defer server.Close()

	cache, err := epic.OpenDayCache(filepath.Join(t.TempDir(), "days.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	cfg := testsupport.NewConfig(t)
	cfg.EPIC.BaseURL = server.URL

	client := epic.NewClient(cfg, server.Client(), cache, logging.NewNop())
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := client.ImagesForDay(ctx, day(t, "2021-06-01")); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected a single catalog call, got %d", calls)
	}
}
