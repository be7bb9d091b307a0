package listing_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"bobbin/internal/catalog"
	"bobbin/internal/listing"
	"bobbin/internal/logging"
	"bobbin/internal/notifications"
	"bobbin/internal/semaphore"
	"bobbin/internal/services/ytdlp"
	"bobbin/internal/testsupport"
)

type fakeLister struct {
	mu       sync.Mutex
	rows     []ytdlp.ListingRow
	pageErrs map[int]error
	title    string
	titleErr error
	starts   []int
	probes   int
}

func (f *fakeLister) ListPage(ctx context.Context, url string, start, count int) ([]ytdlp.ListingRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts = append(f.starts, start)
	if err := f.pageErrs[start]; err != nil {
		return nil, err
	}
	if start > len(f.rows) {
		return nil, nil
	}
	end := start - 1 + count
	if end > len(f.rows) {
		end = len(f.rows)
	}
	return append([]ytdlp.ListingRow(nil), f.rows[start-1:end]...), nil
}

func (f *fakeLister) ProbeTitle(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probes++
	return f.title, f.titleErr
}

func (f *fakeLister) listStarts() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.starts...)
}

func playlistRows(n int) []ytdlp.ListingRow {
	rows := make([]ytdlp.ListingRow, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, ytdlp.ListingRow{
			Title:      fmt.Sprintf("Video %02d", i),
			ExternalID: fmt.Sprintf("vid%02d", i),
			URL:        fmt.Sprintf("https://video.example/watch?v=vid%02d", i),
			ApproxSize: int64(1000 + i),
		})
	}
	return rows
}

func newReconciler(t *testing.T, lister listing.Lister, cfg listing.Config) (*listing.Reconciler, *catalog.Store, *notifications.Recorder) {
	t.Helper()
	conf := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, conf)
	recorder := notifications.NewRecorder()
	r := listing.New(store, lister, semaphore.New(2), recorder, logging.NewNop(), cfg)
	t.Cleanup(r.Shutdown)
	return r, store, recorder
}

func TestListPlaylistPaginatesToTheEnd(t *testing.T) {
	fake := &fakeLister{rows: playlistRows(25), title: "Field Recordings"}
	r, store, recorder := newReconciler(t, fake, listing.Config{ChunkSize: 10, MaxPending: 4})

	collection := "https://video.example/playlist?list=PL100"
	result, err := r.List(context.Background(), collection)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Playlist == nil || result.Playlist.Title != "Field Recordings" {
		t.Fatalf("playlist = %+v", result.Playlist)
	}
	if len(result.Items) != 10 {
		t.Fatalf("first page returned %d items, want 10", len(result.Items))
	}
	if result.ShouldStopProcessing {
		t.Fatal("fresh playlist should not stop after the first page")
	}
	r.Wait()

	wantStarts := []int{1, 11, 21, 31}
	if got := fake.listStarts(); len(got) != len(wantStarts) {
		t.Fatalf("page starts = %v, want %v", got, wantStarts)
	} else {
		for i, s := range wantStarts {
			if got[i] != s {
				t.Fatalf("page starts = %v, want %v", got, wantStarts)
			}
		}
	}

	videos, err := store.PlaylistVideos(context.Background(), collection)
	if err != nil {
		t.Fatalf("PlaylistVideos: %v", err)
	}
	if len(videos) != 25 {
		t.Fatalf("indexed %d videos, want 25", len(videos))
	}
	for i, v := range videos {
		if v.Title != fmt.Sprintf("Video %02d", i) {
			t.Fatalf("position %d holds %q", i, v.Title)
		}
	}

	if done := recorder.ByEvent(notifications.EventListingDone); len(done) != 1 || done[0].Payload["url"] != collection {
		t.Fatalf("listing-done events: %+v", done)
	}
}

func TestListPlaylistSecondRunShortCircuits(t *testing.T) {
	fake := &fakeLister{rows: playlistRows(25), title: "Field Recordings"}
	r, _, recorder := newReconciler(t, fake, listing.Config{ChunkSize: 10, MaxPending: 4})

	collection := "https://video.example/playlist?list=PL100"
	if _, err := r.List(context.Background(), collection); err != nil {
		t.Fatalf("first List: %v", err)
	}
	r.Wait()
	firstRun := len(fake.listStarts())

	result, err := r.List(context.Background(), collection)
	if err != nil {
		t.Fatalf("second List: %v", err)
	}
	if !result.ShouldStopProcessing {
		t.Fatal("fully known first page should short-circuit")
	}
	if len(result.Items) != 10 {
		t.Fatalf("short-circuit returned %d items, want 10", len(result.Items))
	}
	r.Wait()

	if got := len(fake.listStarts()); got != firstRun+1 {
		t.Fatalf("second run made %d extra fetches, want 1", got-firstRun)
	}
	if fake.probes != 1 {
		t.Fatalf("probed title %d times, want 1", fake.probes)
	}
	if done := recorder.ByEvent(notifications.EventListingDone); len(done) != 2 {
		t.Fatalf("listing-done events: %+v", done)
	}
}

func TestListPlaylistPicksUpNewTail(t *testing.T) {
	fake := &fakeLister{rows: playlistRows(10), title: "Field Recordings"}
	r, store, _ := newReconciler(t, fake, listing.Config{ChunkSize: 10, MaxPending: 4})

	collection := "https://video.example/playlist?list=PL100"
	if _, err := r.List(context.Background(), collection); err != nil {
		t.Fatalf("first List: %v", err)
	}
	r.Wait()

	fake.mu.Lock()
	fake.rows = playlistRows(14)
	fake.mu.Unlock()

	result, err := r.List(context.Background(), collection)
	if err != nil {
		t.Fatalf("second List: %v", err)
	}
	if !result.ShouldStopProcessing {
		t.Fatal("known first page should short-circuit the response")
	}
	r.Wait()

	// The short-circuit fired on page one, so the four appended items are
	// picked up on the next full relisting, not this one.
	count, err := store.CountIndexEntries(context.Background(), collection)
	if err != nil {
		t.Fatalf("CountIndexEntries: %v", err)
	}
	if count != 10 {
		t.Fatalf("indexed %d entries, want 10", count)
	}
}

func TestListSingleItemUsesSentinelCollection(t *testing.T) {
	row := ytdlp.ListingRow{
		Title:      "Lone Video",
		ExternalID: "lone01",
		URL:        "https://video.example/watch?v=lone01",
		ApproxSize: 2048,
	}
	fake := &fakeLister{rows: []ytdlp.ListingRow{row}}
	r, store, recorder := newReconciler(t, fake, listing.Config{ChunkSize: 10, MaxPending: 4})

	result, err := r.List(context.Background(), row.URL)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Playlist != nil {
		t.Fatalf("single item should not return a playlist, got %+v", result.Playlist)
	}
	if !result.ShouldStopProcessing {
		t.Fatal("single item has no continuation")
	}
	if len(result.Items) != 1 || result.Items[0].Title != "Lone Video" {
		t.Fatalf("items = %+v", result.Items)
	}

	indexed, err := store.HasIndexEntry(context.Background(), row.URL, catalog.SentinelPlaylistURL)
	if err != nil || !indexed {
		t.Fatalf("sentinel index entry missing (indexed=%v err=%v)", indexed, err)
	}
	if fake.probes != 0 {
		t.Fatal("single items never probe for a playlist title")
	}
	if done := recorder.ByEvent(notifications.EventListingDone); len(done) != 1 {
		t.Fatalf("listing-done events: %+v", done)
	}
}

func TestListSingleItemIsIdempotent(t *testing.T) {
	row := ytdlp.ListingRow{
		Title:      "Lone Video",
		ExternalID: "lone01",
		URL:        "https://video.example/watch?v=lone01",
		ApproxSize: 2048,
	}
	fake := &fakeLister{rows: []ytdlp.ListingRow{row}}
	r, store, _ := newReconciler(t, fake, listing.Config{ChunkSize: 10, MaxPending: 4})

	if _, err := r.List(context.Background(), row.URL); err != nil {
		t.Fatalf("first List: %v", err)
	}
	if err := store.MarkVideoDownloaded(context.Background(), row.URL, ""); err != nil {
		t.Fatalf("MarkVideoDownloaded: %v", err)
	}

	result, err := r.List(context.Background(), row.URL)
	if err != nil {
		t.Fatalf("second List: %v", err)
	}
	if !result.Items[0].Downloaded {
		t.Fatal("relisting must not clear the downloaded flag")
	}
	next, err := store.NextPosition(context.Background(), catalog.SentinelPlaylistURL)
	if err != nil {
		t.Fatalf("NextPosition: %v", err)
	}
	if next != 1 {
		t.Fatalf("sentinel next position = %d, want 1", next)
	}
}

func TestListClassifiesUnavailableAndUntitledRows(t *testing.T) {
	rows := []ytdlp.ListingRow{
		{Title: "[Deleted video]", ExternalID: "gone01", URL: "https://video.example/watch?v=gone01"},
		{Title: ytdlp.NoValue, ExternalID: "bare02", URL: "https://video.example/watch?v=bare02"},
		{Title: "Normal", ExternalID: "norm03", URL: "https://video.example/watch?v=norm03", ApproxSize: 512},
	}
	fake := &fakeLister{rows: rows, title: "Mixed Bag"}
	r, store, _ := newReconciler(t, fake, listing.Config{ChunkSize: 10, MaxPending: 4})

	collection := "https://video.example/playlist?list=PL200"
	if _, err := r.List(context.Background(), collection); err != nil {
		t.Fatalf("List: %v", err)
	}
	r.Wait()

	deleted, err := store.GetVideo(context.Background(), rows[0].URL)
	if err != nil {
		t.Fatalf("GetVideo: %v", err)
	}
	if deleted.Available {
		t.Fatal("placeholder title should mark the item unavailable")
	}
	untitled, err := store.GetVideo(context.Background(), rows[1].URL)
	if err != nil {
		t.Fatalf("GetVideo: %v", err)
	}
	if untitled.Title != "bare02" {
		t.Fatalf("untitled row stored title %q, want external id", untitled.Title)
	}
	if !untitled.Available {
		t.Fatal("a missing title alone does not make an item unavailable")
	}
}

func TestListUsesFallbackTitleWhenProbeHasNoValue(t *testing.T) {
	fake := &fakeLister{rows: playlistRows(3), title: ytdlp.NoValue}
	r, store, _ := newReconciler(t, fake, listing.Config{ChunkSize: 10, MaxPending: 4})

	collection := "https://video.example/c/nature-films"
	if _, err := r.List(context.Background(), collection); err != nil {
		t.Fatalf("List: %v", err)
	}
	r.Wait()

	playlist, err := store.GetPlaylist(context.Background(), collection)
	if err != nil {
		t.Fatalf("GetPlaylist: %v", err)
	}
	if playlist.Title != "Nature Films" {
		t.Fatalf("fallback title = %q", playlist.Title)
	}
}

func TestListRejectsWhenQueueIsSaturated(t *testing.T) {
	fake := &fakeLister{rows: playlistRows(3), title: "Tiny"}
	conf := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, conf)
	sem := semaphore.New(1)
	r := listing.New(store, fake, sem, notifications.NewRecorder(), logging.NewNop(), listing.Config{ChunkSize: 10, MaxPending: 1})
	t.Cleanup(r.Shutdown)

	if err := sem.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer sem.Release()

	blocked := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_, err := r.List(ctx, "https://video.example/playlist?list=PL300")
		blocked <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for sem.Waiting() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first request never queued on the semaphore")
		}
		time.Sleep(time.Millisecond)
	}

	_, err := r.List(context.Background(), "https://video.example/playlist?list=PL301")
	if !errors.Is(err, listing.ErrCapacityExceeded) {
		t.Fatalf("err = %v, want ErrCapacityExceeded", err)
	}

	cancel()
	if err := <-blocked; err == nil {
		t.Fatal("queued request should fail once its context is canceled")
	}
}

func TestListBackgroundFailurePublishesListingFailed(t *testing.T) {
	fake := &fakeLister{
		rows:     playlistRows(25),
		title:    "Flaky",
		pageErrs: map[int]error{11: errors.New("network down")},
	}
	r, store, recorder := newReconciler(t, fake, listing.Config{ChunkSize: 10, MaxPending: 4})

	collection := "https://video.example/playlist?list=PL400"
	if _, err := r.List(context.Background(), collection); err != nil {
		t.Fatalf("List: %v", err)
	}
	r.Wait()

	failed := recorder.ByEvent(notifications.EventListingFailed)
	if len(failed) != 1 || failed[0].Payload["url"] != collection {
		t.Fatalf("listing-failed events: %+v", failed)
	}
	if done := recorder.ByEvent(notifications.EventListingDone); len(done) != 0 {
		t.Fatalf("unexpected listing-done events: %+v", done)
	}

	// The first page still landed before the failure.
	count, err := store.CountIndexEntries(context.Background(), collection)
	if err != nil {
		t.Fatalf("CountIndexEntries: %v", err)
	}
	if count != 10 {
		t.Fatalf("indexed %d entries, want 10", count)
	}
}
