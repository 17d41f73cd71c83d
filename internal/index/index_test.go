package index_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/asakura/interlink/internal/index"
	"github.com/asakura/interlink/internal/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func samplePost(title string) []byte {
	return []byte("---\ntitle: " + title + "\ncategories:\n  - AI\ntags:\n  - ChatGPT\n---\n本文です。\n")
}

func TestUpsertAndGetPost(t *testing.T) {
	db := testutil.TestDB(t)

	row := index.PostRow{
		Path:        "_posts/2024-01-02-ai.md",
		URL:         "/ai/",
		Title:       "AI活用",
		Checksum:    "abc",
		Categories:  []string{"AI"},
		Tags:        []string{"ChatGPT"},
		Description: "desc",
		SeoScore:    80,
		UpdatedAt:   time.Now(),
	}
	if err := db.UpsertPost(row, "本文"); err != nil {
		t.Fatalf("UpsertPost: %v", err)
	}

	got, err := db.GetPost("_posts/2024-01-02-ai.md")
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if got == nil {
		t.Fatal("post not found after upsert")
	}
	if got.URL != "/ai/" || got.Title != "AI活用" || got.SeoScore != 80 {
		t.Errorf("row = %+v", got)
	}
	if len(got.Categories) != 1 || got.Categories[0] != "AI" {
		t.Errorf("categories = %v", got.Categories)
	}
}

func TestGetPost_Missing(t *testing.T) {
	db := testutil.TestDB(t)
	got, err := db.GetPost("_posts/nope.md")
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing post, got %+v", got)
	}
}

func TestUpsertPost_ReplacesExisting(t *testing.T) {
	db := testutil.TestDB(t)
	row := index.PostRow{Path: "_posts/a.md", URL: "/a/", Title: "old", UpdatedAt: time.Now()}
	if err := db.UpsertPost(row, "body"); err != nil {
		t.Fatal(err)
	}
	row.Title = "new"
	row.SeoScore = 55
	if err := db.UpsertPost(row, "body2"); err != nil {
		t.Fatal(err)
	}
	got, _ := db.GetPost("_posts/a.md")
	if got.Title != "new" || got.SeoScore != 55 {
		t.Errorf("row = %+v", got)
	}
	if _, total, _ := db.ListPosts(0, 0, "", ""); total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
}

func TestListPosts_CategoryFilterAndSort(t *testing.T) {
	db := testutil.TestDB(t)
	posts := []index.PostRow{
		{Path: "_posts/a.md", URL: "/a/", Title: "A", Categories: []string{"AI"}, SeoScore: 90, UpdatedAt: time.Now()},
		{Path: "_posts/b.md", URL: "/b/", Title: "B", Categories: []string{"マーケティング"}, SeoScore: 40, UpdatedAt: time.Now()},
		{Path: "_posts/c.md", URL: "/c/", Title: "C", Categories: []string{"AI"}, SeoScore: 70, UpdatedAt: time.Now()},
	}
	for _, p := range posts {
		if err := db.UpsertPost(p, "body"); err != nil {
			t.Fatal(err)
		}
	}

	rows, total, err := db.ListPosts(10, 0, "AI", "path")
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if total != 2 || len(rows) != 2 || rows[0].Path != "_posts/a.md" {
		t.Errorf("rows = %v, total = %d", rows, total)
	}

	rows, _, err = db.ListPosts(10, 0, "", "seo_score")
	if err != nil {
		t.Fatal(err)
	}
	if rows[0].SeoScore != 40 {
		t.Errorf("worst score must come first, got %+v", rows[0])
	}
}

func TestDeletePost_RemovesLinks(t *testing.T) {
	db := testutil.TestDB(t)
	if err := db.UpsertPost(index.PostRow{Path: "_posts/a.md", URL: "/a/", UpdatedAt: time.Now()}, "body"); err != nil {
		t.Fatal(err)
	}
	links := []index.LinkRow{{SourceURL: "/a/", TargetURL: "/b/", Keyword: "AI"}}
	if err := db.ReplaceInsertedLinks("/a/", links); err != nil {
		t.Fatal(err)
	}
	if err := db.DeletePost("_posts/a.md"); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	got, err := db.Backlinks("/b/")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("links should be removed with the post, got %v", got)
	}
}

func TestReplaceInsertedLinks_UpdatesCount(t *testing.T) {
	db := testutil.TestDB(t)
	if err := db.UpsertPost(index.PostRow{Path: "_posts/a.md", URL: "/a/", UpdatedAt: time.Now()}, "body"); err != nil {
		t.Fatal(err)
	}
	links := []index.LinkRow{
		{SourceURL: "/a/", TargetURL: "/b/", Keyword: "AI"},
		{SourceURL: "/a/", TargetURL: "/c/", Keyword: "起業"},
	}
	if err := db.ReplaceInsertedLinks("/a/", links); err != nil {
		t.Fatalf("ReplaceInsertedLinks: %v", err)
	}
	got, _ := db.GetPost("_posts/a.md")
	if got.LinksInserted != 2 {
		t.Errorf("links_inserted = %d, want 2", got.LinksInserted)
	}

	bl, err := db.Backlinks("/b/")
	if err != nil {
		t.Fatal(err)
	}
	if len(bl) != 1 || bl[0].Keyword != "AI" {
		t.Errorf("backlinks = %v", bl)
	}

	// Replacing again with fewer links drops the old rows.
	if err := db.ReplaceInsertedLinks("/a/", nil); err != nil {
		t.Fatal(err)
	}
	got, _ = db.GetPost("_posts/a.md")
	if got.LinksInserted != 0 {
		t.Errorf("links_inserted = %d, want 0 after replace", got.LinksInserted)
	}
}

func TestIndexFile_PreservesLinkCountOnReindex(t *testing.T) {
	db := testutil.TestDB(t)
	data := []byte("---\ntitle: AI活用\n---\n本文に[起業](/startup/ \"起業ガイド\")を書いた。\n")

	if err := index.IndexFile(db, "_posts/2024-01-02-ai.md", data); err != nil {
		t.Fatalf("IndexFile: %v", err)
	}
	links := []index.LinkRow{{SourceURL: "/ai/", TargetURL: "/startup/", Keyword: "起業"}}
	if err := db.ReplaceInsertedLinks("/ai/", links); err != nil {
		t.Fatalf("ReplaceInsertedLinks: %v", err)
	}

	// The watcher re-indexes a file right after the annotate pass writes it.
	// The recorded count must survive that round trip.
	if err := index.IndexFile(db, "_posts/2024-01-02-ai.md", data); err != nil {
		t.Fatalf("reindex: %v", err)
	}

	got, err := db.GetPost("_posts/2024-01-02-ai.md")
	if err != nil {
		t.Fatal(err)
	}
	if got.LinksInserted != 1 {
		t.Errorf("links_inserted = %d after reindex, want 1", got.LinksInserted)
	}
	bl, err := db.Backlinks("/startup/")
	if err != nil {
		t.Fatal(err)
	}
	if len(bl) != 1 {
		t.Errorf("backlinks = %v, want the recorded link kept", bl)
	}
}

func TestSync_IndexesAndRemovesStale(t *testing.T) {
	_, store := testutil.TestBlog(t)
	db := testutil.TestDB(t)

	if err := store.Write("_posts/2024-01-02-ai.md", samplePost("AI活用の方法")); err != nil {
		t.Fatal(err)
	}
	if err := index.Sync(db, store, "_posts", testLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	got, _ := db.GetPost("_posts/2024-01-02-ai.md")
	if got == nil {
		t.Fatal("post not indexed by sync")
	}
	if got.URL != "/ai/" {
		t.Errorf("url = %q, want /ai/", got.URL)
	}
	if got.SeoScore <= 0 {
		t.Errorf("seo score not computed: %+v", got)
	}

	// Remove the file; sync must drop the row.
	if err := store.Delete("_posts/2024-01-02-ai.md"); err != nil {
		t.Fatal(err)
	}
	if err := index.Sync(db, store, "_posts", testLogger()); err != nil {
		t.Fatal(err)
	}
	got, _ = db.GetPost("_posts/2024-01-02-ai.md")
	if got != nil {
		t.Errorf("stale post still indexed: %+v", got)
	}
}

func TestSync_SkipsUnchanged(t *testing.T) {
	_, store := testutil.TestBlog(t)
	db := testutil.TestDB(t)

	if err := store.Write("_posts/a.md", samplePost("タイトル")); err != nil {
		t.Fatal(err)
	}
	if err := index.Sync(db, store, "_posts", testLogger()); err != nil {
		t.Fatal(err)
	}
	first, _ := db.GetPost("_posts/a.md")

	if err := index.Sync(db, store, "_posts", testLogger()); err != nil {
		t.Fatal(err)
	}
	second, _ := db.GetPost("_posts/a.md")
	if !first.UpdatedAt.Equal(second.UpdatedAt) {
		t.Error("unchanged file should not be re-indexed")
	}
}

func TestSearch_Fallback(t *testing.T) {
	db := testutil.TestDB(t)
	if err := db.UpsertPost(index.PostRow{
		Path: "_posts/a.md", URL: "/a/", Title: "マーケティング入門", UpdatedAt: time.Now(),
	}, "マーケティングの基礎を学ぶ。"); err != nil {
		t.Fatal(err)
	}
	results, err := db.Search("マーケティング", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Path != "_posts/a.md" {
		t.Errorf("results = %v", results)
	}
}
