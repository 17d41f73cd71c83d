package postservice

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/asakura/interlink/internal/linker"
	"github.com/asakura/interlink/internal/storage"
)

func testService(t *testing.T) (*Service, storage.Provider) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	svc := NewService(store, nil, "_posts", "_drafts", "", linker.DefaultMaxLinks, slog.New(slog.DiscardHandler))
	return svc, store
}

const postA = "---\ntitle: 雑記\n---\nマーケティング戦略について書く。\n"
const postB = "---\ntitle: マーケティング入門\n---\n本文B\n"

func TestLoadPosts_StableOrderAndURLs(t *testing.T) {
	svc, store := testService(t)
	if err := store.Write("_posts/2024-02-01-b.md", []byte(postB)); err != nil {
		t.Fatal(err)
	}
	if err := store.Write("_posts/2024-01-01-a.md", []byte(postA)); err != nil {
		t.Fatal(err)
	}

	posts, err := svc.LoadPosts(false)
	if err != nil {
		t.Fatalf("LoadPosts: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("posts = %d", len(posts))
	}
	if posts[0].URL != "/a/" || posts[1].URL != "/b/" {
		t.Errorf("order/urls = %s, %s", posts[0].URL, posts[1].URL)
	}
}

func TestLoadPosts_IncludesDraftsOnRequest(t *testing.T) {
	svc, store := testService(t)
	if err := store.Write("_posts/2024-01-01-a.md", []byte(postA)); err != nil {
		t.Fatal(err)
	}
	if err := store.Write("_drafts/idea.md", []byte(postB)); err != nil {
		t.Fatal(err)
	}

	posts, err := svc.LoadPosts(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 1 {
		t.Errorf("drafts must be excluded by default, got %d posts", len(posts))
	}

	posts, err = svc.LoadPosts(true)
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 2 {
		t.Errorf("drafts missing, got %d posts", len(posts))
	}
}

func TestAnnotate_DryRunDoesNotTouchFiles(t *testing.T) {
	svc, store := testService(t)
	if err := store.Write("_posts/2024-01-01-a.md", []byte(postA)); err != nil {
		t.Fatal(err)
	}
	if err := store.Write("_posts/2024-02-01-b.md", []byte(postB)); err != nil {
		t.Fatal(err)
	}

	results, err := svc.Annotate(context.Background(), false)
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if len(results) != 2 || len(results[0].Inserted) != 1 {
		t.Errorf("results = %+v", results)
	}

	raw, _ := store.Read("_posts/2024-01-01-a.md")
	if string(raw) != postA {
		t.Errorf("dry run modified the file: %q", raw)
	}
}

func TestAnnotate_WritePersistsBodyKeepsFrontmatter(t *testing.T) {
	svc, store := testService(t)
	if err := store.Write("_posts/2024-01-01-a.md", []byte(postA)); err != nil {
		t.Fatal(err)
	}
	if err := store.Write("_posts/2024-02-01-b.md", []byte(postB)); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Annotate(context.Background(), true); err != nil {
		t.Fatalf("Annotate: %v", err)
	}

	raw, _ := store.Read("_posts/2024-01-01-a.md")
	content := string(raw)
	if !strings.HasPrefix(content, "---\ntitle: 雑記\n---\n") {
		t.Errorf("frontmatter changed: %q", content)
	}
	if !strings.Contains(content, `[マーケティング](/b/ "マーケティング入門")`) {
		t.Errorf("link not written: %q", content)
	}
}

func TestAnnotate_WriteIsIdempotent(t *testing.T) {
	svc, store := testService(t)
	if err := store.Write("_posts/2024-01-01-a.md", []byte(postA)); err != nil {
		t.Fatal(err)
	}
	if err := store.Write("_posts/2024-02-01-b.md", []byte(postB)); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Annotate(context.Background(), true); err != nil {
		t.Fatal(err)
	}
	first, _ := store.Read("_posts/2024-01-01-a.md")

	results, err := svc.Annotate(context.Background(), true)
	if err != nil {
		t.Fatal(err)
	}
	second, _ := store.Read("_posts/2024-01-01-a.md")
	if string(first) != string(second) {
		t.Errorf("second pass changed the file:\n%q\n%q", first, second)
	}
	for _, r := range results {
		if len(r.Inserted) != 0 {
			t.Errorf("second pass inserted links: %+v", r)
		}
	}
}

func TestAnnotate_SeedFileUsed(t *testing.T) {
	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Write("_data/keywords.yml", []byte("補助金:\n  - url: /grants/\n    title: 補助金まとめ\n")); err != nil {
		t.Fatal(err)
	}
	if err := store.Write("_posts/2024-01-01-a.md", []byte("---\ntitle: 雑記\n---\n補助金を申請した。\n")); err != nil {
		t.Fatal(err)
	}

	svc := NewService(store, nil, "_posts", "_drafts", root+"/_data/keywords.yml", linker.DefaultMaxLinks, slog.New(slog.DiscardHandler))
	results, err := svc.Annotate(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || len(results[0].Inserted) != 1 || results[0].Inserted[0].TargetURL != "/grants/" {
		t.Errorf("results = %+v", results)
	}
}

func TestAnnotate_SeedPathIndependentOfWorkingDirectory(t *testing.T) {
	// The seed file lives under the site root and the service must receive
	// the root-resolved path; the test process CWD is the package source
	// directory, so a bare "_data/keywords.yml" would never be found here.
	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Write("_data/keywords.yml", []byte("補助金:\n  - url: /grants/\n    title: 補助金まとめ\n")); err != nil {
		t.Fatal(err)
	}
	if err := store.Write("_posts/2024-01-01-a.md", []byte("---\ntitle: 雑記\n---\n補助金を申請した。\n")); err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if wd == root {
		t.Fatal("test CWD unexpectedly equals the site root")
	}

	seedPath := filepath.Join(root, "_data/keywords.yml")
	svc := NewService(store, nil, "_posts", "_drafts", seedPath, linker.DefaultMaxLinks, slog.New(slog.DiscardHandler))
	results, err := svc.Annotate(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || len(results[0].Inserted) != 1 || results[0].Inserted[0].TargetURL != "/grants/" {
		t.Errorf("results = %+v", results)
	}
}

func TestAnalyze_ScoresEveryPost(t *testing.T) {
	svc, store := testService(t)
	if err := store.Write("_posts/2024-01-01-a.md", []byte(postA)); err != nil {
		t.Fatal(err)
	}

	analyses, err := svc.Analyze(context.Background(), false)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(analyses) != 1 {
		t.Fatalf("analyses = %d", len(analyses))
	}
	if analyses[0].Score <= 0 || analyses[0].Score > 100 {
		t.Errorf("score out of range: %d", analyses[0].Score)
	}
	if len(analyses[0].Issues) == 0 {
		t.Error("thin post should have issues")
	}
}

func TestGetPost_NotFound(t *testing.T) {
	svc, _ := testService(t)
	if _, err := svc.GetPost(context.Background(), "_posts/nope.md"); err == nil {
		t.Error("expected not-found error")
	}
}
