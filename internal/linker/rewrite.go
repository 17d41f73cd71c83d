package linker

import (
	"strings"

	"github.com/asakura/interlink/internal/models"
)

// DefaultMaxLinks caps how many internal links a single rewrite pass may
// insert into one post body.
const DefaultMaxLinks = 5

// Result pairs a post with the links the rewrite pass inserted into it.
type Result struct {
	Post     *models.Post
	Inserted []models.InsertedLink
}

// Annotate runs the full two-phase pass: build the keyword index over every
// post (plus the seed map), then rewrite each body in the same order. The
// index build completes over the whole set before any rewrite starts, so
// keywords contributed by later posts link earlier ones too.
func Annotate(posts []*models.Post, seed SeedMap, maxLinks int) []Result {
	ix := BuildIndex(posts, seed)

	out := make([]Result, 0, len(posts))
	for _, p := range posts {
		body, inserted := Rewrite(p.Body, p.URL, ix, maxLinks)
		p.Body = body
		out = append(out, Result{Post: p, Inserted: inserted})
	}
	return out
}

// Rewrite produces an updated body with up to maxLinks internal links
// inserted, given the complete keyword index and the post's own URL (which is
// never linked to itself). Keywords are applied longest first; for each the
// first candidate target and the first unbracketed literal occurrence win. A
// keyword is skipped when the body has no occurrence or already links to the
// chosen target URL.
func Rewrite(body, selfURL string, ix *Index, maxLinks int) (string, []models.InsertedLink) {
	if maxLinks <= 0 {
		maxLinks = DefaultMaxLinks
	}

	var inserted []models.InsertedLink
	for _, kw := range ix.KeywordsByLength() {
		if len(inserted) >= maxLinks {
			break
		}

		target, ok := chooseTarget(ix.Targets(kw), selfURL)
		if !ok {
			continue
		}
		if !strings.Contains(body, kw) {
			continue
		}
		if linksTo(body, target.URL) {
			continue
		}

		rewritten, ok := replaceFirstUnlinked(body, kw, target)
		if !ok {
			continue
		}
		body = rewritten
		inserted = append(inserted, models.InsertedLink{
			SourceURL: selfURL,
			TargetURL: target.URL,
			Keyword:   kw,
		})
	}
	return body, inserted
}

// chooseTarget returns the first candidate whose URL differs from selfURL.
// There is deliberately no relevance ranking beyond index order.
func chooseTarget(targets []Target, selfURL string) (Target, bool) {
	for _, t := range targets {
		if t.URL != selfURL {
			return t, true
		}
	}
	return Target{}, false
}

// linksTo reports whether body already contains a markdown link pointing at
// url, either bare or with a title attribute.
func linksTo(body, url string) bool {
	return strings.Contains(body, "]("+url+")") ||
		strings.Contains(body, "]("+url+` "`)
}

// replaceFirstUnlinked replaces the first occurrence of kw that is not
// immediately adjacent to link bracket syntax with a markdown link to target,
// using kw as link text and the target title as tooltip. Only immediate
// adjacency is inspected, matching the single-pass substitution semantics:
// occurrences deeper inside existing link text are still eligible.
func replaceFirstUnlinked(body, kw string, target Target) (string, bool) {
	for from := 0; from < len(body); {
		j := strings.Index(body[from:], kw)
		if j < 0 {
			return body, false
		}
		i := from + j
		end := i + len(kw)

		openAdjacent := i > 0 && body[i-1] == '['
		closeAdjacent := end < len(body) && body[end] == ']'
		if openAdjacent || closeAdjacent {
			from = i + 1
			continue
		}

		link := "[" + kw + "](" + target.URL + ` "` + target.Title + `")`
		return body[:i] + link + body[end:], true
	}
	return body, false
}
