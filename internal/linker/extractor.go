// Package linker builds a keyword index over blog posts and rewrites post
// bodies to cross-link a bounded number of keyword occurrences.
package linker

import (
	"regexp"
	"strings"
)

var (
	// Katakana runs pick up loanword/technical terms from Japanese titles.
	// The prolonged sound mark (ー) is script Common, so it is added to the
	// class explicitly to keep words like マーケティング in one run.
	katakanaRe = regexp.MustCompile(`[\p{Katakana}ー]+`)
	alnumRe    = regexp.MustCompile(`[A-Za-z0-9]{2,}`)
)

// domainPhrases are fixed topic terms matched against titles, covering the
// blog's main categories (AI, startup, marketing, management). Ordering
// matters: it is the candidate order for rule 3.
var domainPhrases = []string{
	"生成AI",
	"AI活用",
	"AI導入",
	"人工知能",
	"AI",
	"ChatGPT",
	"起業",
	"スタートアップ",
	"資金調達",
	"副業",
	"フリーランス",
	"マーケティング",
	"コンテンツマーケティング",
	"SEO対策",
	"SEO",
	"SNS運用",
	"経営戦略",
	"経営",
	"ビジネスモデル",
	"業務効率化",
	"自動化",
}

// ExtractKeywords mines candidate keywords from a post title using three
// rules applied in order: katakana runs, alphanumeric runs of length >= 2,
// and the fixed domain phrase list. The result is deduplicated preserving
// first occurrence. An empty title yields no keywords.
func ExtractKeywords(title string) []string {
	if title == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(kw string) {
		if kw == "" {
			return
		}
		if _, dup := seen[kw]; dup {
			return
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}

	for _, m := range katakanaRe.FindAllString(title, -1) {
		add(m)
	}
	for _, m := range alnumRe.FindAllString(title, -1) {
		add(m)
	}
	for _, phrase := range domainPhrases {
		if strings.Contains(title, phrase) {
			add(phrase)
		}
	}

	return out
}
