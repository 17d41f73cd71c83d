package seo

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
)

// LowScoreThreshold marks posts that need attention in CLI output.
const LowScoreThreshold = 70

// AverageScore returns the mean score across analyses, 0 for an empty set.
func AverageScore(analyses []*Analysis) float64 {
	if len(analyses) == 0 {
		return 0
	}
	total := 0
	for _, a := range analyses {
		total += a.Score
	}
	return float64(total) / float64(len(analyses))
}

// LowScoring returns the analyses scoring below LowScoreThreshold.
func LowScoring(analyses []*Analysis) []*Analysis {
	var out []*Analysis
	for _, a := range analyses {
		if a.Score < LowScoreThreshold {
			out = append(out, a)
		}
	}
	return out
}

// WriteReport renders the markdown report: a summary followed by per-post
// details, worst scores first.
func WriteReport(w io.Writer, analyses []*Analysis, now time.Time) error {
	md := markdown.NewMarkdown(w)

	md.H1("SEO分析レポート")
	md.PlainText("")
	md.PlainText("分析日時: " + now.Format("2006-01-02 15:04:05"))
	md.PlainText("")

	md.H2("サマリー")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"項目", "値"},
		Rows: [][]string{
			{"分析記事数", strconv.Itoa(len(analyses))},
			{"平均SEOスコア", fmt.Sprintf("%.1f/100", AverageScore(analyses))},
		},
	})
	md.PlainText("")

	md.H2("記事別分析結果")
	md.PlainText("")

	sorted := make([]*Analysis, len(analyses))
	copy(sorted, analyses)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score < sorted[j].Score })

	for _, a := range sorted {
		title := a.Title
		if title == "" {
			title = a.Path
		}
		md.H3(title)
		md.PlainText("")
		md.BulletList(
			"ファイル: "+a.Path,
			fmt.Sprintf("SEOスコア: %d/100", a.Score),
		)
		if len(a.Issues) > 0 {
			md.PlainText("")
			md.PlainText("問題点:")
			md.BulletList(a.Issues...)
		}
		if len(a.Suggestions) > 0 {
			md.PlainText("")
			md.PlainText("改善提案:")
			md.BulletList(a.Suggestions...)
		}
		md.PlainText("")
	}

	return md.Build()
}
