// Package seo scores blog posts against the site's SEO checklist and
// renders an improvement report.
package seo

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/asakura/interlink/internal/models"
)

var (
	digitRe        = regexp.MustCompile(`\d+`)
	h2Re           = regexp.MustCompile(`(?m)^##\s`)
	h3Re           = regexp.MustCompile(`(?m)^###\s`)
	imageRe        = regexp.MustCompile(`!\[(.*?)\]\((.*?)\)`)
	internalLinkRe = regexp.MustCompile(`\[([^\]]+)\]\((/[^)]+)\)`)
)

// powerWords are the appeal terms the checklist expects to see in titles.
var powerWords = []string{"方法", "コツ", "完全ガイド", "成功", "戦略", "実践", "解説"}

// Analysis is the scored result for one post.
type Analysis struct {
	Path        string   `json:"path"`
	Title       string   `json:"title"`
	Score       int      `json:"score"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
}

// Analyzer holds the checklist thresholds. Lengths are in runes because the
// site's content is Japanese.
type Analyzer struct {
	MinWordCount int
	MaxWordCount int
	TitleMin     int
	TitleMax     int
	MetaDescMin  int
	MetaDescMax  int
}

// NewAnalyzer returns an Analyzer with the checklist defaults.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		MinWordCount: 1000,
		MaxWordCount: 3000,
		TitleMin:     25,
		TitleMax:     35,
		MetaDescMin:  120,
		MetaDescMax:  155,
	}
}

// AnalyzePost scores a single post. The score is clamped to 0-100.
func (a *Analyzer) AnalyzePost(p *models.Post) *Analysis {
	out := &Analysis{Path: p.Path, Title: p.Title}

	score, issues := a.analyzeTitle(p.Title)
	out.Score += score
	out.Issues = append(out.Issues, issues...)

	score, issues = a.analyzeMetaDescription(p.Description)
	out.Score += score
	out.Issues = append(out.Issues, issues...)

	score, issues = a.analyzeContent(p.Body, p.Categories)
	out.Score += score
	out.Issues = append(out.Issues, issues...)

	score, issues = a.analyzeImages(p.Body, p.Frontmatter)
	out.Score += score
	out.Issues = append(out.Issues, issues...)

	score, issues = a.analyzeInternalLinks(p.Body)
	out.Score += score
	out.Issues = append(out.Issues, issues...)

	out.Suggestions = generateSuggestions(out.Issues)

	if out.Score > 100 {
		out.Score = 100
	}
	if out.Score < 0 {
		out.Score = 0
	}
	return out
}

func (a *Analyzer) analyzeTitle(title string) (int, []string) {
	if title == "" {
		return 0, []string{"タイトルが設定されていません"}
	}

	score := 20
	var issues []string

	length := utf8.RuneCountInString(title)
	if length < a.TitleMin {
		score -= 5
		issues = append(issues, fmt.Sprintf("タイトルが短すぎます（%d文字）。%d文字以上が推奨です", length, a.TitleMin))
	} else if length > a.TitleMax {
		score -= 5
		issues = append(issues, fmt.Sprintf("タイトルが長すぎます（%d文字）。%d文字以下が推奨です", length, a.TitleMax))
	}

	hasPower := false
	for _, w := range powerWords {
		if strings.Contains(title, w) {
			hasPower = true
			break
		}
	}
	if hasPower {
		score += 5
	} else {
		issues = append(issues, "タイトルにパワーワード（方法、コツ、完全ガイドなど）が含まれていません")
	}

	if digitRe.MatchString(title) {
		score += 5
	} else {
		issues = append(issues, "タイトルに数字が含まれていません（例：5つの方法、10のコツ）")
	}

	return score, issues
}

func (a *Analyzer) analyzeMetaDescription(description string) (int, []string) {
	if description == "" {
		return 0, []string{"メタディスクリプションが設定されていません"}
	}

	score := 15
	var issues []string

	length := utf8.RuneCountInString(description)
	if length < a.MetaDescMin {
		score -= 5
		issues = append(issues, fmt.Sprintf("メタディスクリプションが短すぎます（%d文字）", length))
	} else if length > a.MetaDescMax {
		score -= 5
		issues = append(issues, fmt.Sprintf("メタディスクリプションが長すぎます（%d文字）", length))
	}

	return score, issues
}

func (a *Analyzer) analyzeContent(body string, categories []string) (int, []string) {
	score := 30
	var issues []string

	wordCount := utf8.RuneCountInString(body)
	if wordCount < a.MinWordCount {
		score -= 10
		issues = append(issues, fmt.Sprintf("コンテンツが短すぎます（%d文字）。%d文字以上が推奨です", wordCount, a.MinWordCount))
	} else if wordCount > a.MaxWordCount {
		score -= 5
		issues = append(issues, fmt.Sprintf("コンテンツが長すぎます（%d文字）。%d文字以下が推奨です", wordCount, a.MaxWordCount))
	}

	h2Count := len(h2Re.FindAllString(body, -1))
	h3Count := len(h3Re.FindAllString(body, -1))

	if h2Count < 3 {
		score -= 5
		issues = append(issues, fmt.Sprintf("H2見出しが少なすぎます（%d個）。3個以上が推奨です", h2Count))
	}
	if h2Count > 0 && h3Count == 0 {
		score -= 3
		issues = append(issues, "H3見出しが使用されていません。階層構造を作ることが推奨されます")
	}

	if len(categories) > 0 && wordCount > 0 {
		mainKeyword := categories[0]
		count := strings.Count(strings.ToLower(body), strings.ToLower(mainKeyword))
		density := float64(count*utf8.RuneCountInString(mainKeyword)) / float64(wordCount) * 100

		if density < 0.5 {
			score -= 5
			issues = append(issues, fmt.Sprintf("主要キーワード「%s」の出現頻度が低すぎます", mainKeyword))
		} else if density > 3 {
			score -= 5
			issues = append(issues, fmt.Sprintf("主要キーワード「%s」の出現頻度が高すぎます（キーワードスタッフィング）", mainKeyword))
		}
	}

	return score, issues
}

func (a *Analyzer) analyzeImages(body string, fm map[string]interface{}) (int, []string) {
	score := 15
	var issues []string

	if fmString(fm, "image") == "" {
		score -= 10
		issues = append(issues, "アイキャッチ画像が設定されていません")
	} else if fmString(fm, "image_alt") == "" {
		score -= 5
		issues = append(issues, "アイキャッチ画像のalt属性が設定されていません")
	}

	images := imageRe.FindAllStringSubmatch(body, -1)
	if len(images) == 0 {
		score -= 5
		issues = append(issues, "本文内に画像が含まれていません")
	} else {
		for _, m := range images {
			if m[1] == "" {
				issues = append(issues, "alt属性が空の画像があります")
				break
			}
		}
	}

	return score, issues
}

func (a *Analyzer) analyzeInternalLinks(body string) (int, []string) {
	score := 20
	var issues []string

	links := internalLinkRe.FindAllString(body, -1)
	if len(links) == 0 {
		score -= 10
		issues = append(issues, "内部リンクが含まれていません")
	} else if len(links) < 3 {
		score -= 5
		issues = append(issues, fmt.Sprintf("内部リンクが少なすぎます（%d個）。3個以上が推奨です", len(links)))
	}

	return score, issues
}

// generateSuggestions maps known issues to concrete improvement advice.
func generateSuggestions(issues []string) []string {
	var out []string
	for _, issue := range issues {
		switch {
		case strings.Contains(issue, "タイトルが短すぎます"):
			out = append(out, "タイトルに具体的な数字や期待される結果を追加してください")
		case strings.Contains(issue, "パワーワード"):
			out = append(out, "「〜の方法」「成功する〜」「完全ガイド」などの訴求力のある言葉を追加してください")
		case strings.Contains(issue, "メタディスクリプション"):
			out = append(out, "記事の要約と読者が得られるメリットを120-155文字で記載してください")
		case strings.Contains(issue, "内部リンク"):
			out = append(out, "関連する他の記事へのリンクを3-5個追加してください")
		case strings.Contains(issue, "H2見出し"):
			out = append(out, "コンテンツを論理的なセクションに分け、各セクションにH2見出しを追加してください")
		case strings.Contains(issue, "画像"):
			out = append(out, "視覚的な説明やインフォグラフィックを追加して、読みやすさを向上させてください")
		}
	}
	return out
}

func fmString(fm map[string]interface{}, key string) string {
	if fm == nil {
		return ""
	}
	if s, ok := fm[key].(string); ok {
		return s
	}
	return ""
}
