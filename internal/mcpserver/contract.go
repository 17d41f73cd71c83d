package mcpserver

// PostFormatContract describes the canonical Jekyll post format that
// LLM consumers should follow when drafting or editing posts.
const PostFormatContract = `# Interlink Post Format Contract

Every Markdown post stored under _posts/ MUST follow this structure.

## Structure

` + "```" + `markdown
---
title: 記事タイトル                  # REQUIRED – used for keyword extraction and link tooltips
categories: [起業]                   # OPTIONAL – YAML list; also accepted space-separated
tags: [スタートアップ, 資金調達]      # OPTIONAL – YAML list; also accepted space-separated
description: 検索結果に出る説明文     # OPTIONAL – 120-155 characters recommended
permalink: /custom-url/              # OPTIONAL – overrides the filename-derived URL
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. **YAML frontmatter is mandatory.** The ` + "```" + `---` + "```" + ` fences must be the first
   thing in the file (no leading blank lines).
2. **` + "`" + `title` + "`" + ` field is required.** Keywords are extracted from it (katakana
   runs, ASCII alphanumeric runs, and known domain phrases), so write titles
   that contain the terms other posts should link with.
3. **File names** follow Jekyll convention: ` + "`" + `YYYY-MM-DD-slug.md` + "`" + `. The URL
   becomes ` + "`" + `/slug/` + "`" + ` unless ` + "`" + `permalink` + "`" + ` is set.
4. **Categories and tags** become link keywords too. Use the site vocabulary
   (起業, AI, マーケティング, 経営) where it applies.
5. **Do not hand-write internal links for covered keywords.** The annotate
   pass inserts up to 5 internal links per post automatically; existing links
   to a target suppress further links to it.
6. **Encoding** is UTF-8 with a trailing newline.

## Seed keywords

Additional keyword-to-URL mappings live in ` + "`" + `_data/keywords.yml` + "`" + `:

` + "```" + `yaml
資金調達:
  - url: /funding-guide/
    title: 資金調達完全ガイド
` + "```" + `

The file is optional; a missing or malformed file simply disables seeding.
`
