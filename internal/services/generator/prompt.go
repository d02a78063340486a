package generator

import (
	"fmt"
	"strings"

	"quill/internal/articles"
	"quill/internal/textutil"
)

// basePrompt captures the instructions sent to the model when turning an
// article into a tweet candidate. Keep updates centralized here so it is easy
// to tweak without hunting through call sites.
const basePrompt = `You are a social media editor who writes short, factual tweets about technology news.

Rules:

- The tweet body must fit in 280 characters including hashtags and link.

- Do not invent facts that are not in the article. No clickbait, no emoji walls.

- Rate impact_score 0-10 for how newsworthy the article is to a technical audience.

- Rate quality_score 0-10 for how confident you are in the tweet text itself.

You must respond ONLY with a JSON object like: {"tweet": "text", "impact_score": 7, "quality_score": 8}`

const maxPromptContentRunes = 2000

func systemPrompt(theme string) string {
	if theme = strings.TrimSpace(theme); theme == "" {
		return basePrompt
	}
	return basePrompt + "\n\nEditorial focus: " + theme
}

func articlePrompt(item *articles.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", item.Title)
	if item.URL != "" {
		fmt.Fprintf(&b, "URL: %s\n", item.URL)
	}
	if content := strings.TrimSpace(item.Content); content != "" {
		fmt.Fprintf(&b, "\n%s\n", textutil.Truncate(content, maxPromptContentRunes))
	}
	return b.String()
}
