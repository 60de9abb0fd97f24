package enrichment

import (
	"fmt"
	"strings"

	"ContentActivation/internal/ports"
)

const excerptLength = 1000

func metaDescriptionPrompt(gctx ports.GenerationContext) string {
	return fmt.Sprintf(
		"Generate a concise meta description (max %d characters) for this marketing article. "+
			"Focus on key benefits and include a subtle call to action. Return only the description.\n\n"+
			"Title: %s\n\nContent: %s",
		MaxMetaDescription, gctx.Title, gctx.Excerpt)
}

func keywordsPrompt(gctx ports.GenerationContext) string {
	return fmt.Sprintf(
		"Extract %d-%d relevant SEO keywords from this marketing content. "+
			"Return only the keywords as a comma-separated list.\n\nTitle: %s\n\nContent: %s",
		MinKeywords, MaxKeywords, gctx.Title, gctx.Excerpt)
}

func altTextPrompt(gctx ports.GenerationContext) string {
	var b strings.Builder
	b.WriteString("Write concise alt text (10-150 characters) for this image in a marketing article. ")
	b.WriteString("Describe what the image shows and why it matters to the reader. ")
	b.WriteString("Do not start with \"image of\" or \"picture showing\".")
	writeContext(&b, gctx)
	return b.String()
}

// altTextRetryPrompt is the second and last attempt for an image. It repeats the rejection so
// the model can correct itself and tightens the output format.
func altTextRetryPrompt(gctx ports.GenerationContext, rejected string, issue error) string {
	var b strings.Builder
	b.WriteString("Your previous alt text was rejected (")
	b.WriteString(issue.Error())
	b.WriteString("): \"")
	b.WriteString(rejected)
	b.WriteString("\".\n")
	b.WriteString("Write new alt text of 3 to 20 words, at most 150 characters. ")
	b.WriteString("Start directly with the main subject, for example \"Bar chart comparing...\". ")
	b.WriteString("Never begin with \"image of\", \"picture of\", \"photo of\" or similar phrases. ")
	b.WriteString("Return only the alt text.")
	writeContext(&b, gctx)
	return b.String()
}

func writeContext(b *strings.Builder, gctx ports.GenerationContext) {
	if gctx.Title != "" {
		b.WriteString("\nArticle title: ")
		b.WriteString(gctx.Title)
	}
	if len(gctx.Tags) > 0 {
		b.WriteString("\nTags: ")
		b.WriteString(strings.Join(gctx.Tags, ", "))
	}
	if gctx.Audience != "" {
		b.WriteString("\nAudience: ")
		b.WriteString(gctx.Audience)
	}
}

func excerpt(body string) string {
	runes := []rune(strings.Join(strings.Fields(body), " "))
	if len(runes) <= excerptLength {
		return string(runes)
	}
	return string(runes[:excerptLength])
}
