// Package promptgen converts a detected asset plus business context into a
// natural-language generation prompt. Synthesis is pure: identical inputs
// always produce byte-identical prompts, which keeps retries auditable and
// lets tests pin exact output.
package promptgen

import (
	"fmt"
	"strings"

	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/domain"
)

const (
	// contextMinLength is the threshold below which descriptive text is
	// considered too trivial to add signal to the prompt.
	contextMinLength = 5
	// maxKeywords caps the keyword clause.
	maxKeywords = 5

	videoPrefix = "Video thumbnail/poster: "
)

// sectionTemplates maps a section label to its base prompt. The %s slots are
// business name, industry, and an optional location clause.
var sectionTemplates = map[string]string{
	"hero":         "Professional hero banner photograph for %s, a %s%s. Modern, high-impact composition suitable for the top of a website.",
	"about":        "Authentic photograph telling the story of %s, a %s%s. Warm, trustworthy atmosphere.",
	"services":     "Clean photograph showcasing the services offered by %s, a %s%s.",
	"features":     "Detailed photograph highlighting what sets %s apart, a %s%s.",
	"testimonials": "Friendly photograph of satisfied customers of %s, a %s%s. Genuine, candid feel.",
	"contact":      "Welcoming photograph for the contact section of %s, a %s%s.",
	"gallery":      "High-quality portfolio photograph for %s, a %s%s.",
	"team":         "Professional group photograph of the team behind %s, a %s%s.",
	"background":   "Subtle, unobtrusive background texture for the website of %s, a %s%s. Low contrast, suitable behind overlaid text.",
}

// Build synthesizes the generation prompt for one asset. Sections without a
// template (general, header, footer, ...) fall back to the hero template;
// background assets without a template fall back to the background template
// since a hero-style composition would overwhelm overlaid content.
func Build(asset domain.DetectedAsset, business domain.BusinessContext, keywords []string, locale string) string {
	business.Normalize()
	name := business.Name
	if name == "" {
		name = "the business"
	}
	industry := business.IndustryOrDefault()
	location := ""
	if business.Location != "" {
		location = " in " + business.Location
	}

	template, ok := sectionTemplates[asset.Section]
	if !ok {
		if asset.Kind == domain.AssetKindBackground {
			template = sectionTemplates["background"]
		} else {
			template = sectionTemplates["hero"]
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, template, name, industry, location)

	if text := strings.TrimSpace(asset.DescriptiveText); len(text) > contextMinLength {
		fmt.Fprintf(&b, " Context: %s.", text)
	}
	if joined := joinKeywords(keywords); joined != "" {
		fmt.Fprintf(&b, " Keywords: %s.", joined)
	}
	if locale = strings.TrimSpace(locale); locale != "" {
		fmt.Fprintf(&b, " Use %s language for any on-image typography or signage.", strings.ToUpper(locale))
	}

	prompt := b.String()
	if asset.Kind == domain.AssetKindVideo {
		// The generation service only ever produces a still image, even for
		// video assets.
		prompt = videoPrefix + prompt
	}
	return prompt
}

func joinKeywords(keywords []string) string {
	cleaned := make([]string, 0, maxKeywords)
	for _, keyword := range keywords {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			continue
		}
		cleaned = append(cleaned, keyword)
		if len(cleaned) == maxKeywords {
			break
		}
	}
	return strings.Join(cleaned, ", ")
}
