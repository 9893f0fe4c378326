package htmlscan

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/domain"
)

var backgroundURLPattern = regexp.MustCompile(`url\(\s*['"]?([^'")]+?)['"]?\s*\)`)

var titleCaser = cases.Title(language.Und)

// Detect parses the document into a best-effort element tree and enumerates
// every replaceable visual asset in three phases: images, inline background
// images, then videos, each in document order. Malformed markup never aborts
// the pass; unparsable fragments simply contribute no assets. An empty result
// is a valid outcome, not an error.
func Detect(document string) []domain.DetectedAsset {
	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		// html.Parse is lenient; only a failing reader errors, and a string
		// reader cannot fail. Guarded anyway so callers never see a panic.
		return nil
	}

	var images, backgrounds, videos []*html.Node
	walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		switch n.Data {
		case "img":
			images = append(images, n)
		case "video":
			videos = append(videos, n)
		}
		if style := attrValue(n, "style"); style != "" && strings.Contains(strings.ToLower(style), "background") {
			backgrounds = append(backgrounds, n)
		}
	})

	var assets []domain.DetectedAsset
	index := 0

	for _, n := range images {
		ref := strings.TrimSpace(attrValue(n, "src"))
		if !replaceable(ref) {
			continue
		}
		section := Classify(n)
		desc := strings.TrimSpace(attrValue(n, "alt"))
		if desc == "" {
			desc = defaultDescription(section, domain.AssetKindImage)
		}
		width, height := dimensions(n)
		assets = append(assets, domain.DetectedAsset{
			ID:                fmt.Sprintf("img-%d", index),
			Kind:              domain.AssetKindImage,
			OriginalReference: ref,
			DescriptiveText:   desc,
			Section:           section,
			Width:             width,
			Height:            height,
			Status:            domain.AssetStatusPending,
		})
		index++
	}

	for _, n := range backgrounds {
		ref := backgroundReference(attrValue(n, "style"))
		if ref == "" {
			continue
		}
		section := Classify(n)
		assets = append(assets, domain.DetectedAsset{
			ID:                fmt.Sprintf("bg-%d", index),
			Kind:              domain.AssetKindBackground,
			OriginalReference: ref,
			DescriptiveText:   defaultDescription(section, domain.AssetKindBackground),
			Section:           section,
			Status:            domain.AssetStatusPending,
		})
		index++
	}

	for _, n := range videos {
		ref := videoReference(n)
		if ref == "" {
			continue
		}
		section := Classify(n)
		desc := strings.TrimSpace(attrValue(n, "aria-label"))
		if desc == "" {
			desc = defaultDescription(section, domain.AssetKindVideo)
		}
		width, height := dimensions(n)
		assets = append(assets, domain.DetectedAsset{
			ID:                fmt.Sprintf("vid-%d", index),
			Kind:              domain.AssetKindVideo,
			OriginalReference: ref,
			DescriptiveText:   desc,
			Section:           section,
			Width:             width,
			Height:            height,
			Status:            domain.AssetStatusPending,
		})
		index++
	}

	return assets
}

func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walk(child, visit)
	}
}

// replaceable excludes inline-encoded data and placeholder stand-ins; neither
// is a real asset worth regenerating.
func replaceable(ref string) bool {
	if ref == "" {
		return false
	}
	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "data:") {
		return false
	}
	if strings.Contains(lower, "placeholder") {
		return false
	}
	return true
}

// backgroundReference extracts the first replaceable url(...) token from an
// inline style declaration.
func backgroundReference(style string) string {
	for _, match := range backgroundURLPattern.FindAllStringSubmatch(style, -1) {
		ref := strings.TrimSpace(match[1])
		if replaceable(ref) {
			return ref
		}
	}
	return ""
}

// videoReference prefers the poster, then the element src, then the first
// nested <source> element.
func videoReference(n *html.Node) string {
	candidates := []string{
		strings.TrimSpace(attrValue(n, "poster")),
		strings.TrimSpace(attrValue(n, "src")),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.Data == "source" {
			candidates = append(candidates, strings.TrimSpace(attrValue(child, "src")))
		}
	}
	for _, ref := range candidates {
		if replaceable(ref) {
			return ref
		}
	}
	return ""
}

func defaultDescription(section string, kind domain.AssetKind) string {
	label := titleCaser.String(section)
	switch kind {
	case domain.AssetKindBackground:
		return label + " section background"
	case domain.AssetKindVideo:
		return label + " section video poster"
	default:
		return label + " section photo"
	}
}

func dimensions(n *html.Node) (int, int) {
	return dimensionAttr(n, "width"), dimensionAttr(n, "height")
}

func dimensionAttr(n *html.Node, name string) int {
	raw := strings.TrimSpace(attrValue(n, name))
	raw = strings.TrimSuffix(raw, "px")
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0
	}
	return value
}
