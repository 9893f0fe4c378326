package htmlscan

import (
	"strings"

	"golang.org/x/net/html"
)

// SectionGeneral is the fallback label when no ancestor matches a rule.
const SectionGeneral = "general"

// sectionRules are tested in this fixed priority order at every ancestor.
// The closest ancestor with any match decides the label, so an element inside
// a hero block nested in a footer still classifies as hero.
var sectionRules = []struct {
	label    string
	keywords []string
}{
	{"hero", []string{"hero", "banner"}},
	{"about", []string{"about", "story"}},
	{"services", []string{"service", "feature"}},
	{"testimonials", []string{"testimonial", "review"}},
	{"team", []string{"team"}},
	{"contact", []string{"contact"}},
	{"gallery", []string{"gallery", "portfolio"}},
	{"footer", []string{"footer"}},
	{"header", []string{"header", "nav"}},
}

// Classify walks the ancestor chain outward from n (inclusive) toward the
// document root and returns the section label of the first ancestor whose
// class or id attributes match a rule. Pure and side-effect free.
func Classify(n *html.Node) string {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type != html.ElementNode {
			continue
		}
		haystack := strings.ToLower(attrValue(cur, "class") + " " + attrValue(cur, "id"))
		if strings.TrimSpace(haystack) == "" {
			continue
		}
		for _, rule := range sectionRules {
			for _, keyword := range rule.keywords {
				if strings.Contains(haystack, keyword) {
					return rule.label
				}
			}
		}
	}
	return SectionGeneral
}

func attrValue(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}
