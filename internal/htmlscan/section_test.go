package htmlscan

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

// findFirst returns the first element with the given tag name.
func findFirst(t *testing.T, doc, tag string) *html.Node {
	t.Helper()
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var found *html.Node
	walk(root, func(n *html.Node) {
		if found == nil && n.Type == html.ElementNode && n.Data == tag {
			found = n
		}
	})
	if found == nil {
		t.Fatalf("no <%s> element in %q", tag, doc)
	}
	return found
}

func TestClassifyClosestMatchWins(t *testing.T) {
	doc := `<footer class="site-footer"><div class="hero-banner"><img src="a.jpg"></div></footer>`
	if got := Classify(findFirst(t, doc, "img")); got != "hero" {
		t.Fatalf("section = %q, want hero", got)
	}
}

func TestClassifyPriorityOrderWithinOneAncestor(t *testing.T) {
	// Both rules match on the same ancestor; hero outranks services.
	doc := `<div class="feature hero"><img src="a.jpg"></div>`
	if got := Classify(findFirst(t, doc, "img")); got != "hero" {
		t.Fatalf("section = %q, want hero", got)
	}
}

func TestClassifyByID(t *testing.T) {
	doc := `<div id="testimonials-block"><img src="a.jpg"></div>`
	if got := Classify(findFirst(t, doc, "img")); got != "testimonials" {
		t.Fatalf("section = %q, want testimonials", got)
	}
}

func TestClassifyFallsBackToGeneral(t *testing.T) {
	doc := `<div class="wrapper"><span class="inner"><img src="a.jpg"></span></div>`
	if got := Classify(findFirst(t, doc, "img")); got != SectionGeneral {
		t.Fatalf("section = %q, want general", got)
	}
}

func TestClassifyLabels(t *testing.T) {
	cases := map[string]string{
		"about-us":      "about",
		"our-story":     "about",
		"service-grid":  "services",
		"review-list":   "testimonials",
		"team-members":  "team",
		"contact-form":  "contact",
		"portfolio-row": "gallery",
		"main-nav":      "header",
		"page-footer":   "footer",
	}
	for class, want := range cases {
		doc := `<div class="` + class + `"><img src="a.jpg"></div>`
		if got := Classify(findFirst(t, doc, "img")); got != want {
			t.Fatalf("class %q: section = %q, want %q", class, got, want)
		}
	}
}

func TestClassifyIsCaseInsensitive(t *testing.T) {
	doc := `<div class="Hero-Section"><img src="a.jpg"></div>`
	if got := Classify(findFirst(t, doc, "img")); got != "hero" {
		t.Fatalf("section = %q, want hero", got)
	}
}
