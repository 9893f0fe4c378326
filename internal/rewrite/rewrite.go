// Package rewrite substitutes generated asset references into a document
// snapshot while leaving every unrelated byte untouched. It works over the
// serialized document text rather than a parsed tree so that no markup is
// normalized or reordered by the substitution.
package rewrite

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/CodeMasters-AiFactory/Stargate-sub006/internal/domain"
)

var styleAttrPattern = regexp.MustCompile(`(?i)\bstyle\s*=\s*("[^"]*"|'[^']*')`)

// Apply replaces originalRef with newRef in the document according to the
// asset kind. Zero matches is a silent no-op: the function returns the input
// unchanged, which is the expected outcome when detection ran against a stale
// snapshot or the reference was already rewritten.
func Apply(document, originalRef, newRef string, kind domain.AssetKind) string {
	if document == "" || strings.TrimSpace(originalRef) == "" || originalRef == newRef {
		return document
	}
	switch kind {
	case domain.AssetKindImage:
		return replaceTagAttr(document, "img", "src", originalRef, newRef)
	case domain.AssetKindVideo:
		return replaceTagAttr(document, "video", "poster", originalRef, newRef)
	case domain.AssetKindBackground:
		return replaceStyleRef(document, originalRef, newRef)
	}
	return document
}

// replaceTagAttr rewrites the reference attribute of the first element whose
// attribute value exactly equals originalRef. Only the first match is
// rewritten so that a duplicated reference detected in two contexts can be
// replaced independently, one rewrite per detected asset.
func replaceTagAttr(document, tag, attr, originalRef, newRef string) string {
	var out strings.Builder
	out.Grow(len(document))
	z := html.NewTokenizer(strings.NewReader(document))
	replaced := false
	for {
		tt := z.Next()
		raw := string(z.Raw())
		if tt == html.ErrorToken {
			// EOF, plus any trailing bytes of an unterminated token.
			out.WriteString(raw)
			break
		}
		if !replaced && (tt == html.StartTagToken || tt == html.SelfClosingTagToken) {
			token := z.Token()
			if token.Data == tag && tokenAttr(token, attr) == originalRef {
				raw = swapReference(raw, originalRef, newRef)
				replaced = true
			}
		}
		out.WriteString(raw)
	}
	return out.String()
}

// replaceStyleRef rewrites originalRef inside the inline style text of every
// element whose style contains it. The substitution stays inside the style
// attribute value so identical text elsewhere in the tag is preserved.
func replaceStyleRef(document, originalRef, newRef string) string {
	var out strings.Builder
	out.Grow(len(document))
	z := html.NewTokenizer(strings.NewReader(document))
	for {
		tt := z.Next()
		raw := string(z.Raw())
		if tt == html.ErrorToken {
			out.WriteString(raw)
			break
		}
		if tt == html.StartTagToken || tt == html.SelfClosingTagToken {
			token := z.Token()
			if strings.Contains(tokenAttr(token, "style"), originalRef) {
				raw = styleAttrPattern.ReplaceAllStringFunc(raw, func(match string) string {
					return strings.ReplaceAll(match, originalRef, newRef)
				})
			}
		}
		out.WriteString(raw)
	}
	return out.String()
}

// swapReference rewrites the reference inside the raw tag text, preferring a
// quoted exact match so that a reference echoed in another attribute (e.g.
// alt text) is not clobbered.
func swapReference(raw, originalRef, newRef string) string {
	for _, quote := range []string{`"`, `'`} {
		needle := quote + originalRef + quote
		if strings.Contains(raw, needle) {
			return strings.Replace(raw, needle, quote+newRef+quote, 1)
		}
	}
	return strings.Replace(raw, originalRef, newRef, 1)
}

func tokenAttr(token html.Token, name string) string {
	for _, attr := range token.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}
