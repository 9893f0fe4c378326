package domain

import "strings"

// BusinessContext carries the business facts a document is localized for. It
// is immutable for the duration of a pipeline run and consumed only by prompt
// synthesis.
type BusinessContext struct {
	Name     string   `json:"name"`
	Industry string   `json:"industry,omitempty"`
	Location string   `json:"location,omitempty"`
	Services []string `json:"services,omitempty"`
}

// DefaultIndustry is used when the caller provides no industry.
const DefaultIndustry = "business"

// Normalize trims whitespace and drops empty service entries.
func (b *BusinessContext) Normalize() {
	b.Name = strings.TrimSpace(b.Name)
	b.Industry = strings.TrimSpace(b.Industry)
	b.Location = strings.TrimSpace(b.Location)
	services := b.Services[:0]
	for _, s := range b.Services {
		if s = strings.TrimSpace(s); s != "" {
			services = append(services, s)
		}
	}
	b.Services = services
}

// IndustryOrDefault returns the industry, falling back to DefaultIndustry.
func (b BusinessContext) IndustryOrDefault() string {
	if b.Industry != "" {
		return b.Industry
	}
	return DefaultIndustry
}
