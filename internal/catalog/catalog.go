package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

// ErrUnknownTemplate is returned when an id is not in the catalog.
var ErrUnknownTemplate = errors.New("unknown template")

// Icon is an opaque display handle (inline SVG markup). The catalog never
// inspects it; renderers pass it through unchanged.
type Icon string

// Template describes a target stack offered as a starting point.
type Template struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Icon        Icon     `json:"icon" yaml:"-"`
	Tags        []string `json:"tags" yaml:"tags"`
}

const svgOpen = `<svg xmlns="http://www.w3.org/2000/svg" width="24" height="24" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round">`

// registry is the fixed, ordered template table.
var registry = []Template{
	{
		ID:          "nextjs",
		Name:        "Next.js",
		Description: "Full-stack React framework with built-in SSR and API routes",
		Icon:        svgOpen + `<path d="M12 22C6.5 22 2 17.5 2 12S6.5 2 12 2s10 4.5 10 10-4.5 10-10 10z"/><path d="M2 12h10"/><path d="M12 2v10"/><path d="M12 12 4.93 19.07"/><path d="M12 12 19.07 4.93"/></svg>`,
		Tags:        []string{"React", "SSR", "Full-stack"},
	},
	{
		ID:          "react",
		Name:        "React",
		Description: "UI library for building interactive user interfaces",
		Icon:        svgOpen + `<circle cx="12" cy="12" r="2"/><path d="M12 9a4.5 4.5 0 0 0 4.5 4.5"/><path d="M12 14.5A4.5 4.5 0 0 0 7.5 10"/><path d="M12 4.5A4.5 4.5 0 0 1 7.5 9"/><path d="M12 4.5A4.5 4.5 0 0 0 16.5 9"/></svg>`,
		Tags:        []string{"Frontend", "SPA"},
	},
	{
		ID:          "vue",
		Name:        "Vue.js",
		Description: "Progressive framework for building user interfaces",
		Icon:        svgOpen + `<polygon points="12 2 22 12 12 22 2 12 12 2"/></svg>`,
		Tags:        []string{"Frontend", "SPA"},
	},
	{
		ID:          "express",
		Name:        "Express.js",
		Description: "Fast, unopinionated, minimalist web framework for Node.js",
		Icon:        svgOpen + `<path d="M7 8l-4 4 4 4"/><path d="M17 8l4 4-4 4"/><path d="M14 4l-4 16"/></svg>`,
		Tags:        []string{"Backend", "API", "Node.js"},
	},
	{
		ID:          "mobile",
		Name:        "React Native",
		Description: "Create native apps for Android and iOS using React",
		Icon:        svgOpen + `<path d="M18 8V6a2 2 0 0 0-2-2H8a2 2 0 0 0-2 2v2"/><path d="M3 12h18"/><path d="M18 12v6a2 2 0 0 1-2 2H8a2 2 0 0 1-2-2v-6"/></svg>`,
		Tags:        []string{"Mobile", "Cross-platform"},
	},
}

// All returns the catalog in display order. The slice is a copy; callers may
// not reach the registry through it.
func All() []Template {
	out := make([]Template, len(registry))
	for i, t := range registry {
		t.Tags = append([]string(nil), t.Tags...)
		out[i] = t
	}
	return out
}

// IDs returns the template ids in display order.
func IDs() []string {
	ids := make([]string, len(registry))
	for i, t := range registry {
		ids[i] = t.ID
	}
	return ids
}

// Lookup finds a template by id.
func Lookup(id string) (Template, error) {
	for _, t := range All() {
		if t.ID == id {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, id)
}

// Has reports whether id names a catalog entry.
func Has(id string) bool {
	_, err := Lookup(id)
	return err == nil
}

// Index returns the display position of id, or -1.
func Index(id string) int {
	for i, t := range registry {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// searchable adapts a template slice to fuzzy.Source. Each entry matches on
// its name, id and tags.
type searchable []Template

func (s searchable) String(i int) string {
	t := s[i]
	return t.Name + " " + t.ID + " " + strings.Join(t.Tags, " ")
}

func (s searchable) Len() int { return len(s) }

// Search fuzzy-matches query against the catalog, best match first.
// An empty query returns the whole catalog in display order.
func Search(query string) []Template {
	all := All()
	query = strings.TrimSpace(query)
	if query == "" {
		return all
	}

	matches := fuzzy.FindFrom(query, searchable(all))
	out := make([]Template, 0, len(matches))
	for _, m := range matches {
		out = append(out, all[m.Index])
	}
	return out
}
