// Package viewer projects a generated file set into tabs (code mode) or a
// short text excerpt (preview mode). It never mutates the file set.
package viewer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/firecrawl/appgen/internal/generator"
)

var (
	ErrEmptyFileSet = errors.New("file set is empty")
	ErrUnknownFile  = errors.New("unknown file")
	ErrUnknownMode  = errors.New("unknown view mode")
)

// Mode selects how the file set is presented.
type Mode int

const (
	Code Mode = iota
	Preview
)

func (m Mode) String() string {
	if m == Preview {
		return "preview"
	}
	return "code"
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == Code {
		return Preview
	}
	return Code
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "code":
		*m = Code
	case "preview":
		*m = Preview
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, b)
	}
	return nil
}

// PreviewLines is how many lines of the active file preview mode shows.
const PreviewLines = 5

// Placeholder is shown in preview mode when no file is active.
const Placeholder = "No file selected"

// EmptyText fills the viewer before anything has been generated.
const EmptyText = "Select a template and enter a prompt to generate your application."

// Ellipsis marks a truncated preview.
const Ellipsis = "..."

// Tab is one entry of the code-mode tab strip.
type Tab struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Active   bool   `json:"active"`
}

// Viewer holds the active tab and mode over a file set. The zero value has
// no files: no active tab and a placeholder preview.
type Viewer struct {
	files  *generator.FileSet
	active string
	mode   Mode
}

// New returns a viewer over files with the first file active.
func New(files *generator.FileSet, mode Mode) (*Viewer, error) {
	v := &Viewer{mode: mode}
	if err := v.Load(files); err != nil {
		return nil, err
	}
	return v, nil
}

// Load replaces the file set and activates its first file.
func (v *Viewer) Load(files *generator.FileSet) error {
	if files.Len() == 0 {
		return ErrEmptyFileSet
	}
	v.files = files
	v.active = files.Names()[0]
	return nil
}

// Sync loads files if it is a different set from the current one and
// reports whether it did. A nil or empty set leaves the viewer unchanged.
func (v *Viewer) Sync(files *generator.FileSet) bool {
	if files == v.files || files.Len() == 0 {
		return false
	}
	return v.Load(files) == nil
}

// Files returns the file set currently shown.
func (v *Viewer) Files() *generator.FileSet { return v.files }

func (v *Viewer) Mode() Mode { return v.mode }

func (v *Viewer) SetMode(m Mode) { v.mode = m }

// Active returns the active filename, "" when nothing is loaded.
func (v *Viewer) Active() string { return v.active }

// Activate makes name the active tab.
func (v *Viewer) Activate(name string) error {
	if _, ok := v.files.Get(name); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFile, name)
	}
	v.active = name
	return nil
}

// Step moves the active tab by delta, wrapping around.
func (v *Viewer) Step(delta int) {
	names := v.files.Names()
	if len(names) == 0 {
		return
	}
	i := 0
	for j, n := range names {
		if n == v.active {
			i = j
			break
		}
	}
	i = ((i+delta)%len(names) + len(names)) % len(names)
	v.active = names[i]
}

// Tabs lists one tab per file in file-set order.
func (v *Viewer) Tabs() []Tab {
	names := v.files.Names()
	tabs := make([]Tab, len(names))
	for i, n := range names {
		tabs[i] = Tab{Name: n, Language: Language(n), Active: n == v.active}
	}
	return tabs
}

// Content returns the active file's content.
func (v *Viewer) Content() string {
	c, _ := v.files.Get(v.active)
	return c
}

// Preview returns the preview-mode text for the active file.
func (v *Viewer) Preview() string {
	content, ok := v.files.Get(v.active)
	if v.active == "" || !ok {
		return Placeholder
	}
	return Excerpt(content)
}

// Excerpt keeps at most PreviewLines lines of content. Content with
// PreviewLines or more lines gets an ellipsis line appended. A final
// newline ends the last line rather than starting another one.
func Excerpt(content string) string {
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	if len(lines) < PreviewLines {
		return content
	}
	return strings.Join(lines[:PreviewLines], "\n") + "\n" + Ellipsis
}

// suffixes maps filename suffixes to highlighting languages. Order matters
// only for readability; suffixes do not overlap.
var suffixes = []struct {
	suffix   string
	language string
}{
	{".js", "javascript"},
	{".jsx", "javascript"},
	{".ts", "typescript"},
	{".tsx", "typescript"},
	{".css", "css"},
	{".html", "html"},
	{".json", "json"},
	{".md", "markdown"},
}

// Language derives the highlighting language from a filename's suffix,
// defaulting to javascript.
func Language(filename string) string {
	for _, s := range suffixes {
		if strings.HasSuffix(filename, s.suffix) {
			return s.language
		}
	}
	return "javascript"
}
