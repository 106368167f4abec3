//go:build property
// +build property

package viewer

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestExcerptProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	lines := gen.SliceOf(gen.AlphaString())

	properties.Property("short content is shown whole", prop.ForAll(
		func(ls []string, terminated bool) bool {
			if len(ls) >= PreviewLines {
				ls = ls[:PreviewLines-1]
			}
			content := strings.Join(ls, "\n")
			if terminated {
				content += "\n"
			}
			return Excerpt(content) == content
		},
		lines, gen.Bool(),
	))

	properties.Property("long content keeps five lines plus ellipsis", prop.ForAll(
		func(ls []string, extra []string, terminated bool) bool {
			for len(ls) < PreviewLines {
				ls = append(ls, "x")
			}
			ls = append(ls, extra...)
			content := strings.Join(ls, "\n")
			if terminated {
				content += "\n"
			}
			got := strings.Split(Excerpt(content), "\n")
			if len(got) != PreviewLines+1 || got[PreviewLines] != Ellipsis {
				return false
			}
			for i := 0; i < PreviewLines; i++ {
				if got[i] != ls[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Identifier()), gen.SliceOf(gen.Identifier()), gen.Bool(),
	))

	properties.Property("language is always one of the table values", prop.ForAll(
		func(name string) bool {
			switch Language(name) {
			case "javascript", "typescript", "css", "html", "json", "markdown":
				return true
			}
			return false
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
