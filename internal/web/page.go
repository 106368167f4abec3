package web

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/firecrawl/appgen/assets"
	"github.com/firecrawl/appgen/internal/catalog"
	"github.com/firecrawl/appgen/internal/viewer"
)

type templateCard struct {
	ID          string
	Name        string
	Description string
	Icon        template.HTML
	Tags        []string
}

type pageData struct {
	Title       string
	Theme       string
	Templates   []templateCard
	EmptyText   string
	Placeholder string
	Year        int
}

func parsePage() (*template.Template, error) {
	src, err := assets.GetPage()
	if err != nil {
		return nil, fmt.Errorf("load page: %w", err)
	}
	t, err := template.New("page").Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return t, nil
}

func (s *Server) handlePage(c *gin.Context) {
	templates := catalog.All()
	cards := make([]templateCard, len(templates))
	for i, t := range templates {
		cards[i] = templateCard{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			// Icons are static markup from the catalog, never user input.
			Icon: template.HTML(t.Icon),
			Tags: t.Tags,
		}
	}

	data := pageData{
		Title:       "FireCrawl App Generator",
		Theme:       s.settings().Theme,
		Templates:   cards,
		EmptyText:   viewer.EmptyText,
		Placeholder: viewer.Placeholder,
		Year:        time.Now().Year(),
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		s.log.WithError(err).Error("Render page failed")
		c.String(http.StatusInternalServerError, "render failed")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func escape(s string) string {
	return template.HTMLEscapeString(s)
}
