package generator

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderShape(t *testing.T) {
	fs := Render(Request{Prompt: "todo app", TemplateID: "react"})

	assert.Equal(t, []string{"index.js", "package.json"}, fs.Names())

	index, ok := fs.Get("index.js")
	require.True(t, ok)
	assert.Contains(t, index, "todo app")
	assert.Contains(t, index, "react")

	pkg, ok := fs.Get("package.json")
	require.True(t, ok)
	assert.Contains(t, pkg, `"name": "generated-app"`)
}

func TestMockWaitsDelay(t *testing.T) {
	m := NewMock(30 * time.Millisecond)

	start := time.Now()
	fs, err := m.Generate(context.Background(), Fixed(Request{Prompt: "p", TemplateID: "vue"}))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Equal(t, 2, fs.Len())
}

func TestMockReadsSourceAfterDelay(t *testing.T) {
	m := NewMock(20 * time.Millisecond)
	var prompt atomic.Value
	prompt.Store("before")

	done := make(chan *FileSet, 1)
	go func() {
		fs, _ := m.Generate(context.Background(), func() Request {
			return Request{Prompt: prompt.Load().(string), TemplateID: "vue"}
		})
		done <- fs
	}()

	// the source is only read once the delay elapses
	prompt.Store("after")
	fs := <-done
	index, _ := fs.Get("index.js")
	assert.Contains(t, index, "after")
}

func TestMockCancelled(t *testing.T) {
	m := NewMock(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	fs, err := m.Generate(ctx, func() Request {
		called = true
		return Request{}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, fs)
	assert.False(t, called)
}

func TestFileSet(t *testing.T) {
	fs := NewFileSet(
		File{Name: "b.js", Content: "1"},
		File{Name: "a.css", Content: "2"},
		File{Name: "b.js", Content: "3"},
	)

	assert.Equal(t, []string{"b.js", "a.css"}, fs.Names())
	got, _ := fs.Get("b.js")
	assert.Equal(t, "3", got)

	_, ok := fs.Get("missing")
	assert.False(t, ok)

	files := fs.Files()
	files[0].Content = "mutated"
	got, _ = fs.Get("b.js")
	assert.Equal(t, "3", got)

	var empty *FileSet
	assert.Equal(t, 0, empty.Len())
	assert.Nil(t, empty.Names())
}
