// Package generator produces file sets from a prompt and a template id.
//
// Only a mock exists: it waits a fixed delay and renders two hard-coded
// files. The Generator interface is the seam where a real backend would go.
package generator

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrGeneration wraps every failure a Generator reports.
var ErrGeneration = errors.New("generation failed")

// Request is what a generation is rendered from.
type Request struct {
	Prompt     string
	TemplateID string
}

// RequestSource yields the request to render. Generators call it at the
// moment they need the inputs, which lets the caller decide whether the
// values are captured at submission or read live at completion.
type RequestSource func() Request

// Fixed returns a source that always yields req.
func Fixed(req Request) RequestSource {
	return func() Request { return req }
}

// Generator turns a request into a file set. Implementations must honour
// ctx cancellation and return ctx.Err() when cancelled.
type Generator interface {
	Generate(ctx context.Context, src RequestSource) (*FileSet, error)
}

// Mock simulates a backend: it sleeps Delay, then reads the request and
// renders the fixed two-file output. It never fails.
type Mock struct {
	Delay time.Duration
}

// NewMock returns a Mock with the given delay.
func NewMock(delay time.Duration) *Mock {
	return &Mock{Delay: delay}
}

func (m *Mock) Generate(ctx context.Context, src RequestSource) (*FileSet, error) {
	timer := time.NewTimer(m.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	return Render(src()), nil
}

// Render builds the mock output for req.
func Render(req Request) *FileSet {
	index := fmt.Sprintf(`import React from 'react';

export default function App() {
  return (
    <div>
      <h1>Generated from prompt: %s</h1>
      <p>Using template: %s</p>
    </div>
  );
}`, req.Prompt, req.TemplateID)

	return NewFileSet(
		File{Name: "index.js", Content: index},
		File{Name: "package.json", Content: packageJSON},
	)
}

const packageJSON = `{
  "name": "generated-app",
  "version": "1.0.0",
  "description": "Generated from FireCrawl App Generator",
  "scripts": {
    "start": "react-scripts start",
    "build": "react-scripts build"
  },
  "dependencies": {
    "react": "^18.2.0",
    "react-dom": "^18.2.0"
  }
}`

// Func adapts a function to Generator.
type Func func(ctx context.Context, src RequestSource) (*FileSet, error)

func (f Func) Generate(ctx context.Context, src RequestSource) (*FileSet, error) {
	return f(ctx, src)
}
