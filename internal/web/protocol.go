package web

import (
	"github.com/firecrawl/appgen/internal/controller"
	"github.com/firecrawl/appgen/internal/viewer"
)

// Intent types sent by the browser.
const (
	IntentSelect     = "select"
	IntentPrompt     = "prompt"
	IntentSubmit     = "submit"
	IntentToggleView = "toggle_view"
	IntentActivate   = "activate"
)

// Message types sent to the browser.
const (
	MessageState = "state"
	MessageError = "error"
)

// Intent is one user action from the page.
type Intent struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
	Text string `json:"text,omitempty"`
	File string `json:"file,omitempty"`
}

// Message is a server push.
type Message struct {
	Type    string     `json:"type"`
	Session string     `json:"session,omitempty"`
	State   *StateView `json:"state,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// FileView is one viewer tab with its highlighted body.
type FileView struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	Active   bool   `json:"active"`
	HTML     string `json:"html"`
}

// StateView is the page state as rendered for the browser.
type StateView struct {
	Version            uint64      `json:"version"`
	Prompt             string      `json:"prompt"`
	SelectedTemplateID string      `json:"selectedTemplateId"`
	IsGenerating       bool        `json:"isGenerating"`
	CanSubmit          bool        `json:"canSubmit"`
	ViewMode           viewer.Mode `json:"viewMode"`
	Files              []FileView  `json:"files"`
	ActiveFile         string      `json:"activeFile"`
	Preview            string      `json:"preview"`
	Error              string      `json:"error,omitempty"`
}

func newStateView(s controller.State, v *viewer.Viewer, bodies map[string]string) *StateView {
	sv := &StateView{
		Version:            s.Version,
		Prompt:             s.Prompt,
		SelectedTemplateID: s.SelectedTemplateID,
		IsGenerating:       s.IsGenerating,
		CanSubmit:          s.CanSubmit() && !s.IsGenerating,
		ViewMode:           s.ViewMode,
		ActiveFile:         v.Active(),
		Preview:            v.Preview(),
	}
	if s.LastError != nil {
		sv.Error = s.LastError.Error()
	}
	if v.Files().Len() == 0 {
		return sv
	}
	for _, tab := range v.Tabs() {
		sv.Files = append(sv.Files, FileView{
			Name:     tab.Name,
			Language: tab.Language,
			Active:   tab.Active,
			HTML:     bodies[tab.Name],
		})
	}
	return sv
}
