package web

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firecrawl/appgen/internal/catalog"
	"github.com/firecrawl/appgen/internal/config"
	"github.com/firecrawl/appgen/internal/viewer"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	cfg.GenerationDelay = 20 * time.Millisecond
	cfg.Theme = "dark"

	srv, err := NewServer(cfg, nil)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

// readUntil reads messages until match accepts one.
func readUntil(t *testing.T, conn *websocket.Conn, match func(Message) bool) Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	for {
		var msg Message
		require.NoError(t, wsjson.Read(ctx, conn, &msg))
		if match(msg) {
			return msg
		}
	}
}

func isState(m Message) bool { return m.Type == MessageState && m.State != nil }

func send(t *testing.T, conn *websocket.Conn, in Intent) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, conn, in))
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestTemplatesAPI(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/templates")
	require.NoError(t, err)
	defer resp.Body.Close()

	var got []catalog.Template
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	ids := make([]string, len(got))
	for i, tpl := range got {
		ids[i] = tpl.ID
	}
	assert.Equal(t, catalog.IDs(), ids)

	resp2, err := http.Get(ts.URL + "/api/templates?q=express")
	require.NoError(t, err)
	defer resp2.Body.Close()
	var found []catalog.Template
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&found))
	require.NotEmpty(t, found)
	assert.Equal(t, "express", found[0].ID)
}

func TestPageRenders(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	page := string(body)

	assert.Contains(t, page, `data-default-theme="dark"`)
	assert.Contains(t, page, viewer.EmptyText)
	assert.Contains(t, page, "<svg", "icons render unescaped")
	for _, tpl := range catalog.All() {
		assert.Contains(t, page, `data-id="`+tpl.ID+`"`)
	}
}

func TestStaticAssets(t *testing.T) {
	_, ts := newTestServer(t)

	for _, path := range []string{"/static/app.js", "/static/app.css"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestSessionGenerateFlow(t *testing.T) {
	srv, ts := newTestServer(t)
	conn := dial(t, ts)

	first := readUntil(t, conn, isState)
	require.NotEmpty(t, first.Session)
	assert.False(t, first.State.CanSubmit)
	assert.Empty(t, first.State.Files)
	assert.Equal(t, viewer.Placeholder, first.State.Preview)
	assert.Equal(t, 1, srv.SessionCount())

	send(t, conn, Intent{Type: IntentSelect, ID: "vue"})
	send(t, conn, Intent{Type: IntentPrompt, Text: "a weather dashboard"})
	ready := readUntil(t, conn, func(m Message) bool { return isState(m) && m.State.CanSubmit })
	assert.Equal(t, "vue", ready.State.SelectedTemplateID)

	send(t, conn, Intent{Type: IntentSubmit})
	done := readUntil(t, conn, func(m Message) bool {
		return isState(m) && !m.State.IsGenerating && len(m.State.Files) > 0
	})
	require.Len(t, done.State.Files, 2)
	assert.Equal(t, "index.js", done.State.Files[0].Name)
	assert.Equal(t, "javascript", done.State.Files[0].Language)
	assert.Equal(t, "package.json", done.State.Files[1].Name)
	assert.Equal(t, "json", done.State.Files[1].Language)
	assert.Equal(t, "index.js", done.State.ActiveFile)
	assert.Contains(t, done.State.Files[0].HTML, "<pre")
	assert.Equal(t, viewer.Code, done.State.ViewMode)

	send(t, conn, Intent{Type: IntentActivate, File: "package.json"})
	active := readUntil(t, conn, func(m Message) bool { return isState(m) && m.State.ActiveFile == "package.json" })
	assert.True(t, active.State.Files[1].Active)

	send(t, conn, Intent{Type: IntentToggleView})
	preview := readUntil(t, conn, func(m Message) bool { return isState(m) && m.State.ViewMode == viewer.Preview })
	assert.True(t, strings.HasSuffix(preview.State.Preview, "\n"+viewer.Ellipsis))
	assert.Len(t, preview.State.Files, 2, "toggling keeps the files")

	// export the session's files as a zip
	resp, err := http.Get(ts.URL + "/api/sessions/" + done.Session + "/export")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "vue-app.zip")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"vue-app/index.js", "vue-app/package.json"}, names)
}

func TestSessionRejectsBadIntents(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)
	readUntil(t, conn, isState)

	send(t, conn, Intent{Type: "explode"})
	msg := readUntil(t, conn, func(m Message) bool { return m.Type == MessageError })
	assert.Contains(t, msg.Error, "unknown intent")

	send(t, conn, Intent{Type: IntentSelect, ID: "cobol"})
	msg = readUntil(t, conn, func(m Message) bool { return m.Type == MessageError })
	assert.Contains(t, msg.Error, "unknown template")

	send(t, conn, Intent{Type: IntentActivate, File: "index.js"})
	msg = readUntil(t, conn, func(m Message) bool { return m.Type == MessageError })
	assert.Contains(t, msg.Error, "unknown file")
}

func TestExportErrors(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/sessions/nope/export")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	conn := dial(t, ts)
	first := readUntil(t, conn, isState)

	resp, err = http.Get(ts.URL + "/api/sessions/" + first.Session + "/export")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSessionClosedOnDisconnect(t *testing.T) {
	srv, ts := newTestServer(t)
	conn := dial(t, ts)
	readUntil(t, conn, isState)
	require.Equal(t, 1, srv.SessionCount())

	conn.Close(websocket.StatusNormalClosure, "bye")
	assert.Eventually(t, func() bool { return srv.SessionCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestSessionsAreIndependent(t *testing.T) {
	_, ts := newTestServer(t)
	a := dial(t, ts)
	b := dial(t, ts)
	sa := readUntil(t, a, isState)
	sb := readUntil(t, b, isState)
	assert.NotEqual(t, sa.Session, sb.Session)

	send(t, a, Intent{Type: IntentSelect, ID: "react"})
	readUntil(t, a, func(m Message) bool { return isState(m) && m.State.SelectedTemplateID == "react" })

	send(t, b, Intent{Type: IntentPrompt, Text: "x"})
	got := readUntil(t, b, func(m Message) bool { return isState(m) && m.State.Prompt == "x" })
	assert.Empty(t, got.State.SelectedTemplateID)
}

func TestApplyChangesTheme(t *testing.T) {
	srv, ts := newTestServer(t)
	cfg := config.Default()
	cfg.Theme = "light"
	srv.Apply(cfg)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `data-default-theme="light"`)
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.ServerPort = 0
	// port 0 is rejected by Validate but the listener accepts it
	srv, err := NewServer(cfg, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(6 * time.Second):
		t.Fatal("server did not stop")
	}
}
