package console

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/a-h/templ"
)

// hxRequestHeader marks requests issued by HTMX.
const hxRequestHeader = "HX-Request"

// isHTMXRequest reports whether the request was initiated by HTMX.
func isHTMXRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	return strings.EqualFold(r.Header.Get(hxRequestHeader), "true")
}

// renderPage writes the full layout for normal requests. HTMX requests get
// only the <main> content, prefixed with a <title> so the tab title follows.
func renderPage(w http.ResponseWriter, r *http.Request, status int, page templ.Component, title string) {
	var body bytes.Buffer
	if err := page.Render(r.Context(), &body); err != nil {
		log.Printf("render %s: %v", r.URL.Path, err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	out := body.Bytes()
	if isHTMXRequest(r) {
		if content, ok := extractMainContent(out); ok {
			out = append([]byte(titleTag(title)), content...)
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(out)
}

func titleTag(title string) string {
	return "<title>" + templ.EscapeString(pageTitle(strings.TrimSpace(title))) + "</title>"
}

func extractMainContent(body []byte) ([]byte, bool) {
	start := bytes.Index(body, []byte("<main"))
	if start < 0 {
		return nil, false
	}
	openClose := bytes.Index(body[start:], []byte(">"))
	if openClose < 0 {
		return nil, false
	}
	contentStart := start + openClose + 1
	end := bytes.LastIndex(body[contentStart:], []byte("</main>"))
	if end < 0 {
		return nil, false
	}
	return body[contentStart : contentStart+end], true
}

// renderComponent writes c without the layout, for non-HTML responses.
func renderComponent(ctx context.Context, w http.ResponseWriter, contentType string, c templ.Component) {
	var body bytes.Buffer
	if err := c.Render(ctx, &body); err != nil {
		log.Printf("render component: %v", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(body.Bytes())
}
