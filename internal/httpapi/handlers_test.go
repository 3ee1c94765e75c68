package httpapi

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"photobook-render/internal/export"
	"photobook-render/internal/exportconfig"
	"photobook-render/internal/render"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	p := export.NewPipeline(render.NewCompositor(nil, nil, nil), nil)
	h := NewHandler(exportconfig.Defaults(), p, 1, 0, nil)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

const variantJSON = `"variant":{"widthMm":25.4,"heightMm":50.8,"bleedMm":2.54,"editorDpi":40}`

func post(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/v1/exports", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestExportConfigRoute(t *testing.T) {
	srv := newServer(t)
	resp, err := http.Get(srv.URL + "/v1/export-config/photobook")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var cfg exportconfig.Config
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || !cfg.Supports(exportconfig.PDF) || !cfg.Bleed {
		t.Fatalf("status %d cfg %+v", resp.StatusCode, cfg)
	}

	resp2, err := http.Get(srv.URL + "/v1/export-config/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown category status = %d", resp2.StatusCode)
	}
}

func TestSingleArtifactIsReturnedDirectly(t *testing.T) {
	srv := newServer(t)
	resp := post(t, srv, `{"name":"card","format":"pdf",`+variantJSON+`,"designs":[{"id":"a","background":{"color":"#ff0000"}},{"id":"b"}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type = %s", ct)
	}
	if !strings.Contains(resp.Header.Get("Content-Disposition"), "card.pdf") {
		t.Fatalf("disposition = %s", resp.Header.Get("Content-Disposition"))
	}
	data, _ := io.ReadAll(resp.Body)
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("body is not a PDF")
	}
}

func TestSeveralImagesAreZipped(t *testing.T) {
	srv := newServer(t)
	resp := post(t, srv, `{"name":"card","format":"png",`+variantJSON+`,"designs":[{"id":"a"},{"id":"b"}]}`)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "application/zip" {
		t.Fatalf("status %d type %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	data, _ := io.ReadAll(resp.Body)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	if strings.Join(names, ",") != "card_1.png,card_2.png" {
		t.Fatalf("entries = %v", names)
	}
}

func TestCategoryRestrictsFormat(t *testing.T) {
	srv := newServer(t)
	resp := post(t, srv, `{"category":"mobile","format":"pdf",`+variantJSON+`,"designs":[{"id":"a"}]}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestEmptyDesignsRejected(t *testing.T) {
	srv := newServer(t)
	resp := post(t, srv, `{"format":"png",`+variantJSON+`,"designs":[]}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var e errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&e)
	if !strings.Contains(e.Error, "no designs") {
		t.Fatalf("error = %q", e.Error)
	}
}

func TestBadRequests(t *testing.T) {
	srv := newServer(t)
	for _, body := range []string{`{`, `{"format":"bmp","designs":[{"id":"a"}]}`} {
		if resp := post(t, srv, body); resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: status = %d", body, resp.StatusCode)
		}
	}
}
