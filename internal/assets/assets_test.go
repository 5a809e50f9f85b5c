package assets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTPSource_FetchesBoth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/report.css":
			_, _ = w.Write([]byte("body{color:red}"))
		case "/report.js":
			_, _ = w.Write([]byte("console.log(1)"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/report.css", srv.URL+"/report.js", time.Second)
	b, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if b.CSS != "body{color:red}" || b.JS != "console.log(1)" {
		t.Errorf("unexpected bundle: %+v", b)
	}
}

func TestHTTPSource_Non2xxFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ".js") {
			http.Error(w, "gone", http.StatusGone)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/a.css", srv.URL+"/a.js", time.Second)
	_, err := src.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error for 410 response")
	}
	if !strings.Contains(err.Error(), "fetching script") {
		t.Errorf("expected script failure, got %v", err)
	}
}

func TestHTTPSource_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPSource(url+"/x.css", url+"/x.js", time.Second).Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error for closed server")
	}
}

func TestEmbeddedSource(t *testing.T) {
	b, err := EmbeddedSource{}.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.CSS, ".report-header") {
		t.Error("embedded stylesheet missing report-header rule")
	}
	if !strings.Contains(b.JS, "openModal") {
		t.Error("embedded script missing openModal")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (EmbeddedSource{}).Fetch(ctx); err == nil {
		t.Error("expected cancelled context to fail")
	}
}

func TestFromName(t *testing.T) {
	if s, err := FromName("embedded", "", "", 0); err != nil {
		t.Fatal(err)
	} else if _, ok := s.(EmbeddedSource); !ok {
		t.Errorf("expected EmbeddedSource, got %T", s)
	}

	s, err := FromName("", "", "", 0)
	if err != nil {
		t.Fatal(err)
	}
	hs, ok := s.(*HTTPSource)
	if !ok {
		t.Fatalf("expected *HTTPSource, got %T", s)
	}
	if hs.CSSURL != DefaultCSSURL || hs.JSURL != DefaultJSURL {
		t.Errorf("expected default URLs, got %s %s", hs.CSSURL, hs.JSURL)
	}

	if _, err := FromName("ftp", "", "", 0); err == nil {
		t.Error("expected error for unknown source")
	}
}
