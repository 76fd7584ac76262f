package fetcher_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ogsearch/ogsearch/internal/fetcher"
)

func TestRobotsTxtDisallowGate(t *testing.T) {
	var pageHit bool
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nDisallow: /private\n"))
	})
	mux.HandleFunc("/private/page", func(w http.ResponseWriter, r *http.Request) {
		pageHit = true
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := fetcher.New(fetcher.WithRobotsTxt())
	resp := f.Get(context.Background(), srv.URL+"/private/page")

	if resp.Success {
		t.Fatal("expected disallowed path to fail")
	}
	if pageHit {
		t.Error("expected disallowed page to never be fetched")
	}
}

func TestRobotsTxtAllowsUngatedPath(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nDisallow: /private\n"))
	})
	mux.HandleFunc("/public", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := fetcher.New(fetcher.WithRobotsTxt())
	resp := f.Get(context.Background(), srv.URL+"/public")

	if !resp.Success {
		t.Fatalf("expected allowed path to succeed, errorMessage=%q", resp.ErrorMessage)
	}
}

func TestRobotsTxtGateIsOffByDefault(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nDisallow: /\n"))
	})
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := fetcher.New()
	resp := f.Get(context.Background(), srv.URL+"/page")

	if !resp.Success {
		t.Fatalf("expected default (robots-disabled) Fetcher to ignore robots.txt, errorMessage=%q", resp.ErrorMessage)
	}
}
