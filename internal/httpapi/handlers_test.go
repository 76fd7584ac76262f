package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/ogsearch/ogsearch/internal/httpapi"
	"github.com/ogsearch/ogsearch/internal/query"
	"github.com/ogsearch/ogsearch/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s := store.NewForTesting(db)
	evaluator := query.New(s)
	router := httpapi.NewRouter(evaluator)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv, mock
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestSearchReturnsJSONResults(t *testing.T) {
	srv, mock := newTestServer(t)

	mock.ExpectQuery(`(?s)SELECT d.id, d.url, d.title, SUM\(p.frequency\)`).
		WithArgs("cat", 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "url", "title", "score"}).
			AddRow(int64(1), "http://a.com", "A", int64(5)))

	resp, err := http.Get(srv.URL + "/search?q=cat")
	if err != nil {
		t.Fatalf("GET /search: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Results []struct {
			DocumentID int64  `json:"documentId"`
			URL        string `json:"url"`
			Title      string `json:"title"`
			Score      int64  `json:"score"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Results) != 1 || body.Results[0].Score != 5 {
		t.Errorf("body.Results = %+v", body.Results)
	}
}

func TestSearchRejectsInvalidK(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/search?q=cat&k=notanumber")
	if err != nil {
		t.Fatalf("GET /search: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
