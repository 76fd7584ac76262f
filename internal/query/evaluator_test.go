package query_test

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/ogsearch/ogsearch/internal/query"
	"github.com/ogsearch/ogsearch/internal/store"
)

func newMockEvaluator(t *testing.T) (*query.Evaluator, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s := store.NewForTesting(db)
	return query.New(s), mock
}

func TestSearchScenarioS4ConjunctiveRanking(t *testing.T) {
	e, mock := newMockEvaluator(t)

	rows := sqlmock.NewRows([]string{"id", "url", "title", "score"}).
		AddRow(int64(1), "http://d1", "D1", int64(4)).
		AddRow(int64(3), "http://d3", "D3", int64(3))

	mock.ExpectQuery(`(?s)SELECT d.id, d.url, d.title, SUM\(p.frequency\)`).
		WithArgs("cat", "dog", 10).
		WillReturnRows(rows)

	results, err := e.Search(context.Background(), "cat dog", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].Score != 4 || results[1].Score != 3 {
		t.Errorf("results = %+v, want D1(4) then D3(3)", results)
	}
}

func TestSearchScenarioS5TruncatesToFourTokens(t *testing.T) {
	e, mock := newMockEvaluator(t)

	mock.ExpectQuery(`(?s)SELECT d.id, d.url, d.title, SUM\(p.frequency\)`).
		WithArgs("a", "b", "c", "d", 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "url", "title", "score"}))

	_, err := e.Search(context.Background(), "a b c d e f", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations (e/f should never reach the store): %v", err)
	}
}

func TestSearchEmptyQueryReturnsEmptyNotError(t *testing.T) {
	e, _ := newMockEvaluator(t)

	results, err := e.Search(context.Background(), "   ", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results != nil {
		t.Errorf("results = %v, want nil", results)
	}
}

func TestSearchDedupesPreservingOrder(t *testing.T) {
	e, mock := newMockEvaluator(t)

	mock.ExpectQuery(`(?s)SELECT d.id, d.url, d.title, SUM\(p.frequency\)`).
		WithArgs("cat", "dog", 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "url", "title", "score"}))

	_, err := e.Search(context.Background(), "cat dog cat", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSearchWithStemmingWidensOnEmptyResult(t *testing.T) {
	e, mock := newMockEvaluator(t)

	mock.ExpectQuery(`(?s)SELECT d.id, d.url, d.title, SUM\(p.frequency\)`).
		WithArgs("running", 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "url", "title", "score"}))

	mock.ExpectQuery(`(?s)SELECT d.id, d.url, d.title, SUM\(p.frequency\)`).
		WithArgs("run", 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "url", "title", "score"}).
			AddRow(int64(1), "http://a.com", "A", int64(2)))

	results, err := e.SearchWithStemming(context.Background(), "running", 10)
	if err != nil {
		t.Fatalf("SearchWithStemming: %v", err)
	}
	if len(results) != 1 || results[0].Score != 2 {
		t.Errorf("results = %+v, want one widened hit", results)
	}
}

func TestSearchDefaultK(t *testing.T) {
	e, mock := newMockEvaluator(t)

	mock.ExpectQuery(`(?s)SELECT d.id, d.url, d.title, SUM\(p.frequency\)`).
		WithArgs("cat", 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "url", "title", "score"}))

	_, err := e.Search(context.Background(), "cat", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations (default k should be 10): %v", err)
	}
}
