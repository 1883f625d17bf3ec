package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/spigell/cv-ranker/internal/candidate"
)

func newSQLWithMock(t *testing.T) (*SQL, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return NewSQL(db), mock, func() { _ = db.Close() }
}

func TestEnsureSchemaCreatesTable(t *testing.T) {
	s, mock, done := newSQLWithMock(t)
	defer done()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS candidates").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecordInsertsRow(t *testing.T) {
	s, mock, done := newSQLWithMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO candidates").
		WithArgs("alice", "alice@example.com", 87.5).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := s.Record(context.Background(), candidate.Record{
		Name:    "alice",
		Email:   "alice@example.com",
		Score:   87.5,
		Verdict: "not persisted",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecordWrapsInsertError(t *testing.T) {
	s, mock, done := newSQLWithMock(t)
	defer done()

	boom := errors.New("connection refused")
	mock.ExpectExec("INSERT INTO candidates").WillReturnError(boom)

	err := s.Record(context.Background(), candidate.Record{Name: "bob"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestRecordConcurrentInserts(t *testing.T) {
	s, mock, done := newSQLWithMock(t)
	defer done()

	mock.MatchExpectationsInOrder(false)

	const n = 20
	for i := range n {
		mock.ExpectExec("INSERT INTO candidates").
			WithArgs(fmt.Sprintf("candidate-%d", i), candidate.NoEmail, float64(i)).
			WillReturnResult(sqlmock.NewResult(int64(i+1), 1))
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.Record(context.Background(), candidate.Record{
				Name:  fmt.Sprintf("candidate-%d", i),
				Email: candidate.NoEmail,
				Score: float64(i),
			})
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
