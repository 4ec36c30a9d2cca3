package docstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/adithya-search/boolsearch/pkg/postgres"
)

type recordingIndex struct {
	added map[string][]string
}

func (r *recordingIndex) AddDocument(id string, terms []string) {
	if r.added == nil {
		r.added = make(map[string][]string)
	}
	r.added[id] = terms
}

func splitWords(text string) []string {
	var out []string
	word := ""
	for _, c := range text {
		if c == ' ' {
			if word != "" {
				out = append(out, word)
				word = ""
			}
			continue
		}
		word += string(c)
	}
	if word != "" {
		out = append(out, word)
	}
	return out
}

// fakeRow is one row of a canned result set; a nil field represents SQL
// NULL, matching how lib/pq would report a missing column.
type fakeRow struct {
	source, value driver.Value
}

// fakeDriver, fakeConn, and fakeRows implement just enough of
// database/sql/driver to exercise LoadAll's real QueryContext/Scan path
// without a live Postgres connection.
type fakeDriver struct {
	rows []fakeRow
}

func (d fakeDriver) Open(name string) (driver.Conn, error) {
	return &fakeConn{rows: d.rows}, nil
}

type fakeConn struct {
	rows []fakeRow
}

func (c *fakeConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("fakeConn: Prepare not supported, expected QueryContext")
}

func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) Begin() (driver.Tx, error) {
	return nil, errors.New("fakeConn: transactions not supported")
}

func (c *fakeConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	return &fakeRows{rows: c.rows}, nil
}

type fakeRows struct {
	rows []fakeRow
	pos  int
}

func (r *fakeRows) Columns() []string { return []string{"source", "value"} }
func (r *fakeRows) Close() error      { return nil }

func (r *fakeRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	dest[0] = r.rows[r.pos].source
	dest[1] = r.rows[r.pos].value
	r.pos++
	return nil
}

var fakeDriverSeq atomic.Int64

// registerFakeDB registers a one-off driver exposing rows and returns an
// open *sql.DB backed by it. Each call uses a fresh driver name so repeated
// test invocations (e.g. go test -count=2) never collide on sql.Register.
func registerFakeDB(t *testing.T, rows []fakeRow) *sql.DB {
	t.Helper()
	name := fmt.Sprintf("docstore_fake_%d", fakeDriverSeq.Add(1))
	sql.Register(name, fakeDriver{rows: rows})
	db, err := sql.Open(name, "")
	if err != nil {
		t.Fatalf("sql.Open(%q): %v", name, err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStoreLoadAllSkipsMalformedRows(t *testing.T) {
	db := registerFakeDB(t, []fakeRow{
		{source: "doc-1", value: "apple fruit"},
		{source: nil, value: "missing source"},
		{source: "doc-2", value: nil},
		{source: "doc-3", value: "banana fruit"},
	})

	s := &Store{
		client: &postgres.Client{DB: db},
		table:  "documents",
		logger: slog.Default(),
	}
	idx := &recordingIndex{}

	stats, err := s.LoadAll(context.Background(), idx, splitWords)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if stats.Loaded != 2 {
		t.Errorf("Loaded = %d, want 2", stats.Loaded)
	}
	if stats.Malformed != 2 {
		t.Errorf("Malformed = %d, want 2", stats.Malformed)
	}
	if len(idx.added["doc-1"]) != 2 {
		t.Errorf("doc-1 terms = %v, want 2 terms", idx.added["doc-1"])
	}
	if len(idx.added["doc-3"]) != 2 {
		t.Errorf("doc-3 terms = %v, want 2 terms", idx.added["doc-3"])
	}
}

func TestStoreLoadAllAllRowsWellFormed(t *testing.T) {
	db := registerFakeDB(t, []fakeRow{
		{source: "doc-1", value: "apple fruit"},
		{source: "doc-2", value: "banana fruit"},
	})

	s := &Store{
		client: &postgres.Client{DB: db},
		table:  "documents",
		logger: slog.Default(),
	}
	idx := &recordingIndex{}

	stats, err := s.LoadAll(context.Background(), idx, splitWords)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if stats.Loaded != 2 || stats.Malformed != 0 {
		t.Errorf("stats = %+v, want Loaded=2 Malformed=0", stats)
	}
}
