package worklens

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/worklens/worklens/worklens/eval"
	"github.com/worklens/worklens/worklens/query"
	"github.com/worklens/worklens/worklens/storage"
	"github.com/worklens/worklens/worklens/storage/sqlbuilder"
)

// StoreOptions configures a Store. Now is the clock used for stamping
// records, history entries, and relative-date resolution; tests inject a
// frozen one.
type StoreOptions struct {
	Now func() time.Time
}

func DefaultStoreOptions() StoreOptions {
	return StoreOptions{Now: time.Now}
}

// Store persists work items and query history behind a storage.Adapter.
// It only loads and saves records: filtering and sorting happen in
// memory via the eval package.
type Store struct {
	adapter storage.Adapter
	db      *sql.DB
	now     func() time.Time
}

// Create connects and initializes the store schema, then returns a
// ready store. It is safe against an already-initialized database.
func Create(ctx context.Context, a storage.Adapter, opts StoreOptions) (*Store, error) {
	db, err := a.Connect(ctx)
	if err != nil {
		return nil, Wrap(ErrSQL, "connect", err)
	}
	if err := a.Init(ctx, db); err != nil {
		_ = db.Close()
		return nil, Wrap(ErrSQL, "initialize store", err)
	}
	return newStore(a, db, opts), nil
}

// Open connects to an existing store and verifies its meta markers.
func Open(ctx context.Context, a storage.Adapter, opts StoreOptions) (*Store, error) {
	db, err := a.Connect(ctx)
	if err != nil {
		return nil, Wrap(ErrSQL, "connect", err)
	}
	if err := a.Verify(ctx, db); err != nil {
		_ = db.Close()
		return nil, Wrap(ErrStore, "verify store", err)
	}
	return newStore(a, db, opts), nil
}

func newStore(a storage.Adapter, db *sql.DB, opts StoreOptions) *Store {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{adapter: a, db: db, now: now}
}

func (s *Store) Close() error {
	err := s.db.Close()
	if cerr := s.adapter.Close(); err == nil {
		err = cerr
	}
	return err
}

func (s *Store) Backend() storage.Backend { return s.adapter.Backend() }

var itemColumns = []string{
	"id", "title", "description", "status", "priority", "issue_type",
	"assignee", "estimated_minutes", "external_ref", "source_repo",
	"created_at", "created_by", "updated_at", "due_date", "closed_at",
	"design", "acceptance_criteria", "notes", "labels",
}

// Put upserts an item, stamping UpdatedAt (and CreatedAt on first write)
// from the store clock.
func (s *Store) Put(ctx context.Context, it *Item) error {
	if it.ID == "" {
		return New(ErrStore, "item id required")
	}
	now := s.now()
	if it.CreatedAt.IsZero() {
		it.CreatedAt = now
	}
	it.UpdatedAt = now

	labels := it.Labels
	if labels == nil {
		labels = []string{}
	}
	labelsJSON, err := json.Marshal(labels)
	if err != nil {
		return Wrap(ErrStore, "encode labels", err)
	}

	b := sqlbuilder.New(s.adapter.Placeholder())
	placeholders := b.ArgList(
		it.ID, it.Title, it.Description, string(it.Status), it.Priority, it.IssueType,
		it.Assignee, it.EstimatedMinutes, it.ExternalRef, it.SourceRepo,
		it.CreatedAt.UnixMilli(), it.CreatedBy, it.UpdatedAt.UnixMilli(),
		millisPtr(it.DueDate), millisPtr(it.ClosedAt),
		it.Design, it.AcceptanceCriteria, it.Notes, string(labelsJSON),
	)

	var sets []string
	for _, col := range itemColumns[1:] {
		sets = append(sets, col+" = excluded."+col)
	}
	stmt := "INSERT INTO items (" + strings.Join(itemColumns, ", ") + ")" +
		" VALUES (" + strings.Join(placeholders, ", ") + ")" +
		" ON CONFLICT (id) DO UPDATE SET " + strings.Join(sets, ", ")

	if _, err := s.db.ExecContext(ctx, stmt, b.Args()...); err != nil {
		return Wrap(ErrSQL, "put item", err)
	}
	return nil
}

// Get fetches a single item by id.
func (s *Store) Get(ctx context.Context, id string) (*Item, error) {
	b := sqlbuilder.New(s.adapter.Placeholder())
	stmt := "SELECT " + strings.Join(itemColumns, ", ") + " FROM items WHERE id = " + b.Arg(id)

	it, err := scanItem(s.db.QueryRowContext(ctx, stmt, b.Args()...))
	if err == sql.ErrNoRows {
		return nil, NotFoundError(id)
	}
	if err != nil {
		return nil, Wrap(ErrSQL, "get item", err)
	}
	return it, nil
}

// Delete removes an item by id; deleting a missing item is a not_found
// error.
func (s *Store) Delete(ctx context.Context, id string) error {
	b := sqlbuilder.New(s.adapter.Placeholder())
	stmt := "DELETE FROM items WHERE id = " + b.Arg(id)

	res, err := s.db.ExecContext(ctx, stmt, b.Args()...)
	if err != nil {
		return Wrap(ErrSQL, "delete item", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return NotFoundError(id)
	}
	return nil
}

// List loads every item, ordered by id for determinism.
func (s *Store) List(ctx context.Context) ([]*Item, error) {
	stmt := "SELECT " + strings.Join(itemColumns, ", ") + " FROM items ORDER BY id"
	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, Wrap(ErrSQL, "list items", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, Wrap(ErrSQL, "scan item", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, Wrap(ErrSQL, "list items", err)
	}
	return items, nil
}

// Search parses queryStr and returns the matching items filtered and
// sorted in memory, appending the query to the history. Only searches
// that actually ran are recorded: a parse failure or a failed record
// load leaves the history untouched. Parse failures keep their
// *query.Error (with source offset) reachable via errors.As.
func (s *Store) Search(ctx context.Context, queryStr string) ([]*Item, error) {
	q, err := query.Parse(queryStr)
	if err != nil {
		return nil, Wrap(ErrQuery, "parse query", err)
	}

	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.appendHistory(ctx, queryStr); err != nil {
		return nil, err
	}
	return eval.Apply(q, items, s.now()), nil
}

// HistoryEntry is one recorded search
type HistoryEntry struct {
	ID    int64     `json:"id"`
	Query string    `json:"query"`
	RanAt time.Time `json:"ran_at"`
}

func (s *Store) appendHistory(ctx context.Context, queryStr string) error {
	b := sqlbuilder.New(s.adapter.Placeholder())
	stmt := "INSERT INTO history (query, ran_at) VALUES (" +
		strings.Join(b.ArgList(queryStr, s.now().UnixMilli()), ", ") + ")"
	if _, err := s.db.ExecContext(ctx, stmt, b.Args()...); err != nil {
		return Wrap(ErrSQL, "append history", err)
	}
	return nil
}

// History returns the most recent searches, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	b := sqlbuilder.New(s.adapter.Placeholder())
	stmt := "SELECT id, query, ran_at FROM history ORDER BY id DESC LIMIT " + b.Arg(limit)

	rows, err := s.db.QueryContext(ctx, stmt, b.Args()...)
	if err != nil {
		return nil, Wrap(ErrSQL, "query history", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var ranAt int64
		if err := rows.Scan(&e.ID, &e.Query, &ranAt); err != nil {
			return nil, Wrap(ErrSQL, "scan history", err)
		}
		e.RanAt = time.UnixMilli(ranAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, Wrap(ErrSQL, "query history", err)
	}
	return entries, nil
}

// ClearHistory empties the query history.
func (s *Store) ClearHistory(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM history"); err != nil {
		return Wrap(ErrSQL, "clear history", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var (
		it        Item
		status    string
		priority  sql.NullInt64
		assignee  sql.NullString
		estimated sql.NullInt64
		extRef    sql.NullString
		repo      sql.NullString
		createdAt int64
		updatedAt int64
		dueDate   sql.NullInt64
		closedAt  sql.NullInt64
		labels    string
	)

	err := row.Scan(
		&it.ID, &it.Title, &it.Description, &status, &priority, &it.IssueType,
		&assignee, &estimated, &extRef, &repo,
		&createdAt, &it.CreatedBy, &updatedAt, &dueDate, &closedAt,
		&it.Design, &it.AcceptanceCriteria, &it.Notes, &labels,
	)
	if err != nil {
		return nil, err
	}

	it.Status = Status(status)
	it.CreatedAt = time.UnixMilli(createdAt)
	it.UpdatedAt = time.UnixMilli(updatedAt)
	if priority.Valid {
		it.Priority = &priority.Int64
	}
	if assignee.Valid {
		it.Assignee = &assignee.String
	}
	if estimated.Valid {
		it.EstimatedMinutes = &estimated.Int64
	}
	if extRef.Valid {
		it.ExternalRef = &extRef.String
	}
	if repo.Valid {
		it.SourceRepo = &repo.String
	}
	if dueDate.Valid {
		t := time.UnixMilli(dueDate.Int64)
		it.DueDate = &t
	}
	if closedAt.Valid {
		t := time.UnixMilli(closedAt.Int64)
		it.ClosedAt = &t
	}
	if labels != "" {
		if err := json.Unmarshal([]byte(labels), &it.Labels); err != nil {
			return nil, err
		}
	}
	if len(it.Labels) == 0 {
		it.Labels = nil
	}
	return &it, nil
}

func millisPtr(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return t.UnixMilli()
}
