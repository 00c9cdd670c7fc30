package listings

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-doccorpus/internal/logging"
	"github.com/goliatone/go-doccorpus/pkg/interfaces"
)

// ErrUnknownDriver is returned when the index driver is not supported.
var ErrUnknownDriver = errors.New("listings: unknown index driver")

// Query filters stored listings. Empty fields match everything.
type Query struct {
	Language     string
	DocumentPath string
}

// Store persists extracted listings.
type Store interface {
	Replace(ctx context.Context, documentPath string, listings []Listing) error
	List(ctx context.Context, query Query) ([]Listing, error)
	Count(ctx context.Context) (int, error)
}

// StoreConfig selects the database backing a BunStore.
type StoreConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string
	// DSN is passed to database/sql unchanged.
	DSN string
}

// OpenDB opens the bun database described by cfg.
func OpenDB(cfg StoreConfig) (*bun.DB, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "sqlite", "sqlite3":
		if dsn == "" {
			dsn = "file:listings?mode=memory&cache=shared"
		}
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("listings: open sqlite: %w", err)
		}
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case "postgres", "postgresql", "pg":
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("listings: open postgres: %w", err)
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, cfg.Driver)
	}
}

// BunStore persists listings using a Bun-backed database.
type BunStore struct {
	db     *bun.DB
	now    func() time.Time
	logger interfaces.Logger
}

var _ Store = (*BunStore)(nil)

// StoreOption customises a BunStore.
type StoreOption func(*BunStore)

// WithStoreLogger sets the logger that reports index writes.
func WithStoreLogger(logger interfaces.Logger) StoreOption {
	return func(s *BunStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewBunStore constructs a Bun-backed listing store.
func NewBunStore(db *bun.DB, opts ...StoreOption) *BunStore {
	s := &BunStore{db: db, now: time.Now, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureSchema creates the listings table and its lookup index.
func (s *BunStore) EnsureSchema(ctx context.Context) error {
	if s.db == nil {
		return errors.New("listings: bun store requires a database")
	}
	if _, err := s.db.NewCreateTable().Model((*listingModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("listings: create table: %w", err)
	}
	if _, err := s.db.NewCreateIndex().
		Model((*listingModel)(nil)).
		Index("doc_listings_document_path_idx").
		Column("document_path", "ordinal").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("listings: create index: %w", err)
	}
	return nil
}

// Replace swaps every stored listing of documentPath for listings in one
// transaction. Replacing with the same listings is a no-op apart from the
// indexed_at timestamp.
func (s *BunStore) Replace(ctx context.Context, documentPath string, listings []Listing) error {
	if s.db == nil {
		return errors.New("listings: bun store requires a database")
	}
	now := s.now().UTC()
	models := make([]listingModel, 0, len(listings))
	for _, l := range listings {
		if l.DocumentPath != documentPath {
			return fmt.Errorf("listings: listing %s belongs to %s, not %s", l.ID, l.DocumentPath, documentPath)
		}
		models = append(models, modelFromListing(l, now))
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*listingModel)(nil)).
			Where("document_path = ?", documentPath).
			Exec(ctx); err != nil {
			return fmt.Errorf("listings: delete %s: %w", documentPath, err)
		}
		if len(models) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&models).Exec(ctx); err != nil {
			return fmt.Errorf("listings: insert %s: %w", documentPath, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.WithContext(ctx).Debug("listings.index.replaced", "document_path", documentPath, "listings", len(models))
	return nil
}

// List returns stored listings ordered by document path then ordinal.
func (s *BunStore) List(ctx context.Context, query Query) ([]Listing, error) {
	if s.db == nil {
		return nil, errors.New("listings: bun store requires a database")
	}
	var models []listingModel
	q := s.db.NewSelect().Model(&models).Order("document_path ASC", "ordinal ASC")
	if lang := strings.TrimSpace(query.Language); lang != "" {
		q = q.Where("LOWER(language) = ?", strings.ToLower(lang))
	}
	if path := strings.TrimSpace(query.DocumentPath); path != "" {
		q = q.Where("document_path = ?", path)
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("listings: list: %w", err)
	}
	out := make([]Listing, 0, len(models))
	for i := range models {
		out = append(out, models[i].toListing())
	}
	return out, nil
}

// Count returns the number of stored listings.
func (s *BunStore) Count(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, errors.New("listings: bun store requires a database")
	}
	return s.db.NewSelect().Model((*listingModel)(nil)).Count(ctx)
}

// NoOpStore discards listings. It is used when indexing is disabled.
type NoOpStore struct{}

var _ Store = NoOpStore{}

func (NoOpStore) Replace(context.Context, string, []Listing) error { return nil }
func (NoOpStore) List(context.Context, Query) ([]Listing, error)   { return nil, nil }
func (NoOpStore) Count(context.Context) (int, error)               { return 0, nil }

type listingModel struct {
	bun.BaseModel `bun:"table:doc_listings"`

	ID            string    `bun:"id,pk"`
	DocumentPath  string    `bun:"document_path,notnull"`
	DocumentTitle string    `bun:"document_title"`
	Ordinal       int       `bun:"ordinal,notnull"`
	Language      string    `bun:"language"`
	Source        string    `bun:"source"`
	Line          int       `bun:"line"`
	Anchor        string    `bun:"anchor"`
	Checksum      string    `bun:"checksum"`
	IndexedAt     time.Time `bun:"indexed_at,notnull"`
}

func modelFromListing(l Listing, now time.Time) listingModel {
	sum := sha256.Sum256([]byte(l.Source))
	return listingModel{
		ID:            l.ID.String(),
		DocumentPath:  l.DocumentPath,
		DocumentTitle: l.DocumentTitle,
		Ordinal:       l.Ordinal,
		Language:      l.Language,
		Source:        l.Source,
		Line:          l.Line,
		Anchor:        l.Anchor,
		Checksum:      hex.EncodeToString(sum[:]),
		IndexedAt:     now,
	}
}

func (m *listingModel) toListing() Listing {
	l := Listing{
		DocumentPath:  m.DocumentPath,
		DocumentTitle: m.DocumentTitle,
		Ordinal:       m.Ordinal,
		Language:      m.Language,
		Source:        m.Source,
		Line:          m.Line,
		Anchor:        m.Anchor,
	}
	if id, err := uuid.Parse(m.ID); err == nil {
		l.ID = id
	}
	return l
}
