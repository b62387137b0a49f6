package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/invertedv/asec/config"
	"github.com/invertedv/asec/df"
	_ "github.com/jackc/pgx/stdlib"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const stagingSuffix = "__staging"

var validKey = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Table is a DF to be stored under Key.
type Table struct {
	Key string
	DF  *df.DF
}

// ErrNotFound is returned when the store, or a key in it, does not exist.
var ErrNotFound = errors.New("not found")

// Store holds the tables of one dataset and year.
//
// With sqlite, each dataset and year is its own file and keys are the table names.  On a database
// server the tables are named <dataset>_<year>_<key>.
type Store struct {
	cfg     config.Store
	dlct    *Dialect
	dataset string
	year    int

	db  *sql.DB
	log *zap.Logger
}

func Open(ctx context.Context, cfg config.Store, dataset string, year int, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if !validKey.MatchString(dataset) {
		return nil, fmt.Errorf("invalid dataset name %q", dataset)
	}

	dlct, err := NewDialect(cfg.Dialect)
	if err != nil {
		return nil, err
	}

	s := &Store{cfg: cfg, dlct: dlct, dataset: dataset, year: year, log: log}

	// sqlite files are opened when needed: Save builds a new file
	if dlct.DialectName() == SQLite {
		return s, nil
	}

	if s.db, err = s.connect(); err != nil {
		return nil, err
	}

	if err := s.db.PingContext(ctx); err != nil {
		_ = s.db.Close()
		return nil, fmt.Errorf("cannot reach %s: %w", dlct.DialectName(), err)
	}

	return s, nil
}

func (s *Store) connect() (*sql.DB, error) {
	if s.dlct.DialectName() == ClickHouse && s.cfg.DSN == "" {
		ch := s.cfg.ClickHouse
		return clickhouse.OpenDB(
			&clickhouse.Options{
				Addr: ch.Addr,
				Auth: clickhouse.Auth{
					Database: ch.Database,
					Username: ch.User,
					Password: ch.Password,
				},
				DialTimeout: 300 * time.Second,
				Compression: &clickhouse.Compression{
					Method: clickhouse.CompressionLZ4,
				},
			}), nil
	}

	db, err := sql.Open(s.dlct.DriverName(), s.cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", s.dlct.DialectName(), err)
	}

	return db, nil
}

// Path is the sqlite file of the store, "" for other dialects
func (s *Store) Path() string {
	if s.dlct.DialectName() != SQLite {
		return ""
	}

	return filepath.Join(s.cfg.Dir, fmt.Sprintf("%s_%d.db", s.dataset, s.year))
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil

	return err
}

// TableName is the name in the database of key
func (s *Store) TableName(key string) string {
	if s.dlct.DialectName() == SQLite {
		return key
	}

	return fmt.Sprintf("%s_%d_%s", s.dataset, s.year, key)
}

// Save writes all tables or none of them.  Existing tables with the same keys are replaced.
func (s *Store) Save(ctx context.Context, tables ...Table) error {
	if len(tables) == 0 {
		return fmt.Errorf("no tables to save")
	}

	var keys []string
	for _, t := range tables {
		if !validKey.MatchString(t.Key) {
			return fmt.Errorf("invalid key %q", t.Key)
		}

		if has(t.Key, keys) {
			return fmt.Errorf("duplicate key %q", t.Key)
		}

		if t.DF == nil || t.DF.ColumnCount() == 0 {
			return fmt.Errorf("table %s has no columns", t.Key)
		}

		keys = append(keys, t.Key)
	}

	start := time.Now()
	var err error
	switch {
	case s.dlct.DialectName() == SQLite:
		err = s.saveFile(ctx, tables)
	case s.dlct.TransactionalDDL():
		err = s.saveTx(ctx, s.db, tables, s.TableName)
	default:
		err = s.saveStaged(ctx, tables)
	}

	if err != nil {
		return err
	}

	s.log.Info("tables saved",
		zap.String("dialect", s.dlct.DialectName()),
		zap.Strings("keys", keys),
		zap.Duration("elapsed", time.Since(start)))

	return nil
}

// saveFile builds a new sqlite file beside the final one and renames it into place on success
func (s *Store) saveFile(ctx context.Context, tables []Table) error {
	final := s.Path()
	if err := os.MkdirAll(filepath.Dir(final), 0o755); err != nil {
		return err
	}

	tmp := fmt.Sprintf("%s.%s.tmp", final, uuid.NewString())
	ok := false
	defer func() {
		if !ok {
			_ = os.Remove(tmp)
		}
	}()

	db, err := sql.Open(s.dlct.DriverName(), tmp)
	if err != nil {
		return err
	}

	if err := s.saveTx(ctx, db, tables, s.TableName); err != nil {
		_ = db.Close()
		return err
	}

	if err := db.Close(); err != nil {
		return err
	}

	// a reader of the old file must let go before it is replaced
	if err := s.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp, final); err != nil {
		return err
	}

	ok = true

	return nil
}

// saveTx writes every table in one transaction
func (s *Store) saveTx(ctx context.Context, db *sql.DB, tables []Table, name func(string) string) (err error) {
	var tx *sql.Tx
	if tx, err = db.BeginTx(ctx, nil); err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, t := range tables {
		tableName := name(t.Key)
		if _, err = tx.ExecContext(ctx, s.dlct.DropIf(tableName)); err != nil {
			return fmt.Errorf("drop %s: %w", tableName, err)
		}

		if err = s.create(ctx, tx, tableName, t.DF); err != nil {
			return err
		}

		if err = s.insert(ctx, tx, tableName, t.DF); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// saveStaged is for databases whose DDL is not transactional: every table is written to a staging
// table first, and the staging tables replace the old ones only after all are written.
func (s *Store) saveStaged(ctx context.Context, tables []Table) (err error) {
	staged := func(key string) string { return s.TableName(key) + stagingSuffix }

	defer func() {
		if err == nil {
			return
		}

		for _, t := range tables {
			_, _ = s.db.ExecContext(ctx, s.dlct.DropIf(staged(t.Key)))
		}
	}()

	for _, t := range tables {
		tableName := staged(t.Key)
		if _, err = s.db.ExecContext(ctx, s.dlct.DropIf(tableName)); err != nil {
			return fmt.Errorf("drop %s: %w", tableName, err)
		}

		if err = s.create(ctx, s.db, tableName, t.DF); err != nil {
			return err
		}

		// clickhouse-go batches the inserts of a transaction
		var tx *sql.Tx
		if tx, err = s.db.BeginTx(ctx, nil); err != nil {
			return err
		}

		if err = s.insert(ctx, tx, tableName, t.DF); err != nil {
			_ = tx.Rollback()
			return err
		}

		if err = tx.Commit(); err != nil {
			return fmt.Errorf("insert %s: %w", tableName, err)
		}
	}

	for _, t := range tables {
		final := s.TableName(t.Key)
		if _, err = s.db.ExecContext(ctx, s.dlct.DropIf(final)); err != nil {
			return fmt.Errorf("drop %s: %w", final, err)
		}

		if _, err = s.db.ExecContext(ctx, s.dlct.Rename(staged(t.Key), final)); err != nil {
			return fmt.Errorf("rename %s: %w", final, err)
		}
	}

	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) create(ctx context.Context, db execer, tableName string, data *df.DF) error {
	qry, err := s.dlct.Create(tableName, "", data.ColumnNames(), data.ColumnTypes())
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, qry); err != nil {
		return fmt.Errorf("create %s: %w", tableName, err)
	}

	return nil
}

func (s *Store) insert(ctx context.Context, tx *sql.Tx, tableName string, data *df.DF) error {
	var cols []*df.Vector
	for c := data.Next(true); c != nil; c = data.Next(false) {
		cols = append(cols, c.Data())
	}

	var (
		names    = data.ColumnNames()
		nRows    = data.RowCount()
		batch    = s.dlct.BatchRows(len(cols))
		stmt     *sql.Stmt
		stmtRows int
		err      error
	)
	defer func() {
		if stmt != nil {
			_ = stmt.Close()
		}
	}()

	args := make([]any, 0, batch*len(cols))
	for start := 0; start < nRows; start += batch {
		n := min(batch, nRows-start)

		// the last batch may be short
		if n != stmtRows {
			if stmt != nil {
				_ = stmt.Close()
			}

			if stmt, err = tx.PrepareContext(ctx, s.dlct.InsertRows(tableName, names, n)); err != nil {
				return fmt.Errorf("prepare insert %s: %w", tableName, err)
			}

			stmtRows = n
		}

		args = args[:0]
		for row := start; row < start+n; row++ {
			for _, v := range cols {
				args = append(args, dbValue(v.Element(row)))
			}
		}

		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert %s, rows %d to %d: %w", tableName, start, start+n-1, err)
		}
	}

	s.log.Debug("table written", zap.String("table", tableName), zap.Int("rows", nRows), zap.Int("batch", batch))

	return nil
}

func dbValue(x any) any {
	if i, ok := x.(int); ok {
		return int64(i)
	}

	return x
}

func (s *Store) reader() (*sql.DB, error) {
	if s.db != nil {
		return s.db, nil
	}

	path := s.Path()
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("store %s: %w", path, ErrNotFound)
		}

		return nil, err
	}

	db, err := sql.Open(s.dlct.DriverName(), path)
	if err != nil {
		return nil, err
	}

	s.db = db

	return db, nil
}

// Keys lists the keys in the store
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	db, err := s.reader()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, s.dlct.List())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	prefix := s.TableName("")
	var keys []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}

		if !strings.HasPrefix(name, prefix) || strings.HasSuffix(name, stagingSuffix) {
			continue
		}

		keys = append(keys, strings.TrimPrefix(name, prefix))
	}

	return keys, rows.Err()
}

func (s *Store) exists(ctx context.Context, db *sql.DB, key string) error {
	var n int
	if err := db.QueryRowContext(ctx, s.dlct.Exists(s.TableName(key))).Scan(&n); err != nil {
		return err
	}

	if n == 0 {
		return fmt.Errorf("key %s: %w", key, ErrNotFound)
	}

	return nil
}

// Count returns the number of rows stored under key
func (s *Store) Count(ctx context.Context, key string) (int, error) {
	db, err := s.reader()
	if err != nil {
		return 0, err
	}

	if err := s.exists(ctx, db, key); err != nil {
		return 0, err
	}

	var n int
	if err := db.QueryRowContext(ctx, s.dlct.Count(s.TableName(key))).Scan(&n); err != nil {
		return 0, err
	}

	return n, nil
}

// Load reads the table stored under key
func (s *Store) Load(ctx context.Context, key string) (*df.DF, error) {
	db, err := s.reader()
	if err != nil {
		return nil, err
	}

	if err := s.exists(ctx, db, key); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, s.dlct.SelectAll(s.TableName(key)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scan(rows)
}
