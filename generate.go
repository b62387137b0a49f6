package asec

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invertedv/asec/config"
	"github.com/invertedv/asec/df"
	"github.com/invertedv/asec/fetch"
	"github.com/invertedv/asec/store"
	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"
)

// Keys of the tables saved by Generate
const (
	KeyPerson    = "person"
	KeyFamily    = "family"
	KeyHousehold = "household"
	KeyTaxUnit   = "tax_unit"
	KeySPMUnit   = "spm_unit"
	KeyMetadata  = "metadata"
)

// Generator downloads the archive of a year and builds its tables.
type Generator struct {
	cfg    *config.Config
	client *http.Client
	log    *zap.Logger
	now    func() time.Time
}

type GenOpt func(g *Generator) error

func NewGenerator(cfg *config.Config, opts ...GenOpt) (*Generator, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	if e := cfg.Validate(); e != nil {
		return nil, e
	}

	g := &Generator{cfg: cfg, client: http.DefaultClient, log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		if e := opt(g); e != nil {
			return nil, e
		}
	}

	return g, nil
}

func GenClient(client *http.Client) GenOpt {
	return func(g *Generator) error {
		if client == nil {
			return fmt.Errorf("nil client in GenClient")
		}

		g.client = client
		return nil
	}
}

func GenLogger(log *zap.Logger) GenOpt {
	return func(g *Generator) error {
		if log != nil {
			g.log = log
		}

		return nil
	}
}

// Result describes a completed Generate
type Result struct {
	RunID string
	URL   string
	Bytes int
	// Rows holds the row count of each saved table
	Rows map[string]int
}

// Generate downloads the archive for year, loads its person, family and household files, derives the
// tax_unit and spm_unit tables and saves all of them, with a metadata table, to the store.  Nothing is
// saved unless every step succeeds.
//
// Download failures are returned as a *RetrievalError, later failures as a *TransformError.
func (g *Generator) Generate(ctx context.Context, year int) (*Result, error) {
	if year < 1000 || year > 9999 {
		return nil, fmt.Errorf("year must have four digits, got %d", year)
	}

	res := &Result{RunID: uuid.NewString(), URL: g.cfg.Source.URL(year), Rows: make(map[string]int)}
	log := g.log.With(zap.Int("year", year), zap.String("run_id", res.RunID))

	var (
		archive []byte
		e       error
	)
	if archive, e = g.download(ctx, res.URL, log); e != nil {
		return nil, &RetrievalError{Year: year, URL: res.URL, Err: e}
	}

	res.Bytes = len(archive)

	var tables []store.Table
	if tables, e = g.build(archive, year, log); e != nil {
		return nil, &TransformError{Year: year, Err: e}
	}

	meta, e := g.metadata(res, year)
	if e != nil {
		return nil, &TransformError{Year: year, Err: e}
	}

	tables = append(tables, store.Table{Key: KeyMetadata, DF: meta})

	if e := g.save(ctx, year, tables, log); e != nil {
		return nil, &TransformError{Year: year, Err: e}
	}

	for _, t := range tables {
		res.Rows[t.Key] = t.DF.RowCount()
	}

	log.Info("generated", zap.String("dataset", g.cfg.Dataset), zap.Any("rows", res.Rows))

	return res, nil
}

func (g *Generator) download(ctx context.Context, url string, log *zap.Logger) ([]byte, error) {
	if g.cfg.Source.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Source.Timeout)
		defer cancel()
	}

	dl, e := fetch.New(
		fetch.WithClient(g.client),
		fetch.WithChunkSize(g.cfg.Source.ChunkSize),
		fetch.WithAssumedSize(g.cfg.Source.AssumedSize),
		fetch.WithLogger(log))
	if e != nil {
		return nil, e
	}

	return dl.Archive(ctx, url)
}

// build loads the three files of the archive and derives the unit tables
func (g *Generator) build(archive []byte, year int, log *zap.Logger) ([]store.Table, error) {
	zr, e := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if e != nil {
		return nil, fmt.Errorf("open archive: %w", e)
	}

	opts := []df.FileOpt{df.FileFill(0)}
	if len(g.cfg.Source.Missing) > 0 {
		opts = append(opts, df.FileMissing(g.cfg.Source.Missing...))
	}

	files, e := df.NewFiles(opts...)
	if e != nil {
		return nil, e
	}

	yy := fmt.Sprintf("%02d", year%100)

	var tables []store.Table
	for _, m := range []struct{ key, prefix string }{
		{KeyPerson, "pppub"}, {KeyFamily, "ffpub"}, {KeyHousehold, "hhpub"},
	} {
		name := fmt.Sprintf("%s%s.csv", m.prefix, yy)

		var open df.Opener
		if open, e = member(zr, name); e != nil {
			return nil, e
		}

		var data *df.DF
		if data, e = files.Load(open); e != nil {
			return nil, fmt.Errorf("read %s: %w", name, e)
		}

		log.Info("loaded", zap.String("file", name), zap.Int("rows", data.RowCount()),
			zap.Int("columns", data.ColumnCount()))
		tables = append(tables, store.Table{Key: m.key, DF: data})
	}

	person := tables[0].DF

	tax, e := TaxUnits(person, TaxUnitSpec())
	if e != nil {
		return nil, fmt.Errorf("%s: %w", KeyTaxUnit, e)
	}

	spmSpec := SPMUnitSpec()
	spm, e := SPMUnits(person, spmSpec)
	if e != nil {
		return nil, fmt.Errorf("%s: %w", KeySPMUnit, e)
	}

	if g.cfg.Checks.SPMUniformity {
		if e := checkUniform(person, spmSpec, log); e != nil {
			return nil, e
		}
	}

	return append(tables, store.Table{Key: KeyTaxUnit, DF: tax}, store.Table{Key: KeySPMUnit, DF: spm}), nil
}

// member finds name in the archive, ignoring case and any directory
func member(zr *zip.Reader, name string) (df.Opener, error) {
	for _, f := range zr.File {
		if strings.EqualFold(path.Base(f.Name), name) {
			zf := f
			return func() (io.ReadCloser, error) { return zf.Open() }, nil
		}
	}

	return nil, fmt.Errorf("archive has no file %s", name)
}

// checkUniform warns about SPM fields that are not constant within a unit.  The spm_unit table is not changed.
func checkUniform(person *df.DF, spec UnitSpec, log *zap.Logger) error {
	counts, e := person.NonUniform(spec.Key, spec.Columns...)
	if e != nil {
		return e
	}

	var cols []string
	for c := range counts {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	for _, c := range cols {
		log.Warn("field varies within units, first member's value kept",
			zap.String("column", c), zap.Int("units", counts[c]))
	}

	return nil
}

func (g *Generator) metadata(res *Result, year int) (*df.DF, error) {
	vals := []struct {
		name string
		data any
	}{
		{"run_id", []string{res.RunID}},
		{"dataset", []string{g.cfg.Dataset}},
		{"year", []int{year}},
		{"source_url", []string{res.URL}},
		{"bytes", []int{res.Bytes}},
		{"created_at", []string{g.now().UTC().Format(time.RFC3339)}},
	}

	var cols []df.Column
	for _, v := range vals {
		col, e := df.NewCol(v.data, df.ColName(v.name))
		if e != nil {
			return nil, e
		}

		cols = append(cols, col)
	}

	return df.NewDF(cols...)
}

func (g *Generator) save(ctx context.Context, year int, tables []store.Table, log *zap.Logger) error {
	s, e := store.Open(ctx, g.cfg.Store, g.cfg.Dataset, year, log)
	if e != nil {
		return e
	}
	defer func() { _ = s.Close() }()

	return s.Save(ctx, tables...)
}
