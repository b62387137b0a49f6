package store

import (
	"embed"
	"fmt"
	"regexp"
	"strings"

	"github.com/invertedv/asec/df"
)

// All SQL text is built here, from the skeletons of each dialect

//go:embed skeletons
var skeletons embed.FS

const (
	SQLite     = "sqlite"
	Postgres   = "postgres"
	ClickHouse = "clickhouse"
	MySQL      = "mysql"
)

// Dialects lists the supported databases
var Dialects = []string{SQLite, Postgres, ClickHouse, MySQL}

var leftover = regexp.MustCompile(`\?[A-Za-z]`)

type Dialect struct {
	dialect string

	dtTypes []df.DataTypes
	dbTypes []string

	create string
	fields string
	dropIf string
	insert string
	exists string
	list   string
	rename string
}

func NewDialect(dialect string) (*Dialect, error) {
	dialect = strings.ToLower(dialect)
	if !has(dialect, Dialects) {
		return nil, fmt.Errorf("no skeletons for database %s", dialect)
	}

	d := &Dialect{dialect: dialect}

	for _, sk := range []struct {
		file string
		dest *string
	}{
		{"create", &d.create}, {"fields", &d.fields}, {"dropIf", &d.dropIf}, {"insert", &d.insert},
		{"exists", &d.exists}, {"list", &d.list}, {"rename", &d.rename},
	} {
		b, e := skeletons.ReadFile(fmt.Sprintf("skeletons/%s/%s.txt", dialect, sk.file))
		if e != nil {
			return nil, e
		}

		*sk.dest = strings.TrimSpace(string(b))
	}

	types, e := skeletons.ReadFile(fmt.Sprintf("skeletons/%s/types.txt", dialect))
	if e != nil {
		return nil, e
	}

	for _, lm := range strings.Split(string(types), "\n") {
		if strings.TrimSpace(lm) == "" {
			continue
		}

		t := strings.Split(lm, ",")
		if len(t) != 2 {
			return nil, fmt.Errorf("bad type line in %s skeleton: %s", dialect, lm)
		}

		dt := df.DTFromString(strings.TrimSpace(t[0]))
		if dt == df.DTunknown {
			return nil, fmt.Errorf("unknown data type %s in NewDialect", t[0])
		}

		d.dtTypes = append(d.dtTypes, dt)
		d.dbTypes = append(d.dbTypes, strings.TrimSpace(t[1]))
	}

	return d, nil
}

// ***************** Methods *****************

func (d *Dialect) DialectName() string {
	return d.dialect
}

// DriverName is the database/sql driver the dialect is served by
func (d *Dialect) DriverName() string {
	if d.dialect == Postgres {
		return "pgx"
	}

	return d.dialect
}

// TransactionalDDL is true if CREATE and DROP can be rolled back
func (d *Dialect) TransactionalDDL() bool {
	return d.dialect == SQLite || d.dialect == Postgres
}

// Quote quotes an identifier
func (d *Dialect) Quote(name string) string {
	if d.dialect == ClickHouse || d.dialect == MySQL {
		return "`" + name + "`"
	}

	return `"` + name + `"`
}

func (d *Dialect) DBType(dt df.DataTypes) (string, error) {
	pos := position(dt, d.dtTypes)
	if pos < 0 {
		return "", fmt.Errorf("cannot find type %s to map to DB type", dt)
	}

	return d.dbTypes[pos], nil
}

// Create returns the CREATE TABLE statement.  orderBy is used by dialects that need a sort key; if empty
// the first field is used.
func (d *Dialect) Create(tableName, orderBy string, fields []string, types []df.DataTypes) (string, error) {
	if len(fields) == 0 || len(fields) != len(types) {
		return "", fmt.Errorf("need one type for each of at least one field in Create")
	}

	if orderBy == "" {
		orderBy = fields[0]
	}

	var flds []string
	for ind := 0; ind < len(fields); ind++ {
		var (
			dbType string
			e      error
		)
		if dbType, e = d.DBType(types[ind]); e != nil {
			return "", e
		}

		field := strings.ReplaceAll(d.fields, "?Field", fields[ind])
		field = strings.ReplaceAll(field, "?Type", dbType)
		flds = append(flds, field)
	}

	create := strings.ReplaceAll(d.create, "?TableName", tableName)
	create = strings.Replace(create, "?OrderBy", d.Quote(orderBy), 1)
	create = strings.Replace(create, "?fields", strings.Join(flds, ", "), 1)

	if leftover.MatchString(create) {
		return "", fmt.Errorf("create still has placeholders: %s", create)
	}

	return create, nil
}

func (d *Dialect) DropIf(tableName string) string {
	return strings.ReplaceAll(d.dropIf, "?TableName", tableName)
}

// maxParams bounds the placeholders of one INSERT.  sqlite allows 32766.
var maxParams = 32766

// Insert returns a parameterized INSERT of one row
func (d *Dialect) Insert(tableName string, fields []string) string {
	return d.InsertRows(tableName, fields, 1)
}

// InsertRows returns a parameterized INSERT of nRows rows.  Arguments are given row by row.
func (d *Dialect) InsertRows(tableName string, fields []string, nRows int) string {
	var quoted []string
	for _, f := range fields {
		quoted = append(quoted, d.Quote(f))
	}

	rows := make([]string, nRows)
	for row := range rows {
		values := make([]string, len(fields))
		for ind := range values {
			values[ind] = d.placeholder(row*len(fields) + ind + 1)
		}

		rows[row] = "(" + strings.Join(values, ", ") + ")"
	}

	qry := strings.Replace(d.insert, "?TableName", tableName, 1)
	qry = strings.Replace(qry, "?Fields", strings.Join(quoted, ", "), 1)

	return strings.Replace(qry, "?Rows", strings.Join(rows, ", "), 1)
}

// BatchRows is the number of rows of nFields fields written by one INSERT.  The ClickHouse driver
// batches single-row inserts itself until commit.
func (d *Dialect) BatchRows(nFields int) int {
	if d.dialect == ClickHouse || nFields == 0 {
		return 1
	}

	return max(1, maxParams/nFields)
}

// Exists returns a query giving 1 if tableName exists, 0 otherwise
func (d *Dialect) Exists(tableName string) string {
	return strings.ReplaceAll(d.exists, "?TableName", tableName)
}

// List returns a query giving the names of all tables
func (d *Dialect) List() string {
	return d.list
}

func (d *Dialect) Rename(from, to string) string {
	qry := strings.Replace(d.rename, "?From", from, 1)
	return strings.Replace(qry, "?To", to, 1)
}

func (d *Dialect) Count(tableName string) string {
	return fmt.Sprintf("SELECT count(*) FROM %s", tableName)
}

func (d *Dialect) SelectAll(tableName string) string {
	return fmt.Sprintf("SELECT * FROM %s", tableName)
}

func (d *Dialect) placeholder(n int) string {
	if d.dialect == Postgres {
		return fmt.Sprintf("$%d", n)
	}

	return "?"
}

func has[C comparable](needle C, haystack []C) bool {
	return position(needle, haystack) >= 0
}

func position[C comparable](needle C, haystack []C) int {
	for ind, straw := range haystack {
		if needle == straw {
			return ind
		}
	}

	return -1
}
