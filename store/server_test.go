package store

import (
	"context"
	"os"
	"testing"

	"github.com/invertedv/asec/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// environment variables:
//   - ASEC_PG_DSN: postgres connection string, e.g. postgres://user:pw@host:5432/db
//   - ASEC_MYSQL_DSN: mysql connection string, e.g. user:pw@tcp(host:3306)/db
//   - ASEC_CH_HOST: ClickHouse IP address (port 9000); ASEC_CH_USER, ASEC_CH_PASSWORD
//
// A dialect whose variables are not set is skipped.
func servers() map[string]config.Store {
	out := make(map[string]config.Store)

	if dsn := os.Getenv("ASEC_PG_DSN"); dsn != "" {
		out[Postgres] = config.Store{Dialect: Postgres, DSN: dsn}
	}

	if dsn := os.Getenv("ASEC_MYSQL_DSN"); dsn != "" {
		out[MySQL] = config.Store{Dialect: MySQL, DSN: dsn}
	}

	if host := os.Getenv("ASEC_CH_HOST"); host != "" {
		out[ClickHouse] = config.Store{
			Dialect: ClickHouse,
			ClickHouse: config.ClickHouse{
				Addr:     []string{host + ":9000"},
				Database: "default",
				User:     os.Getenv("ASEC_CH_USER"),
				Password: os.Getenv("ASEC_CH_PASSWORD"),
			},
		}
	}

	return out
}

func TestServers(t *testing.T) {
	for _, which := range []string{Postgres, MySQL, ClickHouse} {
		t.Run(which, func(t *testing.T) {
			cfg, ok := servers()[which]
			if !ok {
				t.Skipf("no %s server configured", which)
			}

			ctx := context.Background()
			s, e := Open(ctx, cfg, "asec_test", 1999, nil)
			require.Nil(t, e)
			defer func() { _ = s.Close() }()

			tax := makeTable(t, "tax_unit",
				map[string]any{"TAX_ID": []int{1, 2}, "AGI": []float64{150.5, -20}},
				"TAX_ID", "AGI")
			require.Nil(t, s.Save(ctx, tax))

			keys, e := s.Keys(ctx)
			require.Nil(t, e)
			assert.Contains(t, keys, "tax_unit")

			n, e := s.Count(ctx, "tax_unit")
			assert.Nil(t, e)
			assert.Equal(t, 2, n)

			got, e := s.Load(ctx, "tax_unit")
			require.Nil(t, e)
			assert.Equal(t, []string{"TAX_ID", "AGI"}, got.ColumnNames())
			assert.Equal(t, 2, got.RowCount())

			// the second table cannot be written, so tax_unit keeps its rows
			one := makeTable(t, "tax_unit", map[string]any{"TAX_ID": []int{1}, "AGI": []float64{1}}, "TAX_ID", "AGI")
			var bad Table
			switch which {
			case Postgres:
				// text may not hold NUL
				bad = makeTable(t, "bad", map[string]any{"s": []string{"a\x00b"}}, "s")
			default:
				// column names are not case-sensitive
				bad = makeTable(t, "bad", map[string]any{"a": []int{1}, "A": []int{2}}, "a", "A")
			}

			if which != ClickHouse {
				assert.NotNil(t, s.Save(ctx, one, bad))
				n, _ = s.Count(ctx, "tax_unit")
				assert.Equal(t, 2, n)
			}

			keys, e = s.Keys(ctx)
			require.Nil(t, e)
			for _, k := range keys {
				_, _ = s.db.ExecContext(ctx, s.dlct.DropIf(s.TableName(k)))
			}
		})
	}
}
