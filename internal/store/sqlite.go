package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"bibliofusion/internal/models"
)

// TableName is the SQLite table holding the merged records.
const TableName = "records"

// WriteSQLite writes the dataset to a fresh SQLite database at path, replacing any table of the same name.
// Year is stored as INTEGER (NULL when blank); every other column is TEXT.
func WriteSQLite(ctx context.Context, path string, ds *models.Dataset) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	cols := ds.Columns()
	names := sqliteColumns(cols)

	defs := make([]string, len(cols))
	for i, c := range cols {
		t := "TEXT"
		if c == models.ColumnYear {
			t = "INTEGER"
		}

		defs[i] = quoteIdent(names[i]) + " " + t
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+quoteIdent(TableName)); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `CREATE TABLE `+quoteIdent(TableName)+` (`+strings.Join(defs, ",")+`)`); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	if len(cols) > 0 {
		quoted := make([]string, len(names))
		for i, n := range names {
			quoted[i] = quoteIdent(n)
		}

		ph := strings.TrimRight(strings.Repeat("?,", len(cols)), ",")

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO `+quoteIdent(TableName)+` (`+strings.Join(quoted, ",")+`) VALUES (`+ph+`)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, rec := range ds.Records {
			args := make([]any, len(cols))
			for j, c := range cols {
				args[j] = sqliteValue(c, rec.Value(c))
			}

			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("insert row %d: %w", i+1, err)
			}
		}
	}

	for _, c := range []string{models.ColumnDOI, models.ColumnYear} {
		pos := indexOf(cols, c)
		if pos < 0 {
			continue
		}

		idx := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s(%s)`,
			quoteIdent("idx_"+TableName+"_"+strings.ToLower(c)), quoteIdent(TableName), quoteIdent(names[pos]))
		if _, err := tx.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	return tx.Commit()
}

func sqliteValue(column, v string) any {
	if column != models.ColumnYear {
		return v
	}

	year, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return nil
	}

	return year
}

// sqliteColumns makes column names unique under SQLite's case-insensitive identifier rules.
func sqliteColumns(cols []string) []string {
	names := make([]string, len(cols))
	used := make(map[string]bool, len(cols))

	for i, c := range cols {
		name := c
		for n := 2; used[strings.ToLower(name)]; n++ {
			name = c + "_" + strconv.Itoa(n)
		}

		used[strings.ToLower(name)] = true
		names[i] = name
	}

	return names
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func indexOf(cols []string, c string) int {
	for i, v := range cols {
		if v == c {
			return i
		}
	}

	return -1
}
