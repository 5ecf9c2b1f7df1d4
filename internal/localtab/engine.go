package localtab

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mesh-intelligence/lakecheck/internal/harness"
	"github.com/mesh-intelligence/lakecheck/pkg/types"
)

// tableMeta is the engine's view of one table.
type tableMeta struct {
	id          string
	ref         types.TableRef
	location    types.Location
	partitioned bool
	bucket      string
	key         string
}

// dataPrefix returns the key prefix of the table's data directory,
// preserving the location's quirks (a trailing space stays in front of
// the appended slash).
func (m tableMeta) dataPrefix() string {
	return ensureSlash(m.key) + "data/"
}

// metadataPrefix returns the key prefix of the table's metadata
// directory.
func (m tableMeta) metadataPrefix() string {
	return ensureSlash(m.key) + "metadata/"
}

// partitionDir returns the partition subdirectory for a row, or "" for
// unpartitioned tables. The partition value is used verbatim, so values
// with slashes or percent characters produce exactly those bytes in the
// key.
func (m tableMeta) partitionDir(str string) string {
	if !m.partitioned {
		return ""
	}
	return "col_str=" + str + "/"
}

// Execute runs a mutating command. Commands touching a missing schema or
// table fail with the matching sentinel error; the harness treats any
// failure as a scenario abort.
func (b *Backend) Execute(ctx context.Context, cmd types.Command) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return 0, types.ErrDetached
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var affected int64
	switch c := cmd.(type) {
	case types.CreateSchema:
		affected, err = b.execCreateSchema(ctx, tx, c)
	case types.DropSchema:
		affected, err = b.execDropSchema(ctx, tx, c)
	case types.CreateTable:
		affected, err = b.execCreateTable(ctx, tx, c)
	case types.Insert:
		affected, err = b.execInsert(ctx, tx, c)
	case types.Update:
		affected, err = b.execUpdate(ctx, tx, c)
	case types.Delete:
		affected, err = b.execDelete(ctx, tx, c)
	case types.Merge:
		affected, err = b.execMerge(ctx, tx, c)
	case types.Optimize:
		affected, err = b.execOptimize(ctx, tx, c)
	case types.DropTable:
		affected, err = b.execDropTable(ctx, tx, c)
	default:
		return 0, fmt.Errorf("%w: %T", types.ErrUnknownCommand, cmd)
	}
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}
	return affected, nil
}

func (b *Backend) execCreateSchema(ctx context.Context, tx *sql.Tx, c types.CreateSchema) (int64, error) {
	var existing string
	err := tx.QueryRowContext(ctx, "SELECT name FROM schemas WHERE name = ?", c.Name).Scan(&existing)
	if err == nil {
		return 0, fmt.Errorf("%w: %s", types.ErrSchemaExists, c.Name)
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("checking schema: %w", err)
	}

	location := c.Location
	if location == "" {
		location = qualify(b.cfg.Bucket, c.Name)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schemas (name, location) VALUES (?, ?)", c.Name, string(location)); err != nil {
		return 0, fmt.Errorf("creating schema: %w", err)
	}
	return 0, nil
}

func (b *Backend) execDropSchema(ctx context.Context, tx *sql.Tx, c types.DropSchema) (int64, error) {
	var name string
	err := tx.QueryRowContext(ctx, "SELECT name FROM schemas WHERE name = ?", c.Name).Scan(&name)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: %s", types.ErrSchemaNotFound, c.Name)
	}
	if err != nil {
		return 0, fmt.Errorf("checking schema: %w", err)
	}

	var tables int
	if err := tx.QueryRowContext(ctx,
		"SELECT count(*) FROM tables WHERE schema_name = ?", c.Name).Scan(&tables); err != nil {
		return 0, fmt.Errorf("counting tables: %w", err)
	}
	if tables > 0 {
		return 0, fmt.Errorf("%w: %s holds %d table(s)", types.ErrSchemaNotEmpty, c.Name, tables)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM schemas WHERE name = ?", c.Name); err != nil {
		return 0, fmt.Errorf("dropping schema: %w", err)
	}
	return 0, nil
}

func (b *Backend) execCreateTable(ctx context.Context, tx *sql.Tx, c types.CreateTable) (int64, error) {
	var schemaLocation string
	err := tx.QueryRowContext(ctx,
		"SELECT location FROM schemas WHERE name = ?", c.Table.Schema).Scan(&schemaLocation)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: %s", types.ErrSchemaNotFound, c.Table.Schema)
	}
	if err != nil {
		return 0, fmt.Errorf("checking schema: %w", err)
	}

	var existing string
	err = tx.QueryRowContext(ctx,
		"SELECT table_id FROM tables WHERE schema_name = ? AND name = ?",
		c.Table.Schema, c.Table.Name).Scan(&existing)
	if err == nil {
		return 0, fmt.Errorf("%w: %s", types.ErrTableExists, c.Table)
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("checking table: %w", err)
	}

	location := c.Location
	if location == "" {
		// Derived locations get a generated suffix, so repeated
		// create/drop of the same name never reuses a prefix. The full
		// ID is used: its truncations repeat within a millisecond.
		location = types.Location(ensureSlash(schemaLocation) + c.Table.Name + "-" + newID())
	}
	bucket, key, err := harness.SplitLocation(location)
	if err != nil {
		return 0, err
	}
	meta := tableMeta{
		id:          newID(),
		ref:         c.Table,
		location:    location,
		partitioned: c.Partitioned,
		bucket:      bucket,
		key:         key,
	}

	partitioned := 0
	if c.Partitioned {
		partitioned = 1
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO tables (table_id, schema_name, name, location, partitioned) VALUES (?, ?, ?, ?, ?)",
		meta.id, c.Table.Schema, c.Table.Name, string(location), partitioned); err != nil {
		return 0, fmt.Errorf("creating table: %w", err)
	}

	manifest, err := json.Marshal(map[string]string{
		"table_id": meta.id,
		"table":    c.Table.String(),
		"location": string(location),
	})
	if err != nil {
		return 0, fmt.Errorf("encoding manifest: %w", err)
	}
	metaKey := meta.metadataPrefix() + newID() + ".metadata.json"
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO objects (bucket, key, body) VALUES (?, ?, ?)",
		meta.bucket, metaKey, manifest); err != nil {
		return 0, fmt.Errorf("writing manifest: %w", err)
	}

	if len(c.Rows) > 0 {
		if err := b.writeDataFiles(ctx, tx, meta, c.Rows); err != nil {
			return 0, err
		}
	}
	return int64(len(c.Rows)), nil
}

func (b *Backend) execInsert(ctx context.Context, tx *sql.Tx, c types.Insert) (int64, error) {
	meta, err := b.getTable(ctx, tx, c.Table)
	if err != nil {
		return 0, err
	}
	if err := b.writeDataFiles(ctx, tx, meta, c.Rows); err != nil {
		return 0, err
	}
	return int64(len(c.Rows)), nil
}

func (b *Backend) execUpdate(ctx context.Context, tx *sql.Tx, c types.Update) (int64, error) {
	meta, err := b.getTable(ctx, tx, c.Table)
	if err != nil {
		return 0, err
	}
	return b.rewriteFiles(ctx, tx, meta,
		func(r types.Row) bool { return r.Int == c.WhereInt },
		func(r types.Row) (types.Row, bool) {
			if r.Int == c.WhereInt {
				r.Str = c.SetStr
			}
			return r, true
		})
}

func (b *Backend) execDelete(ctx context.Context, tx *sql.Tx, c types.Delete) (int64, error) {
	meta, err := b.getTable(ctx, tx, c.Table)
	if err != nil {
		return 0, err
	}
	return b.rewriteFiles(ctx, tx, meta,
		func(r types.Row) bool { return r.Int == c.WhereInt },
		func(r types.Row) (types.Row, bool) { return r, r.Int != c.WhereInt })
}

func (b *Backend) execMerge(ctx context.Context, tx *sql.Tx, c types.Merge) (int64, error) {
	switch c.Action {
	case types.MergeInsert:
		return b.execInsert(ctx, tx, types.Insert{Table: c.Table, Rows: []types.Row{c.Row}})
	case types.MergeUpdate:
		return b.execUpdate(ctx, tx, types.Update{Table: c.Table, SetStr: c.Row.Str, WhereInt: c.Key})
	case types.MergeDelete:
		return b.execDelete(ctx, tx, types.Delete{Table: c.Table, WhereInt: c.Key})
	default:
		return 0, fmt.Errorf("%w: merge action %q", types.ErrUnknownCommand, c.Action)
	}
}

// execOptimize folds every active file into one file per partition. The
// superseded objects stay in storage: compaction writes new files before
// any old file is removed, and removal is a separate concern this
// binding never performs.
func (b *Backend) execOptimize(ctx context.Context, tx *sql.Tx, c types.Optimize) (int64, error) {
	meta, err := b.getTable(ctx, tx, c.Table)
	if err != nil {
		return 0, err
	}

	files, err := b.activeFiles(ctx, tx, meta.id)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, nil
	}

	var all []types.Row
	for _, f := range files {
		all = append(all, f.rows...)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE files SET active = 0 WHERE table_id = ? AND active = 1", meta.id); err != nil {
		return 0, fmt.Errorf("retiring files: %w", err)
	}
	if err := b.writeDataFiles(ctx, tx, meta, all); err != nil {
		return 0, err
	}
	return 0, nil
}

// execDropTable removes every object under the table's location prefix
// along with all engine state. Storage under the prefix stays empty no
// matter how often the location is listed afterwards.
func (b *Backend) execDropTable(ctx context.Context, tx *sql.Tx, c types.DropTable) (int64, error) {
	meta, err := b.getTable(ctx, tx, c.Table)
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM objects WHERE bucket = ? AND substr(key, 1, ?) = ?",
		meta.bucket, len(meta.key), meta.key); err != nil {
		return 0, fmt.Errorf("deleting objects: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM files WHERE table_id = ?", meta.id); err != nil {
		return 0, fmt.Errorf("deleting file records: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM tables WHERE table_id = ?", meta.id); err != nil {
		return 0, fmt.Errorf("deleting table: %w", err)
	}
	return 0, nil
}

// Query runs a read-only command against a table.
func (b *Backend) Query(ctx context.Context, q types.Query) ([]types.Row, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}

	meta, err := b.getTable(ctx, b.db, q.Table)
	if err != nil {
		return nil, err
	}
	files, err := b.activeFiles(ctx, b.db, meta.id)
	if err != nil {
		return nil, err
	}

	switch q.Select {
	case types.SelectPaths:
		out := make([]types.Row, 0, len(files))
		for _, f := range files {
			out = append(out, types.Row{Str: string(qualify(meta.bucket, f.key))})
		}
		return out, nil
	default:
		var out []types.Row
		for _, f := range files {
			out = append(out, f.rows...)
		}
		return out, nil
	}
}

// Describe returns a textual description of a table or schema holding
// exactly one location assignment, with the location byte-for-byte as
// configured.
func (b *Backend) Describe(ctx context.Context, ref types.ObjectRef) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return "", types.ErrDetached
	}

	if ref.Kind == types.ObjectSchema {
		var location string
		err := b.db.QueryRowContext(ctx,
			"SELECT location FROM schemas WHERE name = ?", ref.Schema).Scan(&location)
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("%w: %s", types.ErrSchemaNotFound, ref.Schema)
		}
		if err != nil {
			return "", fmt.Errorf("describing schema: %w", err)
		}
		return fmt.Sprintf("CREATE SCHEMA %s\nWITH (\n   location = '%s'\n)", ref.Schema, location), nil
	}

	meta, err := b.getTable(ctx, b.db, types.TableRef{Schema: ref.Schema, Name: ref.Table})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "CREATE TABLE %s (\n   col_str varchar,\n   col_int bigint\n)\nWITH (\n   format = 'JSON',\n   location = '%s'", meta.ref, meta.location)
	if meta.partitioned {
		sb.WriteString(",\n   partitioned_by = ARRAY['col_str']")
	}
	sb.WriteString("\n)")
	return sb.String(), nil
}

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// getTable loads a table's metadata, or ErrTableNotFound.
func (b *Backend) getTable(ctx context.Context, q querier, ref types.TableRef) (tableMeta, error) {
	var (
		meta        tableMeta
		location    string
		partitioned int
	)
	err := q.QueryRowContext(ctx,
		"SELECT table_id, location, partitioned FROM tables WHERE schema_name = ? AND name = ?",
		ref.Schema, ref.Name).Scan(&meta.id, &location, &partitioned)
	if err == sql.ErrNoRows {
		return tableMeta{}, fmt.Errorf("%w: %s", types.ErrTableNotFound, ref)
	}
	if err != nil {
		return tableMeta{}, fmt.Errorf("loading table %s: %w", ref, err)
	}
	meta.ref = ref
	meta.location = types.Location(location)
	meta.partitioned = partitioned != 0
	meta.bucket, meta.key, err = harness.SplitLocation(meta.location)
	if err != nil {
		return tableMeta{}, err
	}
	return meta, nil
}

// dataFile is one active data file and its rows.
type dataFile struct {
	id   string
	key  string
	rows []types.Row
}

// activeFiles loads the table's active data files.
func (b *Backend) activeFiles(ctx context.Context, q querier, tableID string) ([]dataFile, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT file_id, key, rows_json FROM files WHERE table_id = ? AND active = 1 ORDER BY key",
		tableID)
	if err != nil {
		return nil, fmt.Errorf("loading files: %w", err)
	}
	defer rows.Close()

	var out []dataFile
	for rows.Next() {
		var (
			f        dataFile
			rowsJSON string
		)
		if err := rows.Scan(&f.id, &f.key, &rowsJSON); err != nil {
			return nil, fmt.Errorf("scanning file: %w", err)
		}
		if err := json.Unmarshal([]byte(rowsJSON), &f.rows); err != nil {
			return nil, fmt.Errorf("decoding file rows: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// writeDataFiles writes one new active data file per partition group of
// rows. Unpartitioned tables get a single group. Empty groups write
// nothing.
func (b *Backend) writeDataFiles(ctx context.Context, tx *sql.Tx, meta tableMeta, rows []types.Row) error {
	if len(rows) == 0 {
		return nil
	}

	groups := map[string][]types.Row{}
	for _, r := range rows {
		dir := meta.partitionDir(r.Str)
		groups[dir] = append(groups[dir], r)
	}
	dirs := make([]string, 0, len(groups))
	for dir := range groups {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	for _, dir := range dirs {
		body, err := json.Marshal(groups[dir])
		if err != nil {
			return fmt.Errorf("encoding rows: %w", err)
		}
		key := meta.dataPrefix() + dir + newID() + ".json"
		fileID := newID()
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO files (file_id, table_id, key, active, rows_json) VALUES (?, ?, ?, 1, ?)",
			fileID, meta.id, key, string(body)); err != nil {
			return fmt.Errorf("recording file: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO objects (bucket, key, body) VALUES (?, ?, ?)",
			meta.bucket, key, body); err != nil {
			return fmt.Errorf("writing file object: %w", err)
		}
	}
	return nil
}

// rewriteFiles applies a copy-on-write rewrite to every active file
// containing a matched row: the file's surviving rows are rewritten into
// fresh files (regrouped by partition, since a rewrite can move a row
// across partitions) and the superseded object is removed. Files without
// matches are untouched. Returns the number of matched rows.
func (b *Backend) rewriteFiles(ctx context.Context, tx *sql.Tx, meta tableMeta, match func(types.Row) bool, keep func(types.Row) (types.Row, bool)) (int64, error) {
	files, err := b.activeFiles(ctx, tx, meta.id)
	if err != nil {
		return 0, err
	}

	var matched int64
	for _, f := range files {
		hits := 0
		for _, r := range f.rows {
			if match(r) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		matched += int64(hits)

		var survivors []types.Row
		for _, r := range f.rows {
			if out, ok := keep(r); ok {
				survivors = append(survivors, out)
			}
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE files SET active = 0 WHERE file_id = ?", f.id); err != nil {
			return 0, fmt.Errorf("retiring file: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM objects WHERE bucket = ? AND key = ?", meta.bucket, f.key); err != nil {
			return 0, fmt.Errorf("removing superseded object: %w", err)
		}
		if err := b.writeDataFiles(ctx, tx, meta, survivors); err != nil {
			return 0, err
		}
	}
	return matched, nil
}
