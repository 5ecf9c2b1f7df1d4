package types

import "context"

// Row is one logical table row. Every table the harness drives has the
// same two-column shape; partitioned tables partition by Str.
type Row struct {
	Str string `json:"col_str"`
	Int int64  `json:"col_int"`
}

// TableRef names a table within a schema.
type TableRef struct {
	Schema string `json:"schema"`
	Name   string `json:"name"`
}

// String returns the qualified table name.
func (t TableRef) String() string {
	return t.Schema + "." + t.Name
}

// ObjectKind selects the target of a Describe call.
type ObjectKind string

const (
	ObjectTable  ObjectKind = "table"
	ObjectSchema ObjectKind = "schema"
)

// ObjectRef names a table or schema for Describe.
type ObjectRef struct {
	Kind   ObjectKind
	Schema string
	Table  string
}

// DescribeTable builds an ObjectRef for a table.
func DescribeTable(t TableRef) ObjectRef {
	return ObjectRef{Kind: ObjectTable, Schema: t.Schema, Table: t.Name}
}

// DescribeSchema builds an ObjectRef for a schema.
func DescribeSchema(name string) ObjectRef {
	return ObjectRef{Kind: ObjectSchema, Schema: name}
}

// Command is a mutating lifecycle command. Commands are typed values so
// the harness stays agnostic to any engine's grammar; bindings translate
// them into whatever syntax their engine speaks.
type Command interface {
	command()
}

// CreateSchema creates a schema. An empty Location lets the engine pick
// its default location for the schema.
type CreateSchema struct {
	Name     string
	Location Location
}

// CreateTable creates a table, optionally populated with initial rows
// (the CREATE ... AS VALUES flow). An empty Location lets the engine
// derive the table location from its schema, with a generated suffix.
type CreateTable struct {
	Table       TableRef
	Location    Location
	Partitioned bool
	Rows        []Row
}

// Insert appends rows to a table.
type Insert struct {
	Table TableRef
	Rows  []Row
}

// Update sets Str on every row whose Int equals WhereInt.
type Update struct {
	Table    TableRef
	SetStr   string
	WhereInt int64
}

// Delete removes every row whose Int equals WhereInt.
type Delete struct {
	Table    TableRef
	WhereInt int64
}

// MergeAction selects which arm of a merge fires.
type MergeAction string

const (
	// MergeInsert matches nothing and inserts Row.
	MergeInsert MergeAction = "insert"

	// MergeUpdate matches rows with Int == Key and sets their Str to
	// Row.Str.
	MergeUpdate MergeAction = "update"

	// MergeDelete matches rows with Int == Key and removes them.
	MergeDelete MergeAction = "delete"
)

// Merge is a conditional insert-or-update-or-delete against existing
// rows, one arm per command.
type Merge struct {
	Table  TableRef
	Action MergeAction
	Key    int64
	Row    Row
}

// Optimize compacts a table's data files without changing its logical
// contents.
type Optimize struct {
	Table TableRef
}

// DropTable removes a table and every object under its location.
type DropTable struct {
	Table TableRef
}

// DropSchema removes an empty schema.
type DropSchema struct {
	Name string
}

func (CreateSchema) command() {}
func (CreateTable) command()  {}
func (Insert) command()       {}
func (Update) command()       {}
func (Delete) command()       {}
func (Merge) command()        {}
func (Optimize) command()     {}
func (DropTable) command()    {}
func (DropSchema) command()   {}

// Selection picks what a Query returns.
type Selection string

const (
	// SelectRows returns the table's visible rows.
	SelectRows Selection = "rows"

	// SelectPaths returns one Row per active data file with the file's
	// location in Str. This is the engine's view of the current
	// snapshot, as opposed to a storage listing.
	SelectPaths Selection = "paths"
)

// Query is a read-only command.
type Query struct {
	Table  TableRef
	Select Selection
}

// Executor is the contract the harness requires from the table system
// under test. Implementations reject commands with an error; the harness
// never retries.
type Executor interface {
	// Execute runs a mutating command and returns the number of rows
	// affected where applicable (zero otherwise).
	Execute(ctx context.Context, cmd Command) (int64, error)

	// Query runs a read-only command.
	Query(ctx context.Context, q Query) ([]Row, error)

	// Describe returns a textual description of a table or schema from
	// which its configured location can be extracted.
	Describe(ctx context.Context, ref ObjectRef) (string, error)
}

// ObjectLister is the contract the harness requires from the object
// store. List returns every stored object whose key starts byte-for-byte
// with keyPrefix, each re-qualified into a full location string with the
// bucket the caller supplied. No objects is an empty slice, not an
// error; implementations must exhaust pagination before returning.
type ObjectLister interface {
	List(ctx context.Context, bucket, keyPrefix string) ([]Location, error)
}
