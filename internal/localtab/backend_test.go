package localtab

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/lakecheck/pkg/types"
)

// setupBackend creates a backend attached to an isolated temp directory.
func setupBackend(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Bucket: "bkt", DataDir: t.TempDir()}))
	t.Cleanup(func() { b.Detach() })
	return b
}

// mustExec runs a command and checks the reported row count.
func mustExec(t *testing.T, b *Backend, cmd types.Command, want int64) {
	t.Helper()
	got, err := b.Execute(context.Background(), cmd)
	require.NoError(t, err)
	require.Equal(t, want, got, "affected rows for %T", cmd)
}

func TestAttachDetachLifecycle(t *testing.T) {
	b := NewBackend()
	cfg := types.Config{Bucket: "bkt", DataDir: t.TempDir()}

	require.NoError(t, b.Attach(cfg))
	assert.ErrorIs(t, b.Attach(cfg), types.ErrAlreadyAttached)

	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach(), "detach must be idempotent")

	ctx := context.Background()
	_, err := b.Execute(ctx, types.CreateSchema{Name: "s"})
	assert.ErrorIs(t, err, types.ErrDetached)
	_, err = b.Query(ctx, types.Query{Table: types.TableRef{Schema: "s", Name: "t"}})
	assert.ErrorIs(t, err, types.ErrDetached)
	_, err = b.Describe(ctx, types.DescribeSchema("s"))
	assert.ErrorIs(t, err, types.ErrDetached)
	_, err = b.List(ctx, "bkt", "")
	assert.ErrorIs(t, err, types.ErrDetached)

	// A detached backend can attach again.
	require.NoError(t, b.Attach(cfg))
	require.NoError(t, b.Detach())
}

func TestAttachRejectsInvalidConfig(t *testing.T) {
	b := NewBackend()
	assert.ErrorIs(t, b.Attach(types.Config{}), types.ErrBucketEmpty)
}

func TestAttachWithoutDataDir(t *testing.T) {
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Bucket: "bkt"}))

	dir := b.tempDir
	require.NotEmpty(t, dir)
	_, err := os.Stat(dir)
	require.NoError(t, err)

	require.NoError(t, b.Detach())
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "self-created data dir must be removed on detach")
}

func TestListPrefixIsByteExact(t *testing.T) {
	b := setupBackend(t)
	ctx := context.Background()

	mustExec(t, b, types.CreateSchema{Name: "sch"}, 0)
	table := types.TableRef{Schema: "sch", Name: "t1"}
	mustExec(t, b, types.CreateTable{
		Table:    table,
		Location: "s3://bkt/sch/a%percent/t1",
		Rows:     []types.Row{{Str: "x", Int: 1}},
	}, 1)

	exact, err := b.List(ctx, "bkt", "sch/a%percent/t1")
	require.NoError(t, err)
	assert.NotEmpty(t, exact)
	for _, loc := range exact {
		assert.Contains(t, string(loc), "s3://bkt/sch/a%percent/t1")
	}

	// A percent sign in the prefix is an ordinary byte, never a
	// wildcard: a prefix that would match under LIKE semantics must
	// return nothing.
	wild, err := b.List(ctx, "bkt", "sch/a%nt/t1")
	require.NoError(t, err)
	assert.Empty(t, wild)

	// Same for underscore.
	underscore, err := b.List(ctx, "bkt", "sch/a_percent/t1")
	require.NoError(t, err)
	assert.Empty(t, underscore)

	// Listing a different bucket finds nothing, without error.
	other, err := b.List(ctx, "other-bucket", "sch/a%percent/t1")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestListEmptyPrefixReturnsBucket(t *testing.T) {
	b := setupBackend(t)

	mustExec(t, b, types.CreateSchema{Name: "sch"}, 0)
	mustExec(t, b, types.CreateTable{
		Table:    types.TableRef{Schema: "sch", Name: "t"},
		Location: "s3://bkt/sch/regular/t",
		Rows:     []types.Row{{Str: "x", Int: 1}},
	}, 1)

	all, err := b.List(context.Background(), "bkt", "")
	require.NoError(t, err)
	// One metadata manifest and one data file.
	assert.Len(t, all, 2)
}
