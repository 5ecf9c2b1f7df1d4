package types

import (
	"testing"
)

func TestLocationPatternFormat(t *testing.T) {
	tests := []struct {
		name    string
		pattern LocationPattern
		leaf    string
		want    Location
	}{
		{
			name:    "plain pattern",
			pattern: LocationPattern{Name: "regular", Template: "s3://%s/%s/regular/%s"},
			leaf:    "tbl",
			want:    "s3://bkt/sch/regular/tbl",
		},
		{
			name:    "percent literal survives formatting",
			pattern: LocationPattern{Name: "percent", Template: "s3://%s/%s/a%%percent/%s"},
			leaf:    "tbl",
			want:    "s3://bkt/sch/a%percent/tbl",
		},
		{
			name:    "trailing whitespace survives formatting",
			pattern: LocationPattern{Name: "trailing_whitespace", Template: "s3://%s/%s/tw/%s "},
			leaf:    "tbl",
			want:    "s3://bkt/sch/tw/tbl ",
		},
		{
			name:    "slot content is inserted verbatim",
			pattern: LocationPattern{Name: "regular", Template: "s3://%s/%s/regular/%s"},
			leaf:    "a b%c",
			want:    "s3://bkt/sch/regular/a b%c",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pattern.Format("bkt", "sch", tt.leaf); got != tt.want {
				t.Errorf("Format = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScenarioName(t *testing.T) {
	sc := Scenario{
		Pattern:     LocationPattern{Name: "double_slash", Template: "s3://%s/%s//ds/%s"},
		Partitioned: true,
		Lifecycle:   LifecycleTable,
	}
	if got := sc.Name(); got != "table/double_slash/partitioned" {
		t.Errorf("Name = %q, want table/double_slash/partitioned", got)
	}

	sc.Partitioned = false
	sc.Lifecycle = LifecycleCompaction
	if got := sc.Name(); got != "compaction/double_slash/unpartitioned" {
		t.Errorf("Name = %q, want compaction/double_slash/unpartitioned", got)
	}
}

func TestLifecycleRecordCheckpoints(t *testing.T) {
	rec := &LifecycleRecord{}
	if got := rec.LastCheckpoint(); got != "" {
		t.Errorf("LastCheckpoint on empty record = %q, want empty", got)
	}
	if _, ok := rec.Checkpoint(CheckpointAfterCreate); ok {
		t.Error("Checkpoint lookup on empty record succeeded")
	}

	files := NewFileSet("s3://b/k/data/1.json")
	rec.Record(CheckpointAfterCreate, files)
	rec.Record(CheckpointAfterMutations, NewFileSet("s3://b/k/data/2.json"))

	if got := rec.LastCheckpoint(); got != CheckpointAfterMutations {
		t.Errorf("LastCheckpoint = %q, want %q", got, CheckpointAfterMutations)
	}
	created, ok := rec.Checkpoint(CheckpointAfterCreate)
	if !ok {
		t.Fatal("Checkpoint after-create not found")
	}
	if !created.Equal(files) {
		t.Errorf("Checkpoint after-create = %v, want %v", created.Locations(), files.Locations())
	}

	// The recorded snapshot must not alias the caller's set.
	files.Add("s3://b/k/data/3.json")
	created, _ = rec.Checkpoint(CheckpointAfterCreate)
	if created.Len() != 1 {
		t.Errorf("recorded checkpoint grew to %d after mutating the source set", created.Len())
	}
}
