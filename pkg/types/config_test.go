package types

import (
	"errors"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty bucket returns ErrBucketEmpty",
			config:  Config{Bucket: ""},
			wantErr: ErrBucketEmpty,
		},
		{
			name:    "bucket with slash returns ErrBucketInvalid",
			config:  Config{Bucket: "my/bucket"},
			wantErr: ErrBucketInvalid,
		},
		{
			name:    "negative timeout returns ErrTimeoutNegative",
			config:  Config{Bucket: "b", ScenarioTimeout: -time.Second},
			wantErr: ErrTimeoutNegative,
		},
		{
			name:    "negative parallelism returns ErrParallelismInvalid",
			config:  Config{Bucket: "b", Parallelism: -1},
			wantErr: ErrParallelismInvalid,
		},
		{
			name:    "zero timeout and parallelism are valid",
			config:  Config{Bucket: "b"},
			wantErr: nil,
		},
		{
			name: "fully specified config is valid",
			config: Config{
				Bucket:          "lakecheck-test",
				SchemaName:      "test_schema",
				DataDir:         "/tmp/lakecheck",
				ScenarioTimeout: time.Minute,
				Parallelism:     8,
			},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}
