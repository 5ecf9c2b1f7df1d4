package lakecheck

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/lakecheck/pkg/types"
)

func TestMatrixSizes(t *testing.T) {
	assert.Len(t, Patterns(), 6)
	assert.Len(t, Scenarios(), 12)
	assert.Len(t, AllScenarios(), 36)
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	_, err := Run(context.Background(), types.Config{}, nil, nil, nil, nil)
	assert.ErrorIs(t, err, types.ErrBucketEmpty)
}

func TestRunLocalRejectsInvalidConfig(t *testing.T) {
	_, err := RunLocal(context.Background(), types.Config{Bucket: "a/b"}, nil, nil)
	assert.ErrorIs(t, err, types.ErrBucketInvalid)
}
