package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken(24)
	require.NoError(t, err)
	assert.Len(t, a, 48) // hex doubles the byte count

	b, err := GenerateToken(24)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestRandStrLength(t *testing.T) {
	assert.Len(t, RandStr(10), 10)
	assert.NotEqual(t, RandStr(10), RandStr(10))
}
