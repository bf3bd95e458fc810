package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringSliceValue(t *testing.T) {
	v, err := StringSlice{"a", "b", "c"}.Value()
	require.NoError(t, err)
	assert.Equal(t, "a,b,c", v)

	v, err = StringSlice{}.Value()
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestStringSliceValueRejectsComma(t *testing.T) {
	_, err := StringSlice{"a,b"}.Value()
	assert.Error(t, err)
}

func TestStringSliceScan(t *testing.T) {
	var s StringSlice
	require.NoError(t, s.Scan("x,y"))
	assert.Equal(t, StringSlice{"x", "y"}, s)

	require.NoError(t, s.Scan(""))
	assert.Equal(t, StringSlice{}, s)

	require.NoError(t, s.Scan(nil))
	assert.Equal(t, StringSlice{}, s)

	require.NoError(t, s.Scan([]byte("p,q")))
	assert.Equal(t, StringSlice{"p", "q"}, s)
}
