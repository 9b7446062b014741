package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/fieldmon/internal/errors"
)

func TestResult(t *testing.T) {
	ok := OK([]int{1, 2})
	assert.True(t, ok.IsSuccess())
	assert.Equal(t, []int{1, 2}, ok.Data)
	assert.NoError(t, ok.Err(errors.ErrDevice))

	bad := Fail[int](CodeNotFound, "Device %d not found", 9)
	assert.False(t, bad.IsSuccess())
	assert.Equal(t, "Device 9 not found", bad.Message)

	err := bad.Err(errors.ErrDevice)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrDevice))
	assert.Contains(t, err.Error(), "(code 404)")

	assert.True(t, Done().IsSuccess())

	carried := failAs[string](bad)
	assert.Equal(t, CodeNotFound, carried.Code)
	assert.Equal(t, bad.Message, carried.Message)
}
