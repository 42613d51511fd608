package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON_ValueIsText(t *testing.T) {
	v, err := JSON(`{"atm":50000}`).Value()
	require.NoError(t, err)
	assert.Equal(t, `{"atm":50000}`, v)

	v, err = JSON(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}
