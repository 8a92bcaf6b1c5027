package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChoiceFlag(t *testing.T) {
	f := newChoiceFlag("intent", "catch_up", "get_ahead")

	require.NoError(t, f.Set(" Get-Ahead "))
	assert.Equal(t, "get_ahead", f.String())
	assert.Equal(t, "intent", f.Type())

	err := f.Set("sideways")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catch_up, get_ahead")
	assert.Equal(t, "get_ahead", f.String(), "a rejected value leaves the flag unchanged")
}
