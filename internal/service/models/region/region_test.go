package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllIsOrderedAndComplete(t *testing.T) {
	all := All()
	require.Len(t, all, Count)
	for i, r := range all {
		assert.Equal(t, i+1, r.ID)
		assert.NotEmpty(t, r.Name)
	}
}

func TestLookup(t *testing.T) {
	r, ok := Lookup(16)
	require.True(t, ok)
	assert.Equal(t, "Alger", r.Name)

	_, ok = Lookup(0)
	assert.False(t, ok)
	_, ok = Lookup(Count + 1)
	assert.False(t, ok)
}

func TestAllReturnsCopy(t *testing.T) {
	all := All()
	all[0].Name = "changed"
	r, _ := Lookup(1)
	assert.Equal(t, "Adrar", r.Name)
}
