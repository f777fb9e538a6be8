package algos

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapRange(t *testing.T) {
	assert.Equal(t, []string{"w0", "w1", "w2"}, MapRange(0, 3, func(i int) string {
		return fmt.Sprintf("w%d", i)
	}))
	assert.Empty(t, MapRange(5, 5, func(i int) int { return i }))
}

func TestMax(t *testing.T) {
	assert.Equal(t, 5, Max(5))
	assert.Equal(t, 7, Max(5, 7, 2))
	assert.Equal(t, "c", Max("a", "c", "b"))
}

func TestSearch(t *testing.T) {
	slice := []int{3, 7, 11}
	assert.Equal(t, 0, Search(slice, 2))
	assert.Equal(t, 0, Search(slice, 3))
	assert.Equal(t, 1, Search(slice, 4))
	assert.Equal(t, 1, Search(slice, 7))
	assert.Equal(t, 2, Search(slice, 9))
	assert.Equal(t, 3, Search(slice, 12))
	assert.Equal(t, 0, Search(nil, 1))
}
