package xslices

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAtAndLast(t *testing.T) {
	s := []int{3, 5, 7}
	assert.Equal(t, 3, At(s, 0))
	assert.Equal(t, 7, At(s, -1))
	assert.Equal(t, 7, Last(s))
}

func TestMap(t *testing.T) {
	assert.Equal(t, []int{2, 4, 6}, Map([]int{1, 2, 3}, func(e int) int { return 2 * e }))
}

func TestProduct(t *testing.T) {
	assert.Equal(t, int64(1), Product[int64](nil))
	assert.Equal(t, int64(24), Product([]int64{2, 3, 4}))
}
