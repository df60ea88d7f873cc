package collection_test

import (
	"testing"

	"github.com/shashiranjanraj/dukaan/pkg/collection"
	"github.com/stretchr/testify/assert"
)

func TestGroupBy(t *testing.T) {
	type item struct {
		Category string
		Qty      int
	}
	items := []item{
		{"grocery", 5}, {"pharmacy", 0}, {"grocery", 12},
	}

	grouped := collection.GroupBy(items, func(i item) string { return i.Category })
	assert.Len(t, grouped, 2)
	assert.Len(t, grouped["grocery"], 2)
	assert.Len(t, grouped["pharmacy"], 1)
}

func TestKeysSorted(t *testing.T) {
	m := map[string]int{"stationery": 1, "grocery": 2, "pharmacy": 3}
	assert.Equal(t, []string{"grocery", "pharmacy", "stationery"}, collection.Keys(m))
}

func TestFilterAndMapCompose(t *testing.T) {
	nums := []int{0, 3, 10, 25}
	positive := collection.Filter(nums, func(n int) bool { return n > 0 })
	doubled := collection.Map(positive, func(n int) int { return n * 2 })
	assert.Equal(t, []int{6, 20, 50}, doubled)
}

func TestReduce(t *testing.T) {
	total := collection.Reduce([]int{1, 2, 3, 4}, 0, func(acc, n int) int { return acc + n })
	assert.Equal(t, 10, total)
}
