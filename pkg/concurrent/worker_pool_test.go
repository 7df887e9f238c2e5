package concurrent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	testCases := []struct {
		name       string
		numWorkers int
		jobs       []int
	}{
		{name: "empty", numWorkers: 4, jobs: []int{}},
		{name: "single worker", numWorkers: 1, jobs: []int{1, 2, 3}},
		{name: "more jobs than workers", numWorkers: 3, jobs: []int{5, 4, 3, 2, 1, 0, 9, 8, 7, 6}},
		{name: "zero workers falls back to one", numWorkers: 0, jobs: []int{2, 4}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Map(tc.numWorkers, tc.jobs, func(x int) int { return x * x })
			want := make([]int, len(tc.jobs))
			for i, x := range tc.jobs {
				want[i] = x * x
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestChunk(t *testing.T) {
	testCases := []struct {
		name  string
		items []int
		size  int
		want  [][]int
	}{
		{name: "exact", items: []int{1, 2, 3, 4}, size: 2, want: [][]int{{1, 2}, {3, 4}}},
		{name: "remainder", items: []int{1, 2, 3}, size: 2, want: [][]int{{1, 2}, {3}}},
		{name: "empty", items: []int{}, size: 3, want: [][]int{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Chunk(tc.items, tc.size))
		})
	}
}
