package partition

import (
	"strconv"
	"testing"
)

func TestFor_Determinism(t *testing.T) {
	id := For("resource-abc", 8)
	for i := 0; i < 100; i++ {
		if got := For("resource-abc", 8); got != id {
			t.Fatalf("For(\"resource-abc\", 8) = %d on iteration %d, want %d", got, i, id)
		}
	}
}

func TestFor_Range(t *testing.T) {
	inputs := []string{"", "a", "res-1", "res-2", "very-long-resource-id-that-should-still-hash-correctly"}
	for _, count := range []int{1, 2, 7, 64} {
		for _, s := range inputs {
			p := For(s, count)
			if p < 0 || p >= count {
				t.Errorf("For(%q, %d) = %d, want [0, %d)", s, count, p, count)
			}
		}
	}
}

func TestFor_SingleShard(t *testing.T) {
	for _, count := range []int{-1, 0, 1} {
		if got := For("anything", count); got != 0 {
			t.Errorf("For(_, %d) = %d, want 0", count, got)
		}
	}
}

func TestFor_Distribution(t *testing.T) {
	// 1 000 keys over 16 shards should touch every shard.
	seen := make(map[int]struct{})
	for i := 0; i < 1000; i++ {
		seen[For("res-"+strconv.Itoa(i), 16)] = struct{}{}
	}
	if len(seen) != 16 {
		t.Errorf("only %d distinct shards from 1000 inputs, want 16", len(seen))
	}
}
