package partition

import "hash/fnv"

// For returns the shard in [0, count) that owns key.
// Stable and deterministic: the same key always maps to the same shard, so
// records sharing a key are handled by one worker in arrival order.
func For(key string, count int) int {
	if count <= 1 {
		return 0
	}
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(count))
}
