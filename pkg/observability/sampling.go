package observability

import "hash/fnv"

// BucketCount is the size of the sampling bucket space.
const BucketCount = 10000

// Bucket maps an identifier to a stable bucket in [0, BucketCount).
func Bucket(id string) int {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum64() % BucketCount)
}

// ShouldSample reports whether id falls under rate. A rate of 0 never samples
// and a rate of 1 always does.
func ShouldSample(id string, rate float64) bool {
	return float64(Bucket(id))/BucketCount < rate
}
