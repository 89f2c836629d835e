package rng

// Sample is the outcome of PickMany. Satisfied reports whether the requested
// number of distinct items was reached; when the pool holds fewer distinct
// values than requested, Items holds all of them and Satisfied is false.
type Sample[T comparable] struct {
	Items     []T
	Requested int
	Satisfied bool
}

// Pick returns one element of items chosen by src.
func Pick[T any](src *Source, items []T) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, ErrEmptyPool
	}
	return items[src.Intn(len(items))], nil
}

// PickMany draws up to n distinct values from items without replacement.
func PickMany[T comparable](src *Source, items []T, n int) Sample[T] {
	sample := Sample[T]{Requested: n}
	if n <= 0 {
		sample.Items = []T{}
		sample.Satisfied = true
		return sample
	}

	seen := make(map[T]struct{}, len(items))
	pool := make([]T, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		pool = append(pool, item)
	}

	take := min(n, len(pool))
	// partial Fisher-Yates over the deduplicated pool
	for i := 0; i < take; i++ {
		j := i + src.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	sample.Items = pool[:take]
	sample.Satisfied = take == n
	return sample
}

// Shuffle returns a shuffled copy of items; the input is left untouched.
func Shuffle[T any](src *Source, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
