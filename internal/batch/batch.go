// Package batch runs a per-item operation over a list with total
// isolation between items: one failure never aborts the rest.
package batch

// Result holds the outcome for a single item.
type Result[T any] struct {
	Item T
	Err  error
}

// BestEffort applies fn to every item sequentially and returns one
// Result per item, in input order. There is no retry and no parallel
// dispatch; total time grows linearly with len(items). Callers with
// large lists should move this behind a background queue.
func BestEffort[T any](items []T, fn func(item T) error) []Result[T] {
	results := make([]Result[T], 0, len(items))
	for _, item := range items {
		results = append(results, Result[T]{Item: item, Err: fn(item)})
	}
	return results
}

// Failed filters results down to the ones that errored.
func Failed[T any](results []Result[T]) []Result[T] {
	var failed []Result[T]
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
