package utils

import (
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Batchify splits a slice into batches of specified size
func Batchify[T any](items []T, batchSize int) [][]T {
	if batchSize <= 0 {
		panic("batch size must be positive")
	}

	batches := make([][]T, 0, (len(items)+batchSize-1)/batchSize)
	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[i:end])
	}
	return batches
}

// BatchProcess processes items in batches with a worker function
func BatchProcess[T any, R any](
	items []T,
	batchSize int,
	worker func(batch []T) ([]R, error),
) ([]R, error) {
	batches := Batchify(items, batchSize)
	results := make([]R, 0, len(items))

	for i, batch := range batches {
		batchResults, err := worker(batch)
		if err != nil {
			return nil, fmt.Errorf("batch %d failed: %w", i, err)
		}
		results = append(results, batchResults...)
	}

	return results, nil
}

// BatchProcessParallel processes items in batches on up to workers goroutines.
// Results keep input order; the first failing batch aborts the rest.
func BatchProcessParallel[T any, R any](
	items []T,
	batchSize int,
	workers int,
	worker func(batch []T) ([]R, error),
) ([]R, error) {
	if workers <= 1 {
		return BatchProcess(items, batchSize, worker)
	}

	batches := Batchify(items, batchSize)
	perBatch := make([][]R, len(batches))

	var eg errgroup.Group
	eg.SetLimit(workers)
	for i, batch := range batches {
		eg.Go(func() error {
			batchResults, err := worker(batch)
			if err != nil {
				return fmt.Errorf("batch %d failed: %w", i, err)
			}
			perBatch[i] = batchResults
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	results := make([]R, 0, len(items))
	for _, r := range perBatch {
		results = append(results, r...)
	}
	return results, nil
}

// ProgressBar reports loop progress through a structured logger
type ProgressBar struct {
	total   int
	current int
	desc    string
	logger  *slog.Logger
	mu      sync.Mutex
}

// NewProgressBar creates a new progress bar. A nil logger uses slog.Default.
func NewProgressBar(total int, desc string, logger *slog.Logger) *ProgressBar {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressBar{
		total:  total,
		desc:   desc,
		logger: logger,
	}
}

// Add advances the bar by n and logs at every 10% step
func (pb *ProgressBar) Add(n int) {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	if pb.total <= 0 || n <= 0 {
		return
	}
	before := pb.current * 10 / pb.total
	pb.current += n
	if pb.current > pb.total {
		pb.current = pb.total
	}
	if after := pb.current * 10 / pb.total; after != before {
		pb.logger.Debug(pb.desc,
			slog.Int("done", pb.current),
			slog.Int("total", pb.total),
		)
	}
}

// Increment advances the bar by one
func (pb *ProgressBar) Increment() {
	pb.Add(1)
}

// Current returns the number of completed units
func (pb *ProgressBar) Current() int {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	return pb.current
}

// Finish completes the progress bar
func (pb *ProgressBar) Finish() {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.current = pb.total
	pb.logger.Debug(pb.desc+" finished", slog.Int("total", pb.total))
}
