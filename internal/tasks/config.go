package tasks

import "time"

// Config holds worker settings for the repair queue.
type Config struct {
	// Workers is the number of concurrent workers. Default: 1
	Workers int

	// ReleaseAfter is when a stuck task is released back to the queue. Default: 5m
	ReleaseAfter time.Duration

	// CleanupInterval is how often completed tasks are purged. Default: 1h
	CleanupInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		Workers:         1,
		ReleaseAfter:    5 * time.Minute,
		CleanupInterval: time.Hour,
	}
}
