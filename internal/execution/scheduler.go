package execution

import "fxd/internal/dispatch"

// Scheduler distributes cases across workers
type Scheduler interface {
	Schedule(cases []dispatch.Case, workerCount int) [][]dispatch.Case
}

// RoundRobinScheduler distributes cases evenly across workers
type RoundRobinScheduler struct{}

// NewRoundRobinScheduler creates a new RoundRobinScheduler
func NewRoundRobinScheduler() *RoundRobinScheduler {
	return &RoundRobinScheduler{}
}

// Schedule distributes cases evenly across workers using round-robin.
// With one worker the single shard keeps declaration order.
func (s *RoundRobinScheduler) Schedule(cases []dispatch.Case, workerCount int) [][]dispatch.Case {
	if workerCount <= 0 {
		workerCount = 1
	}
	if workerCount > len(cases) && len(cases) > 0 {
		workerCount = len(cases)
	}

	distribution := make([][]dispatch.Case, workerCount)
	for i := range distribution {
		distribution[i] = make([]dispatch.Case, 0)
	}

	for i, c := range cases {
		workerIndex := i % workerCount
		distribution[workerIndex] = append(distribution[workerIndex], c)
	}

	return distribution
}
