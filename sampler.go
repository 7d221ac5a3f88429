package lumen

import (
	"fmt"
	"time"
)

// Stats reports wall-clock timing for repeated runs of an operation.
// All durations are in milliseconds.
type Stats struct {
	// Iterations is the number of runs measured.
	Iterations int

	// Times holds the per-run durations in run order.
	Times []float64

	// Average is the mean of Times.
	Average float64

	// Min and Max are the fastest and slowest runs.
	Min float64
	Max float64

	// FPS is the frame rate implied by the average: 1000/Average.
	FPS float64

	// Consistency scores timing stability as a percentage:
	// (1 - (Max-Min)/Average) * 100. A tight spread scores near 100.
	// The value is not clamped: spread larger than the average yields
	// a negative score, which is a legitimate variance signal rather
	// than an error.
	Consistency float64
}

// String formats the headline numbers for log lines and demo output.
func (s Stats) String() string {
	return fmt.Sprintf("%d runs: avg %.3f ms (%.1f fps), min %.3f, max %.3f, consistency %.1f%%",
		s.Iterations, s.Average, s.FPS, s.Min, s.Max, s.Consistency)
}

// Measure runs op the given number of times sequentially and reports
// timing statistics. It fails if iterations is less than 1.
//
// Runs are strictly sequential with no warm-up, retry, or parallelism;
// each run's duration is recorded as observed. An error returned by op
// aborts the measurement and propagates to the caller unmodified.
func Measure(op func() error, iterations int) (Stats, error) {
	if iterations < 1 {
		return Stats{}, fmt.Errorf("%w: iterations %d, need at least 1",
			ErrInvalidArgument, iterations)
	}

	times := make([]float64, 0, iterations)
	for i := 0; i < iterations; i++ {
		start := time.Now()
		if err := op(); err != nil {
			return Stats{}, err
		}
		times = append(times, time.Since(start).Seconds()*1000)
	}

	stats := Stats{
		Iterations: iterations,
		Times:      times,
		Min:        times[0],
		Max:        times[0],
	}
	var sum float64
	for _, t := range times {
		sum += t
		if t < stats.Min {
			stats.Min = t
		}
		if t > stats.Max {
			stats.Max = t
		}
	}
	stats.Average = sum / float64(iterations)
	stats.FPS = 1000 / stats.Average
	stats.Consistency = (1 - (stats.Max-stats.Min)/stats.Average) * 100
	return stats, nil
}
