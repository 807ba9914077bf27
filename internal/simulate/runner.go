package simulate

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aceai/aceai/pkg/logger"
)

// Canned answers cycled per turn. Each one is distinct so report
// verification can match responses back to turns.
var cannedAnswers = []string{
	"Goroutines are multiplexed onto a small pool of operating system threads by the runtime scheduler, which keeps their stacks tiny and context switches cheap.",
	"I prefer channels when transferring ownership of data between stages and mutexes when guarding a small piece of shared state with short critical sections.",
	"Cancellation flows down the call tree through the context, so every blocking call below the handler observes the same deadline and unwinds promptly.",
	"In my last role I led the migration of a monolithic scheduler onto a sharded queue, cutting p99 dispatch latency by roughly half.",
	"I start from the symptoms, form a hypothesis, and confirm it against traces and metrics before touching any code.",
}

// Run executes the complete interview simulation.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting interview simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("interviews", config.Interviews),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check gateway health
	if err := checkGatewayHealth(ctx, config); err != nil {
		return fmt.Errorf("gateway health check failed: %w", err)
	}

	// Step 2: Run interviews concurrently
	if err := runInterviews(ctx, config, stats); err != nil {
		return fmt.Errorf("interview run failed: %w", err)
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	if stats.InterviewsFailed > 0 || stats.EntriesMismatched > 0 {
		return fmt.Errorf("simulation finished with %d failed interviews and %d mismatched entries",
			stats.InterviewsFailed, stats.EntriesMismatched)
	}

	logger.Get().Info(ctx, "simulation completed successfully")
	return nil
}

// checkGatewayHealth verifies the gateway is running.
func checkGatewayHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking gateway health")

	client := newHTTPClient(config.BaseURL, config.Timeout)
	status, err := client.get(ctx, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to gateway: %w", err)
	}

	// Accept any 200 response as healthy (the endpoint returns Prometheus metrics)
	if status != StatusOK {
		return fmt.Errorf("gateway health check failed with status: %d", status)
	}

	logger.Get().Info(ctx, "gateway is healthy")
	return nil
}

// runInterviews drives interviews concurrently using a worker pool.
func runInterviews(ctx context.Context, config *Config, stats *Stats) error {
	log.Printf("Running %d interviews with %d workers...", config.Interviews, config.Workers)

	client := newHTTPClient(config.BaseURL, config.Timeout)

	var (
		started    int64
		completed  int64
		failed     int64
		turns      int64
		scored     int64
		mismatched int64
	)

	jobChan := make(chan int, config.Workers)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for job := range jobChan {
				select {
				case <-ctx.Done():
					return
				default:
				}

				atomic.AddInt64(&started, 1)
				result, err := runSingleInterview(ctx, client, config, job)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					log.Printf("interview %d failed: %v", job, err)
					continue
				}

				atomic.AddInt64(&completed, 1)
				atomic.AddInt64(&turns, int64(result.turnsAnswered))
				atomic.AddInt64(&scored, int64(result.entriesScored))
				atomic.AddInt64(&mismatched, int64(result.entriesMismatched))

				if config.Verbose {
					log.Printf("interview %d done: %d turns, %d scored entries",
						job, result.turnsAnswered, result.entriesScored)
				}
			}
		}()
	}

	go func() {
		defer close(jobChan)
		for i := 0; i < config.Interviews; i++ {
			select {
			case <-ctx.Done():
				return
			case jobChan <- i:
			}
		}
	}()

	wg.Wait()

	stats.InterviewsStarted = int(atomic.LoadInt64(&started))
	stats.InterviewsCompleted = int(atomic.LoadInt64(&completed))
	stats.InterviewsFailed = int(atomic.LoadInt64(&failed))
	stats.TurnsAnswered = int(atomic.LoadInt64(&turns))
	stats.EntriesScored = int(atomic.LoadInt64(&scored))
	stats.EntriesMismatched = int(atomic.LoadInt64(&mismatched))

	log.Printf(`Interview run completed:
   Completed: %d
   Failed: %d
   Turns answered: %d
`, stats.InterviewsCompleted, stats.InterviewsFailed, stats.TurnsAnswered)

	return nil
}

// interviewResult summarizes one interview for the aggregate counters.
type interviewResult struct {
	turnsAnswered     int
	entriesScored     int
	entriesMismatched int
}

// runSingleInterview drives one interview end to end: create, answer
// every question, collect and verify the report, then exit the session.
func runSingleInterview(ctx context.Context, client *HTTPClient, config *Config, job int) (*interviewResult, error) {
	session, err := createWithRetry(ctx, client, fmt.Sprintf("candidate-%03d", job))
	if err != nil {
		return nil, err
	}

	answers := make(map[string]string, len(session.Questions))
	base := "/interviews/" + session.ID

	for turn := range session.Questions {
		if status, err := expectOK(client.postJSON(ctx, base+"/record", nil, nil)); err != nil {
			return nil, fmt.Errorf("record turn %d: status %d: %w", turn, status, err)
		}

		answer := cannedAnswers[turn%len(cannedAnswers)]
		var ack transcriptAck
		if status, err := expectOK(client.postJSON(ctx, base+"/transcript",
			map[string]string{"text": answer}, &ack)); err != nil {
			return nil, fmt.Errorf("transcript turn %d: status %d: %w", turn, status, err)
		}
		if ack.Accepted {
			answers[session.Questions[turn]] = answer
		}

		if status, err := expectOK(client.postJSON(ctx, base+"/advance", nil, nil)); err != nil {
			return nil, fmt.Errorf("advance turn %d: status %d: %w", turn, status, err)
		}
	}

	var st state
	if status, err := expectOK(client.get(ctx, base, &st)); err != nil {
		return nil, fmt.Errorf("state fetch: status %d: %w", status, err)
	}
	if !st.Complete {
		return nil, fmt.Errorf("session not complete after %d turns", len(session.Questions))
	}

	rep, err := awaitReport(ctx, client, base, len(answers))
	if err != nil {
		return nil, err
	}

	mismatched := verifyReport(session.ID, rep, answers, config.Verbose)

	if status, err := client.delete(ctx, base); err != nil || status != StatusNoContent {
		logger.Get().Warn(ctx, "session exit failed",
			logger.String("id", session.ID), logger.Int("status", status))
	}

	return &interviewResult{
		turnsAnswered:     len(answers),
		entriesScored:     len(rep.Entries),
		entriesMismatched: mismatched,
	}, nil
}

// createWithRetry retries interview creation while the gateway's single
// upload slot is busy.
func createWithRetry(ctx context.Context, client *HTTPClient, candidate string) (*created, error) {
	for {
		session, status, err := client.createInterview(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("interview creation failed: %w", err)
		}
		if session != nil {
			return session, nil
		}
		if status != StatusConflict {
			return nil, fmt.Errorf("interview creation rejected with status %d", status)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(BusyRetryDelay):
		}
	}
}

// awaitReport polls the report endpoint until scoring catches up with
// the number of answers delivered, or the poll budget runs out.
func awaitReport(ctx context.Context, client *HTTPClient, base string, want int) (*report, error) {
	deadline := time.Now().Add(ReportPollBudget)

	for {
		var rep report
		if status, err := expectOK(client.get(ctx, base+"/report", &rep)); err != nil {
			return nil, fmt.Errorf("report fetch: status %d: %w", status, err)
		}
		if len(rep.Entries) >= want {
			return &rep, nil
		}
		if time.Now().After(deadline) {
			// Scoring is fire and forget, so a shortfall is reported as a
			// partial result rather than an error.
			log.Printf("report for %s settled at %d/%d entries", base, len(rep.Entries), want)
			return &rep, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(ReportPollInterval):
		}
	}
}

// expectOK normalizes a (status, err) pair into an error unless 200.
func expectOK(status int, err error) (int, error) {
	if err != nil {
		return status, err
	}
	if status != StatusOK {
		return status, fmt.Errorf("unexpected status %d", status)
	}
	return status, nil
}

// displayFinalStats prints the final simulation statistics.
func displayFinalStats(stats *Stats) {
	var successRate, interviewsPerSecond float64

	if stats.InterviewsStarted > 0 {
		successRate = float64(stats.InterviewsCompleted) / float64(stats.InterviewsStarted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		interviewsPerSecond = float64(stats.InterviewsStarted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("interviewsStarted", stats.InterviewsStarted),
		logger.Int("interviewsCompleted", stats.InterviewsCompleted),
		logger.Int("interviewsFailed", stats.InterviewsFailed),
		logger.Int("turnsAnswered", stats.TurnsAnswered),
		logger.Int("entriesScored", stats.EntriesScored),
		logger.Int("entriesMismatched", stats.EntriesMismatched),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("interviewsPerSecond", interviewsPerSecond))
}
