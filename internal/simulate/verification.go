package simulate

import "log"

// verifyReport checks every report entry against the answers the
// simulator delivered and returns the number of mismatches.
func verifyReport(sessionID string, rep *report, answers map[string]string, verbose bool) int {
	mismatched := 0

	for i, entry := range rep.Entries {
		want, ok := answers[entry.Question]
		if !ok {
			mismatched++
			log.Printf("report %s entry %d scores a question that was never asked: %q",
				sessionID, i, entry.Question)
			continue
		}
		if entry.Response != want {
			mismatched++
			log.Printf("report %s entry %d response mismatch: got %q want %q",
				sessionID, i, entry.Response, want)
			continue
		}
		if entry.FillerPercentage < 0 || entry.FillerPercentage > PercentageMultiplier {
			mismatched++
			log.Printf("report %s entry %d filler percentage out of range: %.2f",
				sessionID, i, entry.FillerPercentage)
			continue
		}
		if entry.Feedback == "" {
			mismatched++
			log.Printf("report %s entry %d has empty feedback", sessionID, i)
			continue
		}

		if verbose {
			log.Printf("report %s entry %d verified: relevance=%s sentiment=%s filler=%.2f%%",
				sessionID, i, entry.Relevance, entry.Sentiment, entry.FillerPercentage)
		}
	}

	return mismatched
}
