package ledger

// Safety-score weights. They sum to 1; the result is clamped to [0,1].
const (
	weightSuccessRate  = 0.35
	weightErrorRate    = 0.20
	weightCorruption   = 0.15
	weightBuildFailure = 0.15
	weightExperience   = 0.10
	weightThroughput   = 0.05

	// experienceCeiling is the run count past which the experience bonus
	// stops growing.
	experienceCeiling = 20
)

// SafetyScore combines historical reliability into a bounded [0,1]
// heuristic. The corruption term is deliberately harsher than the error
// term: its rate is doubled before inversion, capping its contribution
// early.
func (l *Ledger) SafetyScore() float64 {
	m := &l.Metrics

	successRate := 0.0
	if m.TotalRuns > 0 {
		successRate = float64(m.SuccessfulRuns) / float64(m.TotalRuns)
	}

	invError := 1.0
	invCorruption := 1.0
	if m.FilesProcessed > 0 {
		errRate := clamp01(float64(m.ErrorsEncountered) / float64(m.FilesProcessed))
		invError = 1 - errRate
		corRate := clamp01(2 * float64(m.CorruptionDetected) / float64(m.FilesProcessed))
		invCorruption = 1 - corRate
	}

	invBuildFailure := 1.0
	if m.TotalRuns > 0 {
		invBuildFailure = 1 - clamp01(float64(m.BuildFailures)/float64(m.TotalRuns))
	}

	experience := float64(min(m.TotalRuns, experienceCeiling)) / experienceCeiling

	throughput := 0.0
	if m.AnysReplaced > 0 {
		throughput = 1.0
	}

	score := weightSuccessRate*successRate +
		weightErrorRate*invError +
		weightCorruption*invCorruption +
		weightBuildFailure*invBuildFailure +
		weightExperience*experience +
		weightThroughput*throughput

	return clamp01(score)
}

// RecommendedBatchSize maps the safety score and minimum history counts
// through an ascending step function. Callers may force an explicit
// batch size instead; this is only the learned recommendation.
func (l *Ledger) RecommendedBatchSize() int {
	m := &l.Metrics
	minBatch := l.Safety.MinBatch
	maxBatch := l.Safety.MaxBatch
	score := l.SafetyScore()

	capAt := func(n int) int {
		if n > maxBatch {
			return maxBatch
		}
		return n
	}

	switch {
	case m.TotalRuns < 3 || score < 0.3:
		return minBatch
	case score < 0.5:
		return capAt(minBatch * 2)
	case score < 0.7 || m.SuccessfulRuns < 5:
		return capAt(minBatch * 4)
	case score < 0.85:
		return capAt(minBatch * 6)
	default:
		return maxBatch
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
