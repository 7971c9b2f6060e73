package planner

// ScorePolicy selects how room capacity is rated against a session's
// requirement. Both policies are in active use: candidate discovery scans all
// rooms with the capacity-difference curve, while re-ranking of already-known
// candidates penalizes oversized rooms instead.
type ScorePolicy int

const (
	// PolicyCapacityDiff scores by absolute capacity difference, stepwise.
	PolicyCapacityDiff ScorePolicy = iota
	// PolicyOversizePenalty deducts flat penalties for rooms far larger than
	// required.
	PolicyOversizePenalty
)

const maxScore = 100

// ParseScorePolicy maps a config string onto a policy, defaulting to the
// capacity-difference curve.
func ParseScorePolicy(raw string) ScorePolicy {
	if raw == "oversize_penalty" {
		return PolicyOversizePenalty
	}
	return PolicyCapacityDiff
}

// Score rates a room's capacity for a required capacity under the given
// policy. Higher is better, ceiling 100. A requirement of 0 means the
// session is unconstrained and always scores 100.
func Score(policy ScorePolicy, roomCapacity, requiredCapacity int) int {
	if requiredCapacity == 0 {
		return maxScore
	}

	switch policy {
	case PolicyOversizePenalty:
		score := maxScore
		ratio := float64(roomCapacity) / float64(requiredCapacity)
		if ratio > 2.0 {
			score -= 20
		} else if ratio > 1.5 {
			score -= 10
		}
		return score
	default:
		diff := roomCapacity - requiredCapacity
		if diff < 0 {
			diff = -diff
		}
		switch {
		case diff == 0:
			return maxScore
		case diff <= 5:
			return 90
		case diff <= 10:
			return 80
		case diff <= 20:
			return 70
		default:
			if s := maxScore - diff; s > 50 {
				return s
			}
			return 50
		}
	}
}
