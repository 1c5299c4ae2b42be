package analyzer

// Aggregate computes the overall score as the weight-normalized mean of
// the category scores, plus its rating. An empty input scores 0.
func Aggregate(results []CategoryResult) (int, string) {
	var weightedSum, totalWeight float64
	for _, r := range results {
		weightedSum += float64(r.Score) * r.Weight
		totalWeight += r.Weight
	}
	if totalWeight == 0 {
		return 0, ScoreRating(0)
	}
	score := clampScore(weightedSum / totalWeight)
	return score, ScoreRating(score)
}
