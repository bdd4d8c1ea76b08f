package query

// scoreCollectiveKeywords reduces a document's per-keyword matches into
// a single score: the lone score if there's only one match, otherwise
// the arithmetic mean across all matches.
func scoreCollectiveKeywords(matches []KeywordMatch) float64 {
	if len(matches) == 1 {
		return matches[0].Score
	}
	var sum float64
	for _, m := range matches {
		sum += m.Score
	}
	return sum / float64(len(matches))
}
