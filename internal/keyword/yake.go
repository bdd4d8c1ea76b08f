package keyword

import (
	"math"
	"sort"
	"strings"
)

// Candidate is one scored keyword or keyword phrase.
type Candidate struct {
	Word  string
	Score float64
}

// yakeConfig mirrors the tunables the original reads from the
// environment: n-gram size, minimum candidate length, and a fixed
// remove-duplicates=true policy.
type yakeConfig struct {
	ngrams       int
	minimumChars int
}

type wordStats struct {
	tf          int
	upperCount  int
	sentenceSum int
	sentences   map[int]struct{}
	left        map[string]struct{}
	right       map[string]struct{}
}

func newWordStats() *wordStats {
	return &wordStats{
		sentences: make(map[int]struct{}),
		left:      make(map[string]struct{}),
		right:     make(map[string]struct{}),
	}
}

// extractKeywords runs a YAKE-style unsupervised statistical extraction
// over text, scoring candidate n-grams of 1..cfg.ngrams words. It returns
// candidates sorted best-first (ascending raw YAKE score — lower is more
// significant), not yet inverted or truncated to a top-N; the caller
// applies that policy.
func extractKeywords(text string, stopwords map[string]struct{}, cfg yakeConfig) []Candidate {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	stats := make(map[string]*wordStats)
	for si, sent := range sentences {
		for wi, w := range sent.words {
			st, ok := stats[w.lower]
			if !ok {
				st = newWordStats()
				stats[w.lower] = st
			}
			st.tf++
			if isUpperInitial(w.original) {
				st.upperCount++
			}
			st.sentenceSum += si
			st.sentences[si] = struct{}{}
			if wi > 0 {
				st.left[sent.words[wi-1].lower] = struct{}{}
			}
			if wi < len(sent.words)-1 {
				st.right[sent.words[wi+1].lower] = struct{}{}
			}
		}
	}

	maxTF := 1
	sumTF, sumTF2, n := 0.0, 0.0, 0.0
	for w, st := range stats {
		if _, stop := stopwords[w]; stop {
			continue
		}
		if st.tf > maxTF {
			maxTF = st.tf
		}
		sumTF += float64(st.tf)
		sumTF2 += float64(st.tf) * float64(st.tf)
		n++
	}
	meanTF := 0.0
	stdTF := 0.0
	if n > 0 {
		meanTF = sumTF / n
		variance := sumTF2/n - meanTF*meanTF
		if variance > 0 {
			stdTF = math.Sqrt(variance)
		}
	}

	scores := make(map[string]float64, len(stats))
	for w, st := range stats {
		if _, stop := stopwords[w]; stop {
			scores[w] = 1.0
			continue
		}
		scores[w] = singleWordScore(st, maxTF, meanTF, stdTF, len(sentences))
	}

	type candidateAgg struct {
		words []string
		tf    int
	}
	order := make([]string, 0)
	candidates := make(map[string]*candidateAgg)

	for _, sent := range sentences {
		for size := 1; size <= cfg.ngrams; size++ {
			for start := 0; start+size <= len(sent.words); start++ {
				span := sent.words[start : start+size]
				first, last := span[0], span[len(span)-1]
				if isStopword(stopwords, first.lower) || isStopword(stopwords, last.lower) {
					continue
				}
				words := make([]string, size)
				joined := strings.Builder{}
				for i, w := range span {
					words[i] = w.lower
					if i > 0 {
						joined.WriteByte(' ')
					}
					joined.WriteString(w.lower)
				}
				key := joined.String()
				if len(strings.ReplaceAll(key, " ", "")) < cfg.minimumChars {
					continue
				}
				if strings.ContainsAny(key, ":,") {
					continue
				}
				agg, ok := candidates[key]
				if !ok {
					agg = &candidateAgg{words: words}
					candidates[key] = agg
					order = append(order, key)
				}
				agg.tf++
			}
		}
	}

	results := make([]Candidate, 0, len(candidates))
	for _, key := range order {
		agg := candidates[key]
		results = append(results, Candidate{Word: key, Score: candidateScore(agg.words, agg.tf, scores)})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score < results[j].Score
	})
	return results
}

func isStopword(stopwords map[string]struct{}, w string) bool {
	_, ok := stopwords[w]
	return ok
}

func singleWordScore(st *wordStats, maxTF int, meanTF, stdTF float64, totalSentences int) float64 {
	tf := float64(st.tf)

	wCase := float64(st.upperCount) / (1 + math.Log(1+tf))

	medianSentence := float64(st.sentenceSum) / tf
	wPos := math.Log(math.Log(3 + medianSentence))

	denom := meanTF + stdTF
	wFreq := 0.0
	if denom > 0 {
		wFreq = tf / denom
	}

	leftDeg := float64(len(st.left)) / tf
	rightDeg := float64(len(st.right)) / tf
	wRel := 1.0
	if maxTF > 0 {
		wRel = 1 + (leftDeg+rightDeg)*(tf/float64(maxTF))
	}

	spread := 0.0
	if totalSentences > 0 {
		spread = float64(len(st.sentences)) / float64(totalSentences)
	}

	denomScore := wCase + (wFreq / wRel) + (spread / wRel)
	if denomScore == 0 {
		return wRel * wPos
	}
	return (wRel * wPos) / denomScore
}

// candidateScore combines per-word scores into one n-gram score following
// YAKE's product/sum combination rule; single-word candidates use their
// word score directly.
func candidateScore(words []string, tf int, wordScore map[string]float64) float64 {
	if len(words) == 1 {
		return wordScore[words[0]]
	}
	product := 1.0
	sum := 0.0
	for _, w := range words {
		s := wordScore[w]
		product *= s
		sum += s
	}
	if tf == 0 {
		tf = 1
	}
	return product / (float64(tf) * (1 + sum))
}
