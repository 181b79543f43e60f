package suggest

import (
	"sort"
	"strings"
	"unicode"

	"github.com/bastiangx/mentionserve/internal/utils"
)

// Constants for scoring
const (
	firstCharMatchBonus            = 15
	adjacentMatchBonus             = 10
	separatorMatchBonus            = 12
	camelCaseMatchBonus            = 12
	unmatchedLeadingCharPenalty    = -3
	maxUnmatchedLeadingCharPenalty = -9
	minFuzzyPatternLen             = 2
)

// fuzzyMatch is a candidate that contains the pattern as a subsequence.
type fuzzyMatch struct {
	entry
	rank int
}

// fuzzyCandidates ranks the entries containing pattern as a subsequence.
// The first rune must match, so "@aice" finds "alice" but never "bob".
func fuzzyCandidates(pattern string, entries map[string]entry, minThreshold int) []Suggestion {
	if len([]rune(pattern)) < minFuzzyPatternLen || utils.IsOnlyNumbers(pattern) || utils.IsRepetitive(pattern) {
		return nil
	}
	patternRunes := []rune(pattern)

	var matches []fuzzyMatch
	for key, e := range entries {
		if e.score < minThreshold {
			continue
		}
		if !utils.EqualFold([]rune(key)[0], patternRunes[0]) {
			continue
		}
		rank, ok := fuzzyScore(patternRunes, key)
		if !ok {
			continue
		}
		// frequency bonus on a log-ish scale so it never dominates
		rank += min(e.score/10, 30)
		rank -= abs(len(key)-len(pattern)) * 2
		matches = append(matches, fuzzyMatch{entry: e, rank: rank})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].rank != matches[j].rank {
			return matches[i].rank > matches[j].rank
		}
		return matches[i].word < matches[j].word
	})

	suggestions := make([]Suggestion, len(matches))
	for i, m := range matches {
		suggestions[i] = Suggestion{Word: m.word, Score: m.score, Fuzzy: true}
	}
	return suggestions
}

// fuzzyScore tests if pattern is a subsequence of candidate and scores it.
func fuzzyScore(pattern []rune, candidate string) (int, bool) {
	candidateRunes := []rune(candidate)
	if len(pattern) == 0 || len(candidateRunes) == 0 {
		return 0, false
	}

	var last rune
	var currAdjacentMatchBonus int
	lastMatched := -2
	patternIndex := 0
	total := 0

	for i, curr := range candidateRunes {
		if !utils.EqualFold(curr, pattern[patternIndex]) {
			last = curr
			continue
		}

		score := 0
		if i == 0 {
			score += firstCharMatchBonus
		}
		if i > 0 && unicode.IsLower(last) && unicode.IsUpper(curr) {
			score += camelCaseMatchBonus
		}
		if i > 0 && utils.IsSeparator(last) {
			score += separatorMatchBonus
		}
		if lastMatched == i-1 {
			currAdjacentMatchBonus = currAdjacentMatchBonus*2 + adjacentMatchBonus
			score += currAdjacentMatchBonus
		} else {
			currAdjacentMatchBonus = 0
		}
		if patternIndex == 0 {
			score += max(i*unmatchedLeadingCharPenalty, maxUnmatchedLeadingCharPenalty)
		}

		total += score
		lastMatched = i
		last = curr
		patternIndex++

		if patternIndex >= len(pattern) {
			// penalize what is left unmatched
			return total - (len(candidateRunes) - patternIndex), true
		}
	}
	return 0, false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func lowerKey(s string) string {
	return strings.ToLower(s)
}
