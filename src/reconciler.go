package wxsame

import "sort"

/*------------------------------------------------------------------
 *
 * Purpose:	Vocabulary-driven word and character reconciliation.
 *
 * Description:	Given a position in the merged header and a set of
 *		legal candidates (an enumerated originator, event,
 *		FIPS, duration, or time vocabulary), pick the
 *		least-distance candidate against the bytes and
 *		confidences currently decoded there, and accept it only
 *		if the match is convincing. When nothing in a
 *		vocabulary fits, fall back to the nearest legal
 *		character in the raw class using the signed-bit
 *		distance from ConfidentByte's merge arithmetic.
 *
 *------------------------------------------------------------------*/

// wordDistance sums, over the candidate's length, 1+confidence at every
// position where word disagrees with choice (skipping wildcard
// positions). If word runs out before choice does, the loop is cut
// short and a length-shortfall penalty is added instead -- this mirrors
// the reference implementation's own (not entirely well-behaved)
// short-word penalty rather than a cleaner one, since nothing in this
// package ever calls it with a word shorter than choice by more than a
// byte or two.
func wordDistance(word []byte, confidence []int, choice string, wildcard byte) int {
	d := 0
	for i := 0; i < len(choice); i++ {
		if len(word) > i {
			if choice[i] != wildcard && word[i] != choice[i] {
				d += 1 + confidence[i]
			}
		} else {
			return d + (len(word)-i+1)*9
		}
	}
	return d
}

// median returns the median of a slice of confidences (float to match
// the even-length two-element average).
func median(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]int(nil), xs...)
	sort.Ints(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// reconcileWord looks for the best candidate in choices against
// word[start:start+L] (L = the candidate length, taken from the first
// choice; all choices must share it), accepts it only if it is both a
// clear winner over the runner-up and convincing against the header's
// overall confidence level, and if accepted overwrites word and
// confidences in place over that range.
func reconcileWord(word []byte, confidences []int, start int, choices []WeightedChoice) ([]byte, []int, bool) {
	if len(choices) == 0 {
		return word, confidences, false
	}
	if len(word) <= start {
		return word, confidences, false
	}

	candidateLen := len(choices[0].Value)
	end := start + candidateLen
	sliceEnd := end
	if sliceEnd > len(word) {
		sliceEnd = len(word)
	}

	window := word[start:sliceEnd]
	windowConf := confidences[start:sliceEnd]

	type scored struct {
		score float64
		raw   int
		value string
	}

	candidates := make([]scored, 0, len(choices))
	for _, c := range choices {
		raw := wordDistance(window, windowConf, c.Value, 0)
		weight := c.Weight
		if weight == 0 {
			weight = 1
		}
		candidates = append(candidates, scored{score: (float64(raw) + 1) / weight, raw: raw, value: c.Value})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score < candidates[j].score })

	best := candidates[0]
	threshold := maxFloat(4, median(confidences))
	if best.score >= threshold {
		return word, confidences, false
	}
	if len(candidates) > 1 && best.score >= candidates[1].score {
		return word, confidences, false
	}

	baseConfidence := maxInt(0, int(maxFloat(4, float64(maxIntSlice(confidences[start:sliceEnd])))-best.score/float64(candidateLen)))

	for i := start; i < sliceEnd; i++ {
		newChar := best.value[i-start]
		if word[i] != newChar {
			confidences[i] = clampConfidence(baseConfidence)
		} else {
			confidences[i] = clampConfidence(baseConfidence >> 3)
		}
		word[i] = newChar
	}

	return word, confidences, true
}

func maxIntSlice(xs []int) int {
	m := 0
	for i, v := range xs {
		if i == 0 || v > m {
			m = v
		}
	}
	return m
}

func clampConfidence(c int) int {
	if c < 0 {
		return 0
	}
	if c > 9 {
		return 9
	}
	return c
}

// reconcileCharacter finds the class member nearest to the bitwise
// confidence evidence for a single byte, using the same signed-bit
// distance ConfidentByte.Merge relies on: for each candidate, sum the
// magnitude of every bit where the candidate disagrees with the
// evidence's winning sign. Returns confidence 2 if the winner is
// unique, 1 if tied, and the winning character. If no bit carries any
// weight in favor of 1 and pattern has more than one member, it returns
// confidence 0 and the byte 0 instead.
func reconcileCharacter(bitsTrue, bitsFalse [8]int, pattern string) (int, byte) {
	sumTrue := 0
	for _, v := range bitsTrue {
		sumTrue += v
	}
	if sumTrue == 0 && len(pattern) > 1 {
		return 0, 0
	}

	type candidate struct {
		distance int
		char     byte
	}
	near := make([]candidate, 0, len(pattern))
	for i := 0; i < len(pattern); i++ {
		t := pattern[i]
		distance := 0
		for j := 0; j < 8; j++ {
			weight := bitsTrue[j] - bitsFalse[j]
			bit := (t >> uint(j)) & 1
			winningBit := byte(0)
			if weight > 0 {
				winningBit = 1
			}
			if bit != winningBit {
				distance += absInt(weight)
			}
		}
		near = append(near, candidate{distance: distance, char: t})
	}
	sort.Slice(near, func(i, j int) bool {
		if near[i].distance != near[j].distance {
			return near[i].distance < near[j].distance
		}
		return near[i].char < near[j].char
	})

	confidence := 2
	if len(near) > 1 && near[0].distance == near[1].distance {
		confidence = 1
	}
	return confidence, near[0].char
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
