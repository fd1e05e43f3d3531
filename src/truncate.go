package wxsame

/*------------------------------------------------------------------
 *
 * Purpose:	Decide the true length of a merged header and lay down
 *		its known delimiter/skeleton characters.
 *
 * Description:	The terminal 23 bytes of any SAME header have the fixed
 *		skeleton "+0___-_______-____/NWS-". Candidate lengths
 *		38, 45, 52, ... (one more FIPS block each time) are
 *		scored by how well their own terminal 23 bytes align
 *		with that skeleton; the best-scoring length wins, and
 *		the full frame (leading "-___-___", one "-______" per
 *		FIPS block, then the terminal skeleton) is written in.
 *
 *------------------------------------------------------------------*/

// truncateAndFrame truncates word/confidences to the best-fit header
// length and overwrites every fixed delimiter/skeleton byte. It
// returns the truncated word, confidences, and the number of FIPS
// blocks implied by the chosen length.
func truncateAndFrame(word []byte, confidences []int) ([]byte, []int, int) {
	if len(word) < 38 {
		return word, confidences, 0
	}

	bestScore := 0
	bestLen := 0
	for l := 38; l <= len(word); l += 7 {
		score := wordDistance(word[l-23:l], confidences, endSkeleton, '_')
		if bestLen == 0 || score < bestScore {
			bestScore = score
			bestLen = l
		}
	}

	word = word[:bestLen]
	confidences = confidences[:bestLen]

	confidenceChars := 0
	for i := 0; i < len(endSkeleton); i++ {
		if endSkeleton[i] != '_' {
			confidenceChars++
		}
	}

	endConfidence := int((float64(confidenceChars)*median(confidences) - float64(bestScore)) / float64(confidenceChars))

	fipsCount := (len(word) - len(endSkeleton) - 8) / 7

	frame := buildFrame(fipsCount)
	if len(frame) != len(word) {
		// Length mismatch means the candidate-length search picked an
		// offset that isn't actually a whole number of FIPS blocks;
		// nothing sane to frame against, so leave word untouched.
		return word, confidences, fipsCount
	}

	for i := 0; i < len(word); i++ {
		if frame[i] == '_' {
			continue
		}
		if word[i] != frame[i] {
			word[i] = frame[i]
			confidences[i] = clampConfidence(endConfidence)
		} else {
			confidences[i] = clampConfidence(maxInt(endConfidence, confidences[i]))
		}
	}

	return word, confidences, fipsCount
}

// buildFrame lays out the leading "-___-___", one "-______" per FIPS
// block, and the terminal skeleton.
func buildFrame(fipsCount int) string {
	frame := "-___-___"
	for i := 0; i < fipsCount; i++ {
		frame += "-______"
	}
	frame += endSkeleton
	return frame
}
