package wxsame

import "strings"

/*------------------------------------------------------------------
 *
 * Purpose:	Merge 1-3 raw header copies into one best-estimate SAME
 *		header string plus a per-byte confidence (0-9).
 *
 * Description:	Five passes:
 *
 *		1. Sum signed bit-confidence across copies (§4.1) to
 *		   assemble a raw merged byte string.
 *		2. Truncate to the best-fit length and lay down the
 *		   fixed delimiter/skeleton frame (truncate.go).
 *		3. Reconcile the originator, event, FIPS, duration and
 *		   issue-time vocabularies word by word.
 *		4. Fall back, byte by byte, to the nearest legal
 *		   character for anything still outside its class.
 *		5. Clamp every confidence to 0-9.
 *
 *------------------------------------------------------------------*/

// AveragedHeader is the canonical reconciled header: a string and a
// parallel per-byte confidence (0-9).
type AveragedHeader struct {
	Text        string
	Confidences []int
}

// averageHeaders reconciles 1-3 RawHeader copies into one
// AveragedHeader, using transmitter to resolve the candidate FIPS list
// and WFO call sign (empty candidate sets if transmitter is unknown).
func averageHeaders(headers []RawHeader, transmitter string) AveragedHeader {
	if len(headers) == 0 {
		return AveragedHeader{Text: "", Confidences: nil}
	}

	maxLen := 0
	for _, h := range headers {
		if len(h.Bytes) > maxLen {
			maxLen = len(h.Bytes)
		}
	}

	word := make([]byte, maxLen)
	confidences := make([]int, maxLen)
	bitsTrue := make([][8]int, maxLen)
	bitsFalse := make([][8]int, maxLen)

	for i := 0; i < maxLen; i++ {
		var trueSum, falseSum [8]int
		for _, h := range headers {
			if i >= len(h.Bytes) || h.Bytes[i] == 0 {
				continue
			}
			conf := 0
			if i < len(h.Confidences) {
				conf = int(h.Confidences[i])
			}
			cb := NewConfidentByte(h.Bytes[i], conf)
			t, f := cb.bitConfidences()
			for k := 0; k < 8; k++ {
				trueSum[k] += t[k]
				falseSum[k] += f[k]
			}
		}

		var c byte
		sumAbs := 0
		for k := 0; k < 8; k++ {
			weight := trueSum[k] - falseSum[k]
			if weight > 0 {
				c |= 1 << uint(k)
			}
			sumAbs += absInt(weight)
		}
		word[i] = c
		confidences[i] = clampConfidence(sumAbs)
		bitsTrue[i] = trueSum
		bitsFalse[i] = falseSum
	}

	word, confidences, fipsCount := truncateAndFrame(word, confidences)
	bitsTrue = bitsTrue[:len(word)]
	bitsFalse = bitsFalse[:len(word)]

	candidateFIPS := getCounties(transmitter)
	wfo := getWFO(transmitter)
	if wfo == "" {
		logUnknownTransmitter(transmitter)
	}

	word, confidences, _ = reconcileWord(word, confidences, 1, toWeightedChoices(OriginatorCodes))
	word, confidences, _ = reconcileWord(word, confidences, 5, toWeightedChoices(EventCodes))

	remainingFIPS := append([]string(nil), candidateFIPS...)
	for block := 0; block < fipsCount; block++ {
		start := 9 + 7*block
		choices := toWeightedChoices(remainingFIPS)
		var matched bool
		word, confidences, matched = reconcileWord(word, confidences, start, choices)
		if matched {
			matchedValue := string(word[start : start+6])
			remainingFIPS = removeString(remainingFIPS, matchedValue)
		}
	}

	plusPos := plusIndex(fipsCount)
	if plusPos+1 < len(word) {
		word, confidences, _ = reconcileWord(word, confidences, plusPos+1, ValidDurations)
	}
	if plusPos+6 < len(word) {
		timeCandidates := issueTimeCandidates(headers[0].ArrivalTime)
		word, confidences, _ = reconcileWord(word, confidences, plusPos+6, timeCandidates)
	}
	if wfo != "" && plusPos+14 < len(word) {
		word, confidences, _ = reconcileWord(word, confidences, plusPos+14, []WeightedChoice{{Weight: 1, Value: wfo}})
	}
	if plusPos+19 < len(word) {
		word, confidences, _ = reconcileWord(word, confidences, plusPos+19, []WeightedChoice{{Weight: 1, Value: "NWS"}})
	}

	for i := 0; i < len(word); i++ {
		pattern := classAt(i, fipsCount)
		if pattern == "" {
			continue
		}
		if strings.IndexByte(pattern, word[i]) >= 0 {
			continue
		}
		conf, c := reconcileCharacter(bitsTrue[i], bitsFalse[i], pattern)
		word[i] = c
		confidences[i] = clampConfidence(conf)
	}

	for i := range confidences {
		confidences[i] = clampConfidence(confidences[i])
	}

	return AveragedHeader{Text: string(word), Confidences: confidences}
}

func toWeightedChoices(values []string) []WeightedChoice {
	choices := make([]WeightedChoice, len(values))
	for i, v := range values {
		choices[i] = WeightedChoice{Weight: 1, Value: v}
	}
	return choices
}

func removeString(xs []string, target string) []string {
	out := xs[:0]
	removed := false
	for _, x := range xs {
		if !removed && x == target {
			removed = true
			continue
		}
		out = append(out, x)
	}
	return out
}
