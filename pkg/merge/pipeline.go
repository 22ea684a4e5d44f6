// Package merge implements the 17-stage merge pipeline that turns the
// raw union of all detector spans into a final, non-overlapping,
// authoritative span list (spec §4.4).
package merge

import (
	"sort"
	"strings"

	"github.com/chillbot-io/openlabels/pkg/registry"
	"github.com/chillbot-io/openlabels/pkg/types"
)

var mlDetectors = map[string]bool{
	"phi_bert": true, "pii_bert": true, "ml": true,
	"phi_bert_onnx": true, "pii_bert_onnx": true,
}

// Merge runs the full ordered pipeline over the raw union of detector
// spans. Each stage is pure and returns an equal-or-smaller list; nothing
// is mutated in place.
func Merge(spans []types.Span, text string) []types.Span {
	spans = canonicalizeTypes(spans)
	spans = dropClinicalContext(spans)
	spans = fixMisclassifiedEmails(spans)
	spans = trimWhitespace(spans)
	spans = trimTrailingPunctuation(spans)
	spans = trimNameAtNewline(spans)
	spans = trimNameAtNonNameWord(spans)
	spans = snapToWordBoundaries(spans, text)
	spans = filterShortNames(spans)
	spans = reclassifyCityAsName(spans)
	spans = filterIDCardMRN(spans, text)
	spans = filterTrackingNumbers(spans, text)
	spans = mergeAdjacentAddress(spans, text)
	spans = removeContainedSpans(spans)
	spans = deduplicateExact(spans)
	spans = greedyNonOverlapSelect(spans)
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return spans
}

// stage 1: canonicalize types via the alias table.
func canonicalizeTypes(spans []types.Span) []types.Span {
	out := make([]types.Span, len(spans))
	for i, s := range spans {
		out[i] = s.WithType(registry.NormalizeType(s.EntityType))
	}
	return out
}

// stage 2: drop clinical-context categories from user-visible output.
func dropClinicalContext(spans []types.Span) []types.Span {
	out := make([]types.Span, 0, len(spans))
	for _, s := range spans {
		if types.IsClinicalContext(s.EntityType) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// stage 3: any NAME* span whose literal text is a full email is
// reclassified as EMAIL with trailing punctuation stripped.
func fixMisclassifiedEmails(spans []types.Span) []types.Span {
	out := make([]types.Span, 0, len(spans))
	for _, s := range spans {
		if isNameType(s.EntityType) {
			trimmed := strings.TrimRight(s.Text, ".,;: ")
			if emailPattern.MatchString(trimmed) {
				newEnd := s.Start + len(trimmed)
				s = s.WithRange(s.Start, newEnd, trimmed).WithType("EMAIL")
			}
		}
		out = append(out, s)
	}
	return out
}

// stage 4: trim whitespace from span boundaries; discard spans that
// become empty.
func trimWhitespace(spans []types.Span) []types.Span {
	out := make([]types.Span, 0, len(spans))
	for _, s := range spans {
		text := s.Text
		start, end := s.Start, s.End
		for len(text) > 0 && isSpace(text[0]) {
			text = text[1:]
			start++
		}
		for len(text) > 0 && isSpace(text[len(text)-1]) {
			text = text[:len(text)-1]
			end--
		}
		if text == "" {
			continue
		}
		out = append(out, s.WithRange(start, end, text))
	}
	return out
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }

// stage 5: trim trailing punctuation for ID-like types (NAME types exempt).
func trimTrailingPunctuation(spans []types.Span) []types.Span {
	out := make([]types.Span, 0, len(spans))
	for _, s := range spans {
		if IDLikeTypes[s.EntityType] {
			trimmed := strings.TrimRight(s.Text, ".,;:!?")
			if len(trimmed) != len(s.Text) {
				s = s.WithRange(s.Start, s.Start+len(trimmed), trimmed)
			}
		}
		if s.Text == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// stage 6: NAME spans crossing a newline are cut at the first newline;
// results shorter than 2 chars are dropped.
func trimNameAtNewline(spans []types.Span) []types.Span {
	out := make([]types.Span, 0, len(spans))
	for _, s := range spans {
		if isNameType(s.EntityType) {
			if idx := strings.IndexByte(s.Text, '\n'); idx >= 0 {
				newText := s.Text[:idx]
				if len(newText) < 2 {
					continue
				}
				s = s.WithRange(s.Start, s.Start+len(newText), newText)
			}
		}
		out = append(out, s)
	}
	return out
}

// stage 7: drop a trailing word from a NAME span if it's in
// NonNameWords, or it's lowercase, >5 chars, and not a NameConnector.
func trimNameAtNonNameWord(spans []types.Span) []types.Span {
	out := make([]types.Span, 0, len(spans))
	for _, s := range spans {
		if isNameType(s.EntityType) {
			words := strings.Fields(s.Text)
			for len(words) > 1 {
				last := words[len(words)-1]
				lastLower := strings.ToLower(strings.Trim(last, ".,"))
				shouldTrim := NonNameWords[lastLower]
				if !shouldTrim && last == lastLower && len(last) > 5 && !NameConnectors[lastLower] {
					shouldTrim = true
				}
				if !shouldTrim {
					break
				}
				words = words[:len(words)-1]
			}
			newText := strings.Join(words, " ")
			if newText != s.Text {
				idx := strings.Index(s.Text, newText)
				if idx < 0 {
					idx = 0
				}
				s = s.WithRange(s.Start+idx, s.Start+idx+len(newText), newText)
			}
		}
		out = append(out, s)
	}
	return out
}

// stage 8: expand a mid-word span boundary outward to the nearest word
// boundary, but only if the expansion on either side is <= 10 chars;
// confidence *= 0.95 on expansion.
func snapToWordBoundaries(spans []types.Span, text string) []types.Span {
	out := make([]types.Span, 0, len(spans))
	isWordChar := func(b byte) bool {
		return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
	}
	for _, s := range spans {
		start, end := s.Start, s.End
		expanded := false

		expansion := 0
		for start > 0 && isWordChar(text[start-1]) && expansion < WordBoundaryExpansionLimit {
			start--
			expansion++
			expanded = true
		}
		if expansion >= WordBoundaryExpansionLimit {
			start = s.Start // expansion too large, revert
			expanded = false
		}

		expansion = 0
		newEnd := end
		for newEnd < len(text) && isWordChar(text[newEnd]) && expansion < WordBoundaryExpansionLimit {
			newEnd++
			expansion++
			expanded = true
		}
		if expansion >= WordBoundaryExpansionLimit {
			newEnd = end
		} else {
			end = newEnd
		}

		if start != s.Start || end != s.End {
			s = s.WithRange(start, end, text[start:end])
			if expanded {
				s = s.WithConfidence(s.Confidence * 0.95)
			}
		}
		out = append(out, s)
	}
	return out
}

// stage 9: drop NAME-type spans shorter than MinNameLength after
// stripping a trailing period.
func filterShortNames(spans []types.Span) []types.Span {
	out := make([]types.Span, 0, len(spans))
	for _, s := range spans {
		if isNameType(s.EntityType) {
			text := strings.TrimRight(s.Text, ".")
			if len(text) < MinNameLength {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

// stage 10: NAME spans matching "CITY, ST" or ending in a city suffix are
// reclassified to ADDRESS (suffix-only case gets a 0.9 confidence
// multiplier).
func reclassifyCityAsName(spans []types.Span) []types.Span {
	out := make([]types.Span, 0, len(spans))
	for _, s := range spans {
		if !isNameType(s.EntityType) {
			out = append(out, s)
			continue
		}
		text := strings.TrimSpace(s.Text)
		if cityStatePattern.MatchString(text) {
			out = append(out, s.WithType("ADDRESS"))
			continue
		}
		lower := strings.ToLower(text)
		reclassified := false
		for _, suffix := range citySuffixes {
			if strings.HasSuffix(lower, suffix) && len(text) > len(suffix)+2 {
				out = append(out, s.WithType("ADDRESS").WithConfidence(s.Confidence*0.9))
				reclassified = true
				break
			}
		}
		if !reclassified {
			out = append(out, s)
		}
	}
	return out
}

// stage 11: if the text has >=2 ID-card markers, drop MRN spans from
// ML-tier detectors (pattern/checksum MRN detections are kept).
func filterIDCardMRN(spans []types.Span, text string) []types.Span {
	if !isIDCardContext(text) {
		return spans
	}
	out := make([]types.Span, 0, len(spans))
	for _, s := range spans {
		if s.EntityType == "MRN" && mlDetectors[s.Detector] {
			continue
		}
		out = append(out, s)
	}
	return out
}

// stage 12: ML-tier MRN spans whose text matches a carrier tracking
// pattern AND whose left context has carrier keywords are dropped.
func filterTrackingNumbers(spans []types.Span, text string) []types.Span {
	out := make([]types.Span, 0, len(spans))
	for _, s := range spans {
		if s.EntityType == "MRN" && mlDetectors[s.Detector] {
			cleaned := strings.NewReplacer(" ", "", "-", "").Replace(s.Text)
			matchesPattern := false
			for _, p := range trackingNumberPatterns {
				if p.MatchString(cleaned) {
					matchesPattern = true
					break
				}
			}
			if matchesPattern {
				start := s.Start - TrackingContextWindow
				if start < 0 {
					start = 0
				}
				contextBefore := ""
				if start < s.Start && start < len(text) {
					contextBefore = text[start:s.Start]
				}
				if isTrackingContext(contextBefore) {
					continue
				}
			}
		}
		out = append(out, s)
	}
	return out
}

func isTrackingContext(contextBefore string) bool {
	for _, p := range trackingContextPatterns {
		if p.MatchString(contextBefore) {
			return true
		}
	}
	lower := strings.ToLower(contextBefore)
	for _, kw := range carrierKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// stage 13: merge consecutive ADDRESS spans separated by <=20 chars of
// only whitespace/commas/hyphens/apt-unit-suite markers; the merged span
// keeps the max tier and min confidence.
func mergeAdjacentAddress(spans []types.Span, text string) []types.Span {
	sorted := append([]types.Span(nil), spans...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	out := make([]types.Span, 0, len(sorted))
	i := 0
	for i < len(sorted) {
		cur := sorted[i]
		if cur.EntityType != "ADDRESS" {
			out = append(out, cur)
			i++
			continue
		}
		j := i + 1
		for j < len(sorted) && sorted[j].EntityType == "ADDRESS" {
			gap := sorted[j].Start - cur.End
			if gap < 0 || gap > AddressGapThreshold {
				break
			}
			gapText := ""
			if cur.End < sorted[j].Start && sorted[j].Start <= len(text) {
				gapText = text[cur.End:sorted[j].Start]
			}
			if !addressJoinerPattern.MatchString(gapText) {
				break
			}
			mergedText := text[cur.Start:sorted[j].End]
			tier := cur.Tier
			if sorted[j].Tier > tier {
				tier = sorted[j].Tier
			}
			conf := cur.Confidence
			if sorted[j].Confidence < conf {
				conf = sorted[j].Confidence
			}
			cur = cur.WithRange(cur.Start, sorted[j].End, mergedText)
			cur.Tier = tier
			cur = cur.WithConfidence(conf)
			j++
		}
		out = append(out, cur)
		i = j
	}
	return out
}

// stage 14: sort by length descending then (tier, confidence); drop any
// span fully inside an already-accepted span of a compatible type. Below
// intervalIndexThreshold spans this is a direct O(n²) scan; at or above
// it, a typeIntervalIndex (interval.go) answers the same containment
// query in O(log n) per span so this stage stays sub-quadratic on the
// large documents spec §6's max_text_size allows.
func removeContainedSpans(spans []types.Span) []types.Span {
	sorted := append([]types.Span(nil), spans...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Len() != sorted[j].Len() {
			return sorted[i].Len() > sorted[j].Len()
		}
		if sorted[i].Tier != sorted[j].Tier {
			return sorted[i].Tier > sorted[j].Tier
		}
		return sorted[i].Confidence > sorted[j].Confidence
	})

	if len(sorted) < intervalIndexThreshold {
		return removeContainedSpansQuadratic(sorted)
	}

	idx := newTypeIntervalIndex(sorted)
	accepted := make([]types.Span, 0, len(sorted))
	for _, s := range sorted {
		if idx.Contains(s) {
			continue
		}
		accepted = append(accepted, s)
		idx.Insert(s)
	}
	return accepted
}

// removeContainedSpansQuadratic is the direct nested-loop containment
// check, kept as the fallback spec §9 permits for n < 100 where building
// the interval index costs more than it saves.
func removeContainedSpansQuadratic(sorted []types.Span) []types.Span {
	accepted := make([]types.Span, 0, len(sorted))
	for _, s := range sorted {
		contained := false
		for _, a := range accepted {
			if a.Contains(s) && types.CompatibleTypes(a.EntityType, s.EntityType) && !(a.Start == s.Start && a.End == s.End) {
				contained = true
				break
			}
		}
		if !contained {
			accepted = append(accepted, s)
		}
	}
	return accepted
}

// stage 15: deduplicate exact (start, end, type) duplicates, keeping the
// highest (tier, confidence).
func deduplicateExact(spans []types.Span) []types.Span {
	type key struct {
		start, end int
		entityType string
	}
	best := map[key]types.Span{}
	order := []key{}
	for _, s := range spans {
		k := key{s.Start, s.End, s.EntityType}
		existing, ok := best[k]
		if !ok {
			best[k] = s
			order = append(order, k)
			continue
		}
		if s.AuthorityLess(existing) {
			best[k] = s
		}
	}
	out := make([]types.Span, 0, len(order))
	for _, k := range order {
		out = append(out, best[k])
	}
	return out
}

// stage 16: sort by authority key (tier desc, confidence desc, length
// desc, start asc); accept a span iff it does not overlap any already
// accepted span.
func greedyNonOverlapSelect(spans []types.Span) []types.Span {
	sorted := append([]types.Span(nil), spans...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].AuthorityLess(sorted[j]) })

	accepted := make([]types.Span, 0, len(sorted))
	for _, s := range sorted {
		overlaps := false
		for _, a := range accepted {
			if a.Overlaps(s) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			accepted = append(accepted, s)
		}
	}
	return accepted
}
