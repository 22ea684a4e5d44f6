package allowlist

import (
	"strings"

	"github.com/chillbot-io/openlabels/pkg/types"
)

const (
	medicationContextWindow = 50
	dateContextWindow       = 30
	numberContextWindow     = 20
)

func cleanText(text string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(text)), `.,;:!?"'-()[]{}`)
}

func hasMedicationContext(text string, s types.Span) bool {
	start := s.Start - medicationContextWindow
	if start < 0 {
		start = 0
	}
	end := s.End + medicationContextWindow
	if end > len(text) {
		end = len(text)
	}
	context := strings.ToLower(text[start:end])
	for _, p := range MedContextPatterns {
		if p.MatchString(context) {
			return true
		}
	}
	return false
}

func hasDateContext(text string, s types.Span) bool {
	start := s.Start - dateContextWindow
	if start < 0 {
		start = 0
	}
	prefix := strings.ToLower(text[start:s.Start])
	for ctx := range DateContext {
		if strings.Contains(prefix, ctx) {
			return true
		}
	}
	return false
}

func hasNumberContext(text string, s types.Span) bool {
	start := s.Start - numberContextWindow
	if start < 0 {
		start = 0
	}
	prefix := strings.ToLower(text[start:s.Start])
	for ctx := range NumberContext {
		if strings.Contains(prefix, ctx) {
			return true
		}
	}
	return false
}

func isNameEntity(entityType string) bool {
	return strings.HasPrefix(entityType, "NAME")
}

func isIDNumberReferenceRange(text string) bool {
	for _, p := range IDNumberFalsePositivePatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// Apply filters a span list produced by the merge pipeline, suppressing
// entries matched by a static false-positive list and damping confidence
// for date/number spans that appear in a non-patient-relevant context.
func Apply(text string, spans []types.Span) []types.Span {
	out := make([]types.Span, 0, len(spans))

	for _, s := range spans {
		clean := cleanText(s.Text)

		if SafeTerms[clean] {
			continue
		}

		if CommonWords[clean] && isNameEntity(s.EntityType) {
			continue
		}

		if MedicationFalsePositives[clean] && s.EntityType == "MEDICATION" {
			continue
		}

		if AddressFalsePositives[clean] && s.EntityType == "ADDRESS" {
			continue
		}

		if FacilityFalsePositives[clean] && s.EntityType == "FACILITY" {
			continue
		}

		if AccountFalsePositives[clean] && s.EntityType == "ACCOUNT_NUMBER" {
			continue
		}

		if s.EntityType == "ID_NUMBER" && isIDNumberReferenceRange(clean) {
			continue
		}

		if DeviceIDFalsePositives[clean] && s.EntityType == "DEVICE_ID" {
			continue
		}

		if isNameEntity(s.EntityType) && strings.Contains(clean, " ") {
			words := strings.Fields(clean)
			allCommon := true
			for _, w := range words {
				if !CommonWords[strings.Trim(w, `.,;:!?"'-()[]{}`)] {
					allCommon = false
					break
				}
			}
			if allCommon {
				continue
			}
		}

		if FalsePositivePhrases[clean] && isNameEntity(s.EntityType) {
			continue
		}

		if ClinicalLabels[clean] && isNameEntity(s.EntityType) {
			continue
		}

		if DrugNames[clean] && isNameEntity(s.EntityType) && hasMedicationContext(text, s) {
			continue
		}

		switch s.EntityType {
		case "DATE", "DATE_DOB", "DATE_RANGE":
			if hasDateContext(text, s) {
				s = s.WithConfidence(s.Confidence * 0.3)
			}
		case "MRN", "ENCOUNTER_ID", "ACCESSION_ID":
			if hasNumberContext(text, s) {
				s = s.WithConfidence(s.Confidence * 0.3)
			}
		}

		out = append(out, s)
	}

	return out
}
