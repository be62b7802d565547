package services

import (
	"strings"

	"github.com/vncsmyrnk/evote/internal/core/domain"
)

const DefaultPrimaryField = "dni"

// minContainedLen is the shortest record value that may match by containment.
// Shorter values must match exactly.
const minContainedLen = 3

func normalizeFields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.ToLower(strings.TrimSpace(v))
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// matchRecords picks the enrollment record that best fits the extracted
// fields. An exact match on the primary field wins outright. Otherwise the
// record with the most matching fields wins, and ties go to the earliest
// record in scan order. A field matches when the extracted text contains the
// record's value. The primary field only ever matches exactly.
func matchRecords(records []*domain.EnrollmentRecord, extracted map[string]string, primaryField string) (*domain.MatchResult, error) {
	primaryField = strings.ToLower(strings.TrimSpace(primaryField))
	primaryValue := extracted[primaryField]

	var best *domain.EnrollmentRecord
	var bestMatched map[string]string

	for _, r := range records {
		recordFields := normalizeFields(r.Fields)

		if primaryValue != "" && recordFields[primaryField] == primaryValue {
			return &domain.MatchResult{
				EnrollmentID:  r.ID,
				MatchedFields: matchedFields(recordFields, extracted, primaryField),
			}, nil
		}

		matched := matchedFields(recordFields, extracted, primaryField)
		if len(matched) > len(bestMatched) {
			best, bestMatched = r, matched
		}
	}

	if best == nil {
		return nil, domain.ErrNoMatchFound
	}
	return &domain.MatchResult{EnrollmentID: best.ID, MatchedFields: bestMatched}, nil
}

func matchedFields(recordFields, extracted map[string]string, primaryField string) map[string]string {
	matched := make(map[string]string)
	for key, seen := range extracted {
		stored, ok := recordFields[key]
		if !ok {
			continue
		}
		if fieldMatches(seen, stored, key == primaryField) {
			matched[key] = stored
		}
	}
	return matched
}

func fieldMatches(seen, stored string, exact bool) bool {
	if seen == stored {
		return true
	}
	if exact || len(stored) < minContainedLen {
		return false
	}
	return strings.Contains(seen, stored)
}
