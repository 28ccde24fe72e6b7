// Package reasoning implements C10: query parsing, Domain/Personal path
// retrieval, edge-evidence-score fusion, and conclusion rendering (§4.10).
package reasoning

import (
	"sort"
	"strings"

	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

// ParsedQuery is the output of Parse (§4.10 "Parse").
type ParsedQuery struct {
	Kind       mmodel.QuestionKind
	Head       string
	Tail       string
	Conditions []string
}

var causalMarkers = []string{"because", "causes", "cause", "leads to", "due to", "results in"}
var predictiveMarkers = []string{"will", "predict", "going to", "future", "expect"}
var comparisonMarkers = []string{"compared to", "versus", " vs ", "more than", "less than"}
var conditionedMarkers = []string{"if ", "when ", "given that", "assuming"}

// Parse extracts entities from question_text against the alias
// dictionary and classifies the question kind by lexical pattern. With
// zero entities found, both Head and Tail are empty and Kind is UNKNOWN
// (the empty-query boundary case, §8).
func Parse(aliasDict map[string]string, questionText string) ParsedQuery {
	lower := strings.ToLower(questionText)

	entities := resolveEntities(aliasDict, lower)

	pq := ParsedQuery{Kind: classifyKind(lower)}

	switch len(entities) {
	case 0:
		pq.Kind = mmodel.QuestionUnknown
	case 1:
		pq.Head = entities[0]
	default:
		pq.Head = entities[0]
		pq.Tail = entities[len(entities)-1]
		pq.Conditions = entities[1 : len(entities)-1]
	}

	return pq
}

// resolveEntities scans the alias dictionary for substring matches in
// text, resolving each to its canonical id, longest alias first so a
// longer phrase wins over a shorter one it contains.
func resolveEntities(aliasDict map[string]string, lowerText string) []string {
	type hit struct {
		pos     int
		alias   string
		entity  string
	}

	aliases := make([]string, 0, len(aliasDict))
	for alias := range aliasDict {
		aliases = append(aliases, alias)
	}

	sort.Slice(aliases, func(i, j int) bool { return len(aliases[i]) > len(aliases[j]) })

	var hits []hit
	consumed := make([]bool, len(lowerText)+1)

	for _, alias := range aliases {
		a := strings.ToLower(alias)
		if a == "" {
			continue
		}

		idx := 0
		for {
			pos := strings.Index(lowerText[idx:], a)
			if pos < 0 {
				break
			}

			start := idx + pos
			end := start + len(a)

			overlap := false
			for i := start; i < end && i < len(consumed); i++ {
				if consumed[i] {
					overlap = true
					break
				}
			}

			if !overlap {
				hits = append(hits, hit{pos: start, alias: a, entity: aliasDict[alias]})
				for i := start; i < end && i < len(consumed); i++ {
					consumed[i] = true
				}
			}

			idx = end
			if idx >= len(lowerText) {
				break
			}
		}
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	seen := make(map[string]bool, len(hits))
	entities := make([]string, 0, len(hits))

	for _, h := range hits {
		if seen[h.entity] {
			continue
		}

		seen[h.entity] = true
		entities = append(entities, h.entity)
	}

	return entities
}

func classifyKind(lowerText string) mmodel.QuestionKind {
	switch {
	case containsAny(lowerText, causalMarkers):
		return mmodel.QuestionCausal
	case containsAny(lowerText, predictiveMarkers):
		return mmodel.QuestionPredictive
	case containsAny(lowerText, comparisonMarkers):
		return mmodel.QuestionComparison
	case containsAny(lowerText, conditionedMarkers):
		return mmodel.QuestionConditioned
	default:
		return mmodel.QuestionDirectRelation
	}
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}

	return false
}
