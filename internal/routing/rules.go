// Package routing holds the pure ticket classification and
// auto-assignment rules. The rule table is immutable configuration
// injected at construction; random draws take an explicit source so
// callers control when (and how often) a draw happens.
package routing

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/spec-kit/outlet-ops/internal/domain"
)

// Intake category labels recognized by the classifier. Anything else
// falls back to TypeOthers.
const (
	categoryRepair     = "repair and maintenance"
	categoryDifficulty = "difficulty in order"
	categoryPlaceOrder = "place an order"

	subcategoryStock        = "stock items"
	subcategoryHousekeeping = "housekeeping"
)

// RuleTable maps each normalized ticket type to its candidate
// assignees. An empty candidate list means the type is never
// auto-assigned.
type RuleTable struct {
	rules map[domain.TicketType][]string
}

// NewRuleTable validates and freezes a rule configuration. Every
// ticket type must have an entry, possibly empty; a missing entry is a
// configuration error and should abort startup.
func NewRuleTable(rules map[domain.TicketType][]string) (*RuleTable, error) {
	frozen := make(map[domain.TicketType][]string, len(rules))
	for _, tt := range domain.TicketTypes() {
		candidates, ok := rules[tt]
		if !ok {
			return nil, fmt.Errorf("routing: no rule entry for ticket type %s", tt)
		}
		cleaned := make([]string, 0, len(candidates))
		for _, name := range candidates {
			name = strings.TrimSpace(name)
			if name != "" {
				cleaned = append(cleaned, name)
			}
		}
		frozen[tt] = cleaned
	}
	return &RuleTable{rules: frozen}, nil
}

// Candidates returns a copy of the candidate list for the type.
func (t *RuleTable) Candidates(tt domain.TicketType) []string {
	src := t.rules[tt]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Classify maps raw intake labels to a normalized ticket type. Total:
// every (category, subcategory) pair yields exactly one type, with
// unrecognized input landing on TypeOthers.
func Classify(category, subcategory string) domain.TicketType {
	switch normalize(category) {
	case categoryRepair:
		return domain.TypeRepairAndMaintenance
	case categoryDifficulty:
		return domain.TypeDifficultyInOrder
	case categoryPlaceOrder:
		switch normalize(subcategory) {
		case subcategoryStock:
			return domain.TypeStockItems
		case subcategoryHousekeeping:
			return domain.TypeHousekeeping
		default:
			return domain.TypeOthers
		}
	default:
		return domain.TypeOthers
	}
}

// ChooseAssignee picks one candidate. Singleton lists resolve
// deterministically; larger lists take a single uniform draw from rng.
// The returned bool is false when the list is empty and the ticket
// should wait for manual assignment.
func ChooseAssignee(candidates []string, rng *rand.Rand) (string, bool) {
	switch len(candidates) {
	case 0:
		return "", false
	case 1:
		return candidates[0], true
	default:
		return candidates[rng.Intn(len(candidates))], true
	}
}

func normalize(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}
