package routing

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/outlet-ops/internal/domain"
)

func defaultRules() map[domain.TicketType][]string {
	return map[domain.TicketType][]string{
		domain.TypeRepairAndMaintenance: {"Nishat"},
		domain.TypeDifficultyInOrder:    {},
		domain.TypeStockItems:           {"Nishat", "Ajay"},
		domain.TypeHousekeeping:         {"Kim"},
		domain.TypeOthers:               {"Kim"},
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name        string
		category    string
		subcategory string
		want        domain.TicketType
	}{
		{"repair", "Repair and Maintenance", "", domain.TypeRepairAndMaintenance},
		{"difficulty", "Difficulty in Order", "", domain.TypeDifficultyInOrder},
		{"stock", "Place an Order", "Stock Items", domain.TypeStockItems},
		{"housekeeping", "Place an Order", "Housekeeping", domain.TypeHousekeeping},
		{"order unknown sub", "Place an Order", "Packaging", domain.TypeOthers},
		{"order missing sub", "Place an Order", "", domain.TypeOthers},
		{"unknown category", "Something Else", "Stock Items", domain.TypeOthers},
		{"empty", "", "", domain.TypeOthers},
		{"case and spacing", "  repair AND maintenance ", "", domain.TypeRepairAndMaintenance},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.category, tc.subcategory))
		})
	}
}

func TestClassifyTotality(t *testing.T) {
	known := map[domain.TicketType]bool{}
	for _, tt := range domain.TicketTypes() {
		known[tt] = true
	}
	inputs := []string{"", "Repair and Maintenance", "Place an Order", "garbage", "ORDER", "null"}
	for _, cat := range inputs {
		for _, sub := range inputs {
			got := Classify(cat, sub)
			assert.True(t, known[got], "Classify(%q, %q) returned unknown type %q", cat, sub, got)
		}
	}
}

func TestNewRuleTableRequiresAllTypes(t *testing.T) {
	rules := defaultRules()
	delete(rules, domain.TypeHousekeeping)
	_, err := NewRuleTable(rules)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HOUSEKEEPING")
}

func TestRuleTableCandidatesIsolated(t *testing.T) {
	table, err := NewRuleTable(defaultRules())
	require.NoError(t, err)

	first := table.Candidates(domain.TypeStockItems)
	first[0] = "mutated"
	assert.Equal(t, []string{"Nishat", "Ajay"}, table.Candidates(domain.TypeStockItems))
}

func TestChooseAssigneeSingleton(t *testing.T) {
	table, err := NewRuleTable(defaultRules())
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(1))

	for _, tt := range []domain.TicketType{domain.TypeRepairAndMaintenance, domain.TypeHousekeeping, domain.TypeOthers} {
		candidates := table.Candidates(tt)
		for i := 0; i < 10; i++ {
			name, ok := ChooseAssignee(candidates, rng)
			require.True(t, ok)
			assert.Equal(t, candidates[0], name)
		}
	}
}

func TestChooseAssigneeEmpty(t *testing.T) {
	table, err := NewRuleTable(defaultRules())
	require.NoError(t, err)

	name, ok := ChooseAssignee(table.Candidates(domain.TypeDifficultyInOrder), rand.New(rand.NewSource(1)))
	assert.False(t, ok)
	assert.Empty(t, name)
}

func TestChooseAssigneeUniformOverCandidates(t *testing.T) {
	table, err := NewRuleTable(defaultRules())
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(42))

	seen := map[string]int{}
	for i := 0; i < 1000; i++ {
		name, ok := ChooseAssignee(table.Candidates(domain.TypeStockItems), rng)
		require.True(t, ok)
		seen[name]++
	}
	assert.Len(t, seen, 2)
	assert.Greater(t, seen["Nishat"], 0)
	assert.Greater(t, seen["Ajay"], 0)
}
