package validation

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateField(t *testing.T) {
	alwaysFail := Custom(func(any) bool { return false }, "custom failed")
	var nilString *string
	blank := ""

	tests := []struct {
		name     string
		value    any
		rules    []Rule
		expected string
	}{
		{"required nil", nil, []Rule{Required("required")}, "required"},
		{"required empty string", "", []Rule{Required("required")}, "required"},
		{"required nil pointer", nilString, []Rule{Required("required")}, "required"},
		{"required pointer to empty", &blank, []Rule{Required("required")}, "required"},
		{"required zero number passes", 0, []Rule{Required("required")}, ""},
		{"optional empty skips custom", "", []Rule{Optional(), alwaysFail}, ""},
		{"optional nil skips custom", nil, []Rule{Optional(), alwaysFail}, ""},
		{"no required rule empty skips all", "", []Rule{MinLength(3, "short"), alwaysFail}, ""},
		{"optional non-empty runs custom", "x", []Rule{Optional(), alwaysFail}, "custom failed"},
		{"min length", "ab", []Rule{MinLength(3, "short")}, "short"},
		{"min length counts runes", "café", []Rule{MaxLength(4, "long")}, ""},
		{"max length", "abcdef", []Rule{MaxLength(5, "long")}, "long"},
		{"length ignores numbers", 12, []Rule{MinLength(5, "short")}, ""},
		{"min", 0, []Rule{Min(1, "too small")}, "too small"},
		{"max float", 10.5, []Rule{Max(10, "too big")}, "too big"},
		{"min ignores strings", "0", []Rule{Min(1, "too small")}, ""},
		{"pattern", "abc", []Rule{Pattern(regexp.MustCompile(`^\d+$`), "digits")}, "digits"},
		{"pattern ok", "123", []Rule{Pattern(regexp.MustCompile(`^\d+$`), "digits")}, ""},
		{
			"first failing rule wins",
			"a",
			[]Rule{Required("required"), MinLength(2, "first"), MaxLength(0, "second")},
			"first",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ValidateField(tc.value, tc.rules))
		})
	}
}

func TestValidateFormReturnsOnlyFailingFields(t *testing.T) {
	schema := Schema{
		"name":  {Required("name required")},
		"age":   {Required("age required"), Min(18, "adults only")},
		"notes": {Optional(), MaxLength(3, "too long")},
	}

	errs := ValidateForm(map[string]any{"name": "Ana", "age": 12}, schema)

	assert.Equal(t, Errors{"age": "adults only"}, errs)
}

func TestBuildTravelContext(t *testing.T) {
	t.Run("Bangsar scenario", func(t *testing.T) {
		ctx, errs := BuildTravelContext(ContextInput{
			Location:  "Bangsar",
			Adults:    2,
			Children:  []ChildInput{{Age: 8}},
			StartDate: "2024-01-01",
			EndDate:   "2024-01-02",
			Budget:    100,
		})

		require.Empty(t, errs)
		assert.Equal(t, "Bangsar", ctx.Location)
		assert.Equal(t, 2, ctx.Group.Adults)
		assert.Len(t, ctx.Group.Children, 1)
		assert.Equal(t, 2, ctx.Dates.Days())
		assert.Equal(t, 100.0, ctx.Budget)
	})

	tests := []struct {
		name  string
		in    ContextInput
		field string
	}{
		{"missing location", ContextInput{Adults: 1, StartDate: "2024-01-01", EndDate: "2024-01-01", Budget: 1}, "location"},
		{"no adults", ContextInput{Location: "KL", Adults: 0, StartDate: "2024-01-01", EndDate: "2024-01-01", Budget: 1}, "adults"},
		{"child too old", ContextInput{Location: "KL", Adults: 1, Children: []ChildInput{{Age: 18}}, StartDate: "2024-01-01", EndDate: "2024-01-01", Budget: 1}, "children"},
		{"bad start date", ContextInput{Location: "KL", Adults: 1, StartDate: "01/01/2024", EndDate: "2024-01-01", Budget: 1}, "startDate"},
		{"end before start", ContextInput{Location: "KL", Adults: 1, StartDate: "2024-01-05", EndDate: "2024-01-01", Budget: 1}, "endDate"},
		{"zero budget", ContextInput{Location: "KL", Adults: 1, StartDate: "2024-01-01", EndDate: "2024-01-01", Budget: 0}, "budget"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, errs := BuildTravelContext(tc.in)
			assert.Contains(t, errs, tc.field)
			assert.Len(t, errs, 1)
		})
	}
}
