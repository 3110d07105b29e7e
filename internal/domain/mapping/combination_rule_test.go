package mapping

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRule(t *testing.T, value1, value2 string) *CombinationRule {
	t.Helper()
	rule, err := NewCombinationRule(uuid.New(), "test rule", uuid.New(), uuid.New(), value1, value2)
	require.NoError(t, err)
	return rule
}

func TestNewCombinationRule(t *testing.T) {
	t.Run("rejects identical field references", func(t *testing.T) {
		fieldID := uuid.New()
		_, err := NewCombinationRule(uuid.New(), "bad", fieldID, fieldID, "a", "b")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "two different columns")
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewCombinationRule(uuid.New(), "  ", uuid.New(), uuid.New(), "a", "b")
		require.Error(t, err)
	})

	t.Run("seeds the default combination pattern", func(t *testing.T) {
		rule := newTestRule(t, "a", "b")
		assert.Equal(t, "{0}-{1}", rule.CombinationPattern)
	})
}

func TestCombinationRuleMatches(t *testing.T) {
	t.Run("compares case-insensitively on trimmed values", func(t *testing.T) {
		rule := newTestRule(t, "UC11", "EU868")
		assert.True(t, rule.Matches("uc11", " eu868 "))
		assert.False(t, rule.Matches("uc11", "us915"))
	})

	t.Run("wildcard matches anything", func(t *testing.T) {
		rule := newTestRule(t, "UC11", "*")
		assert.True(t, rule.Matches("UC11", "whatever"))
		assert.True(t, rule.Matches("UC11", ""))
		assert.False(t, rule.Matches("UC12", "whatever"))
	})
}

func TestCombinationRuleCombine(t *testing.T) {
	t.Run("substitutes both values into the pattern", func(t *testing.T) {
		rule := newTestRule(t, "*", "*")
		require.NoError(t, rule.SetPattern("{0}-{1}", ""))
		assert.Equal(t, "UC11-EU868", rule.Combine("UC11", "EU868", "fallback"))
	})

	t.Run("regex extracts the first capture group", func(t *testing.T) {
		rule := newTestRule(t, "*", "*")
		require.NoError(t, rule.SetPattern("{0}-{1}", `^(\w+)-`))
		assert.Equal(t, "UC11", rule.Combine("UC11", "EU868", "fallback"))
	})

	t.Run("regex without groups returns the whole match", func(t *testing.T) {
		rule := newTestRule(t, "*", "*")
		require.NoError(t, rule.SetPattern("{0}{1}", `\d+`))
		assert.Equal(t, "11868", rule.Combine("UC", "11868", "fallback"))
	})

	t.Run("falls back when regex does not match", func(t *testing.T) {
		rule := newTestRule(t, "*", "*")
		require.NoError(t, rule.SetPattern("{0}-{1}", `^\d{10}$`))
		assert.Equal(t, "fallback", rule.Combine("UC11", "EU868", "fallback"))
	})

	t.Run("falls back without a pattern", func(t *testing.T) {
		rule := newTestRule(t, "*", "*")
		rule.CombinationPattern = "" // legacy row predating the constraint
		assert.Equal(t, "fallback", rule.Combine("UC11", "EU868", "fallback"))
	})

	t.Run("rejects an invalid regex at configuration time", func(t *testing.T) {
		rule := newTestRule(t, "*", "*")
		err := rule.SetPattern("{0}-{1}", "([")
		require.Error(t, err)
	})

	t.Run("rejects a pattern missing a placeholder", func(t *testing.T) {
		rule := newTestRule(t, "*", "*")
		for _, pattern := range []string{"", "UC11-868M", "{0} only", "{1} only"} {
			err := rule.SetPattern(pattern, "")
			require.Error(t, err, pattern)
			assert.Contains(t, err.Error(), "{0} and {1}")
		}
		// the rejected patterns never replace the stored one
		assert.Equal(t, "{0}-{1}", rule.CombinationPattern)
	})
}

func TestMarkSerialApplied(t *testing.T) {
	t.Run("counts each serial once", func(t *testing.T) {
		rule := newTestRule(t, "*", "*")

		assert.True(t, rule.MarkSerialApplied("SN-001"))
		assert.True(t, rule.MarkSerialApplied("SN-002"))
		assert.Equal(t, 2, rule.UsageCount)

		assert.False(t, rule.MarkSerialApplied("SN-001"))
		assert.Equal(t, 2, rule.UsageCount)
	})

	t.Run("ignores empty serials", func(t *testing.T) {
		rule := newTestRule(t, "*", "*")
		assert.False(t, rule.MarkSerialApplied("  "))
		assert.Equal(t, 0, rule.UsageCount)
	})

	t.Run("survives a persistence round trip", func(t *testing.T) {
		rule := newTestRule(t, "*", "*")
		rule.MarkSerialApplied("SN-001")

		reloaded := newTestRule(t, "*", "*")
		reloaded.AppliedSerials = rule.AppliedSerials
		reloaded.UsageCount = rule.UsageCount

		assert.False(t, reloaded.MarkSerialApplied("SN-001"))
		assert.True(t, reloaded.MarkSerialApplied("SN-002"))
		assert.Equal(t, 2, reloaded.UsageCount)
	})
}
