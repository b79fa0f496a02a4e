package bot

import (
	"testing"

	"crypto-trading-bot-go/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rule(min, step string) *models.SymbolRule {
	return &models.SymbolRule{MinQuantity: min, StepSize: step}
}

func TestSizeToRuleFloorsToStep(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		price  float64
		min    string
		step   string
		want   float64
	}{
		{"exact multiple", 30, 1.0, "1", "1", 30},
		{"floors remainder", 10, 3.0, "0.5", "0.5", 3.0},
		{"fine grained step", 25, 0.175, "1", "0.1", 142.8},
		{"step of one", 100, 7.0, "1", "1", 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, clamped, err := sizeToRule(tt.amount, tt.price, rule(tt.min, tt.step), false)
			require.NoError(t, err)
			assert.False(t, clamped)
			assert.InDelta(t, tt.want, got, 1e-9)

			// The result must be an exact multiple of the step.
			step := decimal.RequireFromString(tt.step)
			assert.True(t, decimal.NewFromFloat(got).Div(step).IsInteger(),
				"%v is not a multiple of %s", got, tt.step)
			// And never exceed the budget on this path.
			assert.LessOrEqual(t, got*tt.price, tt.amount+1e-9)
		})
	}
}

func TestSizeToRuleClampsToMinimum(t *testing.T) {
	// 1 USDT at price 100 sizes to 0.01, below the 0.1 minimum.
	got, clamped, err := sizeToRule(1, 100, rule("0.1", "0.001"), false)
	require.NoError(t, err)
	assert.True(t, clamped, "caller must be told about the overspend")
	assert.Equal(t, 0.1, got)
}

func TestSizeToRuleRejectPolicy(t *testing.T) {
	_, _, err := sizeToRule(1, 100, rule("0.1", "0.001"), true)
	assert.Error(t, err, "reject policy refuses trades the budget cannot cover")
}

func TestSizeToRuleInvalidInputs(t *testing.T) {
	_, _, err := sizeToRule(30, 0, rule("1", "1"), false)
	assert.Error(t, err, "zero price")

	_, _, err = sizeToRule(30, -2, rule("1", "1"), false)
	assert.Error(t, err, "negative price")

	_, _, err = sizeToRule(30, 1, nil, false)
	assert.Error(t, err, "missing rule")

	_, _, err = sizeToRule(30, 1, rule("1", "0"), false)
	assert.Error(t, err, "zero step size")

	_, _, err = sizeToRule(30, 1, rule("1", "bogus"), false)
	assert.Error(t, err, "unparsable step size")
}
