package bot

import (
	"fmt"

	"crypto-trading-bot-go/internal/models"

	"github.com/shopspring/decimal"
)

// sizeToRule converts a quote-asset budget into an order quantity that
// satisfies the exchange LOT_SIZE filter: the raw quantity is floored to the
// nearest step-size multiple.
//
// When the floored quantity falls below the exchange minimum the policy
// depends on rejectBelowMin: either the trade is refused, or the minimum is
// returned anyway (the original behavior) — which can spend more than the
// budget. clamped reports that the second path was taken so the caller can
// warn about the overspend.
func sizeToRule(amount, price float64, rule *models.SymbolRule, rejectBelowMin bool) (quantity float64, clamped bool, err error) {
	if price <= 0 {
		return 0, false, fmt.Errorf("invalid price %f", price)
	}
	if rule == nil {
		return 0, false, fmt.Errorf("missing trading rule")
	}

	step, err := decimal.NewFromString(rule.StepSize)
	if err != nil || step.IsZero() || step.IsNegative() {
		return 0, false, fmt.Errorf("invalid step size %q", rule.StepSize)
	}
	min, err := decimal.NewFromString(rule.MinQuantity)
	if err != nil || min.IsNegative() {
		return 0, false, fmt.Errorf("invalid min quantity %q", rule.MinQuantity)
	}

	raw := decimal.NewFromFloat(amount).Div(decimal.NewFromFloat(price))
	qty := raw.Div(step).Floor().Mul(step)

	if qty.LessThan(min) {
		if rejectBelowMin {
			return 0, false, fmt.Errorf("budget %.8f sizes below the exchange minimum %s", amount, rule.MinQuantity)
		}
		return min.InexactFloat64(), true, nil
	}
	return qty.InexactFloat64(), false, nil
}
