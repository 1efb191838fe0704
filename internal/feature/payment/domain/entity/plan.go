// Package entity defines the domain entities for the payment feature.
package entity

// Plan maps a paid amount (in minor currency units) to subscription days.
type Plan struct {
	Amount int64
	Days   int
}

// Plans is the fixed price list: 1, 2 or 3 currency units buy 30, 60 or 90 days.
var Plans = []Plan{
	{Amount: 100, Days: 30},
	{Amount: 200, Days: 60},
	{Amount: 300, Days: 90},
}

// PlanForAmount returns the plan whose price equals amount.
func PlanForAmount(amount int64) (Plan, bool) {
	for _, p := range Plans {
		if p.Amount == amount {
			return p, true
		}
	}
	return Plan{}, false
}
