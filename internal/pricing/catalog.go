package pricing

import (
	"fmt"

	"viralstudio/internal/domain"
)

// Plan is one purchasable coin bundle. The catalog is fixed at process start
// and never derived from a backend.
type Plan struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Price is the display price in INR; no payment is actually taken, see
	// Purchaser.
	Price   int64 `json:"price"`
	Coins   int64 `json:"coins"`
	Popular bool  `json:"popular,omitempty"`
}

var plans = []Plan{
	{ID: "starter", Name: "Starter", Price: 100, Coins: 100},
	{ID: "growth", Name: "Growth", Price: 250, Coins: 300, Popular: true},
	{ID: "pro", Name: "Pro", Price: 500, Coins: 750},
	{ID: "viral", Name: "Viral", Price: 1000, Coins: 1800},
}

// Plans returns the static catalog in display order.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// Find resolves a plan by ID.
func Find(id string) (Plan, error) {
	for _, p := range plans {
		if p.ID == id {
			return p, nil
		}
	}
	return Plan{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedPlan, id)
}
