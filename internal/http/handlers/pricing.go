package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"viralstudio/internal/domain"
	"viralstudio/internal/pricing"
)

// Pricing returns the static plan catalog.
func (a *App) Pricing(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"plans": pricing.Plans(),
		"cost":  a.Studio.CostPerRun(),
	})
}

// Purchase fulfils a plan purchase for the caller's wallet. Payment is
// stubbed: coins are credited unconditionally.
func (a *App) Purchase(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "plan_id")
	plan, err := pricing.Find(planID)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedPlan) {
			a.error(w, http.StatusNotFound, "unsupported_plan", "unknown pricing plan")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to resolve plan")
		return
	}
	wallet := a.wallet(r)
	balance, err := a.Purchaser.Purchase(r.Context(), wallet, plan)
	if err != nil {
		a.Logger.Error().Err(err).Str("wallet", wallet).Str("plan", plan.ID).Msg("purchase failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to credit coins")
		return
	}
	if a.Metrics != nil {
		a.Metrics.Purchases.WithLabelValues(plan.ID).Inc()
		a.Metrics.CoinsCredited.Add(float64(plan.Coins))
	}
	a.json(w, http.StatusOK, map[string]any{
		"wallet":  wallet,
		"plan":    plan,
		"balance": balance,
		"payment": "simulated",
	})
}
