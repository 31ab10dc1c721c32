package handlers

import "net/http"

// Wallet reports the caller's coin balance, seeding the welcome grant on
// first sight.
func (a *App) Wallet(w http.ResponseWriter, r *http.Request) {
	wallet := a.wallet(r)
	balance, err := a.Ledger.Balance(r.Context(), wallet)
	if err != nil {
		a.Logger.Error().Err(err).Str("wallet", wallet).Msg("failed to load balance")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load balance")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"wallet":  wallet,
		"balance": balance,
		"cost":    a.Studio.CostPerRun(),
	})
}
