package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"viralstudio/internal/ledger"
	"viralstudio/internal/metrics"
	"viralstudio/internal/pricing"
	"viralstudio/internal/studio"
)

// DefaultWallet is used when the caller does not identify itself. The product
// has no accounts; a wallet is whatever the front-end stores client-side.
const DefaultWallet = "default"

type App struct {
	Logger    zerolog.Logger
	Studio    *studio.Studio
	Ledger    *ledger.Ledger
	Purchaser *pricing.Purchaser
	Metrics   *metrics.Metrics
}

func NewApp(logger zerolog.Logger, st *studio.Studio, led *ledger.Ledger, purchaser *pricing.Purchaser, m *metrics.Metrics) *App {
	return &App{Logger: logger, Studio: st, Ledger: led, Purchaser: purchaser, Metrics: m}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]string{"error": errCode, "message": message})
}

func (a *App) wallet(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-Wallet-ID")); id != "" {
		return id
	}
	return DefaultWallet
}
