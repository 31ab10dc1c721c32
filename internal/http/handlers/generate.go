package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"viralstudio/internal/domain"
	"viralstudio/internal/middleware"
	"viralstudio/internal/pricing"
	"viralstudio/internal/studio"
)

type generateRequest struct {
	Title string `json:"title"`
	// Image is the photo as a base64 data URI, exactly as a browser file
	// reader produces it.
	Image string `json:"image"`
}

type generateResponse struct {
	Asset   *domain.VideoAsset `json:"asset"`
	Balance int64              `json:"balance"`
	Status  studio.Status      `json:"status"`
}

// Generate runs one end-to-end generation for the caller's wallet.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	wallet := a.wallet(r)

	// A missing or malformed image fails input validation downstream; the
	// credit gate still runs first, so the parse error is not reported here.
	img, parseErr := domain.ParseDataURI(req.Image)
	if parseErr != nil {
		img = domain.EncodedImage{}
	}

	asset, err := a.Studio.Run(r.Context(), wallet, domain.GenerationRequest{Title: req.Title, Image: img})
	if err != nil {
		a.generateError(w, r, wallet, locale, err)
		return
	}

	balance, err := a.Ledger.Balance(r.Context(), wallet)
	if err != nil {
		a.Logger.Error().Err(err).Str("wallet", wallet).Msg("failed to read balance after run")
	}
	a.json(w, http.StatusOK, generateResponse{
		Asset:   asset,
		Balance: balance,
		Status:  a.Studio.Status(wallet),
	})
}

func (a *App) generateError(w http.ResponseWriter, r *http.Request, wallet, locale string, err error) {
	switch {
	case errors.Is(err, domain.ErrRunInFlight):
		a.error(w, http.StatusConflict, "run_in_flight", "a generation is already running for this wallet")
	case errors.Is(err, domain.ErrInsufficientCoins):
		// Routed to the purchase flow rather than an error message.
		balance, _ := a.Ledger.Balance(r.Context(), wallet)
		a.json(w, http.StatusPaymentRequired, map[string]any{
			"error":    "insufficient_coins",
			"message":  message("low_coins", locale),
			"balance":  balance,
			"cost":     a.Studio.CostPerRun(),
			"plans":    pricing.Plans(),
			"purchase": "POST /v1/pricing/{plan_id}/purchase",
		})
	case errors.Is(err, domain.ErrInvalidInput):
		a.error(w, http.StatusUnprocessableEntity, "validation", message("validation", locale))
	default:
		// Detail stays in the orchestrator's logs; users only ever see the
		// generic message.
		a.error(w, http.StatusBadGateway, "generation_failed", message("generation_failed", locale))
	}
}

// Status reports the wallet's workflow snapshot and last published asset.
func (a *App) Status(w http.ResponseWriter, r *http.Request) {
	wallet := a.wallet(r)
	a.json(w, http.StatusOK, map[string]any{
		"status": a.Studio.Status(wallet),
		"asset":  a.Studio.Result(wallet),
	})
}

// Reset clears the wallet's published asset and status.
func (a *App) Reset(w http.ResponseWriter, r *http.Request) {
	wallet := a.wallet(r)
	if err := a.Studio.Reset(wallet); err != nil {
		a.error(w, http.StatusConflict, "run_in_flight", "cannot reset while a generation is running")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"status": a.Studio.Status(wallet)})
}
