package pricing

import (
	"context"

	"github.com/rs/zerolog"

	"viralstudio/internal/ledger"
)

// Purchaser fulfils a plan purchase. The current implementation is a stub for
// a real payment gateway: it credits the coins unconditionally.
//
// TODO: integrate payment authorization (Razorpay order + signature check)
// before shipping; until then every purchase "succeeds".
type Purchaser struct {
	ledger *ledger.Ledger
	logger zerolog.Logger
}

func NewPurchaser(l *ledger.Ledger, logger zerolog.Logger) *Purchaser {
	return &Purchaser{ledger: l, logger: logger}
}

// Purchase credits the plan's coins to the wallet and returns the new
// balance.
func (p *Purchaser) Purchase(ctx context.Context, wallet string, plan Plan) (int64, error) {
	balance, err := p.ledger.Credit(ctx, wallet, plan.Coins)
	if err != nil {
		return 0, err
	}
	p.logger.Info().
		Str("wallet", wallet).
		Str("plan", plan.ID).
		Int64("coins", plan.Coins).
		Int64("price_inr", plan.Price).
		Msg("stub purchase fulfilled without payment authorization")
	return balance, nil
}
