package ledger

import (
	"context"
	"fmt"
	"sync"

	"viralstudio/internal/domain"
)

// DefaultWelcomeGrant is credited the first time a wallet is seen.
const DefaultWelcomeGrant = 20

// Ledger tracks coin balances. All mutations go through Credit and Debit and
// persist synchronously. The mutex serializes the check-then-write in Debit;
// nothing else touches balances concurrently.
type Ledger struct {
	mu      sync.Mutex
	store   Store
	welcome int64
}

func New(store Store, welcomeGrant int64) *Ledger {
	if welcomeGrant < 0 {
		welcomeGrant = DefaultWelcomeGrant
	}
	return &Ledger{store: store, welcome: welcomeGrant}
}

// Balance returns the wallet's balance, seeding it with the welcome grant
// (and persisting the seed) the first time the wallet is seen.
func (l *Ledger) Balance(ctx context.Context, wallet string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx, wallet)
}

// Credit adds amount to the wallet and persists the new balance.
func (l *Ledger) Credit(ctx context.Context, wallet string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: credit amount must be positive", domain.ErrInvalidInput)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	balance, err := l.load(ctx, wallet)
	if err != nil {
		return 0, err
	}
	balance += amount
	if err := l.store.Save(ctx, wallet, balance); err != nil {
		return 0, err
	}
	return balance, nil
}

// Debit subtracts amount if the balance covers it, otherwise returns
// domain.ErrInsufficientCoins and leaves the balance untouched.
func (l *Ledger) Debit(ctx context.Context, wallet string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: debit amount must be positive", domain.ErrInvalidInput)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	balance, err := l.load(ctx, wallet)
	if err != nil {
		return 0, err
	}
	if balance < amount {
		return balance, domain.ErrInsufficientCoins
	}
	balance -= amount
	if err := l.store.Save(ctx, wallet, balance); err != nil {
		return 0, err
	}
	return balance, nil
}

func (l *Ledger) load(ctx context.Context, wallet string) (int64, error) {
	balance, ok, err := l.store.Load(ctx, wallet)
	if err != nil {
		return 0, err
	}
	if !ok {
		balance = l.welcome
		if err := l.store.Save(ctx, wallet, balance); err != nil {
			return 0, err
		}
	}
	return balance, nil
}
