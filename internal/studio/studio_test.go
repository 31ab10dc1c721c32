package studio

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"viralstudio/internal/domain"
	"viralstudio/internal/ledger"
)

type fakeContent struct {
	mu      sync.Mutex
	calls   int
	asset   *domain.VideoAsset
	err     error
	started chan struct{}
	block   chan struct{}
}

func (f *fakeContent) Generate(ctx context.Context, title string) (*domain.VideoAsset, error) {
	f.mu.Lock()
	f.calls++
	if f.calls == 1 && f.started != nil {
		close(f.started)
	}
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	asset := *f.asset
	asset.OriginalTitle = title
	return &asset, nil
}

func (f *fakeContent) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeThumbs struct {
	mu       sync.Mutex
	calls    int
	gotTitle string
	img      domain.EncodedImage
	err      error
}

func (f *fakeThumbs) Generate(ctx context.Context, source domain.EncodedImage, title string) (domain.EncodedImage, error) {
	f.mu.Lock()
	f.calls++
	f.gotTitle = title
	f.mu.Unlock()
	if f.err != nil {
		return domain.EncodedImage{}, f.err
	}
	return f.img, nil
}

func (f *fakeThumbs) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var testAsset = domain.VideoAsset{
	OptimizedTitle:   "PARIS Changed My Life",
	Description:      "Come along...",
	Hashtags:         []string{"#travel", "#vlog"},
	ViralityScore:    82,
	ViralityAnalysis: "Strong hook.",
}

var testImage = domain.EncodedImage{MimeType: "image/png", Data: []byte("photo")}

func validRequest() domain.GenerationRequest {
	return domain.GenerationRequest{Title: "My first travel vlog to Paris", Image: testImage}
}

type fixture struct {
	studio  *Studio
	ledger  *ledger.Ledger
	content *fakeContent
	thumbs  *fakeThumbs
}

func newFixture(t *testing.T, content *fakeContent, thumbs *fakeThumbs) *fixture {
	t.Helper()
	store, err := ledger.OpenBadger("")
	if err != nil {
		t.Fatalf("OpenBadger error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	led := ledger.New(store, ledger.DefaultWelcomeGrant)
	s, err := New(Options{
		Content:    content,
		Thumbnails: thumbs,
		Ledger:     led,
		CostPerRun: DefaultCostPerRun,
		Logger:     zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return &fixture{studio: s, ledger: led, content: content, thumbs: thumbs}
}

func TestRunHappyPath(t *testing.T) {
	content := &fakeContent{asset: &testAsset}
	thumbs := &fakeThumbs{img: domain.EncodedImage{MimeType: "image/png", Data: []byte("thumb")}}
	f := newFixture(t, content, thumbs)
	ctx := context.Background()

	asset, err := f.studio.Run(ctx, "w1", validRequest())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if asset.OriginalTitle != "My first travel vlog to Paris" {
		t.Fatalf("original title mismatch: %q", asset.OriginalTitle)
	}
	if asset.ViralityScore != 82 {
		t.Fatalf("score mismatch: %d", asset.ViralityScore)
	}
	if !strings.HasPrefix(asset.ThumbnailURL, "data:image/png;base64,") {
		t.Fatalf("thumbnail URL missing: %q", asset.ThumbnailURL)
	}
	if thumbs.gotTitle != "PARIS Changed My Life" {
		t.Fatalf("thumbnail must receive the optimized title, got %q", thumbs.gotTitle)
	}

	// Welcome grant 20 minus one run: 10 left.
	balance, err := f.ledger.Balance(ctx, "w1")
	if err != nil {
		t.Fatalf("Balance error: %v", err)
	}
	if balance != 10 {
		t.Fatalf("balance mismatch: %d", balance)
	}
	if got := f.studio.Result("w1"); got == nil || got.OptimizedTitle != asset.OptimizedTitle {
		t.Fatalf("published result mismatch: %+v", got)
	}
	if status := f.studio.Status("w1"); status.State != StateIdle || status.Running || status.Error != "" {
		t.Fatalf("expected idle status, got %+v", status)
	}
}

func TestRunInsufficientCoinsNeverCallsProviders(t *testing.T) {
	content := &fakeContent{asset: &testAsset}
	thumbs := &fakeThumbs{img: testImage}
	f := newFixture(t, content, thumbs)
	ctx := context.Background()

	// Drain the wallet to 5 coins.
	if _, err := f.ledger.Debit(ctx, "w1", 15); err != nil {
		t.Fatalf("Debit error: %v", err)
	}

	_, err := f.studio.Run(ctx, "w1", validRequest())
	if !errors.Is(err, domain.ErrInsufficientCoins) {
		t.Fatalf("expected ErrInsufficientCoins, got %v", err)
	}
	if content.callCount() != 0 || thumbs.callCount() != 0 {
		t.Fatalf("providers must not be called: content=%d thumbs=%d", content.callCount(), thumbs.callCount())
	}
	balance, _ := f.ledger.Balance(ctx, "w1")
	if balance != 5 {
		t.Fatalf("balance must be untouched: %d", balance)
	}
}

func TestRunCreditGateBeforeValidation(t *testing.T) {
	content := &fakeContent{asset: &testAsset}
	f := newFixture(t, content, &fakeThumbs{img: testImage})
	ctx := context.Background()
	if _, err := f.ledger.Debit(ctx, "w1", 15); err != nil {
		t.Fatalf("Debit error: %v", err)
	}

	// Empty request AND low balance: the coin gate wins.
	_, err := f.studio.Run(ctx, "w1", domain.GenerationRequest{})
	if !errors.Is(err, domain.ErrInsufficientCoins) {
		t.Fatalf("expected ErrInsufficientCoins, got %v", err)
	}
}

func TestRunValidationRejectsMissingInput(t *testing.T) {
	content := &fakeContent{asset: &testAsset}
	f := newFixture(t, content, &fakeThumbs{img: testImage})
	ctx := context.Background()

	_, err := f.studio.Run(ctx, "w1", domain.GenerationRequest{Title: "ok"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if content.callCount() != 0 {
		t.Fatalf("content must not be called on invalid input")
	}
	balance, _ := f.ledger.Balance(ctx, "w1")
	if balance != 20 {
		t.Fatalf("balance must be untouched: %d", balance)
	}
}

func TestRunContentFailureDebitsNothing(t *testing.T) {
	content := &fakeContent{err: errors.New("boom")}
	thumbs := &fakeThumbs{img: testImage}
	f := newFixture(t, content, thumbs)
	ctx := context.Background()

	_, err := f.studio.Run(ctx, "w1", validRequest())
	if err == nil {
		t.Fatal("expected error")
	}
	if thumbs.callCount() != 0 {
		t.Fatal("thumbnail must not run after content failure")
	}
	balance, _ := f.ledger.Balance(ctx, "w1")
	if balance != 20 {
		t.Fatalf("balance must be untouched: %d", balance)
	}
	if status := f.studio.Status("w1"); status.Error != GenericFailure {
		t.Fatalf("expected generic failure status, got %+v", status)
	}
}

func TestRunThumbnailFailureDiscardsContent(t *testing.T) {
	content := &fakeContent{asset: &testAsset}
	thumbs := &fakeThumbs{err: domain.ErrNoImage}
	f := newFixture(t, content, thumbs)
	ctx := context.Background()

	_, err := f.studio.Run(ctx, "w1", validRequest())
	if !errors.Is(err, domain.ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
	balance, _ := f.ledger.Balance(ctx, "w1")
	if balance != 20 {
		t.Fatalf("balance must be untouched: %d", balance)
	}
	if got := f.studio.Result("w1"); got != nil {
		t.Fatalf("no partial asset may be published, got %+v", got)
	}
	if status := f.studio.Status("w1"); status.Error != GenericFailure {
		t.Fatalf("expected generic failure status, got %+v", status)
	}
}

func TestRunSecondInvocationWhileRunning(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{})
	content := &fakeContent{asset: &testAsset, block: block, started: started}
	thumbs := &fakeThumbs{img: testImage}
	f := newFixture(t, content, thumbs)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := f.studio.Run(ctx, "w1", validRequest())
		done <- err
	}()

	// Wait until the first run reached the content call.
	<-started

	_, err := f.studio.Run(ctx, "w1", validRequest())
	if !errors.Is(err, domain.ErrRunInFlight) {
		t.Fatalf("expected ErrRunInFlight, got %v", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first run failed: %v", err)
	}
}

func TestResetClearsPublishedAsset(t *testing.T) {
	content := &fakeContent{asset: &testAsset}
	thumbs := &fakeThumbs{img: testImage}
	f := newFixture(t, content, thumbs)
	ctx := context.Background()

	if _, err := f.studio.Run(ctx, "w1", validRequest()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if f.studio.Result("w1") == nil {
		t.Fatal("expected a published asset")
	}
	if err := f.studio.Reset("w1"); err != nil {
		t.Fatalf("Reset error: %v", err)
	}
	if f.studio.Result("w1") != nil {
		t.Fatal("reset must clear the asset")
	}
	if status := f.studio.Status("w1"); status.State != StateIdle || status.Message != "" || status.Error != "" {
		t.Fatalf("reset must return to pristine idle, got %+v", status)
	}
}

func TestRunsAreIndependentPerWallet(t *testing.T) {
	content := &fakeContent{asset: &testAsset}
	thumbs := &fakeThumbs{img: testImage}
	f := newFixture(t, content, thumbs)
	ctx := context.Background()

	if _, err := f.studio.Run(ctx, "a", validRequest()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if f.studio.Result("b") != nil {
		t.Fatal("wallet b must not see wallet a's asset")
	}
	balanceB, _ := f.ledger.Balance(ctx, "b")
	if balanceB != 20 {
		t.Fatalf("wallet b balance must be untouched: %d", balanceB)
	}
}
