package studio

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"viralstudio/internal/domain"
	"viralstudio/internal/ledger"
	"viralstudio/internal/metrics"
)

// DefaultCostPerRun is debited once per successful generation run.
const DefaultCostPerRun = 10

// ContentGenerator produces the optimized copy for a title.
type ContentGenerator interface {
	Generate(ctx context.Context, title string) (*domain.VideoAsset, error)
}

// ThumbnailGenerator renders a thumbnail from a source photo and a title.
type ThumbnailGenerator interface {
	Generate(ctx context.Context, source domain.EncodedImage, title string) (domain.EncodedImage, error)
}

// Archive keeps a server-side copy of rendered thumbnails. Optional.
type Archive interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
}

type Options struct {
	Content    ContentGenerator
	Thumbnails ThumbnailGenerator
	Ledger     *ledger.Ledger
	CostPerRun int64
	Archive    Archive
	Metrics    *metrics.Metrics
	Logger     zerolog.Logger
}

// Studio sequences one generation run: credit check, input validation,
// content call, thumbnail call, merge, debit. The two remote calls are
// strictly sequential and the debit happens only after both succeed. One run
// per wallet may be in flight; a second invocation gets ErrRunInFlight.
type Studio struct {
	content ContentGenerator
	thumbs  ThumbnailGenerator
	ledger  *ledger.Ledger
	cost    int64
	archive Archive
	metrics *metrics.Metrics
	logger  zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// session is the per-wallet workflow state: the status snapshot and the last
// published asset. A new run replaces the asset wholesale.
type session struct {
	running bool
	status  Status
	result  *domain.VideoAsset
}

func New(opts Options) (*Studio, error) {
	if opts.Content == nil || opts.Thumbnails == nil {
		return nil, errors.New("studio: content and thumbnail generators are required")
	}
	if opts.Ledger == nil {
		return nil, errors.New("studio: ledger is required")
	}
	cost := opts.CostPerRun
	if cost <= 0 {
		cost = DefaultCostPerRun
	}
	return &Studio{
		content:  opts.Content,
		thumbs:   opts.Thumbnails,
		ledger:   opts.Ledger,
		cost:     cost,
		archive:  opts.Archive,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		sessions: make(map[string]*session),
	}, nil
}

// CostPerRun reports the fixed coin price of one run.
func (s *Studio) CostPerRun() int64 {
	return s.cost
}

// Run executes one generation end to end and publishes the merged asset.
// Check order matches the product flow: credit gate first (the caller routes
// ErrInsufficientCoins to the purchase flow), then input validation, then the
// two remote calls. Nothing is debited and no partial result survives unless
// both calls succeed.
func (s *Studio) Run(ctx context.Context, wallet string, req domain.GenerationRequest) (*domain.VideoAsset, error) {
	sess, err := s.begin(wallet)
	if err != nil {
		return nil, err
	}
	defer s.end(wallet)

	s.setStatus(sess, statusRunning(StateCheckingCredit, MsgCheckingCredits))
	balance, err := s.ledger.Balance(ctx, wallet)
	if err != nil {
		s.setStatus(sess, statusFailed(GenericFailure))
		return nil, err
	}
	if balance < s.cost {
		s.setStatus(sess, statusIdle())
		s.countRun(metrics.OutcomeInsufficientCoin)
		return nil, domain.ErrInsufficientCoins
	}
	if err := req.Validate(); err != nil {
		s.setStatus(sess, statusIdle())
		s.countRun(metrics.OutcomeInvalidInput)
		return nil, err
	}

	started := time.Now()
	s.mu.Lock()
	sess.result = nil // gates passed, the previous asset is now stale
	sess.status = statusRunning(StateGeneratingContent, MsgOptimizing)
	s.mu.Unlock()
	asset, err := s.content.Generate(ctx, req.Title)
	if err != nil {
		s.logger.Error().Err(err).Str("wallet", wallet).Msg("content generation failed")
		s.setStatus(sess, statusFailed(GenericFailure))
		s.countRun(metrics.OutcomeContentFailed)
		return nil, err
	}

	s.setStatus(sess, statusRunning(StateGeneratingThumbnail, MsgThumbnail))
	thumb, err := s.thumbs.Generate(ctx, req.Image, asset.OptimizedTitle)
	if err != nil {
		// The content result is discarded along with the run.
		s.logger.Error().Err(err).Str("wallet", wallet).Msg("thumbnail generation failed")
		s.setStatus(sess, statusFailed(GenericFailure))
		s.countRun(metrics.OutcomeThumbnailFailed)
		return nil, err
	}
	asset.ThumbnailURL = thumb.DataURI()

	if _, err := s.ledger.Debit(ctx, wallet, s.cost); err != nil {
		s.logger.Error().Err(err).Str("wallet", wallet).Msg("debit after successful run failed")
		s.setStatus(sess, statusFailed(GenericFailure))
		return nil, err
	}
	s.archiveThumbnail(ctx, wallet, thumb)

	s.mu.Lock()
	sess.result = asset
	sess.status = statusIdle()
	s.mu.Unlock()

	s.countRun(metrics.OutcomeSuccess)
	if s.metrics != nil {
		s.metrics.CoinsDebited.Add(float64(s.cost))
		s.metrics.GenerationDuration.Observe(time.Since(started).Seconds())
	}
	s.logger.Info().
		Str("wallet", wallet).
		Int("virality_score", asset.ViralityScore).
		Dur("took", time.Since(started)).
		Msg("generation run completed")
	return asset, nil
}

// Status returns the wallet's current workflow snapshot.
func (s *Studio) Status(wallet string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[wallet]; ok {
		return sess.status
	}
	return statusIdle()
}

// Result returns the last published asset, or nil.
func (s *Studio) Result(wallet string) *domain.VideoAsset {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[wallet]; ok {
		return sess.result
	}
	return nil
}

// Reset clears the published asset and status so the wallet returns to its
// pristine idle state. It refuses to interrupt an active run.
func (s *Studio) Reset(wallet string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[wallet]
	if !ok {
		return nil
	}
	if sess.running {
		return domain.ErrRunInFlight
	}
	delete(s.sessions, wallet)
	return nil
}

func (s *Studio) begin(wallet string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[wallet]
	if !ok {
		sess = &session{status: statusIdle()}
		s.sessions[wallet] = sess
	}
	if sess.running {
		return nil, domain.ErrRunInFlight
	}
	sess.running = true
	return sess, nil
}

func (s *Studio) end(wallet string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[wallet]; ok {
		sess.running = false
	}
}

func (s *Studio) setStatus(sess *session, status Status) {
	s.mu.Lock()
	sess.status = status
	s.mu.Unlock()
}

func (s *Studio) countRun(outcome string) {
	if s.metrics != nil {
		s.metrics.GenerationRuns.WithLabelValues(outcome).Inc()
	}
}

// archiveThumbnail is best effort: a failed write never fails the run.
func (s *Studio) archiveThumbnail(ctx context.Context, wallet string, img domain.EncodedImage) {
	if s.archive == nil {
		return
	}
	key := fmt.Sprintf("%s/%s%s", wallet, uuid.NewString(), extensionFor(img.MimeType))
	if _, err := s.archive.Write(ctx, key, img.Data); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to archive thumbnail")
	}
}

func extensionFor(mimeType string) string {
	exts, err := mime.ExtensionsByType(mimeType)
	if err != nil || len(exts) == 0 {
		return ".png"
	}
	return exts[0]
}
