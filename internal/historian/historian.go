// Package historian drains the action log into the result store in batches and
// marks games abandoned once they go quiet.
package historian

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/monopoly/internal/database"
	"github.com/jason-s-yu/monopoly/internal/metrics"
	"github.com/jason-s-yu/monopoly/internal/models"
	"github.com/sirupsen/logrus"
)

// gameEndAction is the action type logged when a game finishes.
const gameEndAction = "game-end"

// Source yields queued action records. cache.ActionLog satisfies it.
type Source interface {
	Pop(ctx context.Context, timeout time.Duration) (models.ActionRecord, bool, error)
}

type Options struct {
	BatchSize     int
	FlushInterval time.Duration
	// Inactivity is how long a game may go without actions before it is marked abandoned.
	Inactivity time.Duration
	// PopTimeout bounds each blocking read so cancellation is noticed.
	PopTimeout time.Duration
	Logger     *logrus.Entry
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = 20
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = 500 * time.Millisecond
	}
	if o.Inactivity <= 0 {
		o.Inactivity = 10 * time.Minute
	}
	if o.PopTimeout <= 0 {
		o.PopTimeout = 3 * time.Second
	}
	if o.Logger == nil {
		o.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return o
}

type Service struct {
	source Source
	store  database.Store
	opts   Options
	log    *logrus.Entry
	now    func() time.Time

	activityMu   sync.Mutex
	lastActivity map[uuid.UUID]time.Time

	batchMu sync.Mutex
	batch   []models.ActionRecord
}

func New(source Source, store database.Store, opts Options) *Service {
	opts = opts.withDefaults()
	return &Service{
		source:       source,
		store:        store,
		opts:         opts,
		log:          opts.Logger,
		now:          time.Now,
		lastActivity: make(map[uuid.UUID]time.Time),
		batch:        make([]models.ActionRecord, 0, opts.BatchSize),
	}
}

// Run starts the read loop and the inactivity sweep, blocking until ctx is
// done. Whatever is still batched is flushed before it returns.
func (s *Service) Run(ctx context.Context) {
	s.log.Info("historian started")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.readLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		s.inactivityLoop(ctx)
	}()
	wg.Wait()

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Flush(flushCtx)
	s.log.Info("historian shutting down")
}

func (s *Service) readLoop(ctx context.Context) {
	ticker := time.NewTicker(s.opts.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			s.Flush(ctx)

		default:
			rec, ok, err := s.source.Pop(ctx, s.opts.PopTimeout)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.log.WithError(err).Error("failed to pop action")
				continue
			}
			if !ok {
				continue
			}
			s.Ingest(ctx, rec)
		}
	}
}

// Ingest tracks the record's game activity and adds it to the batch, flushing
// when the batch is full.
func (s *Service) Ingest(ctx context.Context, rec models.ActionRecord) {
	s.activityMu.Lock()
	if rec.ActionType == gameEndAction {
		delete(s.lastActivity, rec.GameID)
	} else {
		s.lastActivity[rec.GameID] = s.now()
	}
	s.activityMu.Unlock()

	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	s.batch = append(s.batch, rec)
	if len(s.batch) >= s.opts.BatchSize {
		s.flushLocked(ctx)
	}
}

// Flush writes the pending batch in a single transaction.
func (s *Service) Flush(ctx context.Context) {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	s.flushLocked(ctx)
}

func (s *Service) flushLocked(ctx context.Context) {
	if len(s.batch) == 0 {
		return
	}
	batch := make([]models.ActionRecord, len(s.batch))
	copy(batch, s.batch)

	if err := s.store.InsertActions(ctx, batch); err != nil {
		// keep the batch for the next flush
		s.log.WithError(err).WithField("count", len(batch)).Error("failed to flush actions")
		return
	}
	s.batch = s.batch[:0]
	metrics.RecordsFlushed.Add(float64(len(batch)))
	s.log.WithField("count", len(batch)).Debug("flushed actions")
}

// Pending reports how many records wait for the next flush.
func (s *Service) Pending() int {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	return len(s.batch)
}

func (s *Service) inactivityLoop(ctx context.Context) {
	interval := time.Minute
	if s.opts.Inactivity < interval {
		interval = s.opts.Inactivity
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepInactive(ctx)
		}
	}
}

// SweepInactive marks every game idle for longer than the inactivity window
// as abandoned and stops tracking it.
func (s *Service) SweepInactive(ctx context.Context) {
	now := s.now()
	var stale []uuid.UUID
	s.activityMu.Lock()
	for id, last := range s.lastActivity {
		if now.Sub(last) > s.opts.Inactivity {
			stale = append(stale, id)
			delete(s.lastActivity, id)
		}
	}
	s.activityMu.Unlock()

	if len(stale) == 0 {
		return
	}
	// the game rows must exist before they can be marked
	s.Flush(ctx)
	for _, id := range stale {
		if err := s.store.MarkAbandoned(ctx, id, now.UnixMilli()); err != nil {
			s.log.WithError(err).WithField("game", id).Error("failed to mark game abandoned")
			continue
		}
		s.log.WithField("game", id).Info("marked game abandoned after inactivity")
	}
}
