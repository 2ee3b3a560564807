package checker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/MimoJanra/sitewatch/internal/config"
	"github.com/MimoJanra/sitewatch/internal/models"
	"github.com/MimoJanra/sitewatch/internal/storage"
)

type MonitorStore interface {
	ListAll(ctx context.Context) ([]models.Monitor, error)
	GetByID(ctx context.Context, id string) (models.Monitor, error)
	RecordCheck(ctx context.Context, rec models.HistoryRecord, lastError string) (models.HistoryRecord, error)
}

type Prober interface {
	Probe(ctx context.Context, m models.Monitor) Outcome
}

type StatusEvaluator interface {
	Evaluate(m models.Monitor, o Outcome) models.Status
}

type Notifier interface {
	MaybeNotify(ctx context.Context, m models.Monitor, previous, next models.Status)
}

const notifyTimeout = 30 * time.Second

type job struct {
	cancel    context.CancelFunc
	inFlight  atomic.Bool
	updatedAt time.Time
	interval  time.Duration
	gen       uint64
}

// Scheduler owns one recurring timer per registered monitor. Every tick runs
// probe, evaluation, persistence and notification for that monitor.
type Scheduler struct {
	cfg       config.SchedulerConfig
	store     MonitorStore
	prober    Prober
	evaluator StatusEvaluator
	notifier  Notifier
	logger    *zap.Logger
	sem       *semaphore.Weighted
	cron      *cron.Cron

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu      sync.Mutex
	jobs    map[string]*job
	gen     uint64
	running bool
	stopped bool
}

type Option func(*Scheduler)

func WithEvaluator(e StatusEvaluator) Option {
	return func(s *Scheduler) { s.evaluator = e }
}

func NewScheduler(cfg config.SchedulerConfig, store MonitorStore, prober Prober, notifier Notifier, logger *zap.Logger, opts ...Option) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	limit := cfg.MaxConcurrentProbes
	if limit <= 0 {
		limit = 1
	}
	s := &Scheduler{
		cfg:       cfg,
		store:     store,
		prober:    prober,
		evaluator: Evaluator{},
		notifier:  notifier,
		logger:    logger.Named("scheduler"),
		sem:       semaphore.NewWeighted(limit),
		cron:      cron.New(),
		baseCtx:   ctx,
		cancel:    cancel,
		jobs:      make(map[string]*job),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start registers every stored monitor and schedules the periodic resync
// against the store.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running || s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	monitors, err := s.store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load monitors: %w", err)
	}
	for _, m := range monitors {
		s.Register(m)
	}

	spec := "@every " + s.cfg.ResyncInterval.String()
	if _, err := s.cron.AddFunc(spec, func() {
		if err := s.Reconcile(s.baseCtx); err != nil && s.baseCtx.Err() == nil {
			s.logger.Error("resync failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule resync %q: %w", spec, err)
	}
	s.cron.Start()

	s.logger.Info("scheduler started", zap.Int("monitors", len(monitors)))
	return nil
}

// Stop cancels every job and waits for running ticks until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	for id, j := range s.jobs {
		j.cancel()
		delete(s.jobs, id)
	}
	s.mu.Unlock()

	s.cancel()
	<-s.cron.Stop().Done()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Register starts checking m immediately and then on every interval. An
// existing job for the same id is replaced.
func (s *Scheduler) Register(m models.Monitor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registerLocked(m)
}

func (s *Scheduler) registerLocked(m models.Monitor) {
	if s.stopped {
		return
	}

	if old, ok := s.jobs[m.ID]; ok {
		old.cancel()
	}
	ctx, cancel := context.WithCancel(s.baseCtx)
	s.gen++
	j := &job{cancel: cancel, updatedAt: m.UpdatedAt, interval: s.intervalFor(m), gen: s.gen}
	s.jobs[m.ID] = j

	s.wg.Add(1)
	go s.loop(ctx, m.ID, j)

	s.logger.Debug("monitor registered", zap.String("monitor_id", m.ID), zap.Duration("interval", j.interval))
}

// Unregister stops checking the monitor. Unknown ids are ignored.
func (s *Scheduler) Unregister(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unregisterLocked(id)
}

func (s *Scheduler) unregisterLocked(id string) {
	if j, ok := s.jobs[id]; ok {
		j.cancel()
		delete(s.jobs, id)
		s.logger.Debug("monitor unregistered", zap.String("monitor_id", id))
	}
}

func (s *Scheduler) unregisterJob(id string, j *job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.jobs[id]; ok && cur == j {
		j.cancel()
		delete(s.jobs, id)
	}
}

// Registered reports whether a job exists for id.
func (s *Scheduler) Registered(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[id]
	return ok
}

func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Reconcile aligns the registered jobs with the store: new monitors are
// registered, edited ones re-registered and missing ones dropped. Jobs
// registered after the store snapshot was taken are left alone.
func (s *Scheduler) Reconcile(ctx context.Context) error {
	s.mu.Lock()
	snapshotGen := s.gen
	s.mu.Unlock()

	monitors, err := s.store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list monitors: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var registered, dropped int
	seen := make(map[string]struct{}, len(monitors))
	for _, m := range monitors {
		seen[m.ID] = struct{}{}
		j, ok := s.jobs[m.ID]
		if ok && j.gen > snapshotGen {
			continue
		}
		if !ok || !j.updatedAt.Equal(m.UpdatedAt) || j.interval != s.intervalFor(m) {
			s.registerLocked(m)
			registered++
		}
	}
	for id, j := range s.jobs {
		if _, ok := seen[id]; ok || j.gen > snapshotGen {
			continue
		}
		s.unregisterLocked(id)
		dropped++
	}
	if registered > 0 || dropped > 0 {
		s.logger.Info("schedule resynced", zap.Int("registered", registered), zap.Int("dropped", dropped))
	}
	return nil
}

func (s *Scheduler) intervalFor(m models.Monitor) time.Duration {
	if s.cfg.HonorMonitorInterval && m.IntervalSeconds > 0 {
		return time.Duration(m.IntervalSeconds) * time.Second
	}
	return s.cfg.CheckInterval
}

func (s *Scheduler) loop(ctx context.Context, id string, j *job) {
	defer s.wg.Done()

	s.fire(ctx, id, j)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.fire(ctx, id, j)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) fire(ctx context.Context, id string, j *job) {
	if !j.inFlight.CompareAndSwap(false, true) {
		s.logger.Warn("previous check still running, skipping tick", zap.String("monitor_id", id))
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer j.inFlight.Store(false)
		s.runTick(ctx, id, j)
	}()
}

func (s *Scheduler) runTick(ctx context.Context, id string, j *job) {
	log := s.logger.With(zap.String("monitor_id", id))

	m, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("monitor no longer exists, unregistering")
			s.unregisterJob(id, j)
			return
		}
		if ctx.Err() == nil {
			log.Error("failed to load monitor", zap.Error(err))
		}
		return
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return
	}
	outcome := s.safeProbe(ctx, m)
	s.sem.Release(1)

	// the job was cancelled mid-probe; its result belongs to nobody
	if ctx.Err() != nil {
		return
	}

	previous := m.Status
	next := s.evaluator.Evaluate(m, outcome)

	stored, err := s.store.RecordCheck(ctx, models.HistoryRecord{
		MonitorID:      m.ID,
		Status:         next,
		ResponseTimeMS: outcome.ResponseTimeMS,
		ResponseCode:   outcome.ResponseCode,
	}, outcome.FailureReason)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.unregisterJob(id, j)
			return
		}
		log.Error("failed to record check", zap.Error(err))
		return
	}

	m.Status = stored.Status
	m.LastChecked = &stored.Timestamp
	m.ResponseTimeMS = &stored.ResponseTimeMS
	m.ResponseCode = stored.ResponseCode
	m.LastError = outcome.FailureReason

	log.Debug("check completed",
		zap.String("target", m.Target()),
		zap.String("previous", string(previous)),
		zap.String("status", string(next)),
		zap.Int("response_time_ms", outcome.ResponseTimeMS),
	)

	// detached from the job: the check is committed and its alert must outlive a replaced job
	if s.notifier != nil {
		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		s.notifier.MaybeNotify(notifyCtx, m, previous, next)
	}
}

func (s *Scheduler) safeProbe(ctx context.Context, m models.Monitor) (o Outcome) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("probe panicked", zap.String("monitor_id", m.ID), zap.Any("panic", r))
			o = Outcome{Reachable: false, FailureReason: fmt.Sprint(r)}
		}
	}()
	return s.prober.Probe(ctx, m)
}
