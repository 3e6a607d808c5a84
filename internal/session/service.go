package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/trainer/internal/catalog"
	"github.com/felixgeelhaar/trainer/internal/domain"
)

// Service manages training sessions
type Service struct {
	store     Store
	catalog   Catalog
	builder   Builder
	publisher Publisher
	shuffler  catalog.Shuffler
	logger    *slog.Logger

	// per-session locks serialise read-modify-write cycles
	locks sync.Map
}

// Option configures a Service
type Option func(*Service)

// WithPublisher sets the event publisher
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithShuffler sets the random source for exercise selection
func WithShuffler(rnd catalog.Shuffler) Option {
	return func(s *Service) {
		s.shuffler = rnd
	}
}

// WithLogger sets the service logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a new session service
func NewService(store Store, cat Catalog, builder Builder, opts ...Option) *Service {
	s := &Service{
		store:     store,
		catalog:   cat,
		builder:   builder,
		publisher: NopPublisher{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) lock(id string) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Create starts a session with a balanced selection of exercises
func (s *Service) Create(ctx context.Context, cfg domain.TrainingConfig) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	entries := s.catalog.SelectBalanced(cfg.Levels, cfg.Tasks, s.shuffler)
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no exercises available for levels %v", domain.ErrInvalidInput, cfg.Levels)
	}

	sess := NewSession(cfg, entries)
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.publish(ctx, domain.NewSessionStartedEvent(sess.ID, sess.ExerciseIDs(), cfg.Difficulty))
	s.logger.Info("session started",
		"session_id", sess.ID,
		"tasks", len(sess.Tasks),
		"difficulty", domain.DifficultyName(cfg.Difficulty))

	return sess, nil
}

// Get retrieves a session by ID
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// Delete removes a session. Its lock entry is kept so that callers already
// waiting on it stay serialized with later ones.
func (s *Service) Delete(ctx context.Context, id string) error {
	defer s.lock(id)()
	return s.store.Delete(ctx, id)
}

// List returns all session IDs
func (s *Service) List(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}

// Exercise returns the exercise at index, generating it on first access.
// The index becomes the session's current position.
func (s *Service) Exercise(ctx context.Context, id string, index int) (*domain.Exercise, error) {
	defer s.lock(id)()

	sess, task, err := s.task(ctx, id, index)
	if err != nil {
		return nil, err
	}

	if task.Exercise == nil {
		if err := s.generate(ctx, sess, index, false); err != nil {
			return nil, err
		}
	}

	sess.Current = index
	sess.Touch()
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess.Tasks[index].Exercise, nil
}

// Regenerate discards the exercise at index and draws new blanks
func (s *Service) Regenerate(ctx context.Context, id string, index int) (*domain.Exercise, error) {
	defer s.lock(id)()

	sess, _, err := s.task(ctx, id, index)
	if err != nil {
		return nil, err
	}
	if sess.Status == StatusCompleted {
		return nil, domain.ErrSessionCompleted
	}

	if err := s.generate(ctx, sess, index, true); err != nil {
		return nil, err
	}

	sess.Current = index
	sess.Touch()
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess.Tasks[index].Exercise, nil
}

// Check grades answers for the exercise at index. The session completes
// once every exercise has been answered correctly.
func (s *Service) Check(ctx context.Context, id string, index int, answers []string) (domain.CheckResult, error) {
	defer s.lock(id)()

	sess, task, err := s.task(ctx, id, index)
	if err != nil {
		return domain.CheckResult{}, err
	}
	if sess.Status == StatusCompleted {
		return domain.CheckResult{}, domain.ErrSessionCompleted
	}
	if task.Exercise == nil {
		return domain.CheckResult{}, fmt.Errorf("%w: exercise %d has not been opened", domain.ErrInvalidInput, index)
	}

	result := task.Exercise.Check(answers)
	task.Attempts++
	task.LastResult = &result
	sess.Touch()

	completed := sess.AllSolved()
	if completed {
		sess.Complete()
	}

	if err := s.store.Save(ctx, sess); err != nil {
		return domain.CheckResult{}, fmt.Errorf("save session: %w", err)
	}

	s.publish(ctx, domain.NewAnswersCheckedEvent(sess.ID, task.Entry.ID, index, result))
	if completed {
		s.publishCompleted(ctx, sess)
	}

	return result, nil
}

// Finish completes the session and returns its summary.
// Finishing an already completed session returns the stored summary.
func (s *Service) Finish(ctx context.Context, id string) (Summary, error) {
	defer s.lock(id)()

	sess, err := s.Get(ctx, id)
	if err != nil {
		return Summary{}, err
	}
	if sess.Status == StatusCompleted {
		return sess.Summary(), nil
	}

	sess.Complete()
	if err := s.store.Save(ctx, sess); err != nil {
		return Summary{}, fmt.Errorf("save session: %w", err)
	}

	s.publishCompleted(ctx, sess)
	return sess.Summary(), nil
}

// Summary returns the current results of a session
func (s *Service) Summary(ctx context.Context, id string) (Summary, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return Summary{}, err
	}
	return sess.Summary(), nil
}

func (s *Service) task(ctx context.Context, id string, index int) (*Session, *Task, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	task, err := sess.Task(index)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %d of %d", err, index, len(sess.Tasks))
	}
	return sess, task, nil
}

func (s *Service) generate(ctx context.Context, sess *Session, index int, regenerated bool) error {
	task := &sess.Tasks[index]

	ex, err := s.builder.Build(ctx, task.Entry, sess.Config.Difficulty)
	if err != nil {
		return fmt.Errorf("generate exercise %d: %w", task.Entry.ID, err)
	}

	task.Exercise = ex
	if regenerated {
		task.Regenerations++
		task.LastResult = nil
	}

	s.publish(ctx, domain.NewExerciseGeneratedEvent(sess.ID, task.Entry.ID, index, len(ex.Blanks), regenerated))
	return nil
}

func (s *Service) publishCompleted(ctx context.Context, sess *Session) {
	s.publish(ctx, domain.NewSessionCompletedEvent(sess.ID, sess.SolvedCount(), len(sess.Tasks), sess.Duration()))
	s.logger.Info("session completed",
		"session_id", sess.ID,
		"solved", sess.SolvedCount(),
		"total", len(sess.Tasks))
}

// publish delivers an event; failures are logged, never returned
func (s *Service) publish(ctx context.Context, event domain.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event",
			"event_type", event.EventType(),
			"session_id", event.AggregateID(),
			"error", err)
	}
}

// ParseID validates a session ID
func ParseID(id string) (uuid.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: session id %q", domain.ErrInvalidInput, id)
	}
	return u, nil
}
