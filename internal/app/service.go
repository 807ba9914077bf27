// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/aceai/aceai/internal/adapters/client"
	"github.com/aceai/aceai/internal/adapters/media"
	submissionqueue "github.com/aceai/aceai/internal/adapters/mq/queue"
	workerpool "github.com/aceai/aceai/internal/adapters/mq/worker"
	"github.com/aceai/aceai/internal/adapters/repository"
	"github.com/aceai/aceai/internal/domain/extract"
	"github.com/aceai/aceai/internal/domain/inflight"
	"github.com/aceai/aceai/internal/domain/model"
	"github.com/aceai/aceai/internal/domain/session"
	"github.com/aceai/aceai/internal/domain/types"
	"github.com/aceai/aceai/pkg/logger"
	"github.com/aceai/aceai/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize    = 1024
	defaultInflightSize = 10_000
	defaultShardCount   = 8
	defaultMaxUpload    = 10 << 20
)

// QuestionGenerator produces the raw question payload for a resume.
type QuestionGenerator interface {
	Generate(ctx context.Context, r client.Resume) ([]byte, error)
}

// Upload is the material a candidate submits to start an interview.
type Upload = types.Upload

// Created is the answer to a successful interview creation.
type Created = types.Created

// Service implements the API dependencies for the interview gateway.
type Service struct {
	mu sync.RWMutex

	// Core components
	registry  repository.Registry
	guard     inflight.Guard
	queue     submissionqueue.Queue
	pool      *workerpool.Pool
	questions QuestionGenerator
	scorer    workerpool.Scorer
	device    media.Device

	// Configuration
	workerCount     int
	queueSize       int
	inflightSize    int
	shardCount      int
	maxUploadBytes  int64
	clientTimeout   time.Duration
	questionBaseURL string
	feedbackBaseURL string
	simulated       bool

	// State
	started    bool
	startedAt  time.Time
	uploadBusy atomic.Bool
	stopCh     chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of scoring workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the scoring queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithInflightSize sets the duplicate-submission guard capacity.
func WithInflightSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.inflightSize = size
		}
	}
}

// WithShardCount sets the session registry shard count.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithMaxUploadBytes caps resume upload size.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithClientTimeout sets the HTTP timeout for outbound service calls.
func WithClientTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.clientTimeout = d
		}
	}
}

// WithServiceURLs sets the question and feedback service base URLs.
func WithServiceURLs(questionBase, feedbackBase string) Option {
	return func(s *Service) {
		s.questionBaseURL = questionBase
		s.feedbackBaseURL = feedbackBase
	}
}

// WithQuestionGenerator overrides the question service client.
func WithQuestionGenerator(q QuestionGenerator) Option {
	return func(s *Service) {
		if q != nil {
			s.questions = q
		}
	}
}

// WithScorer overrides the feedback service client.
func WithScorer(sc workerpool.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithDevice sets the capture device shared by sessions.
func WithDevice(d media.Device) Option {
	return func(s *Service) {
		if d != nil {
			s.device = d
		}
	}
}

// WithSimulatedRecognition makes sessions transcribe through the simulated
// recognizer instead of pushed transcripts. Used by the interview simulator.
func WithSimulatedRecognition() Option {
	return func(s *Service) {
		s.simulated = true
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:    runtime.NumCPU(),
		queueSize:      defaultQueueSize,
		inflightSize:   defaultInflightSize,
		shardCount:     defaultShardCount,
		maxUploadBytes: defaultMaxUpload,
		device:         media.NewSimDevice(),
		stopCh:         make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting interview gateway...")

	s.registry = repository.NewShardedRegistry(
		repository.WithShardCount(s.shardCount),
	)
	s.guard = inflight.NewMemoryGuard(
		inflight.WithMaxSize(s.inflightSize),
	)
	s.queue = submissionqueue.NewInMemoryQueue(
		submissionqueue.WithCapacity(s.queueSize),
		submissionqueue.WithBufferSize(s.queueSize),
	)

	if s.questions == nil {
		var opts []client.QuestionOption
		if s.clientTimeout > 0 {
			opts = append(opts, client.WithQuestionHTTPClient(&http.Client{Timeout: s.clientTimeout}))
		}
		s.questions = client.NewQuestionClient(s.questionBaseURL, opts...)
	}
	if s.scorer == nil {
		var opts []client.FeedbackOption
		if s.clientTimeout > 0 {
			opts = append(opts, client.WithFeedbackHTTPClient(&http.Client{Timeout: s.clientTimeout}))
		}
		s.scorer = client.NewFeedbackClient(s.feedbackBaseURL, opts...)
	}

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.scorer, s)
	s.pool.Start(ctx)

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "interview gateway started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("shards", s.shardCount),
	)

	return nil
}

// Stop gracefully shuts down the service, abandoning live sessions.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping interview gateway...")

	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}
	if s.queue != nil {
		_ = s.queue.Close()
	}

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(ctx, "interview gateway stopped")
}

// BeginInterview uploads a resume, extracts questions and opens a session.
// Only one upload may be in flight at a time; concurrent attempts get
// ErrBusy without touching the question service.
func (s *Service) BeginInterview(ctx context.Context, up Upload) (Created, error) {
	if !s.isStarted() {
		return Created{}, ErrNotStarted
	}

	if !s.uploadBusy.CompareAndSwap(false, true) {
		metrics.RecordUploadBusy()
		return Created{}, ErrBusy
	}
	defer s.uploadBusy.Store(false)

	start := time.Now()
	metrics.RecordUploadRequest()
	defer func() {
		metrics.RecordUploadLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := s.validateUpload(up); err != nil {
		metrics.RecordUploadRejected()
		return Created{}, err
	}

	raw, err := s.questions.Generate(ctx, client.Resume{
		FileName:        up.FileName,
		Content:         up.Content,
		JobDescription:  up.JobDescription,
		KnowledgeDomain: up.KnowledgeDomain,
	})
	if err != nil {
		metrics.RecordErrorByComponent("service", "question_service")
		s.logger.Error(ctx, "question generation failed", logger.Error(err))
		return Created{}, fmt.Errorf("%w: %w", ErrQuestionService, err)
	}

	questions := extract.Questions(ctx, raw)

	id := uuid.NewString()
	rec := s.buildRecord(ctx, id, questions)

	if err := s.registry.Put(ctx, rec); err != nil {
		return Created{}, fmt.Errorf("failed to register session: %w", err)
	}

	metrics.RecordSessionCreated()
	metrics.UpdateActiveSessions(s.registry.Count(ctx))
	s.logger.Info(ctx, "interview session created",
		logger.String("sessionID", id),
		logger.Int("questions", len(questions)),
	)

	return Created{ID: id, Questions: questions}, nil
}

// buildRecord assembles the session with its capture controller. Stream
// acquisition failure is logged inside the controller and tolerated: the
// interview proceeds without media.
func (s *Service) buildRecord(ctx context.Context, id string, questions []string) repository.Record {
	opts := []media.Option{
		media.WithDevice(s.device),
		media.WithRecorder(media.NewSimRecorder()),
		media.WithSink(s.transcriptSink(id)),
	}

	var push *media.PushRecognizer
	if s.simulated {
		opts = append(opts, media.WithRecognizer(media.NewSimRecognizer()))
	} else {
		push = media.NewPushRecognizer()
		opts = append(opts, media.WithRecognizer(push))
	}

	capture := media.NewController(opts...)
	_ = capture.Acquire(ctx)

	sess := session.New(id, questions, session.WithMedia(capture))
	return repository.Record{Session: sess, Capture: capture, Push: push}
}

// transcriptSink files a turn's authoritative transcript on the session.
func (s *Service) transcriptSink(id string) media.Sink {
	return func(tr media.Transcript) {
		ctx := context.Background()
		rec, err := s.registry.Get(ctx, id)
		if err != nil {
			s.logger.Warn(ctx, "transcript for unknown session dropped",
				logger.String("sessionID", id))
			return
		}
		if err := rec.Session.RecordResponse(tr.Turn, tr.Text); err != nil {
			s.logger.Debug(ctx, "transcript not recorded",
				logger.String("sessionID", id),
				logger.Int("turn", tr.Turn),
				logger.Error(err),
			)
		}
	}
}

func (s *Service) validateUpload(up Upload) error {
	if up.FileName == "" || len(up.Content) == 0 {
		return ErrMissingFile
	}
	if int64(len(up.Content)) > s.maxUploadBytes {
		return fmt.Errorf("%w: limit is %d bytes", ErrUploadTooLarge, s.maxUploadBytes)
	}
	if !mimetype.Detect(up.Content).Is("application/pdf") {
		return ErrUnsupportedFile
	}
	return nil
}

// State returns the client view of a session.
func (s *Service) State(ctx context.Context, id string) (types.State, error) {
	rec, err := s.registry.Get(ctx, id)
	if err != nil {
		return types.State{}, err
	}
	return rec.Session.State(), nil
}

// StartTurn begins recording the current question.
func (s *Service) StartTurn(ctx context.Context, id string) (types.State, error) {
	rec, err := s.registry.Get(ctx, id)
	if err != nil {
		return types.State{}, err
	}

	if rec.Session.Complete() {
		return types.State{}, session.ErrSessionComplete
	}
	q, ok := rec.Session.CurrentQuestion()
	if !ok {
		return types.State{}, ErrNoActiveQuestion
	}

	if err := rec.Capture.StartTurn(ctx, rec.Session.Cursor(), q); err != nil {
		return types.State{}, err
	}
	rec.Session.SetRecording(true)

	return rec.Session.State(), nil
}

// StopTurn ends the active recording. Idempotent.
func (s *Service) StopTurn(ctx context.Context, id string) (types.State, error) {
	rec, err := s.registry.Get(ctx, id)
	if err != nil {
		return types.State{}, err
	}

	rec.Capture.StopTurn(ctx)
	rec.Session.SetRecording(false)

	return rec.Session.State(), nil
}

// DeliverTranscript pushes a finalized transcript for the active turn.
// Returns false when no turn is listening or an earlier final already won.
func (s *Service) DeliverTranscript(ctx context.Context, id, text string) (bool, error) {
	rec, err := s.registry.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if rec.Push == nil {
		return false, media.ErrNoActiveTurn
	}
	return rec.Push.Push(ctx, text), nil
}

// Advance moves to the next question, submitting the finished turn's
// response for scoring. Scoring is fire-and-forget: the interview proceeds
// whether or not the submission was accepted.
func (s *Service) Advance(ctx context.Context, id string) (types.State, error) {
	rec, err := s.registry.Get(ctx, id)
	if err != nil {
		return types.State{}, err
	}

	rec.Capture.StopTurn(ctx)
	rec.Session.SetRecording(false)

	tr, err := rec.Session.Advance(ctx)
	if err != nil {
		return types.State{}, err
	}

	if tr.Submit != nil {
		s.submit(ctx, id, tr.Submit)
	}
	if tr.Completed {
		s.logger.Info(ctx, "interview complete", logger.String("sessionID", id))
	}

	return rec.Session.State(), nil
}

// submit enqueues a scoring submission, guarding against duplicates.
func (s *Service) submit(ctx context.Context, sessionID string, r *model.RecordedResponse) {
	subID := sessionID + ":" + strconv.Itoa(r.Turn)
	if s.guard.SeenAndRecord(ctx, subID) {
		s.logger.Debug(ctx, "duplicate scoring submission skipped",
			logger.String("submissionID", subID))
		return
	}

	ok := s.queue.Enqueue(ctx, model.Submission{
		ID:        subID,
		SessionID: sessionID,
		Turn:      r.Turn,
		Question:  r.Question,
		Response:  r.Response,
		CreatedAt: time.Now(),
	})
	if !ok {
		// Allow a later advance of the same turn to retry.
		s.guard.Unrecord(ctx, subID)
		s.logger.Warn(ctx, "scoring queue full, submission dropped",
			logger.String("submissionID", subID))
		return
	}

	metrics.RecordScoringSubmission()
}

// Collect files feedback on the owning session. Implements the worker
// pool's Collector contract.
func (s *Service) Collect(ctx context.Context, sessionID string, fb model.Feedback) error {
	rec, err := s.registry.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Debug(ctx, "feedback for departed session dropped",
				logger.String("sessionID", sessionID))
			return nil
		}
		return err
	}

	rec.Session.AddFeedback(fb)
	return nil
}

// Exit abandons a session and removes it from the registry.
func (s *Service) Exit(ctx context.Context, id string) error {
	rec, err := s.registry.Get(ctx, id)
	if err != nil {
		return err
	}

	rec.Session.Exit(ctx)
	s.registry.Delete(ctx, id)
	metrics.UpdateActiveSessions(s.registry.Count(ctx))
	s.logger.Info(ctx, "interview session exited", logger.String("sessionID", id))

	return nil
}

// Report returns the scored answers of a session in question order.
func (s *Service) Report(ctx context.Context, id string) ([]types.ReportEntry, error) {
	rec, err := s.registry.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec.Session.Report(), nil
}

// GetStats returns an operational snapshot.
func (s *Service) GetStats(ctx context.Context) types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := types.Stats{
		WorkerCount:     s.workerCount,
		UploadInFlight:  s.uploadBusy.Load(),
		QuestionService: s.questionBaseURL,
		FeedbackService: s.feedbackBaseURL,
	}
	if s.started {
		st.ActiveSessions = s.registry.Count(ctx)
		st.QueueDepth = s.queue.Len(ctx)
		st.UptimeSeconds = int64(time.Since(s.startedAt).Seconds())
	}
	return st
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}
