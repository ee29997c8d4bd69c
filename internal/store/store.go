// Package store keeps the assessment log, per-location score histories, and
// the environmental readings log in memory, writing a full snapshot of each
// through to a BlobStore on every mutation.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/couchcryptid/landslide-risk-engine/internal/domain"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

const (
	// HistoryLimit is the number of trailing scores kept per location.
	HistoryLimit = 30
	// ReadingsLimit is the number of environmental submissions kept.
	ReadingsLimit = 100
	// DefaultNearRadius is the half-width, in degrees, of the Near search box.
	DefaultNearRadius = 0.01
	// DefaultTimeout bounds each backend call.
	DefaultTimeout = 5 * time.Second

	idPrefix = "assessment_"
)

// Store is the single logical assessment store of a process. It is safe for
// concurrent use. Mutations are serialised store-wide; callers running the
// read-history, score, record cycle for one location should additionally
// hold LockLocation for that location's key.
type Store struct {
	backend BlobStore
	logger  *slog.Logger
	clock   clockwork.Clock
	timeout time.Duration

	locks *keyLocks

	// writeMu serialises snapshot mutations, including their backend writes.
	writeMu sync.Mutex
	lastID  int64
	closed  bool

	// mu guards the committed state below. It is held only to read or swap,
	// never across backend calls.
	mu          sync.RWMutex
	opened      bool
	assessments []domain.RiskAssessment
	history     map[string][]float64
	readings    []domain.EnvironmentalInput
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for identifiers and timestamps.
func WithClock(c clockwork.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithTimeout bounds every backend call. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger used for degraded loads and failed restores.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates an empty store over backend. Call Open to load existing
// snapshots.
func New(backend BlobStore, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  slog.Default(),
		clock:   clockwork.NewRealClock(),
		timeout: DefaultTimeout,
		locks:   newKeyLocks(),
		history: make(map[string][]float64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open loads all snapshots concurrently. A snapshot that cannot be read or
// decoded is logged and treated as empty, so Open only fails on a closed
// store.
func (s *Store) Open(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.closed {
		return ErrClosed
	}

	var (
		assessments []domain.RiskAssessment
		history     map[string][]float64
		readings    []domain.EnvironmentalInput
		g           errgroup.Group
	)
	g.Go(func() error {
		assessments = load[[]domain.RiskAssessment](ctx, s, KeyAssessments)
		return nil
	})
	g.Go(func() error {
		history = load[map[string][]float64](ctx, s, KeyHistory)
		return nil
	})
	g.Go(func() error {
		readings = load[[]domain.EnvironmentalInput](ctx, s, KeyReadings)
		return nil
	})
	_ = g.Wait()

	if history == nil {
		history = make(map[string][]float64)
	}
	for _, a := range assessments {
		if n, ok := parseID(a.ID); ok && n > s.lastID {
			s.lastID = n
		}
	}

	s.mu.Lock()
	s.assessments = assessments
	s.history = history
	s.readings = readings
	s.opened = true
	s.mu.Unlock()

	s.logger.Info("assessment store opened",
		"assessments", len(assessments),
		"locations", len(history),
		"readings", len(readings),
	)
	return nil
}

// load decodes the snapshot under key, returning the zero value when the
// snapshot is missing or unusable.
func load[T any](ctx context.Context, s *Store, key string) T {
	var zero T
	data, found, err := s.get(ctx, key)
	if err != nil {
		s.logger.Warn("snapshot load failed, starting cold", "key", key, "error", err)
		return zero
	}
	if !found {
		return zero
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		err = &StorageReadError{Key: key, Err: fmt.Errorf("decode snapshot: %w", err)}
		s.logger.Warn("snapshot load failed, starting cold", "key", key, "error", err)
		return zero
	}
	return v
}

// Close marks the store closed and closes the backend when it implements
// io.Closer. Reads keep working on the last committed state.
func (s *Store) Close() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if c, ok := s.backend.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close backend: %w", err)
		}
	}
	return nil
}

// CheckReadiness reports whether the store has been opened and not closed.
func (s *Store) CheckReadiness(_ context.Context) error {
	s.writeMu.Lock()
	closed := s.closed
	s.writeMu.Unlock()
	if closed {
		return ErrClosed
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.opened {
		return ErrNotOpened
	}
	return nil
}

// checkWritable must be called with writeMu held.
func (s *Store) checkWritable() error {
	if s.closed {
		return ErrClosed
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.opened {
		return ErrNotOpened
	}
	return nil
}

// LockLocation blocks until no other caller holds key and returns the
// release func.
func (s *Store) LockLocation(key string) func() {
	return s.locks.lock(key)
}

// Record assigns an ID and timestamp when absent, appends a to the log,
// appends its score to the location's history (keeping the last
// HistoryLimit), and writes both snapshots. On any write failure the
// committed state is unchanged and the error is a *StorageWriteError or
// *StorageTimeoutError.
func (s *Store) Record(ctx context.Context, a domain.RiskAssessment) (domain.RiskAssessment, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.checkWritable(); err != nil {
		return domain.RiskAssessment{}, err
	}

	now := s.clock.Now()
	if a.ID == "" {
		a.ID = s.nextID(now)
	}
	if a.Timestamp == "" {
		a.Timestamp = domain.FormatTimestamp(now)
	}

	s.mu.RLock()
	nextLog := append(slices.Clip(s.assessments), a)
	nextHistory := maps.Clone(s.history)
	s.mu.RUnlock()

	key := domain.LocationKey(a.Location)
	nextHistory[key] = appendTrimmed(nextHistory[key], float64(a.RiskScore), HistoryLimit)

	logData, err := json.Marshal(nextLog)
	if err != nil {
		return domain.RiskAssessment{}, &StorageWriteError{Key: KeyAssessments, Err: err}
	}
	historyData, err := json.Marshal(nextHistory)
	if err != nil {
		return domain.RiskAssessment{}, &StorageWriteError{Key: KeyHistory, Err: err}
	}

	if err := s.putAll(ctx, blob{KeyAssessments, logData}, blob{KeyHistory, historyData}); err != nil {
		return domain.RiskAssessment{}, err
	}

	s.mu.Lock()
	s.assessments = nextLog
	s.history = nextHistory
	s.mu.Unlock()
	return a, nil
}

// RecordReading appends an environmental submission to the readings log,
// defaulting its timestamp to now, and writes the readings snapshot.
func (s *Store) RecordReading(ctx context.Context, in domain.EnvironmentalInput) (domain.EnvironmentalInput, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.checkWritable(); err != nil {
		return domain.EnvironmentalInput{}, err
	}

	if in.Timestamp == "" {
		in.Timestamp = domain.FormatTimestamp(s.clock.Now())
	}

	s.mu.RLock()
	next := appendTrimmed(s.readings, in, ReadingsLimit)
	s.mu.RUnlock()

	data, err := json.Marshal(next)
	if err != nil {
		return domain.EnvironmentalInput{}, &StorageWriteError{Key: KeyReadings, Err: err}
	}
	if err := s.putAll(ctx, blob{KeyReadings, data}); err != nil {
		return domain.EnvironmentalInput{}, err
	}

	s.mu.Lock()
	s.readings = next
	s.mu.Unlock()
	return in, nil
}

// HistoryFor returns a copy of the location's trailing scores, oldest first.
// Unknown locations yield an empty slice.
func (s *Store) HistoryFor(loc domain.Location) []float64 {
	key := domain.LocationKey(loc)

	s.mu.RLock()
	defer s.mu.RUnlock()
	series := s.history[key]
	if len(series) == 0 {
		return []float64{}
	}
	return slices.Clone(series)
}

// All returns every assessment in insertion order.
func (s *Store) All() []domain.RiskAssessment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.RiskAssessment{}, s.assessments...)
}

// Near returns assessments inside the box |Δlat| <= radius, |Δlon| <= radius
// around (lat, lon), in insertion order. This is a coordinate box, not a
// distance.
func (s *Store) Near(lat, lon, radius float64) []domain.RiskAssessment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.RiskAssessment{}
	for _, a := range s.assessments {
		if math.Abs(a.Location.Latitude-lat) <= radius && math.Abs(a.Location.Longitude-lon) <= radius {
			out = append(out, a)
		}
	}
	return out
}

// Readings returns the environmental readings log, oldest first.
func (s *Store) Readings() []domain.EnvironmentalInput {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.EnvironmentalInput{}, s.readings...)
}

// LatestReading returns the most recent environmental submission.
func (s *Store) LatestReading() (domain.EnvironmentalInput, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.readings) == 0 {
		return domain.EnvironmentalInput{}, false
	}
	return s.readings[len(s.readings)-1], true
}

type blob struct {
	key  string
	data []byte
}

// putAll writes blobs in order. When one fails, the blobs already written are
// rewritten from the committed state before the error is returned.
func (s *Store) putAll(ctx context.Context, blobs ...blob) error {
	for i, b := range blobs {
		if err := s.put(ctx, b.key, b.data); err != nil {
			s.restore(ctx, blobs[:i])
			return err
		}
	}
	return nil
}

// restore is best effort: it runs even when ctx is already done and only
// logs its own failures.
func (s *Store) restore(ctx context.Context, written []blob) {
	if len(written) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)

	for _, b := range written {
		data, err := s.committedSnapshot(b.key)
		if err == nil {
			err = s.put(ctx, b.key, data)
		}
		if err != nil {
			s.logger.Error("snapshot restore failed, durable state is ahead of memory",
				"key", b.key, "error", err)
		}
	}
}

func (s *Store) committedSnapshot(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var v any
	switch key {
	case KeyAssessments:
		v = s.assessments
	case KeyHistory:
		v = s.history
	case KeyReadings:
		v = s.readings
	default:
		return nil, fmt.Errorf("unknown snapshot %q", key)
	}
	return json.Marshal(v)
}

func (s *Store) get(ctx context.Context, key string) ([]byte, bool, error) {
	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, found, err := s.backend.Get(opCtx, key)
	if err != nil {
		if isDeadline(opCtx, err) {
			return nil, false, &StorageTimeoutError{Op: "read", Key: key, Timeout: s.timeout, Err: err}
		}
		return nil, false, &StorageReadError{Key: key, Err: err}
	}
	return data, found, nil
}

func (s *Store) put(ctx context.Context, key string, data []byte) error {
	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.backend.Put(opCtx, key, data); err != nil {
		if isDeadline(opCtx, err) {
			return &StorageTimeoutError{Op: "write", Key: key, Timeout: s.timeout, Err: err}
		}
		return &StorageWriteError{Key: key, Err: err}
	}
	return nil
}

func isDeadline(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)
}

// nextID derives "assessment_<unix millis>", bumped so IDs stay strictly
// increasing when several records land in the same millisecond.
func (s *Store) nextID(now time.Time) string {
	n := now.UnixMilli()
	if n <= s.lastID {
		n = s.lastID + 1
	}
	s.lastID = n
	return idPrefix + strconv.FormatInt(n, 10)
}

func parseID(id string) (int64, bool) {
	rest, ok := strings.CutPrefix(id, idPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	return n, err == nil
}

// appendTrimmed returns a new slice holding series plus v, keeping at most
// the last limit entries. series itself is never modified.
func appendTrimmed[T any](series []T, v T, limit int) []T {
	start := 0
	if len(series)+1 > limit {
		start = len(series) + 1 - limit
	}
	out := make([]T, 0, min(len(series)+1, limit))
	out = append(out, series[start:]...)
	return append(out, v)
}
