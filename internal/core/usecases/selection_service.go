package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/hotelmap/internal/core/domain"
	"github.com/samirrijal/hotelmap/internal/core/ports"
	"github.com/samirrijal/hotelmap/internal/pkg/geospatial"
	"github.com/samirrijal/hotelmap/internal/pkg/metrics"
	"github.com/samirrijal/hotelmap/internal/pkg/telemetry"
)

// DefaultSession is used when a client does not identify itself.
const DefaultSession = "default"

// MaxSessionLen is the longest session key Select accepts.
const MaxSessionLen = 128

const (
	defaultIdleTTL     = time.Hour
	defaultMaxSessions = 10000
)

// viewPaddingMeters keeps edge markers away from the viewport border.
const viewPaddingMeters = 150.0

// SelectionService keeps the last clicked point per session and turns it into a MapView.
// A session that has not clicked for the idle TTL is forgotten, and the table never
// holds more than maxSessions entries.
type SelectionService struct {
	catalog     ports.HotelCatalog
	finder      *NearestFinder
	publisher   ports.EventPublisher
	clock       clockwork.Clock
	idleTTL     time.Duration
	maxSessions int

	// publishMu orders store+publish so the feed's last event matches Current.
	publishMu  sync.Mutex
	mu         sync.RWMutex
	selections map[string]domain.Selection
}

// SelectionOption configures a SelectionService.
type SelectionOption func(*SelectionService)

// WithIdleTTL forgets selections older than d.
func WithIdleTTL(d time.Duration) SelectionOption {
	return func(s *SelectionService) {
		if d > 0 {
			s.idleTTL = d
		}
	}
}

// WithMaxSessions caps the number of stored selections.
func WithMaxSessions(n int) SelectionOption {
	return func(s *SelectionService) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// NewSelectionService creates a new SelectionService. publisher may be nil; a nil
// clock means wall time.
func NewSelectionService(
	catalog ports.HotelCatalog,
	finder *NearestFinder,
	publisher ports.EventPublisher,
	clock clockwork.Clock,
	opts ...SelectionOption,
) *SelectionService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	s := &SelectionService{
		catalog:     catalog,
		finder:      finder,
		publisher:   publisher,
		clock:       clock,
		idleTTL:     defaultIdleTTL,
		maxSessions: defaultMaxSessions,
		selections:  make(map[string]domain.Selection),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select records point as the session's selection, replacing any earlier one,
// and returns the ranked view around it.
func (s *SelectionService) Select(ctx context.Context, session string, point domain.GeoPoint, source string) (*domain.MapView, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanSelectionSelect)
	defer span.End()

	if err := point.Validate(); err != nil {
		return nil, err
	}
	if len(session) > MaxSessionLen {
		return nil, fmt.Errorf("%w: longer than %d characters", domain.ErrInvalidSession, MaxSessionLen)
	}

	hotels, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hotels: %w", err)
	}

	sel := domain.Selection{
		ID:         uuid.NewString(),
		Session:    sessionOrDefault(session),
		Point:      point,
		SelectedAt: s.clock.Now().UTC(),
	}
	view := s.buildView(sel, hotels)
	span.SetAttributes(
		attribute.String(telemetry.AttrSession, sel.Session),
		attribute.String(telemetry.AttrSelectionID, sel.ID),
		attribute.String(telemetry.AttrNearestID, view.NearestID),
	)
	metrics.Selections.WithLabelValues(source).Inc()

	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	s.makeRoomLocked(sel.Session)
	s.selections[sel.Session] = sel
	metrics.StoredSelections.Set(float64(len(s.selections)))
	s.mu.Unlock()

	if s.publisher != nil {
		if err := s.publisher.PublishSelection(ctx, view); err != nil {
			metrics.SelectionPublishErrors.Inc()
			slog.WarnContext(ctx, "publish selection failed", "session", sel.Session, "error", err)
		}
	}

	return view, nil
}

// Current returns the view for the session's last selection.
func (s *SelectionService) Current(ctx context.Context, session string) (*domain.MapView, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanSelectionCurrent)
	defer span.End()

	session = sessionOrDefault(session)

	s.mu.RLock()
	sel, ok := s.selections[session]
	s.mu.RUnlock()
	if ok && s.expired(sel) {
		s.forget(session, sel.ID)
		ok = false
	}
	if !ok {
		return nil, fmt.Errorf("session %q: %w", session, domain.ErrNoSelection)
	}

	hotels, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hotels: %w", err)
	}
	return s.buildView(sel, hotels), nil
}

// Clear forgets the session's selection. It reports whether a live one existed.
func (s *SelectionService) Clear(_ context.Context, session string) bool {
	session = sessionOrDefault(session)

	s.mu.Lock()
	defer s.mu.Unlock()
	sel, ok := s.selections[session]
	delete(s.selections, session)
	metrics.StoredSelections.Set(float64(len(s.selections)))
	return ok && !s.expired(sel)
}

// Len reports how many sessions currently hold a selection, expired ones included.
func (s *SelectionService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.selections)
}

func (s *SelectionService) expired(sel domain.Selection) bool {
	return s.clock.Since(sel.SelectedAt) >= s.idleTTL
}

// forget drops an expired selection unless a newer click replaced it meanwhile.
func (s *SelectionService) forget(session, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.selections[session]; ok && cur.ID == id {
		delete(s.selections, session)
		metrics.StoredSelections.Set(float64(len(s.selections)))
		metrics.SelectionsEvicted.WithLabelValues("idle").Inc()
	}
}

// makeRoomLocked keeps the table under maxSessions before a new session is
// stored: expired entries go first, then the least recently clicked one.
// Caller holds s.mu.
func (s *SelectionService) makeRoomLocked(incoming string) {
	if _, ok := s.selections[incoming]; ok || len(s.selections) < s.maxSessions {
		return
	}
	for key, sel := range s.selections {
		if s.expired(sel) {
			delete(s.selections, key)
			metrics.SelectionsEvicted.WithLabelValues("idle").Inc()
		}
	}
	for len(s.selections) >= s.maxSessions {
		var oldest string
		var oldestAt time.Time
		for key, sel := range s.selections {
			if oldest == "" || sel.SelectedAt.Before(oldestAt) {
				oldest, oldestAt = key, sel.SelectedAt
			}
		}
		delete(s.selections, oldest)
		metrics.SelectionsEvicted.WithLabelValues("capacity").Inc()
	}
}

func (s *SelectionService) buildView(sel domain.Selection, hotels []domain.Hotel) *domain.MapView {
	ranking := s.finder.RankingFor(sel.Point, hotels)

	points := make([]domain.GeoPoint, 0, len(hotels)+1)
	points = append(points, sel.Point)
	for _, h := range hotels {
		points = append(points, h.Location)
	}

	return &domain.MapView{
		Selection: sel,
		NearestID: ranking.NearestID,
		Hotels:    ranking.Hotels,
		Bounds:    padBounds(domain.BoundsOf(points...), viewPaddingMeters),
	}
}

func padBounds(b domain.Bounds, meters float64) domain.Bounds {
	minLat, minLon, _, _ := geospatial.BoundingBox(b.MinLat, b.MinLon, meters)
	_, _, maxLat, maxLon := geospatial.BoundingBox(b.MaxLat, b.MaxLon, meters)
	return domain.Bounds{
		MinLat: math.Max(minLat, -90),
		MinLon: math.Max(minLon, -180),
		MaxLat: math.Min(maxLat, 90),
		MaxLon: math.Min(maxLon, 180),
	}
}

func sessionOrDefault(session string) string {
	if session == "" {
		return DefaultSession
	}
	return session
}
