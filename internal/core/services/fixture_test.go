package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/srgjo27/transit_reservation/internal/adapter/repository/memory"
	"github.com/srgjo27/transit_reservation/internal/core/domain"
	"github.com/srgjo27/transit_reservation/internal/core/ports"
	"github.com/srgjo27/transit_reservation/internal/core/services"
	"github.com/srgjo27/transit_reservation/internal/platform/clock"
)

var (
	startTime   = time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)
	journeyDate = time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
)

type notice struct {
	kind    domain.NotificationKind
	payload any
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []notice
}

func (n *recordingNotifier) Notify(_ context.Context, kind domain.NotificationKind, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice{kind: kind, payload: payload})
}

func (n *recordingNotifier) kinds() []domain.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.NotificationKind, 0, len(n.notices))
	for _, x := range n.notices {
		out = append(out, x.kind)
	}
	return out
}

func (n *recordingNotifier) last() notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.notices[len(n.notices)-1]
}

type fixture struct {
	clock      *clock.Fake
	refs       *memory.ReferenceStore
	bookings   *memory.BookingRepository
	ledger     *services.SeatLedger
	svc        *services.BookingService
	notifier   *recordingNotifier
	hook       *test.Hook
	scheduleID uuid.UUID
}

func newLogger() (*logrus.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger, hook
}

// newFixture runs a 12-seat daily bus departing at 09:00 for 50 per seat,
// backed by the in-memory stores.
func newFixture(t *testing.T, cache ports.SeatCache) *fixture {
	t.Helper()

	logger, hook := newLogger()
	clk := clock.NewFake(startTime)

	refs := memory.NewReferenceStore()
	routeID := uuid.New()
	scheduleID := uuid.New()
	refs.AddRoute(domain.Route{ID: routeID, Name: "North line", BaseFare: 50})
	refs.AddSchedule(domain.ScheduleTemplate{
		ID:            scheduleID,
		RouteID:       routeID,
		BusNumber:     "BUS-7",
		DepartureTime: 9 * 60,
		ArrivalTime:   11 * 60,
		DayOfWeek:     domain.Daily,
		TotalSeats:    12,
		Active:        true,
	})

	bookings := memory.NewBookingRepository()
	ledger := services.NewSeatLedger(bookings, clk, logger)
	notifier := &recordingNotifier{}

	cfg := services.DefaultBookingConfig()
	cfg.MaxSeatsPerBooking = 6

	svc := services.NewBookingService(ledger, refs, bookings, cache, notifier, cfg, clk, logger)

	return &fixture{
		clock:      clk,
		refs:       refs,
		bookings:   bookings,
		ledger:     ledger,
		svc:        svc,
		notifier:   notifier,
		hook:       hook,
		scheduleID: scheduleID,
	}
}

func (f *fixture) instance() domain.ScheduleInstance {
	return domain.NewScheduleInstance(f.scheduleID, journeyDate)
}

func (f *fixture) book(passengerID uuid.UUID, seats ...string) (*domain.BookingResult, error) {
	return f.svc.CreateBooking(context.Background(), services.CreateBookingRequest{
		PassengerID: passengerID,
		ScheduleID:  f.scheduleID,
		JourneyDate: journeyDate,
		SeatIDs:     seats,
	})
}

func (f *fixture) seatState(t *testing.T, seatID string) domain.SeatState {
	t.Helper()
	snap, err := f.ledger.Snapshot(context.Background(), f.instance(), domain.NewSeatLayout(12, 4))
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	state, err := snap.StateOf(seatID)
	if err != nil {
		t.Fatalf("state of %s: %v", seatID, err)
	}
	return state
}
