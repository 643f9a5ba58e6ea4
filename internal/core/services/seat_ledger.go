package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/srgjo27/transit_reservation/internal/core/domain"
	"github.com/srgjo27/transit_reservation/internal/core/ports"
	"github.com/srgjo27/transit_reservation/internal/platform/clock"
)

type seatEntry struct {
	state     domain.SeatState
	holder    uuid.UUID
	expiresAt time.Time
}

func (e *seatEntry) occupied(now time.Time) bool {
	switch e.state {
	case domain.SeatConfirmed:
		return true
	case domain.SeatHeld:
		return now.Before(e.expiresAt)
	}
	return false
}

// arena holds the active seat entries of one schedule instance. Free seats
// have no entry.
type arena struct {
	inst  domain.ScheduleInstance
	seats map[string]*seatEntry
}

// SeatHold is the result of a successful TryHold.
type SeatHold struct {
	Instance  domain.ScheduleInstance
	SeatIDs   []string
	Holder    uuid.UUID
	ExpiresAt time.Time
}

// SeatLedger is the authoritative seat state of every schedule instance. All
// reads and writes of one instance happen under that instance's lock, so each
// operation is a single check-and-set against the others. Different instances
// never wait on each other.
type SeatLedger struct {
	locks  *keyedMutex
	mu     sync.RWMutex
	arenas map[string]*arena
	loader ports.SeatClaimLoader
	clock  clock.Clock
	log    logrus.FieldLogger
}

func NewSeatLedger(loader ports.SeatClaimLoader, clk clock.Clock, logger logrus.FieldLogger) *SeatLedger {
	return &SeatLedger{
		locks:  newKeyedMutex(),
		arenas: make(map[string]*arena),
		loader: loader,
		clock:  clk,
		log:    logger.WithField("component", "seat_ledger"),
	}
}

// TryHold holds every seat in seatIDs for holder until expiresAt, or none of
// them. A seat whose hold has lapsed counts as free even before the sweep.
func (l *SeatLedger) TryHold(ctx context.Context, inst domain.ScheduleInstance, seatIDs []string, holder uuid.UUID, expiresAt time.Time) (*SeatHold, error) {
	if err := checkSeatSet(seatIDs); err != nil {
		return nil, err
	}

	unlock := l.locks.Lock(inst.Key())
	defer unlock()

	a, err := l.arena(ctx, inst)
	if err != nil {
		return nil, err
	}

	now := l.clock.Now()
	var taken []string
	for _, id := range seatIDs {
		if e, ok := a.seats[id]; ok && e.occupied(now) {
			taken = append(taken, id)
		}
	}
	if len(taken) > 0 {
		return nil, domain.NewError(domain.KindSeatUnavailable,
			fmt.Sprintf("seats %s are no longer available", strings.Join(taken, ", ")))
	}

	for _, id := range seatIDs {
		a.seats[id] = &seatEntry{state: domain.SeatHeld, holder: holder, expiresAt: expiresAt}
	}

	return &SeatHold{
		Instance:  inst,
		SeatIDs:   append([]string(nil), seatIDs...),
		Holder:    holder,
		ExpiresAt: expiresAt,
	}, nil
}

// Confirm turns holder's live holds on seatIDs into confirmed seats.
func (l *SeatLedger) Confirm(ctx context.Context, inst domain.ScheduleInstance, seatIDs []string, holder uuid.UUID) error {
	return l.ConfirmWith(ctx, inst, seatIDs, holder, nil)
}

// ConfirmWith is Confirm with a commit step. commit runs under the instance
// lock after every seat has been checked; the seats only change state when
// commit returns nil.
func (l *SeatLedger) ConfirmWith(ctx context.Context, inst domain.ScheduleInstance, seatIDs []string, holder uuid.UUID, commit func() error) error {
	if err := checkSeatSet(seatIDs); err != nil {
		return err
	}

	unlock := l.locks.Lock(inst.Key())
	defer unlock()

	a, err := l.arena(ctx, inst)
	if err != nil {
		return err
	}

	now := l.clock.Now()
	for _, id := range seatIDs {
		e, ok := a.seats[id]
		if !ok || e.state != domain.SeatHeld || e.holder != holder || !now.Before(e.expiresAt) {
			return l.conflict(inst, id, holder, "confirm of a seat not held by caller")
		}
	}

	if commit != nil {
		if err := commit(); err != nil {
			return err
		}
	}

	for _, id := range seatIDs {
		e := a.seats[id]
		e.state = domain.SeatConfirmed
		e.expiresAt = time.Time{}
	}
	return nil
}

// Release frees holder's held or confirmed seats. Every seat is checked before
// any is released.
func (l *SeatLedger) Release(ctx context.Context, inst domain.ScheduleInstance, seatIDs []string, holder uuid.UUID) error {
	return l.ReleaseWith(ctx, inst, seatIDs, holder, nil)
}

// ReleaseWith is Release with a commit step, run under the instance lock once
// the whole batch has been checked. A failed commit releases nothing.
func (l *SeatLedger) ReleaseWith(ctx context.Context, inst domain.ScheduleInstance, seatIDs []string, holder uuid.UUID, commit func() error) error {
	if err := checkSeatSet(seatIDs); err != nil {
		return err
	}

	unlock := l.locks.Lock(inst.Key())
	defer unlock()

	a, err := l.arena(ctx, inst)
	if err != nil {
		return err
	}

	for _, id := range seatIDs {
		e, ok := a.seats[id]
		if !ok || !e.state.IsActive() || e.holder != holder {
			return l.conflict(inst, id, holder, "release of a seat not held by caller")
		}
	}

	if commit != nil {
		if err := commit(); err != nil {
			return err
		}
	}

	var abandoned, cancelled []string
	for _, id := range seatIDs {
		if a.seats[id].state == domain.SeatHeld {
			abandoned = append(abandoned, id)
		} else {
			cancelled = append(cancelled, id)
		}
		delete(a.seats, id)
	}

	fields := logrus.Fields{"instance": inst.Key(), "holder": holder}
	if len(abandoned) > 0 {
		l.log.WithFields(fields).WithField("seats", abandoned).Info("abandoned hold released")
	}
	if len(cancelled) > 0 {
		l.log.WithFields(fields).WithField("seats", cancelled).Info("confirmed seats cancelled, back on sale")
	}
	return nil
}

// Snapshot renders the seat map of inst. It is a read path only; allocation
// never consults a snapshot.
func (l *SeatLedger) Snapshot(ctx context.Context, inst domain.ScheduleInstance, layout domain.SeatLayout) (*domain.SeatSnapshot, error) {
	unlock := l.locks.Lock(inst.Key())
	defer unlock()

	a, err := l.arena(ctx, inst)
	if err != nil {
		return nil, err
	}

	now := l.clock.Now()
	snap := &domain.SeatSnapshot{
		ScheduleID:  inst.ScheduleID,
		JourneyDate: inst.JourneyDate.Format(domain.DateLayout),
		TakenAt:     now,
	}
	for _, id := range layout.SeatIDs() {
		state := domain.SeatFree
		if e, ok := a.seats[id]; ok && e.occupied(now) {
			state = e.state
		}
		if state == domain.SeatFree {
			snap.Free++
		}
		snap.Seats = append(snap.Seats, domain.SeatView{SeatID: id, State: state})
	}
	return snap, nil
}

// SweepExpired drops lapsed holds and forgets instances whose journey date is
// long gone. It returns the instances whose seat map changed.
func (l *SeatLedger) SweepExpired(ctx context.Context) []domain.ScheduleInstance {
	l.mu.RLock()
	keys := make([]string, 0, len(l.arenas))
	for k := range l.arenas {
		keys = append(keys, k)
	}
	l.mu.RUnlock()
	sort.Strings(keys)

	now := l.clock.Now()
	horizon := domain.DateOf(now).AddDate(0, 0, -1)

	var changed []domain.ScheduleInstance
	for _, key := range keys {
		if ctx.Err() != nil {
			break
		}
		if inst, n := l.sweepOne(key, now, horizon); n > 0 {
			changed = append(changed, inst)
		}
	}
	return changed
}

func (l *SeatLedger) sweepOne(key string, now, horizon time.Time) (domain.ScheduleInstance, int) {
	unlock := l.locks.Lock(key)
	defer unlock()

	l.mu.RLock()
	a, ok := l.arenas[key]
	l.mu.RUnlock()
	if !ok {
		return domain.ScheduleInstance{}, 0
	}

	var expired []string
	for id, e := range a.seats {
		if e.state == domain.SeatHeld && !now.Before(e.expiresAt) {
			expired = append(expired, id)
			delete(a.seats, id)
		}
	}
	if len(expired) > 0 {
		sort.Strings(expired)
		l.log.WithFields(logrus.Fields{"instance": key, "seats": expired}).Info("expired holds released")
	}

	if a.inst.JourneyDate.Before(horizon) {
		l.mu.Lock()
		delete(l.arenas, key)
		l.mu.Unlock()
	}
	return a.inst, len(expired)
}

// arena returns the state of inst, loading persisted claims on first use.
// Callers hold the instance lock.
func (l *SeatLedger) arena(ctx context.Context, inst domain.ScheduleInstance) (*arena, error) {
	key := inst.Key()

	l.mu.RLock()
	a, ok := l.arenas[key]
	l.mu.RUnlock()
	if ok {
		return a, nil
	}

	a = &arena{inst: inst, seats: make(map[string]*seatEntry)}
	if l.loader != nil {
		claims, err := l.loader.ActiveSeats(ctx, inst)
		if err != nil {
			return nil, domain.Wrap(domain.KindInternal, "load seat claims", err)
		}
		for _, c := range claims {
			a.seats[c.SeatID] = &seatEntry{state: c.State, holder: c.Holder, expiresAt: c.ExpiresAt}
		}
	}

	l.mu.Lock()
	l.arenas[key] = a
	l.mu.Unlock()
	return a, nil
}

func (l *SeatLedger) conflict(inst domain.ScheduleInstance, seatID string, holder uuid.UUID, msg string) error {
	l.log.WithFields(logrus.Fields{
		"instance": inst.Key(),
		"seat_id":  seatID,
		"holder":   holder,
	}).Error(msg)
	return domain.NewError(domain.KindStateConflict, fmt.Sprintf("%s: seat %s", msg, seatID))
}

func checkSeatSet(seatIDs []string) error {
	if len(seatIDs) == 0 {
		return domain.NewError(domain.KindInvalidRequest, "no seats selected")
	}
	seen := make(map[string]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		if _, dup := seen[id]; dup {
			return domain.NewError(domain.KindInvalidSeat, fmt.Sprintf("seat %s requested twice", id))
		}
		seen[id] = struct{}{}
	}
	return nil
}
