package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/transit_reservation/internal/core/domain"
)

// ReferenceStore keeps routes and schedule templates in memory. It is filled
// at start-up and only read afterwards.
type ReferenceStore struct {
	mu        sync.RWMutex
	routes    map[uuid.UUID]domain.Route
	schedules map[uuid.UUID]domain.ScheduleTemplate
}

func NewReferenceStore() *ReferenceStore {
	return &ReferenceStore{
		routes:    make(map[uuid.UUID]domain.Route),
		schedules: make(map[uuid.UUID]domain.ScheduleTemplate),
	}
}

func (s *ReferenceStore) AddRoute(r domain.Route) {
	s.mu.Lock()
	s.routes[r.ID] = r
	s.mu.Unlock()
}

func (s *ReferenceStore) AddSchedule(t domain.ScheduleTemplate) {
	s.mu.Lock()
	s.schedules[t.ID] = t
	s.mu.Unlock()
}

func (s *ReferenceStore) GetRoute(ctx context.Context, routeID uuid.UUID) (*domain.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.routes[routeID]
	if !ok {
		return nil, domain.NewError(domain.KindScheduleNotFound, "route not found")
	}
	return &r, nil
}

func (s *ReferenceStore) GetSchedule(ctx context.Context, scheduleID uuid.UUID) (*domain.ScheduleTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.schedules[scheduleID]
	if !ok {
		return nil, domain.NewError(domain.KindScheduleNotFound, "schedule not found")
	}
	return &t, nil
}

func (s *ReferenceStore) GetScheduleInstance(ctx context.Context, scheduleID uuid.UUID, journeyDate time.Time) (*domain.ScheduleInstanceInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst := domain.NewScheduleInstance(scheduleID, journeyDate)
	t, ok := s.schedules[scheduleID]
	if !ok {
		return &domain.ScheduleInstanceInfo{Instance: inst}, nil
	}

	fare := t.Fare
	if fare == 0 {
		fare = s.routes[t.RouteID].BaseFare
	}

	return &domain.ScheduleInstanceInfo{
		Instance:      inst,
		Exists:        true,
		IsActive:      t.RunsOn(inst.JourneyDate),
		TotalSeats:    t.TotalSeats,
		Fare:          fare,
		DepartureTime: t.DepartureTime,
	}, nil
}
