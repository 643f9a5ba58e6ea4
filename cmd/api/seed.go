package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/srgjo27/transit_reservation/internal/adapter/repository/memory"
	"github.com/srgjo27/transit_reservation/internal/core/domain"
)

var (
	demoRouteID    = uuid.MustParse("8d6c0a52-0f3e-4b8a-9a57-1f2f6f0e2a01")
	demoMorningID  = uuid.MustParse("1b0b7e0e-6a53-4bd6-9a3c-5f1f7d1c0b11")
	demoEveningID  = uuid.MustParse("1b0b7e0e-6a53-4bd6-9a3c-5f1f7d1c0b12")
	demoSaturdayID = uuid.MustParse("1b0b7e0e-6a53-4bd6-9a3c-5f1f7d1c0b13")
)

// seedDemoSchedules gives the in-memory store something to book against.
func seedDemoSchedules(refs *memory.ReferenceStore, log logrus.FieldLogger) {
	refs.AddRoute(domain.Route{
		ID:            demoRouteID,
		Name:          "Central - Airport",
		StartLocation: "Central Station",
		EndLocation:   "Airport Terminal 1",
		Stops:         []string{"Central Station", "Harbour", "Ring Road", "Airport Terminal 1"},
		DistanceKM:    32.5,
		BaseFare:      45,
	})

	for _, s := range []domain.ScheduleTemplate{
		{ID: demoMorningID, BusNumber: "BUS-101", DepartureTime: 7 * 60, ArrivalTime: 8*60 + 10, DayOfWeek: domain.Daily, TotalSeats: 40},
		{ID: demoEveningID, BusNumber: "BUS-102", DepartureTime: 18 * 60, ArrivalTime: 19*60 + 15, DayOfWeek: domain.Daily, TotalSeats: 40, Fare: 55},
		{ID: demoSaturdayID, BusNumber: "BUS-201", DepartureTime: 9*60 + 30, ArrivalTime: 10*60 + 40, DayOfWeek: time.Saturday, TotalSeats: 24},
	} {
		s.RouteID = demoRouteID
		s.Active = true
		refs.AddSchedule(s)
		log.WithFields(logrus.Fields{"schedule_id": s.ID, "bus": s.BusNumber}).Info("demo schedule loaded")
	}
}
