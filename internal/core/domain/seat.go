package domain

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type SeatState string

const (
	SeatFree      SeatState = "FREE"
	SeatHeld      SeatState = "HELD"
	SeatConfirmed SeatState = "CONFIRMED"
	SeatCancelled SeatState = "CANCELLED"
)

func (s SeatState) IsActive() bool {
	return s == SeatHeld || s == SeatConfirmed
}

// SeatLayout describes the seat map of a bus: rows are lettered from A,
// columns numbered from 1.
type SeatLayout struct {
	TotalSeats  int
	SeatsPerRow int
}

func NewSeatLayout(totalSeats, seatsPerRow int) SeatLayout {
	if seatsPerRow <= 0 {
		seatsPerRow = 4
	}
	return SeatLayout{TotalSeats: totalSeats, SeatsPerRow: seatsPerRow}
}

// SeatIDs lists every seat in row order: A1, A2, ... B1, ...
func (l SeatLayout) SeatIDs() []string {
	ids := make([]string, 0, l.TotalSeats)
	for i := 0; i < l.TotalSeats; i++ {
		ids = append(ids, l.seatAt(i))
	}
	return ids
}

func (l SeatLayout) seatAt(i int) string {
	row := i / l.SeatsPerRow
	col := i%l.SeatsPerRow + 1
	return rowLabel(row) + strconv.Itoa(col)
}

// Contains reports whether seatID names a seat of this layout.
func (l SeatLayout) Contains(seatID string) bool {
	_, ok := l.Canonical(seatID)
	return ok
}

// Canonical returns the layout's own spelling of seatID, so that equal seats
// always compare equal as strings.
func (l SeatLayout) Canonical(seatID string) (string, bool) {
	row, col, ok := parseSeatID(seatID)
	if !ok || col > l.SeatsPerRow {
		return "", false
	}
	index := row*l.SeatsPerRow + col - 1
	if index >= l.TotalSeats {
		return "", false
	}
	return l.seatAt(index), true
}

func rowLabel(row int) string {
	label := ""
	for {
		label = string(rune('A'+row%26)) + label
		row = row/26 - 1
		if row < 0 {
			return label
		}
	}
}

const (
	maxRowLetters   = 4
	maxColumnDigits = 4
)

func parseSeatID(seatID string) (row, col int, ok bool) {
	i := 0
	for i < len(seatID) && seatID[i] >= 'A' && seatID[i] <= 'Z' {
		i++
	}
	digits := seatID[i:]
	if i == 0 || i > maxRowLetters || len(digits) == 0 || len(digits) > maxColumnDigits || digits[0] == '0' {
		return 0, 0, false
	}
	row = -1
	for _, c := range seatID[:i] {
		row = (row+1)*26 + int(c-'A')
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, 0, false
		}
		col = col*10 + int(c-'0')
	}
	return row, col, true
}

// SeatClaim is one active claim on a seat as recorded by the ledger.
type SeatClaim struct {
	SeatID    string
	State     SeatState
	Holder    uuid.UUID
	ExpiresAt time.Time
}

type SeatView struct {
	SeatID string    `json:"seat_id"`
	State  SeatState `json:"state"`
}

// SeatSnapshot is a read-only seat map of one schedule instance.
type SeatSnapshot struct {
	ScheduleID  uuid.UUID  `json:"schedule_id"`
	JourneyDate string     `json:"journey_date"`
	Seats       []SeatView `json:"seats"`
	Free        int        `json:"free"`
	TakenAt     time.Time  `json:"taken_at"`
}

func (s *SeatSnapshot) StateOf(seatID string) (SeatState, error) {
	for _, v := range s.Seats {
		if v.SeatID == seatID {
			return v.State, nil
		}
	}
	return "", fmt.Errorf("seat %s not in snapshot", seatID)
}
