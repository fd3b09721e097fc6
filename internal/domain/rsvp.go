package domain

import (
	"slices"
	"time"
)

// MaxRecords bounds every list, stats and export read.
const MaxRecords = 1000

const (
	GuestSolo    = "solo"
	GuestPlusOne = "plus_one"
)

const (
	EventReception = "reception"
	EventMuhurtham = "muhurtham"
)

// RSVP is one guest submission. It is written once and never updated.
type RSVP struct {
	ID              string    `json:"id" bson:"id"`
	FullName        string    `json:"full_name" bson:"full_name"`
	AttendingEvents []string  `json:"attending_events" bson:"attending_events"`
	GuestStatus     string    `json:"guest_status" bson:"guest_status"`
	PlusOneName     *string   `json:"plus_one_name" bson:"plus_one_name"`
	Timestamp       time.Time `json:"timestamp" bson:"timestamp"`
}

// CreateRSVPRequest is the public submission payload. Pointers distinguish a
// missing or null value from an empty string; only presence is checked.
type CreateRSVPRequest struct {
	FullName        *string   `json:"full_name" validate:"required"`
	AttendingEvents []*string `json:"attending_events" validate:"required,dive,required"`
	GuestStatus     *string   `json:"guest_status" validate:"required"`
	PlusOneName     *string   `json:"plus_one_name"`
}

type AdminLoginRequest struct {
	Password *string `json:"password" validate:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type Stats struct {
	TotalRSVPs     int `json:"total_rsvps"`
	TotalGuests    int `json:"total_guests"`
	ReceptionCount int `json:"reception_count"`
	MuhurthamCount int `json:"muhurtham_count"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// NewRSVP builds the record to persist. The timestamp is kept in UTC at
// millisecond precision, which both stores round-trip unchanged. The plus-one
// name survives only for plus_one submissions; for any other status it is
// dropped silently.
func NewRSVP(id string, ts time.Time, req *CreateRSVPRequest) RSVP {
	r := RSVP{
		ID:              id,
		AttendingEvents: make([]string, 0, len(req.AttendingEvents)),
		Timestamp:       ts.UTC().Truncate(time.Millisecond),
	}
	for _, ev := range req.AttendingEvents {
		if ev != nil {
			r.AttendingEvents = append(r.AttendingEvents, *ev)
		}
	}
	if req.FullName != nil {
		r.FullName = *req.FullName
	}
	if req.GuestStatus != nil {
		r.GuestStatus = *req.GuestStatus
	}
	if r.GuestStatus == GuestPlusOne && req.PlusOneName != nil {
		name := *req.PlusOneName
		r.PlusOneName = &name
	}
	return r
}

func (r *RSVP) Attends(event string) bool {
	return slices.Contains(r.AttendingEvents, event)
}

// BringsNamedPlusOne is true only when a plus_one record carries a non-empty
// companion name. An unnamed plus-one does not count as an extra guest.
func (r *RSVP) BringsNamedPlusOne() bool {
	return r.GuestStatus == GuestPlusOne && r.PlusOneName != nil && *r.PlusOneName != ""
}

// PlusOneNameOrEmpty renders an absent name as "".
func (r *RSVP) PlusOneNameOrEmpty() string {
	if r.PlusOneName == nil {
		return ""
	}
	return *r.PlusOneName
}
