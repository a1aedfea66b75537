package domain

import "testing"

func TestCanTransition(t *testing.T) {
	if !CanTransition(BookingPending, BookingConfirmed) {
		t.Fatalf("expected PENDING -> CONFIRMED allowed")
	}
	if !CanTransition(BookingPending, BookingCancelled) {
		t.Fatalf("expected PENDING -> CANCELLED allowed")
	}
	if CanTransition(BookingPending, BookingCompleted) {
		t.Fatalf("expected PENDING -> COMPLETED not allowed")
	}
	if !CanTransition(BookingConfirmed, BookingNoShow) {
		t.Fatalf("expected CONFIRMED -> NO_SHOW allowed")
	}
	if CanTransition(BookingCancelled, BookingPending) {
		t.Fatalf("expected terminal CANCELLED to allow nothing")
	}
	if CanTransition(BookingCompleted, BookingCancelled) {
		t.Fatalf("expected terminal COMPLETED to allow nothing")
	}
	if CanTransition(BookingStatus("UNKNOWN"), BookingConfirmed) {
		t.Fatalf("expected unknown status to allow nothing")
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		start1, end1, start2, end2 string
		want                       bool
	}{
		{"identical windows", "10:00", "11:00", "10:00", "11:00", true},
		{"partial overlap", "10:00", "11:00", "10:30", "11:30", true},
		{"contained window", "10:00", "12:00", "10:30", "11:00", true},
		{"back to back", "10:00", "11:00", "11:00", "12:00", false},
		{"disjoint", "09:00", "10:00", "14:00", "15:00", false},
	}
	for _, tt := range tests {
		if got := Overlaps(tt.start1, tt.end1, tt.start2, tt.end2); got != tt.want {
			t.Errorf("%s: Overlaps(%s-%s, %s-%s) = %v, want %v",
				tt.name, tt.start1, tt.end1, tt.start2, tt.end2, got, tt.want)
		}
	}
}

func TestSlotTaken(t *testing.T) {
	existing := []*TestDriveBooking{
		{StartTime: "09:00", EndTime: "10:00", Status: BookingCancelled},
		{StartTime: "10:00", EndTime: "11:00", Status: BookingConfirmed},
	}

	if SlotTaken(existing, "09:00", "10:00") {
		t.Fatalf("cancelled booking must not block its slot")
	}
	if !SlotTaken(existing, "10:30", "11:30") {
		t.Fatalf("confirmed booking must block overlapping window")
	}
	if SlotTaken(existing, "11:00", "12:00") {
		t.Fatalf("adjacent window must not conflict")
	}
	if SlotTaken(nil, "10:00", "11:00") {
		t.Fatalf("no existing bookings, no conflict")
	}
}

func TestBookingStatusActive(t *testing.T) {
	active := []BookingStatus{BookingPending, BookingConfirmed}
	inactive := []BookingStatus{BookingCompleted, BookingCancelled, BookingNoShow}

	for _, s := range active {
		if !s.Active() {
			t.Errorf("expected %s active", s)
		}
	}
	for _, s := range inactive {
		if s.Active() {
			t.Errorf("expected %s inactive", s)
		}
	}
}
