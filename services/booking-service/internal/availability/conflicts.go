package availability

// StatusCancelled is the one appointment status the conflict set ignores.
// Every other status (pending, confirmed, completed, no_show) keeps its
// interval blocked.
const StatusCancelled = "cancelled"

// Appointment is an immutable snapshot of an existing booking on the
// queried date. Start < End is an upstream invariant.
type Appointment struct {
	ID      string
	StaffID string
	Status  string
	Start   TimeOfDay
	End     TimeOfDay
}

// Block is an administrator-imposed unavailable interval on the queried
// date. An empty StaffID applies to all staff; AllDay makes Start/End
// irrelevant.
type Block struct {
	StaffID string
	AllDay  bool
	Start   TimeOfDay
	End     TimeOfDay
}

// ConflictSet holds the appointments and blocks that can invalidate
// candidate slots for one (date, staff) query.
type ConflictSet struct {
	appointments []Appointment
	blocks       []Block
	allDay       bool
}

// BuildConflictSet filters day snapshots down to the entries relevant to the
// requested staff member.
//
// With a specific staff id, appointments assigned to other staff do not
// block, while staff-agnostic ones do. With no staff preference every
// non-cancelled appointment blocks: the business runs a single de-facto
// timeline, and treating it as such prevents hidden double-booking.
//
// An all-day block always applies. A partial block applies when it has no
// staff id or its staff id matches the request.
func BuildConflictSet(appointments []Appointment, blocks []Block, staffID string) ConflictSet {
	var cs ConflictSet
	for _, a := range appointments {
		if a.Status == StatusCancelled {
			continue
		}
		if staffID != "" && a.StaffID != "" && a.StaffID != staffID {
			continue
		}
		cs.appointments = append(cs.appointments, a)
	}
	for _, b := range blocks {
		if b.AllDay {
			cs.allDay = true
			continue
		}
		if staffID != "" && b.StaffID != "" && b.StaffID != staffID {
			continue
		}
		cs.blocks = append(cs.blocks, b)
	}
	return cs
}

// AllDayBlocked reports whether the whole date is blocked out.
func (cs ConflictSet) AllDayBlocked() bool {
	return cs.allDay
}

// Blocks reports whether the half-open interval [start, end) collides with
// anything in the set.
func (cs ConflictSet) Blocks(start, end TimeOfDay) bool {
	if cs.allDay {
		return true
	}
	for _, a := range cs.appointments {
		if Overlaps(start, end, a.Start, a.End) {
			return true
		}
	}
	for _, b := range cs.blocks {
		if Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}
