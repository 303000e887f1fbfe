// Package progress defines the job lifecycle state machine.
//
// Status graph (canonical states):
//
//	Just_started ──► Taken ──► Checking_Stage ──► Completed ──► Closed By Bill - <billRef>
//	      │            │              │
//	      └── Hold / Waiting For Parts / Assign for another technician ── (freely, until closed)
//	      │
//	      └── Canceled ──► Returned & Closed ──► return note (flag, once)
//
// Comparison is case-insensitive; the canonical spelling is what gets stored.
// "Returned & Closed" and any "Closed By Bill - *" value are terminal.
// "Returned" is a legacy value kept for stored data: it freezes the job.
package progress

import "strings"

// Progress is the lifecycle status of a job. Values are either one of the
// canonical constants below or the composite billed form produced by
// ClosedByBill.
type Progress string

const (
	JustStarted       Progress = "Just_started"
	Taken             Progress = "Taken"
	CheckingStage     Progress = "Checking_Stage"
	Completed         Progress = "Completed"
	Hold              Progress = "Hold"
	WaitingForParts   Progress = "Waiting For Parts"
	AssignAnotherTech Progress = "Assign for another technician"
	Canceled          Progress = "Canceled"
	Returned          Progress = "Returned"
	ReturnedAndClosed Progress = "Returned & Closed"
)

const closedByBillPrefix = "Closed By Bill - "

// canonical lists every non-composite state, used by Parse.
var canonical = []Progress{
	JustStarted,
	Taken,
	CheckingStage,
	Completed,
	Hold,
	WaitingForParts,
	AssignAnotherTech,
	Canceled,
	Returned,
	ReturnedAndClosed,
}

// ClosedByBill builds the composite terminal state recording the bill
// reference that closed the job.
func ClosedByBill(billRef string) Progress {
	return Progress(closedByBillPrefix + billRef)
}

// Parse converts a raw string to a Progress. Matching is case-insensitive;
// the returned value carries the canonical spelling. Composite billed values
// are accepted as long as they carry a non-empty bill reference.
func Parse(s string) (Progress, error) {
	for _, c := range canonical {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	if ref, ok := Progress(s).BillRef(); ok && ref != "" {
		return Progress(s), nil
	}
	return "", newInvalid("unknown job progress %q", s)
}

// Is reports whether p equals other under the machine's case-insensitive
// comparison rule.
func (p Progress) Is(other Progress) bool {
	return strings.EqualFold(string(p), string(other))
}

// IsClosedByBill reports whether p is the composite billed state.
func (p Progress) IsClosedByBill() bool {
	return len(p) >= len("Closed By Bill") &&
		strings.EqualFold(string(p)[:len("Closed By Bill")], "Closed By Bill")
}

// BillRef extracts the bill reference from a composite billed value.
func (p Progress) BillRef() (string, bool) {
	if len(p) < len(closedByBillPrefix) || !strings.EqualFold(string(p)[:len(closedByBillPrefix)], closedByBillPrefix) {
		return "", false
	}
	return string(p)[len(closedByBillPrefix):], true
}

// IsTerminal reports whether no further progress transition is permitted.
func (p Progress) IsTerminal() bool {
	return p.Is(ReturnedAndClosed) || p.IsClosedByBill()
}

// IsFrozen covers the closed-job gate: terminal states plus the legacy
// "Returned" value, which permits no technician or progress edits.
func (p Progress) IsFrozen() bool {
	return p.IsTerminal() || p.Is(Returned)
}

// CanBill reports whether a job in state p is eligible for billing. Only the
// exact canonical Completed value qualifies; already-billed composites do not.
func CanBill(p Progress) bool {
	return p == Completed
}
