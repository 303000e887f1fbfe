package progress

// IntentKind names a side effect a successful transition asks the dispatcher
// to perform. The transition itself is committed first; intents run after and
// their failures never roll it back.
type IntentKind int

const (
	// IntentSetCompletedDate stamps completed_date on first entry into
	// Completed. Applied as part of the committed write, not dispatched.
	IntentSetCompletedDate IntentKind = iota + 1
	// IntentNotifyCustomer asks the dispatcher to message the customer.
	IntentNotifyCustomer
	// IntentGenerateReturnNote asks the dispatcher to produce the return
	// note document for a freshly flipped job_return_note flag.
	IntentGenerateReturnNote
)

// Intent pairs a side-effect kind with the notification template it renders,
// where one applies.
type Intent struct {
	Kind     IntentKind
	Template string
}

// NotifyTemplateJobCompleted is the customer message sent on entering Completed.
const NotifyTemplateJobCompleted = "job_completed"

// Result describes an accepted transition.
type Result struct {
	// Next is the value to store, in canonical spelling.
	Next Progress
	// Identity is true when the requested state equals the current one.
	// Identity transitions always succeed, change nothing, and emit no
	// intents, so re-requesting Completed never re-stamps the date or
	// re-sends the notification.
	Identity bool
	// Intents lists the side effects to dispatch, in order.
	Intents []Intent
}

// Check validates a requested transition from current to requested and, when
// legal, returns the value to store plus the side-effect intents to dispatch.
// Rules run in a fixed order and the first violated rule rejects the request
// with a *TransitionError; no partial result is returned.
func Check(current, requested Progress) (Result, error) {
	if current.Is(requested) {
		return Result{Next: current, Identity: true}, nil
	}

	switch {
	case requested.Is(Completed):
		if !current.Is(CheckingStage) {
			return Result{}, newInvalid("job must be checked and confirmed ready before completion")
		}
		return Result{
			Next: Completed,
			Intents: []Intent{
				{Kind: IntentSetCompletedDate},
				{Kind: IntentNotifyCustomer, Template: NotifyTemplateJobCompleted},
			},
		}, nil

	case requested.Is(ReturnedAndClosed):
		if !current.Is(Canceled) {
			return Result{}, newInvalid("only canceled jobs may be returned & closed")
		}
		return Result{Next: ReturnedAndClosed}, nil

	case requested.IsClosedByBill():
		// Never issued by an edit form directly; CheckBill guards the
		// billing action. Kept here so a raw request gets the same answer.
		if current != Completed {
			return Result{}, newInvalid("only completed jobs may be billed")
		}
		return Result{Next: requested}, nil

	default:
		if current.IsFrozen() {
			return Result{}, newInvalid("job is closed; no further edits permitted")
		}
		return Result{Next: requested}, nil
	}
}

// CheckBill validates the billing action: the unique producer of the
// composite Closed By Bill state. Requires the exact canonical Completed value.
func CheckBill(current Progress) error {
	if current != Completed {
		return newInvalid("only completed jobs may be billed")
	}
	return nil
}

// CheckReturnNote validates issuing the one-time return note. The job must be
// Returned & Closed and the job_return_note flag must still be unset.
func CheckReturnNote(current Progress, returnNote string) error {
	if !current.Is(ReturnedAndClosed) {
		return newInvalid("only returned & closed jobs may issue a return note")
	}
	if returnNote != "" {
		return Duplicate("return note already issued for this job")
	}
	return nil
}

// Targets lists the states an edit form may legally request from current, so
// list views can expose only legal actions. The composite billed state is
// excluded (it is produced by the billing action alone) and the legacy
// Returned value is never offered.
func Targets(current Progress) []Progress {
	var out []Progress
	for _, t := range canonical {
		if t.Is(current) || t.Is(Returned) {
			continue
		}
		if _, err := Check(current, t); err == nil {
			out = append(out, t)
		}
	}
	return out
}
