package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	billed := ClosedByBill("IDSBN-10-2025-234")

	tests := []struct {
		name      string
		current   Progress
		requested Progress
		wantErr   string
		wantNext  Progress
	}{
		{name: "intake to taken", current: JustStarted, requested: Taken, wantNext: Taken},
		{name: "taken to hold", current: Taken, requested: Hold, wantNext: Hold},
		{name: "hold to checking", current: Hold, requested: CheckingStage, wantNext: CheckingStage},
		{name: "taken to waiting for parts", current: Taken, requested: WaitingForParts, wantNext: WaitingForParts},
		{name: "reassign technician state", current: Hold, requested: AssignAnotherTech, wantNext: AssignAnotherTech},
		{name: "cancel from checking", current: CheckingStage, requested: Canceled, wantNext: Canceled},

		{name: "complete from checking", current: CheckingStage, requested: Completed, wantNext: Completed},
		{name: "complete from taken rejected", current: Taken, requested: Completed,
			wantErr: "job must be checked and confirmed ready before completion"},
		{name: "complete from intake rejected", current: JustStarted, requested: Completed,
			wantErr: "job must be checked and confirmed ready before completion"},
		{name: "complete from hold rejected", current: Hold, requested: Completed,
			wantErr: "job must be checked and confirmed ready before completion"},

		{name: "close return from canceled", current: Canceled, requested: ReturnedAndClosed, wantNext: ReturnedAndClosed},
		{name: "close return from completed rejected", current: Completed, requested: ReturnedAndClosed,
			wantErr: "only canceled jobs may be returned & closed"},
		{name: "close return from returned rejected", current: Returned, requested: ReturnedAndClosed,
			wantErr: "only canceled jobs may be returned & closed"},

		{name: "bill from completed", current: Completed, requested: billed, wantNext: billed},
		{name: "bill from checking rejected", current: CheckingStage, requested: billed,
			wantErr: "only completed jobs may be billed"},

		{name: "edit billed job rejected", current: billed, requested: Taken,
			wantErr: "job is closed; no further edits permitted"},
		{name: "edit returned & closed rejected", current: ReturnedAndClosed, requested: Hold,
			wantErr: "job is closed; no further edits permitted"},
		{name: "edit legacy returned rejected", current: Returned, requested: Taken,
			wantErr: "job is closed; no further edits permitted"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Check(tt.current, tt.requested)
			if tt.wantErr != "" {
				require.Error(t, err)
				var terr *TransitionError
				require.ErrorAs(t, err, &terr)
				assert.Equal(t, KindInvalidTransition, terr.Kind)
				assert.Equal(t, tt.wantErr, terr.Message)
				return
			}
			require.NoError(t, err)
			assert.False(t, res.Identity)
			assert.Equal(t, tt.wantNext, res.Next)
		})
	}
}

// Re-requesting the current state is a no-op that always succeeds and emits
// nothing, so a second "Completed" never re-stamps the date or re-notifies.
func TestCheckIdentityTransition(t *testing.T) {
	for _, p := range []Progress{JustStarted, Completed, Canceled, ReturnedAndClosed, ClosedByBill("IDSBN-1-2025-001")} {
		res, err := Check(p, p)
		require.NoError(t, err, "identity on %q", p)
		assert.True(t, res.Identity)
		assert.Equal(t, p, res.Next)
		assert.Empty(t, res.Intents)
	}

	// case-insensitive identity
	res, err := Check(Completed, Progress("completed"))
	require.NoError(t, err)
	assert.True(t, res.Identity)
	assert.Equal(t, Completed, res.Next)
}

func TestCheckCompletedIntents(t *testing.T) {
	res, err := Check(CheckingStage, Completed)
	require.NoError(t, err)
	require.Len(t, res.Intents, 2)
	assert.Equal(t, IntentSetCompletedDate, res.Intents[0].Kind)
	assert.Equal(t, IntentNotifyCustomer, res.Intents[1].Kind)
	assert.Equal(t, NotifyTemplateJobCompleted, res.Intents[1].Template)
}

func TestCheckPlainTransitionsEmitNoIntents(t *testing.T) {
	res, err := Check(JustStarted, Taken)
	require.NoError(t, err)
	assert.Empty(t, res.Intents)
}

func TestCheckBill(t *testing.T) {
	require.NoError(t, CheckBill(Completed))

	for _, p := range []Progress{JustStarted, CheckingStage, Canceled, ReturnedAndClosed, ClosedByBill("IDSBN-1-2025-001")} {
		err := CheckBill(p)
		require.Error(t, err, "state %q", p)
		var terr *TransitionError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, "only completed jobs may be billed", terr.Message)
	}
}

func TestCheckReturnNote(t *testing.T) {
	require.NoError(t, CheckReturnNote(ReturnedAndClosed, ""))

	err := CheckReturnNote(Canceled, "")
	require.Error(t, err)
	var terr *TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, KindInvalidTransition, terr.Kind)

	err = CheckReturnNote(ReturnedAndClosed, "issued")
	require.Error(t, err)
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, KindDuplicateOperation, terr.Kind)
	assert.Equal(t, "return note already issued for this job", terr.Message)
}

func TestTargets(t *testing.T) {
	got := Targets(JustStarted)
	assert.Contains(t, got, Taken)
	assert.Contains(t, got, Hold)
	assert.NotContains(t, got, Completed, "completion requires Checking_Stage")
	assert.NotContains(t, got, Returned, "legacy value never offered")
	assert.NotContains(t, got, ReturnedAndClosed, "requires Canceled")

	got = Targets(CheckingStage)
	assert.Contains(t, got, Completed)

	got = Targets(Canceled)
	assert.Contains(t, got, ReturnedAndClosed)

	assert.Empty(t, Targets(ReturnedAndClosed))
	assert.Empty(t, Targets(ClosedByBill("IDSBN-1-2025-001")))
	assert.Empty(t, Targets(Returned))
}
