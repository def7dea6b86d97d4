package feedback

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidleathers/shadow-automation-backend/internal/domain/errors"
	"github.com/davidleathers/shadow-automation-backend/internal/domain/risk"
)

func newPending(t *testing.T) *Feedback {
	t.Helper()
	f, err := New(uuid.New(), uuid.New(), "reviewer@example.com",
		TypeCorrectDetection, SentimentPositive, Snapshot{
			AutomationName: "ChatGPT Connector",
			Platform:       "google",
			AIDetected:     true,
			AIProvider:     "openai",
			RiskLevel:      risk.LevelHigh,
			RiskScore:      55,
		})
	require.NoError(t, err)
	return f
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name      string
		orgID     uuid.UUID
		autoID    uuid.UUID
		submitter string
		typ       Type
		sentiment Sentiment
		wantError bool
	}{
		{"valid", uuid.New(), uuid.New(), "a@b.c", TypeFalsePositive, SentimentNegative, false},
		{"nil org", uuid.Nil, uuid.New(), "a@b.c", TypeFalsePositive, SentimentNegative, true},
		{"nil automation", uuid.New(), uuid.Nil, "a@b.c", TypeFalsePositive, SentimentNegative, true},
		{"empty submitter", uuid.New(), uuid.New(), "", TypeFalsePositive, SentimentNegative, true},
		{"bad type", uuid.New(), uuid.New(), "a@b.c", Type("meh"), SentimentNegative, true},
		{"bad sentiment", uuid.New(), uuid.New(), "a@b.c", TypeOther, Sentiment("angry"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.orgID, tt.autoID, tt.submitter, tt.typ, tt.sentiment, Snapshot{})
			if tt.wantError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusPending, f.Status)
		})
	}
}

func TestLifecycle_ForwardOnly(t *testing.T) {
	f := newPending(t)

	require.NoError(t, f.Acknowledge())
	assert.Equal(t, StatusAcknowledged, f.Status)
	require.NotNil(t, f.AcknowledgedAt)

	require.NoError(t, f.Resolve(Resolution{Action: "dismissed", ResolvedBy: "admin@example.com"}))
	assert.Equal(t, StatusResolved, f.Status)
	require.NotNil(t, f.Resolution)
	assert.False(t, f.Resolution.ResolvedAt.IsZero())

	// archive before retention elapses is rejected
	err := f.Archive(90 * 24 * time.Hour)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeBusiness))

	// backdate resolution past the retention window
	old := time.Now().Add(-91 * 24 * time.Hour)
	f.ResolvedAt = &old
	require.NoError(t, f.Archive(90*24*time.Hour))
	assert.Equal(t, StatusArchived, f.Status)
}

func TestLifecycle_BackwardTransitionsRejected(t *testing.T) {
	f := newPending(t)
	require.NoError(t, f.Acknowledge())

	err := f.Acknowledge()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTransition))
	assert.Equal(t, StatusAcknowledged, f.Status)
}

func TestArchive_FromPendingRejected(t *testing.T) {
	f := newPending(t)

	err := f.Archive(0)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTransition))

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "pending", appErr.Details["from"])
	assert.Equal(t, "archived", appErr.Details["to"])
	assert.Equal(t, StatusPending, f.Status)
}

func TestResolve_RequiresPayload(t *testing.T) {
	f := newPending(t)

	err := f.Resolve(Resolution{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	assert.Equal(t, StatusPending, f.Status)
}

func TestResolve_FromPendingAllowed(t *testing.T) {
	f := newPending(t)
	require.NoError(t, f.Resolve(Resolution{Action: "confirmed", ResolvedBy: "admin@example.com"}))
	assert.Equal(t, StatusResolved, f.Status)
}

func TestStatusRank_NonDecreasingUnderAllSequences(t *testing.T) {
	transitions := []func(*Feedback) error{
		func(f *Feedback) error { return f.Acknowledge() },
		func(f *Feedback) error {
			return f.Resolve(Resolution{Action: "a", ResolvedBy: "b"})
		},
		func(f *Feedback) error { return f.Archive(0) },
	}

	// every ordering of the three transitions, applied to a fresh record
	orders := [][]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}
	for _, order := range orders {
		f := newPending(t)
		prev := f.Status.Rank()
		for _, i := range order {
			_ = transitions[i](f)
			assert.GreaterOrEqual(t, f.Status.Rank(), prev)
			prev = f.Status.Rank()
		}
	}
}
