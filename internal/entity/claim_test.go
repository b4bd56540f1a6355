package entity_test

import (
	"testing"

	"github.com/mapuy555/warranty-server/internal/entity"

	"github.com/stretchr/testify/require"
)

func TestClaimStatus_CanTransitionTo(t *testing.T) {
	testCases := []struct {
		from    entity.ClaimStatus
		to      entity.ClaimStatus
		allowed bool
	}{
		{entity.ClaimPending, entity.ClaimInProgress, true},
		{entity.ClaimPending, entity.ClaimCompleted, true},
		{entity.ClaimPending, entity.ClaimRejected, true},
		{entity.ClaimInProgress, entity.ClaimCompleted, true},
		{entity.ClaimInProgress, entity.ClaimRejected, true},
		{entity.ClaimInProgress, entity.ClaimPending, false},
		{entity.ClaimCompleted, entity.ClaimRejected, false},
		{entity.ClaimCompleted, entity.ClaimInProgress, false},
		{entity.ClaimRejected, entity.ClaimPending, false},
		{entity.ClaimRejected, entity.ClaimCompleted, false},
	}

	for _, tc := range testCases {
		t.Run(string(tc.from)+"_to_"+string(tc.to), func(t *testing.T) {
			require.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestClaimStatus_Terminal(t *testing.T) {
	require.False(t, entity.ClaimPending.Terminal())
	require.False(t, entity.ClaimInProgress.Terminal())
	require.True(t, entity.ClaimCompleted.Terminal())
	require.True(t, entity.ClaimRejected.Terminal())
}

func TestParseClaimStatus(t *testing.T) {
	status, err := entity.ParseClaimStatus("in_progress")
	require.NoError(t, err)
	require.Equal(t, entity.ClaimInProgress, status)

	_, err = entity.ParseClaimStatus("escalated")
	require.ErrorIs(t, err, entity.ErrInvalidStatus)
}
