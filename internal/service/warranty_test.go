package service_test

import (
	"testing"
	"time"

	"github.com/mapuy555/warranty-server/internal/entity"
	"github.com/mapuy555/warranty-server/internal/service"

	"github.com/stretchr/testify/require"
)

func TestComputeWarrantyUntil(t *testing.T) {
	testCases := []struct {
		desc     string
		base     time.Time
		days     int
		expected time.Time
	}{
		{
			desc:     "MidnightBase",
			base:     time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			days:     365,
			expected: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			desc:     "TimeOfDayIgnored",
			base:     time.Date(2025, 3, 1, 23, 59, 59, 0, time.UTC),
			days:     7,
			expected: time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
		},
		{
			desc:     "NonUTCBaseNormalized",
			base:     time.Date(2025, 3, 2, 1, 30, 0, 0, time.FixedZone("ICT", 7*3600)),
			days:     7,
			expected: time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
		},
		{
			desc:     "LeapDayPurchase",
			base:     time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC),
			days:     365,
			expected: time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			require.Equal(t, tc.expected, service.ComputeWarrantyUntil(tc.base, tc.days))
		})
	}
}

func TestPolicy_Days(t *testing.T) {
	policy := service.Policy{
		DefaultDays: 365,
		ChannelDays: map[entity.Channel]int{
			entity.ChannelTikTok: 30,
			entity.ChannelLazada: 0,
		},
	}

	require.Equal(t, 30, policy.Days(entity.ChannelTikTok))
	require.Equal(t, 365, policy.Days(entity.ChannelShopee))
	// Zero per-channel entry falls back to the default.
	require.Equal(t, 365, policy.Days(entity.ChannelLazada))
}
