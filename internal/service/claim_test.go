package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/mapuy555/warranty-server/internal/entity"
	"github.com/mapuy555/warranty-server/internal/service"
	"github.com/mapuy555/warranty-server/pkg/storage/postgres"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func generateFakeClaimant() entity.Claimant {
	return entity.Claimant{
		UserID:  gofakeit.UUID(),
		Contact: gofakeit.Email(),
	}
}

func registrationExpiringIn(daysFromToday int) *entity.Registration {
	return &entity.Registration{
		OrderID:       gofakeit.UUID(),
		Registrant:    generateFakeRegistrant(),
		RegisteredAt:  time.Now().AddDate(0, 0, -30).UTC(),
		WarrantyUntil: service.ComputeWarrantyUntil(time.Now(), daysFromToday),
	}
}

func TestWarrantyService_FileClaim(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		adminIDs := []string{"admin-1", "admin-2"}
		svc, mocks := newTestService(t, ctrl, adminIDs)
		order := generateFakeOrder(entity.ChannelShopee)
		reg := registrationExpiringIn(100)
		reg.OrderID = order.OrderID
		claimant := generateFakeClaimant()

		mocks.orderRepo.EXPECT().GetByOrderID(gomock.Any(), order.OrderID).
			Return(order, nil).Times(1)
		mocks.registrationRepo.EXPECT().GetByOrderID(gomock.Any(), reg.OrderID).
			Return(reg, nil).Times(1)
		passthroughTx(mocks.txManager, "FileClaim")
		mocks.claimRepo.EXPECT().Create(gomock.Any(), nil, gomock.Any()).
			Return(nil).Times(1)

		var kinds []entity.EventKind
		mocks.outboxRepo.EXPECT().Enqueue(gomock.Any(), nil, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ postgres.QueryExecuter, event *entity.NotificationEvent) error {
				kinds = append(kinds, event.Kind)
				return nil
			}).Times(2 + len(adminIDs))

		claim, err := svc.FileClaim(ctx, reg.OrderID, claimant, "screen cracked")
		require.NoError(t, err)
		require.Equal(t, entity.ClaimPending, claim.Status)
		require.Equal(t, reg.OrderID, claim.OrderID)

		require.Contains(t, kinds, entity.EventClaimReceived)
		require.Contains(t, kinds, entity.EventClaimEvidenceRequest)
		adminAlerts := 0
		for _, kind := range kinds {
			if kind == entity.EventClaimAdminAlert {
				adminAlerts++
			}
		}
		require.Equal(t, len(adminIDs), adminAlerts)
	})

	t.Run("ClaimOnExpiryDay_StillInWarranty", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, mocks := newTestService(t, ctrl, nil)
		order := generateFakeOrder(entity.ChannelShopee)
		// Expires today: the expiry date itself is still claimable.
		reg := registrationExpiringIn(0)
		reg.OrderID = order.OrderID

		mocks.orderRepo.EXPECT().GetByOrderID(gomock.Any(), order.OrderID).
			Return(order, nil).Times(1)
		mocks.registrationRepo.EXPECT().GetByOrderID(gomock.Any(), reg.OrderID).
			Return(reg, nil).Times(1)
		passthroughTx(mocks.txManager, "FileClaim")
		mocks.claimRepo.EXPECT().Create(gomock.Any(), nil, gomock.Any()).
			Return(nil).Times(1)
		mocks.outboxRepo.EXPECT().Enqueue(gomock.Any(), nil, gomock.Any()).
			Return(nil).Times(2)

		_, err := svc.FileClaim(ctx, reg.OrderID, generateFakeClaimant(), "stopped charging")
		require.NoError(t, err)
	})

	t.Run("DayAfterExpiry_Rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, mocks := newTestService(t, ctrl, nil)
		order := generateFakeOrder(entity.ChannelShopee)
		reg := registrationExpiringIn(-1)
		reg.OrderID = order.OrderID

		mocks.orderRepo.EXPECT().GetByOrderID(gomock.Any(), order.OrderID).
			Return(order, nil).Times(1)
		mocks.registrationRepo.EXPECT().GetByOrderID(gomock.Any(), reg.OrderID).
			Return(reg, nil).Times(1)

		_, err := svc.FileClaim(ctx, reg.OrderID, generateFakeClaimant(), "stopped charging")
		require.ErrorIs(t, err, entity.ErrWarrantyExpired)
	})

	t.Run("OrderNotFound", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, mocks := newTestService(t, ctrl, nil)
		orderID := gofakeit.UUID()

		mocks.orderRepo.EXPECT().GetByOrderID(gomock.Any(), orderID).
			Return(nil, entity.ErrDataNotFound).Times(1)

		_, err := svc.FileClaim(ctx, orderID, generateFakeClaimant(), "dead pixel")
		require.ErrorIs(t, err, entity.ErrOrderNotFound)
	})

	t.Run("NotRegistered", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, mocks := newTestService(t, ctrl, nil)
		order := generateFakeOrder(entity.ChannelShopee)

		mocks.orderRepo.EXPECT().GetByOrderID(gomock.Any(), order.OrderID).
			Return(order, nil).Times(1)
		mocks.registrationRepo.EXPECT().GetByOrderID(gomock.Any(), order.OrderID).
			Return(nil, entity.ErrDataNotFound).Times(1)

		_, err := svc.FileClaim(ctx, order.OrderID, generateFakeClaimant(), "dead pixel")
		require.ErrorIs(t, err, entity.ErrNotRegistered)
	})

	t.Run("AdminBroadcastDisabled_NoAdminAlerts", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, mocks := newTestServiceWithBroadcast(t, ctrl, []string{"admin-1", "admin-2"}, false)
		order := generateFakeOrder(entity.ChannelShopee)
		reg := registrationExpiringIn(100)
		reg.OrderID = order.OrderID

		mocks.orderRepo.EXPECT().GetByOrderID(gomock.Any(), order.OrderID).
			Return(order, nil).Times(1)
		mocks.registrationRepo.EXPECT().GetByOrderID(gomock.Any(), reg.OrderID).
			Return(reg, nil).Times(1)
		passthroughTx(mocks.txManager, "FileClaim")
		mocks.claimRepo.EXPECT().Create(gomock.Any(), nil, gomock.Any()).
			Return(nil).Times(1)

		var kinds []entity.EventKind
		mocks.outboxRepo.EXPECT().Enqueue(gomock.Any(), nil, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ postgres.QueryExecuter, event *entity.NotificationEvent) error {
				kinds = append(kinds, event.Kind)
				return nil
			}).Times(2)

		_, err := svc.FileClaim(ctx, reg.OrderID, generateFakeClaimant(), "loose hinge")
		require.NoError(t, err)
		require.NotContains(t, kinds, entity.EventClaimAdminAlert)
	})

	t.Run("EmptyReason", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, _ := newTestService(t, ctrl, nil)

		_, err := svc.FileClaim(ctx, gofakeit.UUID(), generateFakeClaimant(), "")
		require.ErrorIs(t, err, entity.ErrInvalidData)
	})
}

func TestWarrantyService_UpdateClaimStatus(t *testing.T) {
	ctx := context.Background()

	existingClaim := func(status entity.ClaimStatus) *entity.Claim {
		return &entity.Claim{
			ClaimID:         uuid.New(),
			OrderID:         gofakeit.UUID(),
			Claimant:        generateFakeClaimant(),
			Reason:          gofakeit.Sentence(4),
			Status:          status,
			CreatedAt:       time.Now().AddDate(0, 0, -2).UTC(),
			StatusUpdatedAt: time.Now().AddDate(0, 0, -2).UTC(),
		}
	}

	t.Run("PendingToInProgress", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, mocks := newTestService(t, ctrl, nil)
		claim := existingClaim(entity.ClaimPending)

		mocks.claimRepo.EXPECT().GetByID(gomock.Any(), claim.ClaimID).
			Return(claim, nil).Times(1)
		passthroughTx(mocks.txManager, "UpdateClaimStatus")
		mocks.claimRepo.EXPECT().
			UpdateStatus(gomock.Any(), nil, claim.ClaimID, entity.ClaimInProgress, gomock.Any()).
			Return(nil).Times(1)
		mocks.outboxRepo.EXPECT().Enqueue(gomock.Any(), nil, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ postgres.QueryExecuter, event *entity.NotificationEvent) error {
				require.Equal(t, entity.EventClaimStatusChanged, event.Kind)
				require.Equal(t, claim.Claimant.UserID, event.Recipient)
				return nil
			}).Times(1)

		updated, err := svc.UpdateClaimStatus(ctx, claim.ClaimID, entity.ClaimInProgress)
		require.NoError(t, err)
		require.Equal(t, entity.ClaimInProgress, updated.Status)
	})

	t.Run("TerminalStatus_NoTransition", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, mocks := newTestService(t, ctrl, nil)
		claim := existingClaim(entity.ClaimCompleted)

		mocks.claimRepo.EXPECT().GetByID(gomock.Any(), claim.ClaimID).
			Return(claim, nil).Times(1)

		_, err := svc.UpdateClaimStatus(ctx, claim.ClaimID, entity.ClaimRejected)
		require.ErrorIs(t, err, entity.ErrInvalidTransition)
	})

	t.Run("InProgressBackToPending_NoTransition", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, mocks := newTestService(t, ctrl, nil)
		claim := existingClaim(entity.ClaimInProgress)

		mocks.claimRepo.EXPECT().GetByID(gomock.Any(), claim.ClaimID).
			Return(claim, nil).Times(1)

		_, err := svc.UpdateClaimStatus(ctx, claim.ClaimID, entity.ClaimPending)
		require.ErrorIs(t, err, entity.ErrInvalidTransition)
	})

	t.Run("ClaimNotFound", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, mocks := newTestService(t, ctrl, nil)
		claimID := uuid.New()

		mocks.claimRepo.EXPECT().GetByID(gomock.Any(), claimID).
			Return(nil, entity.ErrDataNotFound).Times(1)

		_, err := svc.UpdateClaimStatus(ctx, claimID, entity.ClaimInProgress)
		require.ErrorIs(t, err, entity.ErrClaimNotFound)
	})
}
