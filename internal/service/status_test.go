package service_test

import (
	"context"
	"testing"

	"github.com/mapuy555/warranty-server/internal/entity"
	"github.com/mapuy555/warranty-server/pkg/storage/postgres"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestWarrantyService_GetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("RegisteredWithClaims", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, mocks := newTestService(t, ctrl, nil)
		order := generateFakeOrder(entity.ChannelLazada)
		reg := registrationExpiringIn(30)
		reg.OrderID = order.OrderID
		claims := []*entity.Claim{
			{ClaimID: uuid.New(), OrderID: order.OrderID, Status: entity.ClaimPending},
		}

		mocks.orderRepo.EXPECT().GetByOrderID(gomock.Any(), order.OrderID).
			Return(order, nil).Times(1)
		mocks.registrationRepo.EXPECT().GetByOrderID(gomock.Any(), order.OrderID).
			Return(reg, nil).Times(1)
		mocks.claimRepo.EXPECT().ListByOrderID(gomock.Any(), order.OrderID).
			Return(claims, nil).Times(1)

		status, err := svc.GetStatus(ctx, order.OrderID)
		require.NoError(t, err)
		require.True(t, status.Registered())
		require.Equal(t, order.OrderID, status.Order.OrderID)
		require.Len(t, status.Claims, 1)
	})

	t.Run("ClaimsWithoutRegistration", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, mocks := newTestService(t, ctrl, nil)
		order := generateFakeOrder(entity.ChannelLazada)
		claims := []*entity.Claim{
			{ClaimID: uuid.New(), OrderID: order.OrderID, Status: entity.ClaimRejected},
		}

		mocks.orderRepo.EXPECT().GetByOrderID(gomock.Any(), order.OrderID).
			Return(order, nil).Times(1)
		mocks.registrationRepo.EXPECT().GetByOrderID(gomock.Any(), order.OrderID).
			Return(nil, entity.ErrDataNotFound).Times(1)
		mocks.claimRepo.EXPECT().ListByOrderID(gomock.Any(), order.OrderID).
			Return(claims, nil).Times(1)

		status, err := svc.GetStatus(ctx, order.OrderID)
		require.NoError(t, err)
		require.False(t, status.Registered())
		require.Len(t, status.Claims, 1)
	})

	t.Run("NoRegistrationNoClaims_NotFound", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, mocks := newTestService(t, ctrl, nil)
		order := generateFakeOrder(entity.ChannelManual)

		mocks.orderRepo.EXPECT().GetByOrderID(gomock.Any(), order.OrderID).
			Return(order, nil).Times(1)
		mocks.registrationRepo.EXPECT().GetByOrderID(gomock.Any(), order.OrderID).
			Return(nil, entity.ErrDataNotFound).Times(1)
		mocks.claimRepo.EXPECT().ListByOrderID(gomock.Any(), order.OrderID).
			Return([]*entity.Claim{}, nil).Times(1)

		_, err := svc.GetStatus(ctx, order.OrderID)
		require.ErrorIs(t, err, entity.ErrDataNotFound)
	})

	t.Run("OrderNotFound", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, mocks := newTestService(t, ctrl, nil)
		orderID := gofakeit.UUID()

		mocks.orderRepo.EXPECT().GetByOrderID(gomock.Any(), orderID).
			Return(nil, entity.ErrDataNotFound).Times(1)

		_, err := svc.GetStatus(ctx, orderID)
		require.ErrorIs(t, err, entity.ErrOrderNotFound)
	})

	t.Run("SecondLookup_ServedFromCache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, mocks := newTestService(t, ctrl, nil)
		order := generateFakeOrder(entity.ChannelShopee)
		reg := registrationExpiringIn(30)
		reg.OrderID = order.OrderID

		mocks.orderRepo.EXPECT().GetByOrderID(gomock.Any(), order.OrderID).
			Return(order, nil).Times(1)
		mocks.registrationRepo.EXPECT().GetByOrderID(gomock.Any(), order.OrderID).
			Return(reg, nil).Times(2)
		mocks.claimRepo.EXPECT().ListByOrderID(gomock.Any(), order.OrderID).
			Return([]*entity.Claim{}, nil).Times(2)

		_, err := svc.GetStatus(ctx, order.OrderID)
		require.NoError(t, err)
		_, err = svc.GetStatus(ctx, order.OrderID)
		require.NoError(t, err)
	})
}

func TestWarrantyService_RequestDashboard(t *testing.T) {
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mocks := newTestService(t, ctrl, []string{"admin-1"})
	regs := []*entity.Registration{registrationExpiringIn(10), registrationExpiringIn(20)}
	claims := []*entity.Claim{
		{ClaimID: uuid.New(), Status: entity.ClaimPending},
		{ClaimID: uuid.New(), Status: entity.ClaimCompleted},
	}

	mocks.registrationRepo.EXPECT().List(gomock.Any()).Return(regs, nil).Times(1)
	mocks.claimRepo.EXPECT().List(gomock.Any()).Return(claims, nil).Times(1)
	passthroughTx(mocks.txManager, "RequestDashboard")
	mocks.outboxRepo.EXPECT().Enqueue(gomock.Any(), nil, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ postgres.QueryExecuter, event *entity.NotificationEvent) error {
			require.Equal(t, entity.EventAdminDashboard, event.Kind)
			require.Equal(t, "admin-1", event.Recipient)
			return nil
		}).Times(1)

	require.NoError(t, svc.RequestDashboard(ctx, "admin-1"))
}

func TestWarrantyService_Deletes(t *testing.T) {
	ctx := context.Background()

	t.Run("DeleteClaim_NotFound", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, mocks := newTestService(t, ctrl, nil)
		claimID := uuid.New()

		mocks.claimRepo.EXPECT().Delete(gomock.Any(), claimID).
			Return(entity.ErrDataNotFound).Times(1)

		require.ErrorIs(t, svc.DeleteClaim(ctx, claimID), entity.ErrClaimNotFound)
	})

	t.Run("DeleteRegistration_Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, mocks := newTestService(t, ctrl, nil)
		orderID := gofakeit.UUID()

		mocks.registrationRepo.EXPECT().Delete(gomock.Any(), orderID).
			Return(nil).Times(1)

		require.NoError(t, svc.DeleteRegistration(ctx, orderID))
	})
}
