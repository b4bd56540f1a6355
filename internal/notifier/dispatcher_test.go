package notifier_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mapuy555/warranty-server/internal/config"
	"github.com/mapuy555/warranty-server/internal/entity"
	"github.com/mapuy555/warranty-server/internal/notifier"
	mock_notifier "github.com/mapuy555/warranty-server/internal/notifier/mock"
	"github.com/mapuy555/warranty-server/pkg/logger"
	"github.com/mapuy555/warranty-server/pkg/metric"
	"github.com/mapuy555/warranty-server/pkg/storage/postgres"
	mock_transaction "github.com/mapuy555/warranty-server/pkg/storage/postgres/transaction/mock"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func testEvent(t *testing.T, attempts int) *entity.NotificationEvent {
	t.Helper()

	event, err := entity.NewNotificationEvent(
		entity.EventClaimReceived,
		"user-1",
		"SP-1001",
		entity.ClaimReceivedPayload{OrderID: "SP-1001", Reason: "broken"},
	)
	require.NoError(t, err)
	event.Attempts = attempts
	return event
}

func newDispatcher(
	outboxRepo notifier.OutboxRepository,
	txManager *mock_transaction.MockManager,
	publisher notifier.Publisher,
) *notifier.Dispatcher {
	return notifier.NewDispatcher(
		outboxRepo,
		txManager,
		publisher,
		metric.NewFactory().Outbox(),
		logger.NewNop(),
		config.Outbox{
			PollInterval:   10 * time.Millisecond,
			BatchSize:      10,
			MaxAttempts:    3,
			PublishTimeout: time.Second,
		},
	)
}

func TestDispatcher_PublishesAndMarksSent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	outboxRepo := mock_notifier.NewMockOutboxRepository(ctrl)
	publisher := mock_notifier.NewMockPublisher(ctrl)
	txManager := mock_transaction.NewMockManager(ctrl)

	event := testEvent(t, 0)
	done := make(chan struct{})

	txManager.EXPECT().ExecuteInTransaction(gomock.Any(), "DispatchOutbox", gomock.Any()).
		DoAndReturn(func(
			ctx context.Context,
			_ string,
			txFunc func(postgres.QueryExecuter) error,
		) error {
			return txFunc(nil)
		}).MinTimes(1)

	outboxRepo.EXPECT().FetchPending(gomock.Any(), nil, 10).
		Return([]*entity.NotificationEvent{event}, nil).Times(1)
	outboxRepo.EXPECT().FetchPending(gomock.Any(), nil, 10).
		Return(nil, nil).AnyTimes()

	publisher.EXPECT().Publish(gomock.Any(), event).Return(nil).Times(1)
	outboxRepo.EXPECT().MarkSent(gomock.Any(), nil, event.EventID).
		DoAndReturn(func(context.Context, postgres.QueryExecuter, interface{}) error {
			close(done)
			return nil
		}).Times(1)
	outboxRepo.EXPECT().CountPending(gomock.Any()).Return(int64(0), nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	dispatcher := newDispatcher(outboxRepo, txManager, publisher)

	go func() {
		<-done
		cancel()
	}()

	require.NoError(t, dispatcher.Run(ctx))
}

func TestDispatcher_FailureIncrementsAttempts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	outboxRepo := mock_notifier.NewMockOutboxRepository(ctrl)
	publisher := mock_notifier.NewMockPublisher(ctrl)
	txManager := mock_transaction.NewMockManager(ctrl)

	event := testEvent(t, 1)
	done := make(chan struct{})

	txManager.EXPECT().ExecuteInTransaction(gomock.Any(), "DispatchOutbox", gomock.Any()).
		DoAndReturn(func(
			ctx context.Context,
			_ string,
			txFunc func(postgres.QueryExecuter) error,
		) error {
			return txFunc(nil)
		}).MinTimes(1)

	outboxRepo.EXPECT().FetchPending(gomock.Any(), nil, 10).
		Return([]*entity.NotificationEvent{event}, nil).Times(1)
	outboxRepo.EXPECT().FetchPending(gomock.Any(), nil, 10).
		Return(nil, nil).AnyTimes()

	publisher.EXPECT().Publish(gomock.Any(), event).
		Return(errors.New("broker unreachable")).Times(1)
	outboxRepo.EXPECT().Fail(gomock.Any(), nil, event.EventID, 3).
		DoAndReturn(func(context.Context, postgres.QueryExecuter, interface{}, int) error {
			close(done)
			return nil
		}).Times(1)
	outboxRepo.EXPECT().CountPending(gomock.Any()).Return(int64(1), nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	dispatcher := newDispatcher(outboxRepo, txManager, publisher)

	go func() {
		<-done
		cancel()
	}()

	require.NoError(t, dispatcher.Run(ctx))
}
