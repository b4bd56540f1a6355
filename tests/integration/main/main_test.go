package main

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/mapuy555/warranty-server/internal/config"
	"github.com/mapuy555/warranty-server/internal/entity"
	"github.com/mapuy555/warranty-server/internal/repository"
	"github.com/mapuy555/warranty-server/internal/service"
	"github.com/mapuy555/warranty-server/internal/tracking"
	"github.com/mapuy555/warranty-server/pkg/cache"
	"github.com/mapuy555/warranty-server/pkg/logger"
	"github.com/mapuy555/warranty-server/pkg/metric"
	"github.com/mapuy555/warranty-server/pkg/storage/postgres"
	"github.com/mapuy555/warranty-server/pkg/storage/postgres/transaction"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/suite"
)

type IntegrationTestSuite struct {
	suite.Suite

	db              *postgres.Postgres
	warrantyService *service.WarrantyService
	cfg             *config.Config
}

func (s *IntegrationTestSuite) SetupSuite() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg, err := config.Load()
	s.Require().NoError(err, "Failed to load configuration")
	s.cfg = cfg

	testLogger, err := logger.NewAdapter(cfg)
	s.Require().NoError(err)

	maxRetries := 10
	var db *postgres.Postgres

	for i := range maxRetries {
		db, err = postgres.NewPostgres(&cfg.Postgres, testLogger)
		if err == nil {
			break
		}
		testLogger.Infow("Waiting for database to be ready...", "attempt", i+1, "error", err.Error())
		time.Sleep(5 * time.Second)
	}
	s.Require().NoError(err, "Failed to connect to postgres after retries")
	s.db = db

	err = db.Pool.Ping(ctx)
	s.Require().NoError(err, "Failed to ping database")

	txManager, err := transaction.NewManager(db, testLogger, metric.NewFactory().Transaction())
	s.Require().NoError(err)

	orderCache, err := cache.NewLRUCache[string, *entity.Order](
		cfg.Cache.Capacity,
		testLogger,
		metric.NewFactory().Cache(),
	)
	s.Require().NoError(err)

	s.warrantyService = service.NewWarrantyService(
		repository.NewOrderRepository(db),
		repository.NewRegistrationRepository(db),
		repository.NewClaimRepository(db),
		repository.NewOutboxRepository(db),
		txManager,
		tracking.NewDisabled(),
		service.Policy{
			DefaultDays: cfg.Warranty.DefaultDays,
			ChannelDays: cfg.Warranty.ChannelDays(),
		},
		testLogger,
		orderCache,
		cfg.Cache.TTL,
		cfg.Admin.UserIDs,
		cfg.Notifier.AdminBroadcast,
	)
}

func (s *IntegrationTestSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Pool.Close()
	}
}

func (s *IntegrationTestSuite) TearDownTest() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := s.db.Pool.Exec(
		ctx,
		"TRUNCATE TABLE notification_outbox, claims, registrations, order_items, orders RESTART IDENTITY CASCADE;",
	)
	s.Require().NoError(err)
}

func (s *IntegrationTestSuite) importFakeOrder(ctx context.Context) string {
	orderID := gofakeit.UUID()

	summary, err := s.warrantyService.ImportOrders(ctx, entity.ChannelShopee, []*entity.ImportRow{
		{
			OrderID:          orderID,
			CustomerName:     gofakeit.Name(),
			ProductName:      gofakeit.ProductName(),
			Quantity:         1,
			SKU:              gofakeit.UUID(),
			UnitPrice:        uint64(gofakeit.UintRange(100, 5000)),
			PurchasedAt:      time.Now().AddDate(0, 0, -3).UTC(),
			ShippingProvider: "Kerry Express",
			TrackingNumber:   gofakeit.UUID(),
		},
	})
	s.Require().NoError(err)
	s.Require().Equal(1, summary.OrdersCreated)

	return orderID
}

func fakeRegistrant() entity.Registrant {
	return entity.Registrant{
		Name:    gofakeit.Name(),
		Phone:   "0812345678",
		Email:   gofakeit.Email(),
		Address: gofakeit.Address().Address,
		UserID:  gofakeit.UUID(),
	}
}

func (s *IntegrationTestSuite) TestRegisterAndCheckStatus() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	orderID := s.importFakeOrder(ctx)

	reg, err := s.warrantyService.RegisterWarranty(ctx, orderID, fakeRegistrant())
	s.Require().NoError(err)
	s.Require().Equal(orderID, reg.OrderID)
	s.Require().True(reg.WarrantyUntil.After(time.Now()))

	status, err := s.warrantyService.GetStatus(ctx, orderID)
	s.Require().NoError(err)
	s.Require().True(status.Registered())
	s.Require().Len(status.Order.Items, 1)
	s.Require().Empty(status.Claims)
}

func (s *IntegrationTestSuite) TestDoubleRegistrationRejected() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	orderID := s.importFakeOrder(ctx)

	_, err := s.warrantyService.RegisterWarranty(ctx, orderID, fakeRegistrant())
	s.Require().NoError(err)

	_, err = s.warrantyService.RegisterWarranty(ctx, orderID, fakeRegistrant())
	s.Require().ErrorIs(err, entity.ErrAlreadyRegistered)
}

func (s *IntegrationTestSuite) TestClaimLifecycle() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	orderID := s.importFakeOrder(ctx)

	_, err := s.warrantyService.RegisterWarranty(ctx, orderID, fakeRegistrant())
	s.Require().NoError(err)

	claim, err := s.warrantyService.FileClaim(ctx, orderID, entity.Claimant{
		UserID:  gofakeit.UUID(),
		Contact: gofakeit.Email(),
	}, "does not power on")
	s.Require().NoError(err)
	s.Require().Equal(entity.ClaimPending, claim.Status)

	updated, err := s.warrantyService.UpdateClaimStatus(ctx, claim.ClaimID, entity.ClaimInProgress)
	s.Require().NoError(err)
	s.Require().Equal(entity.ClaimInProgress, updated.Status)

	updated, err = s.warrantyService.UpdateClaimStatus(ctx, claim.ClaimID, entity.ClaimCompleted)
	s.Require().NoError(err)
	s.Require().Equal(entity.ClaimCompleted, updated.Status)

	_, err = s.warrantyService.UpdateClaimStatus(ctx, claim.ClaimID, entity.ClaimRejected)
	s.Require().ErrorIs(err, entity.ErrInvalidTransition)

	status, err := s.warrantyService.GetStatus(ctx, orderID)
	s.Require().NoError(err)
	s.Require().Len(status.Claims, 1)
}

func (s *IntegrationTestSuite) TestClaimsSurviveRegistrationDeletion() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	orderID := s.importFakeOrder(ctx)

	_, err := s.warrantyService.RegisterWarranty(ctx, orderID, fakeRegistrant())
	s.Require().NoError(err)

	_, err = s.warrantyService.FileClaim(ctx, orderID, entity.Claimant{
		UserID:  gofakeit.UUID(),
		Contact: gofakeit.Email(),
	}, "rattles when shaken")
	s.Require().NoError(err)

	err = s.warrantyService.DeleteRegistration(ctx, orderID)
	s.Require().NoError(err)

	status, err := s.warrantyService.GetStatus(ctx, orderID)
	s.Require().NoError(err)
	s.Require().False(status.Registered())
	s.Require().Len(status.Claims, 1)
}

func (s *IntegrationTestSuite) TestReimportAppendsItemsInOrder() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	orderID := gofakeit.UUID()
	row := func(product string) *entity.ImportRow {
		return &entity.ImportRow{
			OrderID:     orderID,
			ProductName: product,
			Quantity:    1,
			PurchasedAt: time.Now().AddDate(0, 0, -3).UTC(),
		}
	}

	_, err := s.warrantyService.ImportOrders(ctx, entity.ChannelShopee,
		[]*entity.ImportRow{row("first"), row("second")})
	s.Require().NoError(err)

	summary, err := s.warrantyService.ImportOrders(ctx, entity.ChannelShopee,
		[]*entity.ImportRow{row("third")})
	s.Require().NoError(err)
	s.Require().Equal(0, summary.OrdersCreated)
	s.Require().Equal(1, summary.ItemsAppended)

	_, err = s.warrantyService.RegisterWarranty(ctx, orderID, fakeRegistrant())
	s.Require().NoError(err)

	status, err := s.warrantyService.GetStatus(ctx, orderID)
	s.Require().NoError(err)
	s.Require().Len(status.Order.Items, 3)

	names := make([]string, 0, len(status.Order.Items))
	for _, item := range status.Order.Items {
		names = append(names, item.ProductName)
	}
	s.Require().Equal([]string{"first", "second", "third"}, names)
}

func (s *IntegrationTestSuite) TestOutboxRowsWrittenWithStateChanges() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	orderID := s.importFakeOrder(ctx)

	_, err := s.warrantyService.RegisterWarranty(ctx, orderID, fakeRegistrant())
	s.Require().NoError(err)

	count, err := repository.NewOutboxRepository(s.db).CountPending(ctx)
	s.Require().NoError(err)
	s.Require().GreaterOrEqual(count, int64(1))
}

func TestIntegration(t *testing.T) {
	t.Parallel()
	if os.Getenv("INTEGRATION_TEST") == "" {
		t.Skip("Skipping integration test; set INTEGRATION_TEST to run.")
	}
	suite.Run(t, new(IntegrationTestSuite))
}
