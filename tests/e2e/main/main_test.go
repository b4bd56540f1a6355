package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/mapuy555/warranty-server/internal/entity"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type E2ETestSuite struct {
	suite.Suite

	httpClient  *http.Client
	appHost     string
	appPort     string
	adminUserID string
}

func (s *E2ETestSuite) SetupSuite() {
	s.appHost = getEnvOrDefault("APP_HOST", "localhost")
	s.appPort = getEnvOrDefault("APP_PORT", "8080")
	s.adminUserID = getEnvOrDefault("ADMIN_USER_ID", "admin-1")

	s.httpClient = &http.Client{
		Timeout: 10 * time.Second,
	}

	s.waitForApp()
}

func (s *E2ETestSuite) waitForApp() {
	const maxRetries = 30
	const retryDelay = 2 * time.Second
	healthURL := s.url("/health")

	for i := range maxRetries {
		req, err := http.NewRequestWithContext(context.Background(), "GET", healthURL, nil)
		if err != nil {
			s.T().Logf("Failed to create health check request: %v", err)
			time.Sleep(retryDelay)
			continue
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			s.T().Logf("Health check failed (attempt %d/%d): %v", i+1, maxRetries, err)
			time.Sleep(retryDelay)
			continue
		}
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			s.T().Log("App is healthy")
			return
		}
		s.T().Logf("App health check status %d (attempt %d/%d)", resp.StatusCode, i+1, maxRetries)
		time.Sleep(retryDelay)
	}
	s.T().Fatalf("App did not become healthy after %d attempts", maxRetries)
}

func (s *E2ETestSuite) url(path string) string {
	return fmt.Sprintf("http://%s%s", net.JoinHostPort(s.appHost, s.appPort), path)
}

func (s *E2ETestSuite) doJSON(method, path string, body any, headers map[string]string) (*http.Response, []byte) {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, s.url(path), reqBody)
	require.NoError(s.T(), err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)
	return resp, raw
}

func (s *E2ETestSuite) uploadOrder(orderID string) {
	csv := strings.Join([]string{
		"order_id,customer_name,product_name,quantity,sku,unit_price,purchase_date,shipping_provider,tracking_number",
		fmt.Sprintf("%s,%s,%s,1,SKU-1,1290,%s,Kerry Express,KEX-%s",
			orderID,
			gofakeit.Name(),
			gofakeit.ProductName(),
			time.Now().AddDate(0, 0, -3).Format("2006-01-02"),
			gofakeit.DigitN(8),
		),
	}, "\n")

	req, err := http.NewRequestWithContext(
		context.Background(),
		"POST",
		s.url("/api/upload-orders?channel=shopee"),
		strings.NewReader(csv),
	)
	require.NoError(s.T(), err)
	req.Header.Set("Content-Type", "text/csv")

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode, "upload response: %s", string(body))

	var summary entity.ImportSummary
	require.NoError(s.T(), json.Unmarshal(body, &summary))
	require.Equal(s.T(), 1, summary.OrdersCreated)
}

func (s *E2ETestSuite) registerOrder(orderID string) entity.Registration {
	resp, body := s.doJSON("POST", "/api/register", map[string]string{
		"order_id": orderID,
		"name":     gofakeit.Name(),
		"phone":    "0812345678",
		"email":    gofakeit.Email(),
		"address":  gofakeit.Address().Address,
		"user_id":  gofakeit.UUID(),
	}, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode, "register response: %s", string(body))

	var reg entity.Registration
	require.NoError(s.T(), json.Unmarshal(body, &reg))
	return reg
}

func (s *E2ETestSuite) TestRegisterAndCheckStatusFlow() {
	orderID := "E2E-" + gofakeit.DigitN(10)

	s.uploadOrder(orderID)
	reg := s.registerOrder(orderID)
	require.Equal(s.T(), orderID, reg.OrderID)
	require.True(s.T(), reg.WarrantyUntil.After(time.Now()))

	resp, body := s.doJSON("GET", "/api/check-status/"+orderID, nil, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode, "status response: %s", string(body))

	var status entity.WarrantyStatus
	require.NoError(s.T(), json.Unmarshal(body, &status))
	require.True(s.T(), status.Registered())
	require.Equal(s.T(), orderID, status.Order.OrderID)
	require.Len(s.T(), status.Order.Items, 1)
}

func (s *E2ETestSuite) TestDuplicateRegistrationRejected() {
	orderID := "E2E-" + gofakeit.DigitN(10)

	s.uploadOrder(orderID)
	s.registerOrder(orderID)

	resp, body := s.doJSON("POST", "/api/register", map[string]string{
		"order_id": orderID,
		"name":     gofakeit.Name(),
		"phone":    "0812345678",
		"email":    gofakeit.Email(),
		"address":  gofakeit.Address().Address,
		"user_id":  gofakeit.UUID(),
	}, nil)
	require.Equal(s.T(), http.StatusBadRequest, resp.StatusCode, "response: %s", string(body))
}

func (s *E2ETestSuite) TestClaimFlowWithAdminStatusUpdate() {
	orderID := "E2E-" + gofakeit.DigitN(10)

	s.uploadOrder(orderID)
	s.registerOrder(orderID)

	resp, body := s.doJSON("POST", "/api/claim", map[string]string{
		"order_id": orderID,
		"user_id":  gofakeit.UUID(),
		"contact":  gofakeit.Email(),
		"reason":   "stopped working after a week",
	}, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode, "claim response: %s", string(body))

	var claim entity.Claim
	require.NoError(s.T(), json.Unmarshal(body, &claim))
	require.Equal(s.T(), entity.ClaimPending, claim.Status)

	patchPath := fmt.Sprintf("/api/claims/%s/status", claim.ClaimID)

	// Without the admin header the update must be rejected.
	resp, body = s.doJSON("PATCH", patchPath,
		map[string]string{"status": "in_progress"}, nil)
	require.Equal(s.T(), http.StatusForbidden, resp.StatusCode, "response: %s", string(body))

	resp, body = s.doJSON("PATCH", patchPath,
		map[string]string{"status": "in_progress"},
		map[string]string{"X-Admin-User-ID": s.adminUserID})
	require.Equal(s.T(), http.StatusOK, resp.StatusCode, "response: %s", string(body))

	var updated entity.Claim
	require.NoError(s.T(), json.Unmarshal(body, &updated))
	require.Equal(s.T(), entity.ClaimInProgress, updated.Status)
}

func (s *E2ETestSuite) TestRefreshDeliveryEndpoint() {
	orderID := "E2E-" + gofakeit.DigitN(10)

	s.uploadOrder(orderID)
	s.registerOrder(orderID)

	resp, body := s.doJSON("POST", "/api/registrations/"+orderID+"/refresh-delivery", nil, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode, "refresh response: %s", string(body))

	var reg entity.Registration
	require.NoError(s.T(), json.Unmarshal(body, &reg))
	require.Equal(s.T(), orderID, reg.OrderID)
}

func (s *E2ETestSuite) TestClaimWithoutRegistrationRejected() {
	orderID := "E2E-" + gofakeit.DigitN(10)

	s.uploadOrder(orderID)

	resp, body := s.doJSON("POST", "/api/claim", map[string]string{
		"order_id": orderID,
		"user_id":  gofakeit.UUID(),
		"contact":  gofakeit.Email(),
		"reason":   "never arrived",
	}, nil)
	require.Equal(s.T(), http.StatusBadRequest, resp.StatusCode, "response: %s", string(body))
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func TestE2E(t *testing.T) {
	if os.Getenv("E2E_TEST") == "" {
		t.Skip("Skipping E2E test; set E2E_TEST to run.")
	}
	suite.Run(t, new(E2ETestSuite))
}
