package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"hardwarestore/internal/caching"
	"hardwarestore/internal/models"
	"hardwarestore/internal/services"
	"hardwarestore/pkg/database"
	"hardwarestore/pkg/logger"
	"hardwarestore/testhelpers"
)

type errorBody struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type APITestSuite struct {
	suite.Suite
	db     *testhelpers.TestDB
	auth   services.AuthService
	e      *echo.Echo
	token  string
	itemID int64
}

func (s *APITestSuite) SetupTest() {
	s.db = testhelpers.SetupTestDB(s.T())
	log := logger.Nop()
	cache := caching.NewMemoryCacheService()
	store := s.db.Store

	s.auth = services.NewAuthService(store, cache, services.AuthConfig{
		Secret: "handler-secret",
		TTL:    time.Hour,
	}, log)
	sales := services.NewSaleService(store, nil, log)

	s.e = echo.New()
	s.e.HTTPErrorHandler = ErrorHandler(log)
	s.e.Validator = NewRequestValidator()
	RegisterRoutes(s.e, &API{
		Auth:       NewAuthHandlers(s.auth),
		Categories: NewCategoryHandlers(services.NewCategoryService(store, log)),
		Inventory:  NewInventoryHandlers(services.NewInventoryService(store, nil, log)),
		Sales:      NewSaleHandlers(sales),
		Staff:      NewStaffHandlers(services.NewStaffService(store, log)),
		Budget:     NewBudgetHandlers(services.NewBudgetService(store, log)),
		Reports:    NewReportHandlers(services.NewReportService(store), sales),
		Backup:     NewBackupHandlers(services.NewBackupService(store, nil, log)),
		Health:     NewHealthHandlers(store, cache, "test"),
	}, s.auth, log)

	s.token = s.login("admin", "admin123")
	s.itemID = testhelpers.SetupTestItem(s.T(), s.db, testhelpers.ItemFixture{
		Name:      "Ball Valve",
		Quantity:  5,
		UnitPrice: "8.00",
	})
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func (s *APITestSuite) login(username, password string) string {
	rec := s.do(http.MethodPost, "/api/auth/login", "", fmt.Sprintf(`{"username":%q,"password":%q}`, username, password))
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var resp models.LoginResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func (s *APITestSuite) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *APITestSuite) decodeError(rec *httptest.ResponseRecorder) errorBody {
	var body errorBody
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func (s *APITestSuite) TestProtectedRouteNeedsToken() {
	rec := s.do(http.MethodGet, "/api/inventory", "", "")

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("UNAUTHORIZED", s.decodeError(rec).Error.Code)
}

func (s *APITestSuite) TestCreateSale() {
	body := fmt.Sprintf(`{"item_id":%d,"quantity":2,"unit_price":"8.00","customer_name":"Dana"}`, s.itemID)
	rec := s.do(http.MethodPost, "/api/sales", s.token, body)

	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var resp map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(float64(3), resp["remaining_quantity"])
	s.Equal("16", resp["total_price"])
	s.Equal(3, testhelpers.ItemQuantity(s.T(), s.db, s.itemID))
}

func (s *APITestSuite) TestCreateSaleInsufficientStock() {
	body := fmt.Sprintf(`{"item_id":%d,"quantity":6,"unit_price":"8.00","customer_name":"Dana"}`, s.itemID)
	rec := s.do(http.MethodPost, "/api/sales", s.token, body)

	s.Equal(http.StatusConflict, rec.Code)
	resp := s.decodeError(rec)
	s.Equal("INSUFFICIENT_STOCK", resp.Error.Code)
	s.Equal("6", resp.Error.Details["requested"])
	s.Equal("5", resp.Error.Details["available"])
	s.Equal(0, testhelpers.CountRows(s.T(), s.db, "sales"))
}

func (s *APITestSuite) TestCreateSaleValidation() {
	rec := s.do(http.MethodPost, "/api/sales", s.token, `{"quantity":1}`)

	s.Equal(http.StatusBadRequest, rec.Code)
	resp := s.decodeError(rec)
	s.Equal("VALIDATION_ERROR", resp.Error.Code)
	s.Contains(resp.Error.Details, "item_id")
	s.Contains(resp.Error.Details, "customer_name")
}

func (s *APITestSuite) TestCreateSaleRequiresUnitPrice() {
	body := fmt.Sprintf(`{"item_id":%d,"quantity":2,"customer_name":"Dana"}`, s.itemID)
	rec := s.do(http.MethodPost, "/api/sales", s.token, body)

	s.Equal(http.StatusBadRequest, rec.Code)
	resp := s.decodeError(rec)
	s.Equal("VALIDATION_ERROR", resp.Error.Code)
	s.Contains(resp.Error.Details, "unit_price")
	s.Equal(5, testhelpers.ItemQuantity(s.T(), s.db, s.itemID))
	s.Equal(0, testhelpers.CountRows(s.T(), s.db, "sales"))

	// an explicit zero is a giveaway, not a missing price
	body = fmt.Sprintf(`{"item_id":%d,"quantity":1,"unit_price":0,"customer_name":"Dana"}`, s.itemID)
	rec = s.do(http.MethodPost, "/api/sales", s.token, body)
	s.Equal(http.StatusCreated, rec.Code, rec.Body.String())
}

func (s *APITestSuite) TestUpdateSaleRejectsUnknownStaff() {
	body := fmt.Sprintf(`{"item_id":%d,"quantity":1,"unit_price":"8.00","customer_name":"Dana"}`, s.itemID)
	rec := s.do(http.MethodPost, "/api/sales", s.token, body)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var receipt map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &receipt))

	rec = s.do(http.MethodPut, fmt.Sprintf("/api/sales/%v", receipt["sale_id"]), s.token, `{"staff_id":4242}`)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(s.decodeError(rec).Error.Details, "staff_id")
}

func (s *APITestSuite) TestMoneyFieldsAreRequired() {
	cases := []struct {
		path  string
		body  string
		field string
		table string
	}{
		{"/api/budget/transaction", `{"type":"expense","description":"Electric bill","category":"Utilities"}`, "amount", "transactions"},
		{"/api/budget", `{"category":"Tools","month_year":"2024-03"}`, "amount", "budget"},
		{"/api/inventory", `{"name":"Gate Valve","quantity":3}`, "unit_price", "inventory"},
		{"/api/inventory", `{"name":"Gate Valve","unit_price":"4.00"}`, "quantity", "inventory"},
	}
	inventoryRows := testhelpers.CountRows(s.T(), s.db, "inventory")
	for _, tc := range cases {
		rec := s.do(http.MethodPost, tc.path, s.token, tc.body)
		s.Equal(http.StatusBadRequest, rec.Code, tc.body)
		s.Contains(s.decodeError(rec).Error.Details, tc.field, tc.body)
	}
	s.Equal(0, testhelpers.CountRows(s.T(), s.db, "transactions"))
	s.Equal(0, testhelpers.CountRows(s.T(), s.db, "budget"))
	s.Equal(inventoryRows, testhelpers.CountRows(s.T(), s.db, "inventory"))
}

func (s *APITestSuite) TestMalformedBody() {
	rec := s.do(http.MethodPost, "/api/sales", s.token, `{"item_id":`)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("VALIDATION_ERROR", s.decodeError(rec).Error.Code)
}

func (s *APITestSuite) TestUnknownSale() {
	rec := s.do(http.MethodGet, "/api/sales/999", s.token, "")

	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("NOT_FOUND", s.decodeError(rec).Error.Code)
}

func (s *APITestSuite) TestBadID() {
	rec := s.do(http.MethodGet, "/api/inventory/abc", s.token, "")

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(s.decodeError(rec).Error.Details, "id")
}

func (s *APITestSuite) TestAdjustStock() {
	rec := s.do(http.MethodPatch, fmt.Sprintf("/api/inventory/%d/stock", s.itemID), s.token,
		`{"quantity":10,"operation":"add"}`)

	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Contains(rec.Body.String(), `"new_quantity":15`)

	rec = s.do(http.MethodPatch, fmt.Sprintf("/api/inventory/%d/stock", s.itemID), s.token,
		`{"quantity":1,"operation":"double"}`)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(s.decodeError(rec).Error.Details, "operation")
}

func (s *APITestSuite) TestStaffCannotDeleteItems() {
	_, err := s.auth.Register(context.Background(), "clerk", "clerk-pass", models.RoleStaff)
	s.Require().NoError(err)
	staffToken := s.login("clerk", "clerk-pass")

	rec := s.do(http.MethodDelete, fmt.Sprintf("/api/inventory/%d", s.itemID), staffToken, "")
	s.Equal(http.StatusForbidden, rec.Code)
	s.Equal("FORBIDDEN", s.decodeError(rec).Error.Code)

	rec = s.do(http.MethodGet, "/api/inventory", staffToken, "")
	s.Equal(http.StatusOK, rec.Code)
}

func (s *APITestSuite) TestDeleteCategoryInUse() {
	categoryID := testhelpers.SetupTestCategory(s.T(), s.db, "Adhesives")
	testhelpers.SetupTestItem(s.T(), s.db, testhelpers.ItemFixture{Name: "Epoxy", CategoryID: &categoryID})

	rec := s.do(http.MethodDelete, fmt.Sprintf("/api/inventory/categories/%d", categoryID), s.token, "")
	s.Equal(http.StatusConflict, rec.Code)
	resp := s.decodeError(rec)
	s.Equal("IN_USE", resp.Error.Code)
	s.Equal("1", resp.Error.Details["references"])
}

func (s *APITestSuite) TestMonthlyTrendRejectsBadYear() {
	rec := s.do(http.MethodGet, "/api/reports/monthly-trend/abc", s.token, "")
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/reports/monthly-trend/2024", s.token, "")
	s.Require().Equal(http.StatusOK, rec.Code)
	var rows []models.MonthlyTrend
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &rows))
	s.Len(rows, 12)
}

func (s *APITestSuite) TestBackupViewTable() {
	rec := s.do(http.MethodGet, "/api/backup/view/inventory", s.token, "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "Ball Valve")

	rec = s.do(http.MethodGet, "/api/backup/view/users", s.token, "")
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *APITestSuite) TestDownloadSetsAttachment() {
	rec := s.do(http.MethodGet, "/api/backup/download", s.token, "")

	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Header().Get(echo.HeaderContentDisposition), "attachment; filename=\"hardware_store_backup_")
}

func (s *APITestSuite) TestHealth() {
	rec := s.do(http.MethodGet, "/health/ready", "", "")

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"backend":"sqlite"`)
}

func TestErrorHandlerRendersBackendError(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(logger.Nop())
	e.GET("/boom", func(c echo.Context) error {
		return fmt.Errorf("list items: %w", &database.BackendError{
			Backend: database.BackendPostgres,
			Code:    "40P01",
			Message: "deadlock detected",
		})
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "BACKEND_ERROR", body.Error.Code)
	assert.Equal(t, "postgres", body.Error.Details["backend"])
	assert.Equal(t, "40P01", body.Error.Details["code"])
	assert.NotContains(t, rec.Body.String(), "deadlock")
}

func TestErrorHandlerRendersEchoErrors(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(logger.Nop())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}
