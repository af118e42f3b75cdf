package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"graca-pdv/internal/cart"
	"graca-pdv/internal/config"
	"graca-pdv/internal/database"
	"graca-pdv/internal/receipt"
	"graca-pdv/internal/repository"
	"graca-pdv/internal/service"
)

type testAPI struct {
	router     chi.Router
	receiptDir string
	catalog    service.CatalogService
	sessions   *SessionHandler
}

func newTestAPI(t *testing.T, noticeTTL time.Duration) *testAPI {
	t.Helper()

	svc, err := database.New(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "pdv.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })

	logger := zap.NewNop()
	require.NoError(t, database.EnsureSchema(svc, logger))

	catalog := service.NewCatalogService(repository.NewProductRepository(svc.DB()), logger)
	sales := service.NewSalesService(
		repository.NewSaleRepository(svc.DB()),
		receipt.Store{Name: "Graça Presentes", Contact: "WhatsApp: (11) 99999-9999"},
		logger,
	)
	reports := service.NewReportService(repository.NewReportRepository(svc.DB()), logger)
	registry := cart.NewRegistry(catalog, sales, logger)

	receiptDir := t.TempDir()
	sessions := NewSessionHandler(registry, noticeTTL, logger)
	t.Cleanup(sessions.Shutdown)

	router := chi.NewRouter()
	NewProductHandler(catalog, logger).RegisterRoutes(router)
	sessions.RegisterRoutes(router)
	NewSaleHandler(sales, receiptDir, logger).RegisterRoutes(router)
	NewReportHandler(reports, logger).RegisterRoutes(router)

	for _, in := range []service.ProductInput{
		{Code: "P1", Name: "Perfume X", Price: "50,00", Quantity: "5", Category: "perfumes"},
		{Code: "C1", Name: "Creme", Price: "25.50", Quantity: "10", Category: "cremes"},
	} {
		_, err := catalog.Upsert(context.Background(), in)
		require.NoError(t, err)
	}

	return &testAPI{router: router, receiptDir: receiptDir, catalog: catalog, sessions: sessions}
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(v), w.Body.String())
}

func (a *testAPI) stock(t *testing.T, code string) int {
	t.Helper()
	p, err := a.catalog.Find(context.Background(), code)
	require.NoError(t, err)
	return p.Quantity
}

func (a *testAPI) openSession(t *testing.T) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp CartResponse
	decode(t, w, &resp)
	require.NotEmpty(t, resp.SessionID)
	return resp.SessionID
}

type errorEnvelope struct {
	Error struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}
