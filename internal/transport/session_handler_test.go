package transport

import (
	"net/http"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graca-pdv/internal/notice"
)

// Feature: graca-pdv, Property 22: Adding then removing an item over HTTP restores stock
// Validates: cart session endpoints
func TestProperty_AddRemoveOverHTTPRestoresStock(t *testing.T) {
	api := newTestAPI(t, time.Minute)
	id := api.openSession(t)
	properties := gopter.NewProperties(nil)

	properties.Property("stock returns to its starting level", prop.ForAll(
		func(quantity int) bool {
			before := api.stock(t, "C1")

			w := api.do(t, http.MethodPost, "/api/sessions/"+id+"/cart/items", map[string]interface{}{
				"code":     "C1",
				"quantity": quantity,
			})
			if w.Code != http.StatusOK {
				t.Logf("FAIL: add returned %d: %s", w.Code, w.Body.String())
				return false
			}
			if api.stock(t, "C1") != before-quantity {
				t.Logf("FAIL: stock not reserved")
				return false
			}

			w = api.do(t, http.MethodDelete, "/api/sessions/"+id+"/cart/items/C1", nil)
			if w.Code != http.StatusOK {
				t.Logf("FAIL: remove returned %d", w.Code)
				return false
			}
			return api.stock(t, "C1") == before
		},
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestCashCheckoutOverHTTP(t *testing.T) {
	api := newTestAPI(t, time.Minute)
	id := api.openSession(t)

	w := api.do(t, http.MethodPost, "/api/sessions/"+id+"/cart/items", map[string]interface{}{"code": "P1", "quantity": "1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = api.do(t, http.MethodPost, "/api/sessions/"+id+"/cart/items", map[string]interface{}{"code": "C1", "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var cartResp CartResponse
	decode(t, w, &cartResp)
	assert.Equal(t, "75.50", cartResp.Total.StringFixed(2))
	assert.Len(t, cartResp.Lines, 2)

	w = api.do(t, http.MethodPost, "/api/sessions/"+id+"/checkout", map[string]interface{}{
		"payment_method":  "dinheiro",
		"amount_tendered": "100,00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp CheckoutResponse
	decode(t, w, &resp)
	assert.Equal(t, "24.50", resp.Sale.Change.Decimal.StringFixed(2))
	assert.Equal(t, "100.00", resp.Sale.AmountTendered.Decimal.StringFixed(2))
	assert.Equal(t, "Venda #1 finalizada com sucesso! Troco: R$ 24.50", resp.Notice.Message)

	w = api.do(t, http.MethodGet, "/api/sessions/"+id+"/notice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var posted notice.Notice
	decode(t, w, &posted)
	assert.Equal(t, resp.Notice.Message, posted.Message)

	w = api.do(t, http.MethodGet, "/api/sessions/"+id+"/cart", nil)
	decode(t, w, &cartResp)
	assert.True(t, cartResp.Empty)

	assert.Equal(t, 4, api.stock(t, "P1"))
	assert.Equal(t, 9, api.stock(t, "C1"))
}

func TestCheckoutNoticeWithoutChange(t *testing.T) {
	api := newTestAPI(t, time.Minute)
	id := api.openSession(t)

	api.do(t, http.MethodPost, "/api/sessions/"+id+"/cart/items", map[string]interface{}{"code": "P1", "quantity": 2})
	w := api.do(t, http.MethodPost, "/api/sessions/"+id+"/checkout", map[string]interface{}{
		"payment_method": "cartao",
		"card":           map[string]interface{}{"customer_name": "Joana", "card_type": "debito", "installments": 3},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp CheckoutResponse
	decode(t, w, &resp)
	assert.Equal(t, "Venda #1 finalizada com sucesso!", resp.Notice.Message)
	require.NotNil(t, resp.Sale.Card)
	assert.Equal(t, 1, resp.Sale.Card.Installments)
	assert.False(t, resp.Sale.Change.Valid)
}

func TestNoticeClearsAfterTTL(t *testing.T) {
	api := newTestAPI(t, 20*time.Millisecond)
	id := api.openSession(t)

	api.do(t, http.MethodPost, "/api/sessions/"+id+"/cart/items", map[string]interface{}{"code": "C1", "quantity": 1})
	w := api.do(t, http.MethodPost, "/api/sessions/"+id+"/checkout", map[string]interface{}{"payment_method": "pix"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assert.Eventually(t, func() bool {
		return api.do(t, http.MethodGet, "/api/sessions/"+id+"/notice", nil).Code == http.StatusNoContent
	}, time.Second, 10*time.Millisecond)
}

func TestCheckoutErrorsMapToStatus(t *testing.T) {
	api := newTestAPI(t, time.Minute)
	id := api.openSession(t)

	w := api.do(t, http.MethodPost, "/api/sessions/"+id+"/checkout", map[string]interface{}{"payment_method": "pix"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "empty cart")

	api.do(t, http.MethodPost, "/api/sessions/"+id+"/cart/items", map[string]interface{}{"code": "P1", "quantity": 1})

	w = api.do(t, http.MethodPost, "/api/sessions/"+id+"/checkout", map[string]interface{}{
		"payment_method":  "dinheiro",
		"amount_tendered": "20",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = api.do(t, http.MethodPost, "/api/sessions/"+id+"/checkout", map[string]interface{}{"payment_method": "cheque"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var env errorEnvelope
	decode(t, w, &env)
	assert.Equal(t, "payment_method", env.Error.Details["field"])

	w = api.do(t, http.MethodPost, "/api/sessions/"+id+"/checkout", map[string]interface{}{
		"payment_method": "cartao",
		"card":           map[string]interface{}{"customer_name": "", "card_type": "credito", "installments": 2},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	decode(t, w, &env)
	assert.Equal(t, "customer_name", env.Error.Details["field"])

	assert.Equal(t, 4, api.stock(t, "P1"), "failed checkouts keep the reservation")
}

func TestOverQuantityAddReturnsConflict(t *testing.T) {
	api := newTestAPI(t, time.Minute)
	id := api.openSession(t)

	w := api.do(t, http.MethodPost, "/api/sessions/"+id+"/cart/items", map[string]interface{}{"code": "P1", "quantity": 10})
	require.Equal(t, http.StatusConflict, w.Code)

	var env errorEnvelope
	decode(t, w, &env)
	assert.Equal(t, float64(5), env.Error.Details["available"])
	assert.Equal(t, float64(10), env.Error.Details["requested"])
	assert.Equal(t, 5, api.stock(t, "P1"))

	w = api.do(t, http.MethodPost, "/api/sessions/"+id+"/cart/items", map[string]interface{}{"code": "P1", "quantity": "dois"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPost, "/api/sessions/"+id+"/cart/items", map[string]interface{}{"code": "NOPE", "quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCloseSessionReleasesStock(t *testing.T) {
	api := newTestAPI(t, time.Minute)
	id := api.openSession(t)

	api.do(t, http.MethodPost, "/api/sessions/"+id+"/cart/items", map[string]interface{}{"code": "P1", "quantity": 3})
	assert.Equal(t, 2, api.stock(t, "P1"))

	w := api.do(t, http.MethodDelete, "/api/sessions/"+id, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 5, api.stock(t, "P1"))

	w = api.do(t, http.MethodGet, "/api/sessions/"+id+"/cart", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClearCartEndpoint(t *testing.T) {
	api := newTestAPI(t, time.Minute)
	id := api.openSession(t)

	api.do(t, http.MethodPost, "/api/sessions/"+id+"/cart/items", map[string]interface{}{"code": "P1", "quantity": 2})
	api.do(t, http.MethodPost, "/api/sessions/"+id+"/cart/items", map[string]interface{}{"code": "C1", "quantity": 4})

	w := api.do(t, http.MethodDelete, "/api/sessions/"+id+"/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp CartResponse
	decode(t, w, &resp)
	assert.True(t, resp.Empty)
	assert.Equal(t, 5, api.stock(t, "P1"))
	assert.Equal(t, 10, api.stock(t, "C1"))
}
