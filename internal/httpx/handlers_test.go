package httpx

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ariefcatur/go-pos-tables/internal/catalog"
	"github.com/ariefcatur/go-pos-tables/internal/checkout"
	"github.com/ariefcatur/go-pos-tables/internal/discount"
	"github.com/ariefcatur/go-pos-tables/internal/inventory"
	"github.com/ariefcatur/go-pos-tables/internal/orders"
	"github.com/ariefcatur/go-pos-tables/internal/tables"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*httptest.Server
	store *orders.MemStore
}

func newServer(t *testing.T) testServer {
	t.Helper()
	st := orders.NewMemStore()
	st.PutProduct(orders.Product{ID: "p-sandwich", Name: "Sandwich", Price: decimal.NewFromInt(2500), Stock: 5, Category: "Food"})
	st.PutProduct(orders.Product{ID: "p-juice", Name: "Juice", Price: decimal.NewFromInt(1500), Stock: 2, Category: "Drinks"})
	st.PutDiscount(orders.Discount{Code: "10OFF", Percentage: decimal.NewFromInt(10)})

	cat := catalog.New(st)
	require.NoError(t, cat.Reload(context.Background()))
	n := 0
	discounts := discount.NewResolver(st)
	reg := tables.New(st, cat, discounts,
		tables.WithDraftDelay(time.Hour),
		tables.WithIDFunc(func() string { n++; return fmt.Sprintf("s%d", n) }),
	)
	inv := inventory.NewService(st, cat, false)

	r := NewRouter()
	Mount(r, Handlers{
		Tables:  &TablesHandler{Registry: reg, Checkout: checkout.New(reg, st, inv)},
		Catalog: &CatalogHandler{Catalog: cat, Inventory: inv, Sales: st, Discounts: discounts},
		Events:  &EventsHandler{Registry: reg},
	})
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		reg.Close(context.Background())
	})
	return testServer{Server: srv, store: st}
}

func (s testServer) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, s.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var out map[string]any
	if res.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(res.Body).Decode(&out)
	}
	return res.StatusCode, out
}

func TestHealthz(t *testing.T) {
	srv := newServer(t)
	res, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestTableFlow_ToCheckout(t *testing.T) {
	srv := newServer(t)

	code, body := srv.do(t, "POST", "/tables", `{"slot": 1}`)
	require.Equal(t, http.StatusCreated, code, body)
	id := body["id"].(string)
	assert.Equal(t, "Table 1", body["label"])

	for i := 0; i < 3; i++ {
		code, body = srv.do(t, "POST", "/tables/"+id+"/items", `{"product_id": "p-sandwich"}`)
		require.Equal(t, http.StatusOK, code, body)
	}
	code, body = srv.do(t, "POST", "/tables/"+id+"/custom-items", `{"name": "Cake", "price": "1000"}`)
	require.Equal(t, http.StatusOK, code, body)
	code, body = srv.do(t, "POST", "/tables/"+id+"/discount", `{"code": "10OFF"}`)
	require.Equal(t, http.StatusOK, code, body)

	totals := body["totals"].(map[string]any)
	assert.Equal(t, "8500", totals["subtotal"])
	assert.Equal(t, "850", totals["discount_amount"])
	assert.Equal(t, "7650", totals["total"])

	code, body = srv.do(t, "POST", "/tables/"+id+"/checkout", `{"method": "cash", "tendered": 5000}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "2650", body["shortfall"])

	code, body = srv.do(t, "POST", "/tables/"+id+"/checkout", `{"method": "cash", "tendered": "10000"}`)
	require.Equal(t, http.StatusOK, code, body)
	receipt := body["receipt"].(map[string]any)
	assert.Equal(t, "2350", receipt["change"])

	code, _ = srv.do(t, "GET", "/tables/"+id, "")
	assert.Equal(t, http.StatusNotFound, code)

	code, body = srv.do(t, "GET", "/reports/close-day?date="+time.Now().UTC().Format(time.DateOnly), "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "7650", body["total"])
}

func TestErrorsMapToStatus(t *testing.T) {
	srv := newServer(t)

	code, body := srv.do(t, "POST", "/tables", `{"slot": 9}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, string(orders.KindValidation), body["kind"])

	code, body = srv.do(t, "POST", "/tables", `{}`)
	require.Equal(t, http.StatusCreated, code)
	id := body["id"].(string)

	code, _ = srv.do(t, "POST", "/tables", `{"slot": 1}`)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = srv.do(t, "POST", "/tables/"+id+"/discount", `{"code": "NOPE"}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = srv.do(t, "POST", "/tables/"+id+"/items", `{"product_id": "p-juice"}`)
	require.Equal(t, http.StatusOK, code)
	code, body = srv.do(t, "PATCH", "/tables/"+id+"/items/0", `{"quantity": 3}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, string(orders.KindStock), body["kind"])
	assert.Len(t, body["items"], 1)

	code, _ = srv.do(t, "PATCH", "/tables/"+id+"/items/x", `{"quantity": 1}`)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = srv.do(t, "POST", "/tables/"+id+"/items", `{`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = srv.do(t, "POST", "/tables/"+id+"/checkout", `{"method": "transfer"}`)
	require.Equal(t, http.StatusOK, code)

	code, body = srv.do(t, "POST", "/tables/s99/checkout", `{"method": "transfer"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, string(orders.KindNotFound), body["kind"])
}

func TestItemEditing(t *testing.T) {
	srv := newServer(t)
	_, body := srv.do(t, "POST", "/tables", `{"slot": 2}`)
	id := body["id"].(string)
	srv.do(t, "POST", "/tables/"+id+"/items", `{"product_id": "p-sandwich"}`)

	code, body := srv.do(t, "POST", "/tables/"+id+"/items/0/additions", `{"name": "Cheese", "price_delta": "300"}`)
	require.Equal(t, http.StatusOK, code, body)
	code, body = srv.do(t, "PATCH", "/tables/"+id+"/items/0", `{"quantity": 2, "price": "3000"}`)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "6000", body["totals"].(map[string]any)["subtotal"])

	code, body = srv.do(t, "DELETE", "/tables/"+id+"/items/0/additions/0", "")
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "5400", body["totals"].(map[string]any)["subtotal"])

	code, body = srv.do(t, "PUT", "/tables/"+id+"/comment", `{"comment": "window"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "window", body["comment"])

	code, _ = srv.do(t, "DELETE", "/tables/"+id+"/items/0", "")
	require.Equal(t, http.StatusOK, code)
	code, _ = srv.do(t, "DELETE", "/tables/"+id, "")
	assert.Equal(t, http.StatusNoContent, code)
}

func TestCatalogRoutes(t *testing.T) {
	srv := newServer(t)

	res, err := http.Get(srv.URL + "/products?category=Drinks")
	require.NoError(t, err)
	var ps []orders.Product
	require.NoError(t, json.NewDecoder(res.Body).Decode(&ps))
	res.Body.Close()
	require.Len(t, ps, 1)
	assert.Equal(t, "p-juice", ps[0].ID)

	code, body := srv.do(t, "POST", "/products/p-juice/restock", `{"qty": 4}`)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 6, body["stock"])

	code, _ = srv.do(t, "POST", "/products/p-juice/restock", `{"qty": 0}`)
	assert.Equal(t, http.StatusBadRequest, code)

	srv.store.PutProduct(orders.Product{ID: "p-tea", Name: "Tea", Price: decimal.NewFromInt(900), Stock: 9})
	code, body = srv.do(t, "POST", "/catalog/reload", "")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 3, body["products"])
}

func TestEventsStream(t *testing.T) {
	srv := newServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/events", nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	code, _ := srv.do(t, "POST", "/tables", `{"slot": 3}`)
	require.Equal(t, http.StatusCreated, code)

	line, err := bufio.NewReader(res.Body).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: opened\n", line)
}

func TestDiscountRoutes(t *testing.T) {
	srv := newServer(t)

	code, body := srv.do(t, "GET", "/discounts/10OFF", "")
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "10OFF", body["code"])

	code, _ = srv.do(t, "GET", "/discounts/NOPE", "")
	assert.Equal(t, http.StatusNotFound, code)

	srv.store.PutDiscount(orders.Discount{Code: "10OFF", Percentage: decimal.NewFromInt(15)})
	code, _ = srv.do(t, "DELETE", "/discounts/10OFF/cache", "")
	assert.Equal(t, http.StatusNoContent, code)

	code, body = srv.do(t, "GET", "/discounts/10OFF", "")
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "15", body["percentage"])
}

func TestPatchItem_RejectedEditLeavesLineUnchanged(t *testing.T) {
	srv := newServer(t)
	_, body := srv.do(t, "POST", "/tables", `{"slot": 3}`)
	id := body["id"].(string)
	srv.do(t, "POST", "/tables/"+id+"/items", `{"product_id": "p-juice"}`)

	code, body := srv.do(t, "PATCH", "/tables/"+id+"/items/0", `{"quantity": 9, "price": "100"}`)
	require.Equal(t, http.StatusConflict, code, body)

	code, body = srv.do(t, "GET", "/tables/"+id, "")
	require.Equal(t, http.StatusOK, code, body)
	item := body["items"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(1), item["quantity"])
	assert.Equal(t, "1500", item["price"])
}
