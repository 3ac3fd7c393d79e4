package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/xenking/solidkart/internal/domain/discount"
	"github.com/xenking/solidkart/internal/domain/report"
)

// --- Mock implementations ---

type mockDiscounts struct {
	lastReq    discount.QuoteRequest
	quote      *discount.Quote
	err        error
	categories []discount.Category
}

func (m *mockDiscounts) Quote(_ context.Context, req discount.QuoteRequest) (*discount.Quote, error) {
	m.lastReq = req
	return m.quote, m.err
}

func (m *mockDiscounts) Categories(context.Context) ([]discount.Category, error) {
	return m.categories, m.err
}

type mockReports struct {
	lastData string
	report   *report.Report
	err      error
}

func (m *mockReports) Create(_ context.Context, data string) (*report.Report, error) {
	m.lastData = data
	return m.report, m.err
}

func (m *mockReports) Find(_ context.Context, id string) (*report.Report, error) {
	if m.report == nil || m.report.ID != id {
		return nil, report.ErrNotFound
	}
	return m.report, nil
}

// --- Helpers ---

func newServer(t *testing.T, h *Handler) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	h.Register(mux, func(rt Route) http.Handler { return rt.Handler })
	return mux
}

func do(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

// stringField returns the string value of key in a JSON object.
func stringField(t *testing.T, body []byte, key string) string {
	t.Helper()
	var out string
	require.NoError(t, jx.DecodeBytes(body).Obj(func(d *jx.Decoder, k string) error {
		if k != key {
			return d.Skip()
		}
		v, err := d.Str()
		out = v
		return err
	}))
	return out
}

// --- Tests ---

func TestQuoteDiscount(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svc        *mockDiscounts
		wantStatus int
		wantBody   string
		wantReq    *discount.QuoteRequest
	}{
		{
			name: "number amount",
			body: `{"category":"vip","amount":100.0}`,
			svc: &mockDiscounts{quote: &discount.Quote{
				Category:   discount.CategoryVIP,
				Amount:     decimal.NewFromInt(100),
				Discounted: decimal.NewFromInt(90),
				Saved:      decimal.NewFromInt(10),
			}},
			wantStatus: http.StatusOK,
			wantBody:   `{"category":"vip","amount":"100.00","discounted":"90.00","saved":"10.00"}`,
			wantReq:    &discount.QuoteRequest{Category: "vip", Amount: decimal.RequireFromString("100.0")},
		},
		{
			name: "string amount and unknown fields",
			body: `{"amount":"19.99","category":"student","extra":[1,2]}`,
			svc: &mockDiscounts{quote: &discount.Quote{
				Category:   discount.CategoryStudent,
				Amount:     decimal.RequireFromString("19.99"),
				Discounted: decimal.RequireFromString("18.99"),
				Saved:      decimal.RequireFromString("1.00"),
			}},
			wantStatus: http.StatusOK,
			wantBody:   `{"category":"student","amount":"19.99","discounted":"18.99","saved":"1.00"}`,
			wantReq:    &discount.QuoteRequest{Category: "student", Amount: decimal.RequireFromString("19.99")},
		},
		{
			name:       "missing amount",
			body:       `{"category":"vip"}`,
			svc:        &mockDiscounts{},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"code":400,"message":"amount is required"}`,
		},
		{
			name:       "malformed json",
			body:       `{"category":`,
			svc:        &mockDiscounts{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "amount not a number",
			body:       `{"category":"vip","amount":"ten"}`,
			svc:        &mockDiscounts{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "amount wrong type",
			body:       `{"category":"vip","amount":true}`,
			svc:        &mockDiscounts{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown category",
			body:       `{"category":"gold","amount":1}`,
			svc:        &mockDiscounts{err: errors.Wrap(discount.ErrUnknownCategory, `category "gold"`)},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `{"code":422,"message":"category \"gold\": unknown customer category"}`,
		},
		{
			name:       "negative amount",
			body:       `{"category":"vip","amount":-1}`,
			svc:        &mockDiscounts{err: discount.ErrNegativeAmount},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"code":400,"message":"amount must not be negative"}`,
		},
		{
			name:       "amount out of range",
			body:       `{"category":"vip","amount":"1e100000"}`,
			svc:        &mockDiscounts{err: errors.Wrap(discount.ErrAmountOutOfRange, "more than 15 integer digits")},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"code":400,"message":"more than 15 integer digits: amount out of range"}`,
		},
		{
			name:       "amount too long",
			body:       `{"category":"vip","amount":` + strings.Repeat("9", maxAmountLen+1) + `}`,
			svc:        &mockDiscounts{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "trailing data",
			body:       `{"category":"vip","amount":1} junk`,
			svc:        &mockDiscounts{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "second object",
			body:       `{"category":"vip","amount":1}{}`,
			svc:        &mockDiscounts{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "trailing whitespace",
			body: "{\"category\":\"vip\",\"amount\":1}\n",
			svc: &mockDiscounts{quote: &discount.Quote{
				Category:   discount.CategoryVIP,
				Amount:     decimal.NewFromInt(1),
				Discounted: decimal.RequireFromString("0.9"),
				Saved:      decimal.RequireFromString("0.1"),
			}},
			wantStatus: http.StatusOK,
			wantReq:    &discount.QuoteRequest{Category: "vip", Amount: decimal.NewFromInt(1)},
		},
		{
			name:       "internal error is hidden",
			body:       `{"category":"gold","amount":1}`,
			svc:        &mockDiscounts{err: errors.New("db down")},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"code":500,"message":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newServer(t, NewHandler(tt.svc, &mockReports{}))

			w := do(mux, http.MethodPost, "/api/discounts/quote", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			}
			if tt.wantReq != nil {
				assert.Equal(t, tt.wantReq.Category, tt.svc.lastReq.Category)
				assert.True(t, tt.wantReq.Amount.Equal(tt.svc.lastReq.Amount))
			}
		})
	}
}

func TestListCategories(t *testing.T) {
	svc := &mockDiscounts{categories: []discount.Category{"regular", "student", "vip"}}
	mux := newServer(t, NewHandler(svc, &mockReports{}))

	w := do(mux, http.MethodGet, "/api/discounts/categories", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"categories":["regular","student","vip"]}`, w.Body.String())
}

func TestQuoteDiscount_WrongMethod(t *testing.T) {
	mux := newServer(t, NewHandler(&mockDiscounts{}, &mockReports{}))

	w := do(mux, http.MethodGet, "/api/discounts/quote", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestCreateReport(t *testing.T) {
	created := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	rep := &report.Report{
		ID:        "4a6f0b2e-1c1d-4a3b-9f55-0b8f8b1c2d3e",
		Content:   "Relatório formatado: dados do relatório",
		CreatedAt: created,
	}

	tests := []struct {
		name       string
		body       string
		svc        *mockReports
		wantStatus int
		wantData   string
		wantBody   string
	}{
		{
			name:       "empty body uses defaults",
			body:       "",
			svc:        &mockReports{report: rep},
			wantStatus: http.StatusCreated,
			wantBody:   `{"id":"4a6f0b2e-1c1d-4a3b-9f55-0b8f8b1c2d3e","content":"Relatório formatado: dados do relatório","createdAt":"2025-06-15T12:00:00Z"}`,
		},
		{
			name:       "custom data",
			body:       `{"data":"vendas"}`,
			svc:        &mockReports{report: rep},
			wantStatus: http.StatusCreated,
			wantData:   "vendas",
		},
		{
			name:       "data wrong type",
			body:       `{"data":1}`,
			svc:        &mockReports{report: rep},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "trailing data",
			body:       `{"data":"vendas"} []`,
			svc:        &mockReports{report: rep},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "duplicate content",
			body:       `{"data":"vendas"}`,
			svc:        &mockReports{err: errors.Wrap(report.ErrDuplicate, "save")},
			wantStatus: http.StatusConflict,
			wantBody:   `{"code":409,"message":"report with the same content already saved"}`,
		},
		{
			name:       "save failure",
			body:       `{}`,
			svc:        &mockReports{err: errors.New("disk full")},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newServer(t, NewHandler(&mockDiscounts{}, tt.svc))

			w := do(mux, http.MethodPost, "/api/reports", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			}
			if tt.wantStatus == http.StatusCreated {
				assert.Equal(t, "/api/reports/"+rep.ID, w.Header().Get("Location"))
				assert.Equal(t, tt.wantData, tt.svc.lastData)
			}
		})
	}
}

func TestGetReport(t *testing.T) {
	rep := &report.Report{ID: "r-1", Content: "x", CreatedAt: time.Unix(0, 0)}
	mux := newServer(t, NewHandler(&mockDiscounts{}, &mockReports{report: rep}))

	w := do(mux, http.MethodGet, "/api/reports/r-1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"r-1","content":"x","createdAt":"1970-01-01T00:00:00Z"}`, w.Body.String())

	w = do(mux, http.MethodGet, "/api/reports/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"code":404,"message":"report not found"}`, w.Body.String())
}

// TestEndToEnd wires the real services to check the documented results.
func TestEndToEnd(t *testing.T) {
	discounts, err := discount.NewService(discount.NewFactory(), noop.NewMeterProvider())
	require.NoError(t, err)
	reports, err := report.NewService(report.DefaultFormatter(), report.NewFileSaver(t.TempDir(), true), noop.NewMeterProvider())
	require.NoError(t, err)
	mux := newServer(t, NewHandler(discounts, reports))

	w := do(mux, http.MethodPost, "/api/discounts/quote", `{"category":"VIP","amount":100.0}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"category":"vip","amount":"100.00","discounted":"90.00","saved":"10.00"}`, w.Body.String())

	w = do(mux, http.MethodPost, "/api/discounts/quote", `{"category":"student","amount":100.0}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "95.00", stringField(t, w.Body.Bytes(), "discounted"))

	w = do(mux, http.MethodPost, "/api/discounts/quote", `{"category":"gold","amount":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	for _, amount := range []string{`"1e5000000"`, `"1e-5000000"`, `1e2000000000`} {
		w = do(mux, http.MethodPost, "/api/discounts/quote", `{"category":"vip","amount":`+amount+`}`)
		assert.Equal(t, http.StatusBadRequest, w.Code, amount)
		assert.Less(t, w.Body.Len(), 256, amount)
	}

	w = do(mux, http.MethodPost, "/api/reports", "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Relatório formatado: dados do relatório", stringField(t, w.Body.Bytes(), "content"))

	w = do(mux, http.MethodGet, w.Header().Get("Location"), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Relatório formatado: dados do relatório", stringField(t, w.Body.Bytes(), "content"))

	w = do(mux, http.MethodGet, "/api/reports/not-a-uuid", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
