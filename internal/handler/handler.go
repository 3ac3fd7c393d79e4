// Package handler exposes the discount and report services over HTTP.
package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/solidkart/internal/domain/discount"
	"github.com/xenking/solidkart/internal/domain/report"
)

const maxBodyBytes = 1 << 20

// DiscountService prices amounts per customer category.
type DiscountService interface {
	Quote(ctx context.Context, req discount.QuoteRequest) (*discount.Quote, error)
	Categories(ctx context.Context) ([]discount.Category, error)
}

// ReportService generates and looks up reports.
type ReportService interface {
	Create(ctx context.Context, data string) (*report.Report, error)
	Find(ctx context.Context, id string) (*report.Report, error)
}

// Route binds a ServeMux pattern to its handler. Operation names the route in
// traces and metrics.
type Route struct {
	Pattern   string
	Operation string
	Handler   http.Handler
}

// Handler serves the /api endpoints.
type Handler struct {
	discounts DiscountService
	reports   ReportService
}

// NewHandler constructs a Handler with the required domain services.
func NewHandler(discounts DiscountService, reports ReportService) *Handler {
	return &Handler{discounts: discounts, reports: reports}
}

// Routes lists the API routes.
func (h *Handler) Routes() []Route {
	return []Route{
		{Pattern: "GET /api/discounts/categories", Operation: "ListCategories", Handler: http.HandlerFunc(h.ListCategories)},
		{Pattern: "POST /api/discounts/quote", Operation: "QuoteDiscount", Handler: http.HandlerFunc(h.QuoteDiscount)},
		{Pattern: "POST /api/reports", Operation: "CreateReport", Handler: http.HandlerFunc(h.CreateReport)},
		{Pattern: "GET /api/reports/{id}", Operation: "GetReport", Handler: http.HandlerFunc(h.GetReport)},
	}
}

// Register adds every route to mux, passing each handler through wrap.
func (h *Handler) Register(mux *http.ServeMux, wrap func(Route) http.Handler) {
	for _, rt := range h.Routes() {
		mux.Handle(rt.Pattern, wrap(rt))
	}
}

// readBody reads at most maxBodyBytes of the request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	return body, nil
}

// badRequestError marks a malformed request.
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string {
	return e.msg
}

func badRequest(format string, args ...any) error {
	return &badRequestError{msg: fmt.Sprintf(format, args...)}
}

// writeError maps domain errors to HTTP responses. Unknown errors are logged
// and reported as 500 without details.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var bre *badRequestError
	switch {
	case errors.As(err, &bre):
		writeJSON(w, http.StatusBadRequest, encodeError(http.StatusBadRequest, bre.msg))
	case errors.Is(err, discount.ErrNegativeAmount),
		errors.Is(err, discount.ErrAmountOutOfRange),
		errors.Is(err, report.ErrEmptyContent):
		writeJSON(w, http.StatusBadRequest, encodeError(http.StatusBadRequest, err.Error()))
	case errors.Is(err, discount.ErrUnknownCategory),
		errors.Is(err, discount.ErrInvalidRule):
		writeJSON(w, http.StatusUnprocessableEntity, encodeError(http.StatusUnprocessableEntity, err.Error()))
	case errors.Is(err, report.ErrDuplicate):
		writeJSON(w, http.StatusConflict, encodeError(http.StatusConflict, report.ErrDuplicate.Error()))
	case errors.Is(err, report.ErrNotFound):
		writeJSON(w, http.StatusNotFound, encodeError(http.StatusNotFound, report.ErrNotFound.Error()))
	default:
		zctx.From(ctx).Error("Request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, encodeError(http.StatusInternalServerError, "internal server error"))
	}
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
