package handler

import (
	"net/http"

	"github.com/xenking/solidkart/internal/domain/discount"
)

// ListCategories returns every category that can be quoted.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cs, err := h.discounts.Categories(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeCategories(cs))
}

// QuoteDiscount prices an amount for a category.
func (h *Handler) QuoteDiscount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := readBody(w, r)
	if err != nil {
		writeError(ctx, w, badRequest("%s", err))
		return
	}
	req, err := decodeQuoteRequest(body)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	q, err := h.discounts.Quote(ctx, discount.QuoteRequest{
		Category: req.Category,
		Amount:   req.Amount,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, encodeQuote(q))
}
