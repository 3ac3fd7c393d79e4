package handler

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/solidkart/internal/domain/discount"
	"github.com/xenking/solidkart/internal/domain/report"
)

// quoteRequest is the body of POST /api/discounts/quote.
type quoteRequest struct {
	Category string
	Amount   decimal.Decimal
	hasAmt   bool
}

// maxAmountLen bounds the textual length of an amount before it is parsed.
const maxAmountLen = 64

// decodeObject decodes a single JSON object and rejects trailing data.
func decodeObject(data []byte, f func(d *jx.Decoder, key string) error) error {
	d := jx.DecodeBytes(data)
	if err := d.Obj(f); err != nil {
		return err
	}
	if d.Next() != jx.Invalid {
		return errors.New("unexpected data after object")
	}
	return nil
}

// decodeQuoteRequest accepts the amount as a JSON number or a string.
func decodeQuoteRequest(data []byte) (quoteRequest, error) {
	var req quoteRequest
	if err := decodeObject(data, func(d *jx.Decoder, key string) error {
		switch key {
		case "category":
			v, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "category")
			}
			req.Category = v
		case "amount":
			raw, err := decodeDecimalString(d)
			if err != nil {
				return errors.Wrap(err, "amount")
			}
			if len(raw) > maxAmountLen {
				return errors.Errorf("amount: longer than %d characters", maxAmountLen)
			}
			amt, err := decimal.NewFromString(raw)
			if err != nil {
				return errors.Wrap(err, "amount")
			}
			req.Amount = amt
			req.hasAmt = true
		default:
			return d.Skip()
		}
		return nil
	}); err != nil {
		return req, badRequest("invalid request body: %s", err)
	}

	if !req.hasAmt {
		return req, badRequest("amount is required")
	}
	return req, nil
}

func decodeDecimalString(d *jx.Decoder) (string, error) {
	switch d.Next() {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return "", err
		}
		return string(n), nil
	case jx.String:
		return d.Str()
	default:
		return "", errors.New("expected number or string")
	}
}

// decodeReportRequest reads the optional "data" field. An empty body is
// allowed.
func decodeReportRequest(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	var out string
	if err := decodeObject(data, func(d *jx.Decoder, key string) error {
		if key != "data" {
			return d.Skip()
		}
		v, err := d.Str()
		if err != nil {
			return errors.Wrap(err, "data")
		}
		out = v
		return nil
	}); err != nil {
		return "", badRequest("invalid request body: %s", err)
	}
	return out, nil
}

func encodeQuote(q *discount.Quote) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("category")
	e.Str(string(q.Category))
	e.FieldStart("amount")
	e.Str(q.Amount.StringFixed(2))
	e.FieldStart("discounted")
	e.Str(q.Discounted.StringFixed(2))
	e.FieldStart("saved")
	e.Str(q.Saved.StringFixed(2))
	e.ObjEnd()
	return e.Bytes()
}

func encodeCategories(cs []discount.Category) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("categories")
	e.ArrStart()
	for _, c := range cs {
		e.Str(string(c))
	}
	e.ArrEnd()
	e.ObjEnd()
	return e.Bytes()
}

func encodeReport(r *report.Report) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("id")
	e.Str(r.ID)
	e.FieldStart("content")
	e.Str(r.Content)
	e.FieldStart("createdAt")
	e.Str(r.CreatedAt.UTC().Format(time.RFC3339Nano))
	e.ObjEnd()
	return e.Bytes()
}

func encodeError(code int, msg string) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("code")
	e.Int(code)
	e.FieldStart("message")
	e.Str(msg)
	e.ObjEnd()
	return e.Bytes()
}
