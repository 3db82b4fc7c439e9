package models

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

type ChargeType string

const (
	ChargeTypeDirect  ChargeType = "direct"
	ChargeTypePincode ChargeType = "pincode"
)

const (
	MinAmount = 2000
	MaxAmount = 20000
)

// ChargeRequest is the payload a client sends to top up a phone number.
// Build it with ParseChargeRequest so every field has been checked.
type ChargeRequest struct {
	Amount     int64      `json:"amount" validate:"charge_amount" jsonschema:"charge amount in toman"`
	Phone      string     `json:"phone" validate:"ir_mobile" jsonschema:"11 digit mobile number starting with 09"`
	Super      bool       `json:"super" jsonschema:"reseller specific tier flag, passed through as-is"`
	Daemi      bool       `json:"daemi" jsonschema:"reseller specific tier flag, passed through as-is"`
	ChargeType ChargeType `json:"charge_type" validate:"oneof=direct pincode" jsonschema:"direct top-up or pincode purchase"`
}

// Operator is only meaningful on a request returned by ParseChargeRequest.
func (r ChargeRequest) Operator() Operator {
	op, _ := ResolveOperator(r.Phone, r.Super, r.Daemi)
	return op
}

// ChargeResult is what a successful charge returns to the caller.
type ChargeResult struct {
	PaymentURL string `json:"payment_url" jsonschema:"link the user completes payment through"`
}

// ErrorResponse is the body of every non-200 answer.
type ErrorResponse struct {
	Code    string       `json:"code" jsonschema:"machine readable error class"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty" jsonschema:"per-field problems, only for validation errors"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field of a charge request that failed to parse
// or validate.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "invalid charge request: " + strings.Join(parts, "; ")
}

func (e *ValidationError) has(field string) bool {
	return slices.ContainsFunc(e.Fields, func(f FieldError) bool { return f.Field == field })
}

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

type chargeField struct {
	name     string
	kind     string
	required bool
	dst      func(*ChargeRequest) any
}

var chargeFields = []chargeField{
	{"amount", "an integer", true, func(r *ChargeRequest) any { return &r.Amount }},
	{"phone", "a string", true, func(r *ChargeRequest) any { return &r.Phone }},
	{"super", "a boolean", false, func(r *ChargeRequest) any { return &r.Super }},
	{"daemi", "a boolean", false, func(r *ChargeRequest) any { return &r.Daemi }},
	{"charge_type", "a string", true, func(r *ChargeRequest) any { return &r.ChargeType }},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	v.RegisterAlias("charge_amount", fmt.Sprintf("gte=%d,lte=%d", MinAmount, MaxAmount))
	_ = v.RegisterValidation("ir_mobile", func(fl validator.FieldLevel) bool {
		_, ok := ResolveOperator(fl.Field().String(), false, false)
		return ok
	})
	return v
}

// ParseChargeRequest decodes raw JSON into a ChargeRequest. Each field is
// decoded on its own so that one bad field does not hide the others; the
// returned *ValidationError names all of them.
func ParseChargeRequest(raw []byte) (ChargeRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return ChargeRequest{}, &ValidationError{Fields: []FieldError{{Field: "body", Message: "must be a JSON object"}}}
	}

	var (
		req  ChargeRequest
		verr ValidationError
	)
	for _, f := range chargeFields {
		v, ok := fields[f.name]
		if !ok || string(v) == "null" {
			if f.required {
				verr.add(f.name, "is required")
			}
			continue
		}
		if err := json.Unmarshal(v, f.dst(&req)); err != nil {
			verr.add(f.name, "must be "+f.kind)
		}
	}

	if err := validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return ChargeRequest{}, fmt.Errorf("validating charge request: %w", err)
		}
		for _, fe := range fieldErrs {
			if verr.has(fe.Field()) {
				continue
			}
			verr.add(fe.Field(), describe(fe))
		}
	}

	if len(verr.Fields) > 0 {
		order := func(name string) int {
			return slices.IndexFunc(chargeFields, func(f chargeField) bool { return f.name == name })
		}
		slices.SortStableFunc(verr.Fields, func(a, b FieldError) int { return order(a.Field) - order(b.Field) })
		return ChargeRequest{}, &verr
	}

	return req, nil
}

func describe(fe validator.FieldError) string {
	switch fe.ActualTag() {
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "ir_mobile":
		return "must be an 11 digit mobile number of a supported operator"
	}
	return fmt.Sprintf("failed %q check", fe.Tag())
}
