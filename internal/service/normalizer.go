package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"nps-merchant-gateway/internal/core/domain"
	"nps-merchant-gateway/internal/core/ports"
	"nps-merchant-gateway/pkg/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const schemaErrorCode = "500"

// ResponseNormalizer maps a gateway reply onto a GatewayResult or an
// *apperror.AppError. One instance is shared by every endpoint; only the
// schema differs per call.
type ResponseNormalizer struct {
	validate *validator.Validate
}

// NewResponseNormalizer builds a normalizer with the schema validators registered.
func NewResponseNormalizer() *ResponseNormalizer {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("nonneg_decimal", validateNonNegDecimal); err != nil {
		panic(fmt.Sprintf("register nonneg_decimal: %v", err))
	}
	return &ResponseNormalizer{validate: v}
}

// validateNonNegDecimal accepts a decimal string >= 0 with at most two places.
func validateNonNegDecimal(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return !d.IsNegative() &&
		domain.CheckPrecision(d, domain.ServiceChargeMaxDigits, domain.AmountDecimalPlaces) == ""
}

// Normalize dispatches on resp.Code.
func (n *ResponseNormalizer) Normalize(resp *domain.GatewayResponse, schema domain.ResponseSchema) (*ports.GatewayResult, error) {
	switch resp.Code {
	case domain.GatewayCodeSuccess:
		value, err := n.decode(resp, schema)
		if err != nil {
			return nil, err
		}
		msg := resp.Message
		if strings.TrimSpace(msg) == "" {
			msg = schema.SuccessMessage
		}
		if schema.RawData {
			value = resp.Data
		}
		return &ports.GatewayResult{Code: domain.GatewayCodeSuccess, Message: msg, Data: value}, nil

	case domain.GatewayCodeError:
		if len(resp.Errors) > 0 {
			return nil, apperror.ErrGatewayRejected("Error", resp.Errors)
		}
		msg := resp.Message
		if msg == "" {
			msg = "Unknown error occurred"
		}
		return nil, apperror.ErrGatewayRejected("Error", []apperror.Detail{{ErrorCode: "400", ErrorMessage: msg}})

	case domain.GatewayCodePending:
		msg := resp.Message
		if msg == "" {
			msg = "Transaction in process"
		}
		var data interface{} = map[string]interface{}{}
		if resp.HasData() {
			data = resp.Data
		}
		return &ports.GatewayResult{Code: domain.GatewayCodePending, Message: msg, Data: data}, nil
	}

	return nil, apperror.ErrUnexpectedCode(resp.Code)
}

// decode unmarshals data into the schema target and validates it.
func (n *ResponseNormalizer) decode(resp *domain.GatewayResponse, schema domain.ResponseSchema) (interface{}, error) {
	if !resp.HasData() {
		return nil, schemaViolation(detail("data", "This field is required."))
	}

	target := schema.New()
	if err := json.Unmarshal(resp.Data, target); err != nil {
		return nil, schemaViolation(detail("data", decodeMessage(err, schema)))
	}

	var details []apperror.Detail
	if schema.Many {
		items := reflect.ValueOf(target).Elem()
		for i := 0; i < items.Len(); i++ {
			item := items.Index(i).Addr().Interface()
			details = append(details, n.check(item, fmt.Sprintf("data[%d]", i))...)
			if d, ok := item.(domain.Defaulter); ok {
				d.ApplyDefaults()
			}
		}
	} else {
		details = n.check(target, "data")
		if d, ok := target.(domain.Defaulter); ok {
			d.ApplyDefaults()
		}
	}
	if len(details) > 0 {
		return nil, schemaViolation(details...)
	}
	return target, nil
}

func (n *ResponseNormalizer) check(v interface{}, prefix string) []apperror.Detail {
	err := n.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []apperror.Detail{detail(prefix, err.Error())}
	}

	out := make([]apperror.Detail, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, detail(prefix+"."+fe.Field(), fieldMessage(fe)))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "url":
		return "Enter a valid URL."
	case "nonneg_decimal":
		return "A non-negative number with at most 2 decimal places is required."
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

func decodeMessage(err error, schema domain.ResponseSchema) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field == "" {
			if schema.Many {
				return "Expected a list of items."
			}
			return "Expected an object."
		}
		return fmt.Sprintf("%s: unexpected %s", typeErr.Field, typeErr.Value)
	}
	return err.Error()
}

func detail(field, msg string) apperror.Detail {
	return apperror.Detail{ErrorCode: schemaErrorCode, ErrorMessage: field + ": " + msg}
}

func schemaViolation(details ...apperror.Detail) error {
	return apperror.ErrSchemaViolation(details)
}
