package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

// Test struct with validation tags
type TestRequest struct {
	Code          string `json:"code" validate:"required"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=dinheiro cartao pix"`
	Installments  int    `json:"installments" validate:"gte=0,lte=24"`
}

// Feature: graca-pdv, Property 21: Required field validation works
// Validates: request decoding
func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeCode bool, includeMethod bool) bool {
			reqMap := make(map[string]interface{})

			if includeCode {
				reqMap["code"] = "PERF01"
			}
			if includeMethod {
				reqMap["payment_method"] = "pix"
			}

			allFieldsPresent := includeCode && includeMethod

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var testReq TestRequest
			err := DecodeAndValidate(req, &testReq)

			if allFieldsPresent {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Test that validation errors are reported with JSON field names
func TestValidationErrorsUseJSONNames(t *testing.T) {
	reqBody, _ := json.Marshal(map[string]interface{}{
		"code":           "PERF01",
		"payment_method": "cheque",
	})
	req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))

	var testReq TestRequest
	err := DecodeAndValidate(req, &testReq)

	validationErrors := FormatValidationErrors(err)
	if assert.Len(t, validationErrors, 1) {
		assert.Equal(t, "payment_method", validationErrors[0].Field)
		assert.Equal(t, "Value must be one of: dinheiro cartao pix", validationErrors[0].Message)
	}
}

// Test that valid requests pass validation
func TestProperty_ValidRequestsPassValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("valid requests pass validation", prop.ForAll(
		func(seed int) bool {
			codes := []string{"PERF01", "CST01", "CRM01", "SAB02"}
			methods := []string{"dinheiro", "cartao", "pix"}

			if seed < 0 {
				seed = -seed
			}

			reqMap := map[string]interface{}{
				"code":           codes[seed%len(codes)],
				"payment_method": methods[seed%len(methods)],
				"installments":   seed % 25,
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var testReq TestRequest
			return DecodeAndValidate(req, &testReq) == nil
		},
		gen.Int(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Test installment range validation
func TestProperty_InstallmentRangeValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("installments outside valid range are rejected", prop.ForAll(
		func(installments int) bool {
			reqMap := map[string]interface{}{
				"code":           "PERF01",
				"payment_method": "cartao",
				"installments":   installments,
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var testReq TestRequest
			err := DecodeAndValidate(req, &testReq)

			if installments >= 0 && installments <= 24 {
				return err == nil
			}
			return err != nil
		},
		gen.IntRange(-10, 40),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRespondWithDecodeError(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", bytes.NewReader([]byte("{not json")))
	var testReq TestRequest
	err := DecodeAndValidate(req, &testReq)

	w := httptest.NewRecorder()
	RespondWithDecodeError(w, err)

	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}
