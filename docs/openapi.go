package docs

import (
	"fmt"
	"slices"
	"sync"

	"github.com/goccy/go-json"
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/a2n2k3p4/topup-gateway/models"
)

const Version = "1.0.0"

var document = sync.OnceValues(buildDocument)

// OpenAPI returns the OpenAPI 3.1 document for the HTTP surface, generated
// from the request and response types.
func OpenAPI() ([]byte, error) {
	return document()
}

func buildDocument() ([]byte, error) {
	request, err := chargeRequestSchema()
	if err != nil {
		return nil, err
	}
	result, err := jsonschema.For[models.ChargeResult](nil)
	if err != nil {
		return nil, fmt.Errorf("schema for charge result: %w", err)
	}
	errorResp, err := jsonschema.For[models.ErrorResponse](nil)
	if err != nil {
		return nil, fmt.Errorf("schema for error response: %w", err)
	}

	errorRef := func(description string) map[string]any {
		return map[string]any{
			"description": description,
			"content": map[string]any{
				"application/json": map[string]any{
					"schema": map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
				},
			},
		}
	}

	doc := map[string]any{
		"openapi": "3.1.0",
		"info": map[string]any{
			"title":       "Mobile top-up gateway",
			"description": "Validates mobile charge requests and forwards them to the reseller, returning a payment URL.",
			"version":     Version,
		},
		"paths": map[string]any{
			"/charge": map[string]any{
				"post": map[string]any{
					"summary":     "Create a charge and get a payment URL",
					"operationId": "createCharge",
					"requestBody": map[string]any{
						"required": true,
						"content": map[string]any{
							"application/json": map[string]any{
								"schema": map[string]any{"$ref": "#/components/schemas/ChargeRequest"},
								"example": map[string]any{
									"amount":      5000,
									"phone":       "09123456789",
									"super":       false,
									"daemi":       false,
									"charge_type": "direct",
								},
							},
						},
					},
					"responses": map[string]any{
						"200": map[string]any{
							"description": "Reseller accepted the charge",
							"content": map[string]any{
								"application/json": map[string]any{
									"schema": map[string]any{"$ref": "#/components/schemas/ChargeResult"},
								},
							},
						},
						"400": errorRef("Reseller declined the charge without a payment URL"),
						"4XX": errorRef("Reseller rejected the charge; status mirrors the reseller's"),
						"422": errorRef("Request body failed validation"),
						"502": errorRef("Reseller unreachable or answered with an error"),
						"504": errorRef("Reseller did not answer in time"),
					},
				},
			},
			"/health": map[string]any{
				"get": map[string]any{
					"summary":   "Liveness probe",
					"responses": map[string]any{"200": map[string]any{"description": "Service is up"}},
				},
			},
		},
		"components": map[string]any{
			"schemas": map[string]any{
				"ChargeRequest": request,
				"ChargeResult":  result,
				"ErrorResponse": errorResp,
			},
		},
	}

	return json.Marshal(doc)
}

// chargeRequestSchema adds the constraints ParseChargeRequest enforces on top
// of the shape reflected from the struct.
func chargeRequestSchema() (*jsonschema.Schema, error) {
	s, err := jsonschema.For[models.ChargeRequest](nil)
	if err != nil {
		return nil, fmt.Errorf("schema for charge request: %w", err)
	}

	minAmount, maxAmount := float64(models.MinAmount), float64(models.MaxAmount)
	amount := s.Properties["amount"]
	amount.Minimum = &minAmount
	amount.Maximum = &maxAmount

	s.Properties["phone"].Pattern = models.PhonePattern

	s.Properties["charge_type"].Enum = []any{string(models.ChargeTypeDirect), string(models.ChargeTypePincode)}

	s.Required = slices.DeleteFunc(s.Required, func(name string) bool {
		return name == "super" || name == "daemi"
	})

	return s, nil
}
