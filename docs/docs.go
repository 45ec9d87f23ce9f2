// Package docs registers the OpenAPI document served at /swagger.
// Regenerate with: swag init -g cmd/server/main.go -o docs --v3.1
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "openapi": "3.1.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
        },
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "servers": [
        {
            "url": "{{.Host}}{{.BasePath}}"
        }
    ],
    "tags": [
        {"name": "bill-payments", "description": "Vendor bill payment allocation, validation and lifecycle"},
        {"name": "system", "description": "Service health and build information"}
    ],
    "paths": {
        "/vendors/{id}/outstanding-bills": {
            "get": {
                "tags": ["bill-payments"],
                "summary": "List a vendor's outstanding bills",
                "parameters": [
                    {"$ref": "#/components/parameters/TenantHeader"},
                    {"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}
                ],
                "responses": {
                    "200": {"$ref": "#/components/responses/Success"},
                    "400": {"$ref": "#/components/responses/Error"},
                    "404": {"$ref": "#/components/responses/Error"}
                }
            }
        },
        "/vendors/{id}/bill-payments": {
            "get": {
                "tags": ["bill-payments"],
                "summary": "List a vendor's recent payments",
                "parameters": [
                    {"$ref": "#/components/parameters/TenantHeader"},
                    {"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}
                ],
                "responses": {
                    "200": {"$ref": "#/components/responses/Success"},
                    "404": {"$ref": "#/components/responses/Error"}
                }
            }
        },
        "/bill-payments/allocate": {
            "post": {
                "tags": ["bill-payments"],
                "summary": "Apply one allocation step to a draft",
                "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/AllocateRequest"}}}},
                "responses": {
                    "200": {"$ref": "#/components/responses/Success"},
                    "400": {"$ref": "#/components/responses/Error"}
                }
            }
        },
        "/bill-payments/validate": {
            "post": {
                "tags": ["bill-payments"],
                "summary": "Validate a payment draft",
                "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/SubmitBillPaymentRequest"}}}},
                "responses": {
                    "200": {"$ref": "#/components/responses/Success"},
                    "400": {"$ref": "#/components/responses/Error"}
                }
            }
        },
        "/bill-payments": {
            "get": {
                "tags": ["bill-payments"],
                "summary": "List bill payments",
                "parameters": [
                    {"$ref": "#/components/parameters/TenantHeader"},
                    {"name": "vendor_id", "in": "query", "schema": {"type": "string", "format": "uuid"}},
                    {"name": "payment_method", "in": "query", "schema": {"type": "string", "enum": ["check", "ach", "wire", "credit_card", "cash", "other"]}},
                    {"name": "status", "in": "query", "schema": {"type": "string", "enum": ["pending", "cleared", "void"]}},
                    {"name": "start_date", "in": "query", "schema": {"type": "string", "format": "date"}},
                    {"name": "end_date", "in": "query", "schema": {"type": "string", "format": "date"}},
                    {"name": "search", "in": "query", "schema": {"type": "string"}},
                    {"name": "page", "in": "query", "schema": {"type": "integer", "default": 1}},
                    {"name": "page_size", "in": "query", "schema": {"type": "integer", "default": 50, "maximum": 100}}
                ],
                "responses": {
                    "200": {"$ref": "#/components/responses/Success"},
                    "400": {"$ref": "#/components/responses/Error"}
                }
            },
            "post": {
                "tags": ["bill-payments"],
                "summary": "Record a bill payment",
                "parameters": [
                    {"$ref": "#/components/parameters/TenantHeader"},
                    {"$ref": "#/components/parameters/UserHeader"},
                    {"name": "Idempotency-Key", "in": "header", "schema": {"type": "string"}}
                ],
                "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/SubmitBillPaymentRequest"}}}},
                "responses": {
                    "201": {"$ref": "#/components/responses/Success"},
                    "400": {"$ref": "#/components/responses/Error"},
                    "409": {"$ref": "#/components/responses/Error"},
                    "422": {"$ref": "#/components/responses/Error"}
                }
            }
        },
        "/bill-payments/{id}": {
            "get": {
                "tags": ["bill-payments"],
                "summary": "Get a bill payment",
                "parameters": [{"$ref": "#/components/parameters/TenantHeader"}, {"$ref": "#/components/parameters/PaymentID"}],
                "responses": {"200": {"$ref": "#/components/responses/Success"}, "404": {"$ref": "#/components/responses/Error"}}
            },
            "put": {
                "tags": ["bill-payments"],
                "summary": "Update a payment header",
                "parameters": [{"$ref": "#/components/parameters/TenantHeader"}, {"$ref": "#/components/parameters/PaymentID"}],
                "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/UpdateBillPaymentRequest"}}}},
                "responses": {"200": {"$ref": "#/components/responses/Success"}, "409": {"$ref": "#/components/responses/Error"}, "422": {"$ref": "#/components/responses/Error"}}
            },
            "delete": {
                "tags": ["bill-payments"],
                "summary": "Delete a voided payment",
                "parameters": [{"$ref": "#/components/parameters/TenantHeader"}, {"$ref": "#/components/parameters/PaymentID"}],
                "responses": {"204": {"description": "Deleted"}, "422": {"$ref": "#/components/responses/Error"}}
            }
        },
        "/bill-payments/{id}/void": {
            "post": {
                "tags": ["bill-payments"],
                "summary": "Void a bill payment",
                "parameters": [{"$ref": "#/components/parameters/TenantHeader"}, {"$ref": "#/components/parameters/UserHeader"}, {"$ref": "#/components/parameters/PaymentID"}],
                "requestBody": {"required": true, "content": {"application/json": {"schema": {"type": "object", "properties": {"reason": {"type": "string"}}}}}},
                "responses": {"200": {"$ref": "#/components/responses/Success"}, "400": {"$ref": "#/components/responses/Error"}, "422": {"$ref": "#/components/responses/Error"}}
            }
        },
        "/bill-payments/{id}/clear": {
            "post": {
                "tags": ["bill-payments"],
                "summary": "Mark a payment as cleared by the bank",
                "parameters": [{"$ref": "#/components/parameters/TenantHeader"}, {"$ref": "#/components/parameters/PaymentID"}],
                "responses": {"200": {"$ref": "#/components/responses/Success"}, "422": {"$ref": "#/components/responses/Error"}}
            }
        },
        "/bill-payments/{id}/check": {
            "get": {
                "tags": ["bill-payments"],
                "summary": "Get printable check data",
                "parameters": [{"$ref": "#/components/parameters/TenantHeader"}, {"$ref": "#/components/parameters/PaymentID"}],
                "responses": {"200": {"$ref": "#/components/responses/Success"}, "422": {"$ref": "#/components/responses/Error"}}
            }
        },
        "/system/info": {
            "get": {
                "tags": ["system"],
                "summary": "Service name and version",
                "responses": {"200": {"$ref": "#/components/responses/Success"}}
            }
        }
    },
    "components": {
        "parameters": {
            "TenantHeader": {"name": "X-Tenant-ID", "in": "header", "schema": {"type": "string", "format": "uuid"}},
            "UserHeader": {"name": "X-User-ID", "in": "header", "schema": {"type": "string", "format": "uuid"}},
            "PaymentID": {"name": "id", "in": "path", "required": true, "schema": {"type": "string", "format": "uuid"}}
        },
        "responses": {
            "Success": {"description": "OK", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Response"}}}},
            "Error": {"description": "Error", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Response"}}}}
        },
        "schemas": {
            "Response": {
                "type": "object",
                "properties": {
                    "success": {"type": "boolean"},
                    "data": {},
                    "error": {"$ref": "#/components/schemas/ErrorInfo"},
                    "meta": {"$ref": "#/components/schemas/Meta"}
                }
            },
            "ErrorInfo": {
                "type": "object",
                "properties": {
                    "code": {"type": "string", "example": "ERR_BUSINESS_RULE"},
                    "message": {"type": "string"},
                    "reason": {"type": "string", "example": "EXCEEDS_BALANCE"},
                    "request_id": {"type": "string"},
                    "details": {"type": "array", "items": {"type": "object", "properties": {"field": {"type": "string"}, "message": {"type": "string"}}}}
                }
            },
            "Meta": {
                "type": "object",
                "properties": {
                    "total": {"type": "integer"},
                    "page": {"type": "integer"},
                    "page_size": {"type": "integer"},
                    "total_pages": {"type": "integer"}
                }
            },
            "ApplicationInput": {
                "type": "object",
                "properties": {
                    "bill_id": {"type": "string", "format": "uuid"},
                    "amount_applied": {"type": "number", "example": 125.5}
                }
            },
            "SubmitBillPaymentRequest": {
                "type": "object",
                "properties": {
                    "vendor_id": {"type": "string", "format": "uuid"},
                    "payment_date": {"type": "string", "format": "date", "example": "2026-03-15"},
                    "payment_method": {"type": "string", "enum": ["check", "ach", "wire", "credit_card", "cash", "other"]},
                    "reference_number": {"type": "string", "maxLength": 100},
                    "payment_amount": {"type": "number", "example": 1250},
                    "paid_from_account_id": {"type": "string", "format": "uuid"},
                    "memo": {"type": "string", "maxLength": 1000},
                    "applications": {"type": "array", "items": {"$ref": "#/components/schemas/ApplicationInput"}}
                }
            },
            "UpdateBillPaymentRequest": {
                "type": "object",
                "properties": {
                    "payment_date": {"type": "string", "format": "date"},
                    "payment_method": {"type": "string"},
                    "reference_number": {"type": "string"},
                    "memo": {"type": "string"}
                }
            },
            "AllocateRequest": {
                "type": "object",
                "required": ["action"],
                "properties": {
                    "action": {"type": "string", "enum": ["toggle", "set_amount", "reset", "totals"]},
                    "payment_amount": {"type": "number"},
                    "bills": {"type": "array", "items": {"type": "object"}},
                    "applications": {"type": "array", "items": {"$ref": "#/components/schemas/ApplicationInput"}},
                    "bill_id": {"type": "string", "format": "uuid"},
                    "amount": {"type": "string", "example": "125.50"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Bill Payment API",
	Description:      "Vendor bill payment allocation, validation and lifecycle",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
