// Package docs holds the Swagger document served at /swagger/doc.json.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/orders": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "List orders",
                "parameters": [
                    {"type": "string", "description": "Customer filter", "name": "customerId", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"type": "array", "items": {"$ref": "#/definitions/converters.OrderResponse"}}
                    },
                    "400": {"description": "Malformed query", "schema": {"type": "string"}},
                    "500": {"description": "Orders could not be read", "schema": {"type": "string"}}
                }
            },
            "post": {
                "description": "Validates the customer and stock, then stores the order.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Create an order",
                "parameters": [
                    {
                        "description": "Order to create",
                        "name": "order",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/converters.CreateOrderRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/converters.OrderResponse"}},
                    "400": {"description": "Malformed body or invalid order", "schema": {"type": "string"}},
                    "404": {"description": "Customer not found", "schema": {"type": "string"}},
                    "412": {"description": "Product out of stock", "schema": {"type": "string"}},
                    "500": {"description": "Order could not be stored", "schema": {"type": "string"}},
                    "503": {"description": "Customer or inventory service unavailable", "schema": {"type": "string"}}
                }
            }
        },
        "/orders/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Get an order",
                "parameters": [
                    {"type": "string", "description": "Order id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/converters.OrderResponse"}},
                    "404": {"description": "order not found", "schema": {"type": "string"}}
                }
            }
        }
    },
    "definitions": {
        "converters.CreateOrderRequest": {
            "type": "object",
            "properties": {
                "customerId": {"type": "string", "example": "C-1"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/converters.OrderItemRequest"}}
            }
        },
        "converters.OrderItemRequest": {
            "type": "object",
            "properties": {
                "productId": {"type": "string", "example": "P-100"},
                "quantity": {"type": "integer", "example": 2},
                "unitPrice": {"type": "string", "example": "9.90"}
            }
        },
        "converters.OrderItemResponse": {
            "type": "object",
            "properties": {
                "productId": {"type": "string"},
                "quantity": {"type": "integer"},
                "subtotal": {"type": "string"},
                "unitPrice": {"type": "string"}
            }
        },
        "converters.OrderResponse": {
            "type": "object",
            "properties": {
                "customerId": {"type": "string"},
                "id": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/converters.OrderItemResponse"}},
                "orderedAt": {"type": "string"},
                "status": {"type": "string"},
                "totalAmount": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Orders API",
	Description:      "Validates and stores customer orders.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
