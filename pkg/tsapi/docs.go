package tsapi

import "github.com/swaggo/swag"

// SwaggerInfo holds exported Swagger metadata, the same shape `swag init`
// generates into a docs package. It is hand-written here rather than
// codegen'd, since generating it requires running the swag CLI.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:9200",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "TokenStream Record API",
	Description:      "REST transport for storing and retrieving TokenStream-encoded records.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/records/{name}": {
            "put": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["records"],
                "summary": "Store a record",
                "parameters": [{"name": "name", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            },
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["records"],
                "summary": "Read a record as JSON",
                "parameters": [{"name": "name", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/records/{name}/raw": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "tags": ["records"],
                "summary": "Stream the raw TokenStream bytes of a record",
                "parameters": [{"name": "name", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "type": "apiKey",
            "name": "X-API-Key",
            "in": "header"
        }
    }
}`

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
