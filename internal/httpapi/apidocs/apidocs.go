// Package apidocs registers the lingod OpenAPI document with swag.
// Regenerate with `swag init -g cmd/lingod/docs.go -o internal/httpapi/apidocs`.
package apidocs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "lingod maintainers"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/translate": {
            "post": {
                "description": "Translates text with the session's translator. With stream=true the response is NDJSON PartialChunk lines.",
                "consumes": ["application/json"],
                "produces": ["application/json", "application/x-ndjson"],
                "tags": ["translate"],
                "summary": "Translate text",
                "parameters": [
                    {"description": "Translation request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.TranslateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.TranslateResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/summarize": {
            "post": {
                "description": "Summarizes text. With stream=true the response is NDJSON PartialChunk lines.",
                "consumes": ["application/json"],
                "produces": ["application/json", "application/x-ndjson"],
                "tags": ["summarize"],
                "summary": "Summarize text",
                "parameters": [
                    {"description": "Summarization request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.SummarizeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.SummarizeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/detect": {
            "post": {
                "description": "Detects the language of text and makes it the translator's source language.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["translate"],
                "summary": "Detect language",
                "parameters": [
                    {"description": "Detection request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/types.DetectRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.DetectResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/history/{feature}": {
            "get": {
                "description": "Returns the completed invocations of a feature, newest first.",
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Invocation history",
                "parameters": [
                    {"type": "string", "description": "translator or summarizer", "name": "feature", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.HistoryResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/session/{feature}": {
            "delete": {
                "description": "Retires the live instance of a feature; the next request creates a fresh one.",
                "tags": ["session"],
                "summary": "Reset a session",
                "parameters": [
                    {"type": "string", "description": "translator or summarizer", "name": "feature", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/status": {
            "get": {
                "description": "Per-feature state, download progress, availability and counters.",
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Session status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.StatusResponse"}}
                }
            }
        },
        "/languages": {
            "get": {
                "produces": ["application/json"],
                "tags": ["translate"],
                "summary": "Supported languages",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/types.Language"}}}
                }
            }
        }
    },
    "definitions": {
        "types.TranslateRequest": {
            "type": "object",
            "properties": {
                "text": {"type": "string", "example": "Hello, how are you?"},
                "source": {"type": "string", "example": "en"},
                "target": {"type": "string", "example": "es"},
                "stream": {"type": "boolean", "example": true}
            }
        },
        "types.TranslateResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "source": {"type": "string", "example": "en"},
                "target": {"type": "string", "example": "es"},
                "translation": {"type": "string"}
            }
        },
        "types.SummarizeRequest": {
            "type": "object",
            "properties": {
                "text": {"type": "string"},
                "type": {"type": "string", "example": "tl;dr"},
                "format": {"type": "string", "example": "plain-text"},
                "length": {"type": "string", "example": "medium"},
                "context": {"type": "string"},
                "stream": {"type": "boolean"}
            }
        },
        "types.SummarizeResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "type": {"type": "string"},
                "format": {"type": "string"},
                "length": {"type": "string"},
                "summary": {"type": "string"}
            }
        },
        "types.DetectRequest": {
            "type": "object",
            "properties": {
                "text": {"type": "string", "example": "Bonjour tout le monde"}
            }
        },
        "types.DetectResponse": {
            "type": "object",
            "properties": {
                "language": {"type": "string", "example": "fr"},
                "confidence": {"type": "number", "example": 0.97}
            }
        },
        "types.HistoryEntry": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "config": {"type": "object", "additionalProperties": {"type": "string"}},
                "input": {"type": "string"},
                "output": {"type": "string"},
                "completed_at_ms": {"type": "integer"}
            }
        },
        "types.HistoryResponse": {
            "type": "object",
            "properties": {
                "feature": {"type": "string", "example": "translator"},
                "entries": {"type": "array", "items": {"$ref": "#/definitions/types.HistoryEntry"}}
            }
        },
        "types.FeatureStatus": {
            "type": "object",
            "properties": {
                "feature": {"type": "string"},
                "state": {"type": "string", "example": "ready"},
                "config": {"type": "object", "additionalProperties": {"type": "string"}},
                "download_active": {"type": "boolean"},
                "download_percent": {"type": "number"},
                "model_ready": {"type": "boolean"},
                "availability": {"type": "string", "example": "readily"},
                "busy": {"type": "boolean"},
                "history_len": {"type": "integer"},
                "creations_total": {"type": "integer"},
                "invocations_total": {"type": "integer"},
                "closed": {"type": "boolean"},
                "last_error": {"type": "string"}
            }
        },
        "types.StatusResponse": {
            "type": "object",
            "properties": {
                "features": {"type": "array", "items": {"$ref": "#/definitions/types.FeatureStatus"}},
                "detector_available": {"type": "boolean"},
                "uptime_seconds": {"type": "integer"},
                "server_time_unix": {"type": "integer"}
            }
        },
        "types.Language": {
            "type": "object",
            "properties": {
                "tag": {"type": "string", "example": "fr"},
                "name": {"type": "string", "example": "French"}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "invalid JSON body"},
                "code": {"type": "integer", "example": 400}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "lingod API",
	Description:      "HTTP API for on-device translation, summarization and language detection sessions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
