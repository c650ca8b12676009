// Package docs is generated by swag. Hand-maintained here to describe the
// admin HTTP surface only, the gRPC service has no REST/swagger surface.
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
        "/healthz": {
            "get": {
                "description": "Returns 200 once the aggregator has published its first merged snapshot.",
                "produces": ["text/plain"],
                "summary": "Liveness and readiness probe",
                "responses": {
                    "200": {"description": "ready"},
                    "503": {"description": "not ready yet"}
                }
            }
        },
        "/metrics": {
            "get": {
                "description": "Prometheus exposition format.",
                "produces": ["text/plain"],
                "summary": "Prometheus metrics",
                "responses": {
                    "200": {"description": "metrics"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "",
	Schemes:          []string{},
	Title:            "obagg admin API",
	Description:      "Health and metrics endpoints for the order book aggregator. The gRPC BookSummary service has no REST surface.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
