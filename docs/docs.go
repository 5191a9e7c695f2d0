// Package docs registers the OpenAPI document served at /swagger/*.
// Regenerate with `swag init -g cmd/server/main.go` after changing handler
// annotations.
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
        "/health": {"get": {"tags": ["health"], "summary": "Liveness", "responses": {"200": {"description": "OK"}}}},
        "/health/ready": {"get": {"tags": ["health"], "summary": "Readiness", "responses": {"200": {"description": "OK"}, "503": {"description": "Local store unusable"}}}},
        "/v1/connectivity": {"get": {"tags": ["connectivity"], "summary": "Connectivity status", "responses": {"200": {"description": "OK"}}}},
        "/v1/connectivity/probe": {"post": {"tags": ["connectivity"], "summary": "Probe the backend now", "responses": {"200": {"description": "OK"}}}},
        "/v1/connectivity/offline-mode": {"put": {"tags": ["connectivity"], "summary": "Set offline mode", "responses": {"200": {"description": "OK"}, "422": {"description": "Invalid body"}}}},
        "/v1/events": {"get": {"tags": ["events"], "summary": "Subscribe to state changes", "produces": ["text/event-stream"], "responses": {"200": {"description": "Event stream"}}}},
        "/v1/auth/sign-in": {"post": {"tags": ["auth"], "summary": "Sign in", "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid credentials"}}}},
        "/v1/auth/sign-up": {"post": {"tags": ["auth"], "summary": "Sign up", "responses": {"201": {"description": "Created"}, "409": {"description": "Email taken"}}}},
        "/v1/auth/federated": {"post": {"tags": ["auth"], "summary": "Federated sign in", "responses": {"200": {"description": "OK"}}}},
        "/v1/auth/sign-out": {"post": {"tags": ["auth"], "summary": "Sign out", "responses": {"204": {"description": "No Content"}}}},
        "/v1/auth/password-reset": {"post": {"tags": ["auth"], "summary": "Request a password reset", "responses": {"202": {"description": "Accepted"}}}},
        "/v1/auth/resend-confirmation": {"post": {"tags": ["auth"], "summary": "Resend sign-up confirmation", "responses": {"202": {"description": "Accepted"}}}},
        "/v1/me": {
            "get": {"tags": ["auth"], "summary": "Current account", "responses": {"200": {"description": "OK"}, "401": {"description": "Not signed in"}}},
            "patch": {"tags": ["auth"], "summary": "Update profile", "responses": {"200": {"description": "OK"}}}
        },
        "/v1/accounts": {"get": {"tags": ["accounts"], "summary": "List accounts", "responses": {"200": {"description": "OK"}}}},
        "/v1/accounts/{id}": {"get": {"tags": ["accounts"], "summary": "Get an account", "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}},
        "/v1/accounts/{id}/endorsements": {
            "get": {"tags": ["accounts"], "summary": "List endorsements", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["accounts"], "summary": "Endorse an account", "responses": {"201": {"description": "Created"}}}
        },
        "/v1/listings": {
            "get": {"tags": ["listings"], "summary": "List listings", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["listings"], "summary": "Create a listing", "responses": {"201": {"description": "Created"}, "403": {"description": "Clients only"}}}
        },
        "/v1/listings/{id}": {"get": {"tags": ["listings"], "summary": "Get a listing", "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}},
        "/v1/listings/{id}/status": {"patch": {"tags": ["listings"], "summary": "Change listing status", "responses": {"200": {"description": "OK"}}}},
        "/v1/listings/{id}/offers": {
            "get": {"tags": ["offers"], "summary": "List offers for a listing", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["offers"], "summary": "Make an offer", "responses": {"201": {"description": "Created"}, "403": {"description": "Freelancers only"}}}
        },
        "/v1/offers/{id}/status": {"patch": {"tags": ["offers"], "summary": "Change offer status", "responses": {"200": {"description": "OK"}}}},
        "/v1/maintenance/clear-local-data": {"post": {"tags": ["maintenance"], "summary": "Clear local data", "responses": {"204": {"description": "No Content"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "PulseConnect Hybrid Client API",
	Description:      "Local companion API over the hybrid auth and data services. Every call is served by the remote backend when it is reachable and by the local store otherwise.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
