// Package docs registers the OpenAPI description served under /swagger.
package docs

import "github.com/swaggo/swag"

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
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/register": {"post": {"tags": ["auth"], "summary": "Create an account and its challenge profile", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}},
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Exchange credentials for a bearer token", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/profile": {
            "get": {"tags": ["profile"], "security": [{"BearerAuth": []}], "summary": "Profile with weight labels", "responses": {"200": {"description": "OK"}}},
            "patch": {"tags": ["profile"], "security": [{"BearerAuth": []}], "summary": "Partial profile update", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/challenge/status": {"get": {"tags": ["challenge"], "security": [{"BearerAuth": []}], "summary": "Challenge status of the caller", "responses": {"200": {"description": "OK"}}}},
        "/challenge/can-complete": {"get": {"tags": ["challenge"], "security": [{"BearerAuth": []}], "summary": "Whether today's tasks can be written", "responses": {"200": {"description": "OK"}}}},
        "/challenge/start": {"post": {"tags": ["challenge"], "security": [{"BearerAuth": []}], "summary": "Opt in to the seven-day challenge; day one is tomorrow", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/challenge/complete": {"post": {"tags": ["challenge"], "security": [{"BearerAuth": []}], "summary": "Close a finished challenge", "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}}},
        "/challenge/progress": {
            "get": {"tags": ["challenge"], "security": [{"BearerAuth": []}], "summary": "Seven-day progress grid", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["challenge"], "security": [{"BearerAuth": []}], "summary": "Save today's task flags", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/tasks/today": {"get": {"tags": ["tasks"], "security": [{"BearerAuth": []}], "summary": "Today's record", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/tasks": {"get": {"tags": ["tasks"], "security": [{"BearerAuth": []}], "summary": "Records between from and to (YYYY-MM-DD)", "responses": {"200": {"description": "OK"}}}},
        "/ranking": {"get": {"tags": ["ranking"], "security": [{"BearerAuth": []}], "summary": "Leaderboard with each user's challenge day", "responses": {"200": {"description": "OK"}}}},
        "/ranking/me": {"get": {"tags": ["ranking"], "security": [{"BearerAuth": []}], "summary": "Position of the caller", "responses": {"200": {"description": "OK"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Kanso Challenge API",
	Description:      "Seven-day fitness challenge: daily tasks, scores and ranking.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
