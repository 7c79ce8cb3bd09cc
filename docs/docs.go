// Package docs registers the portal gateway OpenAPI document with swag so
// echo-swagger can serve it at /swagger/index.html.
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
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Log in",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/handler.loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ports.LoginResult"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ports.LoginResult"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {"tags": ["auth"], "summary": "Log out", "responses": {"303": {"description": "See Other"}}}
        },
        "/auth/refresh": {
            "post": {
                "tags": ["auth"],
                "summary": "Refresh the session",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/auth/session": {
            "get": {
                "tags": ["auth"],
                "summary": "Current session",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}}}
            }
        },
        "/api/navigation": {
            "get": {
                "tags": ["navigation"],
                "summary": "Navigation for the current session",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "in": "query", "name": "path", "description": "Current route"}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/api/navigation/access/{dashboard}": {
            "get": {
                "tags": ["navigation"],
                "summary": "Check dashboard access",
                "parameters": [{"type": "string", "in": "path", "name": "dashboard", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/home": {
            "get": {"tags": ["navigation"], "summary": "Redirect to the landing dashboard", "responses": {"302": {"description": "Found"}}}
        },
        "/api/dashboard/summary": {
            "get": {"tags": ["navigation"], "summary": "Landing dashboard summary", "responses": {"200": {"description": "OK"}}}
        },
        "/api/records": {
            "get": {"tags": ["records"], "summary": "List renderable resources", "responses": {"200": {"description": "OK"}}}
        },
        "/api/records/{resource}": {
            "get": {
                "tags": ["records"],
                "summary": "Rendered page of a backend resource",
                "parameters": [
                    {"type": "string", "in": "path", "name": "resource", "required": true},
                    {"type": "integer", "in": "query", "name": "page"},
                    {"type": "integer", "in": "query", "name": "size"}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "502": {"description": "Bad Gateway"}}
            }
        },
        "/api/analytics/summary": {
            "get": {"tags": ["records"], "summary": "Analytics summary", "responses": {"200": {"description": "OK"}}}
        },
        "/api/notifications": {
            "get": {"tags": ["notifications"], "summary": "List the caller's notifications", "responses": {"200": {"description": "OK"}}}
        },
        "/api/notifications/unread-count": {
            "get": {"tags": ["notifications"], "summary": "Unread notification count", "responses": {"200": {"description": "OK"}}}
        },
        "/api/notifications/{id}/read": {
            "put": {
                "tags": ["notifications"],
                "summary": "Mark one notification as read",
                "parameters": [{"type": "string", "in": "path", "name": "id", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/api/notifications/read-all": {
            "put": {"tags": ["notifications"], "summary": "Mark every notification as read", "responses": {"204": {"description": "No Content"}}}
        },
        "/api/notifications/stream": {
            "get": {"tags": ["notifications"], "summary": "Stream the unread notification count", "produces": ["text/event-stream"], "responses": {"200": {"description": "OK"}}}
        },
        "/api/case/create": {
            "post": {"tags": ["cases"], "summary": "Create a case", "responses": {"201": {"description": "Created"}, "502": {"description": "Bad Gateway"}}}
        },
        "/api/admin/field-masking/interface/{role}": {
            "get": {
                "tags": ["field-masking"],
                "summary": "Field masking rules for a role",
                "parameters": [{"type": "string", "in": "path", "name": "role", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}
            }
        },
        "/api/admin/field-masking/rules": {
            "post": {"tags": ["field-masking"], "summary": "Update field masking rules", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/api/scheduler/jobs": {
            "get": {"tags": ["scheduler"], "summary": "List scheduler jobs", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["scheduler"], "summary": "Create a scheduler job", "responses": {"201": {"description": "Created"}}}
        },
        "/api/scheduler/jobs/{id}": {
            "get": {
                "tags": ["scheduler"],
                "summary": "Get a scheduler job",
                "parameters": [{"type": "integer", "in": "path", "name": "id", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/scheduler/jobs/{id}/{action}": {
            "post": {
                "tags": ["scheduler"],
                "summary": "Apply a lifecycle action to a job",
                "parameters": [
                    {"type": "integer", "in": "path", "name": "id", "required": true},
                    {"type": "string", "in": "path", "name": "action", "required": true, "enum": ["hold", "ice", "resume", "enable", "disable"]}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/scheduler/trigger/{id}": {
            "post": {
                "tags": ["scheduler"],
                "summary": "Trigger a job run",
                "parameters": [{"type": "integer", "in": "path", "name": "id", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/scheduler/trigger/status/{triggerId}/stream": {
            "get": {
                "tags": ["scheduler"],
                "summary": "Stream a triggered execution's status",
                "produces": ["text/event-stream"],
                "parameters": [{"type": "string", "in": "path", "name": "triggerId", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "definitions": {
        "api.errorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "redirect": {"type": "string"}
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handler.sessionResponse": {
            "type": "object",
            "properties": {
                "state": {"type": "string"},
                "role": {"type": "string"},
                "redirectUrl": {"type": "string"},
                "expiresAt": {"type": "string"},
                "user": {"$ref": "#/definitions/domain.User"}
            }
        },
        "ports.LoginResult": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "error": {"type": "string"},
                "role": {"type": "string"},
                "redirectUrl": {"type": "string"},
                "user": {"$ref": "#/definitions/domain.User"}
            }
        },
        "domain.User": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "roles": {"type": "array", "items": {"type": "string"}},
                "role": {"type": "string"},
                "userId": {"type": "string"},
                "county": {"type": "string"},
                "tokenExpiry": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Portal Gateway API",
	Description:      "Session, navigation and backend relay gateway for the case management portal.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
