// Package docs registers the OpenAPI description served under /swagger.
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
        "/auth": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Get the caller's profile",
                "responses": {
                    "200": {"description": "Profile"},
                    "401": {"description": "Unauthorized"}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register or log in (action=register|login)",
                "parameters": [
                    {"type": "string", "name": "action", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "Logged in"},
                    "201": {"description": "Registered"},
                    "400": {"description": "Invalid input or unknown action"},
                    "401": {"description": "Invalid credentials"},
                    "409": {"description": "Username or email taken"},
                    "429": {"description": "Too many login attempts"}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Update the profile or the theme",
                "responses": {
                    "200": {"description": "Updated"},
                    "400": {"description": "Invalid input"},
                    "401": {"description": "Unauthorized"},
                    "409": {"description": "Username or email taken"}
                }
            }
        },
        "/tasks": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "List tasks",
                "parameters": [
                    {"type": "string", "name": "subject", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Tasks"},
                    "401": {"description": "Unauthorized"}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "Create a task",
                "responses": {
                    "201": {"description": "Task created"},
                    "400": {"description": "Invalid input"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/tasks/{id}": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "Update a task or toggle its status",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Task updated"},
                    "400": {"description": "Invalid input"},
                    "401": {"description": "Unauthorized"},
                    "404": {"description": "Task not found"}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["tasks"],
                "summary": "Delete a task",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "Task deleted"},
                    "401": {"description": "Unauthorized"},
                    "404": {"description": "Task not found"}
                }
            }
        },
        "/tasks/stats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "Task statistics",
                "responses": {"200": {"description": "Counters"}}
            }
        },
        "/tasks/subjects": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "Subject progress",
                "responses": {"200": {"description": "Subjects"}}
            }
        },
        "/tasks/deadlines": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["tasks"],
                "summary": "Upcoming deadlines",
                "parameters": [
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Deadlines"},
                    "400": {"description": "Invalid limit"}
                }
            }
        },
        "/budget": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["budget"],
                "summary": "List expenses or summarise a month",
                "parameters": [
                    {"type": "string", "name": "action", "in": "query"},
                    {"type": "string", "name": "month", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Expenses or summary"},
                    "400": {"description": "Invalid month or unknown action"}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["budget"],
                "summary": "Add an expense",
                "responses": {
                    "201": {"description": "Expense added"},
                    "400": {"description": "Invalid input"}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["budget"],
                "summary": "Set the monthly allowance",
                "parameters": [
                    {"type": "string", "name": "action", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "Allowance updated"},
                    "400": {"description": "Invalid input or unknown action"}
                }
            }
        },
        "/budget/{id}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["budget"],
                "summary": "Delete an expense",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "Expense deleted"},
                    "404": {"description": "Expense not found"}
                }
            }
        },
        "/activity": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["activity"],
                "summary": "Activity feed",
                "parameters": [
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Activity page"},
                    "400": {"description": "Invalid paging"}
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the session token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "StudyMate API",
	Description:      "StudyMate keeps a student's assignments and pocket money in one place.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
