// Package docs holds the OpenAPI description served by the query service.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/query.Health"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/query.Health"}}
                }
            }
        },
        "/groups/{group_id}/leaderboard": {
            "get": {
                "description": "Ranks every member by the days they were the weak link, fewest first",
                "produces": ["application/json"],
                "tags": ["Leaderboard"],
                "summary": "Monthly leaderboard",
                "parameters": [
                    {"type": "string", "description": "Group id", "name": "group_id", "in": "path", "required": true},
                    {"type": "string", "description": "Month as YYYY-MM, defaults to the current month", "name": "month", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/query.LeaderboardResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/query.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/query.ErrorResponse"}}
                }
            }
        },
        "/groups/{group_id}/daily-stats": {
            "get": {
                "description": "Lists the weak link of every aggregated day in the range, both ends inclusive",
                "produces": ["application/json"],
                "tags": ["Leaderboard"],
                "summary": "Daily losers",
                "parameters": [
                    {"type": "string", "description": "Group id", "name": "group_id", "in": "path", "required": true},
                    {"type": "string", "description": "First date, YYYY-MM-DD", "name": "from", "in": "query", "required": true},
                    {"type": "string", "description": "Last date, YYYY-MM-DD", "name": "to", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/query.DailyStatsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/query.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/query.ErrorResponse"}}
                }
            }
        },
        "/groups/{group_id}/breaks": {
            "get": {
                "description": "Lists a group's breaks in [since, until), oldest first",
                "produces": ["application/json"],
                "tags": ["Breaks"],
                "summary": "Break events",
                "parameters": [
                    {"type": "string", "description": "Group id", "name": "group_id", "in": "path", "required": true},
                    {"type": "string", "description": "Only this member", "name": "user_id", "in": "query"},
                    {"type": "string", "description": "RFC3339 lower bound, inclusive", "name": "since", "in": "query"},
                    {"type": "string", "description": "RFC3339 upper bound, exclusive", "name": "until", "in": "query"},
                    {"type": "integer", "description": "Max events, default 100, max 1000", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/query.BreaksResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/query.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/query.ErrorResponse"}}
                }
            }
        },
        "/groups/{group_id}/break-counts": {
            "get": {
                "description": "Counts every member's breaks today or over the last seven days",
                "produces": ["application/json"],
                "tags": ["Breaks"],
                "summary": "Live break counts",
                "parameters": [
                    {"type": "string", "description": "Group id", "name": "group_id", "in": "path", "required": true},
                    {"type": "string", "default": "today", "description": "today | week", "name": "period", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/query.BreakCounts"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/query.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/query.ErrorResponse"}}
                }
            }
        },
        "/groups/{group_id}/tracked-apps": {
            "get": {
                "description": "Lists the apps that count as breaks for the group",
                "produces": ["application/json"],
                "tags": ["Tracked apps"],
                "summary": "Tracked apps",
                "parameters": [
                    {"type": "string", "description": "Group id", "name": "group_id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/query.TrackedAppsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/query.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/query.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Adds apps to the group's watch-list. Apps already tracked are ignored.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Tracked apps"],
                "summary": "Select tracked apps",
                "parameters": [
                    {"type": "string", "description": "Group id", "name": "group_id", "in": "path", "required": true},
                    {"description": "Selected apps", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/query.AddTrackedAppsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/query.AddTrackedAppsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/query.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/query.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "query.AddTrackedAppsRequest": {
            "type": "object",
            "properties": {
                "apps": {"type": "array", "items": {"$ref": "#/definitions/query.AppSelection"}}
            }
        },
        "query.AddTrackedAppsResponse": {
            "type": "object",
            "properties": {
                "added": {"type": "integer", "example": 2},
                "apps": {"type": "array", "items": {"$ref": "#/definitions/query.TrackedAppResponse"}}
            }
        },
        "query.AppSelection": {
            "type": "object",
            "properties": {
                "app_identifier": {"type": "string", "example": "com.instagram.android"},
                "app_name": {"type": "string", "example": "Instagram"},
                "platform": {"type": "string", "example": "android"}
            }
        },
        "query.BreakCount": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "user_id": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "query.BreakCounts": {
            "type": "object",
            "properties": {
                "counts": {"type": "array", "items": {"$ref": "#/definitions/query.BreakCount"}},
                "from": {"type": "string"},
                "period": {"type": "string"},
                "to": {"type": "string"}
            }
        },
        "query.BreakResponse": {
            "type": "object",
            "properties": {
                "app_identifier": {"type": "string", "example": "com.instagram.android"},
                "app_name": {"type": "string", "example": "Instagram"},
                "event_id": {"type": "string"},
                "timestamp": {"type": "string"},
                "user_id": {"type": "string"}
            }
        },
        "query.BreaksResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "events": {"type": "array", "items": {"$ref": "#/definitions/query.BreakResponse"}},
                "group_id": {"type": "string"}
            }
        },
        "query.DailyStatResponse": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "example": "2026-03-14"},
                "loser_count": {"type": "integer", "example": 3},
                "loser_user_id": {"type": "string"}
            }
        },
        "query.DailyStatsResponse": {
            "type": "object",
            "properties": {
                "from": {"type": "string", "example": "2026-03-01"},
                "group_id": {"type": "string"},
                "stats": {"type": "array", "items": {"$ref": "#/definitions/query.DailyStatResponse"}},
                "to": {"type": "string", "example": "2026-03-31"}
            }
        },
        "query.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "invalid_request"},
                "message": {"type": "string", "example": "month must be YYYY-MM"}
            }
        },
        "query.Health": {
            "type": "object",
            "properties": {
                "dependencies": {"type": "object", "additionalProperties": {"type": "string"}},
                "healthy": {"type": "boolean"}
            }
        },
        "query.LeaderboardEntryResponse": {
            "type": "object",
            "properties": {
                "losses_count": {"type": "integer", "example": 0},
                "perfect": {"type": "boolean"},
                "rank": {"type": "integer", "example": 1},
                "user_id": {"type": "string"},
                "username": {"type": "string", "example": "alice"},
                "weak_link": {"type": "boolean"}
            }
        },
        "query.LeaderboardResponse": {
            "type": "object",
            "properties": {
                "entries": {"type": "array", "items": {"$ref": "#/definitions/query.LeaderboardEntryResponse"}},
                "group_id": {"type": "string"},
                "month": {"type": "string", "example": "2026-03"}
            }
        },
        "query.TrackedAppResponse": {
            "type": "object",
            "properties": {
                "app_identifier": {"type": "string", "example": "com.instagram.android"},
                "app_name": {"type": "string", "example": "Instagram"},
                "platform": {"type": "string", "example": "android"}
            }
        },
        "query.TrackedAppsResponse": {
            "type": "object",
            "properties": {
                "apps": {"type": "array", "items": {"$ref": "#/definitions/query.TrackedAppResponse"}},
                "group_id": {"type": "string"}
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
	Title:            "weak-link query API",
	Description:      "Leaderboards, daily losers and break history for weak-link groups.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
