// Package docs registers the OpenAPI description served by gin-swagger at
// /swagger/index.html when SWAGGER_ENABLED is set. The annotations live on
// the handlers in internal/http/handlers; regenerate with `swag init -g
// cmd/server/main.go` after changing them.
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
        "/signup": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Register a profile",
                "operationId": "signUp",
                "parameters": [
                    {"type": "string", "description": "Client retry key", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Sign-up payload", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SignUpRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handlers.SignUpResponse"}},
                    "400": {"description": "Missing fields or email already registered", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "422": {"description": "Idempotency-Key reused with a different request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/signin": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Authenticate a profile",
                "operationId": "signIn",
                "parameters": [
                    {"description": "Sign-in payload", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SignInRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SignInResponse"}},
                    "400": {"description": "Missing fields", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/dashboard/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Dashboard"],
                "summary": "Unified farm dashboard",
                "operationId": "getDashboard",
                "parameters": [{"type": "string", "description": "Profile id (UUID or legacy id)", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.DashboardResponse"}},
                    "404": {"description": "Unknown profile", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/weather-forecast/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["TimeSeries"],
                "summary": "Weather forecast",
                "operationId": "getWeatherForecast",
                "parameters": [
                    {"type": "string", "description": "Profile id", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "default": 7, "description": "Number of days (1..7)", "name": "days", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handlers.ForecastDay"}}},
                    "404": {"description": "Unknown profile", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/soil-conditions/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["TimeSeries"],
                "summary": "Soil conditions",
                "operationId": "getSoilConditions",
                "parameters": [{"type": "string", "description": "Profile id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.SoilResponse"}},
                    "404": {"description": "Unknown profile", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/ai-recommendations/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Recommendations"],
                "summary": "AI recommendations",
                "operationId": "getRecommendations",
                "parameters": [{"type": "string", "description": "Profile id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.RecommendationsResponse"}},
                    "404": {"description": "Unknown profile", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/farm-location/{id}": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Farm"],
                "summary": "Set farm coordinates",
                "operationId": "updateFarmLocation",
                "parameters": [
                    {"type": "string", "description": "Profile id", "name": "id", "in": "path", "required": true},
                    {"description": "Farm location", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.FarmLocationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ProfileResponse"}},
                    "400": {"description": "Invalid coordinates or legacy profile", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Unknown profile", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/nasa-refresh/{id}": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Farm"],
                "summary": "Refresh NASA data",
                "operationId": "refreshNasaData",
                "parameters": [{"type": "string", "description": "Profile id", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/handlers.RefreshResponse"}},
                    "404": {"description": "Unknown profile", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "code": {"type": "string", "example": "not_found"},
                "error": {"type": "string", "example": "User not found"}
            }
        },
        "handlers.SignUpRequest": {
            "type": "object",
            "properties": {
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "handlers.SignInRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "handlers.UserResponse": {
            "type": "object",
            "properties": {
                "userId": {"type": "string"},
                "id": {"type": "string"},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "handlers.SignUpResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "User created successfully"},
                "userId": {"type": "string"},
                "id": {"type": "string"},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "handlers.SignInResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Login successful"},
                "user": {"$ref": "#/definitions/handlers.UserResponse"}
            }
        },
        "handlers.MarketResponse": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "distance": {"type": "string", "example": "12km"}
            }
        },
        "handlers.DashboardResponse": {
            "type": "object",
            "properties": {
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "creditPoints": {"type": "integer", "example": 1247},
                "currentRank": {"type": "string", "example": "Gold"},
                "farmHealth": {"type": "number", "example": 85},
                "activeNeighbors": {"type": "integer"},
                "nearestMarket": {"$ref": "#/definitions/handlers.MarketResponse"}
            }
        },
        "handlers.ForecastDay": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "example": "2026-03-10"},
                "high": {"type": "number"},
                "low": {"type": "number"},
                "condition": {"type": "string"},
                "humidity": {"type": "number"},
                "rainChance": {"type": "number"}
            }
        },
        "handlers.SoilResponse": {
            "type": "object",
            "properties": {
                "moisture": {"type": "number", "example": 78},
                "nitrogen": {"type": "number", "example": 65},
                "ph": {"type": "number", "example": 6.5},
                "temperature": {"type": "number", "example": 22}
            }
        },
        "handlers.RecommendationItem": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "priority": {"type": "string", "example": "High"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "type": {"type": "string"}
            }
        },
        "handlers.RecommendationsResponse": {
            "type": "object",
            "properties": {
                "recommendations": {"type": "array", "items": {"$ref": "#/definitions/handlers.RecommendationItem"}}
            }
        },
        "handlers.FarmLocationRequest": {
            "type": "object",
            "properties": {
                "farmName": {"type": "string"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "sizeHectares": {"type": "number"}
            }
        },
        "handlers.ProfileResponse": {
            "type": "object",
            "properties": {
                "userId": {"type": "string"},
                "id": {"type": "string"},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "email": {"type": "string"},
                "farmName": {"type": "string"},
                "farmLatitude": {"type": "number"},
                "farmLongitude": {"type": "number"},
                "farmSizeHectares": {"type": "number"}
            }
        },
        "handlers.RefreshResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "accepted"}
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
	Title:            "Farm Dashboard API",
	Description:      "Farm dashboard backend reconciling current and legacy profiles, with lazy backfill of weather, soil and recommendations.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
