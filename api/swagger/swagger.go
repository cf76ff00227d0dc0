package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Sortie Core API",
        "description": "Flight-training scheduling core: feasibility checks, objective scoring and disruption replanning",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Feasibility", "description": "Constraint checks for candidate sorties"},
        {"name": "Scoring", "description": "Objective scoring of candidate sorties"},
        {"name": "Assignments", "description": "Sortie lifecycle"},
        {"name": "Disruptions", "description": "Disruption reporting and replanning"},
        {"name": "Alternatives", "description": "Human resolution of generated alternatives"},
        {"name": "Environment", "description": "Weather/NOTAM/traffic snapshot feed"},
        {"name": "Export", "description": "Day-board exports"}
    ],
    "paths": {
        "/feasibility/check": {
            "post": {
                "tags": ["Feasibility"],
                "summary": "Check feasibility of a candidate sortie",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SortieCandidate"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Required data unavailable"}
                }
            }
        },
        "/scoring/score": {
            "post": {
                "tags": ["Scoring"],
                "summary": "Score a candidate sortie",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScoreRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List assignments",
                "parameters": [
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "instructorId", "in": "query", "type": "string"},
                    {"name": "aircraftId", "in": "query", "type": "string"},
                    {"name": "airport", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Assignments"],
                "summary": "Propose a new sortie",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAssignmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Candidate not feasible"}
                }
            }
        },
        "/assignments/{id}": {
            "get": {
                "tags": ["Assignments"],
                "summary": "Get assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments/{id}/confirm": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Confirm a proposed or pending sortie",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Illegal transition"}
                }
            }
        },
        "/assignments/{id}/cancel": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Cancel a sortie",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Illegal transition"}
                }
            }
        },
        "/assignments/{id}/complete": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Complete a flown sortie",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Illegal transition"}
                }
            }
        },
        "/assignments/{id}/alternatives": {
            "get": {
                "tags": ["Alternatives"],
                "summary": "List alternatives for an assignment, best score first",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/alternatives/{id}/accept": {
            "post": {
                "tags": ["Alternatives"],
                "summary": "Accept an alternative and confirm its assignment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Alternative already resolved"}
                }
            }
        },
        "/alternatives/{id}/reject": {
            "post": {
                "tags": ["Alternatives"],
                "summary": "Reject an alternative",
                "description": "Rejecting the last pending alternative cancels the parked assignment.",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/disruptions": {
            "post": {
                "tags": ["Disruptions"],
                "summary": "Report a disruption and trigger replanning",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DisruptionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/environment": {
            "get": {
                "tags": ["Environment"],
                "summary": "Get the current environment snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "No snapshot available"}
                }
            },
            "put": {
                "tags": ["Environment"],
                "summary": "Replace the environment snapshot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SnapshotPayload"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/export/dayboard": {
            "post": {
                "tags": ["Export"],
                "summary": "Export the sortie board for one day",
                "parameters": [
                    {"name": "date", "in": "query", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Export"],
                "summary": "Download a generated export",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "401": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "SortieCandidate": {
            "type": "object",
            "properties": {
                "studentId": {"type": "string"},
                "instructorId": {"type": "string"},
                "aircraftId": {"type": "string"},
                "lessonId": {"type": "string"},
                "airport": {"type": "string"},
                "startAt": {"type": "string", "format": "date-time"},
                "endAt": {"type": "string", "format": "date-time"}
            },
            "required": ["studentId", "airport", "startAt", "endAt"]
        },
        "ScoreRequest": {
            "type": "object",
            "properties": {
                "candidate": {"$ref": "#/definitions/SortieCandidate"},
                "weights": {"$ref": "#/definitions/ObjectiveWeights"}
            },
            "required": ["candidate"]
        },
        "ObjectiveWeights": {
            "type": "object",
            "properties": {
                "weatherFit": {"type": "number"},
                "instructorBalance": {"type": "number"},
                "travel": {"type": "number"},
                "aircraftUtilization": {"type": "number"},
                "studentContinuity": {"type": "number"},
                "cancellationRisk": {"type": "number"}
            }
        },
        "CreateAssignmentRequest": {
            "type": "object",
            "properties": {
                "studentId": {"type": "string"},
                "instructorId": {"type": "string"},
                "aircraftId": {"type": "string"},
                "lessonId": {"type": "string"},
                "airport": {"type": "string"},
                "startAt": {"type": "string", "format": "date-time"},
                "endAt": {"type": "string", "format": "date-time"}
            },
            "required": ["studentId", "instructorId", "aircraftId", "lessonId", "airport", "startAt", "endAt"]
        },
        "DisruptionRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "enum": ["weather", "notam", "availability", "aircraft"]},
                "entityId": {"type": "string"},
                "airport": {"type": "string"},
                "windowStart": {"type": "string", "format": "date-time"},
                "windowEnd": {"type": "string", "format": "date-time"},
                "payload": {"type": "object"}
            },
            "required": ["type"]
        },
        "SnapshotPayload": {
            "type": "object",
            "properties": {
                "airports": {"type": "object"},
                "takenAt": {"type": "string", "format": "date-time"}
            },
            "required": ["airports"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
