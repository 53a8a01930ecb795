// Package docs registers the swagger document served at /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/thing": {
            "get": {
                "produces": ["application/json"],
                "tags": ["thing"],
                "summary": "Get a submission or comment with its loaded replies",
                "parameters": [
                    {"type": "string", "description": "Fullname, e.g. t3_abc123 or t1_def456", "name": "name", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Thing"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.HTTPError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.HTTPError"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.HTTPError"}}
                }
            }
        },
        "/expand": {
            "get": {
                "produces": ["application/json"],
                "tags": ["thing"],
                "summary": "Expand the reply tree of a submission or comment",
                "parameters": [
                    {"type": "string", "description": "Fullname, e.g. t3_abc123 or t1_def456", "name": "name", "in": "query", "required": true},
                    {"type": "integer", "description": "Children expanded per node; unbounded when omitted", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Levels to expand; unbounded when omitted", "name": "depth", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ExpandResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.HTTPError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.HTTPError"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.HTTPError"}}
                }
            }
        },
        "/thing/{name}/{action}": {
            "post": {
                "consumes": ["application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["thing"],
                "summary": "Apply a one-shot action to a submission or comment",
                "parameters": [
                    {"type": "string", "description": "Fullname of the thing", "name": "name", "in": "path", "required": true},
                    {"type": "string", "description": "Action name", "name": "action", "in": "path", "required": true},
                    {"type": "string", "description": "New text for edit", "name": "text", "in": "formData"},
                    {"type": "string", "description": "yes, no, admin or special for distinguish", "name": "how", "in": "formData"},
                    {"type": "boolean", "description": "Sticky flag for distinguish", "name": "sticky", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.ActionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.HTTPError"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/models.HTTPError"}}
                }
            }
        }
    },
    "definitions": {
        "models.HTTPError": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "message": {"type": "string"}
            }
        },
        "models.MoreChildren": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "parent_id": {"type": "string"},
                "count": {"type": "integer"},
                "children": {"type": "array", "items": {"type": "string"}}
            }
        },
        "models.Listing": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/models.Thing"}},
                "more": {"$ref": "#/definitions/models.MoreChildren"},
                "parent_name": {"type": "string"},
                "link_id": {"type": "string"}
            }
        },
        "models.Thing": {
            "type": "object",
            "properties": {
                "kind": {"type": "string"},
                "id": {"type": "string"},
                "name": {"type": "string"},
                "parent_id": {"type": "string"},
                "link_id": {"type": "string"},
                "author": {"type": "string"},
                "subreddit": {"type": "string"},
                "title": {"type": "string"},
                "body": {"type": "string"},
                "selftext": {"type": "string"},
                "permalink": {"type": "string"},
                "url": {"type": "string"},
                "score": {"type": "integer"},
                "likes": {"type": "boolean"},
                "saved": {"type": "boolean"},
                "distinguished": {"type": "string"},
                "stickied": {"type": "boolean"},
                "gilded": {"type": "integer"},
                "send_replies": {"type": "boolean"},
                "edited": {"type": "boolean"},
                "created_at": {"type": "string"},
                "comments": {"$ref": "#/definitions/models.Listing"},
                "replies": {"$ref": "#/definitions/models.Listing"}
            }
        },
        "models.ExpandMeta": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "limit": {"type": "integer"},
                "depth": {"type": "integer"},
                "nodes_before": {"type": "integer"},
                "nodes_after": {"type": "integer"},
                "processing_time_ms": {"type": "integer"}
            }
        },
        "models.ExpandResponse": {
            "type": "object",
            "properties": {
                "thing": {"$ref": "#/definitions/models.Thing"},
                "meta": {"$ref": "#/definitions/models.ExpandMeta"}
            }
        },
        "models.ActionResponse": {
            "type": "object",
            "properties": {
                "action": {"type": "string"},
                "thing": {"$ref": "#/definitions/models.Thing"}
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
	Title:            "snoowrap API",
	Description:      "Loads Reddit submissions and comments, expands their reply trees under a branching and depth budget, and applies one-shot actions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
