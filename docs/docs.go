// Package docs registers the OpenAPI description served under /swagger. It
// keeps the layout swag init produces but is edited by hand alongside the
// handler annotations.
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
        "/api/dashboard": {
            "get": {
                "summary": "Get dashboard state",
                "tags": [
                    "dashboard"
                ],
                "description": "Get the current layout, its widgets and any active gesture",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "Error"
                    }
                }
            }
        },
        "/api/dashboard/restore-report": {
            "get": {
                "summary": "Get restore report",
                "tags": [
                    "dashboard"
                ],
                "description": "Describe what was dropped, migrated or minimized when the workspace was restored",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/dashboard/overlaps": {
            "get": {
                "summary": "List overlapping widgets",
                "tags": [
                    "dashboard"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/dashboard/canvas": {
            "put": {
                "summary": "Set canvas size",
                "tags": [
                    "dashboard"
                ],
                "description": "Resize the canvas; widgets that no longer fit are moved or minimized",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "canvas",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "409": {
                        "description": "Error"
                    }
                }
            }
        },
        "/api/dashboard/policy": {
            "put": {
                "summary": "Set layout policy",
                "tags": [
                    "dashboard"
                ],
                "description": "Change grid size, snapping and collision detection",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "policy",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/dashboard/widgets": {
            "post": {
                "summary": "Add widget",
                "tags": [
                    "widgets"
                ],
                "description": "Create a widget on the current layout at the nearest free position",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "widget",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Error"
                    },
                    "409": {
                        "description": "Error"
                    }
                }
            }
        },
        "/api/dashboard/widgets/{id}": {
            "get": {
                "summary": "Get widget",
                "tags": [
                    "widgets"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Error"
                    }
                }
            },
            "patch": {
                "summary": "Update widget",
                "tags": [
                    "widgets"
                ],
                "description": "Apply a partial update; geometry changes go through the layout engine",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "patch",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Error"
                    },
                    "409": {
                        "description": "Error"
                    }
                }
            },
            "delete": {
                "summary": "Remove widget",
                "tags": [
                    "widgets"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Error"
                    }
                }
            }
        },
        "/api/dashboard/widgets/{id}/position": {
            "put": {
                "summary": "Move widget",
                "tags": [
                    "widgets"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "position",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "409": {
                        "description": "Error"
                    }
                }
            }
        },
        "/api/dashboard/widgets/{id}/size": {
            "put": {
                "summary": "Resize widget",
                "tags": [
                    "widgets"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "size",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "409": {
                        "description": "Error"
                    }
                }
            }
        },
        "/api/dashboard/widgets/{id}/minimized": {
            "put": {
                "summary": "Minimize or restore widget",
                "tags": [
                    "widgets"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "flag",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/dashboard/widgets/{id}/maximized": {
            "put": {
                "summary": "Maximize or restore widget",
                "tags": [
                    "widgets"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "flag",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "409": {
                        "description": "Error"
                    }
                }
            }
        },
        "/api/dashboard/widgets/{id}/select": {
            "post": {
                "summary": "Select widget",
                "tags": [
                    "widgets"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/dashboard/selection": {
            "delete": {
                "summary": "Clear selection",
                "tags": [
                    "widgets"
                ],
                "responses": {
                    "204": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/dashboard/widgets/{id}/front": {
            "post": {
                "summary": "Bring widget to front",
                "tags": [
                    "widgets"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/dashboard/widgets/{id}/drag": {
            "post": {
                "summary": "Start drag",
                "tags": [
                    "gestures"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "pointer",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "204": {
                        "description": "OK"
                    },
                    "409": {
                        "description": "Error"
                    }
                }
            }
        },
        "/api/dashboard/drag": {
            "put": {
                "summary": "Move drag pointer",
                "tags": [
                    "gestures"
                ],
                "description": "Returns the preview position; a rejected move keeps the previous preview",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "pointer",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "409": {
                        "description": "Error"
                    }
                }
            },
            "delete": {
                "summary": "Cancel drag",
                "tags": [
                    "gestures"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/dashboard/drag/end": {
            "post": {
                "summary": "End drag",
                "tags": [
                    "gestures"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "409": {
                        "description": "Error"
                    }
                }
            }
        },
        "/api/dashboard/widgets/{id}/resize": {
            "post": {
                "summary": "Start resize",
                "tags": [
                    "gestures"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "resize",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "204": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Error"
                    }
                }
            }
        },
        "/api/dashboard/resize": {
            "put": {
                "summary": "Move resize pointer",
                "tags": [
                    "gestures"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "pointer",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "delete": {
                "summary": "Cancel resize",
                "tags": [
                    "gestures"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/dashboard/resize/end": {
            "post": {
                "summary": "End resize",
                "tags": [
                    "gestures"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/dashboard/widgets/{id}/popout": {
            "post": {
                "summary": "Pop widget out",
                "tags": [
                    "popout"
                ],
                "description": "Open a secondary surface for the widget; the surface connects to socketUrl",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "409": {
                        "description": "Error"
                    }
                }
            }
        },
        "/api/dashboard/widgets/{id}/popin": {
            "post": {
                "summary": "Pop widget in",
                "tags": [
                    "popout"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "409": {
                        "description": "Error"
                    }
                }
            }
        },
        "/api/dashboard/layouts": {
            "get": {
                "summary": "List layouts",
                "tags": [
                    "layouts"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "post": {
                "summary": "Create layout",
                "tags": [
                    "layouts"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "layout",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/dashboard/layouts/{layoutId}": {
            "get": {
                "summary": "Get layout",
                "tags": [
                    "layouts"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "layoutId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Error"
                    }
                }
            },
            "put": {
                "summary": "Rename layout",
                "tags": [
                    "layouts"
                ],
                "parameters": [
                    {
                        "name": "layoutId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "layout",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "204": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Error"
                    }
                }
            },
            "delete": {
                "summary": "Delete layout",
                "tags": [
                    "layouts"
                ],
                "parameters": [
                    {
                        "name": "layoutId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "OK"
                    },
                    "409": {
                        "description": "Error"
                    }
                }
            }
        },
        "/api/dashboard/layouts/{layoutId}/switch": {
            "post": {
                "summary": "Switch layout",
                "tags": [
                    "layouts"
                ],
                "description": "Pop every widget back in and make another layout current",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "layoutId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Error"
                    },
                    "409": {
                        "description": "Error"
                    }
                }
            }
        },
        "/api/dashboard/layouts/{layoutId}/export": {
            "get": {
                "summary": "Export layout",
                "tags": [
                    "layouts"
                ],
                "description": "Download a layout's widgets as an Excel sheet",
                "produces": [
                    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
                ],
                "parameters": [
                    {
                        "name": "layoutId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Error"
                    }
                }
            }
        },
        "/api/session": {
            "get": {
                "summary": "Get session",
                "tags": [
                    "session"
                ],
                "description": "Get the user's UI session: active tab, panel sizes, file manager state and layouts",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "Error"
                    }
                }
            },
            "put": {
                "summary": "Update session",
                "tags": [
                    "session"
                ],
                "description": "Merge activeTab, panelSizes and fileManager into the session. The write is debounced.",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "session",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Error"
                    }
                }
            },
            "delete": {
                "summary": "Clear session",
                "tags": [
                    "session"
                ],
                "description": "Remove the stored session record",
                "responses": {
                    "204": {
                        "description": "OK"
                    },
                    "500": {
                        "description": "Error"
                    }
                }
            }
        },
        "/api/session/flush": {
            "post": {
                "summary": "Save session now",
                "tags": [
                    "session"
                ],
                "description": "Write any pending session change without waiting for the debounce",
                "responses": {
                    "204": {
                        "description": "OK"
                    },
                    "500": {
                        "description": "Error"
                    }
                }
            }
        },
        "/api/files": {
            "get": {
                "summary": "List recordings",
                "tags": [
                    "files"
                ],
                "description": "Get every EEG recording known to the file index, newest first",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "500": {
                        "description": "Error"
                    }
                }
            },
            "post": {
                "summary": "Register recording",
                "tags": [
                    "files"
                ],
                "description": "Add an EEG recording to the file index",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "recording",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "Error"
                    }
                }
            }
        },
        "/api/files/{id}": {
            "get": {
                "summary": "Get recording",
                "tags": [
                    "files"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Error"
                    }
                }
            },
            "delete": {
                "summary": "Remove recording",
                "tags": [
                    "files"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Error"
                    }
                }
            }
        },
        "/api/files/{id}/channels": {
            "get": {
                "summary": "List recording channels",
                "tags": [
                    "files"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "404": {
                        "description": "Error"
                    }
                }
            }
        },
        "/api/debug/me": {
            "get": {
                "summary": "Get current user info",
                "tags": [
                    "debug"
                ],
                "description": "Get the current user's info from JWT",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "Error"
                    }
                }
            }
        },
        "/api/debug/workspaces": {
            "get": {
                "summary": "List live workspaces",
                "tags": [
                    "debug"
                ],
                "description": "Users whose dashboard workspace is currently held in memory",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "403": {
                        "description": "Error"
                    }
                }
            }
        },
        "/api/debug/workspaces/{userId}": {
            "delete": {
                "summary": "Evict a workspace",
                "tags": [
                    "debug"
                ],
                "description": "Save and close a user's workspace; the next request restores it from the stored session",
                "parameters": [
                    {
                        "name": "userId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "OK"
                    },
                    "403": {
                        "description": "Error"
                    },
                    "500": {
                        "description": "Error"
                    }
                }
            }
        },
        "/health": {
            "get": {
                "summary": "Health Check",
                "tags": [
                    "health"
                ],
                "description": "Check if the server is up and the database answers",
                "produces": [
                    "text/plain"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "503": {
                        "description": "Error"
                    }
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "EEG Dashboard API",
	Description:      "Widget layout and session persistence for the EEG analysis dashboard.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
