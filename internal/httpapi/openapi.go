package httpapi

import "net/http"

// Machine-readable API descriptions served on /howto, one per binary.

var sendAPISpec = map[string]any{
	"openapi": "3.0.3",
	"info": map[string]any{
		"title":       "OpenAck API",
		"version":     "2.0.0",
		"description": "File-based message middleware for agent-to-agent communication.",
	},
	"paths": map[string]any{
		"/messages": map[string]any{
			"post": map[string]any{
				"summary":     "Send a message to one or many recipients",
				"description": "Writes message files and optional attachments into <root>/<recipient>/inbox.",
				"requestBody": map[string]any{
					"required": true,
					"content": map[string]any{
						"multipart/form-data": map[string]any{
							"schema": map[string]any{
								"type":     "object",
								"required": []string{"from", "to", "message"},
								"properties": map[string]any{
									"from":    map[string]any{"type": "string"},
									"to":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
									"message": map[string]any{"type": "string"},
									"files": map[string]any{
										"type":  "array",
										"items": map[string]any{"type": "string", "format": "binary"},
									},
								},
							},
						},
					},
				},
				"responses": map[string]any{
					"200": map[string]any{"description": "Message delivered"},
					"400": map[string]any{"description": "Bad request"},
					"500": map[string]any{"description": "Server error"},
				},
			},
		},
		"/directory": map[string]any{
			"get": map[string]any{
				"summary": "Show valid people directory",
				"responses": map[string]any{
					"200": map[string]any{"description": "Directory list"},
					"400": map[string]any{"description": "Directory file missing/invalid"},
				},
			},
		},
		"/howto": map[string]any{
			"get": map[string]any{
				"summary":   "OpenAPI document endpoint (JSON)",
				"responses": map[string]any{"200": map[string]any{"description": "OpenAPI spec"}},
			},
		},
	},
}

var fetchAPISpec = map[string]any{
	"openapi": "3.0.3",
	"info": map[string]any{
		"title":       "OpenAck Fetch API",
		"version":     "2.0.0",
		"description": "Fetch API for agent inbox consumption using private agent IDs.",
	},
	"paths": map[string]any{
		"/messages": map[string]any{
			"get": map[string]any{
				"summary": "Fetch and consume inbox messages using an agent ID",
				"parameters": []any{
					map[string]any{
						"name":     "id",
						"in":       "query",
						"required": true,
						"schema":   map[string]any{"type": "string"},
					},
				},
				"responses": map[string]any{
					"200": map[string]any{"description": "Message list (empty array when no messages)"},
					"400": map[string]any{"description": "Bad request"},
					"500": map[string]any{"description": "Server error"},
				},
			},
		},
		"/howto": map[string]any{
			"get": map[string]any{
				"summary":   "OpenAPI document endpoint (JSON)",
				"responses": map[string]any{"200": map[string]any{"description": "OpenAPI spec"}},
			},
		},
	},
}

func specHandler(h *Handler, spec map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.JSON(w, http.StatusOK, spec)
	}
}
