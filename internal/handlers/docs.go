package handlers

import (
	"encoding/json"
	"net/http"
)

// OpenAPISpec returns the OpenAPI 3.0 specification for the Agri Advisor API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	postOp := func(summary, description string, required []string, properties map[string]interface{}) map[string]interface{} {
		return map[string]interface{}{
			"post": map[string]interface{}{
				"summary":     summary,
				"description": description,
				"requestBody": map[string]interface{}{
					"required": true,
					"content": map[string]interface{}{
						"application/json": map[string]interface{}{
							"schema": map[string]interface{}{
								"type":       "object",
								"required":   required,
								"properties": properties,
							},
						},
					},
				},
				"responses": map[string]interface{}{
					"200": map[string]interface{}{
						"description": "Successful response",
						"content": map[string]interface{}{
							"application/json": map[string]interface{}{
								"schema": map[string]string{"type": "object"},
							},
						},
					},
					"400": map[string]interface{}{
						"description": "Invalid request",
					},
				},
			},
		}
	}

	str := map[string]string{"type": "string"}
	num := map[string]string{"type": "number"}
	integer := map[string]string{"type": "integer"}

	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Agri Advisor API",
			"description": "Post-harvest decision intelligence: price forecasting, spoilage risk, harvest timing and mandi selection for smallholder produce",
			"version":     "1.0.0",
			"contact": map[string]string{
				"name": "Agri Advisor Team",
			},
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/v1/forecast/price": postOp(
				"Forecast commodity prices",
				"Predict modal prices for a commodity in a district over the forecast horizon",
				[]string{"commodity", "district"},
				map[string]interface{}{
					"commodity":    str,
					"district":     str,
					"horizon_days": integer,
				},
			),
			"/api/v1/spoilage": postOp(
				"Assess spoilage risk",
				"Estimate post-harvest loss percentage from weather, transit, storage and crop condition",
				[]string{"commodity", "district"},
				map[string]interface{}{
					"commodity":          str,
					"district":           str,
					"destination_market": str,
					"storage_type":       str,
					"packaging":          str,
					"harvest_days_ago":   integer,
					"quantity_kg":        num,
				},
			),
			"/api/v1/harvest": postOp(
				"Optimize harvest timing",
				"Recommend when to harvest from maturity, NDVI, weather, price and soil signals",
				[]string{"commodity", "district"},
				map[string]interface{}{
					"commodity":     str,
					"district":      str,
					"sowing_date":   map[string]string{"type": "string", "format": "date"},
					"crop_age_days": integer,
				},
			),
			"/api/v1/mandis/rank": postOp(
				"Rank mandis by net profit",
				"Compare candidate markets on forecast revenue minus transport and spoilage costs",
				[]string{"commodity", "origin_district"},
				map[string]interface{}{
					"commodity":         str,
					"origin_district":   str,
					"quantity_quintals": num,
					"storage_type":      str,
					"packaging":         str,
					"target_mandis":     map[string]interface{}{"type": "array", "items": str},
					"forecast_days":     integer,
				},
			),
			"/api/v1/advisory": postOp(
				"Get combined advisory",
				"Run all engines and compose a single sell/wait/harvest recommendation with explanations",
				[]string{"commodity", "district"},
				map[string]interface{}{
					"commodity":         str,
					"district":          str,
					"sowing_date":       map[string]string{"type": "string", "format": "date"},
					"crop_age_days":     integer,
					"quantity_quintals": num,
					"storage_type":      str,
					"packaging":         str,
					"harvest_days_ago":  integer,
				},
			),
			"/api/v1/train": postOp(
				"Train price model",
				"Train or retrain the gradient-boosted price model for a commodity",
				[]string{"commodity"},
				map[string]interface{}{
					"commodity": str,
					"district":  str,
				},
			),
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health check",
					"description": "Check if the API is running",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "API is healthy",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type": "object",
										"properties": map[string]interface{}{
											"status": str,
										},
									},
								},
							},
						},
					},
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Prometheus metrics",
					"description": "Prometheus metrics endpoint for monitoring",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Prometheus metrics in text format",
							"content": map[string]interface{}{
								"text/plain": map[string]interface{}{
									"schema": str,
								},
							},
						},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
