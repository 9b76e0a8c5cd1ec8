package config

// Schema returns the JSON schema of the connector configuration, as published by the
// spec command.
func Schema() map[string]any {
	return map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"title":                "Healthie API Source Spec",
		"type":                 "object",
		"required":             []string{KeyAPIKey, KeyBaseURL},
		"additionalProperties": true,
		"properties": map[string]any{
			KeyAPIKey: map[string]any{
				"type":           "string",
				"title":          "API Key",
				"description":    "Healthie API key, sent as Basic authorization.",
				"airbyte_secret": true,
				"order":          0,
			},
			KeyBaseURL: map[string]any{
				"type":        "string",
				"title":       "Base URL",
				"description": "GraphQL endpoint of the Healthie environment.",
				"format":      "uri",
				"examples": []string{
					"https://staging-api.gethealthie.com/graphql",
					"https://api.gethealthie.com/graphql",
				},
				"order": 1,
			},
		},
	}
}
