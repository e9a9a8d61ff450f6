package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"gantry/internal/blueprint"
)

// BlueprintDoc builds a fresh minimal valid blueprint document with the
// worker attach kind active. Tests mutate the returned tree freely.
func BlueprintDoc() blueprint.Document {
	return blueprint.Document{
		"kind":    "AgentBlueprint",
		"version": float64(1),
		"metadata": map[string]any{
			"name":    "invoice-triage",
			"summary": "Routes inbound invoices to the right reviewer",
		},
		"ownership": map[string]any{
			"team":    "payments",
			"contact": "payments@example.com",
		},
		"scope": map[string]any{
			"summary":    "Classify and route invoices",
			"boundaries": []any{"no payment execution"},
		},
		"integration": map[string]any{
			"primary": "http",
			"attach":  []any{"worker"},
			"trigger": map[string]any{
				"type":        "event",
				"description": "invoice ingested into billing-core",
			},
			"target": map[string]any{
				"system":    "billing-core",
				"base_path": "/agents/invoice-triage",
			},
			"failure_mode": "dead_letter",
			"rollback":     "feature_flag",
		},
		"schemas": map[string]any{
			"RunRequest":  map[string]any{"type": "object"},
			"RunResponse": map[string]any{"type": "object"},
			"AgentError":  map[string]any{"type": "object"},
		},
		"interfaces": []any{
			map[string]any{
				"type":        "http",
				"name":        "api",
				"description": "primary API embedding",
				"routes": []any{
					map[string]any{
						"name":     "run",
						"method":   "POST",
						"path":     "/run",
						"request":  "#/schemas/RunRequest",
						"response": "#/schemas/RunResponse",
					},
					map[string]any{
						"name":     "health",
						"method":   "GET",
						"path":     "/health",
						"request":  "#/schemas/RunRequest",
						"response": "#/schemas/RunResponse",
					},
				},
			},
			map[string]any{
				"type":        "worker",
				"name":        "queue-consumer",
				"description": "consumes invoice events",
			},
		},
		"worker": map[string]any{
			"queue":       "invoices",
			"concurrency": float64(4),
			"retry_limit": float64(3),
		},
		"deliverables": map[string]any{
			"module_root": "agents/invoice-triage",
			"docs_root":   "docs/agents/invoice-triage",
		},
		"acceptance": map[string]any{
			"scenarios": []any{
				map[string]any{
					"name":     "happy path",
					"given":    "a valid invoice",
					"when":     "the run endpoint is called",
					"then":     "the invoice is routed",
					"checks":   []any{"route label present"},
					"priority": "critical",
				},
				map[string]any{
					"name":     "bad payload",
					"given":    "a malformed invoice",
					"when":     "the run endpoint is called",
					"then":     "an AgentError is returned",
					"checks":   []any{"error code set"},
					"priority": "normal",
				},
			},
		},
		"model": map[string]any{
			"id":                "sonnet-large",
			"reasoning_profile": "balanced",
		},
		"configuration": map[string]any{
			"env_vars": []any{
				map[string]any{"name": "AGENT_ENABLED", "required": true, "description": "kill switch"},
				map[string]any{"name": "AGENT_LOG_LEVEL", "required": false, "description": "log verbosity"},
				map[string]any{"name": "AGENT_TIMEOUT_MS", "required": false, "description": "per-run timeout"},
			},
		},
	}
}

// MustBlueprint refines the canonical document into a typed Blueprint.
func MustBlueprint(t testing.TB) *blueprint.Blueprint {
	t.Helper()

	bp, result, err := blueprint.Refine(BlueprintDoc())
	if err != nil {
		t.Fatalf("refine fixture blueprint: %v (%v)", err, result.Errors)
	}
	return bp
}

// WriteBlueprint marshals doc to path, creating parent directories.
func WriteBlueprint(t testing.TB, path string, doc blueprint.Document) {
	t.Helper()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("marshal blueprint: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write blueprint: %v", err)
	}
}
