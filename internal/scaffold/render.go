package scaffold

import (
	"encoding/json"
	"fmt"
	"strings"

	"gantry/internal/blueprint"
)

// Substitutions returns the token table applied to text templates during
// apply. Tokens not present in a template are simply never matched.
func Substitutions(bp *blueprint.Blueprint) map[string]string {
	return map[string]string{
		"{{AGENT_ID}}":          bp.AgentID(),
		"{{DISPLAY_NAME}}":      bp.DisplayName(),
		"{{SUMMARY}}":           bp.Metadata.Summary,
		"{{BASE_PATH}}":         bp.Integration.BasePath,
		"{{MODEL_ID}}":          bp.Model.ID,
		"{{REASONING_PROFILE}}": bp.Model.ReasoningProfile,
		"{{PACKAGE_NAME}}":      bp.PackageName(),
	}
}

func newReplacer(bp *blueprint.Blueprint) *strings.Replacer {
	subs := Substitutions(bp)
	pairs := make([]string, 0, len(subs)*2)
	for token, value := range subs {
		pairs = append(pairs, token, value)
	}
	return strings.NewReplacer(pairs...)
}

// RenderSchema serializes one of the blueprint's schema definitions as an
// indented JSON document.
func RenderSchema(bp *blueprint.Blueprint, name string) ([]byte, error) {
	def, ok := bp.Schemas[name]
	if !ok {
		return nil, fmt.Errorf("schema %q not defined in blueprint", name)
	}
	data, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling schema %q: %w", name, err)
	}
	return append(data, '\n'), nil
}

// RenderDoc produces one of the generated documentation pages. Unknown names
// are an error; the planner only emits names from GeneratedDocNames.
func RenderDoc(bp *blueprint.Blueprint, name string) ([]byte, error) {
	var b strings.Builder
	switch name {
	case "overview":
		renderOverview(&b, bp)
	case "integration":
		renderIntegration(&b, bp)
	case "configuration":
		renderConfiguration(&b, bp)
	case "dataflow":
		renderDataflow(&b, bp)
	case "runbook":
		renderRunbook(&b, bp)
	case "evaluation":
		renderEvaluation(&b, bp)
	default:
		return nil, fmt.Errorf("unknown generated document %q", name)
	}
	return []byte(b.String()), nil
}

func renderOverview(b *strings.Builder, bp *blueprint.Blueprint) {
	fmt.Fprintf(b, "# %s\n\n", bp.DisplayName())
	fmt.Fprintf(b, "%s\n\n", bp.Metadata.Summary)
	fmt.Fprintf(b, "- Agent id: `%s`\n", bp.AgentID())
	fmt.Fprintf(b, "- Team: %s (%s)\n", bp.Ownership.Team, bp.Ownership.Contact)
	fmt.Fprintf(b, "- Complexity: %s\n\n", bp.ComplexityTier())
	b.WriteString("## Scope\n\n")
	fmt.Fprintf(b, "%s\n", bp.Scope.Summary)
	if len(bp.Scope.Boundaries) > 0 {
		b.WriteString("\nOut of scope:\n\n")
		for _, item := range bp.Scope.Boundaries {
			fmt.Fprintf(b, "- %s\n", item)
		}
	}
}

func renderIntegration(b *strings.Builder, bp *blueprint.Blueprint) {
	fmt.Fprintf(b, "# %s Integration\n\n", bp.DisplayName())
	fmt.Fprintf(b, "- Primary mode: %s\n", bp.Integration.Primary)
	fmt.Fprintf(b, "- Target system: %s\n", bp.Integration.System)
	fmt.Fprintf(b, "- Base path: `%s`\n", bp.Integration.BasePath)
	fmt.Fprintf(b, "- Trigger: %s (%s)\n", bp.Integration.TriggerType, bp.Integration.TriggerDesc)
	if len(bp.Integration.Attach) > 0 {
		kinds := make([]string, len(bp.Integration.Attach))
		for i, k := range bp.Integration.Attach {
			kinds[i] = string(k)
		}
		fmt.Fprintf(b, "- Attachments: %s\n", strings.Join(kinds, ", "))
	}
	b.WriteString("\n## Routes\n\n")
	for _, iface := range bp.Interfaces {
		if iface.Type != "http" {
			continue
		}
		for _, route := range iface.Routes {
			fmt.Fprintf(b, "- `%s %s` — %s (%s -> %s)\n",
				route.Method, route.Path, route.Name, route.Request, route.Response)
		}
	}
}

func renderConfiguration(b *strings.Builder, bp *blueprint.Blueprint) {
	fmt.Fprintf(b, "# %s Configuration\n\n", bp.DisplayName())
	b.WriteString("| Variable | Required | Description |\n")
	b.WriteString("| --- | --- | --- |\n")
	for _, ev := range bp.EnvVars {
		required := "no"
		if ev.Required {
			required = "yes"
		}
		fmt.Fprintf(b, "| `%s` | %s | %s |\n", ev.Name, required, ev.Description)
	}
	fmt.Fprintf(b, "\nSetting `%s=false` disables the agent immediately.\n", blueprint.KillSwitchEnvVar)
}

func renderDataflow(b *strings.Builder, bp *blueprint.Blueprint) {
	fmt.Fprintf(b, "# %s Data Flow\n\n", bp.DisplayName())
	fmt.Fprintf(b, "Requests arrive via %s triggers and are handled by the `%s` model with the %s reasoning profile.\n\n",
		bp.Integration.TriggerType, bp.Model.ID, bp.Model.ReasoningProfile)
	b.WriteString("## Schemas\n\n")
	for _, name := range blueprint.RequiredSchemaNames {
		fmt.Fprintf(b, "- `%s` (`schemas/%s.schema.json`)\n", name, snakeCase(name))
	}
	if bp.Worker != nil {
		fmt.Fprintf(b, "\nWork is consumed from queue `%s` with concurrency %d and a retry limit of %d.\n",
			bp.Worker.Queue, bp.Worker.Concurrency, bp.Worker.RetryLimit)
	}
	if bp.Pipeline != nil {
		fmt.Fprintf(b, "\nPipeline stage `%s` consumes output from `%s`.\n",
			bp.Pipeline.Stage, bp.Pipeline.Upstream)
	}
}

func renderRunbook(b *strings.Builder, bp *blueprint.Blueprint) {
	fmt.Fprintf(b, "# %s Runbook\n\n", bp.DisplayName())
	fmt.Fprintf(b, "- Failure mode: %s\n", bp.Integration.FailureMode)
	fmt.Fprintf(b, "- Rollback: %s\n", bp.Integration.Rollback)
	fmt.Fprintf(b, "- Escalation contact: %s\n\n", bp.Ownership.Contact)
	b.WriteString("## Emergency stop\n\n")
	fmt.Fprintf(b, "Set `%s=false` in the agent environment. No redeploy is required.\n", blueprint.KillSwitchEnvVar)
	if bp.Cron != nil {
		tz := bp.Cron.Timezone
		if tz == "" {
			tz = "UTC"
		}
		fmt.Fprintf(b, "\nScheduled runs fire on `%s` (%s).\n", bp.Cron.Schedule, tz)
	}
}

func renderEvaluation(b *strings.Builder, bp *blueprint.Blueprint) {
	fmt.Fprintf(b, "# %s Evaluation\n\n", bp.DisplayName())
	for _, sc := range bp.Acceptance.Scenarios {
		fmt.Fprintf(b, "## %s\n\n", sc.Name)
		if sc.Priority != "" {
			fmt.Fprintf(b, "Priority: %s\n\n", sc.Priority)
		}
		fmt.Fprintf(b, "- Given: %s\n", sc.Given)
		fmt.Fprintf(b, "- When: %s\n", sc.When)
		fmt.Fprintf(b, "- Then: %s\n", sc.Then)
		for _, check := range sc.Checks {
			fmt.Fprintf(b, "- Check: %s\n", check)
		}
		b.WriteString("\n")
	}
}
