package blueprint

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Blueprint is the trusted, typed view of a document that has passed
// validation. Optional attach blocks are nil when their kind is not attached.
type Blueprint struct {
	Kind    string
	Version int

	Metadata     Metadata
	Ownership    Ownership
	Scope        Scope
	Integration  Integration
	Schemas      map[string]map[string]any
	Interfaces   []Interface
	Worker       *WorkerBlock
	SDK          *SDKBlock
	Cron         *CronBlock
	Pipeline     *PipelineBlock
	Deliverables Deliverables
	Acceptance   Acceptance
	Model        Model
	EnvVars      []EnvVar
}

type Metadata struct {
	Name        string
	DisplayName string
	Summary     string
	Complexity  string
}

type Ownership struct {
	Team    string
	Contact string
}

type Scope struct {
	Summary    string
	Boundaries []string
}

type Integration struct {
	Primary     string
	Attach      []AttachKind
	TriggerType string
	TriggerDesc string
	System      string
	BasePath    string
	FailureMode string
	Rollback    string
}

type Interface struct {
	Type        string
	Name        string
	Description string
	Routes      []Route
}

type Route struct {
	Name     string
	Method   string
	Path     string
	Request  string
	Response string
}

type WorkerBlock struct {
	Queue       string
	Concurrency int
	RetryLimit  int
}

type SDKBlock struct {
	Package  string
	Language string
}

type CronBlock struct {
	Schedule string
	Timezone string
}

type PipelineBlock struct {
	Stage    string
	Upstream string
}

type Deliverables struct {
	ModuleRoot   string
	DocsRoot     string
	RegistryPath string
}

type Acceptance struct {
	Scenarios []Scenario
}

type Scenario struct {
	Name     string
	Given    string
	When     string
	Then     string
	Checks   []string
	Priority string
}

type Model struct {
	ID               string
	ReasoningProfile string
}

type EnvVar struct {
	Name        string
	Required    bool
	Description string
}

// Refine validates doc and, when it passes, lifts it into a Blueprint. The
// returned ValidationResult carries the full defect list either way.
func Refine(doc Document) (*Blueprint, ValidationResult, error) {
	result := Validate(doc)
	if !result.OK {
		return nil, result, fmt.Errorf("blueprint failed validation with %d error(s)", len(result.Errors))
	}

	root := map[string]any(doc)
	bp := &Blueprint{Schemas: make(map[string]map[string]any)}

	bp.Kind, _ = childString(root, "kind")
	bp.Version, _ = childInt(root, "version")

	meta, _ := childMap(root, "metadata")
	bp.Metadata.Name, _ = childString(meta, "name")
	bp.Metadata.DisplayName, _ = childString(meta, "display_name")
	bp.Metadata.Summary, _ = childString(meta, "summary")
	bp.Metadata.Complexity, _ = childString(meta, "complexity")

	owner, _ := childMap(root, "ownership")
	bp.Ownership.Team, _ = childString(owner, "team")
	bp.Ownership.Contact, _ = childString(owner, "contact")

	scope, _ := childMap(root, "scope")
	bp.Scope.Summary, _ = childString(scope, "summary")
	if list, ok := childList(scope, "boundaries"); ok {
		bp.Scope.Boundaries, _ = stringItems(list)
	}

	integration, _ := childMap(root, "integration")
	bp.Integration.Primary, _ = childString(integration, "primary")
	if list, ok := childList(integration, "attach"); ok {
		for _, item := range list {
			if s, ok := item.(string); ok {
				bp.Integration.Attach = append(bp.Integration.Attach, AttachKind(s))
			}
		}
	}
	if trigger, ok := childMap(integration, "trigger"); ok {
		bp.Integration.TriggerType, _ = childString(trigger, "type")
		bp.Integration.TriggerDesc, _ = childString(trigger, "description")
	}
	if target, ok := childMap(integration, "target"); ok {
		bp.Integration.System, _ = childString(target, "system")
		bp.Integration.BasePath, _ = childString(target, "base_path")
	}
	bp.Integration.FailureMode, _ = childString(integration, "failure_mode")
	bp.Integration.Rollback, _ = childString(integration, "rollback")

	schemas, _ := childMap(root, "schemas")
	for name, value := range schemas {
		if def, ok := value.(map[string]any); ok {
			bp.Schemas[name] = def
		}
	}

	if list, ok := childList(root, "interfaces"); ok {
		for _, item := range list {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			iface := Interface{}
			iface.Type, _ = childString(entry, "type")
			iface.Name, _ = childString(entry, "name")
			iface.Description, _ = childString(entry, "description")
			if routes, ok := childList(entry, "routes"); ok {
				for _, r := range routes {
					routeMap, ok := r.(map[string]any)
					if !ok {
						continue
					}
					route := Route{}
					route.Name, _ = childString(routeMap, "name")
					route.Method, _ = childString(routeMap, "method")
					route.Path, _ = childString(routeMap, "path")
					route.Request, _ = childString(routeMap, "request")
					route.Response, _ = childString(routeMap, "response")
					iface.Routes = append(iface.Routes, route)
				}
			}
			bp.Interfaces = append(bp.Interfaces, iface)
		}
	}

	if bp.HasAttach(AttachWorker) {
		block, _ := childMap(root, "worker")
		worker := &WorkerBlock{}
		worker.Queue, _ = childString(block, "queue")
		worker.Concurrency, _ = childInt(block, "concurrency")
		worker.RetryLimit, _ = childInt(block, "retry_limit")
		bp.Worker = worker
	}
	if bp.HasAttach(AttachSDK) {
		block, _ := childMap(root, "sdk")
		sdk := &SDKBlock{}
		sdk.Package, _ = childString(block, "package")
		sdk.Language, _ = childString(block, "language")
		bp.SDK = sdk
	}
	if bp.HasAttach(AttachCron) {
		block, _ := childMap(root, "cron")
		cron := &CronBlock{}
		cron.Schedule, _ = childString(block, "schedule")
		cron.Timezone, _ = childString(block, "timezone")
		bp.Cron = cron
	}
	if bp.HasAttach(AttachPipeline) {
		block, _ := childMap(root, "pipeline")
		pipeline := &PipelineBlock{}
		pipeline.Stage, _ = childString(block, "stage")
		pipeline.Upstream, _ = childString(block, "upstream")
		bp.Pipeline = pipeline
	}

	deliverables, _ := childMap(root, "deliverables")
	bp.Deliverables.ModuleRoot, _ = childString(deliverables, "module_root")
	bp.Deliverables.DocsRoot, _ = childString(deliverables, "docs_root")
	bp.Deliverables.RegistryPath, _ = childString(deliverables, "registry_path")

	acceptance, _ := childMap(root, "acceptance")
	if list, ok := childList(acceptance, "scenarios"); ok {
		for _, item := range list {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			scenario := Scenario{}
			scenario.Name, _ = childString(entry, "name")
			scenario.Given, _ = childString(entry, "given")
			scenario.When, _ = childString(entry, "when")
			scenario.Then, _ = childString(entry, "then")
			scenario.Priority, _ = childString(entry, "priority")
			if checks, ok := childList(entry, "checks"); ok {
				scenario.Checks, _ = stringItems(checks)
			}
			bp.Acceptance.Scenarios = append(bp.Acceptance.Scenarios, scenario)
		}
	}

	model, _ := childMap(root, "model")
	bp.Model.ID, _ = childString(model, "id")
	bp.Model.ReasoningProfile, _ = childString(model, "reasoning_profile")

	configuration, _ := childMap(root, "configuration")
	if list, ok := childList(configuration, "env_vars"); ok {
		for _, item := range list {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			ev := EnvVar{}
			ev.Name, _ = childString(entry, "name")
			ev.Required, _ = childBool(entry, "required")
			ev.Description, _ = childString(entry, "description")
			bp.EnvVars = append(bp.EnvVars, ev)
		}
	}

	return bp, result, nil
}

// AgentID returns the unique agent identifier.
func (b *Blueprint) AgentID() string {
	return b.Metadata.Name
}

// HasAttach reports whether the given attach kind is active.
func (b *Blueprint) HasAttach(kind AttachKind) bool {
	for _, k := range b.Integration.Attach {
		if k == kind {
			return true
		}
	}
	return false
}

// DisplayName returns the declared display name or derives one from the agent
// identifier ("invoice-triage" becomes "Invoice Triage").
func (b *Blueprint) DisplayName() string {
	if strings.TrimSpace(b.Metadata.DisplayName) != "" {
		return b.Metadata.DisplayName
	}
	words := strings.ReplaceAll(b.Metadata.Name, "-", " ")
	return cases.Title(language.Und).String(words)
}

// PackageName converts the agent identifier into an identifier safe for
// generated source packages ("invoice-triage" becomes "invoice_triage").
func (b *Blueprint) PackageName() string {
	return strings.ReplaceAll(b.Metadata.Name, "-", "_")
}

// ComplexityTier returns the declared prompt-pack tier, defaulting to the
// middle tier when unspecified.
func (b *Blueprint) ComplexityTier() string {
	if b.Metadata.Complexity == "" {
		return "standard"
	}
	return b.Metadata.Complexity
}

// RegistryPath returns the deliverables registry location, falling back to
// the supplied default when the blueprint omits it.
func (b *Blueprint) RegistryPath(fallback string) string {
	if strings.TrimSpace(b.Deliverables.RegistryPath) != "" {
		return b.Deliverables.RegistryPath
	}
	return fallback
}
