package blueprint

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
)

const (
	// DocumentKind is the only accepted value for the top-level kind field.
	DocumentKind = "AgentBlueprint"

	// KillSwitchEnvVar must be declared with required=true in every blueprint
	// so a generated agent can always be disabled without a deploy.
	KillSwitchEnvVar = "AGENT_ENABLED"

	// suppressedFailureMode is refused independently of the general enum
	// check so a future loosening of allowedFailureModes cannot silently
	// re-admit it.
	suppressedFailureMode = "suppress"
)

var (
	allowedTriggerTypes      = []string{"request", "event", "schedule", "manual"}
	allowedFailureModes      = []string{"fail_fast", "retry_then_fail", "dead_letter", "escalate"}
	allowedRollbackMethods   = []string{"redeploy_previous", "feature_flag", "manual"}
	allowedComplexityTiers   = []string{"basic", "standard", "advanced"}
	allowedScenarioPriority  = []string{"critical", "high", "normal"}
	allowedRouteMethods      = []string{"GET", "POST", "PUT", "DELETE"}
	allowedReasoningProfiles = []string{"minimal", "balanced", "deep"}

	// RequiredSchemaNames are the schema definitions the planner derives
	// generated schema documents from.
	RequiredSchemaNames = []string{"RunRequest", "RunResponse", "AgentError"}

	// recommendedEnvVars are reported as warnings, never errors, when absent.
	recommendedEnvVars = []string{"AGENT_LOG_LEVEL", "AGENT_TIMEOUT_MS"}

	schemaRefPattern = regexp.MustCompile(`^#/schemas/([A-Za-z][A-Za-z0-9]*)$`)
)

// Validate walks the entire document in a fixed section order and accumulates
// every violation before returning. It never panics on malformed input;
// absence or wrong shape of any field becomes an error naming the dotted path.
func Validate(doc Document) ValidationResult {
	c := &collector{}
	if doc == nil {
		c.errorf("document: must be a JSON object")
		return c.result()
	}

	root := map[string]any(doc)

	checkIdentity(c, root)
	checkMetadata(c, root)
	checkOwnership(c, root)
	checkScope(c, root)

	attach := checkIntegration(c, root)
	schemaNames := checkSchemas(c, root)
	checkInterfaces(c, root, attach, schemaNames)
	checkAttachBlocks(c, root, attach)
	checkDeliverables(c, root)
	checkAcceptance(c, root)
	checkModel(c, root)
	checkConfiguration(c, root)

	return c.result()
}

func checkIdentity(c *collector, root map[string]any) {
	kind, ok := childString(root, "kind")
	if !ok {
		c.errorf("kind: required string")
	} else if kind != DocumentKind {
		c.errorf("kind: must be %q, got %q", DocumentKind, kind)
	}

	version, ok := childInt(root, "version")
	if !ok {
		c.errorf("version: required integer")
	} else if version < 1 {
		c.errorf("version: must be a positive integer, got %d", version)
	}
}

var agentNamePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

func checkMetadata(c *collector, root map[string]any) {
	meta, ok := requireSection(c, root, "metadata")
	if !ok {
		return
	}

	name := requireString(c, meta, "metadata.name")
	if name != "" && !agentNamePattern.MatchString(name) {
		c.errorf("metadata.name: must match %s, got %q", agentNamePattern.String(), name)
	}
	optionalStringField(c, meta, "metadata.display_name")
	requireString(c, meta, "metadata.summary")

	if _, present := meta["complexity"]; present {
		enumField(c, meta, "metadata.complexity", allowedComplexityTiers)
	}
}

func checkOwnership(c *collector, root map[string]any) {
	owner, ok := requireSection(c, root, "ownership")
	if !ok {
		return
	}
	requireString(c, owner, "ownership.team")
	requireString(c, owner, "ownership.contact")
}

func checkScope(c *collector, root map[string]any) {
	scope, ok := requireSection(c, root, "scope")
	if !ok {
		return
	}
	requireString(c, scope, "scope.summary")
	if _, present := scope["boundaries"]; present {
		list, ok := childList(scope, "boundaries")
		if !ok {
			c.errorf("scope.boundaries: must be a list of strings")
			return
		}
		if _, ok := stringItems(list); !ok {
			c.errorf("scope.boundaries: must be a list of strings")
		}
	}
}

// checkIntegration validates the integration descriptor and returns the
// declared attach kinds (deduplicated, declaration order) for later
// cross-checks. Malformed attach entries yield an empty set so dependent
// checks stay quiet rather than cascading.
func checkIntegration(c *collector, root map[string]any) []AttachKind {
	integration, ok := requireSection(c, root, "integration")
	if !ok {
		return nil
	}

	primary, ok := childString(integration, "primary")
	if !ok {
		c.errorf("integration.primary: required string")
	} else if primary != "http" {
		c.errorf("integration.primary: must be %q, got %q", "http", primary)
	}

	attach := collectAttachKinds(c, integration)

	if trigger, ok := requireSection(c, integration, "trigger"); ok {
		enumField(c, trigger, "integration.trigger.type", allowedTriggerTypes)
		requireString(c, trigger, "integration.trigger.description")
	}

	if target, ok := requireSection(c, integration, "target"); ok {
		requireString(c, target, "integration.target.system")
		basePath := requireString(c, target, "integration.target.base_path")
		if basePath != "" && !strings.HasPrefix(basePath, "/") {
			c.errorf("integration.target.base_path: must start with \"/\", got %q", basePath)
		}
	}

	if mode, ok := childString(integration, "failure_mode"); ok && mode == suppressedFailureMode {
		c.errorf("integration.failure_mode: %q silently discards failures and is not permitted", suppressedFailureMode)
	}
	enumField(c, integration, "integration.failure_mode", allowedFailureModes)
	enumField(c, integration, "integration.rollback", allowedRollbackMethods)

	return attach
}

func collectAttachKinds(c *collector, integration map[string]any) []AttachKind {
	raw, present := integration["attach"]
	if !present {
		c.errorf("integration.attach: required list")
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		c.errorf("integration.attach: must be a list")
		return nil
	}

	seen := make(map[AttachKind]bool, len(list))
	kinds := make([]AttachKind, 0, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			c.errorf("integration.attach[%d]: must be a string", i)
			continue
		}
		kind := AttachKind(s)
		if _, known := capabilityTable[kind]; !known {
			c.errorf("integration.attach[%d]: must be one of %s, got %q", i, enumList(attachKindStrings()), s)
			continue
		}
		if seen[kind] {
			c.errorf("integration.attach[%d]: duplicate kind %q", i, s)
			continue
		}
		seen[kind] = true
		kinds = append(kinds, kind)
	}
	return kinds
}

// checkSchemas validates the schema definition map and returns the set of
// defined names so reference checks can resolve against it.
func checkSchemas(c *collector, root map[string]any) map[string]bool {
	schemas, ok := requireSection(c, root, "schemas")
	if !ok {
		return nil
	}

	names := make(map[string]bool, len(schemas))
	for _, name := range slices.Sorted(maps.Keys(schemas)) {
		names[name] = true
		def, ok := schemas[name].(map[string]any)
		if !ok {
			c.errorf("schemas.%s: must be an object", name)
			continue
		}
		if _, ok := childString(def, "type"); !ok {
			c.errorf("schemas.%s.type: required string", name)
		}
	}

	for _, required := range RequiredSchemaNames {
		if !names[required] {
			c.errorf("schemas.%s: required schema definition is missing", required)
		}
	}
	return names
}

// checkInterfaces validates the interfaces list, enforces the mandatory http
// interface with its run/health routes, and cross-checks that every declared
// attach kind has a matching interface entry.
func checkInterfaces(c *collector, root map[string]any, attach []AttachKind, schemaNames map[string]bool) {
	raw, present := root["interfaces"]
	if !present {
		c.errorf("interfaces: required list")
		return
	}
	list, ok := raw.([]any)
	if !ok {
		c.errorf("interfaces: must be a list")
		return
	}

	validTypes := append([]string{"http"}, attachKindStrings()...)
	typesSeen := make(map[string]int)
	routeNames := map[string]bool{}

	for i, item := range list {
		path := fmt.Sprintf("interfaces[%d]", i)
		entry, ok := item.(map[string]any)
		if !ok {
			c.errorf("%s: must be an object", path)
			continue
		}

		entryType, ok := childString(entry, "type")
		if !ok {
			c.errorf("%s.type: required string", path)
			continue
		}
		if !containsString(validTypes, entryType) {
			c.errorf("%s.type: must be one of %s, got %q", path, enumList(validTypes), entryType)
			continue
		}
		typesSeen[entryType]++

		requireString(c, entry, path+".name")
		requireString(c, entry, path+".description")

		if entryType == "http" {
			checkRoutes(c, entry, path, schemaNames, routeNames)
		}
	}

	switch typesSeen["http"] {
	case 0:
		c.errorf("interfaces: an entry with type %q is required", "http")
	case 1:
	default:
		c.errorf("interfaces: exactly one entry with type %q is allowed, found %d", "http", typesSeen["http"])
	}

	for _, kind := range attach {
		if typesSeen[string(kind)] == 0 {
			c.errorf("interfaces: integration.attach declares %q but no interface entry has that type", kind)
		}
	}
}

func checkRoutes(c *collector, entry map[string]any, path string, schemaNames map[string]bool, routeNames map[string]bool) {
	raw, present := entry["routes"]
	if !present {
		c.errorf("%s.routes: required list", path)
		return
	}
	list, ok := raw.([]any)
	if !ok {
		c.errorf("%s.routes: must be a list", path)
		return
	}

	for i, item := range list {
		routePath := fmt.Sprintf("%s.routes[%d]", path, i)
		route, ok := item.(map[string]any)
		if !ok {
			c.errorf("%s: must be an object", routePath)
			continue
		}
		name := requireString(c, route, routePath+".name")
		if name != "" {
			if routeNames[name] {
				c.errorf("%s.name: duplicate route %q", routePath, name)
			}
			routeNames[name] = true
		}
		enumField(c, route, routePath+".method", allowedRouteMethods)
		routeURL := requireString(c, route, routePath+".path")
		if routeURL != "" && !strings.HasPrefix(routeURL, "/") {
			c.errorf("%s.path: must start with \"/\", got %q", routePath, routeURL)
		}
		schemaRefField(c, route, routePath+".request", schemaNames)
		schemaRefField(c, route, routePath+".response", schemaNames)
	}

	for _, required := range []string{"run", "health"} {
		if !routeNames[required] {
			c.errorf("%s.routes: a route named %q is required", path, required)
		}
	}
}

// checkAttachBlocks enforces the capability table: a block is validated only
// when its kind is attached, and a declared kind without its block is an
// error. Blocks present for kinds that are not attached are skipped with a
// warning.
func checkAttachBlocks(c *collector, root map[string]any, attach []AttachKind) {
	attached := make(map[AttachKind]bool, len(attach))
	for _, kind := range attach {
		attached[kind] = true
	}

	for _, kind := range attachKindOrder {
		entry := capabilityTable[kind]
		raw, present := root[entry.blockKey]

		if !attached[kind] {
			if present {
				c.warnf("%s: block is present but %q is not listed in integration.attach; it will be ignored", entry.blockKey, kind)
			}
			continue
		}
		if !present {
			c.errorf("%s: required block when integration.attach includes %q", entry.blockKey, kind)
			continue
		}
		block, ok := raw.(map[string]any)
		if !ok {
			c.errorf("%s: must be an object", entry.blockKey)
			continue
		}

		for _, field := range entry.fields {
			path := entry.blockKey + "." + field.key
			switch field.typ {
			case fieldString:
				requireString(c, block, path)
			case fieldOptionalString:
				optionalStringField(c, block, path)
			case fieldPositiveInt:
				if v, ok := childInt(block, field.key); !ok {
					c.errorf("%s: required integer", path)
				} else if v < 1 {
					c.errorf("%s: must be at least 1, got %d", path, v)
				}
			case fieldNonNegativeInt:
				if v, ok := childInt(block, field.key); !ok {
					c.errorf("%s: required integer", path)
				} else if v < 0 {
					c.errorf("%s: must not be negative, got %d", path, v)
				}
			case fieldEnum:
				enumField(c, block, path, field.allowed)
			}
		}
	}
}

func checkDeliverables(c *collector, root map[string]any) {
	deliverables, ok := requireSection(c, root, "deliverables")
	if !ok {
		return
	}
	requireString(c, deliverables, "deliverables.module_root")
	requireString(c, deliverables, "deliverables.docs_root")
	optionalStringField(c, deliverables, "deliverables.registry_path")
}

func checkAcceptance(c *collector, root map[string]any) {
	acceptance, ok := requireSection(c, root, "acceptance")
	if !ok {
		return
	}
	raw, present := acceptance["scenarios"]
	if !present {
		c.errorf("acceptance.scenarios: required list")
		return
	}
	list, ok := raw.([]any)
	if !ok {
		c.errorf("acceptance.scenarios: must be a list")
		return
	}
	if len(list) < 2 {
		c.errorf("acceptance.scenarios: at least 2 scenarios are required, got %d", len(list))
	}

	for i, item := range list {
		path := fmt.Sprintf("acceptance.scenarios[%d]", i)
		scenario, ok := item.(map[string]any)
		if !ok {
			c.errorf("%s: must be an object", path)
			continue
		}
		requireString(c, scenario, path+".name")
		requireString(c, scenario, path+".given")
		requireString(c, scenario, path+".when")
		requireString(c, scenario, path+".then")
		enumField(c, scenario, path+".priority", allowedScenarioPriority)

		checks, ok := childList(scenario, "checks")
		if !ok {
			c.errorf("%s.checks: required list of strings", path)
			continue
		}
		items, ok := stringItems(checks)
		if !ok {
			c.errorf("%s.checks: required list of strings", path)
			continue
		}
		if len(items) == 0 {
			c.errorf("%s.checks: at least one expected-output check is required", path)
		}
	}
}

func checkModel(c *collector, root map[string]any) {
	model, ok := requireSection(c, root, "model")
	if !ok {
		return
	}
	requireString(c, model, "model.id")
	enumField(c, model, "model.reasoning_profile", allowedReasoningProfiles)
}

func checkConfiguration(c *collector, root map[string]any) {
	configuration, ok := requireSection(c, root, "configuration")
	if !ok {
		return
	}
	raw, present := configuration["env_vars"]
	if !present {
		c.errorf("configuration.env_vars: required list")
		return
	}
	list, ok := raw.([]any)
	if !ok {
		c.errorf("configuration.env_vars: must be a list")
		return
	}

	declared := make(map[string]bool, len(list))
	killSwitchRequired := false
	for i, item := range list {
		path := fmt.Sprintf("configuration.env_vars[%d]", i)
		entry, ok := item.(map[string]any)
		if !ok {
			c.errorf("%s: must be an object", path)
			continue
		}
		name := requireString(c, entry, path+".name")
		required, ok := childBool(entry, "required")
		if !ok {
			c.errorf("%s.required: required boolean", path)
		}
		requireString(c, entry, path+".description")

		if name != "" {
			if declared[name] {
				c.errorf("%s.name: duplicate environment variable %q", path, name)
			}
			declared[name] = true
			if name == KillSwitchEnvVar && ok && required {
				killSwitchRequired = true
			}
		}
	}

	if !killSwitchRequired {
		c.errorf("configuration.env_vars: kill-switch variable %s must be declared with required=true", KillSwitchEnvVar)
	}
	for _, recommended := range recommendedEnvVars {
		if !declared[recommended] {
			c.warnf("configuration.env_vars: recommended variable %s is not declared", recommended)
		}
	}
}

// Shared field helpers.

func requireSection(c *collector, parent map[string]any, key string) (map[string]any, bool) {
	raw, present := parent[key]
	if !present {
		c.errorf("%s: required object", key)
		return nil, false
	}
	section, ok := raw.(map[string]any)
	if !ok {
		c.errorf("%s: must be an object", key)
		return nil, false
	}
	return section, true
}

// requireString reports a missing, mistyped, or blank string field. The field
// key is the last dotted segment of path.
func requireString(c *collector, parent map[string]any, path string) string {
	key := lastSegment(path)
	raw, present := parent[key]
	if !present {
		c.errorf("%s: required non-empty string", path)
		return ""
	}
	s, ok := raw.(string)
	if !ok || strings.TrimSpace(s) == "" {
		c.errorf("%s: required non-empty string", path)
		return ""
	}
	return s
}

func optionalStringField(c *collector, parent map[string]any, path string) {
	key := lastSegment(path)
	raw, present := parent[key]
	if !present {
		return
	}
	if _, ok := raw.(string); !ok {
		c.errorf("%s: must be a string", path)
	}
}

func enumField(c *collector, parent map[string]any, path string, allowed []string) string {
	key := lastSegment(path)
	raw, present := parent[key]
	if !present {
		c.errorf("%s: required value, one of %s", path, enumList(allowed))
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		c.errorf("%s: must be a string, one of %s", path, enumList(allowed))
		return ""
	}
	if !containsString(allowed, s) {
		c.errorf("%s: must be one of %s, got %q", path, enumList(allowed), s)
		return ""
	}
	return s
}

func schemaRefField(c *collector, parent map[string]any, path string, schemaNames map[string]bool) {
	key := lastSegment(path)
	raw, present := parent[key]
	if !present {
		c.errorf("%s: required schema reference (#/schemas/<Name>)", path)
		return
	}
	s, ok := raw.(string)
	if !ok {
		c.errorf("%s: must be a string schema reference (#/schemas/<Name>)", path)
		return
	}
	match := schemaRefPattern.FindStringSubmatch(s)
	if match == nil {
		c.errorf("%s: malformed schema reference %q, expected #/schemas/<Name>", path, s)
		return
	}
	if !schemaNames[match[1]] {
		c.errorf("%s: schema reference %q does not resolve to a key in schemas", path, s)
	}
}

func lastSegment(path string) string {
	if idx := strings.LastIndex(path, "."); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func enumList(values []string) string {
	return "[" + strings.Join(values, " ") + "]"
}

func attachKindStrings() []string {
	out := make([]string, 0, len(attachKindOrder))
	for _, kind := range attachKindOrder {
		out = append(out, string(kind))
	}
	return out
}
