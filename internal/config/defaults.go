package config

const (
	defaultWorkspaceRoot = "~/.local/share/gantry/runs"
	defaultTemplateDir   = "~/.local/share/gantry/templates"
	defaultLogDir        = "~/.local/share/gantry/logs"
	defaultRegistryPath  = "~/.local/share/gantry/registry.json"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkspaceRoot: defaultWorkspaceRoot,
			TemplateDir:   defaultTemplateDir,
			LogDir:        defaultLogDir,
		},
		Registry: Registry{
			Path: defaultRegistryPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
