package config

// SchemaMatch selects how strictly help text is matched when inferring flags.
type SchemaMatch string

const (
	// SchemaMatchStrict requires exact flag tokens in help output.
	SchemaMatchStrict SchemaMatch = "strict"
	// SchemaMatchBroad accepts any substring mention of a flag.
	SchemaMatchBroad SchemaMatch = "broad"
)

// DefaultCLIPath is the fleet binary looked up on PATH when cliPath is unset.
const DefaultCLIPath = "fleet"

// Settings is the full set of user-editable values. Every field is optional.
type Settings struct {
	CLIPath              string      `yaml:"cliPath,omitempty"`
	DefaultApp           string      `yaml:"defaultApp,omitempty"`
	DefaultAddon         string      `yaml:"defaultAddon,omitempty"`
	DefaultConnection    string      `yaml:"defaultConnection,omitempty"`
	DefaultAuthorization string      `yaml:"defaultAuthorization,omitempty"`
	DebugTracing         bool        `yaml:"debugTracing"`
	VerboseLogging       bool        `yaml:"verboseLogging"`
	ClientID             string      `yaml:"clientId,omitempty"`
	ClientSecret         string      `yaml:"clientSecret,omitempty"`
	SchemaMatch          SchemaMatch `yaml:"schemaMatch,omitempty"`
	LogFile              string      `yaml:"logFile,omitempty"`
}

// GetDefaultSettings returns the settings used when no config file exists.
func GetDefaultSettings() Settings {
	return Settings{
		CLIPath:      DefaultCLIPath,
		DebugTracing: true,
		SchemaMatch:  SchemaMatchStrict,
	}
}

// Tool returns the fleet binary to execute.
func (s Settings) Tool() string {
	if s.CLIPath == "" {
		return DefaultCLIPath
	}
	return s.CLIPath
}

// BroadSchemaMatch reports whether help text should be matched loosely.
func (s Settings) BroadSchemaMatch() bool {
	return s.SchemaMatch == SchemaMatchBroad
}
