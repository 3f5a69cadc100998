package fleetcli

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"fleetdeck/pkg/logging"
)

// Flags accepted by fleet link subcommands.
const (
	FlagApp               = "-a"
	FlagAppLong           = "--app"
	FlagJSON              = "--json"
	FlagAddon             = "--addon"
	FlagConnectionName    = "--connection-name"
	FlagAuthorizationName = "--authorization-name"
	FlagDeveloperName     = "--developer-name"
)

// Schema is what fleetdeck believes a subcommand accepts.
// Once cached for a subcommand it does not change for the life of the process.
type Schema struct {
	Subcommand string

	// AppRequired marks subcommands that fail without -a <app>.
	AppRequired bool
	// SupportsJSON marks subcommands that accept --json.
	SupportsJSON bool

	Flags OptionalFlags
}

// OptionalFlags lists the optional flags a subcommand accepts.
type OptionalFlags struct {
	App               bool
	Addon             bool
	ConnectionName    bool
	AuthorizationName bool
	DeveloperName     bool
}

// AcceptsApp reports whether -a may be passed.
func (s Schema) AcceptsApp() bool {
	return s.AppRequired || s.Flags.App
}

// CredentialFlag returns the flag used to pass the default authorization,
// preferring the renamed --developer-name. It returns "" when neither is
// accepted.
func (s Schema) CredentialFlag() string {
	switch {
	case s.Flags.DeveloperName:
		return FlagDeveloperName
	case s.Flags.AuthorizationName:
		return FlagAuthorizationName
	default:
		return ""
	}
}

// staticSchema overrides inferred values. A nil field means "infer it".
type staticSchema struct {
	flags        *OptionalFlags
	appRequired  *bool
	supportsJSON *bool
}

// complete reports whether every field is set, in which case no help lookup
// is needed.
func (s staticSchema) complete() bool {
	return s.flags != nil && s.appRequired != nil && s.supportsJSON != nil
}

func boolPtr(b bool) *bool { return &b }

// staticSchemas covers subcommands whose help output is known to mislead the
// lookup, or which are called often enough that reading help is wasted work.
var staticSchemas = map[string]staticSchema{
	"link:connections": {
		flags:        &OptionalFlags{App: true, Addon: true},
		appRequired:  boolPtr(true),
		supportsJSON: boolPtr(true),
	},
	"link:authorizations": {
		flags:        &OptionalFlags{App: true, Addon: true},
		appRequired:  boolPtr(true),
		supportsJSON: boolPtr(true),
	},
	"link:connections:info": {
		flags:        &OptionalFlags{App: true, Addon: true},
		appRequired:  boolPtr(true),
		supportsJSON: boolPtr(true),
	},
	"plugins": {
		flags:        &OptionalFlags{},
		appRequired:  boolPtr(false),
		supportsJSON: boolPtr(true),
	},
	// Help text lists -a under "GLOBAL FLAGS" without marking it required.
	"link:authorizations:add": {
		appRequired: boolPtr(true),
	},
	// The publish help mentions --json in an example of a different command.
	"link:publish": {
		supportsJSON: boolPtr(false),
	},
}

// HelpFetcher returns the help text of a subcommand. An error means the tool
// could not be run at all.
type HelpFetcher func(ctx context.Context, subcommand string) (string, error)

// SchemaCache infers and caches subcommand schemas. It is safe for
// concurrent use; concurrent callers for the same subcommand share one
// help lookup.
type SchemaCache struct {
	fetch  HelpFetcher
	broad  func() bool
	static map[string]staticSchema

	mu      sync.RWMutex
	entries map[string]Schema
	group   singleflight.Group
}

// NewSchemaCache creates a cache backed by fetch. broad selects the loose
// help-text matching rules; nil means strict.
func NewSchemaCache(fetch HelpFetcher, broad func() bool) *SchemaCache {
	if broad == nil {
		broad = func() bool { return false }
	}
	return &SchemaCache{
		fetch:   fetch,
		broad:   broad,
		static:  staticSchemas,
		entries: make(map[string]Schema),
	}
}

// Infer returns the schema of subcommand. It never fails: when the help lookup
// cannot run, the empty schema is cached and returned.
func (c *SchemaCache) Infer(ctx context.Context, subcommand string) Schema {
	if override, ok := c.static[subcommand]; ok && override.complete() {
		return override.apply(Schema{Subcommand: subcommand})
	}

	c.mu.RLock()
	cached, ok := c.entries[subcommand]
	c.mu.RUnlock()
	if ok {
		return cached
	}

	v, _, _ := c.group.Do(subcommand, func() (interface{}, error) {
		c.mu.RLock()
		cached, ok := c.entries[subcommand]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		// The result outlives this caller, so its cancellation must not
		// leave an empty schema cached for the process.
		schema := c.infer(context.WithoutCancel(ctx), subcommand)

		c.mu.Lock()
		c.entries[subcommand] = schema
		c.mu.Unlock()
		return schema, nil
	})
	return v.(Schema)
}

func (c *SchemaCache) infer(ctx context.Context, subcommand string) Schema {
	schema := Schema{Subcommand: subcommand}

	help, err := c.fetch(ctx, subcommand)
	if err != nil {
		logging.Warn("Schema", "Help lookup for %s failed, continuing without known flags: %v", subcommand, err)
	} else {
		schema = schemaFromHelp(subcommand, help, c.broad())
		logging.Debug("Schema", "Inferred %s: %+v", subcommand, schema)
	}

	if override, ok := c.static[subcommand]; ok {
		schema = override.apply(schema)
	}
	return schema
}

// apply overlays the static values on schema field by field.
func (s staticSchema) apply(schema Schema) Schema {
	if s.flags != nil {
		schema.Flags = *s.flags
	}
	if s.appRequired != nil {
		schema.AppRequired = *s.appRequired
	}
	if s.supportsJSON != nil {
		schema.SupportsJSON = *s.supportsJSON
	}
	return schema
}

// Cached returns the cached schema for subcommand without probing.
func (c *SchemaCache) Cached(subcommand string) (Schema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.entries[subcommand]
	return s, ok
}
