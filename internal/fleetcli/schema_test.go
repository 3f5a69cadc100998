package fleetcli

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const targetsCreateHelp = `Create a deploy target

USAGE
  $ fleet link:targets:create NAME -a <value> [--connection-name <value>] [--developer-name <value>] [--json]

FLAGS
  -a, --app=<value>              (required) app to run command against
  --connection-name=<value>      connection to use
  --Developer-Name=<value>       developer to authorize as
  --json                         output in json format
`

const jobsHelp = `List jobs

Usage: fleet link:jobs [-a <value>] [--addon <value>]

  --addon=<value>   add-on name; required when the app has several add-ons
  --jsonl           stream as json lines
`

func countingFetcher(help string, err error) (HelpFetcher, *atomic.Int32) {
	var calls atomic.Int32
	return func(ctx context.Context, subcommand string) (string, error) {
		calls.Add(1)
		return help, err
	}, &calls
}

func TestSchemaCache_StaticEntriesSkipHelp(t *testing.T) {
	fetch, calls := countingFetcher("", nil)
	cache := NewSchemaCache(fetch, nil)

	for name, entry := range staticSchemas {
		if !entry.complete() {
			continue
		}
		t.Run(name, func(t *testing.T) {
			schema := cache.Infer(context.Background(), name)
			assert.Equal(t, name, schema.Subcommand)
			assert.Equal(t, *entry.flags, schema.Flags)
			assert.Equal(t, *entry.appRequired, schema.AppRequired)
			assert.Equal(t, *entry.supportsJSON, schema.SupportsJSON)
		})
	}
	assert.Equal(t, int32(0), calls.Load())
}

func TestSchemaCache_FetchesHelpOncePerSubcommand(t *testing.T) {
	fetch, calls := countingFetcher(targetsCreateHelp, nil)
	cache := NewSchemaCache(fetch, nil)

	first := cache.Infer(context.Background(), "link:targets:create")
	second := cache.Infer(context.Background(), "link:targets:create")

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())

	cache.Infer(context.Background(), "link:targets:info")
	assert.Equal(t, int32(2), calls.Load())
}

func TestSchemaCache_ConcurrentInferSharesHelpLookup(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	cache := NewSchemaCache(func(ctx context.Context, subcommand string) (string, error) {
		calls.Add(1)
		<-release
		return targetsCreateHelp, nil
	}, nil)

	var wg sync.WaitGroup
	results := make([]Schema, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = cache.Infer(context.Background(), "link:targets:create")
		}(i)
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, results[0], r)
	}
}

func TestSchemaCache_HelpFailureYieldsEmptySchema(t *testing.T) {
	fetch, calls := countingFetcher("", errors.New("exec: \"fleet\": executable file not found in $PATH"))
	cache := NewSchemaCache(fetch, nil)

	schema := cache.Infer(context.Background(), "link:targets:create")
	assert.Equal(t, Schema{Subcommand: "link:targets:create"}, schema)

	cached, ok := cache.Cached("link:targets:create")
	require.True(t, ok)
	assert.Equal(t, schema, cached)

	cache.Infer(context.Background(), "link:targets:create")
	assert.Equal(t, int32(1), calls.Load())
}

func TestSchemaCache_CallerCancellationDoesNotPoisonCache(t *testing.T) {
	tests := []struct {
		name   string
		cancel bool
	}{
		{name: "live caller", cancel: false},
		{name: "canceled caller", cancel: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			cache := NewSchemaCache(func(ctx context.Context, subcommand string) (string, error) {
				calls.Add(1)
				if err := ctx.Err(); err != nil {
					return "", err
				}
				return targetsCreateHelp, nil
			}, nil)

			ctx, cancel := context.WithCancel(context.Background())
			if tt.cancel {
				cancel()
			} else {
				defer cancel()
			}

			schema := cache.Infer(ctx, "link:targets:create")
			assert.True(t, schema.Flags.App, "help text was read despite the caller context")

			cached, ok := cache.Cached("link:targets:create")
			require.True(t, ok)
			assert.Equal(t, schema, cached)
			assert.Equal(t, int32(1), calls.Load())
		})
	}
}

func TestSchemaCache_StaticOverridesWinFieldByField(t *testing.T) {
	help := "USAGE\n  $ fleet link:authorizations:add NAME\n\nGLOBAL FLAGS\n  -a, --app=<value>  app\n  --developer-name=<value>\n"
	fetch, calls := countingFetcher(help, nil)
	cache := NewSchemaCache(fetch, nil)

	schema := cache.Infer(context.Background(), "link:authorizations:add")
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, schema.AppRequired, "static value wins over the help text")
	assert.True(t, schema.Flags.App)
	assert.True(t, schema.Flags.DeveloperName, "inferred value kept where static is unset")
}

func TestSchemaFromHelp(t *testing.T) {
	tests := []struct {
		name  string
		help  string
		broad bool
		want  Schema
	}{
		{
			name: "strict required annotation",
			help: targetsCreateHelp,
			want: Schema{
				AppRequired:  true,
				SupportsJSON: true,
				Flags:        OptionalFlags{App: true, ConnectionName: true, DeveloperName: true},
			},
		},
		{
			name: "strict optional usage group and lookalike flag",
			help: jobsHelp,
			want: Schema{
				Flags: OptionalFlags{App: true, Addon: true},
			},
		},
		{
			name:  "broad matching",
			help:  jobsHelp,
			broad: true,
			want: Schema{
				AppRequired:  true,
				SupportsJSON: true,
				Flags:        OptionalFlags{App: true, Addon: true},
			},
		},
		{
			name: "usage line without brackets",
			help: "usage: fleet link:publish -a APP --authorization-name NAME\n",
			want: Schema{
				AppRequired: true,
				Flags:       OptionalFlags{App: true, AuthorizationName: true},
			},
		},
		{
			name: "empty help",
			help: "",
			want: Schema{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := schemaFromHelp("link:test", tt.help, tt.broad)
			tt.want.Subcommand = "link:test"
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMentionsFlag(t *testing.T) {
	tests := []struct {
		text string
		flag string
		want bool
	}{
		{"  -a, --app=<value>", "-a", true},
		{"  -a, --app=<value>", "--app", true},
		{"  --addon=<value>", "-a", false},
		{"  --apple", "--app", false},
		{"[--json]", "--json", true},
		{"--jsonl", "--json", false},
		{"--JSON", "--json", false},
	}
	for _, tt := range tests {
		t.Run(tt.text+"/"+tt.flag, func(t *testing.T) {
			assert.Equal(t, tt.want, mentionsFlag(tt.text, tt.flag))
		})
	}
}

func TestSchema_CredentialFlag(t *testing.T) {
	assert.Equal(t, "", Schema{}.CredentialFlag())
	assert.Equal(t, FlagAuthorizationName, Schema{Flags: OptionalFlags{AuthorizationName: true}}.CredentialFlag())
	assert.Equal(t, FlagDeveloperName, Schema{Flags: OptionalFlags{AuthorizationName: true, DeveloperName: true}}.CredentialFlag())
}
