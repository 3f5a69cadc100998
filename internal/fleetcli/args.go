package fleetcli

import (
	"strings"
)

// Defaults are the standing values used to populate optional flags.
type Defaults struct {
	Addon         string
	Connection    string
	Authorization string
}

// ArgsInput is everything BuildArgs needs to assemble a command line.
type ArgsInput struct {
	Subcommand  string
	Positionals []string
	App         string
	Schema      Schema
	Defaults    Defaults
	// Trailing is the user's free-form text, already tokenized.
	Trailing []string
}

// ArgsPlan is an assembled command line. Stripped lists the trailing tokens
// removed because the subcommand no longer accepts them.
type ArgsPlan struct {
	Args     []string
	Stripped []string
}

// BuildArgs assembles the argument vector: subcommand, positionals, -a app,
// the optional flags the schema permits filled from defaults, then the
// trailing tokens. A flag already present in the trailing tokens or already
// added is not added again.
func BuildArgs(in ArgsInput) ArgsPlan {
	trailing, stripped := stripDeprecated(in.Trailing, in.Schema)

	args := make([]string, 0, 2+len(in.Positionals)+8+len(trailing))
	args = append(args, in.Subcommand)
	for _, p := range in.Positionals {
		if p != "" {
			args = append(args, p)
		}
	}

	has := func(flags ...string) bool {
		for _, f := range flags {
			if containsFlag(args, f) || containsFlag(trailing, f) {
				return true
			}
		}
		return false
	}
	add := func(value string, flag string, aliases ...string) {
		if value == "" || has(append([]string{flag}, aliases...)...) {
			return
		}
		args = append(args, flag, value)
	}

	if in.Schema.AcceptsApp() {
		add(in.App, FlagApp, FlagAppLong)
	}
	if in.Schema.Flags.Addon {
		add(in.Defaults.Addon, FlagAddon)
	}
	if in.Schema.Flags.ConnectionName {
		add(in.Defaults.Connection, FlagConnectionName)
	}
	if flag := in.Schema.CredentialFlag(); flag != "" {
		add(in.Defaults.Authorization, flag)
	}

	args = append(args, trailing...)
	return ArgsPlan{Args: args, Stripped: stripped}
}

// containsFlag reports whether tokens hold flag as "flag" or "flag=value".
func containsFlag(tokens []string, flag string) bool {
	for _, t := range tokens {
		if t == flag || strings.HasPrefix(t, flag+"=") {
			return true
		}
	}
	return false
}

// stripDeprecated removes --authorization-name and its value from tokens
// when the subcommand has moved to --developer-name.
func stripDeprecated(tokens []string, schema Schema) (kept, stripped []string) {
	if !schema.Flags.DeveloperName {
		return tokens, nil
	}
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		switch {
		case strings.HasPrefix(t, FlagAuthorizationName+"="):
			stripped = append(stripped, t)
		case t == FlagAuthorizationName:
			stripped = append(stripped, t)
			if i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "-") {
				i++
				stripped = append(stripped, tokens[i])
			}
		default:
			kept = append(kept, t)
		}
	}
	return kept, stripped
}
