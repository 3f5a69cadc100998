package fleetcli

import (
	"sort"
	"strings"

	"fleetdeck/internal/config"
)

// Environment variables read by the fleet tool.
const (
	EnvDebug        = "FLEET_DEBUG"
	EnvClientID     = "FLEET_LINK_CLIENT_ID"
	EnvClientSecret = "FLEET_LINK_CLIENT_SECRET"

	debugTraceValue = "link:http"

	// credentialSubcommand is the only subcommand that receives the client
	// credential overrides.
	credentialSubcommand = "link:authorizations:add"
)

// EnvOverrides returns the variables settings add for subcommand.
func EnvOverrides(subcommand string, settings config.Settings) map[string]string {
	overrides := map[string]string{}
	if settings.DebugTracing {
		overrides[EnvDebug] = debugTraceValue
	}
	if subcommand == credentialSubcommand {
		if settings.ClientID != "" {
			overrides[EnvClientID] = settings.ClientID
		}
		if settings.ClientSecret != "" {
			overrides[EnvClientSecret] = settings.ClientSecret
		}
	}
	return overrides
}

// MergeEnv returns base with overrides applied. Overridden keys replace
// existing entries in place; new keys are appended in sorted order.
func MergeEnv(base []string, overrides map[string]string) []string {
	merged := make([]string, 0, len(base)+len(overrides))
	applied := make(map[string]bool, len(overrides))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if v, ok := overrides[key]; ok {
			if !applied[key] {
				merged = append(merged, key+"="+v)
				applied[key] = true
			}
			continue
		}
		merged = append(merged, kv)
	}
	for _, key := range sortedKeys(overrides) {
		if !applied[key] {
			merged = append(merged, key+"="+overrides[key])
		}
	}
	return merged
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
