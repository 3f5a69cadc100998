package config

import (
	"sort"
	"strconv"
	"strings"
	"sync"
)

// settingKey binds a config key name to its field in Settings.
type settingKey struct {
	name        string
	description string
	secret      bool
	get         func(s *Settings) string
	set         func(s *Settings, value string) error
}

func stringKey(name, description string, field func(s *Settings) *string) settingKey {
	return settingKey{
		name:        name,
		description: description,
		get:         func(s *Settings) string { return *field(s) },
		set: func(s *Settings, value string) error {
			*field(s) = value
			return nil
		},
	}
}

func boolKey(name, description string, field func(s *Settings) *bool) settingKey {
	return settingKey{
		name:        name,
		description: description,
		get:         func(s *Settings) string { return strconv.FormatBool(*field(s)) },
		set: func(s *Settings, value string) error {
			if value == "" {
				*field(s) = false
				return nil
			}
			b, err := strconv.ParseBool(value)
			if err != nil {
				return &InvalidValueError{Key: name, Value: value, Reason: "must be true or false"}
			}
			*field(s) = b
			return nil
		},
	}
}

var settingKeys = []settingKey{
	stringKey("cliPath", "fleet binary to execute", func(s *Settings) *string { return &s.CLIPath }),
	stringKey("defaultApp", "app passed with -a", func(s *Settings) *string { return &s.DefaultApp }),
	stringKey("defaultAddon", "add-on passed with --addon", func(s *Settings) *string { return &s.DefaultAddon }),
	stringKey("defaultConnection", "connection passed with --connection-name", func(s *Settings) *string { return &s.DefaultConnection }),
	stringKey("defaultAuthorization", "authorization passed with --developer-name", func(s *Settings) *string { return &s.DefaultAuthorization }),
	boolKey("debugTracing", "set FLEET_DEBUG so list output carries a JSON dump", func(s *Settings) *bool { return &s.DebugTracing }),
	boolKey("verboseLogging", "echo command lines and raw output", func(s *Settings) *bool { return &s.VerboseLogging }),
	{
		name:        "clientId",
		description: "FLEET_LINK_CLIENT_ID for link:authorizations:add",
		get:         func(s *Settings) string { return s.ClientID },
		set:         func(s *Settings, v string) error { s.ClientID = v; return nil },
	},
	{
		name:        "clientSecret",
		description: "FLEET_LINK_CLIENT_SECRET for link:authorizations:add",
		secret:      true,
		get:         func(s *Settings) string { return s.ClientSecret },
		set:         func(s *Settings, v string) error { s.ClientSecret = v; return nil },
	},
	{
		name:        "schemaMatch",
		description: "help text matching: strict or broad",
		get:         func(s *Settings) string { return string(s.SchemaMatch) },
		set: func(s *Settings, v string) error {
			m := SchemaMatch(strings.ToLower(v))
			if m != SchemaMatchStrict && m != SchemaMatchBroad && m != "" {
				return &InvalidValueError{Key: "schemaMatch", Value: v, Reason: "must be strict or broad"}
			}
			s.SchemaMatch = m
			return nil
		},
	},
	stringKey("logFile", "mirror the output channel into this file", func(s *Settings) *string { return &s.LogFile }),
}

func lookupKey(name string) (settingKey, bool) {
	for _, k := range settingKeys {
		if strings.EqualFold(k.name, name) {
			return k, true
		}
	}
	return settingKey{}, false
}

// Keys returns every setting name, sorted.
func Keys() []string {
	names := make([]string, 0, len(settingKeys))
	for _, k := range settingKeys {
		names = append(names, k.name)
	}
	sort.Strings(names)
	return names
}

// Describe returns the one-line help for a setting key.
func Describe(key string) string {
	if k, ok := lookupKey(key); ok {
		return k.description
	}
	return ""
}

// IsSecret reports whether key holds a credential that is masked on display.
func IsSecret(key string) bool {
	k, ok := lookupKey(key)
	return ok && k.secret
}

// Entry is one row of Store.List.
type Entry struct {
	Key         string
	Value       string
	Description string
}

// Store reads and writes settings in one config directory.
// It holds no copy of the settings; each call goes to disk.
type Store struct {
	mu         sync.Mutex
	configPath string
}

// NewStore creates a store for configPath.
func NewStore(configPath string) *Store {
	return &Store{configPath: configPath}
}

// Path returns the config directory.
func (s *Store) Path() string {
	return s.configPath
}

// File returns the settings file.
func (s *Store) File() string {
	return ConfigFilePath(s.configPath)
}

// Settings loads the current settings from disk.
func (s *Store) Settings() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return LoadSettings(s.configPath)
}

// Get returns the current value of key.
func (s *Store) Get(key string) (string, error) {
	k, ok := lookupKey(key)
	if !ok {
		return "", &UnknownKeyError{Key: key}
	}
	settings, err := s.Settings()
	if err != nil {
		return "", err
	}
	return k.get(&settings), nil
}

// Set stores value under key. An empty value clears the setting.
func (s *Store) Set(key, value string) error {
	k, ok := lookupKey(key)
	if !ok {
		return &UnknownKeyError{Key: key}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := LoadSettings(s.configPath)
	if err != nil {
		return err
	}
	if err := k.set(&settings, strings.TrimSpace(value)); err != nil {
		return err
	}
	return SaveSettings(s.configPath, settings)
}

// List returns all settings with secrets masked.
func (s *Store) List() ([]Entry, error) {
	settings, err := s.Settings()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(settingKeys))
	for _, k := range settingKeys {
		value := k.get(&settings)
		if k.secret && value != "" {
			value = "********"
		}
		entries = append(entries, Entry{Key: k.name, Value: value, Description: k.description})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}
