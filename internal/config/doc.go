// Package config provides the user-editable settings for fleetdeck.
//
// Settings live in a single YAML file. The default location is
// ~/.config/fleetdeck/config.yaml; commands accept --config-path to point at
// another directory.
//
// # Read At Point Of Use
//
// Settings are never cached. Store.Settings re-reads the file every time so a
// value edited by `fleetdeck config set`, by hand, or by another fleetdeck
// process takes effect on the next invocation of the fleet tool.
//
// # Configuration Structure
//
//	cliPath: fleet                 # fleet binary (default: fleet from PATH)
//	defaultApp: my-app             # passed as -a when a subcommand needs an app
//	defaultAddon: link-prod        # --addon
//	defaultConnection: prod-org    # --connection-name
//	defaultAuthorization: ci-user  # --developer-name (or --authorization-name)
//	debugTracing: true             # sets FLEET_DEBUG for structured list output
//	verboseLogging: false          # echo the exact command line and raw output
//	clientId: ""                   # FLEET_LINK_CLIENT_ID for link:authorizations:add
//	clientSecret: ""               # FLEET_LINK_CLIENT_SECRET for link:authorizations:add
//	schemaMatch: strict            # strict or broad help text matching
//	logFile: ""                    # mirror the output channel into this file
//
// # Usage
//
//	path, err := config.GetDefaultConfigPath()
//	if err != nil {
//	    return err
//	}
//	store := config.NewStore(path)
//	settings, err := store.Settings()
//	if err != nil {
//	    return err
//	}
//	fmt.Println(settings.DefaultApp)
//
//	err = store.Set("defaultApp", "billing-api")
//
// Watcher reports edits to the file so long-running hosts can refresh their
// status indicator.
package config
