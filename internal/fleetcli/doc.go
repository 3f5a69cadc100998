// Package fleetcli drives the external fleet tool.
//
// It has three parts:
//
//   - Runner builds an argument vector for a subcommand, prompts for values
//     the subcommand needs, spawns fleet, and streams its output into a Sink.
//   - SchemaCache decides which flags a subcommand accepts. Known subcommands
//     are described by a static table; the rest are read once from
//     `fleet <subcommand> --help` and the answer is cached for the lifetime of
//     the process.
//   - ParseList turns the text printed by list subcommands into Records. It
//     tries a column table, whitespace rows, a JSON array, and finally the
//     JSON dump fleet appends when FLEET_DEBUG is set.
//
// Nothing in this package is fatal to the host: spawn failures, non-zero exit
// codes and unparseable output are reported as values, and a cancelled
// prompt returns ErrCanceled without spawning anything.
//
// # Example
//
//	runner := fleetcli.NewRunner(fleetcli.RunnerOptions{
//	    Settings: store.Settings,
//	    Prompter: prompt.NewTerminal(),
//	    Sink:     channel,
//	})
//	result, err := runner.Run(ctx, fleetcli.Request{
//	    Subcommand:  "link:connections:info",
//	    Positionals: []fleetcli.Positional{{Name: "connection", Prompt: "Connection name", Required: true}},
//	})
//
// Overlapping invocations are allowed and interleave in the Sink; each line
// carries the invocation ID to tell them apart.
package fleetcli
