package fleetcli

import "os/exec"

// execCommandContext and lookPath are variables so tests can replace process
// creation with a helper process.
var (
	execCommandContext = exec.CommandContext
	lookPath           = exec.LookPath
)
