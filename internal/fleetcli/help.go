package fleetcli

import (
	"strings"
)

// schemaFromHelp scans the help text of subcommand for the flags it accepts.
// broad selects substring matching instead of exact tokens.
func schemaFromHelp(subcommand, help string, broad bool) Schema {
	mentions := mentionsFlag
	required := appMarkedRequired
	if broad {
		mentions = mentionsFlagBroad
		required = appMarkedRequiredBroad
	}

	return Schema{
		Subcommand:   subcommand,
		AppRequired:  required(help),
		SupportsJSON: mentions(help, FlagJSON),
		Flags: OptionalFlags{
			App:               mentions(help, FlagAppLong) || mentions(help, FlagApp),
			Addon:             mentions(help, FlagAddon),
			ConnectionName:    mentions(help, FlagConnectionName),
			AuthorizationName: mentions(help, FlagAuthorizationName),
			DeveloperName:     mentionsFlagFold(help, FlagDeveloperName),
		},
	}
}

// isFlagBoundary reports whether r may sit next to a flag token without
// being part of it.
func isFlagBoundary(r byte) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	case r == '-' || r == '_':
		return false
	}
	return true
}

// mentionsFlag reports whether text contains flag as a whole token, case
// sensitive. "--app" does not match inside "--apple" and "-a" does not match
// inside "--addon".
func mentionsFlag(text, flag string) bool {
	for offset := 0; offset < len(text); {
		i := strings.Index(text[offset:], flag)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(flag)
		before := start == 0 || isFlagBoundary(text[start-1])
		after := end == len(text) || isFlagBoundary(text[end])
		if before && after {
			return true
		}
		offset = start + 1
	}
	return false
}

// mentionsFlagBroad reports whether flag appears anywhere in text.
func mentionsFlagBroad(text, flag string) bool {
	return strings.Contains(text, flag)
}

// mentionsFlagFold is a case-insensitive substring match. The renamed
// developer flag is printed in mixed case by some plugin versions.
func mentionsFlagFold(text, flag string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(flag))
}

// mentionsApp reports whether line names the app flag in either form.
func mentionsApp(line string) bool {
	return mentionsFlag(line, FlagApp) || mentionsFlag(line, FlagAppLong)
}

// isUsageLine reports whether line begins with "usage:", ignoring case and
// leading whitespace.
func isUsageLine(line string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "usage:")
}

// stripOptionalGroups removes bracketed sections such as "[-a <value>]",
// which mark optional arguments on a usage line.
func stripOptionalGroups(line string) string {
	var b strings.Builder
	depth := 0
	for _, r := range line {
		switch {
		case r == '[':
			depth++
		case r == ']' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// appMarkedRequired reports whether the help marks -a as mandatory: either a
// line naming the flag also says "required", or a usage line names the flag
// outside of an optional group.
func appMarkedRequired(help string) bool {
	for _, line := range strings.Split(help, "\n") {
		if !mentionsApp(line) {
			continue
		}
		if strings.Contains(strings.ToLower(line), "required") {
			return true
		}
		if isUsageLine(line) && mentionsApp(stripOptionalGroups(line)) {
			return true
		}
	}
	return false
}

// appMarkedRequiredBroad reports whether the help says "required" anywhere
// and mentions the app flag anywhere.
func appMarkedRequiredBroad(help string) bool {
	lower := strings.ToLower(help)
	if !strings.Contains(lower, "required") {
		return false
	}
	return mentionsFlagBroad(help, FlagApp) || mentionsFlagBroad(help, FlagAppLong)
}
