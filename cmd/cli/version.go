package cli

import (
	"context"
	"runtime/debug"
	"strings"
)

const (
	unknownVersionConstant = "unknown"
	develVersionConstant   = "(devel)"
)

// Version is set at build time with -ldflags "-X github.com/temirov/siteguard/cmd/cli.Version=v1.2.3".
var Version = ""

func resolveVersion(context.Context) string {
	if trimmedVersion := strings.TrimSpace(Version); len(trimmedVersion) > 0 {
		return trimmedVersion
	}

	buildInformation, available := debug.ReadBuildInfo()
	if !available {
		return unknownVersionConstant
	}

	moduleVersion := strings.TrimSpace(buildInformation.Main.Version)
	if len(moduleVersion) == 0 || moduleVersion == develVersionConstant {
		return unknownVersionConstant
	}
	return moduleVersion
}
