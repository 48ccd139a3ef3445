package buildinfo

import "runtime/debug"

// BinaryVersion is set at build time via -ldflags
// "-X github.com/fulmenhq/execmanifest/pkg/buildinfo.BinaryVersion=v1.2.3". Defaults to "dev".
var BinaryVersion = "dev"

// ModuleVersion returns the module version embedded by the Go toolchain (when available).
func ModuleVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return ""
}

// Version is what --version prints: the ldflags value when one was injected,
// else the module version from `go install module@version`, else "dev".
func Version() string {
	if BinaryVersion != "" && BinaryVersion != "dev" {
		return BinaryVersion
	}
	if v := ModuleVersion(); v != "" && v != "(devel)" {
		return v
	}
	return "dev"
}
