package version

// Version is the service version.
// Overridden at build time with -ldflags "-X github.com/hrygo/lmchat/internal/version.Version=...".
var Version = "0.1.0"

// DevVersion is the version reported in dev mode.
var DevVersion = "0.1.0-dev"

// GetCurrentVersion returns the version for the given profile mode.
func GetCurrentVersion(mode string) string {
	if mode == "dev" {
		return DevVersion
	}
	return Version
}
