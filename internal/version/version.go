package version

// Version is the semantic version of the binary, overridable at build time
// with -ldflags "-X .../internal/version.Version=...".
var Version = "0.3.0-dev"
