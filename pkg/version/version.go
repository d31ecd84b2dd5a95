package version

// Version is the application version, set at build time via ldflags.
// Example: go build -ldflags "-X github.com/hearthbooks/hearth/pkg/version.Version=1.0.0".
// It is stamped onto library items as scanVersion whenever a scan changes them.
var Version = "dev"
