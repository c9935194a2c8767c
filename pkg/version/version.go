// Package version holds the build version, overridden at link time with
// -ldflags "-X github.com/vanderheijden86/lineweave/pkg/version.Version=...".
package version

// Version is the current lineweave version.
var Version = "dev"
