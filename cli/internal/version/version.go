// Package version carries the CLI version string.
package version

// Version is the odoogen release version. Overridden at build time via
// -ldflags "-X ...".
var Version = "0.3.0"
