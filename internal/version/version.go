// Package version carries the build-time version stamp.
package version

// Version is set via ldflags at build time:
// -ldflags "-X github.com/Galtar27/PSMoveService/internal/version.Version=x.y.z"
var Version = ""

// Get returns the stamped version, or a development placeholder when the
// binary was built without one.
func Get() string {
	if Version == "" {
		return "0.0.1-dev"
	}
	return Version
}
