package version

// version is set at build time with -ldflags "-X ...version.version=v1.2.3"
var version = "dev"

// Get returns the build version string.
func Get() string {
	return version
}
