package version

// Pre-built binaries have this set during build time.
var Version = "v0.1.0-HEAD"
