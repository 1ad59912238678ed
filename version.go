package digest

// Version is the release of the digest module, overridden at link time.
var Version = "0.3.0-dev"
