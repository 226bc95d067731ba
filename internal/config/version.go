package config

// Version is the DCB clustering service binary version.
// Set at build time via: -ldflags "-X github.com/openlibraryenvironment/dcb-clustering/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
