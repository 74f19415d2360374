package version

// Version is the current mbench version, overridable at build time via
// -ldflags "-X github.com/slittycode/model-benchmark/pkg/version.Version=...".
var Version = "0.3.0"
