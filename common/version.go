package common

// PackageName tags metrics and logs emitted by this service.
const PackageName = "quillpress"

// Version is set at build time via -ldflags.
var Version = "dev"
