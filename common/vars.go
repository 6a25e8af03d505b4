package common

// PackageName identifies this project in metric namespaces and service tags.
const PackageName = "stowage"

// Version is set during the build process via ldflags.
var Version = "dev"
