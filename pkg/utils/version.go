// Package utils holds build metadata for smartread binaries.
package utils

// Set at release time with -ldflags "-X github.com/papercomputeco/smartread/pkg/utils.Version=...".
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)
