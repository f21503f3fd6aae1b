// Package version reports build information for seqkit binaries.
//
// Version, commit, branch and build time are set at compile time via
// -ldflags and fall back to the VCS stamps in debug.ReadBuildInfo:
//
//	go build -ldflags "-X github.com/kbukum/seqkit/version.Version=1.0.0" ./cmd/seqdemo
package version
