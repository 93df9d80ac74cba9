// Package buildinfo reports the version of the hc-state binary.
//
// Release builds inject the values with
//
//	go build -ldflags "-X github.com/yndnr/hcstate-go/internal/infra/buildinfo.Version=0.3.0 \
//	  -X github.com/yndnr/hcstate-go/internal/infra/buildinfo.Commit=$(git rev-parse HEAD)"
//
// Anything not injected is taken from the VCS stamp the Go toolchain embeds.
package buildinfo
