// +build tools

package scfg

// Tools used with go:generate, tracked in go.mod.
import (
	_ "golang.org/x/tools/cmd/stringer"
)
