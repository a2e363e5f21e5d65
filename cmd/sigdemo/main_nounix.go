//go:build !unix

package main

import (
	"fmt"
	"os"
	"runtime"

	"tools.zach/dev/sigdemo/internal/paths"
)

func main() {
	fmt.Fprintf(os.Stderr, "%s %s needs a POSIX signal model and cannot run on %s\n",
		paths.BinaryName, resolveVersion(), runtime.GOOS)
	os.Exit(1)
}
