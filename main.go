// The main package for the portalwatch executable.
package main

import (
	"github.com/cividex/portalwatch/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
