// Command mahallectl is the operator CLI for mahallehub: schema setup,
// citizen imports, assignment administration, account provisioning and
// manual task runs.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
