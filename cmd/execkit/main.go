// Command execkit runs programs as child processes and captures their output.
package main

import (
	"os"

	"github.com/jmgilman/execkit/internal/cmd"
)

func main() {
	os.Exit(cmd.Main())
}
