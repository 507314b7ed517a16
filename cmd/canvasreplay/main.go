// Command canvasreplay records diagram editing sessions and replays them.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/canvasreplay/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
