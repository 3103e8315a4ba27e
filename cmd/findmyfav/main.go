// Command findmyfav ranks a folder of pictures with a resumable
// single-elimination tournament.
package main

import (
	"fmt"
	"os"

	"github.com/isaaclb98/find-my-fav/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "findmyfav:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
