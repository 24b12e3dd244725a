// Command admin is an operator's tool for a running server and its data
// directory: list live rooms over HTTP, and inspect or reset the saved
// player progress database directly.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "rooms":
			roomsCmd(os.Args[2:])
			return
		case "progress":
			progressCmd(os.Args[2:])
			return
		case "logs":
			logsCmd(os.Args[2:])
			return
		}
	}
	fmt.Fprintln(os.Stderr, "usage: admin <rooms|progress|logs> [flags]")
	os.Exit(2)
}
