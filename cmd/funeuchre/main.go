// Command funeuchre runs the fun-euchre realtime game server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "funeuchre",
	Short: "fun-euchre realtime game server",
	Long: `funeuchre hosts a server-authoritative four-player euchre runtime:
lobby formation, dealing and bidding, trick play, reconnect handling, and
scoring, exposed over HTTP and WebSocket.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
