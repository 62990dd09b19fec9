package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/BaSui01/mascotctl/api"
)

var (
	serverAddr    string
	clientTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "mascotctl",
	Short: "Desktop mascot control server",
	Long: `mascotctl runs the loopback HTTP control plane of the desktop mascot.

The web UI uses it to play voices and to shut the mascot down. Every
request is marshalled onto the host thread, which owns all audio state.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverAddr, "addr", "127.0.0.1:8080", "Control server address used by client commands")
	rootCmd.PersistentFlags().DurationVar(&clientTimeout, "timeout", 10*time.Second, "Client request timeout")
}

func newClient() *api.Client {
	return api.NewClient(serverAddr, clientTimeout)
}
