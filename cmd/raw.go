package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"webview-cli/internal/client"
)

var rawCmd = &cobra.Command{
	Use:   "raw <cgi>",
	Short: "Send an arbitrary GET and print the response body",
	Long: `Sends a request to the camera. Bare paths are relative to the WebView base
(/-wvhttp-01-/), paths starting with '/' to the camera root, and full URLs are
used as given.`,
	Example: `  webview-cli raw "info.cgi?item=c.1.zoom"
  webview-cli raw /admin/-set-?pt=4`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s := mustSettings()
		log := newLogger(s.Verbose)
		api := client.New(client.ClientConfig{
			Host:     s.Host,
			Port:     s.Port,
			Username: s.Username,
			Password: s.Password,
			Timeout:  s.Timeout(),
		}, log)

		ctx, cancel := commandContext()
		defer cancel()
		res := api.Send(ctx, args[0])
		if !res.OK() {
			fmt.Printf("Error: %v\n", res.Err)
			os.Exit(1)
		}
		if jsonOutput {
			printJSON(res)
			return
		}
		fmt.Print(res.Body)
	},
}

func init() {
	rootCmd.AddCommand(rawCmd)
}
