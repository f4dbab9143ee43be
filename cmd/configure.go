package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"webview-cli/internal/config"
	"webview-cli/internal/session"
)

var skipVerify bool

// configureCmd represents the configure command
var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Verify and save camera connection settings",
	Long: `Polls the camera once with the given settings and, if it answers, saves
them to the config file for future commands.

Example:
  webview-cli configure --host 192.168.0.20 --username root --password secret --model VB-H41`,
	Run: func(cmd *cobra.Command, args []string) {
		s := mustSettings()
		log := newLogger(s.Verbose)

		if !skipVerify {
			fmt.Printf("Polling %s as user '%s'...\n", s.Host, s.Username)
			s.PollMS = 0
			sess := session.New(s, session.Options{Logger: log})
			ctx, cancel := commandContext()
			err := sess.Poll(ctx)
			cancel()
			sess.Close()
			if err != nil {
				fmt.Printf("Error: camera did not answer: %v\n", err)
				os.Exit(1)
			}
			st := sess.TypedState()
			fmt.Printf("Found %s %q (firmware %s).\n", st.ModelDetected, st.CameraName, st.FirmwareVersion)
		}

		if err := config.SaveDevice(s); err != nil {
			fmt.Printf("Failed to save configuration file: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Configuration saved. You can now run commands like 'webview-cli info'.")
	},
}

func init() {
	rootCmd.AddCommand(configureCmd)
	configureCmd.Flags().BoolVar(&skipVerify, "no-verify", false, "Save without polling the camera")
}
