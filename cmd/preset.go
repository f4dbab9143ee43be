package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var presetName string

// Parent Command
var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Recall or store on-camera presets",
	Long: `Recalls or stores the camera's native presets (slots 1-20). Session-local
position presets are only available through 'webview-cli serve'.`,
}

var presetRecallCmd = &cobra.Command{
	Use:   "recall <slot>",
	Short: "Move to a stored native preset",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		issue("native_preset_recall", map[string]string{"slot": args[0]}, true)
		fmt.Printf("Preset %s recalled.\n", args[0])
	},
}

var presetSaveCmd = &cobra.Command{
	Use:     "save <slot>",
	Short:   "Store the current position and image settings as a native preset",
	Example: `  webview-cli preset save 5 --name "Stage Left"`,
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		issue("native_preset_save", map[string]string{"slot": args[0], "name": presetName}, true)
		fmt.Printf("Preset %s saved.\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(presetCmd)
	presetCmd.AddCommand(presetRecallCmd)
	presetCmd.AddCommand(presetSaveCmd)

	presetSaveCmd.Flags().StringVar(&presetName, "name", "", `Preset name (default "Preset <slot>")`)
}
