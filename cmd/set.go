package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"webview-cli/internal/command"
)

// settingAliases maps short CLI names to setter commands.
var settingAliases = map[string]command.Setting{
	"exposure":   command.ExposureMode,
	"wb":         command.WhiteBalance,
	"photometry": command.Photometry,
	"brightness": command.AEBrightness,
	"shutter":    command.Shutter,
	"iris":       command.Iris,
	"gain":       command.Gain,
	"focus":      command.FocusMode,
}

func settingNames() []string {
	names := make([]string, 0, len(settingAliases))
	for n := range settingAliases {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var setCmd = &cobra.Command{
	Use:   "set <setting> <value>",
	Short: "Set an exposure, white balance or focus control",
	Long: `Writes one absolute control value through control.cgi.

Settings: ` + strings.Join(settingNames(), ", ") + `.
Valid values are the codes listed by 'webview-cli info --json' under "lists".`,
	Example: `  webview-cli set exposure manual
  webview-cli set shutter 1/250`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		st, ok := settingAliases[strings.ToLower(args[0])]
		if !ok {
			fmt.Printf("Error: unknown setting %q (one of %s)\n", args[0], strings.Join(settingNames(), ", "))
			os.Exit(1)
		}
		issue(st.Name, map[string]string{"value": args[1]}, false)
		fmt.Println("Success.")
	},
}

var powerCmd = &cobra.Command{
	Use:       "power <on|off|idle|standby>",
	Short:     "Switch the camera between idle and standby",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off", "idle", "standby"},
	Run: func(cmd *cobra.Command, args []string) {
		issue("power", map[string]string{"state": strings.ToLower(args[0])}, false)
		fmt.Println("Success.")
	},
}

func init() {
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(powerCmd)
}
