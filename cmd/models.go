package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"webview-cli/pkg/models"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List supported camera models and their capabilities",
	Run: func(cmd *cobra.Command, args []string) {
		if jsonOutput {
			type entry struct {
				models.Model
				Capabilities models.Series `json:"capabilities"`
			}
			var out []entry
			for _, m := range models.Models {
				out = append(out, entry{Model: m, Capabilities: models.LookupSeries(m.ID)})
			}
			printJSON(out)
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tLABEL\tPTZ\tZOOM\tNATIVE PRESETS\tPOSITION PRESETS")
		fmt.Fprintln(w, "--\t-----\t---\t----\t--------------\t----------------")
		for _, m := range models.Models {
			s := models.LookupSeries(m.ID)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				m.ID,
				m.Label,
				s.SupportsPTZ,
				s.SupportsZoom,
				s.SupportsNativePresets,
				s.SupportsPositionPresets,
			)
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
