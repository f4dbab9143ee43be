package cmd

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"webview-cli/pkg/models"
)

var infoRaw bool

type infoOutput struct {
	State        models.TypedState       `json:"state"`
	Capabilities models.Capabilities     `json:"capabilities"`
	Lists        models.EnumerationLists `json:"lists,omitempty"`
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Poll info.cgi once and show the camera state",
	Run: func(cmd *cobra.Command, args []string) {
		sess, log := openSession()
		defer sess.Close()

		ctx, cancel := commandContext()
		defer cancel()
		if err := sess.Poll(ctx); err != nil {
			log.Error().Err(err).Msg("poll failed")
			os.Exit(1)
		}

		out := infoOutput{
			State:        sess.TypedState(),
			Capabilities: sess.Capabilities(),
			Lists:        sess.Lists(),
		}

		if infoRaw {
			raw := sess.RawSnapshot()
			if jsonOutput {
				printJSON(raw)
				return
			}
			keys := make([]string, 0, len(raw))
			for k := range raw {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			for _, k := range keys {
				fmt.Fprintf(w, "%s\t%s\n", k, raw[k])
			}
			w.Flush()
			return
		}

		if jsonOutput {
			printJSON(out)
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "FIELD\tVALUE")
		fmt.Fprintln(w, "-----\t-----")
		for _, v := range sess.Variables() {
			fmt.Fprintf(w, "%s\t%s\n", v.Name, sess.Raw(v.FromKey))
		}
		fmt.Fprintf(w, "PTZ\t%s\n", strconv.FormatBool(out.Capabilities.SupportsPTZ))
		fmt.Fprintf(w, "Zoom\t%s\n", strconv.FormatBool(out.Capabilities.SupportsZoom))
		fmt.Fprintf(w, "Native presets\t%s\n", strconv.FormatBool(out.Capabilities.SupportsNativePresets))
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().BoolVar(&infoRaw, "raw", false, "Print every info.cgi key instead of the typed view")
}
