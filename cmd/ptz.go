package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"webview-cli/internal/command"
)

var (
	moveHold  time.Duration
	moveSpeed int
)

// momentary sends start, waits hold, then sends stop within one session.
func momentary(start, stop string, opts map[string]string) {
	sess, _ := openSession()
	defer sess.Close()

	ctx, cancel := commandContext()
	defer cancel()

	if err := sess.IssueCommand(ctx, start, opts); err != nil {
		os.Exit(1)
	}
	time.Sleep(moveHold)
	if err := sess.IssueCommand(ctx, stop, nil); err != nil {
		os.Exit(1)
	}
}

func speedOpts() map[string]string {
	if moveSpeed <= 0 {
		return nil
	}
	return map[string]string{"speed": strconv.Itoa(moveSpeed)}
}

var ptzCmd = &cobra.Command{
	Use:   "ptz <direction|stop|home>",
	Short: "Pan/tilt the camera",
	Long: `Moves the camera for --hold, then stops the moving axes.

Directions: up, down, left, right, up_left, up_right, down_left, down_right.`,
	Example: `  webview-cli ptz left --hold 500ms
  webview-cli ptz home`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		arg := strings.ToLower(args[0])
		switch arg {
		case "stop":
			issue("pt_stop", nil, false)
			return
		case "home":
			issue("pt_home", nil, false)
			return
		}

		dir := command.Direction(strings.ReplaceAll(arg, "-", "_"))
		m, err := command.PanTilt(dir, moveSpeed)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		stop := "pt_stop"
		switch m.Stop {
		case command.Stop(command.StopPan):
			stop = "pt_stop_pan"
		case command.Stop(command.StopTilt):
			stop = "pt_stop_tilt"
		}
		momentary("pt_"+string(dir), stop, speedOpts())
	},
}

var zoomCmd = &cobra.Command{
	Use:       "zoom <in|out|stop>",
	Short:     "Zoom the lens",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"in", "out", "stop"},
	Run: func(cmd *cobra.Command, args []string) {
		switch strings.ToLower(args[0]) {
		case "in":
			momentary("zoom_in", "zoom_stop", speedOpts())
		case "out":
			momentary("zoom_out", "zoom_stop", speedOpts())
		case "stop":
			issue("zoom_stop", nil, false)
		default:
			fmt.Printf("Error: unknown zoom action %q\n", args[0])
			os.Exit(1)
		}
	},
}

var focusCmd = &cobra.Command{
	Use:       "focus <near|far|stop|auto>",
	Short:     "Drive focus or trigger one-shot autofocus",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"near", "far", "stop", "auto"},
	Run: func(cmd *cobra.Command, args []string) {
		switch strings.ToLower(args[0]) {
		case "near":
			momentary("focus_near", "focus_stop", nil)
		case "far":
			momentary("focus_far", "focus_stop", nil)
		case "stop":
			issue("focus_stop", nil, false)
		case "auto":
			issue("autofocus_one_shot", nil, false)
		default:
			fmt.Printf("Error: unknown focus action %q\n", args[0])
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(ptzCmd)
	rootCmd.AddCommand(zoomCmd)
	rootCmd.AddCommand(focusCmd)

	for _, c := range []*cobra.Command{ptzCmd, zoomCmd, focusCmd} {
		c.Flags().DurationVar(&moveHold, "hold", 500*time.Millisecond, "How long to keep moving before stopping")
	}
	ptzCmd.Flags().IntVar(&moveSpeed, "speed", 0, "Movement speed (default from config)")
	zoomCmd.Flags().IntVar(&moveSpeed, "speed", 0, "Zoom speed (default from config)")
}
