package surface

import (
	"fmt"
	"strconv"

	"webview-cli/pkg/models"
)

func button(category, name, text, down, up string, opts map[string]string) Button {
	b := Button{
		ID:       down,
		Category: category,
		Name:     name,
		Text:     text,
		Down:     ActionRef{ActionID: down, Options: opts},
	}
	if up != "" {
		b.Up = &ActionRef{ActionID: up}
	}
	return b
}

// buildPresets lays out ready-made buttons. Movement buttons stop on release.
func buildPresets(caps models.Capabilities) []Button {
	var out []Button

	if caps.SupportsPTZ && caps.SupportsNativePresets {
		for i := 1; i <= 10; i++ {
			slot := strconv.Itoa(i)
			recall := button("Presets", "Preset Recall "+slot, "Recall\n"+slot, "native_preset_recall", "", map[string]string{"slot": slot})
			recall.ID = "native_preset_recall_" + slot
			save := button("Presets", "Preset Save "+slot, "Save\n"+slot, "native_preset_save", "",
				map[string]string{"slot": slot, "name": fmt.Sprintf("Preset %d", i)})
			save.ID = "native_preset_save_" + slot
			out = append(out, recall, save)
		}
	}

	if caps.SupportsPTZ {
		out = append(out,
			button("Pan/Tilt", "Pan/Tilt - Up", "UP", "pt_up", "pt_stop_tilt", nil),
			button("Pan/Tilt", "Pan/Tilt - Down", "DOWN", "pt_down", "pt_stop_tilt", nil),
			button("Pan/Tilt", "Pan/Tilt - Left", "LEFT", "pt_left", "pt_stop_pan", nil),
			button("Pan/Tilt", "Pan/Tilt - Right", "RIGHT", "pt_right", "pt_stop_pan", nil),
			button("Pan/Tilt", "Pan/Tilt - Up Left", "UP\nLEFT", "pt_up_left", "pt_stop", nil),
			button("Pan/Tilt", "Pan/Tilt - Up Right", "UP\nRIGHT", "pt_up_right", "pt_stop", nil),
			button("Pan/Tilt", "Pan/Tilt - Down Left", "DOWN\nLEFT", "pt_down_left", "pt_stop", nil),
			button("Pan/Tilt", "Pan/Tilt - Down Right", "DOWN\nRIGHT", "pt_down_right", "pt_stop", nil),
			button("Pan/Tilt", "Pan/Tilt - Stop", "STOP", "pt_stop", "", nil),
			button("Pan/Tilt", "Pan/Tilt - Home", "HOME", "pt_home", "", nil),
		)
	}

	if caps.SupportsZoom {
		out = append(out,
			button("Lens", "Zoom - In", "ZOOM\nIN", "zoom_in", "zoom_stop", nil),
			button("Lens", "Zoom - Out", "ZOOM\nOUT", "zoom_out", "zoom_stop", nil),
			button("Lens", "Zoom - Stop", "ZOOM\nSTOP", "zoom_stop", "", nil),
		)
	}

	if caps.SupportsZoom || caps.SupportsPTZ {
		out = append(out,
			button("Lens", "Focus - Near", "FOCUS\nNEAR", "focus_near", "focus_stop", nil),
			button("Lens", "Focus - Far", "FOCUS\nFAR", "focus_far", "focus_stop", nil),
			button("Lens", "Focus - Stop", "FOCUS\nSTOP", "focus_stop", "", nil),
			button("Lens", "One Shot AF", "One Shot\nAF", "autofocus_one_shot", "", nil),
		)
	}
	return out
}
