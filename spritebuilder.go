// Package spritebuilder turns generated sprite art into game assets:
// background removal, normalization onto fixed canvases, palette variants by
// hue shifting, pixelation and sprite sheet assembly.
//
// Every step is a batch over a flat directory of PNG files. Files follow
// <kind>_<subject>_<direction>_<frame>.png for animated subjects and
// <name>.png for buildings. Sheets are <kind>_<subject>_sheet.png.
package spritebuilder

import (
	"github.com/setanarut/spritebuilder/internal/logging"
)

// SetLogLevel sets the log level by name: debug, info, warning, error or
// none.
func SetLogLevel(name string) error {
	l, err := logging.ParseLevel(name)
	if err != nil {
		return err
	}
	logging.SetLevel(l)
	return nil
}
