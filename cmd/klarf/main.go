// Command klarf inspects wafer inspection (KLARF) reports.
package main

import (
	"os"

	"gioui.org/app"

	"github.com/OpenTraceLab/OpenTraceKlarf/cmd/klarf/cmd"
)

func main() {
	// Gio needs the main goroutine; commands run beside it and end the
	// process when they return.
	go func() {
		os.Exit(cmd.Execute())
	}()
	app.Main()
}
