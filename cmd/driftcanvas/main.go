// driftcanvas is an infinite-canvas sprite playground: drop an image or type
// a prompt, get a background-stripped sprite back, then pan, zoom, drag, and
// remix it in place.
//
// Configuration comes from driftcanvas.yaml next to the binary (optional) and
// the environment; GEMINI_API_KEY is required. Pass a config path as the
// first argument to load a specific file.
package main

import (
	"fmt"
	"os"

	"github.com/phanxgames/driftcanvas"
)

func main() {
	path := ""
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg, err := driftcanvas.LoadConfig(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "driftcanvas:", err)
		os.Exit(1)
	}
	if err := driftcanvas.Run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "driftcanvas:", err)
		os.Exit(1)
	}
}
