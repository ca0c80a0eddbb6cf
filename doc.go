// Package driftcanvas is an infinite-canvas sprite playground for
// [Ebitengine].
//
// Drop an image or type a prompt, and driftcanvas asks a generative model for
// stylized sprite art, keys out the background, and places the result on a
// pannable, zoomable canvas. Placed objects can be dragged, scaled, flipped,
// duplicated, deleted, exported as PNG, and "remixed" with follow-up prompts.
//
// # Quick start
//
// The simplest way to get started is [Run], which loads configuration,
// creates a window, and starts the game loop:
//
//	cfg, err := driftcanvas.LoadConfig("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := driftcanvas.Run(cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// For full control, build the pieces yourself: a [Scene] holds the placed
// objects, a [View] holds pan/zoom state, a [Controller] turns pointer and
// touch input into scene mutations, a [Pipeline] runs generation requests
// against a [Generator], and a [Renderer] draws everything each frame. [App]
// wires them into an ebiten.Game.
//
// # Core pieces
//
// [RemoveBackground] performs chroma-key background removal against the
// top-left pixel and computes the tight bounds of the surviving pixels; hit
// testing uses those bounds so clicks in transparent padding fall through to
// whatever is underneath.
//
// [GeminiGenerator] implements [Generator] on the Google Gemini API. Any
// value satisfying the three-method interface can be substituted, which is
// how the tests run without network access.
//
// [Ebitengine]: https://ebitengine.org
package driftcanvas
