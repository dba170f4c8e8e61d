// Package compose renders raster images from templates.
//
// # Overview
//
// A template is a background plus an ordered list of elements (images,
// rounded rectangles and text). String fields of the template may contain
// {{key}} placeholders that are filled from per-request data. The Renderer
// acquires every image the template references, then paints the background
// and the elements in array order onto a fresh RGBA surface and encodes the
// result as PNG.
//
// # Quick Start
//
//	import "github.com/gogpu/compose"
//
//	def, err := compose.ParseDefinition([]byte(`{
//	    "background": "assets/{{theme}}.png",
//	    "elements": [
//	        {"type": "rectangle", "x": 40, "y": 40, "width": 400, "height": 120, "radius": 24, "color": "#1D3557"},
//	        {"type": "text", "x": 60, "y": 115, "fontSize": 48, "color": "#F1FAEE", "text": "Hi {{name}}"}
//	    ]
//	}`))
//	if err != nil {
//	    return err
//	}
//
//	r := compose.NewRenderer()
//	png, err := r.Render(ctx, def, compose.Data{"theme": "dark", "name": "Ada"})
//
// # Coordinate System
//
// Same as HTML Canvas:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//   - Text y coordinates are baselines
//
// # Concurrency
//
// A Renderer is safe for concurrent use. Definitions are immutable once
// parsed and may be shared between renders; every render owns its surface.
package compose
