package shaders

import (
	_ "embed"
)

// FullscreenWGSL draws one oversized triangle and samples the CPU frame
// texture bound at group 0.
//
//go:embed fullscreen.wgsl
var FullscreenWGSL string
