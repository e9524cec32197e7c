// Package viz provides terminal-based visualization for bounce simulations.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [RunInteractive]: preset picker and setup screen
//   - [Model]: live arena drawn on a braille [Canvas], one colour per body
//   - Theme selection with 5 built-in color schemes
//
// # Key Bindings
//
//	WASD/arrows - Push the focused body (or all bodies)
//	Space       - Stop the focused body dead
//	Tab         - Cycle focus between bodies
//	P           - Pause/Resume simulation
//	R           - Reset to initial state
//	T           - Cycle color themes
//	G           - Toggle GIF recording
//	?           - Show help overlay
//	[]          - Time travel (rewind/forward)
//
// # Recording
//
// The G key records the canvas as a GIF animation, saved as bounce.gif in the
// current directory.
package viz
