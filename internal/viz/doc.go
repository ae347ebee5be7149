// Package viz renders shallow water runs in the terminal.
//
//   - [Profile]: asciigraph plot of one field snapshot
//   - [Canvas]: Braille pixel canvas used for the live surface view
//   - [LiveModel]: Bubble Tea program stepping a simulator in real time
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to the initial condition
//	M     - Switch between Braille canvas and asciigraph
//	V     - Toggle the plotted field (h or v)
//	T     - Cycle color themes
//	+/-   - Steps per frame
//	?     - Show help overlay
package viz
