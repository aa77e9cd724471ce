// Package viz draws running simulations in the terminal.
//
// [Model] is a Bubble Tea program that advances a simulation with
// Integrate once per frame and plots the real particles on a braille
// [Canvas] through a rotatable [Camera]. [NewMenu] wraps it with a
// problem picker.
//
// # Key Bindings
//
//	Space      pause or resume
//	R          rebuild from the initial conditions
//	T          cycle colour themes
//	+ / -      zoom
//	Arrows     rotate the view
//	?          help overlay
package viz
