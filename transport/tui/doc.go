// Package tui plays the active world in a terminal using tcell.
//
// The map is drawn top-down, one character per cell, centered on the player
// and shifted by the shared camera. Arrow keys steer; because terminals do not
// report key releases a direction counts as held for a short window after each
// press or auto-repeat.
package tui
