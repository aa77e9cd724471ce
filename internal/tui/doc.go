// Package tui has plain terminal output for batch runs.
package tui
