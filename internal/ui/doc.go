// Package ui implements the Skipper terminal interface with Bubble Tea.
//
// The root Model polls the shared state.Store on a tick and renders a
// one-line printer header, a command bar, and either the printer panel or
// the skip-objects modal.
//
// # Skip modal
//
// Pressing s opens the modal and hands the latest snapshot to a
// skip.Controller. When the controller asks for a pick-map, the model loads
// it in a tea.Cmd and feeds the result back with PickLoaded. The preview is
// drawn with upper half blocks, two pick-map rows per terminal row, and
// mouse clicks are hit-tested with the same cell geometry so the object
// under the pointer is the one toggled. The object list beside the preview
// works without a pick-map.
//
// Apply sends the pending selection through the controller's dispatcher in
// a tea.Cmd. With confirm_apply enabled the first press only arms the
// action. Results and rejected toggles show up as a toast that expires
// after a few seconds.
//
// # Themes
//
// T cycles the built-in themes and saves the choice to the prefs file. The
// active theme also supplies the overlay colors.
package ui
