// Package ui implements the interactive pieces of the terminal interface using bubbletea's Elm architecture.
//
// [ConfirmModel] is the yes/no gate shown before a sync touches the collection. It implements
// bubbletea's standard Init/Update/View pattern and [Confirm] runs it as a program on the given input and output.
//
// Keyboard bindings are y/n, ←/→ to move the selection and enter to accept it, with contextual help
// displayed via charmbracelet/bubbles/help. The selection starts on "No".
//
// [RunSummary] renders the end-of-run tally with the shared lipgloss palette.
package ui
