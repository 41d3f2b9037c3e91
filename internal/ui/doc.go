// Package ui provides the shared terminal styling for procinfo: the ANSI
// color palette, color-profile control, and table rendering built on the
// Bubbles table component.
//
// Colors are ANSI codes for broad terminal compatibility:
//
//	ColorSuccess   (green)  - Healthy readings
//	ColorError     (red)    - Failures and unavailable readings
//	ColorWarning   (yellow) - Pending stop
//	ColorInfo      (cyan)   - Informational messages
//	ColorMuted     (gray)   - Secondary text, timing info
//
// Use DisableColors() to switch to monochrome output (NO_COLOR, no TTY).
package ui
