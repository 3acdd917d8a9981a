// SPDX-License-Identifier: AGPL-3.0-or-later

// Package printer writes the user-facing console output of an agent run.
package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Redacted replaces secret values in console output.
const Redacted = "<redacted>"

var secretMarkers = []string{"password", "secret"}

// IsSecretKey reports whether an environment key names a secret.
func IsSecretKey(key string) bool {
	lower := strings.ToLower(key)
	for _, m := range secretMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// Redact returns value, or Redacted when key names a secret.
func Redact(key, value string) string {
	if IsSecretKey(key) {
		return Redacted
	}
	return value
}

// Printer renders headers and sections. Styling follows the color profile of
// the writer, so non-terminal writers receive plain text.
type Printer struct {
	w      io.Writer
	header lipgloss.Style
}

func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:      w,
		header: r.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"}),
	}
}

// Header prints a highlighted one-line message.
func (p *Printer) Header(msg string) {
	fmt.Fprintln(p.w, p.header.Render("==> "+msg))
}

// Section prints a header followed by the lines written by body.
func (p *Printer) Section(title string, body func(w io.Writer)) {
	p.Header(title)
	body(p.w)
	fmt.Fprintln(p.w)
}

// Environment prints the sorted KEY=VALUE pairs of env with secrets redacted.
func (p *Printer) Environment(title string, keys []string, env map[string]string) {
	p.Section(title, func(w io.Writer) {
		for _, k := range keys {
			fmt.Fprintf(w, "%s=%s\n", k, Redact(k, env[k]))
		}
	})
}
