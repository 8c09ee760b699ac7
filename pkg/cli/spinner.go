package cli

import "github.com/pterm/pterm"

// startSpinner shows text with a spinner on stderr and returns the function
// that removes it. Nothing is drawn unless stderr is a terminal.
func (a *app) startSpinner(text string) (stop func()) {
	if a.flags.noSpinner || !a.deps.isTerminal() {
		return func() {}
	}
	sp, err := pterm.DefaultSpinner.
		WithWriter(a.deps.stderr).
		WithRemoveWhenDone(true).
		Start(text)
	if err != nil {
		a.logger.Debug("spinner unavailable", "error", err)
		return func() {}
	}
	return func() { _ = sp.Stop() }
}
