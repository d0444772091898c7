package ssh

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	bts "github.com/charmbracelet/wish/bubbletea"

	"github.com/pfassina/folio/internal/browse"
)

// NewHandler returns a Bubble Tea handler for SSH sessions. Each session
// loads the index afresh so rebuilds are picked up on reconnect.
func NewHandler(load browse.LoadFunc, source string) bts.Handler {
	return func(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
		m := browse.NewWithLoader(load, source)
		m.SetOutput(sess)

		opts := []tea.ProgramOption{
			tea.WithAltScreen(),
		}
		opts = append(opts, bts.MakeOptions(sess)...)

		return m, opts
	}
}
