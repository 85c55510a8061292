package cli

import (
	"time"

	"github.com/alexanderramin/nodestore/internal/service"
	"github.com/charmbracelet/huh"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// App holds the services and settings used by CLI commands.
type App struct {
	Nodes service.NodeService

	// Operator is recorded as create_by/update_by on writes. The --operator
	// flag overrides it.
	Operator string

	// DefaultPageSize is used by page and browse when --size is not given.
	DefaultPageSize int

	// IsInteractive reports whether stdin is a terminal. Interactive
	// features refuse to run when it returns false.
	IsInteractive func() bool

	// Now, RunForm and RunProgram default to the real clock, huh and
	// bubbletea; tests replace them.
	Now        func() time.Time
	RunForm    func(*huh.Form) error
	RunProgram func(tea.Model, ...tea.ProgramOption) error
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) runForm(f *huh.Form) error {
	if a.RunForm != nil {
		return a.RunForm(f)
	}
	return f.Run()
}

func (a *App) runProgram(m tea.Model, opts ...tea.ProgramOption) error {
	if a.RunProgram != nil {
		return a.RunProgram(m, opts...)
	}
	_, err := tea.NewProgram(m, opts...).Run()
	return err
}

// NewRootCmd creates the top-level "nodectl" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "nodectl",
		Short:         "Manage node records: named, typed system artifacts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&app.Operator, "operator", app.Operator, "Operator recorded on writes")

	root.AddCommand(
		newNodeCmd(app),
		newBrowseCmd(app),
	)

	return root
}
