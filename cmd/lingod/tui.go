package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"lingod/internal/tui"
)

func newTUICmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive terminal front end",
		RunE: func(cmd *cobra.Command, args []string) error {
			// the terminal belongs to the UI; only warnings reach stderr
			if opts.logLevel == "" {
				opts.logLevel = "warn"
			}
			a, _, _, err := startApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			m := tui.New(tui.Options{Translator: a.Translator, Summarizer: a.Summarizer, Context: ctx})
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}
}
