package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"lingod/pkg/types"
)

// inputText joins args, or reads stdin when there are none.
func inputText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// deltaPrinter prints only the new suffix of each accumulated partial.
type deltaPrinter struct {
	w    io.Writer
	seen int
}

func (p *deltaPrinter) print(partial string) {
	if len(partial) < p.seen || !utf8Boundary(partial, p.seen) {
		// the host rewrote earlier text; start over on a fresh line
		fmt.Fprintln(p.w)
		p.seen = 0
	}
	fmt.Fprint(p.w, partial[p.seen:])
	p.seen = len(partial)
}

func utf8Boundary(s string, i int) bool {
	return i == len(s) || (i < len(s) && (s[i]&0xC0) != 0x80)
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func newTranslateCmd(opts *options) *cobra.Command {
	var req types.TranslateRequest
	cmd := &cobra.Command{
		Use:     "translate [text...]",
		Short:   "Translate text (arguments or stdin)",
		Example: "  lingod translate --from en --to fr \"Hello there\"\n  echo 'Hola' | lingod translate --to en --stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			req.Text = text
			a, _, _, err := startApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx, cancel := signalContext(cmd)
			defer cancel()

			out := cmd.OutOrStdout()
			var onPartial func(string)
			if req.Stream {
				dp := &deltaPrinter{w: out}
				onPartial = dp.print
			}
			resp, err := a.Translate(ctx, req, onPartial)
			if err != nil {
				return err
			}
			if req.Stream {
				fmt.Fprintln(out)
				return nil
			}
			fmt.Fprintln(out, resp.Translation)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Source, "from", "", "Source language tag (default en)")
	cmd.Flags().StringVar(&req.Target, "to", "", "Target language tag (default es)")
	cmd.Flags().BoolVar(&req.Stream, "stream", false, "Print partial results as they arrive")
	return cmd
}

func newSummarizeCmd(opts *options) *cobra.Command {
	var req types.SummarizeRequest
	cmd := &cobra.Command{
		Use:     "summarize [text...]",
		Short:   "Summarize text (arguments or stdin)",
		Example: "  lingod summarize --type key-points --format markdown < article.txt",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			req.Text = text
			a, _, _, err := startApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx, cancel := signalContext(cmd)
			defer cancel()

			out := cmd.OutOrStdout()
			var onPartial func(string)
			if req.Stream {
				dp := &deltaPrinter{w: out}
				onPartial = dp.print
			}
			resp, err := a.Summarize(ctx, req, onPartial)
			if err != nil {
				return err
			}
			if req.Stream {
				fmt.Fprintln(out)
				return nil
			}
			fmt.Fprintln(out, resp.Summary)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Type, "type", "", "key-points|tl;dr|teaser|headline")
	cmd.Flags().StringVar(&req.Format, "format", "", "plain-text|markdown")
	cmd.Flags().StringVar(&req.Length, "length", "", "short|medium|long")
	cmd.Flags().StringVar(&req.Context, "context", "", "Shared context for the summarizer")
	cmd.Flags().BoolVar(&req.Stream, "stream", false, "Print partial results as they arrive")
	return cmd
}

func newDetectCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "detect [text...]",
		Short: "Detect the language of text (arguments or stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			a, _, _, err := startApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			ctx, cancel := signalContext(cmd)
			defer cancel()
			d, err := a.Detect(ctx, text)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.2f\n", d.Language, d.Confidence)
			return nil
		},
	}
}
