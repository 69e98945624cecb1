package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/tessro/roam/internal/controller"
	"github.com/tessro/roam/internal/paths"
	"github.com/tessro/roam/internal/registry"
)

var chatCmd = &cobra.Command{
	Use:   "chat [message...]",
	Short: "Chat with the travel assistant",
	Long: `Send one message and print the reply, or start a line-mode chat when no
message is given. Any document the assistant opens is printed after the reply.

In line mode, /clear clears the conversation and /quit exits.`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := getApp()
	if err != nil {
		return err
	}
	if len(args) > 0 {
		return sendAndPrint(cmd, a.ctrl, strings.Join(args, " "))
	}
	return runREPL(cmd, a.ctrl)
}

// sendAndPrint sends text and prints the reply, followed by the document the
// reply opened, if it changed.
func sendAndPrint(cmd *cobra.Command, ctrl *controller.Controller, text string) error {
	out := cmd.OutOrStdout()
	before := ctrl.State().Current

	entry, err := ctrl.Send(cmd.Context(), text)
	if err != nil {
		if entry.Failed {
			_, _ = fmt.Fprintf(out, "🧭 %s\n", entry.Assistant)
		}
		return err
	}
	_, _ = fmt.Fprintf(out, "🧭 %s\n", entry.Assistant)

	after := ctrl.State().Current
	if after.IsOpen() && !sameDocument(before, after) {
		_, _ = fmt.Fprintln(out)
		return printDocument(out, after)
	}
	return nil
}

func sameDocument(a, b registry.Current) bool {
	return a.Type == b.Type && a.Filename() == b.Filename()
}

// lineInput reads one line of user input.
type lineInput interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

type basicLineInput struct {
	reader *bufio.Reader
	out    io.Writer
}

func (b *basicLineInput) ReadLine(prompt string) (string, error) {
	_, _ = fmt.Fprint(b.out, prompt)
	line, err := b.reader.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (b *basicLineInput) Close() error { return nil }

type readlineInput struct {
	instance *readline.Instance
}

func (r *readlineInput) ReadLine(prompt string) (string, error) {
	r.instance.SetPrompt(prompt)
	return r.instance.Readline()
}

func (r *readlineInput) Close() error {
	return r.instance.Close()
}

// newLineInput uses readline on an interactive terminal and falls back to
// plain buffered reads otherwise.
func newLineInput(cmd *cobra.Command) lineInput {
	basic := &basicLineInput{reader: bufio.NewReader(cmd.InOrStdin()), out: cmd.OutOrStdout()}
	if cmd.InOrStdin() != os.Stdin || !readline.DefaultIsTerminal() {
		return basic
	}

	historyPath, err := paths.InputHistoryPath()
	if err == nil {
		err = os.MkdirAll(filepath.Dir(historyPath), 0o755)
	}
	if err != nil {
		slog.Warn("input history disabled", "error", err)
		historyPath = ""
	}

	instance, err := readline.NewEx(&readline.Config{
		Prompt:            "you> ",
		HistoryFile:       historyPath,
		HistorySearchFold: true,
	})
	if err != nil {
		slog.Warn("readline unavailable, using basic input", "error", err)
		return basic
	}
	return &readlineInput{instance: instance}
}

func runREPL(cmd *cobra.Command, ctrl *controller.Controller) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	if err := ctrl.LoadHistory(ctx); err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "🧭 Could not load conversation history: %v\n", err)
	}
	ctrl.Refresh(ctx)

	if n := len(ctrl.State().Entries); n > 0 {
		_, _ = fmt.Fprintf(out, "🧭 Continuing a conversation of %d messages. /quit exits.\n", n)
	} else {
		_, _ = fmt.Fprintln(out, "🧭 Ask about a destination to get started. /quit exits.")
	}

	input := newLineInput(cmd)
	defer func() { _ = input.Close() }()

	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := input.ReadLine("you> ")
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		switch text := strings.TrimSpace(line); text {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/clear":
			if err := ctrl.ClearHistory(ctx); err != nil {
				_, _ = fmt.Fprintf(out, "🧭 Error: %v\n", err)
				continue
			}
			_, _ = fmt.Fprintln(out, "🧭 Conversation cleared.")
		default:
			// Failures are already shown as the reply text.
			if err := sendAndPrint(cmd, ctrl, text); err != nil {
				slog.Debug("repl send failed", "error", err)
			}
		}
	}
}

var historyClear bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print or clear the conversation history",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := getApp()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if historyClear {
		if err := a.ctrl.ClearHistory(cmd.Context()); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out, "Conversation history cleared")
		return nil
	}

	if err := a.ctrl.LoadHistory(cmd.Context()); err != nil {
		return err
	}
	entries := a.ctrl.State().Entries
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(out, "No conversation yet")
		return nil
	}
	for i, e := range entries {
		if i > 0 {
			_, _ = fmt.Fprintln(out)
		}
		_, _ = fmt.Fprintf(out, "you> %s\n", e.User)
		_, _ = fmt.Fprintf(out, "🧭 %s\n", e.Assistant)
	}
	return nil
}

func init() {
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "delete the whole conversation on the server")
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(historyCmd)
}
