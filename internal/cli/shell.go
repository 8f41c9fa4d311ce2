package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// ShellCmd returns the shell command
func ShellCmd(s *Session) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands against one open store",
		Long: `Read routeslip commands line by line and run them in this process, so that
candidates skipped during review stay pending and "watch" keeps printing the
worklist as it changes. Type "exit" to leave.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.shellCtx != nil {
				return fmt.Errorf("already in a shell")
			}

			ctx, cancel := context.WithCancel(s.Context())
			s.shellCtx = ctx
			defer func() {
				cancel()
				s.shellCtx = nil
				s.watching = false
			}()

			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			for {
				fmt.Fprint(out, "routeslip> ")
				line, err := in.ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}

				words, splitErr := splitWords(line)
				switch {
				case splitErr != nil:
					fmt.Fprintln(cmd.ErrOrStderr(), splitErr)
				case len(words) == 0:
				case words[0] == "exit" || words[0] == "quit":
					return nil
				default:
					runLine(s, words, in, cmd)
				}

				if errors.Is(err, io.EOF) {
					fmt.Fprintln(out)
					return nil
				}
			}
		},
	}
}

// runLine executes one shell line on a fresh command tree sharing s. Errors
// are printed, never returned, so the shell keeps going.
func runLine(s *Session, words []string, in *bufio.Reader, parent *cobra.Command) {
	root := NewRootCmd(s)
	root.SetArgs(words)
	root.SetIn(in)
	root.SetOut(parent.OutOrStdout())
	root.SetErr(parent.ErrOrStderr())
	root.SilenceErrors = true

	if err := root.Execute(); err != nil {
		fmt.Fprintf(parent.ErrOrStderr(), "Error: %v\n", err)
	}
}

// splitWords splits a line on whitespace, keeping single- or double-quoted
// runs together.
func splitWords(line string) ([]string, error) {
	var words []string
	var word strings.Builder
	var quote rune
	inWord := false

	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				word.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if inWord {
				words = append(words, word.String())
				word.Reset()
				inWord = false
			}
		default:
			word.WriteRune(r)
			inWord = true
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if inWord {
		words = append(words, word.String())
	}
	return words, nil
}
