package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/ledgerline/qbsync-cli/internal/core/ports/driven"
	"github.com/ledgerline/qbsync-cli/internal/logger"
)

// Ensure StdinConfirmer implements the interface.
var _ driven.Confirmer = (*StdinConfirmer)(nil)

// StdinConfirmer pauses a run after the credential file is rewritten and
// waits for the operator to type "ok". Deployments that mirror the credential
// file elsewhere use the pause to copy it before the run continues.
//
// Without a terminal on stdin there is nobody to ask: the message is logged
// and the run continues immediately.
type StdinConfirmer struct {
	in         io.Reader
	out        io.Writer
	isTerminal func() bool
}

// NewStdinConfirmer creates a confirmer reading acknowledgements from stdin.
// Prompts go to stderr so they never mix with command output.
func NewStdinConfirmer() *StdinConfirmer {
	return &StdinConfirmer{
		in:  os.Stdin,
		out: os.Stderr,
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

// Confirm delivers the message and blocks until the operator types "ok".
// Any other input reprompts; closed input counts as declining.
func (c *StdinConfirmer) Confirm(ctx context.Context, message string) error {
	if !c.isTerminal() {
		logger.Info("%s", message)
		return nil
	}

	fmt.Fprintln(c.out, message)

	scanner := bufio.NewScanner(c.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(c.out, "Type 'ok' to continue: ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read acknowledgement: %w", err)
			}
			return errors.New("input closed before acknowledgement")
		}
		if strings.TrimSpace(scanner.Text()) == "ok" {
			return nil
		}
	}
}
