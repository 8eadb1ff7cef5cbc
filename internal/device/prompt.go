package device

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

// Prompter collects secrets from the operator when the device asks for them.
type Prompter interface {
	// PIN asks for the scrambled PIN (entered via the on-device matrix).
	PIN() (string, error)
	// Passphrase asks for the wallet passphrase.
	Passphrase() (string, error)
}

// TerminalPrompter reads secrets from the controlling terminal without echo,
// falling back to plain line reads when stdin is not a terminal.
type TerminalPrompter struct {
	In  *os.File
	Out io.Writer
}

// NewTerminalPrompter creates a prompter on stdin/stderr.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{
		In:  os.Stdin,
		Out: os.Stderr,
	}
}

// PIN prompts for the PIN using the keypad positions shown on the device.
func (p *TerminalPrompter) PIN() (string, error) {
	fmt.Fprint(p.Out, "Use the numeric keypad positions shown on the device.\nPIN: ")
	return p.readSecret()
}

// Passphrase prompts for the wallet passphrase.
func (p *TerminalPrompter) Passphrase() (string, error) {
	fmt.Fprint(p.Out, "Passphrase: ")
	return p.readSecret()
}

func (p *TerminalPrompter) readSecret() (string, error) {
	fd := int(p.In.Fd())

	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		fmt.Fprintln(p.Out)
		if err != nil {
			return "", errors.Wrap(err, "failed to read secret")
		}

		return string(secret), nil
	}

	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", errors.Wrap(err, "failed to read secret")
	}

	return strings.TrimSpace(line), nil
}
