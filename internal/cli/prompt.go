package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// ConfirmToken is the exact input that authorizes a backup
const ConfirmToken = "CONTINUE"

// Prompter asks the operator for the backup roots and the confirmation
type Prompter struct {
	in   *bufio.Reader
	out  io.Writer
	warn *color.Color
}

// NewPrompter reads answers from in and writes questions to out
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:   bufio.NewReader(in),
		out:  out,
		warn: color.New(color.FgYellow, color.Bold),
	}
}

// readLine returns one line without its terminator. A final line without
// a newline is still returned; io.EOF is only reported when nothing was read.
func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// AskDirectory prompts until validate accepts the answer and returns the
// validated path. It fails only when the input ends.
func (p *Prompter) AskDirectory(label string, validate func(string) (string, error)) (string, error) {
	for {
		fmt.Fprintf(p.out, "%s directory: ", label)

		line, err := p.readLine()
		if err != nil {
			fmt.Fprintln(p.out)
			return "", fmt.Errorf("no %s directory given: %w", strings.ToLower(label), err)
		}

		path, err := validate(strings.TrimSpace(line))
		if err != nil {
			fmt.Fprintf(p.out, "  %v, try again\n", err)
			continue
		}
		return path, nil
	}
}

// Confirm describes the backup and reports whether the operator typed
// ConfirmToken exactly. End of input counts as a refusal.
func (p *Prompter) Confirm(source, dest string) (bool, error) {
	fmt.Fprintln(p.out)
	fmt.Fprintf(p.out, "  Source:       %s\n", source)
	fmt.Fprintf(p.out, "  Destination:  %s\n", dest)
	fmt.Fprintln(p.out)
	p.warn.Fprintln(p.out, "Files missing from the destination will be copied into it. This cannot be undone.")
	fmt.Fprintf(p.out, "Type %s to proceed: ", ConfirmToken)

	line, err := p.readLine()
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(p.out)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return line == ConfirmToken, nil
}
