package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// prompter asks questions on out and reads answers line by line from in.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

// ask prints question and returns the trimmed answer. ok is false once the
// input is exhausted.
func (p *prompter) ask(question string) (answer string, ok bool) {
	fmt.Fprint(p.out, question)
	if !p.in.Scan() {
		fmt.Fprintln(p.out)
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}

// choose lists options numbered from 1 with def marked, and returns the
// chosen index. An empty answer or exhausted input picks def; an option
// name is accepted as well as its number. Invalid answers are asked again.
func (p *prompter) choose(title string, options []string, def int) int {
	fmt.Fprintln(p.out, title)
	for i, opt := range options {
		marker := ""
		if i == def {
			marker = " (default)"
		}
		fmt.Fprintf(p.out, "  %d) %s%s\n", i+1, opt, marker)
	}

	for {
		answer, ok := p.ask(fmt.Sprintf("Choice [%d]: ", def+1))
		if !ok || answer == "" {
			return def
		}
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
			return n - 1
		}
		for i, opt := range options {
			if strings.EqualFold(answer, opt) {
				return i
			}
		}
		fmt.Fprintf(p.out, "Please enter a number between 1 and %d.\n", len(options))
	}
}

// indexOf returns the position of v in list, or 0 when absent.
func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return 0
}
