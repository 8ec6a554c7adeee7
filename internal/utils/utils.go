package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

type InputUtils struct {
	in  *bufio.Reader
	out io.Writer
}

func NewInputUtils() *InputUtils {
	return NewInputUtilsFrom(os.Stdin, os.Stdout)
}

func NewInputUtilsFrom(in io.Reader, out io.Writer) *InputUtils {
	return &InputUtils{in: bufio.NewReader(in), out: out}
}

// GetUserChoice prompts until the answer is one of validOptions.
// With force, or once input is exhausted, the first option is returned.
func (i *InputUtils) GetUserChoice(validOptions []string, prompt string, force bool) string {
	if force {
		return validOptions[0]
	}

	for {
		fmt.Fprintf(i.out, "%s (%s): ", prompt, strings.Join(validOptions, "/"))
		input, err := i.in.ReadString('\n')
		choice := strings.TrimSpace(strings.ToLower(input))

		for _, option := range validOptions {
			if choice == option {
				return choice
			}
		}
		if err != nil {
			return validOptions[0]
		}
		fmt.Fprintf(i.out, "Invalid option. Please choose from: %s\n", strings.Join(validOptions, ", "))
	}
}

// AskConfirmation asks user for yes/no confirmation
func (i *InputUtils) AskConfirmation(message string, force bool) bool {
	if force {
		return true
	}
	fmt.Fprintf(i.out, "🤔 %s (y/N): ", message)
	response, _ := i.in.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "yes" || response == "y"
}
