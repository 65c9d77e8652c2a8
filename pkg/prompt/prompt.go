// Package prompt gates optional step groups behind interactive confirmation.
package prompt

import (
	"github.com/AlecAivazis/survey/v2"
)

// Prompter asks the user questions. The live implementation blocks on
// terminal input; empty input picks the default and unrecognized input
// re-prompts.
type Prompter interface {
	Confirm(question string, def bool) (bool, error)
	Select(message string, options []string) (string, error)
}

// Terminal is the survey-backed live Prompter.
type Terminal struct{}

func (Terminal) Confirm(question string, def bool) (bool, error) {
	confirmed := def
	p := &survey.Confirm{
		Message: question,
		Default: def,
	}
	if err := survey.AskOne(p, &confirmed); err != nil {
		return false, err
	}
	return confirmed, nil
}

func (Terminal) Select(message string, options []string) (string, error) {
	var choice string
	p := &survey.Select{
		Message: message,
		Options: options,
	}
	if err := survey.AskOne(p, &choice); err != nil {
		return "", err
	}
	return choice, nil
}

// Canned replays scripted answers, for tests and --yes style automation.
type Canned struct {
	Confirms []bool
	Selects  []string

	confirmIdx int
	selectIdx  int
}

func (c *Canned) Confirm(_ string, def bool) (bool, error) {
	if c.confirmIdx >= len(c.Confirms) {
		return def, nil
	}
	answer := c.Confirms[c.confirmIdx]
	c.confirmIdx++
	return answer, nil
}

func (c *Canned) Select(_ string, options []string) (string, error) {
	if c.selectIdx >= len(c.Selects) {
		return options[len(options)-1], nil
	}
	answer := c.Selects[c.selectIdx]
	c.selectIdx++
	return answer, nil
}
