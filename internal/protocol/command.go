// Package protocol implements the line-oriented chat wire format: parsing of
// client commands, formatting of server replies, and classification of the
// lines a client receives.
package protocol

import (
	"errors"
	"strings"
)

// KeywordLen is the fixed length of every command keyword.
const KeywordLen = 4

// Verb is a client command keyword.
type Verb string

const (
	VerbIden Verb = "IDEN"
	VerbList Verb = "LIST"
	VerbStat Verb = "STAT"
	VerbHail Verb = "HAIL"
	VerbMesg Verb = "MESG"
	VerbQuit Verb = "QUIT"
)

var (
	ErrTooShort        = errors.New("command shorter than keyword")
	ErrUnknownCommand  = errors.New("unknown command")
	ErrMissingArgument = errors.New("missing command argument")
)

// Command is a decoded client request. Arg holds everything after the
// keyword and its separator, verbatim.
type Command struct {
	Verb Verb
	Arg  string
}

// String renders the command as a wire line without the terminator.
func (c Command) String() string {
	if c.Arg == "" {
		return string(c.Verb)
	}
	return string(c.Verb) + " " + c.Arg
}

// ParseCommand decodes one line received from a client. The keyword is the
// first KeywordLen bytes of the trimmed line and is matched case-sensitively.
func ParseCommand(line string) (Command, error) {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < KeywordLen {
		return Command{}, ErrTooShort
	}

	verb := Verb(trimmed[:KeywordLen])
	switch verb {
	case VerbList, VerbStat, VerbQuit:
		return Command{Verb: verb}, nil
	case VerbIden, VerbHail, VerbMesg:
		if len(trimmed) <= KeywordLen+1 {
			return Command{Verb: verb}, ErrMissingArgument
		}
		return Command{Verb: verb, Arg: trimmed[KeywordLen+1:]}, nil
	default:
		return Command{}, ErrUnknownCommand
	}
}

// SplitTarget splits a MESG argument into the recipient and the message
// body at the first space. ok is false when there is no space.
func SplitTarget(arg string) (target, text string, ok bool) {
	i := strings.IndexByte(arg, ' ')
	if i < 0 {
		return "", "", false
	}
	return arg[:i], arg[i+1:], true
}

// FirstToken returns arg up to its first space.
func FirstToken(arg string) string {
	if i := strings.IndexByte(arg, ' '); i >= 0 {
		return arg[:i]
	}
	return arg
}
