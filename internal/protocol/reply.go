package protocol

import (
	"strconv"
	"strings"
)

// Status is the leading token of a server status reply.
type Status string

const (
	StatusOK      Status = "OK"
	StatusBad     Status = "BAD"
	StatusInvalid Status = "INVALID"
)

// Type is the context keyword of a status reply, or the kind of a relayed
// user message.
type Type string

const (
	TypeConnect Type = "CONNECT"
	TypeVald    Type = "VALD"
	TypeIden    Type = "IDEN"
	TypeHail    Type = "HAIL"
	TypeMesg    Type = "MESG"
	TypeList    Type = "LIST"
	TypeStat    Type = "STAT"
	TypeQuit    Type = "QUIT"

	TypeBroadcast Type = "BROADCAST"
	TypePM        Type = "PM"
)

// Reply formats a status reply: "<STATUS> <TYPE> <text>".
func Reply(status Status, t Type, text string) string {
	return string(status) + " " + string(t) + " " + text
}

func OK(t Type, text string) string  { return Reply(StatusOK, t, text) }
func Bad(t Type, text string) string { return Reply(StatusBad, t, text) }

// Broadcast formats a relayed HAIL.
func Broadcast(from, text string) string {
	return "Broadcast from " + from + ": " + text
}

// Private formats a relayed MESG. There is no space after the colon; clients
// trim the body when classifying it.
func Private(from, text string) string {
	return "PM from " + from + ":" + text
}

func Welcome(online int) string {
	return OK(TypeConnect, "Welcome to the chat server, there are currently "+strconv.Itoa(online)+" user(s) online")
}

func InvalidCommand() string { return Bad(TypeVald, "invalid command to server") }
func NotRecognised() string  { return Bad(TypeVald, "command not recognised") }

func IdentifyOK(username string) string {
	return OK(TypeIden, "Welcome to the chat server "+username)
}

func AlreadyRegistered(username string) string {
	return Bad(TypeIden, "you are already registered with username "+username)
}

func UsernameTaken() string { return Bad(TypeIden, "username is already taken") }

// NotLoggedIn is the reply to a command that needs a registered session.
func NotLoggedIn(t Type) string { return Bad(t, "You have not logged in yet") }

// UserList joins usernames with ", ", keeping the trailing separator
// existing clients expect.
func UserList(usernames []string) string {
	var b strings.Builder
	for _, name := range usernames {
		b.WriteString(name)
		b.WriteString(", ")
	}
	return OK(TypeList, b.String())
}

// Stat reports the online count and, for registered sessions, how many
// messages they have broadcast.
func Stat(online int, registered bool, sent int64) string {
	text := "There are currently " + strconv.Itoa(online) + " user(s) on the server "
	if registered {
		text += "You are logged in and have sent " + strconv.FormatInt(sent, 10) + " message(s)"
	} else {
		text += "You have not logged in yet"
	}
	return OK(TypeStat, text)
}

func MessageSent() string    { return OK(TypeMesg, "your message has been sent") }
func NoSuchUser() string     { return Bad(TypeMesg, "the user does not exist") }
func BadlyFormatted() string { return Bad(TypeMesg, "Your message is badly formatted") }

func Goodbye(registered bool, sent int64) string {
	if !registered {
		return OK(TypeQuit, "goodbye")
	}
	return OK(TypeQuit, "thank you for sending "+strconv.FormatInt(sent, 10)+" message(s) with the chat service, goodbye.")
}
