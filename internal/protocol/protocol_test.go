package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	t.Run("bare keywords", func(t *testing.T) {
		for _, v := range []Verb{VerbList, VerbStat, VerbQuit} {
			cmd, err := ParseCommand(string(v) + "\r\n")
			require.NoError(t, err)
			assert.Equal(t, v, cmd.Verb)
			assert.Empty(t, cmd.Arg)
		}
	})

	t.Run("argument taken verbatim after separator", func(t *testing.T) {
		cmd, err := ParseCommand("MESG bob  hello there")
		require.NoError(t, err)
		assert.Equal(t, VerbMesg, cmd.Verb)
		assert.Equal(t, "bob  hello there", cmd.Arg)
	})

	t.Run("surrounding whitespace is trimmed", func(t *testing.T) {
		cmd, err := ParseCommand("   HAIL hi all   ")
		require.NoError(t, err)
		assert.Equal(t, "hi all", cmd.Arg)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := ParseCommand("LIS")
		assert.ErrorIs(t, err, ErrTooShort)
	})

	t.Run("keyword is case sensitive", func(t *testing.T) {
		_, err := ParseCommand("list")
		assert.ErrorIs(t, err, ErrUnknownCommand)
	})

	t.Run("missing argument", func(t *testing.T) {
		for _, line := range []string{"IDEN", "HAIL   ", "MESG"} {
			_, err := ParseCommand(line)
			assert.ErrorIs(t, err, ErrMissingArgument, line)
		}
	})

	t.Run("keyword is a prefix match", func(t *testing.T) {
		cmd, err := ParseCommand("LISTEN")
		require.NoError(t, err)
		assert.Equal(t, VerbList, cmd.Verb)
	})
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "LIST", Command{Verb: VerbList}.String())
	assert.Equal(t, "MESG bob hi", Command{Verb: VerbMesg, Arg: "bob hi"}.String())
}

func TestSplitTarget(t *testing.T) {
	target, text, ok := SplitTarget("bob hello world")
	require.True(t, ok)
	assert.Equal(t, "bob", target)
	assert.Equal(t, "hello world", text)

	_, _, ok = SplitTarget("bob")
	assert.False(t, ok)
}

func TestFirstToken(t *testing.T) {
	assert.Equal(t, "alice", FirstToken("alice smith"))
	assert.Equal(t, "alice", FirstToken("alice"))
	assert.Equal(t, "", FirstToken(" alice"))
}

func TestReplies(t *testing.T) {
	assert.Equal(t, "OK CONNECT Welcome to the chat server, there are currently 1 user(s) online", Welcome(1))
	assert.Equal(t, "OK IDEN Welcome to the chat server alice", IdentifyOK("alice"))
	assert.Equal(t, "BAD IDEN username is already taken", UsernameTaken())
	assert.Equal(t, "BAD LIST You have not logged in yet", NotLoggedIn(TypeList))
	assert.Equal(t, "OK LIST alice, bob, ", UserList([]string{"alice", "bob"}))
	assert.Equal(t, "OK MESG your message has been sent", MessageSent())
	assert.Equal(t, "BAD MESG the user does not exist", NoSuchUser())
	assert.Equal(t, "Broadcast from alice: hi", Broadcast("alice", "hi"))
	assert.Equal(t, "PM from alice:hello", Private("alice", "hello"))
	assert.Equal(t,
		"OK STAT There are currently 3 user(s) on the server You are logged in and have sent 2 message(s)",
		Stat(3, true, 2))
	assert.Equal(t,
		"OK STAT There are currently 1 user(s) on the server You have not logged in yet",
		Stat(1, false, 0))
	assert.Equal(t, "OK QUIT goodbye", Goodbye(false, 0))
	assert.Equal(t, "OK QUIT thank you for sending 4 message(s) with the chat service, goodbye.", Goodbye(true, 4))
}

func TestParseMessage_StatusReply(t *testing.T) {
	msg := ParseMessage("OK CONNECT Some Message")
	assert.Equal(t, Message{Status: StatusOK, Type: TypeConnect, Text: "Some Message"}, msg)
	assert.False(t, msg.Relay())

	msg = ParseMessage("BAD MESG the user does not exist\r\n")
	assert.Equal(t, StatusBad, msg.Status)
	assert.Equal(t, TypeMesg, msg.Type)
	assert.Equal(t, "the user does not exist", msg.Text)
	assert.Empty(t, msg.Source)
}

func TestParseMessage_Relay(t *testing.T) {
	msg := ParseMessage("Broadcast from someuser: Hello")
	assert.Equal(t, Message{Status: StatusOK, Type: TypeBroadcast, Source: "someuser", Text: "Hello"}, msg)
	assert.True(t, msg.Relay())

	msg = ParseMessage("PM from alice:hello: there")
	assert.Equal(t, TypePM, msg.Type)
	assert.Equal(t, "alice", msg.Source)
	assert.Equal(t, "hello: there", msg.Text)
}

func TestParseMessage_Invalid(t *testing.T) {
	for _, raw := range []string{
		"",
		"WeirdBadlyFormatted Message",
		"STATUS CONNECT Message",
		"OK WEIRD Message",
		"OK WEIRD   ",
		"OK LIST",
		"Shout from alice: hi",
		"Broadcast alice: hi",
		"PM from alice:   ",
	} {
		assert.Equal(t, Message{Status: StatusInvalid}, ParseMessage(raw), raw)
	}
}
