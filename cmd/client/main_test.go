package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andy6609/linechat/internal/client"
)

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := printer(&buf)

	for _, line := range []string{
		"OK IDEN Welcome to the chat server alice",
		"BAD MESG the user does not exist",
		"Broadcast from bob: hi",
		"PM from bob:psst",
		"???",
	} {
		p(client.Classify(line))
	}

	assert.Equal(t, "IDEN: Welcome to the chat server alice\n"+
		"MESG error: the user does not exist\n"+
		"[bob] hi\n"+
		"[pm bob] psst\n"+
		"? ???\n", buf.String())
}
