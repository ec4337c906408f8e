package protocol

import "strings"

// Message is a line received from the server after classification. Source
// is set only for relayed user messages. When Status is StatusInvalid no
// other field is populated.
type Message struct {
	Status Status
	Type   Type
	Source string
	Text   string
}

// Relay reports whether m carries a message from another user.
func (m Message) Relay() bool {
	return m.Status == StatusOK && (m.Type == TypeBroadcast || m.Type == TypePM)
}

var replyTypes = map[string]Type{
	string(TypeConnect): TypeConnect,
	string(TypeVald):    TypeVald,
	string(TypeIden):    TypeIden,
	string(TypeHail):    TypeHail,
	string(TypeMesg):    TypeMesg,
	string(TypeList):    TypeList,
	string(TypeStat):    TypeStat,
	string(TypeQuit):    TypeQuit,
}

var relayTypes = map[string]Type{
	string(TypeBroadcast): TypeBroadcast,
	string(TypePM):        TypePM,
}

// ParseMessage classifies a raw server line as a status reply or a relayed
// user message. It never fails: anything it cannot classify comes back
// with StatusInvalid.
func ParseMessage(raw string) Message {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return invalid()
	}

	first := trimmed
	if i := strings.IndexFunc(trimmed, isSpace); i >= 0 {
		first = trimmed[:i]
	}

	if first == string(StatusOK) || first == string(StatusBad) {
		return parseReply(trimmed)
	}
	return parseRelay(trimmed)
}

func parseReply(line string) Message {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 3 {
		return invalid()
	}
	t, ok := replyTypes[parts[1]]
	if !ok {
		return invalid()
	}
	text := strings.TrimSpace(parts[2])
	if text == "" {
		return invalid()
	}
	return Message{Status: Status(parts[0]), Type: t, Text: text}
}

func parseRelay(line string) Message {
	header, body, found := strings.Cut(line, ":")
	if !found {
		return invalid()
	}
	fields := strings.SplitN(header, " ", 3)
	if len(fields) < 3 {
		return invalid()
	}
	t, ok := relayTypes[strings.ToUpper(fields[0])]
	if !ok {
		return invalid()
	}
	source := strings.TrimSpace(fields[2])
	text := strings.TrimSpace(body)
	if source == "" || text == "" {
		return invalid()
	}
	return Message{Status: StatusOK, Type: t, Source: source, Text: text}
}

func invalid() Message {
	return Message{Status: StatusInvalid}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}
