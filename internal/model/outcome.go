package model

import "fmt"

// OutcomeKind - итог одного вызова диспетчера.
type OutcomeKind int

const (
	OutcomeSent OutcomeKind = iota
	OutcomeSkippedNoPayload
	OutcomeSkippedNoReceiver
	OutcomeSkippedNoToken
	OutcomeSkippedDuplicate
	OutcomeLookupFailed
	OutcomeSendFailed
)

var outcomeNames = map[OutcomeKind]string{
	OutcomeSent:              "sent",
	OutcomeSkippedNoPayload:  "skipped_no_payload",
	OutcomeSkippedNoReceiver: "skipped_no_receiver",
	OutcomeSkippedNoToken:    "skipped_no_token",
	OutcomeSkippedDuplicate:  "skipped_duplicate",
	OutcomeLookupFailed:      "lookup_failed",
	OutcomeSendFailed:        "send_failed",
}

func (k OutcomeKind) String() string {
	if name, ok := outcomeNames[k]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

// Outcome is the tagged result of handling one chat-message event.
// MessageID is set for OutcomeSent, Err for the *Failed kinds.
type Outcome struct {
	Kind      OutcomeKind
	MessageID string
	Err       error
}

func Sent(messageID string) Outcome { return Outcome{Kind: OutcomeSent, MessageID: messageID} }

func Skipped(kind OutcomeKind) Outcome { return Outcome{Kind: kind} }

func LookupFailed(err error) Outcome { return Outcome{Kind: OutcomeLookupFailed, Err: err} }

func SendFailed(err error) Outcome { return Outcome{Kind: OutcomeSendFailed, Err: err} }

// Delivered reports whether the gateway accepted the notification.
func (o Outcome) Delivered() bool { return o.Kind == OutcomeSent }
