package model

import "time"

// PhotoSubmitted is an inbound photo event from the chat transport.
type PhotoSubmitted struct {
	ChatID    int64
	MessageID int
	Author    string
	Group     string
	Caption   string
	File      string
	Timestamp time.Time
}

// TextMessage is an inbound text event from the chat transport.
// ReplyToMessageID is zero when the message is not a reply.
type TextMessage struct {
	ChatID           int64
	MessageID        int
	Author           string
	Group            string
	Text             string
	ReplyToMessageID int
	ReplyToHasPhoto  bool
	Timestamp        time.Time
}
