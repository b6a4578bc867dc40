package chat

import (
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// MaxHistory is how many exchanges a [Conversation] remembers.
const MaxHistory = 10

// MaxMessageLength bounds a single message in bytes.
const MaxMessageLength = 1000

var (
	ErrEmptyMessage   = errors.New("empty message")
	ErrMessageTooLong = errors.New("message too long")
)

// Exchange is one user message and the reply to it.
type Exchange struct {
	Text      string
	Reply     string
	Intent    Intent
	Sentiment Sentiment
	At        time.Time
}

// Conversation is the recent history of one user.
type Conversation struct {
	Topic   Intent
	History []Exchange
}

// Bot answers messages and remembers each user's recent conversation in memory.
type Bot struct {
	mu     sync.Mutex
	convos map[string]*Conversation
	now    func() time.Time
	logger *log.Logger
}

// NewBot creates a [Bot] with no conversations.
func NewBot(logger *log.Logger) *Bot {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Bot{convos: make(map[string]*Conversation), now: time.Now, logger: logger}
}

// SetClock replaces the time source used to stamp exchanges.
func (b *Bot) SetClock(now func() time.Time) { b.now = now }

// Respond parses text from userID, answers it and records the exchange.
func (b *Bot) Respond(userID, text string) (Exchange, error) {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return Exchange{}, ErrEmptyMessage
	case len(text) > MaxMessageLength:
		return Exchange{}, ErrMessageTooLong
	}

	m := Parse(text)

	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.convos[userID]
	if !ok {
		c = &Conversation{Topic: IntentGeneral}
		b.convos[userID] = c
	}

	ex := Exchange{
		Text:      m.Original,
		Reply:     Reply(m, c.Topic),
		Intent:    m.Intent,
		Sentiment: m.Sentiment,
		At:        b.now(),
	}

	if m.Intent != IntentGeneral {
		c.Topic = m.Intent
	}
	c.History = append(c.History, ex)
	if len(c.History) > MaxHistory {
		c.History = c.History[len(c.History)-MaxHistory:]
	}

	b.logger.Debug("chat message", "user", userID, "intent", m.Intent, "sentiment", m.Sentiment, "keywords", len(m.Keywords))
	return ex, nil
}

// Transcript returns a copy of userID's recent exchanges, oldest first.
func (b *Bot) Transcript(userID string) []Exchange {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.convos[userID]
	if !ok {
		return nil
	}
	out := make([]Exchange, len(c.History))
	copy(out, c.History)
	return out
}

// Forget drops userID's conversation.
func (b *Bot) Forget(userID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.convos, userID)
}
