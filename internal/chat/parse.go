package chat

import (
	"strings"
	"unicode"
)

// Intent is the topic a message is about.
type Intent string

const (
	IntentMusic       Intent = "music"
	IntentEvents      Intent = "events"
	IntentMatchmaking Intent = "matchmaking"
	IntentProfile     Intent = "profile"
	IntentHelp        Intent = "help"
	IntentGreeting    Intent = "greeting"
	IntentGoodbye     Intent = "goodbye"
	IntentGeneral     Intent = "general"
)

// Sentiment is the tone of a message.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// intentTerms is checked in order; the first intent with a matching term wins.
var intentTerms = []struct {
	intent Intent
	terms  []string
}{
	{IntentMusic, []string{"music", "song", "artist", "album", "genre", "listen", "playlist", "spotify"}},
	{IntentEvents, []string{"event", "concert", "show", "tour", "ticket", "venue", "date"}},
	{IntentMatchmaking, []string{"match", "matchmaking", "friend", "connect", "meet", "people", "suggest", "compatible"}},
	{IntentProfile, []string{"profile", "account", "settings", "preferences", "update"}},
	{IntentHelp, []string{"help", "how", "what", "where", "when", "why", "explain", "guide"}},
	{IntentGreeting, []string{"hi", "hello", "hey", "greetings", "sup"}},
	{IntentGoodbye, []string{"bye", "goodbye", "see you", "later", "thanks", "thank you"}},
}

var (
	knownArtists   = []string{"tyler the creator", "drake", "kendrick", "taylor swift", "ariana grande"}
	knownGenres    = []string{"hip hop", "rap", "pop", "rock", "jazz", "r&b", "electronic", "indie", "country", "classical"}
	knownLocations = []string{"los angeles", "new york", "chicago", "san francisco", "miami"}

	positiveWords = []string{"love", "like", "great", "awesome", "amazing", "best", "good", "excited"}
	negativeWords = []string{"hate", "dislike", "bad", "terrible", "worst", "boring", "sad"}
)

// Entities are the things a message names.
type Entities struct {
	Artists   []string
	Genres    []string
	Locations []string
}

// Message is a parsed chat message.
type Message struct {
	Original  string
	Intent    Intent
	Keywords  []string
	Entities  Entities
	Sentiment Sentiment
}

// Parse extracts intent, keywords, entities and sentiment from text.
func Parse(text string) Message {
	words := normalize(text)

	m := Message{
		Original:  strings.TrimSpace(text),
		Intent:    IntentGeneral,
		Sentiment: SentimentNeutral,
		Entities: Entities{
			Artists:   matching(words, knownArtists),
			Genres:    matching(words, knownGenres),
			Locations: matching(words, knownLocations),
		},
	}

	for _, it := range intentTerms {
		found := matching(words, it.terms)
		if len(found) > 0 && m.Intent == IntentGeneral {
			m.Intent = it.intent
		}
		m.Keywords = append(m.Keywords, found...)
	}

	switch score := len(matching(words, positiveWords)) - len(matching(words, negativeWords)); {
	case score > 0:
		m.Sentiment = SentimentPositive
	case score < 0:
		m.Sentiment = SentimentNegative
	}
	return m
}

// normalize lowercases text and reduces it to single-space separated words,
// padded with a space on both ends.
func normalize(text string) string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '&'
	})
	return " " + strings.Join(fields, " ") + " "
}

// matching returns the terms present in words as a whole word or phrase.
// Terms of four or more letters also match with a trailing "s", so "songs"
// matches "song" while "his" does not match "hi".
func matching(words string, terms []string) []string {
	var out []string
	for _, term := range terms {
		plural := len(term) >= 4 && strings.Contains(words, " "+term+"s ")
		if plural || strings.Contains(words, " "+term+" ") {
			out = append(out, term)
		}
	}
	return out
}
