package chat

import "fmt"

// Reply answers m. previous is the last specific topic of the conversation,
// or [IntentGeneral] when there is none.
func Reply(m Message, previous Intent) string {
	switch m.Intent {
	case IntentGreeting:
		return "Hello! How can I help you today? I can assist with music recommendations, event information, or matchmaking questions."

	case IntentMusic:
		if len(m.Entities.Artists) > 0 {
			return fmt.Sprintf("I see you're interested in %s. I can help you find similar artists or recommend playlists. Would you like me to suggest some music based on your taste?", m.Entities.Artists[0])
		}
		if len(m.Entities.Genres) > 0 {
			return fmt.Sprintf("Great! %s is a fantastic genre. I can help you discover new artists in this style or find events related to it.", m.Entities.Genres[0])
		}
		return "I'd love to help with music! You can ask me about artists, genres, recommendations, or connecting your Spotify account."

	case IntentEvents:
		if len(m.Entities.Locations) > 0 {
			return fmt.Sprintf("I can help you find events in %s. Check out the Events page for upcoming concerts and shows near you!", m.Entities.Locations[0])
		}
		return "I can help you discover concerts and events! Would you like to see upcoming shows, search by artist, or check the concert map?"

	case IntentMatchmaking:
		return "Matchmaking helps you connect with people who share similar music tastes. I can help you understand how it works or adjust your matchmaking preferences in settings."

	case IntentProfile:
		return "You can update your profile, music preferences, and settings. Would you like me to guide you to the profile or settings page?"

	case IntentHelp:
		return "I'm here to help! I can assist with:\n• Music recommendations and artist information\n• Event and concert details\n• Matchmaking and connections\n• Profile and settings guidance\n\nWhat would you like to know?"

	case IntentGoodbye:
		return "Thanks for chatting! Feel free to come back anytime if you need help. Have a great day!"
	}

	if previous != IntentGeneral && previous != "" {
		return fmt.Sprintf("I'm not sure I understand. Are you still asking about %s? Feel free to rephrase your question or ask for help!", previous)
	}
	return "I'm here to help! Try asking me about music, events, matchmaking, or your profile. What would you like to know?"
}
