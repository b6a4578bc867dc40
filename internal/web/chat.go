package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/desertthunder/pulse/internal/auth"
	"github.com/desertthunder/pulse/internal/chat"
)

const (
	msgEmptyMessage   = "Type a message first."
	msgMessageTooLong = "Messages are limited to 1000 characters."
)

// maxMessageBody bounds a POST /message body; form encoding can triple the size of the text.
const maxMessageBody = 4 * chat.MaxMessageLength

type messagePageData struct {
	Exchanges []chat.Exchange
}

type messageReply struct {
	Reply     string         `json:"reply,omitempty"`
	Intent    chat.Intent    `json:"intent,omitempty"`
	Sentiment chat.Sentiment `json:"sentiment,omitempty"`
	Time      string         `json:"time,omitempty"`
	Error     string         `json:"error,omitempty"`
}

func (a *App) messages(w http.ResponseWriter, r *http.Request) {
	s, _ := auth.FromContext(r.Context())
	a.render(w, r, http.StatusOK, "message", "Messages", messagePageData{Exchanges: a.chat.Transcript(s.UserID)})
}

// sendMessage answers with JSON when the client asks for it and redirects back to the transcript otherwise.
func (a *App) sendMessage(w http.ResponseWriter, r *http.Request) {
	s, _ := auth.FromContext(r.Context())
	wantsJSON := strings.Contains(r.Header.Get("Accept"), "application/json")

	r.Body = http.MaxBytesReader(w, r.Body, maxMessageBody)
	var (
		ex  chat.Exchange
		err error
	)
	if perr := r.ParseForm(); perr != nil {
		err = chat.ErrMessageTooLong
	} else {
		ex, err = a.chat.Respond(s.UserID, r.PostForm.Get("message"))
	}

	if err != nil {
		msg := msgEmptyMessage
		if errors.Is(err, chat.ErrMessageTooLong) {
			msg = msgMessageTooLong
		}
		if wantsJSON {
			writeJSON(w, http.StatusBadRequest, messageReply{Error: msg})
			return
		}
		a.redirectWithFlash(w, r, "/message", auth.FlashError, msg)
		return
	}

	if wantsJSON {
		writeJSON(w, http.StatusOK, messageReply{
			Reply:     ex.Reply,
			Intent:    ex.Intent,
			Sentiment: ex.Sentiment,
			Time:      ex.At.Format("15:04"),
		})
		return
	}
	http.Redirect(w, r, "/message", http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
