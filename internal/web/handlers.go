package web

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/pulse/internal/auth"
	"github.com/desertthunder/pulse/internal/images"
	"github.com/desertthunder/pulse/internal/slug"
)

// Flash texts shown after a profile picture upload.
const (
	MsgNoFile          = "Please choose an image to upload."
	MsgUnsupportedType = "Unsupported image type. Use png, jpg, jpeg, webp or gif."
	MsgTooLarge        = "Image is too large."
	MsgSaveFailed      = "Could not save your picture. Try again."
	MsgUploaded        = "Profile picture updated."
)

const (
	msgUsernameTaken    = "Username already taken."
	msgBadCredentials   = "Invalid username or password."
	msgPasswordMismatch = "Passwords do not match."
	msgGenericFailure   = "Something went wrong. Try again."
)

func (a *App) index(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.FromContext(r.Context()); ok {
		http.Redirect(w, r, "/home", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/auth", http.StatusFound)
}

func (a *App) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "OK")
}

type authPageData struct {
	Next string
}

func (a *App) authPage(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, http.StatusOK, "auth", "Sign in", authPageData{Next: safeNext(r.URL.Query().Get("next"))})
}

// safeNext keeps only same-site absolute paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}

func signUpMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, auth.ErrUsernameTaken):
		return msgUsernameTaken, true
	case errors.Is(err, auth.ErrMissingField):
		return "Please fill in every field.", true
	case errors.Is(err, auth.ErrInvalidUsername):
		return "Usernames need at least one letter or digit.", true
	case errors.Is(err, auth.ErrInvalidEmail):
		return "Please enter a valid email address.", true
	case errors.Is(err, auth.ErrPasswordTooShort):
		return "Passwords must be at least 8 characters.", true
	}
	return msgGenericFailure, false
}

func (a *App) signUp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.redirectWithFlash(w, r, "/auth", auth.FlashError, msgGenericFailure)
		return
	}

	if confirm := r.PostForm.Get("confirmPassword"); confirm != "" && confirm != r.PostForm.Get("password") {
		a.redirectWithFlash(w, r, "/auth", auth.FlashError, msgPasswordMismatch)
		return
	}

	user, err := a.accounts.SignUp(r.Context(), auth.SignUpInput{
		FullName: r.PostForm.Get("fullName"),
		Email:    r.PostForm.Get("email"),
		Username: r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
	})
	if err != nil {
		msg, expected := signUpMessage(err)
		if !expected {
			a.logger.Error("sign-up failed", "err", err)
		}
		a.redirectWithFlash(w, r, "/auth", auth.FlashError, msg)
		return
	}

	if err := a.sessions.Issue(w, user); err != nil {
		a.logger.Error("failed to issue session", "err", err)
		a.redirectWithFlash(w, r, "/auth", auth.FlashError, msgGenericFailure)
		return
	}

	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

func (a *App) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.redirectWithFlash(w, r, "/auth", auth.FlashError, msgBadCredentials)
		return
	}

	user, err := a.accounts.Login(r.Context(), r.PostForm.Get("username"), r.PostForm.Get("password"))
	if errors.Is(err, auth.ErrInvalidCredentials) {
		a.redirectWithFlash(w, r, "/auth", auth.FlashError, msgBadCredentials)
		return
	}
	if err != nil {
		a.logger.Error("login failed", "err", err)
		a.redirectWithFlash(w, r, "/auth", auth.FlashError, msgGenericFailure)
		return
	}

	if err := a.sessions.Issue(w, user); err != nil {
		a.logger.Error("failed to issue session", "err", err)
		a.redirectWithFlash(w, r, "/auth", auth.FlashError, msgGenericFailure)
		return
	}

	target := safeNext(r.PostForm.Get("next"))
	if target == "" {
		target = "/home"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (a *App) logout(w http.ResponseWriter, r *http.Request) {
	if s, err := a.sessions.Read(r); err == nil {
		a.tokens.Delete(s.UserID)
		a.chat.Forget(s.UserID)
	}
	a.sessions.Clear(w)
	http.Redirect(w, r, "/auth", http.StatusFound)
}

func (a *App) home(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, http.StatusOK, "home", "Home", nil)
}

type profileData struct {
	DisplayName string
	Username    string
	Email       string
	ImageURL    string
}

func (a *App) profile(w http.ResponseWriter, r *http.Request) {
	s, _ := auth.FromContext(r.Context())

	data := profileData{
		DisplayName: s.Username,
		Username:    s.Username,
		ImageURL:    a.resolver.Resolve(r.Context(), slug.Slugify(s.Username)),
	}

	if p, err := a.accounts.Profile(r.Context(), s.UserID); err == nil {
		data.DisplayName = p.DisplayName()
		data.Email = p.Email()
	} else {
		a.logger.Warn("profile not found", "user", s.UserID, "err", err)
	}

	a.render(w, r, http.StatusOK, "profile", "Profile", data)
}

// userProfile shows any username, registered or not; the picture resolves from the slug alone.
func (a *App) userProfile(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	data := profileData{
		DisplayName: username,
		ImageURL:    a.resolver.Resolve(r.Context(), slug.Slugify(username)),
	}

	if user, err := a.accounts.UserByUsername(r.Context(), username); err == nil {
		data.Username = user.Username()
		if p, err := a.accounts.Profile(r.Context(), user.ID()); err == nil {
			data.DisplayName = p.DisplayName()
		}
	}

	a.render(w, r, http.StatusOK, "profile_view", data.DisplayName, data)
}

func uploadMessage(err error) (category, message string) {
	switch {
	case err == nil:
		return auth.FlashSuccess, MsgUploaded
	case errors.Is(err, images.ErrNoFileProvided):
		return auth.FlashError, MsgNoFile
	case errors.Is(err, images.ErrUnsupportedImageType):
		return auth.FlashError, MsgUnsupportedType
	default:
		return auth.FlashError, MsgSaveFailed
	}
}

func (a *App) uploadPicture(w http.ResponseWriter, r *http.Request) {
	s, _ := auth.FromContext(r.Context())
	limit := a.config.Server.MaxUploadBytes

	if r.ContentLength > limit {
		a.redirectWithFlash(w, r, "/profile", auth.FlashError, MsgTooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	file, header, err := r.FormFile("profile_picture")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.redirectWithFlash(w, r, "/profile", auth.FlashError, MsgTooLarge)
			return
		}
		a.redirectWithFlash(w, r, "/profile", auth.FlashError, MsgNoFile)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		a.logger.Warn("failed to read upload", "user", s.Username, "err", err)
		a.redirectWithFlash(w, r, "/profile", auth.FlashError, MsgSaveFailed)
		return
	}

	_, err = a.uploader.Upload(r.Context(), slug.Slugify(s.Username), header.Filename, content)
	if err != nil && !errors.Is(err, images.ErrNoFileProvided) && !errors.Is(err, images.ErrUnsupportedImageType) {
		a.logger.Error("upload failed", "user", s.Username, "err", err)
	}

	category, message := uploadMessage(err)
	a.redirectWithFlash(w, r, "/profile", category, message)
}

func (a *App) deleteAccount(w http.ResponseWriter, r *http.Request) {
	s, _ := auth.FromContext(r.Context())

	if _, err := a.accounts.Login(r.Context(), s.Username, r.FormValue("password")); err != nil {
		a.redirectWithFlash(w, r, "/settings", auth.FlashError, msgBadCredentials)
		return
	}

	if err := a.accounts.Delete(r.Context(), s.UserID); err != nil {
		a.logger.Error("failed to delete account", "user", s.UserID, "err", err)
		a.redirectWithFlash(w, r, "/settings", auth.FlashError, msgGenericFailure)
		return
	}

	if err := a.uploader.Remove(r.Context(), slug.Slugify(s.Username)); err != nil {
		a.logger.Warn("failed to remove picture", "user", s.UserID, "err", err)
	}

	a.tokens.Delete(s.UserID)
	a.chat.Forget(s.UserID)
	a.sessions.Clear(w)
	a.redirectWithFlash(w, r, "/auth", auth.FlashInfo, "Your account has been deleted.")
}

func (a *App) simplePage(name, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.render(w, r, http.StatusOK, name, title, nil)
	}
}
