package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const flashCookie = "admin_flash"

// Flash is a one-shot notification shown on the next rendered page.
type Flash struct {
	Kind    string `json:"k"` // success or error
	Title   string `json:"t"`
	Message string `json:"m"`
}

func SetFlash(w http.ResponseWriter, kind, title, msg string) {
	raw, _ := json.Marshal(Flash{Kind: kind, Title: title, Message: msg})
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   60,
	})
}

func Success(w http.ResponseWriter, title, msg string) { SetFlash(w, "success", title, msg) }

func Failure(w http.ResponseWriter, title, msg string) { SetFlash(w, "error", title, msg) }

// PopFlash reads and clears the pending flash, if any.
func PopFlash(w http.ResponseWriter, r *http.Request) *Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	return &f
}

// Redirect sends the browser to url after a form post.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusSeeOther)
}
