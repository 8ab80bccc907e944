package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Router returns the identity endpoints, rooted at "/", wrapped in session
// loading.
func (a *API) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(a.requireJSON)

	r.HandleFunc("/manage/info", a.UserInfo()).Methods(http.MethodGet)
	r.HandleFunc("/login", a.Login()).Methods(http.MethodPost).Queries("useCookies", "true")
	r.HandleFunc("/login", a.LoginWithoutCookies()).Methods(http.MethodPost)
	r.HandleFunc("/register", a.Register()).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", a.Logout()).Methods(http.MethodPost)

	return a.sessions.LoadAndSave(r)
}
