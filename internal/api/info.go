package api

import (
	"errors"
	"net/http"

	"git.sr.ht/~jakintosh/cookieauth/internal/service"
)

// UserInfo reports the session's account. Requests without a session get
// 401 with no body.
func (a *API) UserInfo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := a.userID(r)
		if id == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		info, err := a.service.UserInfo(id)
		if errors.Is(err, service.ErrAccountNotFound) {
			a.logAPIErr(r, "session for missing account", "id", id)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if err != nil {
			a.writeError(w, r, err)
			return
		}

		returnJSON(info, w)
	}
}
