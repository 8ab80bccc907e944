package api

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// Logout ends the caller's session. It requires an authenticated session and
// a JSON body that is not null.
func (a *API) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a.userID(r) == "" {
			a.logAPIErr(r, "logout without session")
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		var body json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || bytes.Equal(body, []byte("null")) {
			a.logAPIErr(r, "logout without body")
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		if err := a.sessions.Destroy(r.Context()); err != nil {
			a.writeError(w, r, err)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
