package api

import (
	"net/http"

	"git.sr.ht/~jakintosh/cookieauth/pkg/identity"
)

func (a *API) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req identity.Credentials
		if ok := a.decodeRequest(&req, w, r); !ok {
			return
		}

		id, err := a.service.Authenticate(req.Email, req.Password)
		if err != nil {
			a.logAPIErr(r, "login failed", "email", req.Email, "error", err)
			a.writeError(w, r, err)
			return
		}

		// new token on privilege change
		if err := a.sessions.RenewToken(r.Context()); err != nil {
			a.writeError(w, r, err)
			return
		}
		a.sessions.Put(r.Context(), sessionKeyUserID, id)

		w.WriteHeader(http.StatusOK)
	}
}

// LoginWithoutCookies answers login requests that did not ask for a cookie
// session. Bearer tokens are never issued.
func (a *API) LoginWithoutCookies() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.logAPIErr(r, "login without useCookies")
		writeProblem(w, identity.ProblemDetails{
			Type:   problemTypeBadRequest,
			Title:  http.StatusText(http.StatusBadRequest),
			Status: http.StatusBadRequest,
			Detail: "Only cookie sessions are supported; set useCookies=true.",
		})
	}
}
