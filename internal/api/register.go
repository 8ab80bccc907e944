package api

import (
	"net/http"

	"git.sr.ht/~jakintosh/cookieauth/pkg/identity"
)

func (a *API) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req identity.Credentials
		if ok := a.decodeRequest(&req, w, r); !ok {
			return
		}

		if err := a.service.Register(req.Email, req.Password); err != nil {
			a.logAPIErr(r, "registration rejected", "email", req.Email, "error", err)
			a.writeError(w, r, err)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
