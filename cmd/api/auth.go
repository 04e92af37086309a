package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"wholesale/internal/auth"
	"wholesale/internal/domain/catalog"
)

type CreateSessionPayload struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=1,max=72"`
}

type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	AdminID   int64     `json:"admin_id"`
	Role      string    `json:"role"`
}

func (app *application) setSessionCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   app.config.env == "production",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// createSessionHandler godoc
//
//	@Summary		Admin sign in
//	@Description	Checks the admin credentials and sets the session cookie.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateSessionPayload	true	"Admin credentials"
//	@Success		200		{object}	SessionResponse
//	@Failure		400		{object}	error
//	@Failure		401		{object}	error
//	@Failure		403		{object}	error
//	@Router			/auth/session [post]
func (app *application) createSessionHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateSessionPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	admin, err := app.catalog.GetAdminByEmail(r.Context(), payload.Email)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			app.unauthorizedErrorResponse(w, r, fmt.Errorf("unknown admin %q", payload.Email))
			return
		}
		app.internalServerError(w, r, err)
		return
	}
	if err := auth.CheckPassword(admin.PasswordHash, payload.Password); err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}
	if !admin.IsActive || admin.Role != auth.RoleAdmin {
		app.forbiddenResponse(w, r)
		return
	}

	token, exp, err := app.sessions.Issue(admin.ID, admin.Role)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	app.setSessionCookie(w, token, int(app.sessions.TTL().Seconds()))

	resp := SessionResponse{Token: token, ExpiresAt: exp, AdminID: admin.ID, Role: admin.Role}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// logoutHandler godoc
//
//	@Summary	Sign out
//	@Tags		auth
//	@Success	204
//	@Router		/auth/logout [post]
func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	app.setSessionCookie(w, "", -1)
	w.WriteHeader(http.StatusNoContent)
}
