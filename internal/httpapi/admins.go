package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"barber-reservation-api/internal/admins"
	"barber-reservation-api/internal/middleware"
	"barber-reservation-api/internal/model"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type adminView struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

func adminOf(a *model.Admin) adminView {
	return adminView{ID: a.ID, Username: a.Username, CreatedAt: a.CreatedAt}
}

func (a *api) login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in credentials
	if !decode(w, r, &in) {
		return
	}
	tok, who, err := a.Admins.Login(r.Context(), in.Username, in.Password)
	if errors.Is(err, admins.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password.")
		return
	}
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": tok, "admin": adminOf(who)})
}

// register creates an admin. Without open registration only an existing
// admin may call it.
func (a *api) register(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if _, ok := middleware.PrincipalFrom(r.Context()); !ok && !a.AllowRegistration {
		unauthorized(w, r)
		return
	}
	a.createAdmin(w, r, ps)
}

func (a *api) createAdmin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in credentials
	if !decode(w, r, &in) {
		return
	}
	adm, err := a.Admins.Create(r.Context(), in.Username, in.Password)
	if err != nil {
		a.adminError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, adminOf(adm))
}

func (a *api) listAdmins(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	list, err := a.Admins.List(r.Context())
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	out := make([]adminView, len(list))
	for i := range list {
		out[i] = adminOf(&list[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *api) updateAdmin(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := pathID(w, ps)
	if !ok {
		return
	}
	var in credentials
	if !decode(w, r, &in) {
		return
	}
	adm, err := a.Admins.Update(r.Context(), id, in.Username, in.Password)
	if err != nil {
		a.adminError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, adminOf(adm))
}

func (a *api) resetPassword(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := pathID(w, ps)
	if !ok {
		return
	}
	var in struct {
		Password string `json:"password"`
	}
	if !decode(w, r, &in) {
		return
	}
	if err := a.Admins.ResetPassword(r.Context(), id, in.Password); err != nil {
		a.adminError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset"})
}

func (a *api) deleteAdmin(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := pathID(w, ps)
	if !ok {
		return
	}
	p, _ := middleware.PrincipalFrom(r.Context())
	if err := a.Admins.Delete(r.Context(), p.AdminID, id); err != nil {
		a.adminError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) adminError(w http.ResponseWriter, r *http.Request, err error) {
	var fe admins.FieldErrors
	switch {
	case errors.As(err, &fe):
		writeValidation(w, fe)
	case errors.Is(err, admins.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "username_taken", "That username is already taken.")
	case errors.Is(err, admins.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Admin not found.")
	case errors.Is(err, admins.ErrDeleteSelf):
		writeError(w, http.StatusConflict, "cannot_delete_self", "You cannot delete your own account.")
	default:
		writeInternal(w, r, err)
	}
}
