package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"barber-reservation-api/internal/booking"
	"barber-reservation-api/internal/captcha"
	"barber-reservation-api/internal/model"
)

type reservationView struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	CreatedAt time.Time `json:"created_at"`
}

// adminReservationView adds the throttling keys, which only admins see.
type adminReservationView struct {
	reservationView
	IPAddress string `json:"ip_address,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
}

func viewOf(r *model.Reservation) reservationView {
	return reservationView{ID: r.ID, Name: r.Name, Email: r.Email, Date: r.Date, Time: r.Time, CreatedAt: r.CreatedAt}
}

func adminViewOf(r *model.Reservation) adminReservationView {
	return adminReservationView{reservationView: viewOf(r), IPAddress: r.IPAddress, ClientID: r.ClientID}
}

func (a *api) createReservation(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in reservationInput
	if !decode(w, r, &in) {
		return
	}
	slot, fields := in.validate()
	if fields != nil {
		writeValidation(w, fields)
		return
	}

	ip := a.ClientIP(r)
	if err := a.Captcha.Verify(r.Context(), in.RecaptchaToken, ip); err != nil {
		if errors.Is(err, captcha.ErrFailed) {
			writeError(w, http.StatusBadRequest, "captcha_failed", "Captcha verification failed.")
			return
		}
		a.Log.WarnContext(r.Context(), "captcha unavailable", "err", err)
		writeError(w, http.StatusServiceUnavailable, "captcha_unavailable", "Captcha service unavailable, please try again.")
		return
	}

	d, err := a.Booking.Evaluate(r.Context(), booking.Candidate{
		Name:     in.Name,
		Email:    in.Email,
		Slot:     slot,
		IP:       ip,
		ClientID: a.Identity.FromRequest(r),
	})
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	if !d.Accepted() {
		writeError(w, http.StatusConflict, string(d.Reason), d.Reason.Message())
		return
	}

	if d.IssuedClientID != "" {
		a.Identity.SetCookie(w, d.IssuedClientID)
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":     "Reservation created",
		"reservation": viewOf(d.Reservation),
	})
}

func (a *api) slots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	date, err := model.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeValidation(w, map[string]string{"date": err.Error()})
		return
	}
	occ, err := a.Booking.Occupancy(r.Context(), date)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":     date,
		"capacity": model.MaxReservationsPerSlot,
		"slots":    occ,
	})
}

func (a *api) listReservations(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	list, err := a.Booking.List(r.Context())
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	out := make([]adminReservationView, len(list))
	for i := range list {
		out[i] = adminViewOf(&list[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *api) getReservation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := pathID(w, ps)
	if !ok {
		return
	}
	res, err := a.Booking.Get(r.Context(), id)
	if err != nil {
		a.reservationError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, adminViewOf(res))
}

func (a *api) updateReservation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := pathID(w, ps)
	if !ok {
		return
	}
	var in reservationInput
	if !decode(w, r, &in) {
		return
	}
	slot, fields := in.validate()
	if fields != nil {
		writeValidation(w, fields)
		return
	}

	res, err := a.Booking.Update(r.Context(), id, booking.Changes{Name: in.Name, Email: in.Email, Slot: slot})
	if err != nil {
		a.reservationError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, adminViewOf(res))
}

func (a *api) deleteReservation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := pathID(w, ps)
	if !ok {
		return
	}
	if err := a.Booking.Delete(r.Context(), id); err != nil {
		a.reservationError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) reservationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Reservation not found.")
	case errors.Is(err, booking.ErrSlotFull):
		writeError(w, http.StatusConflict, string(booking.SlotFull), booking.SlotFull.Message())
	default:
		writeInternal(w, r, err)
	}
}

func pathID(w http.ResponseWriter, ps httprouter.Params) (int64, bool) {
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil || id <= 0 {
		writeValidation(w, map[string]string{"id": "must be a positive integer"})
		return 0, false
	}
	return id, true
}
