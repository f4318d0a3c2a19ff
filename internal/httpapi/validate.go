package httpapi

import (
	"strings"

	"barber-reservation-api/internal/model"
)

type reservationInput struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	RecaptchaToken string `json:"recaptcha_token,omitempty"`
}

// validate trims the input in place and returns the parsed slot, or the
// per-field problems.
func (in *reservationInput) validate() (model.SlotKey, map[string]string) {
	fields := map[string]string{}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	if in.Name == "" {
		fields["name"] = "must not be blank"
	}
	if !model.ValidEmail(in.Email) {
		fields["email"] = "must be a valid email address"
	}
	date, err := model.ParseDate(strings.TrimSpace(in.Date))
	if err != nil {
		fields["date"] = err.Error()
	}
	clock, err := model.ParseTime(strings.TrimSpace(in.Time))
	if err != nil {
		fields["time"] = err.Error()
	}
	if len(fields) > 0 {
		return model.SlotKey{}, fields
	}
	return model.SlotKey{Date: date, Time: clock}, nil
}
