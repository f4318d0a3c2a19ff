package handler

import "time"

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	AdminID  int64  `json:"admin_id"`
	Username string `json:"username"`
}

type Reservation struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	IPAddress string    `json:"ip_address,omitempty"`
	ClientID  string    `json:"client_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ListReservationsRequest struct {
	// Date narrows the listing to one day when set.
	Date string `json:"date,omitempty"`
}

type ListReservationsResponse struct {
	Reservations []Reservation `json:"reservations"`
}

type GetReservationRequest struct {
	ID int64 `json:"id"`
}

type ReservationResponse struct {
	Reservation Reservation `json:"reservation"`
}

type UpdateReservationRequest struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Date  string `json:"date"`
	Time  string `json:"time"`
}

type DeleteReservationRequest struct {
	ID int64 `json:"id"`
}

type Empty struct{}

type Admin struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type ListAdminsResponse struct {
	Admins []Admin `json:"admins"`
}
