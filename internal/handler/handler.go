// Package handler serves the admin console's gRPC API.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"barber-reservation-api/internal/admins"
	"barber-reservation-api/internal/booking"
	"barber-reservation-api/internal/model"
)

type Handler struct {
	booking *booking.Controller
	admins  *admins.Service
	log     *slog.Logger
}

var _ AdminServer = (*Handler)(nil)

func New(b *booking.Controller, a *admins.Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{booking: b, admins: a, log: log}
}

// internal logs err and hides it from the caller.
func (h *Handler) internal(ctx context.Context, op string, err error) error {
	h.log.ErrorContext(ctx, "grpc call failed", "op", op, "err", err)
	return status.Error(codes.Internal, "internal error")
}

func (h *Handler) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, status.Error(codes.InvalidArgument, "username and password required")
	}
	tok, a, err := h.admins.Login(ctx, req.Username, req.Password)
	if errors.Is(err, admins.ErrInvalidCredentials) {
		return nil, status.Error(codes.Unauthenticated, "invalid credentials")
	}
	if err != nil {
		return nil, h.internal(ctx, "login", err)
	}
	return &LoginResponse{Token: tok, AdminID: a.ID, Username: a.Username}, nil
}

func (h *Handler) ListReservations(ctx context.Context, req *ListReservationsRequest) (*ListReservationsResponse, error) {
	var (
		list []model.Reservation
		err  error
	)
	if req.Date == "" {
		list, err = h.booking.List(ctx)
	} else {
		day, perr := model.ParseDate(req.Date)
		if perr != nil {
			return nil, status.Error(codes.InvalidArgument, perr.Error())
		}
		list, err = h.booking.ListByDate(ctx, day)
	}
	if err != nil {
		return nil, h.internal(ctx, "list reservations", err)
	}
	out := make([]Reservation, len(list))
	for i := range list {
		out[i] = toMessage(&list[i])
	}
	return &ListReservationsResponse{Reservations: out}, nil
}

func (h *Handler) GetReservation(ctx context.Context, req *GetReservationRequest) (*ReservationResponse, error) {
	if req.ID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	r, err := h.booking.Get(ctx, req.ID)
	if err != nil {
		return nil, h.reservationErr(ctx, "get reservation", err)
	}
	return &ReservationResponse{Reservation: toMessage(r)}, nil
}

func (h *Handler) UpdateReservation(ctx context.Context, req *UpdateReservationRequest) (*ReservationResponse, error) {
	if req.ID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	name, email := strings.TrimSpace(req.Name), strings.TrimSpace(req.Email)
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "name required")
	}
	if !model.ValidEmail(email) {
		return nil, status.Error(codes.InvalidArgument, "invalid email")
	}
	slot, err := model.ParseSlotKey(req.Date, req.Time)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	r, err := h.booking.Update(ctx, req.ID, booking.Changes{Name: name, Email: email, Slot: slot})
	if err != nil {
		return nil, h.reservationErr(ctx, "update reservation", err)
	}
	return &ReservationResponse{Reservation: toMessage(r)}, nil
}

func (h *Handler) DeleteReservation(ctx context.Context, req *DeleteReservationRequest) (*Empty, error) {
	if req.ID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	if err := h.booking.Delete(ctx, req.ID); err != nil {
		return nil, h.reservationErr(ctx, "delete reservation", err)
	}
	return &Empty{}, nil
}

func (h *Handler) ListAdmins(ctx context.Context, _ *Empty) (*ListAdminsResponse, error) {
	list, err := h.admins.List(ctx)
	if err != nil {
		return nil, h.internal(ctx, "list admins", err)
	}
	out := make([]Admin, len(list))
	for i, a := range list {
		out[i] = Admin{ID: a.ID, Username: a.Username, CreatedAt: a.CreatedAt}
	}
	return &ListAdminsResponse{Admins: out}, nil
}

func (h *Handler) reservationErr(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, booking.ErrSlotFull):
		return status.Error(codes.FailedPrecondition, booking.SlotFull.Message())
	}
	return h.internal(ctx, op, err)
}

func toMessage(r *model.Reservation) Reservation {
	return Reservation{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Date:      r.Date,
		Time:      r.Time,
		IPAddress: r.IPAddress,
		ClientID:  r.ClientID,
		CreatedAt: r.CreatedAt,
	}
}
