package grpc

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joelcalolo/MoFleet-sub000/internal/api/payload"
	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
	"github.com/joelcalolo/MoFleet-sub000/internal/service"
)

type Handler struct {
	reservationSvc service.ReservationService
	vehicleSvc     service.VehicleService
	customerSvc    service.CustomerService
}

func NewHandler(reservationSvc service.ReservationService, vehicleSvc service.VehicleService, customerSvc service.CustomerService) *Handler {
	return &Handler{
		reservationSvc: reservationSvc,
		vehicleSvc:     vehicleSvc,
		customerSvc:    customerSvc,
	}
}

// reply encodes v or maps err.
func reply(ctx context.Context, v any, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	out, err := encode(v)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return out, nil
}

func (h *Handler) Quote(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req payload.Quote
	if err := decode(in, &req); err != nil {
		return nil, toStatus(ctx, err)
	}
	q, err := req.ToService()
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	quote, err := h.reservationSvc.Quote(ctx, q)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return reply(ctx, payload.NewQuoteView(quote), nil)
}

func (h *Handler) CreateReservation(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	actor, err := ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	var req payload.CreateReservation
	if err := decode(in, &req); err != nil {
		return nil, toStatus(ctx, err)
	}
	b, err := req.ToService()
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	r, err := h.reservationSvc.CreateReservation(ctx, actor, b)
	return reply(ctx, payload.ReservationView{Reservation: r}, err)
}

func (h *Handler) UpdateReservation(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	actor, err := ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	var req payload.UpdateReservation
	if err := decode(in, &req); err != nil {
		return nil, toStatus(ctx, err)
	}
	b, err := req.ToService()
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	r, err := h.reservationSvc.UpdateReservation(ctx, actor, req.ID, b)
	return reply(ctx, payload.ReservationView{Reservation: r}, err)
}

func (h *Handler) ConfirmReservation(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	actor, err := ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	var req payload.ConfirmReservation
	if err := decode(in, &req); err != nil {
		return nil, toStatus(ctx, err)
	}
	r, err := h.reservationSvc.ConfirmReservation(ctx, actor, req.ID, req.DepositPaid)
	return reply(ctx, payload.ReservationView{Reservation: r}, err)
}

func (h *Handler) CancelReservation(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	actor, err := ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	var req payload.Ref
	if err := decode(in, &req); err != nil {
		return nil, toStatus(ctx, err)
	}
	r, err := h.reservationSvc.CancelReservation(ctx, actor, req.ID)
	return reply(ctx, payload.ReservationView{Reservation: r}, err)
}

func (h *Handler) Checkout(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	actor, err := ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	var req payload.Checkout
	if err := decode(in, &req); err != nil {
		return nil, toStatus(ctx, err)
	}
	co, err := req.ToService()
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	checkout, err := h.reservationSvc.Checkout(ctx, actor, co)
	return reply(ctx, payload.CheckoutView{Checkout: checkout}, err)
}

func (h *Handler) Checkin(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	actor, err := ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	var req payload.Checkin
	if err := decode(in, &req); err != nil {
		return nil, toStatus(ctx, err)
	}
	ci, err := req.ToService()
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	res, err := h.reservationSvc.Checkin(ctx, actor, ci)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return reply(ctx, payload.NewCheckinView(res), nil)
}

func (h *Handler) GetReservation(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req payload.Ref
	if err := decode(in, &req); err != nil {
		return nil, toStatus(ctx, err)
	}
	d, err := h.reservationSvc.GetReservation(ctx, req.ID)
	if err != nil {
		return nil, toStatus(ctx, err)
	}
	return reply(ctx, payload.NewReservationDetailView(d), nil)
}

func (h *Handler) ListVehicleReservations(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req payload.ListVehicleReservations
	if err := decode(in, &req); err != nil {
		return nil, toStatus(ctx, err)
	}
	list, total, err := h.reservationSvc.ListVehicleReservations(ctx, req.VehicleID, domain.ReservationStatus(req.Status), req.Page.Page, req.Size())
	return reply(ctx, payload.NewListView(list, total), err)
}

func (h *Handler) CreateVehicle(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	actor, err := ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	var req payload.Vehicle
	if err := decode(in, &req); err != nil {
		return nil, toStatus(ctx, err)
	}
	v := req.ToDomain()
	err = h.vehicleSvc.CreateVehicle(ctx, actor, v)
	return reply(ctx, payload.VehicleView{Vehicle: v}, err)
}

func (h *Handler) GetVehicle(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req payload.Ref
	if err := decode(in, &req); err != nil {
		return nil, toStatus(ctx, err)
	}
	v, err := h.vehicleSvc.GetVehicle(ctx, req.ID)
	return reply(ctx, payload.VehicleView{Vehicle: v}, err)
}

func (h *Handler) ListVehicles(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req payload.ListVehicles
	if err := decode(in, &req); err != nil {
		return nil, toStatus(ctx, err)
	}
	list, total, err := h.vehicleSvc.ListVehicles(ctx, req.OnlyAvailable, req.Page.Page, req.Size())
	return reply(ctx, payload.NewListView(list, total), err)
}

func (h *Handler) UpdateVehicle(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if _, err := ActorFromContext(ctx); err != nil {
		return nil, err
	}
	var req payload.Vehicle
	if err := decode(in, &req); err != nil {
		return nil, toStatus(ctx, err)
	}
	if req.ID == "" {
		return nil, toStatus(ctx, domain.NewValidationError("id", "is required"))
	}
	v, err := h.vehicleSvc.UpdateVehicle(ctx, req.ToDomain())
	return reply(ctx, payload.VehicleView{Vehicle: v}, err)
}

func (h *Handler) CreateCustomer(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	actor, err := ActorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	var req payload.Customer
	if err := decode(in, &req); err != nil {
		return nil, toStatus(ctx, err)
	}
	c := req.ToDomain()
	err = h.customerSvc.CreateCustomer(ctx, actor, c)
	return reply(ctx, payload.CustomerView{Customer: c}, err)
}

func (h *Handler) GetCustomer(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req payload.Ref
	if err := decode(in, &req); err != nil {
		return nil, toStatus(ctx, err)
	}
	c, err := h.customerSvc.GetCustomer(ctx, req.ID)
	return reply(ctx, payload.CustomerView{Customer: c}, err)
}

func (h *Handler) UpdateCustomer(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if _, err := ActorFromContext(ctx); err != nil {
		return nil, err
	}
	var req payload.Customer
	if err := decode(in, &req); err != nil {
		return nil, toStatus(ctx, err)
	}
	if req.ID == "" {
		return nil, toStatus(ctx, domain.NewValidationError("id", "is required"))
	}
	c, err := h.customerSvc.UpdateCustomer(ctx, req.ToDomain())
	return reply(ctx, payload.CustomerView{Customer: c}, err)
}

func (h *Handler) SearchCustomers(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req payload.SearchCustomers
	if err := decode(in, &req); err != nil {
		return nil, toStatus(ctx, err)
	}
	list, total, err := h.customerSvc.SearchCustomers(ctx, req.Query, req.Page.Page, req.Size())
	return reply(ctx, payload.NewListView(list, total), err)
}
