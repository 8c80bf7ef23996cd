package payload

import (
	"github.com/joelcalolo/MoFleet-sub000/internal/availability"
	"github.com/joelcalolo/MoFleet-sub000/internal/calendar"
	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
	"github.com/joelcalolo/MoFleet-sub000/internal/service"
)

type Options struct {
	StartDate       string `json:"start_date" validate:"required"`
	EndDate         string `json:"end_date" validate:"required"`
	Location        string `json:"location" validate:"required,oneof=in_city out_of_city"`
	WithDriver      bool   `json:"with_driver"`
	IncludeDelivery bool   `json:"include_delivery"`
	IncludePickup   bool   `json:"include_pickup"`
}

func (o Options) booking() (service.BookingRequest, error) {
	start, end, err := parseDates(o.StartDate, o.EndDate)
	if err != nil {
		return service.BookingRequest{}, err
	}
	return service.BookingRequest{
		Start:           start,
		End:             end,
		Location:        domain.LocationType(o.Location),
		WithDriver:      o.WithDriver,
		IncludeDelivery: o.IncludeDelivery,
		IncludePickup:   o.IncludePickup,
	}, nil
}

type Quote struct {
	VehicleID string `json:"vehicle_id" validate:"required,uuid"`
	Options
	ExcludeReservationID string `json:"exclude_reservation_id" validate:"omitempty,uuid"`
}

func (q Quote) ToService() (service.QuoteRequest, error) {
	b, err := q.booking()
	if err != nil {
		return service.QuoteRequest{}, err
	}
	b.VehicleID = q.VehicleID
	return service.QuoteRequest{BookingRequest: b, ExcludeReservationID: q.ExcludeReservationID}, nil
}

type CreateReservation struct {
	VehicleID  string `json:"vehicle_id" validate:"required,uuid"`
	CustomerID string `json:"customer_id" validate:"required,uuid"`
	Options
	Notes string `json:"notes" validate:"max=2000"`
}

func (c CreateReservation) ToService() (service.BookingRequest, error) {
	b, err := c.booking()
	if err != nil {
		return b, err
	}
	b.VehicleID = c.VehicleID
	b.CustomerID = c.CustomerID
	b.Notes = c.Notes
	return b, nil
}

type UpdateReservation struct {
	ID string `json:"id" validate:"required,uuid"`
	Options
	Notes string `json:"notes" validate:"max=2000"`
}

func (u UpdateReservation) ToService() (service.BookingRequest, error) {
	b, err := u.booking()
	if err != nil {
		return b, err
	}
	b.Notes = u.Notes
	return b, nil
}

type ConfirmReservation struct {
	ID          string `json:"id" validate:"required,uuid"`
	DepositPaid bool   `json:"deposit_paid"`
}

type ListVehicleReservations struct {
	VehicleID string `json:"vehicle_id" validate:"required,uuid"`
	Status    string `json:"status" validate:"omitempty,oneof=pending confirmed active completed cancelled"`
	Page
}

type Checkout struct {
	ReservationID   string `json:"reservation_id" validate:"required,uuid"`
	DepartureAt     string `json:"departure_at" validate:"required"`
	StartOdometerKm int64  `json:"start_odometer_km" validate:"gte=0"`
	DeliveredTo     string `json:"delivered_to"`
	Notes           string `json:"notes" validate:"max=2000"`
}

func (c Checkout) ToService() (service.CheckoutRequest, error) {
	departure, err := calendar.ParseDateTime(c.DepartureAt)
	if err != nil {
		return service.CheckoutRequest{}, withField(err, "departure_at")
	}
	return service.CheckoutRequest{
		ReservationID:   c.ReservationID,
		DepartureAt:     departure,
		StartOdometerKm: c.StartOdometerKm,
		DeliveredTo:     c.DeliveredTo,
		Notes:           c.Notes,
	}, nil
}

type Checkin struct {
	ReservationID        string `json:"reservation_id" validate:"required,uuid"`
	ReturnedAt           string `json:"returned_at" validate:"required"`
	EndOdometerKm        int64  `json:"end_odometer_km" validate:"gte=0"`
	ReceivedBy           string `json:"received_by"`
	DepositReturned      bool   `json:"deposit_returned"`
	DepositReturnedCents int64  `json:"deposit_returned_cents" validate:"gte=0"`
	FinesCents           int64  `json:"fines_cents" validate:"gte=0"`
	ExtraFeesCents       int64  `json:"extra_fees_cents" validate:"gte=0"`
	Notes                string `json:"notes" validate:"max=2000"`
}

func (c Checkin) ToService() (service.CheckinRequest, error) {
	returned, err := calendar.ParseDateTime(c.ReturnedAt)
	if err != nil {
		return service.CheckinRequest{}, withField(err, "returned_at")
	}
	return service.CheckinRequest{
		ReservationID:        c.ReservationID,
		ReturnedAt:           returned,
		EndOdometerKm:        c.EndOdometerKm,
		ReceivedBy:           c.ReceivedBy,
		DepositReturned:      c.DepositReturned,
		DepositReturnedCents: c.DepositReturnedCents,
		FinesCents:           c.FinesCents,
		ExtraFeesCents:       c.ExtraFeesCents,
		Notes:                c.Notes,
	}, nil
}

type Vehicle struct {
	ID    string `json:"id" validate:"omitempty,uuid"`
	Plate string `json:"plate" validate:"required,max=20"`
	Brand string `json:"brand" validate:"max=100"`
	Model string `json:"model" validate:"max=100"`
	Year  int32  `json:"year" validate:"omitempty,gte=1950,lte=2100"`

	InCityWithoutDriverCents    int64 `json:"in_city_without_driver_cents" validate:"gte=0"`
	InCityWithDriverCents       int64 `json:"in_city_with_driver_cents" validate:"gte=0"`
	OutOfCityWithoutDriverCents int64 `json:"out_of_city_without_driver_cents" validate:"gte=0"`
	OutOfCityWithDriverCents    int64 `json:"out_of_city_with_driver_cents" validate:"gte=0"`

	DeliveryFeeCents      int64 `json:"delivery_fee_cents" validate:"gte=0"`
	PickupFeeCents        int64 `json:"pickup_fee_cents" validate:"gte=0"`
	DailyAllowanceKm      int64 `json:"daily_allowance_km" validate:"gte=0"`
	ExcessPricePerKmCents int64 `json:"excess_price_per_km_cents" validate:"gte=0"`
}

func (v Vehicle) ToDomain() *domain.Vehicle {
	return &domain.Vehicle{
		ID:    v.ID,
		Plate: v.Plate,
		Brand: v.Brand,
		Model: v.Model,
		Year:  v.Year,
		Rates: domain.RateMatrix{
			InCityWithoutDriverCents:    v.InCityWithoutDriverCents,
			InCityWithDriverCents:       v.InCityWithDriverCents,
			OutOfCityWithoutDriverCents: v.OutOfCityWithoutDriverCents,
			OutOfCityWithDriverCents:    v.OutOfCityWithDriverCents,
		},
		DeliveryFeeCents:      v.DeliveryFeeCents,
		PickupFeeCents:        v.PickupFeeCents,
		DailyAllowanceKm:      v.DailyAllowanceKm,
		ExcessPricePerKmCents: v.ExcessPricePerKmCents,
	}
}

type ListVehicles struct {
	OnlyAvailable bool `json:"only_available"`
	Page
}

type Customer struct {
	ID             string `json:"id" validate:"omitempty,uuid"`
	Name           string `json:"name" validate:"required,max=200"`
	Phone          string `json:"phone" validate:"max=40"`
	Email          string `json:"email" validate:"omitempty,email"`
	DocumentNumber string `json:"document_number" validate:"max=60"`
	Address        string `json:"address" validate:"max=500"`
}

func (c Customer) ToDomain() *domain.Customer {
	return &domain.Customer{
		ID:             c.ID,
		Name:           c.Name,
		Phone:          c.Phone,
		Email:          c.Email,
		DocumentNumber: c.DocumentNumber,
		Address:        c.Address,
	}
}

type SearchCustomers struct {
	Query string `json:"query" validate:"max=200"`
	Page
}

type Ref struct {
	ID string `json:"id" validate:"required,uuid"`
}

// Availability is the query of GET /vehicles/{id}/availability.
type Availability struct {
	VehicleID string `json:"vehicle_id" validate:"required,uuid"`
	Start     string `json:"start" validate:"required"`
	End       string `json:"end" validate:"required"`
	Exclude   string `json:"exclude" validate:"omitempty,uuid"`
}

func (a Availability) ToCandidate() (availability.Candidate, error) {
	start, end, err := parseDates(a.Start, a.End)
	if err != nil {
		return availability.Candidate{}, err
	}
	return availability.Candidate{VehicleID: a.VehicleID, Start: start, End: end, ExcludeID: a.Exclude}, nil
}
