package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service. Every message is a
// google.protobuf.Struct carrying the JSON documents of package payload.
const ServiceName = "mofleet.v1.ReservationService"

type ReservationServiceServer interface {
	Quote(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateReservation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateReservation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ConfirmReservation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CancelReservation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Checkout(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Checkin(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetReservation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListVehicleReservations(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateVehicle(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetVehicle(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListVehicles(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateVehicle(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateCustomer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCustomer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateCustomer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SearchCustomers(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type rpc func(ReservationServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func method(name string, call rpc) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(ReservationServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var ReservationServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ReservationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method("Quote", ReservationServiceServer.Quote),
		method("CreateReservation", ReservationServiceServer.CreateReservation),
		method("UpdateReservation", ReservationServiceServer.UpdateReservation),
		method("ConfirmReservation", ReservationServiceServer.ConfirmReservation),
		method("CancelReservation", ReservationServiceServer.CancelReservation),
		method("Checkout", ReservationServiceServer.Checkout),
		method("Checkin", ReservationServiceServer.Checkin),
		method("GetReservation", ReservationServiceServer.GetReservation),
		method("ListVehicleReservations", ReservationServiceServer.ListVehicleReservations),
		method("CreateVehicle", ReservationServiceServer.CreateVehicle),
		method("GetVehicle", ReservationServiceServer.GetVehicle),
		method("ListVehicles", ReservationServiceServer.ListVehicles),
		method("UpdateVehicle", ReservationServiceServer.UpdateVehicle),
		method("CreateCustomer", ReservationServiceServer.CreateCustomer),
		method("GetCustomer", ReservationServiceServer.GetCustomer),
		method("UpdateCustomer", ReservationServiceServer.UpdateCustomer),
		method("SearchCustomers", ReservationServiceServer.SearchCustomers),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mofleet/v1/reservation.proto",
}

func RegisterReservationServiceServer(s grpc.ServiceRegistrar, srv ReservationServiceServer) {
	s.RegisterService(&ReservationServiceDesc, srv)
}
