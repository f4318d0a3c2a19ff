package handler

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "barber.v1.AdminService"

// Full method names, for interceptor configuration.
const (
	MethodLogin             = "/" + ServiceName + "/Login"
	MethodListReservations  = "/" + ServiceName + "/ListReservations"
	MethodGetReservation    = "/" + ServiceName + "/GetReservation"
	MethodUpdateReservation = "/" + ServiceName + "/UpdateReservation"
	MethodDeleteReservation = "/" + ServiceName + "/DeleteReservation"
	MethodListAdmins        = "/" + ServiceName + "/ListAdmins"
)

type AdminServer interface {
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	ListReservations(context.Context, *ListReservationsRequest) (*ListReservationsResponse, error)
	GetReservation(context.Context, *GetReservationRequest) (*ReservationResponse, error)
	UpdateReservation(context.Context, *UpdateReservationRequest) (*ReservationResponse, error)
	DeleteReservation(context.Context, *DeleteReservationRequest) (*Empty, error)
	ListAdmins(context.Context, *Empty) (*ListAdminsResponse, error)
}

func unary[Req, Resp any](name string, call func(AdminServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AdminServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(AdminServer), ctx, req.(*Req))
			})
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AdminServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Login", AdminServer.Login),
		unary("ListReservations", AdminServer.ListReservations),
		unary("GetReservation", AdminServer.GetReservation),
		unary("UpdateReservation", AdminServer.UpdateReservation),
		unary("DeleteReservation", AdminServer.DeleteReservation),
		unary("ListAdmins", AdminServer.ListAdmins),
	},
	Metadata: "barber/v1/admin.proto",
}

func RegisterAdminServer(s grpc.ServiceRegistrar, srv AdminServer) {
	s.RegisterService(&serviceDesc, srv)
}

// Client calls the admin service over a connection dialled with
// grpc.WithDefaultCallOptions(grpc.ForceCodec(Codec{})).
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, MethodLogin, in, opts...)
}

func (c *Client) ListReservations(ctx context.Context, in *ListReservationsRequest, opts ...grpc.CallOption) (*ListReservationsResponse, error) {
	return invoke[ListReservationsResponse](ctx, c.cc, MethodListReservations, in, opts...)
}

func (c *Client) GetReservation(ctx context.Context, in *GetReservationRequest, opts ...grpc.CallOption) (*ReservationResponse, error) {
	return invoke[ReservationResponse](ctx, c.cc, MethodGetReservation, in, opts...)
}

func (c *Client) UpdateReservation(ctx context.Context, in *UpdateReservationRequest, opts ...grpc.CallOption) (*ReservationResponse, error) {
	return invoke[ReservationResponse](ctx, c.cc, MethodUpdateReservation, in, opts...)
}

func (c *Client) DeleteReservation(ctx context.Context, in *DeleteReservationRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeleteReservation, in, opts...)
}

func (c *Client) ListAdmins(ctx context.Context, opts ...grpc.CallOption) (*ListAdminsResponse, error) {
	return invoke[ListAdminsResponse](ctx, c.cc, MethodListAdmins, &Empty{}, opts...)
}
