package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

const (
	appointmentsServiceName = "docconnect.v1.AppointmentsService"
	directoryServiceName    = "docconnect.v1.DirectoryService"
)

type AppointmentsServiceServer interface {
	ScheduleAppointment(context.Context, *ScheduleAppointmentRequest) (*ScheduleAppointmentResponse, error)
	ListAppointments(context.Context, *ListAppointmentsRequest) (*ListAppointmentsResponse, error)
	FilterAppointments(context.Context, *FilterAppointmentsRequest) (*ListAppointmentsResponse, error)
	GetDoctorTakenHours(context.Context, *GetDoctorTakenHoursRequest) (*GetDoctorTakenHoursResponse, error)
	DeleteAppointment(context.Context, *DeleteAppointmentRequest) (*emptypb.Empty, error)
}

var AppointmentsServiceDesc = grpc.ServiceDesc{
	ServiceName: appointmentsServiceName,
	HandlerType: (*AppointmentsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ScheduleAppointment", Handler: unaryHandler(appointmentsServiceName, "ScheduleAppointment", AppointmentsServiceServer.ScheduleAppointment)},
		{MethodName: "ListAppointments", Handler: unaryHandler(appointmentsServiceName, "ListAppointments", AppointmentsServiceServer.ListAppointments)},
		{MethodName: "FilterAppointments", Handler: unaryHandler(appointmentsServiceName, "FilterAppointments", AppointmentsServiceServer.FilterAppointments)},
		{MethodName: "GetDoctorTakenHours", Handler: unaryHandler(appointmentsServiceName, "GetDoctorTakenHours", AppointmentsServiceServer.GetDoctorTakenHours)},
		{MethodName: "DeleteAppointment", Handler: unaryHandler(appointmentsServiceName, "DeleteAppointment", AppointmentsServiceServer.DeleteAppointment)},
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterAppointmentsServiceServer(s grpc.ServiceRegistrar, srv AppointmentsServiceServer) {
	s.RegisterService(&AppointmentsServiceDesc, srv)
}

func fullMethod(service, method string) string {
	return "/" + service + "/" + method
}

func unaryHandler[Srv, Req, Resp any](service, method string, call func(Srv, context.Context, *Req) (Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(Srv), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(service, method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(Srv), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func invoke(ctx context.Context, cc grpc.ClientConnInterface, service, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	return cc.Invoke(ctx, fullMethod(service, method), in, out, opts...)
}

// AppointmentsClient calls the service over the JSON codec.
type AppointmentsClient struct {
	cc grpc.ClientConnInterface
}

func NewAppointmentsClient(cc grpc.ClientConnInterface) *AppointmentsClient {
	return &AppointmentsClient{cc: cc}
}

func (c *AppointmentsClient) ScheduleAppointment(ctx context.Context, in *ScheduleAppointmentRequest, opts ...grpc.CallOption) (*ScheduleAppointmentResponse, error) {
	out := new(ScheduleAppointmentResponse)
	if err := c.invoke(ctx, "ScheduleAppointment", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AppointmentsClient) ListAppointments(ctx context.Context, in *ListAppointmentsRequest, opts ...grpc.CallOption) (*ListAppointmentsResponse, error) {
	out := new(ListAppointmentsResponse)
	if err := c.invoke(ctx, "ListAppointments", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AppointmentsClient) FilterAppointments(ctx context.Context, in *FilterAppointmentsRequest, opts ...grpc.CallOption) (*ListAppointmentsResponse, error) {
	out := new(ListAppointmentsResponse)
	if err := c.invoke(ctx, "FilterAppointments", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AppointmentsClient) GetDoctorTakenHours(ctx context.Context, in *GetDoctorTakenHoursRequest, opts ...grpc.CallOption) (*GetDoctorTakenHoursResponse, error) {
	out := new(GetDoctorTakenHoursResponse)
	if err := c.invoke(ctx, "GetDoctorTakenHours", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AppointmentsClient) DeleteAppointment(ctx context.Context, in *DeleteAppointmentRequest, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.invoke(ctx, "DeleteAppointment", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AppointmentsClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	return invoke(ctx, c.cc, appointmentsServiceName, method, in, out, opts)
}
