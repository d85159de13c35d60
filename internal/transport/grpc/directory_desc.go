package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
)

type DirectoryServiceServer interface {
	SuggestSpecialists(context.Context, *SuggestSpecialistsRequest) (*SuggestSpecialistsResponse, error)
	FilterSpecialists(context.Context, *FilterSpecialistsRequest) (*FilterSpecialistsResponse, error)
	GetSpecialist(context.Context, *GetSpecialistRequest) (*GetSpecialistResponse, error)
	SuggestCities(context.Context, *SuggestCitiesRequest) (*SuggestCitiesResponse, error)
	ListSpecialties(context.Context, *emptypb.Empty) (*ListSpecialtiesResponse, error)
}

var DirectoryServiceDesc = grpc.ServiceDesc{
	ServiceName: directoryServiceName,
	HandlerType: (*DirectoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SuggestSpecialists", Handler: unaryHandler(directoryServiceName, "SuggestSpecialists", DirectoryServiceServer.SuggestSpecialists)},
		{MethodName: "FilterSpecialists", Handler: unaryHandler(directoryServiceName, "FilterSpecialists", DirectoryServiceServer.FilterSpecialists)},
		{MethodName: "GetSpecialist", Handler: unaryHandler(directoryServiceName, "GetSpecialist", DirectoryServiceServer.GetSpecialist)},
		{MethodName: "SuggestCities", Handler: unaryHandler(directoryServiceName, "SuggestCities", DirectoryServiceServer.SuggestCities)},
		{MethodName: "ListSpecialties", Handler: unaryHandler(directoryServiceName, "ListSpecialties", DirectoryServiceServer.ListSpecialties)},
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterDirectoryServiceServer(s grpc.ServiceRegistrar, srv DirectoryServiceServer) {
	s.RegisterService(&DirectoryServiceDesc, srv)
}

// DirectoryClient calls the doctor directory over the JSON codec.
type DirectoryClient struct {
	cc grpc.ClientConnInterface
}

func NewDirectoryClient(cc grpc.ClientConnInterface) *DirectoryClient {
	return &DirectoryClient{cc: cc}
}

func (c *DirectoryClient) SuggestSpecialists(ctx context.Context, in *SuggestSpecialistsRequest, opts ...grpc.CallOption) (*SuggestSpecialistsResponse, error) {
	out := new(SuggestSpecialistsResponse)
	if err := invoke(ctx, c.cc, directoryServiceName, "SuggestSpecialists", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DirectoryClient) FilterSpecialists(ctx context.Context, in *FilterSpecialistsRequest, opts ...grpc.CallOption) (*FilterSpecialistsResponse, error) {
	out := new(FilterSpecialistsResponse)
	if err := invoke(ctx, c.cc, directoryServiceName, "FilterSpecialists", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DirectoryClient) GetSpecialist(ctx context.Context, in *GetSpecialistRequest, opts ...grpc.CallOption) (*GetSpecialistResponse, error) {
	out := new(GetSpecialistResponse)
	if err := invoke(ctx, c.cc, directoryServiceName, "GetSpecialist", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DirectoryClient) SuggestCities(ctx context.Context, in *SuggestCitiesRequest, opts ...grpc.CallOption) (*SuggestCitiesResponse, error) {
	out := new(SuggestCitiesResponse)
	if err := invoke(ctx, c.cc, directoryServiceName, "SuggestCities", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DirectoryClient) ListSpecialties(ctx context.Context, opts ...grpc.CallOption) (*ListSpecialtiesResponse, error) {
	out := new(ListSpecialtiesResponse)
	if err := invoke(ctx, c.cc, directoryServiceName, "ListSpecialties", &emptypb.Empty{}, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
