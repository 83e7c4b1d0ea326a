package api

import (
	"context"
	"encoding/json"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"nyseclock/internal/market"
)

// MarketClockServiceName is the fully qualified gRPC service name, also used
// for health checks.
const MarketClockServiceName = "nyseclock.v1.MarketClock"

// MarketClockServer is the server API for the MarketClock service. Responses
// carry the same documents as the HTTP API, as google.protobuf.Struct.
type MarketClockServer interface {
	GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetUpcoming(context.Context, *wrapperspb.Int32Value) (*structpb.Struct, error)
	ListHolidays(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterMarketClockServer registers srv on the given gRPC server instance.
func RegisterMarketClockServer(gs grpc.ServiceRegistrar, srv MarketClockServer) {
	gs.RegisterService(&marketClockServiceDesc, srv)
}

var marketClockServiceDesc = grpc.ServiceDesc{
	ServiceName: MarketClockServiceName,
	HandlerType: (*MarketClockServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetStatus", Handler: getStatusHandler},
		{MethodName: "GetUpcoming", Handler: getUpcomingHandler},
		{MethodName: "ListHolidays", Handler: listHolidaysHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "nyseclock/v1/market_clock.proto",
}

func getStatusHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MarketClockServer).GetStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + MarketClockServiceName + "/GetStatus"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(MarketClockServer).GetStatus(ctx, req.(*emptypb.Empty))
	})
}

func getUpcomingHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int32Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MarketClockServer).GetUpcoming(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + MarketClockServiceName + "/GetUpcoming"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(MarketClockServer).GetUpcoming(ctx, req.(*wrapperspb.Int32Value))
	})
}

func listHolidaysHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MarketClockServer).ListHolidays(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + MarketClockServiceName + "/ListHolidays"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(MarketClockServer).ListHolidays(ctx, req.(*emptypb.Empty))
	})
}

// ClockService implements MarketClockServer over a market engine.
type ClockService struct {
	engine *market.Engine
	now    func() time.Time
}

// NewClockService creates a ClockService. A nil now means time.Now.
func NewClockService(engine *market.Engine, now func() time.Time) *ClockService {
	if now == nil {
		now = time.Now
	}
	return &ClockService{engine: engine, now: now}
}

// GetStatus returns the current status document.
func (c *ClockService) GetStatus(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(NewStatusJSON(c.engine.Snapshot(c.now())))
}

// GetUpcoming returns the next req.Value session boundaries. Zero means the
// default lookahead.
func (c *ClockService) GetUpcoming(_ context.Context, req *wrapperspb.Int32Value) (*structpb.Struct, error) {
	limit := int(req.GetValue())
	if limit < 0 || limit > maxLimit {
		return nil, status.Errorf(codes.InvalidArgument, "limit must be between 0 and %d", maxLimit)
	}
	now := c.now()
	return toStruct(UpcomingJSON{
		Now:    now.UTC(),
		Events: NewEventsJSON(now, c.engine.Upcoming(now, limit)),
	})
}

// ListHolidays returns the loaded holidays and the calendar state.
func (c *ClockService) ListHolidays(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	cal := c.engine.Calendar()
	resp := HolidaysJSON{CalendarState: string(cal.State()), Holidays: []HolidayJSON{}}
	for _, h := range cal.Holidays() {
		resp.Holidays = append(resp.Holidays, HolidayJSON{Date: h.Date.String(), Name: h.Name})
	}
	if err := cal.Err(); err != nil {
		resp.Error = err.Error()
	}
	return toStruct(resp)
}

// toStruct converts a JSON document type into a protobuf Struct.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	return out, nil
}

// MarketClockClient calls the MarketClock service over conn.
type MarketClockClient struct {
	conn grpc.ClientConnInterface
}

// NewMarketClockClient creates a client on an established connection.
func NewMarketClockClient(conn grpc.ClientConnInterface) *MarketClockClient {
	return &MarketClockClient{conn: conn}
}

// GetStatus fetches the status document.
func (c *MarketClockClient) GetStatus(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, "/"+MarketClockServiceName+"/GetStatus", &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUpcoming fetches the next limit session boundaries.
func (c *MarketClockClient) GetUpcoming(ctx context.Context, limit int32, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, "/"+MarketClockServiceName+"/GetUpcoming", wrapperspb.Int32(limit), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ListHolidays fetches the loaded holidays.
func (c *MarketClockClient) ListHolidays(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, "/"+MarketClockServiceName+"/ListHolidays", &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
