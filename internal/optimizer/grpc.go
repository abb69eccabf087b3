package optimizer

import (
	"context"
	"encoding/json"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/kroma-network/qproof-proxy/internal/qproof"
)

const (
	ServiceName  = "qproof.optimizer.v1.Optimizer"
	searchMethod = "/" + ServiceName + "/Search"
)

type (
	SearchRequest struct {
		Features qproof.FeatureSet `json:"features"`
		Seed     qproof.Seed       `json:"seed"`
	}

	SearchResponse struct {
		Path qproof.SolutionPath `json:"path"`
	}
)

// jsonCodec carries search messages as JSON so no generated protobuf code is needed.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                               { return "json" }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// GRPC calls a remote optimization engine over gRPC. The reason of a failed search is the
// status message sent by the engine.
type GRPC struct {
	conn   *grpc.ClientConn
	health healthpb.HealthClient
}

var _ Remote = &GRPC{}

func DialGRPC(target string, opts ...grpc.DialOption) (*GRPC, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.Dial(target, opts...)
	if err != nil {
		return nil, err
	}
	return NewGRPC(conn), nil
}

func NewGRPC(conn *grpc.ClientConn) *GRPC {
	return &GRPC{conn: conn, health: healthpb.NewHealthClient(conn)}
}

func (g *GRPC) Search(ctx context.Context, features qproof.FeatureSet, seed qproof.Seed) (qproof.SolutionPath, error) {
	var response SearchResponse
	err := g.conn.Invoke(ctx, searchMethod, &SearchRequest{Features: features, Seed: seed}, &response,
		grpc.CallContentSubtype(jsonCodec{}.Name()))
	if err != nil {
		if st, ok := status.FromError(err); ok {
			return nil, errors.New(st.Message())
		}
		return nil, err
	}
	return response.Path, nil
}

// Ping uses the standard gRPC health service.
func (g *GRPC) Ping(ctx context.Context) error {
	res, err := g.health.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return err
	}
	if res.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return status.Errorf(codes.Unavailable, "optimizer is %s", res.GetStatus())
	}
	return nil
}

func (g *GRPC) Close() error { return g.conn.Close() }

var searchServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*qproof.Optimizer)(nil),
	Methods: []grpc.MethodDesc{{
		MethodName: "Search",
		Handler:    searchHandler,
	}},
	Streams:  []grpc.StreamDesc{},
	Metadata: "qproof/optimizer/v1/optimizer.proto",
}

// RegisterGRPCServer exposes engine on s as the Optimizer service.
func RegisterGRPCServer(s *grpc.Server, engine qproof.Optimizer) {
	s.RegisterService(&searchServiceDesc, engine)
}

func searchHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(SearchRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	search := func(ctx context.Context, req interface{}) (interface{}, error) {
		r := req.(*SearchRequest)
		path, err := srv.(qproof.Optimizer).Search(ctx, r.Features, r.Seed)
		if err != nil {
			return nil, status.Error(codes.NotFound, err.Error())
		}
		return &SearchResponse{Path: path}, nil
	}
	if interceptor == nil {
		return search(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: searchMethod}
	return interceptor(ctx, in, info, search)
}
