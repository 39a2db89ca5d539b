package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey  = "observer"
	serviceName   = "focusforge.observer.v1.ActivityObserver"
	jsonCodecName = "json"
	methodObserve = "/" + serviceName + "/Observe"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "FOCUSFORGE_OBSERVER",
	MagicCookieValue: "focusforge",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

// Observation reports what the user is looking at right now. Empty fields
// mean the plugin could not see anything, which is not an error.
type Observation struct {
	Hostname string `json:"hostname"`
	TabID    string `json:"tab_id"`
}

type ActivityObserverServer interface {
	Observe(ctx context.Context, in *Empty) (*Observation, error)
}

type ActivityObserverClient interface {
	Observe(ctx context.Context) (*Observation, error)
}

type activityObserverClient struct {
	conn *grpc.ClientConn
}

func NewActivityObserverClient(conn *grpc.ClientConn) ActivityObserverClient {
	return &activityObserverClient{conn: conn}
}

func (c *activityObserverClient) Observe(ctx context.Context) (*Observation, error) {
	out := &Observation{}
	if err := c.conn.Invoke(ctx, methodObserve, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterActivityObserverServer(server grpc.ServiceRegistrar, impl ActivityObserverServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*ActivityObserverServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "Observe",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.Observe(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodObserve}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.Observe(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/observer-rpc-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl ActivityObserverServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterActivityObserverServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewActivityObserverClient(conn), nil
}

func PluginMap(impl ActivityObserverServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
