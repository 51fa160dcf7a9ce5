package stream

import (
	"context"
	"net"

	"github.com/golang/glog"

	fx "github.com/robotalks/fmtx/pkg/framework"
	"github.com/robotalks/fmtx/pkg/l1"
	"github.com/robotalks/fmtx/pkg/l1/comm"
)

// Server accepts TCP connections and serves them with a Hub.
type Server struct {
	Addr string
	Hub  *comm.Hub

	listener net.Listener
}

// NewServer creates a Server listening on addr.
func NewServer(addr string, hub *comm.Hub) *Server {
	return &Server{Addr: addr, Hub: hub}
}

// Listen opens the listener, it's called by Run if not done before.
func (s *Server) Listen() error {
	if s.listener != nil {
		return nil
	}
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.listener = ln
	return nil
}

// ListenAddr returns the bound address.
func (s *Server) ListenAddr() net.Addr {
	return s.listener.Addr()
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	glog.Infof("stream: listening on %s", s.listener.Addr())
	return fx.RunWithContextCloser(ctx, s.listener, func() error {
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				return err
			}
			go s.Hub.Serve(New(conn))
		}
	})
}

// AddToLoop implements LoopAdder.
func (s *Server) AddToLoop(l *fx.Loop) {
	l.Add(s.Hub)
	l.AddRunnable(s)
}

// Conn is a DeviceConn over TCP.
type Conn struct {
	comm.DeviceConn
}

// Dial connects to a Server.
func Dial(ctx context.Context, addr string) (l1.DeviceConn, error) {
	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	conn := &Conn{}
	conn.Init(New(c))
	return conn, nil
}

// Connector implements l1.Connector against a single Server.
type Connector struct {
	Addr string
	// Ref is reported by Discover.
	Ref l1.DeviceRef
}

// Discover implements l1.Connector.
func (c *Connector) Discover(ctx context.Context) ([]l1.DeviceInfo, error) {
	return []l1.DeviceInfo{{Ref: c.Ref}}, nil
}

// Connect implements l1.Connector.
func (c *Connector) Connect(ctx context.Context, ref l1.DeviceRef) (l1.DeviceConn, error) {
	return Dial(ctx, c.Addr)
}
