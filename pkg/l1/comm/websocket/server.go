package websocket

import (
	"context"
	"encoding/json"
	"net"
	"net/http"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/fmtx/pkg/framework"
	"github.com/robotalks/fmtx/pkg/l1"
	"github.com/robotalks/fmtx/pkg/l1/comm"
)

// Paths served by Server.
const (
	PathConnect = "/fmtx"
	PathMeta    = "/meta"
)

// Server exposes the device over websocket. Each websocket connection is
// served by the Hub and the device info is available as JSON on PathMeta.
type Server struct {
	Addr string
	Hub  *comm.Hub
	Info l1.DeviceInfo

	listener net.Listener
}

// NewServer creates a Server.
func NewServer(addr string, info l1.DeviceInfo, hub *comm.Hub) *Server {
	return &Server{Addr: addr, Info: info, Hub: hub}
}

// Handler returns the http.Handler of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(PathConnect, websocket.Handler(func(conn *websocket.Conn) {
		conn.PayloadType = websocket.BinaryFrame
		s.Hub.Serve(New(conn))
	}))
	mux.HandleFunc(PathMeta, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(&s.Info)
	})
	return mux
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
	glog.Infof("websocket: listening on %s", s.listener.Addr())
	srv := &http.Server{Handler: s.Handler()}
	return fx.RunWithContextCloser(ctx, srv, func() error {
		return srv.Serve(s.listener)
	})
}

// AddToLoop implements LoopAdder.
func (s *Server) AddToLoop(l *fx.Loop) {
	l.Add(s.Hub)
	l.AddRunnable(s)
}
