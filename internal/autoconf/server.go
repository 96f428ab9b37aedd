package autoconf

import (
	"context"
	"net"
	"net/rpc"
	"os"
	"path/filepath"
	"sync"
	"time"

	"grimm.is/ifconf/internal/errors"
	"grimm.is/ifconf/internal/logging"
	"grimm.is/ifconf/internal/netaddr"
)

// rpcName is the name the service is registered under.
const rpcName = "Service"

// rpcService exposes a Service over net/rpc.
type rpcService struct {
	svc *Service
}

func (r *rpcService) Configure(args *ConfigureArgs, reply *ConfigureReply) error {
	reply.RequestID = args.RequestID

	ctx := context.Background()
	if args.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, args.Timeout)
		defer cancel()
	}

	lease, err := r.svc.Configure(ctx, args.Interface, netaddr.Family(args.Family))
	if err != nil {
		reply.Error = err.Error()
		reply.ErrorKind = int(errors.GetKind(err))
		return nil
	}
	reply.Lease = lease.info()
	return nil
}

func (r *rpcService) Leases(args *Empty, reply *LeasesReply) error {
	reply.Leases = r.svc.Leases()
	return nil
}

// Server listens on a unix socket and serves a Service.
type Server struct {
	socket string
	svc    *Service
	rpc    *rpc.Server
	log    *logging.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewServer returns a Server for svc on socket.
func NewServer(socket string, svc *Service) (*Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName(rpcName, &rpcService{svc: svc}); err != nil {
		return nil, errors.Wrap(err, errors.KindOperation, "failed to register RPC service")
	}
	return &Server{
		socket: socket,
		svc:    svc,
		rpc:    srv,
		log:    logging.WithComponent("autoconf-server"),
		conns:  make(map[net.Conn]struct{}),
	}, nil
}

// Start creates the socket and begins accepting connections. The server
// stops when ctx is cancelled or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.socket), 0755); err != nil {
		return errors.Wrapf(err, errors.KindOperation, "failed to create %s", filepath.Dir(s.socket))
	}
	// A socket left by a previous run blocks Listen.
	_ = os.Remove(s.socket)

	listener, err := net.Listen("unix", s.socket)
	if err != nil {
		return errors.Wrapf(err, errors.KindOperation, "failed to listen on %s", s.socket)
	}
	if err := os.Chmod(s.socket, 0666); err != nil {
		listener.Close()
		return errors.Wrap(err, errors.KindOperation, "failed to set socket permissions")
	}
	return s.StartWithListener(ctx, listener)
}

// StartWithListener serves on an existing listener.
func (s *Server) StartWithListener(ctx context.Context, listener net.Listener) error {
	done := make(chan struct{})
	s.mu.Lock()
	s.listener = listener
	s.done = done
	s.mu.Unlock()

	s.log.Info("auto-configuration service listening", "socket", listener.Addr().String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.accept(listener)
	}()

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-done:
		}
	}()
	return nil
}

func (s *Server) accept(listener net.Listener) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				s.log.Error("accept failed", "error", err)
			}
			return
		}

		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					s.log.Error("RPC connection handler panicked", "panic", r)
				}
				s.mu.Lock()
				delete(s.conns, conn)
				s.mu.Unlock()
				conn.Close()
			}()
			s.rpc.ServeConn(conn)
		}()
	}
}

// Stop closes the listener and open connections, then waits for handlers.
func (s *Server) Stop() {
	s.mu.Lock()
	if s.listener == nil {
		s.mu.Unlock()
		return
	}
	s.listener.Close()
	s.listener = nil
	close(s.done)
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(5 * time.Second):
		s.log.Warn("timed out waiting for RPC handlers")
	}
	_ = os.Remove(s.socket)
}
