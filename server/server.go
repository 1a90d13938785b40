package server

import (
	"fmt"
	"net"
	"net/http"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sisu-network/lib/log"
)

type Server struct {
	handler       *rpc.Server
	listenAddress string
}

func NewServer(handler *rpc.Server, port int) *Server {
	return &Server{
		handler:       handler,
		listenAddress: fmt.Sprintf("127.0.0.1:%d", port),
	}
}

func (s *Server) Run() error {
	listener, err := net.Listen("tcp", s.listenAddress)
	if err != nil {
		return err
	}

	srv := &http.Server{Handler: s.handler}
	log.Info("Running server at ", s.listenAddress)
	return srv.Serve(listener)
}

// NewRpcServer registers api under the "surfer" namespace.
func NewRpcServer(api *ApiHandler) (*rpc.Server, error) {
	handler := rpc.NewServer()
	if err := handler.RegisterName("surfer", api); err != nil {
		return nil, err
	}

	return handler, nil
}
