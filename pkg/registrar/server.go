package registrar

import (
	"fmt"
	"net/http"

	"github.com/Layr-Labs/avs-registrar-go/pkg/persistence"
	"go.uber.org/zap"
)

// Server exposes the registrar over HTTP.
type Server struct {
	registrar  *Registrar
	store      persistence.IRegistryStore
	logger     *zap.Logger
	httpServer *http.Server
}

// NewServer creates a server bound to the given port.
func NewServer(registrar *Registrar, store persistence.IRegistryStore, logger *zap.Logger, port int) *Server {
	s := &Server{
		registrar: registrar,
		store:     store,
		logger:    logger,
	}

	mux := http.NewServeMux()

	// Admission endpoints
	mux.HandleFunc("/operator/register", s.handleRegisterOperator)
	mux.HandleFunc("/operator/deregister", s.handleDeregisterOperator)
	mux.HandleFunc("/validator/register", s.handleRegisterValidator)
	mux.HandleFunc("/validator/revoke", s.handleRevokeValidator)

	// Read endpoints
	mux.HandleFunc("/operator", s.handleGetOperator)
	mux.HandleFunc("/operators", s.handleListOperators)
	mux.HandleFunc("/validator", s.handleGetValidator)
	mux.HandleFunc("/validators", s.handleListValidators)
	mux.HandleFunc("/events", s.handleListEvents)

	mux.HandleFunc("/health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	go func() {
		s.logger.Sugar().Infow("Starting HTTP server",
			"avs", s.registrar.AVSAddress().Hex(),
			"addr", s.httpServer.Addr,
		)
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Sugar().Errorw("HTTP server error", "error", err)
		}
	}()
	return nil
}

// Stop stops the HTTP server
func (s *Server) Stop() error {
	return s.httpServer.Close()
}

// GetHandler returns the HTTP handler (for testing)
func (s *Server) GetHandler() http.Handler {
	return s.httpServer.Handler
}
