package service

import (
	"encoding/json"
	"net/http"

	"github.com/ecoblock/ecoblock/src/node"
	"github.com/sirupsen/logrus"
)

// Stats is the response of the /stats endpoint.
type Stats struct {
	NodeID     string   `json:"node_id"`
	TangleSize int      `json:"tangle_size"`
	Tips       []string `json:"tips"`
	MeshSize   int      `json:"mesh_size"`
}

// Service exposes a read-only HTTP API over a node Context.
type Service struct {
	bindAddress string
	ctx         *node.Context
	logger      *logrus.Entry
}

// NewService creates the service and registers its handlers.
func NewService(bindAddress string, ctx *node.Context, logger *logrus.Entry) *Service {
	service := Service{
		bindAddress: bindAddress,
		ctx:         ctx,
		logger:      logger,
	}

	service.registerHandlers()

	return &service
}

// registerHandlers registers the API handlers with the DefaultServeMux of the
// http package. It is possible that another server in the same process is
// simultaneously using the DefaultServeMux. In which case, the handlers will
// be accessible from both servers. This is useful when EcoBlock is used
// in-memory and expected to use the same endpoint (address:port) as the
// application's API.
func (s *Service) registerHandlers() {
	s.logger.Debug("Registering EcoBlock API handlers")
	http.HandleFunc("/stats", s.makeHandler(s.GetStats))
	http.HandleFunc("/block/", s.makeHandler(s.GetBlock))
	http.HandleFunc("/peers", s.makeHandler(s.GetPeers))
}

func (s *Service) makeHandler(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// enable CORS
		w.Header().Set("Access-Control-Allow-Origin", "*")

		fn(w, r)
	}
}

// Serve calls ListenAndServe. This is a blocking call. It is not necessary
// to call Serve when another server has already been started with the
// DefaultServeMux and the same address:port combination.
func (s *Service) Serve() {
	s.logger.WithField("bind_address", s.bindAddress).Debug("Serving EcoBlock API")

	// Use the DefaultServeMux
	err := http.ListenAndServe(s.bindAddress, nil)
	if err != nil {
		s.logger.Error(err)
	}
}

// GetStats returns the node's identity and the size of its tangle and mesh.
func (s *Service) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := Stats{
		NodeID:     s.ctx.NodeID(),
		TangleSize: s.ctx.TangleSize(),
		Tips:       s.ctx.Tips(),
		MeshSize:   s.ctx.MeshSize(),
	}

	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(stats)
}

// GetBlock returns one tangle block by ID.
func (s *Service) GetBlock(w http.ResponseWriter, r *http.Request) {
	param := r.URL.Path[len("/block/"):]

	block, err := s.ctx.GetBlock(param)

	if err != nil {
		s.logger.WithError(err).Errorf("Retrieving block %s", param)

		http.Error(w, err.Error(), http.StatusNotFound)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(block)
}

// GetPeers returns the neighbor IDs of the peer passed in the id query
// parameter.
func (s *Service) GetPeers(w http.ResponseWriter, r *http.Request) {
	peerID := r.URL.Query().Get("id")

	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(s.ctx.ListPeers(peerID))
}
