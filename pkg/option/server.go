package option

import "time"

// Server ...
type Server struct {
	HTTPAddress     string
	MetricsEnabled  bool
	GinLogEnabled   bool
	GinLogSkipPath  []string
	PprofEnabled    bool
	ShutdownTimeout time.Duration

	// Services which are tracked as soon as the server starts.
	Preload        []string
	PreloadWorkers int
}

// DefaultServerOption ...
func DefaultServerOption() *Server {
	return &Server{
		HTTPAddress:     ":8080",
		MetricsEnabled:  true,
		GinLogEnabled:   true,
		GinLogSkipPath:  []string{"/ready", "/live"},
		PprofEnabled:    true,
		ShutdownTimeout: 5 * time.Second,
		Preload:         []string{},
		PreloadWorkers:  8,
	}
}
