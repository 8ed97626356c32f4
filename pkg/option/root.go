package option

// RootOption ...
type RootOption struct {
	Directory *Directory
	Server    *Server
}

// DefaultRootOption ...
func DefaultRootOption() *RootOption {
	return &RootOption{
		Directory: DefaultDirectoryOption(),
		Server:    DefaultServerOption(),
	}
}
