package option

import "time"

// Directory ...
type Directory struct {
	// Type selects the backend: memory, zk, nacos or file.
	Type    string
	Address []string
	Timeout time.Duration

	// zookeeper: the dubbo root path, e.g. /dubbo
	Root string

	// file: the yaml file describing the services.
	File           string
	ReloadInterval time.Duration

	// nacos: the group and clusters a service is looked up in.
	Group     string
	Clusters  []string
	Namespace string
}

// DefaultDirectoryOption ...
func DefaultDirectoryOption() *Directory {
	return &Directory{
		Type:           "zk",
		Address:        []string{"127.0.0.1:2181"},
		Timeout:        15 * time.Second,
		Root:           "/dubbo",
		ReloadInterval: 500 * time.Millisecond,
		Group:          "DEFAULT_GROUP",
		Clusters:       []string{},
	}
}
