// Package clients maintains the catalog of trusted client applications. Each
// client is one JSON definition file in a directory; edits to the directory
// are picked up at runtime without a restart.
package clients

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

var ErrClientNotFound = errors.New("client not found")

// Client describes one trusted application. Audience is the value stamped
// into the aud claim of every token minted for it.
type Client struct {
	Display  string `json:"display"`
	Audience string `json:"audience"`
}

type Catalog struct {
	dir string

	mu      sync.RWMutex
	clients map[string]*Client
}

// NewCatalog loads every definition in dir. The initial load is strict: a
// missing directory or unparseable definition fails boot.
func NewCatalog(
	dir string,
) (
	*Catalog,
	error,
) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read clients directory '%s': %v", dir, err)
	}

	clients := make(map[string]*Client)
	for _, file := range files {
		if !file.Type().IsRegular() {
			continue
		}
		name := file.Name()
		client, err := loadClient(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to load client '%s': %v", name, err)
		}
		clients[name] = client
	}

	log.Printf("Loaded %d clients from %s", len(clients), dir)
	return &Catalog{dir: dir, clients: clients}, nil
}

func (c *Catalog) Get(
	name string,
) (
	*Client,
	error,
) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if client, ok := c.clients[name]; ok {
		return client, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrClientNotFound, name)
}

// HasAudience reports whether any registered client claims the audience.
func (c *Catalog) HasAudience(
	audience string,
) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, client := range c.clients {
		if client.Audience == audience {
			return true
		}
	}
	return false
}

// Reload re-reads the catalog directory. Unlike the initial load it is
// lenient: unreadable definitions are logged and skipped so one bad edit
// can't empty the catalog of a running service.
func (c *Catalog) Reload() {
	files, err := os.ReadDir(c.dir)
	if err != nil {
		log.Printf("clients: failed to read catalog dir: %v\n", err)
		return
	}

	clients := make(map[string]*Client)
	for _, file := range files {
		if !file.Type().IsRegular() {
			continue
		}
		name := file.Name()
		client, err := loadClient(filepath.Join(c.dir, name))
		if err != nil {
			log.Printf("clients: failed to load client '%s': %v\n", name, err)
			continue
		}
		clients[name] = client
	}

	c.mu.Lock()
	c.clients = clients
	c.mu.Unlock()

	log.Printf("Reloaded %d clients from %s", len(clients), c.dir)
}

func loadClient(
	clientDefPath string,
) (
	*Client,
	error,
) {
	file, err := os.ReadFile(clientDefPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load client definition: %w", err)
	}

	client := &Client{}
	err = json.Unmarshal(file, client)
	if err != nil {
		return nil, fmt.Errorf("failed to parse json of '%s': %w", clientDefPath, err)
	}
	if client.Audience == "" {
		return nil, fmt.Errorf("client definition '%s' missing audience", clientDefPath)
	}
	return client, nil
}
