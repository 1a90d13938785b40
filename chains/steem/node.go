package steem

import (
	"time"

	"github.com/sisu-network/lib/log"
	"go.uber.org/atomic"
)

// NodeRegistry holds the process-wide node address. A call captures its
// client with Current once at the start, so SetAddress only affects calls
// that start afterwards.
type NodeRegistry struct {
	address   *atomic.String
	newClient func(address string) Client
}

func NewNodeRegistry(address string, timeout time.Duration) *NodeRegistry {
	return NewNodeRegistryWithFactory(address, func(address string) Client {
		return NewClient(address, timeout)
	})
}

func NewNodeRegistryWithFactory(address string, factory func(address string) Client) *NodeRegistry {
	return &NodeRegistry{
		address:   atomic.NewString(address),
		newClient: factory,
	}
}

func (r *NodeRegistry) Address() string {
	return r.address.Load()
}

func (r *NodeRegistry) SetAddress(address string) {
	old := r.address.Load()
	r.address.Store(address)
	log.Info("Node address changed from ", old, " to ", address)
}

// Current returns a client bound to the address at the time of the call.
func (r *NodeRegistry) Current() Client {
	return r.newClient(r.address.Load())
}
