package idgen

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

const defaultNode = 1

var (
	node    *snowflake.Node
	once    sync.Once
	initErr error
)

// Init initializes the Snowflake node with the given node ID. Only the first
// call has any effect.
func Init(nodeID int64) error {
	once.Do(func() {
		node, initErr = snowflake.NewNode(nodeID)
	})
	return initErr
}

// New returns a time-ordered unique id. Ids generated within the same
// millisecond differ by their sequence bits.
func New() string {
	if err := Init(defaultNode); err != nil {
		panic("idgen: snowflake node unavailable: " + err.Error())
	}
	return node.Generate().String()
}
