package allocator

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// NewSnowflakeIDs returns an id generator backed by a single snowflake node.
// Every process sharing a store needs its own node number.
func NewSnowflakeIDs(node int64) (func() (int64, error), error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", node, err)
	}

	return func() (int64, error) {
		return n.Generate().Int64(), nil
	}, nil
}
