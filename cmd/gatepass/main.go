package main

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gatepass/internal/server"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fx.Provide(newSnowflakeNode),
		server.Module,
	).Run()
}

// newSnowflakeNode builds the instance-wide ID generator. Each replica
// needs a distinct node ID to keep generated IDs unique across the fleet.
func newSnowflakeNode() (*snowflake.Node, error) {
	nodeID := int64(1)
	if raw := os.Getenv("SNOWFLAKE_NODE_ID"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			nodeID = parsed
		}
	}
	return snowflake.NewNode(nodeID)
}
