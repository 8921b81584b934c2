// Package ecosystem maintains a brand compatibility graph in Neo4j. The
// fallback planner uses it to expand a user's viewed brands into compatible
// ones for the ecosystem strategy.
package ecosystem

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Graph stores brands and their compatibility edges.
type Graph struct {
	driver neo4j.DriverWithContext
}

// New connects to Neo4j and returns a Graph.
func New(ctx context.Context, uri, user, password string) (*Graph, error) {
	auth := neo4j.NoAuth()
	if user != "" {
		auth = neo4j.BasicAuth(user, password, "")
	}
	driver, err := neo4j.NewDriverWithContext(uri, auth)
	if err != nil {
		return nil, fmt.Errorf("ecosystem: connect: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("ecosystem: verify: %w", err)
	}
	return &Graph{driver: driver}, nil
}

// Close releases the driver. Safe on a nil Graph.
func (g *Graph) Close(ctx context.Context) error {
	if g == nil || g.driver == nil {
		return nil
	}
	return g.driver.Close(ctx)
}

// NormalizeBrand canonicalizes a brand name for node identity.
func NormalizeBrand(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SaveBrand creates or updates a brand node.
func (g *Graph) SaveBrand(ctx context.Context, name string) error {
	id := NormalizeBrand(name)
	if id == "" {
		return nil
	}
	sess := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	_, err := sess.Run(ctx,
		`MERGE (b:Brand {id: $id}) SET b.name = $name`,
		map[string]any{"id": id, "name": strings.TrimSpace(name)},
	)
	if err != nil {
		return fmt.Errorf("ecosystem: save brand: %w", err)
	}
	return nil
}

// SaveCompatibility records that two brands work well together. The edge is
// stored once; RelatedBrands treats it as undirected.
func (g *Graph) SaveCompatibility(ctx context.Context, a, b string) error {
	from, to := NormalizeBrand(a), NormalizeBrand(b)
	if from == "" || to == "" || from == to {
		return nil
	}
	sess := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	_, err := sess.Run(ctx,
		`MERGE (a:Brand {id: $from})
		 MERGE (b:Brand {id: $to})
		 MERGE (a)-[:COMPATIBLE_WITH]->(b)`,
		map[string]any{"from": from, "to": to},
	)
	if err != nil {
		return fmt.Errorf("ecosystem: save compatibility: %w", err)
	}
	return nil
}

// RelatedBrands returns up to limit brands compatible with the given one,
// most-connected first. A nil Graph returns no brands.
func (g *Graph) RelatedBrands(ctx context.Context, brand string, limit int) ([]string, error) {
	if g == nil || g.driver == nil {
		return nil, nil
	}
	id := NormalizeBrand(brand)
	if id == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}

	sess := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer sess.Close(ctx)

	result, err := sess.Run(ctx,
		`MATCH (a:Brand {id: $id})-[:COMPATIBLE_WITH]-(b:Brand)
		 RETURN b.name AS name, COUNT { (b)-[:COMPATIBLE_WITH]-() } AS degree
		 ORDER BY degree DESC, name ASC
		 LIMIT $limit`,
		map[string]any{"id": id, "limit": limit},
	)
	if err != nil {
		return nil, fmt.Errorf("ecosystem: related brands: %w", err)
	}

	var names []string
	for result.Next(ctx) {
		if name, ok := result.Record().Get("name"); ok {
			if s, ok := name.(string); ok && s != "" {
				names = append(names, s)
			}
		}
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("ecosystem: related brands: %w", err)
	}
	return names, nil
}
