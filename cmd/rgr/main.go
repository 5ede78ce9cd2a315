// Package main provides the rgr command, a thin developer utility over the
// graph library for inspecting and mutating a graph on disk.
package main

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/colinsongf/rgr/pkg/config"
	"github.com/colinsongf/rgr/pkg/graph"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

var (
	flagConfig    string
	flagDataDir   string
	flagNamespace string
	flagProps     []string
	flagWhere     []string
	flagMatch     []string
	flagParents   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rgr",
		Short: "rgr - a directed property graph on an ordered key-value store",
		Long: `rgr overlays a directed property graph onto a local key-value store:
nodes and edges carry arbitrary string properties, adjacency is tracked with
parallel-edge weights, and properties are queryable by exact value or regex.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "store data directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagNamespace, "namespace", "", "graph namespace (overrides config)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rgr v%s (%s)\n", version, commit)
		},
	})

	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(addNodeCmd())
	rootCmd.AddCommand(addEdgeCmd())
	rootCmd.AddCommand(delCmd("del-node", "Delete a node and its incident edges", func(g *graph.Graph, id string) error {
		return g.DelNode(id)
	}))
	rootCmd.AddCommand(delCmd("del-edge", "Delete an edge", func(g *graph.Graph, id string) error {
		return g.DelEdge(id)
	}))
	rootCmd.AddCommand(getCmd())
	rootCmd.AddCommand(setCmd())
	rootCmd.AddCommand(listCmd("nodes", "List or query nodes"))
	rootCmd.AddCommand(listCmd("edges", "List or query edges"))
	rootCmd.AddCommand(neighborsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openGraph builds a graph from config file, environment and flags.
func openGraph() (*graph.Graph, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagDataDir != "" {
		cfg.Store.DataDir = flagDataDir
	}
	if flagNamespace != "" {
		cfg.Store.Namespace = flagNamespace
	}
	return graph.Open(graph.Options{
		DataDir:    cfg.Store.DataDir,
		Namespace:  cfg.Store.Namespace,
		InMemory:   cfg.Store.InMemory,
		SyncWrites: cfg.Store.SyncWrites,
	})
}

func withGraph(fn func(g *graph.Graph) error) error {
	g, err := openGraph()
	if err != nil {
		return err
	}
	defer func() {
		if err := g.Close(); err != nil {
			log.Printf("closing graph: %v", err)
		}
	}()
	return fn(g)
}

// parseKV turns repeated k=v flags into a map.
func parseKV(pairs []string) (map[string]string, error) {
	m := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid property %q, expected key=value", pair)
		}
		m[k] = v
	}
	return m, nil
}

func printProps(props map[string]string) {
	fields := make([]string, 0, len(props))
	for f := range props {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Printf("  %s = %s\n", f, props[f])
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print node and edge counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGraph(func(g *graph.Graph) error {
				nodes, err := g.NodeCount()
				if err != nil {
					return err
				}
				edges, err := g.EdgeCount()
				if err != nil {
					return err
				}
				fmt.Printf("namespace: %s\nnodes: %d\nedges: %d\n", g.Namespace(), nodes, edges)
				return nil
			})
		},
	}
}

func addNodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-node",
		Short: "Create a node",
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := parseKV(flagProps)
			if err != nil {
				return err
			}
			return withGraph(func(g *graph.Graph) error {
				n, err := g.AddNode(props)
				if err != nil {
					return err
				}
				fmt.Println(n.ID())
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVar(&flagProps, "prop", nil, "property key=value (repeatable)")
	return cmd
}

func addEdgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-edge <parent> <child>",
		Short: "Create an edge between two nodes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := parseKV(flagProps)
			if err != nil {
				return err
			}
			return withGraph(func(g *graph.Graph) error {
				e, err := g.AddEdge(args[0], args[1], props)
				if err != nil {
					return err
				}
				fmt.Println(e.ID())
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVar(&flagProps, "prop", nil, "property key=value (repeatable)")
	return cmd
}

func delCmd(use, short string, del func(g *graph.Graph, id string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGraph(func(g *graph.Graph) error {
				return del(g, args[0])
			})
		},
	}
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <node|edge> <id>",
		Short: "Print an entity's properties",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGraph(func(g *graph.Graph) error {
				var props map[string]string
				switch args[0] {
				case "node":
					n, err := g.Node(args[1])
					if err != nil {
						return err
					}
					props, err = n.Properties()
					if err != nil {
						return err
					}
				case "edge":
					e, err := g.Edge(args[1])
					if err != nil {
						return err
					}
					props, err = e.Properties()
					if err != nil {
						return err
					}
				default:
					return fmt.Errorf("unknown kind %q, expected node or edge", args[0])
				}
				printProps(props)
				return nil
			})
		},
	}
}

func setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <node|edge> <id> <field> <value>",
		Short: "Set one property on an entity",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGraph(func(g *graph.Graph) error {
				switch args[0] {
				case "node":
					n, err := g.Node(args[1])
					if err != nil {
						return err
					}
					return n.Set(args[2], args[3])
				case "edge":
					e, err := g.Edge(args[1])
					if err != nil {
						return err
					}
					return e.Set(args[2], args[3])
				default:
					return fmt.Errorf("unknown kind %q, expected node or edge", args[0])
				}
			})
		},
	}
}

func listCmd(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			where, err := parseKV(flagWhere)
			if err != nil {
				return err
			}
			match, err := parseKV(flagMatch)
			if err != nil {
				return err
			}
			if len(where) > 0 && len(match) > 0 {
				return fmt.Errorf("--where and --match are mutually exclusive")
			}

			return withGraph(func(g *graph.Graph) error {
				var ids []string
				if use == "nodes" {
					var nodes []*graph.Node
					var err error
					if len(match) > 0 {
						nodes, err = g.FindNodes(match)
					} else {
						nodes, err = g.GetNodes(where)
					}
					if err != nil {
						return err
					}
					for _, n := range nodes {
						ids = append(ids, n.ID())
					}
				} else {
					var edges []*graph.Edge
					var err error
					if len(match) > 0 {
						edges, err = g.FindEdges(match)
					} else {
						edges, err = g.GetEdges(where)
					}
					if err != nil {
						return err
					}
					for _, e := range edges {
						ids = append(ids, e.ID())
					}
				}
				for _, id := range ids {
					fmt.Println(id)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVar(&flagWhere, "where", nil, "exact criterion key=value (repeatable)")
	cmd.Flags().StringArrayVar(&flagMatch, "match", nil, "regex criterion key=pattern (repeatable)")
	return cmd
}

func neighborsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "neighbors <node-id>",
		Short: "Print a node's weighted neighbors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withGraph(func(g *graph.Graph) error {
				n, err := g.Node(args[0])
				if err != nil {
					return err
				}
				var neighbors []graph.Neighbor
				if flagParents {
					neighbors, err = n.Parents()
				} else {
					neighbors, err = n.Children()
				}
				if err != nil {
					return err
				}
				for _, nb := range neighbors {
					fmt.Printf("%s\t%d\n", nb.ID, nb.Weight)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&flagParents, "parents", false, "list parents instead of children")
	return cmd
}
