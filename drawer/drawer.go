package drawer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1"

	"github.com/kbukum/seqkit/pipeline"
)

// Node is a vertex of a stage graph.
type Node struct {
	ID    string
	Stage *pipeline.Stage
}

func nodeHash(n Node) string { return n.ID }

// Graph is the stage graph of one sequence. Root is the ID of the stage the
// graph was built from.
type Graph struct {
	graph.Graph[string, Node]
	Root string
}

// Options tune the DOT rendering.
type Options struct {
	// RankDir is the Graphviz layout direction, LR or TB.
	RankDir string
	// Title is rendered as the graph label when set.
	Title string
}

var kindColors = map[pipeline.StageKind][3]uint8{
	pipeline.KindSource:    {46, 139, 87},
	pipeline.KindLazy:      {70, 130, 180},
	pipeline.KindBuffered:  {255, 140, 0},
	pipeline.KindDecorator: {128, 128, 128},
}

var kindShapes = map[pipeline.StageKind]string{
	pipeline.KindSource:    "cylinder",
	pipeline.KindLazy:      "box",
	pipeline.KindBuffered:  "box3d",
	pipeline.KindDecorator: "note",
}

// Build walks the stages reachable from root and returns them as a graph.
// Vertex IDs are assigned sources first, so the first source is n0.
// A stage shared by several consumers becomes a single vertex.
func Build(root *pipeline.Stage) (*Graph, error) {
	if root == nil {
		return nil, errors.New("drawer: nil stage")
	}

	g := graph.New(nodeHash, graph.Directed(), graph.Acyclic(), graph.PreventCycles())
	ids := make(map[*pipeline.Stage]string)

	var visit func(s *pipeline.Stage) (string, error)
	visit = func(s *pipeline.Stage) (string, error) {
		if id, ok := ids[s]; ok {
			return id, nil
		}
		sourceIDs := make([]string, 0, len(s.Sources))
		for _, src := range s.Sources {
			if src == nil {
				continue
			}
			id, err := visit(src)
			if err != nil {
				return "", err
			}
			sourceIDs = append(sourceIDs, id)
		}

		id := "n" + strconv.Itoa(len(ids))
		ids[s] = id
		attrs, err := vertexAttributes(s)
		if err != nil {
			return "", err
		}
		if err := g.AddVertex(Node{ID: id, Stage: s}, attrs...); err != nil {
			return "", errors.Wrapf(err, "unable to add vertex %s", s)
		}
		for _, srcID := range sourceIDs {
			err := g.AddEdge(srcID, id)
			if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				return "", errors.Wrapf(err, "unable to add edge from %s to %s", srcID, id)
			}
		}
		return id, nil
	}

	rootID, err := visit(root)
	if err != nil {
		return nil, err
	}
	return &Graph{Graph: g, Root: rootID}, nil
}

func vertexAttributes(s *pipeline.Stage) ([]func(*graph.VertexProperties), error) {
	rgb, ok := kindColors[s.Kind]
	if !ok {
		rgb = [3]uint8{0, 0, 0}
	}
	c, err := colors.RGB(rgb[0], rgb[1], rgb[2])
	if err != nil {
		return nil, errors.Wrap(err, "unable to get colour")
	}
	shape := kindShapes[s.Kind]
	if shape == "" {
		shape = "ellipse"
	}
	return []func(*graph.VertexProperties){
		graph.VertexAttribute("label", s.String()),
		graph.VertexAttribute("color", c.ToHEX().String()),
		graph.VertexAttribute("shape", shape),
		graph.VertexAttribute("tooltip", s.Kind.String()),
	}, nil
}

// Stages returns the stages sources first, breaking ties by vertex ID so the
// result is deterministic.
func (g *Graph) Stages() ([]Node, error) {
	hashes, err := graph.StableTopologicalSort[string, Node](g.Graph, func(a, b string) bool {
		return vertexIndex(a) < vertexIndex(b)
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to sort stages")
	}
	nodes := make([]Node, 0, len(hashes))
	for _, h := range hashes {
		n, err := g.Vertex(h)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to get vertex %s", h)
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func vertexIndex(id string) int {
	n, _ := strconv.Atoi(strings.TrimPrefix(id, "n"))
	return n
}

// WriteDOT renders the graph of root in Graphviz DOT format.
func WriteDOT(w io.Writer, root *pipeline.Stage, opts Options) error {
	g, err := Build(root)
	if err != nil {
		return err
	}
	rankDir := opts.RankDir
	if rankDir == "" {
		rankDir = "LR"
	}
	if opts.Title == "" {
		err = draw.DOT(g.Graph, w, draw.GraphAttribute("rankdir", rankDir))
	} else {
		err = draw.DOT(g.Graph, w,
			draw.GraphAttribute("rankdir", rankDir),
			draw.GraphAttribute("label", opts.Title),
		)
	}
	if err != nil {
		return errors.Wrap(err, "unable to render dot")
	}
	return nil
}

// DrawFile writes the DOT graph of root to path, creating parent
// directories as needed.
func DrawFile(path string, root *pipeline.Stage, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "unable to create directory for %s", path)
	}
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", path)
	}
	if err := WriteDOT(file, root, opts); err != nil {
		_ = file.Close()
		return errors.Wrapf(err, "unable to draw %s", path)
	}
	return errors.Wrapf(file.Close(), "unable to close %s", path)
}

// Describe lists the stages of root sources first, one per line, with their
// evaluation kind and the stages they pull from.
//
//	n0 slice(len=5) [source]
//	n1 filter [lazy] <- n0
func Describe(root *pipeline.Stage) (string, error) {
	g, err := Build(root)
	if err != nil {
		return "", err
	}
	nodes, err := g.Stages()
	if err != nil {
		return "", err
	}
	preds, err := g.PredecessorMap()
	if err != nil {
		return "", errors.Wrap(err, "unable to get predecessors")
	}

	var b strings.Builder
	for _, n := range nodes {
		fmt.Fprintf(&b, "%s %s [%s]", n.ID, n.Stage, n.Stage.Kind)
		if len(preds[n.ID]) > 0 {
			srcs := make([]string, 0, len(preds[n.ID]))
			for id := range preds[n.ID] {
				srcs = append(srcs, id)
			}
			slices.SortFunc(srcs, func(a, b string) int { return vertexIndex(a) - vertexIndex(b) })
			b.WriteString(" <- " + strings.Join(srcs, ", "))
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}
