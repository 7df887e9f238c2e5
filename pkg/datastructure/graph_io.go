package datastructure

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/groundtruth/saferoute/pkg"
	"github.com/groundtruth/saferoute/pkg/util"
)

// WriteGraph. bzip2 compressed text:
//
//	<numNodes> <numEdges>
//	<nodeId> <lat> <lon>                                   (numNodes lines)
//	<edgeId> <source> <target> <length> <cost> <walk|drive> (numEdges lines)
func (g *Graph) WriteGraph(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	return g.Encode(f)
}

func (g *Graph) Encode(out io.Writer) error {
	bz, err := bzip2.NewWriter(out, &bzip2.WriterConfig{})
	if err != nil {
		return err
	}

	w := bufio.NewWriter(bz)

	fmt.Fprintf(w, "%d %d\n", g.NumberOfNodes(), g.NumberOfEdges())

	for _, id := range g.SortedNodeIDs() {
		n, _ := g.GetNode(id)
		latF := strconv.FormatFloat(n.lat, 'f', -1, 64)
		lonF := strconv.FormatFloat(n.lon, 'f', -1, 64)
		fmt.Fprintf(w, "%d %s %s\n", n.id, latF, lonF)
	}

	for _, e := range g.edges {
		lengthF := strconv.FormatFloat(e.length, 'f', -1, 64)
		costF := strconv.FormatFloat(e.costSeconds, 'f', -1, 64)
		fmt.Fprintf(w, "%d %d %d %s %s %s\n", e.id, e.source, e.target, lengthF, costF, e.mode)
	}

	if err := w.Flush(); err != nil {
		return err
	}
	return bz.Close()
}

func fields(s string) []string {
	return strings.Fields(s)
}

func ReadGraph(filename string) (*Graph, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return DecodeGraph(f)
}

func DecodeGraph(in io.Reader) (*Graph, error) {
	bz, err := bzip2.NewReader(in, &bzip2.ReaderConfig{})
	if err != nil {
		return nil, err
	}
	defer bz.Close()

	br := bufio.NewReader(bz)

	line, err := util.ReadLine(br)
	if err != nil {
		return nil, fmt.Errorf("read graph header: %w", err)
	}

	tokens := fields(line)
	if len(tokens) != 2 {
		return nil, fmt.Errorf("invalid graph header %q", line)
	}

	numNodes, err := strconv.Atoi(tokens[0])
	if err != nil {
		return nil, err
	}
	numEdges, err := strconv.Atoi(tokens[1])
	if err != nil {
		return nil, err
	}

	g := NewGraphWithSize(numNodes, numEdges)

	for i := 0; i < numNodes; i++ {
		nodeLine, err := util.ReadLine(br)
		if err != nil {
			return nil, fmt.Errorf("read node %d: %w", i, err)
		}
		n, err := parseNode(nodeLine)
		if err != nil {
			return nil, err
		}
		g.AddNode(n)
	}

	for i := 0; i < numEdges; i++ {
		edgeLine, err := util.ReadLine(br)
		if err != nil {
			return nil, fmt.Errorf("read edge %d: %w", i, err)
		}
		e, err := parseEdge(edgeLine)
		if err != nil {
			return nil, err
		}
		if err := g.AddEdge(e); err != nil {
			return nil, err
		}
	}

	return g, nil
}

func parseNode(line string) (Node, error) {
	tokens := fields(line)
	if len(tokens) != 3 {
		return Node{}, fmt.Errorf("invalid node line %q", line)
	}

	id, err := strconv.ParseInt(tokens[0], 10, 64)
	if err != nil {
		return Node{}, err
	}
	lat, err := strconv.ParseFloat(tokens[1], 64)
	if err != nil {
		return Node{}, err
	}
	lon, err := strconv.ParseFloat(tokens[2], 64)
	if err != nil {
		return Node{}, err
	}
	return NewNode(NodeID(id), lat, lon), nil
}

func parseEdge(line string) (Edge, error) {
	tokens := fields(line)
	if len(tokens) != 6 {
		return Edge{}, fmt.Errorf("invalid edge line %q", line)
	}

	id, err := strconv.ParseInt(tokens[0], 10, 64)
	if err != nil {
		return Edge{}, err
	}
	source, err := strconv.ParseInt(tokens[1], 10, 64)
	if err != nil {
		return Edge{}, err
	}
	target, err := strconv.ParseInt(tokens[2], 10, 64)
	if err != nil {
		return Edge{}, err
	}
	length, err := strconv.ParseFloat(tokens[3], 64)
	if err != nil {
		return Edge{}, err
	}
	cost, err := strconv.ParseFloat(tokens[4], 64)
	if err != nil {
		return Edge{}, err
	}
	mode, ok := pkg.ParseTravelMode(tokens[5])
	if !ok {
		return Edge{}, fmt.Errorf("invalid travel mode %q", tokens[5])
	}
	return NewEdge(EdgeID(id), NodeID(source), NodeID(target), length, cost, mode), nil
}
