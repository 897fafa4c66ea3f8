package path

import (
	"container/heap"
	"errors"

	"github.com/floatplan/floatplan/pkg/graph"
	"github.com/floatplan/floatplan/pkg/queue"
	"github.com/floatplan/floatplan/pkg/river"
)

// ErrUnreachable means the destination was never settled by the search.
var ErrUnreachable = errors.New("destination unreachable")

// Dijkstra runs a single-source shortest-path search over arc cost in
// meters. A node pair may be connected by parallel arcs (original plus
// virtual split), so the predecessor tracking records the arc actually
// relaxed, not just the node, and the reconstructed route is an arc list.
//
// Relaxation uses strictly-less comparison, so between equal-cost
// candidates the first-discovered predecessor wins. That keeps results
// bit-identical across runs on the same graph.
type Dijkstra struct {
	g        *graph.Graph
	items    map[river.NodeID]*queue.Item
	settled  map[river.NodeID]bool
	predNode map[river.NodeID]river.NodeID
	predArc  map[river.NodeID]graph.Arc

	pqPops      int
	pqUpdates   int
	relaxedArcs int
}

func NewDijkstra(g *graph.Graph) *Dijkstra {
	return &Dijkstra{g: g}
}

// ShortestPath searches from origin to destination and returns the node
// sequence, the ordered arc list actually traversed, and the total cost in
// meters. The search terminates as soon as the destination is popped at
// minimum tentative distance.
func (d *Dijkstra) ShortestPath(origin, destination river.NodeID) ([]river.NodeID, []graph.Arc, float64, error) {
	d.items = make(map[river.NodeID]*queue.Item)
	d.settled = make(map[river.NodeID]bool)
	d.predNode = make(map[river.NodeID]river.NodeID)
	d.predArc = make(map[river.NodeID]graph.Arc)
	d.pqPops, d.pqUpdates, d.relaxedArcs = 0, 0, 0

	originItem := queue.NewItem(origin, 0)
	d.items[origin] = originItem

	pq := make(queue.Queue, 0)
	heap.Init(&pq)
	heap.Push(&pq, originItem)

	for len(pq) > 0 {
		current := heap.Pop(&pq).(*queue.Item)
		currentNode := current.NodeID
		d.pqPops++
		d.settled[currentNode] = true

		if currentNode == destination {
			break
		}

		for _, arc := range d.g.ArcsFrom(currentNode) {
			d.relaxedArcs++
			successor := arc.To
			if d.settled[successor] {
				continue
			}

			tentative := current.Priority + arc.Cost()
			if item, seen := d.items[successor]; !seen {
				next := queue.NewItem(successor, tentative)
				d.items[successor] = next
				d.predNode[successor] = currentNode
				d.predArc[successor] = arc
				heap.Push(&pq, next)
				d.pqUpdates++
			} else if tentative < item.Priority {
				pq.Update(item, tentative)
				d.predNode[successor] = currentNode
				d.predArc[successor] = arc
				d.pqUpdates++
			}
		}
	}

	if !d.settled[destination] {
		return nil, nil, 0, ErrUnreachable
	}

	nodes, arcs := d.reconstruct(origin, destination)
	return nodes, arcs, d.items[destination].Priority, nil
}

func (d *Dijkstra) reconstruct(origin, destination river.NodeID) ([]river.NodeID, []graph.Arc) {
	nodes := []river.NodeID{destination}
	arcs := make([]graph.Arc, 0)
	for node := destination; node != origin; node = d.predNode[node] {
		arcs = append(arcs, d.predArc[node])
		nodes = append(nodes, d.predNode[node])
	}
	// walked backwards, flip into path order
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	for i, j := 0, len(arcs)-1; i < j; i, j = i+1, j-1 {
		arcs[i], arcs[j] = arcs[j], arcs[i]
	}
	return nodes, arcs
}

func (d *Dijkstra) PqPops() int      { return d.pqPops }
func (d *Dijkstra) PqUpdates() int   { return d.pqUpdates }
func (d *Dijkstra) RelaxedArcs() int { return d.relaxedArcs }
