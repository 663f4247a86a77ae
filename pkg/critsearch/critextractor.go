package critsearch

import (
	"math"
	"sync"

	"github.com/dstelter/rsraytracer/pkg/config"
	"github.com/dstelter/rsraytracer/pkg/core"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// RecPoint is a single recirculation point: a spatial position whose
// pathline integrated from t0 for duration tau returns to itself.
// Invariant: Tau >= Globals.TauMin (spec §3).
type RecPoint struct {
	Pos core.Vec3
	T0  float64
	Tau float64
}

// CritElements is the result of a CritExtractor search over one cell: the
// isolated critical points found, plus cells classified as containing an
// extended critical structure rather than a point (spec §4.5).
type CritElements struct {
	CritPoints     []RecPoint
	CritStructures []VectorCuboid
}

// HasCritElements reports whether anything at all was found.
func (e CritElements) HasCritElements() bool {
	return len(e.CritPoints) > 0 || len(e.CritStructures) > 0
}

// HasCritPoint reports whether an isolated critical point was found.
//
// Documented limitation (preserved from the original implementation, spec
// §4.5/§9 Open Question (a)): if the search also found an extended
// structure nearby, an isolated point very close to that structure may have
// been pruned before being classified, so this can under-report. See
// CritSearchParams.ContinueAfterStructure and DESIGN.md.
func (e CritElements) HasCritPoint() bool {
	return len(e.CritPoints) > 0
}

// HasCritStructure reports whether an extended critical structure was found.
func (e CritElements) HasCritStructure() bool {
	return len(e.CritStructures) > 0
}

// CritExtractor recursively searches a VectorCuboid for recirculation
// points and extended critical structures. Search parameters are
// read-mostly and safe for concurrent use across distinct cuboid searches
// (spec §5); SetSearchParams must not be called concurrently with an
// in-flight GetCritElements.
type CritExtractor struct {
	mu      sync.RWMutex
	params  config.CritSearchParams
	globals config.Globals
}

// NewCritExtractor constructs an extractor with the given parameters.
func NewCritExtractor(params config.CritSearchParams, globals config.Globals) *CritExtractor {
	return &CritExtractor{params: params, globals: globals}
}

// SetSearchParams updates the search parameters used by subsequent calls to
// GetCritElements. Per spec §5, mutating parameters while other goroutines are
// actively searching is undefined; callers must serialize configuration
// changes against in-flight searches themselves.
func (e *CritExtractor) SetSearchParams(params config.CritSearchParams) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params = params
}

// GetSearchParams returns a copy of the current search parameters.
func (e *CritExtractor) GetSearchParams() config.CritSearchParams {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.params
}

// GetCritElements runs the recursive search over root and returns the
// (clustered) critical points and structures found.
func (e *CritExtractor) GetCritElements(root VectorCuboid) CritElements {
	params := e.GetSearchParams()

	var elements CritElements
	type queueItem struct {
		cell   VectorCuboid
		tested bool // whether this cell's Jacobian singularity test already ran
	}
	queue := []queueItem{{cell: root}}

	steps := 0
	for len(queue) > 0 && steps < params.MaxSteps {
		item := queue[0]
		queue = queue[1:]
		steps++

		uniform, evaluated := item.cell.SignsUniform()
		if evaluated && uniform {
			continue // pruned: no zero can be inside this cell
		}

		diag := item.cell.Diagonal()
		if diag < params.SearchPrecision {
			pos, t0, tau := item.cell.Center()
			if tau >= e.globals.TauMin {
				elements.CritPoints = append(elements.CritPoints, RecPoint{Pos: pos, T0: t0, Tau: tau})
			}
			continue
		}

		if diag < params.JacobiPrecision && !item.tested {
			if singular := e.isSingular(item.cell); singular {
				elements.CritStructures = append(elements.CritStructures, item.cell)
				continue
			}
			item.tested = true
		}

		for _, child := range item.cell.Subdivide() {
			queue = append(queue, queueItem{cell: child, tested: item.tested})
		}
	}

	return e.cluster(elements, params.ClusterPrecision)
}

// isSingular runs CritExtractor's central-difference Jacobian singularity
// test: the flow-return vector is sampled as a function of the cell's local
// (s,u,v) in [0,1]^3 via trilinear interpolation, its 3x3 Jacobian is
// estimated by central differences (gonum/diff/fd), and the cell is
// classified as an extended critical structure when the Jacobian is nearly
// singular (|det| < DETMIN) — i.e. the zero set cannot be isolated to a
// point by further subdivision alone (spec §4.5).
func (e *CritExtractor) isSingular(cell VectorCuboid) bool {
	f := func(out, x []float64) {
		v, ok := cell.Interpolate(x[0], x[1], x[2])
		if !ok {
			out[0], out[1], out[2] = 0, 0, 0
			return
		}
		out[0], out[1], out[2] = v.X, v.Y, v.Z
	}

	jac := mat.NewDense(3, 3, nil)
	fd.Jacobian(jac, f, []float64{0.5, 0.5, 0.5}, &fd.JacobianSettings{
		Formula:    fd.Central,
		Concurrent: false,
	})

	det := mat.Det(jac)
	return math.Abs(det) < e.globals.DetMin
}

// cluster merges critical points that are closer than clusterPrecision into
// a single representative point (their centroid), and is idempotent: per
// spec §8 property (4), clustering an already-clustered set (or the union
// of two independently-clustered sets of the same underlying points) yields
// an equal set up to ordering.
func (e *CritExtractor) cluster(elements CritElements, clusterPrecision float64) CritElements {
	points := elements.CritPoints
	used := make([]bool, len(points))
	var merged []RecPoint

	for i := range points {
		if used[i] {
			continue
		}
		group := []RecPoint{points[i]}
		used[i] = true
		for j := i + 1; j < len(points); j++ {
			if used[j] {
				continue
			}
			if recPointsClose(points[i], points[j], clusterPrecision, e.globals) {
				group = append(group, points[j])
				used[j] = true
			}
		}
		merged = append(merged, centroid(group))
	}

	return CritElements{CritPoints: merged, CritStructures: elements.CritStructures}
}

func recPointsClose(a, b RecPoint, clusterPrecision float64, g config.Globals) bool {
	return a.Pos.Subtract(b.Pos).Length() < clusterPrecision &&
		math.Abs(a.T0-b.T0) < g.T0Equal &&
		math.Abs(a.Tau-b.Tau) < g.TauEqual
}

func centroid(points []RecPoint) RecPoint {
	var sumPos core.Vec3
	var sumT0, sumTau float64
	for _, p := range points {
		sumPos = sumPos.Add(p.Pos)
		sumT0 += p.T0
		sumTau += p.Tau
	}
	n := float64(len(points))
	return RecPoint{Pos: sumPos.Multiply(1 / n), T0: sumT0 / n, Tau: sumTau / n}
}
