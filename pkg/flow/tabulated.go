package flow

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dstelter/rsraytracer/pkg/core"
)

// TabulatedFlow implements Flow over a regular grid of stored velocity
// samples, trilinearly interpolated in space and held constant over time.
//
// This is the supplemented, simplified counterpart to the original
// implementation's Amira-dataset-backed SetupSquaredCylinder scenario
// (original_source/inc/scenesetup.hh). Per spec.md §1, reading the actual
// Amira binary format is out of scope; only the contract of "a second,
// file-backed flow scenario" is reproduced, over a trivial whitespace text
// format: a header line "nx ny nz xmin ymin zmin xmax ymax zmax" followed by
// nx*ny*nz lines of "vx vy vz" in x-fastest, then y, then z order.
type TabulatedFlow struct {
	domain     core.AABB
	nx, ny, nz int
	data       []core.Vec3
}

// LoadTabulatedFlow parses the text grid format described above.
func LoadTabulatedFlow(r io.Reader) (*TabulatedFlow, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !scanner.Scan() {
		return nil, fmt.Errorf("tabulated flow: empty input")
	}
	header := strings.Fields(scanner.Text())
	if len(header) != 9 {
		return nil, fmt.Errorf("tabulated flow: expected 9 header fields, got %d", len(header))
	}
	ints := make([]int, 3)
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(header[i])
		if err != nil {
			return nil, fmt.Errorf("tabulated flow: bad resolution field %d: %w", i, err)
		}
		ints[i] = v
	}
	floats := make([]float64, 6)
	for i := 0; i < 6; i++ {
		v, err := strconv.ParseFloat(header[3+i], 64)
		if err != nil {
			return nil, fmt.Errorf("tabulated flow: bad bound field %d: %w", i, err)
		}
		floats[i] = v
	}

	nx, ny, nz := ints[0], ints[1], ints[2]
	domain := core.NewAABB(
		core.NewVec3(floats[0], floats[1], floats[2]),
		core.NewVec3(floats[3], floats[4], floats[5]),
	)

	data := make([]core.Vec3, 0, nx*ny*nz)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			return nil, fmt.Errorf("tabulated flow: expected 3 fields per sample, got %d", len(fields))
		}
		var v core.Vec3
		var err error
		if v.X, err = strconv.ParseFloat(fields[0], 64); err != nil {
			return nil, err
		}
		if v.Y, err = strconv.ParseFloat(fields[1], 64); err != nil {
			return nil, err
		}
		if v.Z, err = strconv.ParseFloat(fields[2], 64); err != nil {
			return nil, err
		}
		data = append(data, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(data) != nx*ny*nz {
		return nil, fmt.Errorf("tabulated flow: expected %d samples, got %d", nx*ny*nz, len(data))
	}

	return &TabulatedFlow{domain: domain, nx: nx, ny: ny, nz: nz, data: data}, nil
}

func (f *TabulatedFlow) index(ix, iy, iz int) int {
	return (iz*f.ny+iy)*f.nx + ix
}

// Velocity trilinearly interpolates the stored grid at pos. The field is
// treated as steady (time-independent) — the original Amira-backed scenario
// likewise samples a single steady dataset.
func (f *TabulatedFlow) Velocity(pos core.Vec3, _ float64) (core.Vec3, bool) {
	if !f.IsInside(pos) {
		return core.Vec3{}, false
	}

	size := f.domain.Size()
	fx := (pos.X - f.domain.Min.X) / size.X * float64(f.nx-1)
	fy := (pos.Y - f.domain.Min.Y) / size.Y * float64(f.ny-1)
	fz := (pos.Z - f.domain.Min.Z) / size.Z * float64(f.nz-1)

	ix0, iy0, iz0 := clampIndex(int(fx), f.nx-2), clampIndex(int(fy), f.ny-2), clampIndex(int(fz), f.nz-2)
	tx, ty, tz := fx-float64(ix0), fy-float64(iy0), fz-float64(iz0)

	var result core.Vec3
	for dz := 0; dz < 2; dz++ {
		for dy := 0; dy < 2; dy++ {
			for dx := 0; dx < 2; dx++ {
				w := bary(tx, dx) * bary(ty, dy) * bary(tz, dz)
				if w == 0 {
					continue
				}
				sample := f.data[f.index(ix0+dx, iy0+dy, iz0+dz)]
				result = result.Add(sample.Multiply(w))
			}
		}
	}
	return result, true
}

func bary(t float64, d int) float64 {
	if d == 0 {
		return 1 - t
	}
	return t
}

func clampIndex(i, maxI int) int {
	if i < 0 {
		return 0
	}
	if i > maxI {
		return maxI
	}
	return i
}

func (f *TabulatedFlow) IsInside(pos core.Vec3) bool {
	return f.domain.IsInside(pos)
}

func (f *TabulatedFlow) Extent() core.AABB {
	return f.domain
}
