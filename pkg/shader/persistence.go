package shader

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dstelter/rsraytracer/pkg/core"
)

func normalsFilename(strategy Strategy) string {
	return "normals_" + strategy.suffix() + ".txt"
}

const shadowFilename = "in_shadow.txt"

// SaveNormals writes strategy's computed normals to
// dir/normals_{ne,sa,hy}.txt, one "nx ny nz" line per pixel in camera-scan
// order, so a later run can skip recomputation (spec §4.9 Persistence).
func (s *Shader) SaveNormals(dir string, strategy Strategy) error {
	normals, ok := s.normals[strategy]
	if !ok {
		return fmt.Errorf("shader: normals for strategy %q not computed", strategy.suffix())
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, normalsFilename(strategy)))
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, n := range normals {
		if _, err := fmt.Fprintf(w, "%v %v %v\n", n.X, n.Y, n.Z); err != nil {
			return err
		}
	}
	return w.Flush()
}

// LoadNormals reads back a sidecar written by SaveNormals. It reports
// ok=false (without error) if the file is absent or has the wrong number of
// lines for this pass's resolution, per spec §7 ("missing or corrupt
// sidecar... report, fall back to recompute").
func (s *Shader) LoadNormals(dir string, strategy Strategy) (ok bool, err error) {
	f, err := os.Open(filepath.Join(dir, normalsFilename(strategy)))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	normals := make([]core.Vec3, 0, s.pixelCount())
	ready := make([]bool, s.pixelCount())

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		var x, y, z float64
		if _, scanErr := fmt.Sscanf(line, "%g %g %g", &x, &y, &z); scanErr != nil {
			s.log.Warn().Str("strategy", strategy.suffix()).Msg("corrupt normals sidecar, falling back to recompute")
			return false, nil
		}
		normals = append(normals, core.NewVec3(x, y, z))
	}
	if err := scanner.Err(); err != nil {
		return false, err
	}
	if len(normals) != s.pixelCount() {
		s.log.Warn().Str("strategy", strategy.suffix()).Msg("normals sidecar resolution mismatch, falling back to recompute")
		return false, nil
	}

	for i, n := range normals {
		if !n.IsZero() {
			ready[i] = true
		}
	}
	s.normals[strategy] = normals
	s.ready[strategy] = ready
	return true, nil
}

// SaveShadow writes the computed shadow bitmap to dir/in_shadow.txt, one "0"
// or "1" line per pixel in camera-scan order.
func (s *Shader) SaveShadow(dir string) error {
	if s.shadow == nil {
		return fmt.Errorf("shader: shadow bitmap not computed")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, shadowFilename))
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, inShadow := range s.shadow {
		v := 0
		if inShadow {
			v = 1
		}
		if _, err := fmt.Fprintf(w, "%d\n", v); err != nil {
			return err
		}
	}
	return w.Flush()
}

// LoadShadow reads back a sidecar written by SaveShadow, with the same
// missing/corrupt/resolution-mismatch fallback behavior as LoadNormals.
func (s *Shader) LoadShadow(dir string) (ok bool, err error) {
	f, err := os.Open(filepath.Join(dir, shadowFilename))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	shadow := make([]bool, 0, s.pixelCount())
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		var v int
		if _, scanErr := fmt.Sscanf(line, "%d", &v); scanErr != nil {
			s.log.Warn().Msg("corrupt shadow sidecar, falling back to recompute")
			return false, nil
		}
		shadow = append(shadow, v != 0)
	}
	if err := scanner.Err(); err != nil {
		return false, err
	}
	if len(shadow) != s.pixelCount() {
		s.log.Warn().Msg("shadow sidecar resolution mismatch, falling back to recompute")
		return false, nil
	}

	s.shadow = shadow
	return true, nil
}
