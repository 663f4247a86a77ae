// Package progress implements the resumable pixel-result store used by the
// raytracer to persist partial render progress to disk and resume it later,
// grounded on original_source/src/progresssaver.cpp.
package progress

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dstelter/rsraytracer/pkg/core"
	"github.com/dstelter/rsraytracer/pkg/critsearch"
)

// noIndex is the sentinel stored in Store's flat index map for pixels with
// no saved result, replacing the original's raw size_t** with a -1
// sentinel (spec §9 design note).
const noIndex = -1

// RSIntersection is the result of searching one camera ray against the
// recirculation surface: either a hit (Hit and RP both set) or a miss
// (both unset). Ordering between RSIntersections is by CamIndex only
// (spec §3).
type RSIntersection struct {
	CamIndex int
	Ray      core.Ray
	Hit      *float64
	RP       *critsearch.RecPoint
}

// IsHit reports whether this intersection found a recirculation point.
func (r RSIntersection) IsHit() bool {
	return r.Hit != nil && r.RP != nil
}

// Store is the resumable, ordered result store for one render pass. It has
// no locking of its own; render.Raytracer serializes every call under its
// mutex. It tracks a strictly cam_index-ascending `saved` slice, a `waiting`
// buffer of not-yet-drainable out-of-order results, and a flat width*height
// index map from cam_index to position in `saved`.
type Store struct {
	saveDir string
	width   int
	height  int

	startIndex int
	saved      []RSIntersection
	waiting    []RSIntersection
	indexMap   []int

	completeRewrite       bool
	nextSaveIndex         int
	countWaitingPositives int
}

// NewStore creates an empty store for a width x height camera, with
// sidecar files rooted at saveDir (progress_start.txt, progress_points.txt).
func NewStore(saveDir string, width, height int) *Store {
	indexMap := make([]int, width*height)
	for i := range indexMap {
		indexMap[i] = noIndex
	}
	return &Store{
		saveDir:  saveDir,
		width:    width,
		height:   height,
		indexMap: indexMap,
	}
}

func (s *Store) startFile() string { return filepath.Join(s.saveDir, "progress_start.txt") }
func (s *Store) pointsFile() string { return filepath.Join(s.saveDir, "progress_points.txt") }

// Update records a new search result, following the two-case update logic
// of the original ProgressSaver::update:
//
//   - case 1 (data.CamIndex >= startIndex): append to `waiting`, re-sort if
//     out of order, then drain any prefix of `waiting` whose cam_index has
//     caught up to startIndex into `saved`, advancing startIndex.
//   - case 2 (data.CamIndex < startIndex): a historical update to an
//     already-saved pixel. Only handled when data is a hit: either an
//     in-place overwrite of an existing saved entry, or — if the pixel was
//     never saved as a hit before — an ordered insertion that shifts every
//     later saved index in indexMap.
func (s *Store) Update(data RSIntersection) {
	if data.CamIndex >= s.startIndex {
		s.waiting = append(s.waiting, data)
		if len(s.waiting) > 1 && s.waiting[len(s.waiting)-2].CamIndex < s.waiting[len(s.waiting)-1].CamIndex {
			sort.Slice(s.waiting, func(i, j int) bool { return s.waiting[i].CamIndex > s.waiting[j].CamIndex })
		}
		if data.IsHit() {
			s.countWaitingPositives++
		}

		for len(s.waiting) > 0 && s.waiting[len(s.waiting)-1].CamIndex == s.startIndex {
			obj := s.waiting[len(s.waiting)-1]
			if obj.IsHit() {
				s.countWaitingPositives--
				s.indexMap[obj.CamIndex] = len(s.saved)
				s.saved = append(s.saved, obj)
			}
			s.waiting = s.waiting[:len(s.waiting)-1]
			s.startIndex++
		}
		return
	}

	// case 2: historical update.
	if !data.IsHit() {
		return // deletion of an existing entry is not needed by this system
	}
	s.completeRewrite = true

	index := s.indexMap[data.CamIndex]
	if index != noIndex {
		s.saved[index] = data
		return
	}

	insertPos := len(s.saved)
	for camIndex := s.width*s.height - 1; camIndex > data.CamIndex && insertPos > 0; camIndex-- {
		id := s.indexMap[camIndex]
		if id != noIndex {
			s.indexMap[camIndex] = id + 1
			insertPos--
		}
	}
	s.saved = append(s.saved, RSIntersection{})
	copy(s.saved[insertPos+1:], s.saved[insertPos:])
	s.saved[insertPos] = data
	s.indexMap[data.CamIndex] = insertPos
}

// SaveData appends newly saved entries to progress_points.txt (or rewrites
// the whole file if a historical update occurred since the last save), and
// always rewrites progress_start.txt with the current start index.
func (s *Store) SaveData() error {
	if err := os.MkdirAll(s.saveDir, 0o755); err != nil {
		return err
	}

	start := 0
	flags := os.O_WRONLY | os.O_CREATE | os.O_APPEND
	if s.completeRewrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	} else {
		start = s.nextSaveIndex
	}

	f, err := os.OpenFile(s.pointsFile(), flags, 0o644)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for i := start; i < len(s.saved); i++ {
		p := s.saved[i]
		if _, err := fmt.Fprintf(w, "%d %v %v %v\n", p.CamIndex, *p.Hit, p.RP.T0, p.RP.Tau); err != nil {
			w.Flush()
			f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	s.nextSaveIndex = len(s.saved)
	s.completeRewrite = false

	return os.WriteFile(s.startFile(), []byte(fmt.Sprintf("%d", s.startIndex)), 0o644)
}

// RayAt resolves camera ray geometry for a cam_index; supplied by the
// caller (the camera) since Store has no camera dependency of its own.
type RayAt func(camIndex int) core.Ray

// LoadData reads progress_start.txt / progress_points.txt back in, applying
// the original's truncated-last-record recovery rule: if the file ends
// mid-record (an interrupted write), the incomplete trailing record is
// discarded and startIndex is rewound to resume from the last complete one.
func (s *Store) LoadData(rayAt RayAt) error {
	if data, err := os.ReadFile(s.startFile()); err == nil {
		fmt.Sscanf(string(data), "%d", &s.startIndex)
	}

	f, err := os.Open(s.pointsFile())
	if err != nil {
		if os.IsNotExist(err) {
			s.initIndexMap()
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	droppedLast := false
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		var camIndex int
		var hitT, t0, tau float64
		n, scanErr := fmt.Sscanf(line, "%d %g %g %g", &camIndex, &hitT, &t0, &tau)
		if scanErr != nil || n != 4 {
			droppedLast = true
			break
		}
		ray := rayAt(camIndex)
		pos := ray.At(hitT)
		hit := hitT
		rp := critsearch.RecPoint{Pos: pos, T0: t0, Tau: tau}
		s.saved = append(s.saved, RSIntersection{CamIndex: camIndex, Ray: ray, Hit: &hit, RP: &rp})
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if droppedLast || (len(s.saved) > 0 && s.saved[len(s.saved)-1].CamIndex >= s.startIndex) {
		if !droppedLast {
			s.saved = s.saved[:len(s.saved)-1]
		}
		if len(s.saved) > 0 {
			s.startIndex = s.saved[len(s.saved)-1].CamIndex + 1
		} else {
			s.startIndex = 0
		}
	}

	s.nextSaveIndex = len(s.saved)
	s.completeRewrite = false
	s.countWaitingPositives = 0
	s.initIndexMap()
	return nil
}

func (s *Store) initIndexMap() {
	vecPos := 0
	for camIndex := 0; camIndex < s.width*s.height; camIndex++ {
		if vecPos < len(s.saved) && s.saved[vecPos].CamIndex == camIndex {
			s.indexMap[camIndex] = vecPos
			vecPos++
		} else {
			s.indexMap[camIndex] = noIndex
		}
	}
}

// StartIndex returns the lowest cam_index not yet resolved, i.e. where a
// resumed render pass should begin.
func (s *Store) StartIndex() int { return s.startIndex }

// Saved returns the current strictly cam_index-ascending saved results.
// Spec §8 property (6): this ordering holds regardless of the order in
// which Update was called.
func (s *Store) Saved() []RSIntersection { return s.saved }

// Lookup returns the saved result for a cam_index, if any.
func (s *Store) Lookup(camIndex int) (RSIntersection, bool) {
	idx := s.indexMap[camIndex]
	if idx == noIndex {
		return RSIntersection{}, false
	}
	return s.saved[idx], true
}

// LookupXY is a width/height-pixel convenience wrapper around Lookup.
func (s *Store) LookupXY(x, y int) (RSIntersection, bool) {
	return s.Lookup(y*s.width + x)
}
