package grove

import (
	"fmt"
	"io"
	"os"
	"time"
)

// debugStats holds per-frame timing. Only reported when Hub.debug is true.
type debugStats struct {
	evalTime  time.Duration
	drawTime  time.Duration
	frameTime time.Duration
	cameras   int
}

// debugOut is where debug lines go. Tests replace it.
var debugOut io.Writer = os.Stderr

// debugFrame prints timing and culling counters for a completed frame.
func (h *Hub) debugFrame(s FrameStats) {
	if !h.debug {
		return
	}
	d := h.dstats
	_, _ = fmt.Fprintf(debugOut,
		"[grove] frame %d | eval: %v | draw: %v | total: %v | cameras: %d\n",
		s.Frame, d.evalTime, d.drawTime, d.frameTime, d.cameras)
	_, _ = fmt.Fprintf(debugOut,
		"[grove] batches: %d/%d | instances: %d/%d | draw calls: %d | culled frustum/distance/facing: %d/%d/%d | missing: %d\n",
		s.VisibleBatches, s.TotalBatches, s.DrawnInstances, s.TotalInstances, s.DrawCalls,
		s.CulledByFrustum, s.CulledByDistance, s.CulledByFacing, s.SkippedMissing)
}

// debugCollect prints the result of a collection.
func (h *Hub) debugCollect(snap *batchSnapshot, sources int, took time.Duration) {
	if !h.debug {
		return
	}
	_, _ = fmt.Fprintf(debugOut,
		"[grove] collect #%d: %d sources | %d batches | %d instances | took %v\n",
		snap.generation, sources, len(snap.batches), snap.totalInstances, took)
	if snap.dropped > 0 {
		_, _ = fmt.Fprintf(debugOut, "[grove] warning: dropped %d malformed batches\n", snap.dropped)
	}
}

// debugShortfall warns when a scatter run produced fewer placements than
// requested.
func debugShortfall(enabled bool, c Category, s ScatterStats) {
	if !enabled || s.Shortfall() == 0 {
		return
	}
	_, _ = fmt.Fprintf(debugOut,
		"[grove] warning: %s placed %d/%d after %d attempts (spacing %d, slope %d, probability %d, moisture %d, excluded %d)\n",
		c, s.Accepted, s.Target, s.Attempts,
		s.Rejected[RejectSpacing], s.Rejected[RejectSlope], s.Rejected[RejectProbability],
		s.Rejected[RejectMoisture], s.Rejected[RejectExcluded])
}
