// Package scan implements the top-level scan orchestrator: it wires
// together the binary index, debug-artifacts reader, address resolver,
// reference walker, matcher bridge, and attribution/export passes into
// the single ScanOutputs-producing operation spec.md section 2 describes
// as "Data flow", recording the named timing checkpoints from section 6
// along the way.
//
// Grounded on the original Rust's scan_objects (symbol_graph.rs), which
// this package mirrors phase-for-phase, and on cmd/mc/llvm.go's
// top-level "parse then resolve then report" driver shape.
package scan

import (
	"bytes"
	"debug/elf"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/trailwatch/apiscan/pkg/addrloc"
	"github.com/trailwatch/apiscan/pkg/attribution"
	"github.com/trailwatch/apiscan/pkg/binindex"
	"github.com/trailwatch/apiscan/pkg/checker"
	"github.com/trailwatch/apiscan/pkg/demangle"
	"github.com/trailwatch/apiscan/pkg/dwarfinfo"
	"github.com/trailwatch/apiscan/pkg/export"
	"github.com/trailwatch/apiscan/pkg/graphedge"
	"github.com/trailwatch/apiscan/pkg/matcher"
	"github.com/trailwatch/apiscan/pkg/refwalker"
	"github.com/trailwatch/apiscan/pkg/scanerr"
)

// Named timing checkpoints, spec.md section 6.
const (
	PhaseParseBin              = "Parse bin"
	PhaseReadDebugArtifacts    = "Read debug artifacts"
	PhaseBuildAddr2LineContext = "Build addr2line context"
	PhaseLoadSymbolsFromBin    = "Load symbols from bin"
	PhaseProcessInlinedRefs    = "Process inlined references"
	PhaseFindPossibleExports   = "Find possible exports"
	PhaseProcessObjectFiles    = "Process object files"
)

// PhaseTimer records cumulative wall-clock duration per named phase, in
// the order phases were first entered.
type PhaseTimer struct {
	order []string
	total map[string]time.Duration
}

// NewPhaseTimer builds an empty PhaseTimer.
func NewPhaseTimer() *PhaseTimer {
	return &PhaseTimer{total: make(map[string]time.Duration)}
}

// Add records duration elapsed since start against phase, matching the
// original's checker.timings.add_timing(start, "<phase>") call shape.
func (t *PhaseTimer) Add(phase string, start time.Time) {
	if _, ok := t.total[phase]; !ok {
		t.order = append(t.order, phase)
	}
	t.total[phase] += time.Since(start)
}

// Report returns the recorded phases in first-entered order together
// with their cumulative durations, for the informational log channel.
func (t *PhaseTimer) Report() []struct {
	Phase    string
	Duration time.Duration
} {
	out := make([]struct {
		Phase    string
		Duration time.Duration
	}, len(t.order))
	for i, phase := range t.order {
		out[i].Phase = phase
		out[i].Duration = t.total[phase]
	}
	return out
}

// Outputs is spec.md section 3's ScanOutputs: produced exactly once per
// scan.
type Outputs struct {
	ApiUsages       []attribution.Record
	PossibleExports []export.PossibleExportedApi
}

// Options controls optional scan behavior not implied by the required
// inputs.
type Options struct {
	// Debug gates population of ApiUsage.DebugData with each usage's
	// provenance (bin path, object file path, section name), mirroring
	// original_source's debug_enabled flag (SPEC_FULL.md section 12.2).
	// Left false by default to avoid the extra allocation and string
	// work on the common path.
	Debug bool
}

// Problem is a flattened, checker-consulted view of Outputs suitable for
// the problem-reporting UI/CLI (spec.md section 6, "Outputs").
type Problem struct {
	Info bool // true for informational problems (possible exports)
	Text string
}

// ToProblems converts o into a ProblemList. Every ApiUsage is a problem
// (an API used, unexpectedly or not, is left to the external checker
// policy to classify; absent that policy this engine reports every
// usage); every PossibleExportedApi is reported as informational.
func (o *Outputs) ToProblems() []Problem {
	problems := make([]Problem, 0, len(o.ApiUsages)+len(o.PossibleExports))
	for _, rec := range o.ApiUsages {
		text := fmt.Sprintf("%s uses API %s via %s -> %s (%s)",
			rec.CrateSel, rec.API, rec.Usage.FromSymbol, rec.Usage.ToSymbol, rec.Usage.Location)
		if dd := rec.Usage.DebugData; dd != nil {
			text += fmt.Sprintf(" [%s %s %s]", dd.BinPath, dd.ObjectFilePath, dd.SectionName)
		}
		problems = append(problems, Problem{
			Info: false,
			Text: text,
		})
	}
	for _, exp := range o.PossibleExports {
		problems = append(problems, Problem{
			Info: true,
			Text: fmt.Sprintf("%s may export API %s via symbol %s", exp.Package, exp.API, exp.Symbol),
		})
	}
	return problems
}

// Objects runs the full scan described by spec.md section 2 over a
// linked binary and a set of unlinked object-file/archive paths.
func Objects(binaryPath string, objectPaths []string, c checker.Checker, d demangle.Demangler, log *slog.Logger, opts Options) (*Outputs, *PhaseTimer, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	timer := NewPhaseTimer()
	log.Info("scanning", "binary", binaryPath)

	start := time.Now()
	binData, err := os.ReadFile(binaryPath)
	if err != nil {
		return nil, nil, scanerr.IO("read binary", binaryPath, err)
	}
	elfFile, err := elf.NewFile(bytes.NewReader(binData))
	if err != nil {
		return nil, nil, scanerr.Parse("parse binary", binaryPath, err)
	}
	timer.Add(PhaseParseBin, start)

	start = time.Now()
	dwarfData, err := elfFile.DWARF()
	if err != nil {
		return nil, nil, scanerr.Parse("read debug info", binaryPath, err)
	}
	artifacts, err := dwarfinfo.FromDWARF(dwarfData)
	if err != nil {
		return nil, nil, scanerr.Parse("read debug artifacts", binaryPath, err)
	}
	timer.Add(PhaseReadDebugArtifacts, start)

	start = time.Now()
	resolver, err := addrloc.Build(dwarfData)
	if err != nil {
		return nil, nil, scanerr.Parse("build address resolver", binaryPath, err)
	}
	timer.Add(PhaseBuildAddr2LineContext, start)

	start = time.Now()
	bin, err := binindex.BuildFromELF(elfFile)
	if err != nil {
		return nil, nil, scanerr.Parse("load symbols", binaryPath, err)
	}
	bin.MergeDebugArtifacts(artifacts)
	timer.Add(PhaseLoadSymbolsFromBin, start)

	start = time.Now()
	var edges []graphedge.Edge
	for _, inlined := range artifacts.InlinedFunctions {
		edges = append(edges, graphedge.Edge{
			From:     inlined.From.Key(),
			To:       inlined.To.Key(),
			Location: graphedge.Eager(inlined.Location),
		})
	}
	timer.Add(PhaseProcessInlinedRefs, start)

	start = time.Now()
	exports, err := export.Discover(bin, d, c, c)
	if err != nil {
		return nil, nil, fmt.Errorf("scan: finding possible exports: %w", err)
	}
	timer.Add(PhaseFindPossibleExports, start)

	start = time.Now()
	walker := refwalker.New(bin, resolver, log, binaryPath, opts.Debug)
	objectEdges, err := walker.Walk(objectPaths)
	if err != nil {
		return nil, nil, err
	}
	edges = append(edges, objectEdges...)
	timer.Add(PhaseProcessObjectFiles, start)

	bridge := matcher.New(c, d, bin)
	attributor := attribution.New(bridge, c)
	usages, err := attributor.Process(edges)
	if err != nil {
		return nil, nil, fmt.Errorf("scan: attributing edges: %w", err)
	}

	for _, ph := range timer.Report() {
		log.Info("phase timing", "phase", ph.Phase, "duration", ph.Duration)
	}

	return &Outputs{ApiUsages: usages, PossibleExports: exports}, timer, nil
}
