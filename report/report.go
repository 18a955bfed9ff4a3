// Package report writes the outputs of a simulation: the probability tables
// of the nodes, the load model of every node and the paths of the load ants.
// The files are CSV. When a DataRecorder is given, the same data also goes to
// its database.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sarchlab/arap/ant"
	"github.com/sarchlab/arap/datarecording"
	"github.com/sarchlab/arap/node"
	"github.com/sarchlab/arap/pathmgr"
	"github.com/sarchlab/arap/sim/hooking"
	"github.com/sarchlab/arap/sim/timing"
	"github.com/sarchlab/arap/stats"
	"github.com/sirupsen/logrus"
)

// Directories created under the output directory.
const (
	TablesDir    = "tables"
	LoadModelDir = "load-ants-model"
	LoadPathsDir = "load-ants-paths"
)

// Tables of the database.
const (
	ProbTable        = "prob_table"
	LoadPathTable    = "load_path"
	LoadSummaryTable = "load_summary"
)

// ProbEntry is a row of the prob_table table.
type ProbEntry struct {
	Time        float64
	Node        string
	Destination string
	Medium      string
	Probability float64
}

// LoadPathEntry is a row of the load_path table.
type LoadPathEntry struct {
	Time   float64
	Source string
	AntID  uint64
	Path   string
}

// LoadSummaryEntry is a row of the load_summary table.
type LoadSummaryEntry struct {
	Node     string
	Samples  uint64
	Mean     float64
	Variance float64
}

// A Node is what the reports read from a node.
type Node interface {
	Address() ant.Address
	PathManager() pathmgr.Manager
	LoadStatistics() *stats.LoadStatistics
}

// Options configure a Reporter.
type Options struct {
	Dir         string
	Seed        uint64
	Run         uint64
	ExplorersOn bool
	Recorder    datarecording.DataRecorder
	Log         logrus.Ext1FieldLogger
}

// A Reporter writes the reports of one simulation run. It is also a hook that
// records the load paths announced by the nodes.
type Reporter struct {
	opts Options

	pathsFile *os.File
	paths     *csv.Writer
}

// New creates the output directories and the path report.
func New(opts Options) (*Reporter, error) {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}

	for _, d := range []string{TablesDir, LoadModelDir, LoadPathsDir} {
		if err := os.MkdirAll(filepath.Join(opts.Dir, d), 0o755); err != nil {
			return nil, err
		}
	}

	r := &Reporter{opts: opts}

	f, err := os.Create(r.PathsFile())
	if err != nil {
		return nil, err
	}

	r.pathsFile = f
	r.paths = csv.NewWriter(f)

	if err := r.createTables(); err != nil {
		_ = f.Close()
		return nil, err
	}

	return r, nil
}

func (r *Reporter) createTables() error {
	if r.opts.Recorder == nil {
		return nil
	}

	tables := []struct {
		name   string
		sample any
	}{
		{ProbTable, ProbEntry{}},
		{LoadPathTable, LoadPathEntry{}},
		{LoadSummaryTable, LoadSummaryEntry{}},
	}

	for _, t := range tables {
		if err := r.opts.Recorder.CreateTable(t.name, t.sample); err != nil {
			return err
		}
	}

	return nil
}

func (r *Reporter) explorerTag() string {
	if r.opts.ExplorersOn {
		return "explorer-on"
	}

	return "explorer-off"
}

// PathsFile returns the file of the load paths.
func (r *Reporter) PathsFile() string {
	return filepath.Join(r.opts.Dir, LoadPathsDir,
		fmt.Sprintf("paths_%s_%d_%d.csv", r.explorerTag(), r.opts.Seed, r.opts.Run))
}

// LoadModelFile returns the file of the load model.
func (r *Reporter) LoadModelFile() string {
	return filepath.Join(r.opts.Dir, LoadModelDir,
		fmt.Sprintf("%s_%d_%d.csv", r.explorerTag(), r.opts.Seed, r.opts.Run))
}

// TableFile returns the file of the table of node a printed at time t.
func (r *Reporter) TableFile(a ant.Address, t timing.VTimeInSec) string {
	return filepath.Join(r.opts.Dir, TablesDir,
		fmt.Sprintf("%s_%s_%d_%d.csv", a, formatFloat(t), r.opts.Seed, r.opts.Run))
}

// Func records the load paths announced through node.HookPosLoadPath.
func (r *Reporter) Func(ctx hooking.HookCtx) {
	if ctx.Pos != node.HookPosLoadPath {
		return
	}

	p := ctx.Item.(node.LoadPath)
	if err := r.RecordPath(p); err != nil {
		r.opts.Log.Errorf("[Report] cannot record the path of ant %d: %v",
			p.AntID, err)
	}
}

// RecordPath appends a load path to the path report.
func (r *Reporter) RecordPath(p node.LoadPath) error {
	hops := make([]string, len(p.Path))
	for i, a := range p.Path {
		hops[i] = a.String()
	}

	line := append([]string{formatFloat(p.Time), p.Source.String()}, hops...)
	if err := r.paths.Write(line); err != nil {
		return err
	}

	if r.opts.Recorder == nil {
		return nil
	}

	return r.opts.Recorder.InsertData(LoadPathTable, LoadPathEntry{
		Time:   p.Time,
		Source: p.Source.String(),
		AntID:  p.AntID,
		Path:   strings.Join(hops, " "),
	})
}

// PrintTables writes the probability table of every node.
func (r *Reporter) PrintTables(now timing.VTimeInSec, nodes []Node) error {
	for _, n := range nodes {
		if n.PathManager() == nil {
			continue
		}

		if err := r.printTable(now, n.PathManager().Snapshot()); err != nil {
			return err
		}
	}

	return nil
}

func (r *Reporter) printTable(now timing.VTimeInSec, s pathmgr.Snapshot) error {
	header := []string{" "}
	for _, a := range s.Nodes {
		header = append(header, a.String())
	}
	header = append(header, "Sum")

	rows := [][]string{header}

	for i, dst := range s.Nodes {
		row := []string{dst.String()}

		for j, p := range s.Probs[i] {
			row = append(row, strconv.FormatFloat(p, 'f', 6, 64))

			if err := r.insert(ProbTable, ProbEntry{
				Time:        now,
				Node:        s.Local.String(),
				Destination: dst.String(),
				Medium:      s.Nodes[j].String(),
				Probability: p,
			}); err != nil {
				return err
			}
		}

		rows = append(rows, append(row, formatFloat(s.RowSum(i))))
	}

	return writeCSV(r.TableFile(s.Local, now), rows)
}

// PrintLoadModel writes the load model of every node followed by the summary
// of the whole network.
func (r *Reporter) PrintLoadModel(nodes []Node) (stats.Summary, error) {
	header := []string{" "}
	for _, n := range nodes {
		header = append(header, n.Address().String())
	}
	header = append(header, "Load ants", "Mean", "Variance")

	rows := [][]string{header}
	models := make([]*stats.LoadStatistics, 0, len(nodes))

	for _, n := range nodes {
		m := n.LoadStatistics()
		models = append(models, m)

		row := []string{n.Address().String()}
		for _, c := range m.Counts() {
			row = append(row, strconv.FormatUint(c.Samples, 10))
		}

		row = append(row,
			strconv.FormatUint(m.NumSamples(), 10),
			formatFloat(m.Mean()),
			formatFloat(m.Variance()))
		rows = append(rows, row)

		if err := r.insert(LoadSummaryTable, LoadSummaryEntry{
			Node:     n.Address().String(),
			Samples:  m.NumSamples(),
			Mean:     m.Mean(),
			Variance: m.Variance(),
		}); err != nil {
			return stats.Summary{}, err
		}
	}

	summary, err := stats.Summarize(models)
	if err != nil {
		return summary, err
	}

	rows = append(rows,
		[]string{"Total load ants", strconv.FormatUint(summary.TotalSamples, 10)},
		[]string{"Sum of mean times", formatFloat(summary.SumOfMeans)},
		[]string{"Mean of mean times", formatFloat(summary.MeanOfMeans)},
		[]string{"Variance of mean times", formatFloat(summary.VarOfMeans)},
	)

	return summary, writeCSV(r.LoadModelFile(), rows)
}

func (r *Reporter) insert(table string, entry any) error {
	if r.opts.Recorder == nil {
		return nil
	}

	return r.opts.Recorder.InsertData(table, entry)
}

// Close flushes the path report and the database.
func (r *Reporter) Close() error {
	r.paths.Flush()

	if err := r.paths.Error(); err != nil {
		_ = r.pathsFile.Close()
		return err
	}

	if err := r.pathsFile.Close(); err != nil {
		return err
	}

	if r.opts.Recorder != nil {
		return r.opts.Recorder.Flush()
	}

	return nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
