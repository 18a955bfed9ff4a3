package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sarchlab/arap/config"
	"github.com/sarchlab/arap/datarecording"
	"github.com/sarchlab/arap/monitoring"
	"github.com/sarchlab/arap/simulation"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// envFile holds the ARAP_* overrides, loaded when present.
const envFile = ".env"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation.",
	Long: "`run --config params.yaml` runs the simulation described by the " +
		"parameter file and writes the reports to its output directory.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags := cmd.Flags()
		path, _ := flags.GetString("config")

		c, err := config.Load(path, envFile)
		if err != nil {
			return err
		}

		if flags.Changed("run") {
			c.Run, _ = flags.GetUint64("run")
		}

		return runSimulation(cmd, path, c)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	flags := runCmd.Flags()
	flags.String("config", "", "The parameter file.")
	flags.Uint64("run", 1, "The run number, overriding the parameter file.")
	flags.Bool("db", false, "Also record the reports in an SQLite database.")
	flags.Bool("monitor", false, "Serve the monitor while running.")
	flags.Int("monitor-port", 0, "The port of the monitor, random if 0.")
	flags.Bool("open-browser", false, "Open the monitor in the browser.")
	flags.Bool("trace-events", false,
		"Log every event at the trace level. Use with --log-level trace.")

	_ = runCmd.MarkFlagRequired("config")
}

type run struct {
	cmd      *cobra.Command
	cfg      *config.Config
	log      logrus.Ext1FieldLogger
	recorder datarecording.DataRecorder
	exec     *datarecording.ExecRecorder
	monitor  *monitoring.Monitor
}

func runSimulation(cmd *cobra.Command, path string, c *config.Config) error {
	r := &run{cmd: cmd, cfg: c, log: logrus.StandardLogger()}
	flags := cmd.Flags()

	b := simulation.MakeBuilder().WithConfig(c).WithLogger(r.log)

	if traceEvents, _ := flags.GetBool("trace-events"); traceEvents {
		b = b.WithEventLogging()
	}

	if useDB, _ := flags.GetBool("db"); useDB {
		if err := r.openRecorder(path); err != nil {
			return err
		}

		b = b.WithDataRecorder(r.recorder)
	}

	if useMonitor, _ := flags.GetBool("monitor"); useMonitor {
		port, _ := flags.GetInt("monitor-port")
		r.monitor = monitoring.NewMonitor().WithPortNumber(port).WithLogger(r.log)
		b = b.WithMonitor(r.monitor)
	}

	s, err := b.Build()
	if err != nil {
		return err
	}

	if r.monitor != nil {
		if err := r.startMonitor(); err != nil {
			_ = s.Terminate()
			return err
		}
	}

	result, err := s.Run()
	if err != nil {
		_ = s.Terminate()
		return err
	}

	if err := r.endRecording(result); err != nil {
		_ = s.Terminate()
		return err
	}

	if err := s.Terminate(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"ants created: %d\nload ants: %d\nmean of mean times: %g\n",
		result.NumAntsCreated, result.Load.TotalSamples,
		result.Load.MeanOfMeans)

	return nil
}

func (r *run) openRecorder(path string) error {
	if err := os.MkdirAll(r.cfg.OutputDir, 0o755); err != nil {
		return err
	}

	name := filepath.Join(r.cfg.OutputDir,
		fmt.Sprintf("arap_%d_%d", r.cfg.Seed, r.cfg.Run))

	recorder, err := datarecording.New(name)
	if err != nil {
		return err
	}

	exec, err := datarecording.NewExecRecorder(recorder)
	if err != nil {
		_ = recorder.Close()
		return err
	}

	exec.Start()
	exec.Set("Config", path)
	exec.Set("Seed", strconv.FormatUint(r.cfg.Seed, 10))
	exec.Set("Run", strconv.FormatUint(r.cfg.Run, 10))

	r.recorder = recorder
	r.exec = exec

	r.log.Infof("[Run] recording to %s", datarecording.Filename(name))

	return nil
}

func (r *run) endRecording(result simulation.Result) error {
	if r.exec == nil {
		return nil
	}

	r.exec.Set("Ants Created", strconv.FormatUint(result.NumAntsCreated, 10))
	r.exec.Set("Load Ants", strconv.FormatUint(result.Load.TotalSamples, 10))

	return r.exec.End()
}

func (r *run) startMonitor() error {
	url, err := r.monitor.StartServer()
	if err != nil {
		return err
	}

	if open, _ := r.cmd.Flags().GetBool("open-browser"); open {
		r.monitor.OpenBrowser(url)
	}

	return nil
}
