// Package monitoring turns a running simulation into a web server that can
// pause it and show the state of its nodes.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/sarchlab/arap/ant"
	"github.com/sarchlab/arap/monitoring/web"
	"github.com/sarchlab/arap/pathmgr"
	"github.com/sarchlab/arap/sim/idgen"
	"github.com/sarchlab/arap/sim/timing"
	"github.com/sarchlab/arap/stats"
	"github.com/shirou/gopsutil/process"
	"github.com/sirupsen/logrus"
	"github.com/syifan/goseth"
)

// A Node is what the monitor shows of a node.
type Node interface {
	Name() string
	Address() ant.Address
	PathManager() pathmgr.Manager
	LoadStatistics() *stats.LoadStatistics
	RoutingTableSize() int
	NumSent() uint64
	NumReceived() uint64
}

// Monitor can turn a simulation into a server and allows external monitoring
// controlling of the simulation.
type Monitor struct {
	engine     timing.Engine
	nodes      []Node
	portNumber int
	log        logrus.Ext1FieldLogger
	barIDs     idgen.Generator

	pausedLock sync.Mutex
	paused     bool

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar

	listener net.Listener
	server   *http.Server
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		log:    logrus.StandardLogger(),
		barIDs: idgen.New(),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		m.log.Warnf("[Monitor] port %d is not allowed, using a random port",
			portNumber)

		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithLogger sets the logger.
func (m *Monitor) WithLogger(l logrus.Ext1FieldLogger) *Monitor {
	m.log = l
	return m
}

// RegisterEngine registers the engine that is used in the simulation.
func (m *Monitor) RegisterEngine(e timing.Engine) {
	m.engine = e
}

// RegisterNode registers a node to be monitored.
func (m *Monitor) RegisterNode(n Node) {
	m.nodes = append(m.nodes, n)
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        fmt.Sprintf("%d", m.barIDs.Generate()),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the handler of every route of the monitor.
func (m *Monitor) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/list_nodes", m.listNodes)
	r.HandleFunc("/api/node/{name}", m.nodeDetails)
	r.HandleFunc("/api/node/{name}/table", m.nodeTable)
	r.HandleFunc("/api/node/{name}/load", m.nodeLoad)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() (string, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", m.portNumber))
	if err != nil {
		return "", err
	}

	m.listener = listener
	m.server = &http.Server{
		Handler:           m.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	m.log.Infof("[Monitor] monitoring simulation with %s", url)

	go func() {
		err := m.server.Serve(listener)
		if err != nil && err != http.ErrServerClosed {
			m.log.Errorf("[Monitor] server stopped: %v", err)
		}
	}()

	return url, nil
}

// OpenBrowser opens url in the default browser.
func (m *Monitor) OpenBrowser(url string) {
	if err := browser.OpenURL(url); err != nil {
		m.log.Warnf("[Monitor] cannot open the browser: %v", err)
	}
}

// StopServer shuts the web server down.
func (m *Monitor) StopServer() error {
	if m.server == nil {
		return nil
	}

	return m.server.Close()
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	m.pausedLock.Lock()
	defer m.pausedLock.Unlock()

	m.engine.Pause()
	m.paused = true

	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	m.pausedLock.Lock()
	defer m.pausedLock.Unlock()

	m.engine.Continue()
	m.paused = false

	w.WriteHeader(http.StatusOK)
}

// whilePaused runs f while no event is being handled.
func (m *Monitor) whilePaused(f func()) {
	m.pausedLock.Lock()
	defer m.pausedLock.Unlock()

	if !m.paused {
		m.engine.Pause()
		defer m.engine.Continue()
	}

	f()
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	m.writeJSON(w, map[string]float64{"now": m.engine.Now()})
}

func (m *Monitor) listNodes(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, len(m.nodes))
	for i, n := range m.nodes {
		names[i] = n.Name()
	}

	m.writeJSON(w, names)
}

func (m *Monitor) nodeDetails(w http.ResponseWriter, r *http.Request) {
	n := m.findNodeOr404(w, mux.Vars(r)["name"])
	if n == nil {
		return
	}

	var buf bytes.Buffer

	var err error

	m.whilePaused(func() {
		serializer := goseth.NewSerializer()
		serializer.SetRoot(n)
		serializer.SetMaxDepth(1)
		err = serializer.Serialize(&buf)
	})

	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	_, _ = w.Write(buf.Bytes())
}

type tableRsp struct {
	Local string      `json:"local"`
	Nodes []string    `json:"nodes"`
	Probs [][]float64 `json:"probs"`
}

func (m *Monitor) nodeTable(w http.ResponseWriter, r *http.Request) {
	n := m.findNodeOr404(w, mux.Vars(r)["name"])
	if n == nil {
		return
	}

	if n.PathManager() == nil {
		http.Error(w, "node has no path manager", http.StatusNotFound)
		return
	}

	var s pathmgr.Snapshot

	m.whilePaused(func() { s = n.PathManager().Snapshot() })

	rsp := tableRsp{Local: s.Local.String(), Probs: s.Probs}
	for _, a := range s.Nodes {
		rsp.Nodes = append(rsp.Nodes, a.String())
	}

	m.writeJSON(w, rsp)
}

type loadRsp struct {
	Samples     uint64            `json:"samples"`
	Mean        float64           `json:"mean"`
	Variance    float64           `json:"variance"`
	Counts      map[string]uint64 `json:"counts"`
	RoutingSize int               `json:"routing_size"`
	NumSent     uint64            `json:"num_sent"`
	NumReceived uint64            `json:"num_received"`
}

func (m *Monitor) nodeLoad(w http.ResponseWriter, r *http.Request) {
	n := m.findNodeOr404(w, mux.Vars(r)["name"])
	if n == nil {
		return
	}

	rsp := loadRsp{Counts: make(map[string]uint64)}

	m.whilePaused(func() {
		s := n.LoadStatistics()
		rsp.Samples = s.NumSamples()
		rsp.Mean = s.Mean()
		rsp.Variance = s.Variance()

		for _, c := range s.Counts() {
			rsp.Counts[c.Destination.String()] = c.Samples
		}

		rsp.RoutingSize = n.RoutingTableSize()
		rsp.NumSent = n.NumSent()
		rsp.NumReceived = n.NumReceived()
	})

	m.writeJSON(w, rsp)
}

func (m *Monitor) findNodeOr404(w http.ResponseWriter, name string) Node {
	for _, n := range m.nodes {
		if n.Name() == name || n.Address().String() == name {
			return n
		}
	}

	http.Error(w, "Node not found", http.StatusNotFound)

	return nil
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.snapshot())
	}
	m.progressBarsLock.Unlock()

	m.writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	memory, err := proc.MemoryInfo()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	m.writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memory.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	if err := pprof.StartCPUProfile(buf); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	m.writeJSON(w, prof)
}

func (m *Monitor) writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if _, err := w.Write(data); err != nil {
		m.log.Debugf("[Monitor] cannot write response: %v", err)
	}
}
