package observability

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// ProcessStats is the self view of the hub process, refreshed by the
// health monitoring worker.
type ProcessStats struct {
	PID        int32   `json:"pid"`
	RSSBytes   uint64  `json:"rss_bytes"`
	CPUPercent float64 `json:"cpu_percent"`
}

// MonitoringStats aggregates the hub counters for logs and the debug server.
type MonitoringStats struct {
	// --- CONNECTIONS ---
	LiveConnections  int64  `json:"live_connections"`
	StaleConnections uint64 `json:"stale_connections"`
	FramesIn         uint64 `json:"frames_in"`
	FramesOut        uint64 `json:"frames_out"`
	DroppedPushes    uint64 `json:"dropped_pushes"`
	ErrorsSent       uint64 `json:"errors_sent"`

	// --- DOMAIN ---
	Joins             uint64 `json:"joins"`
	Leaves            uint64 `json:"leaves"`
	QuestionsAsked    uint64 `json:"questions_asked"`
	QuestionsAnswered uint64 `json:"questions_answered"`
	QuestionsTimedOut uint64 `json:"questions_timed_out"`

	// --- SYSTEM METRICS ---
	Process    ProcessStats `json:"process"`
	AllocMemMb uint64       `json:"alloc_mem_mb"`
	NumGC      uint32       `json:"num_gc"`
	Goroutines int          `json:"goroutines"`
	UptimeSec  float64      `json:"uptime_sec"`
}

// MonitoringManager holds the hub counters. Counters are atomics, the
// process stats are guarded by mu.
type MonitoringManager struct {
	log       *slog.Logger
	startedAt time.Time

	liveConnections   int64
	staleConnections  uint64
	framesIn          uint64
	framesOut         uint64
	droppedPushes     uint64
	errorsSent        uint64
	joins             uint64
	leaves            uint64
	questionsAsked    uint64
	questionsAnswered uint64
	questionsTimedOut uint64

	mu      sync.RWMutex
	process ProcessStats
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log, startedAt: time.Now()}
}

func (mm *MonitoringManager) ConnectionOpened() { atomic.AddInt64(&mm.liveConnections, 1) }
func (mm *MonitoringManager) ConnectionClosed() { atomic.AddInt64(&mm.liveConnections, -1) }

func (mm *MonitoringManager) IncrStaleConnections()  { atomic.AddUint64(&mm.staleConnections, 1) }
func (mm *MonitoringManager) IncrFramesIn()          { atomic.AddUint64(&mm.framesIn, 1) }
func (mm *MonitoringManager) IncrFramesOut()         { atomic.AddUint64(&mm.framesOut, 1) }
func (mm *MonitoringManager) IncrDroppedPushes()     { atomic.AddUint64(&mm.droppedPushes, 1) }
func (mm *MonitoringManager) IncrErrorsSent()        { atomic.AddUint64(&mm.errorsSent, 1) }
func (mm *MonitoringManager) IncrJoins()             { atomic.AddUint64(&mm.joins, 1) }
func (mm *MonitoringManager) IncrLeaves()            { atomic.AddUint64(&mm.leaves, 1) }
func (mm *MonitoringManager) IncrQuestionsAsked()    { atomic.AddUint64(&mm.questionsAsked, 1) }
func (mm *MonitoringManager) IncrQuestionsAnswered() { atomic.AddUint64(&mm.questionsAnswered, 1) }
func (mm *MonitoringManager) IncrQuestionsTimedOut() { atomic.AddUint64(&mm.questionsTimedOut, 1) }

// UpdateProcess records the latest self stats of the process.
func (mm *MonitoringManager) UpdateProcess(stats ProcessStats) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.process = stats
}

// GetLatest returns a consistent copy of every counter plus Go runtime stats.
func (mm *MonitoringManager) GetLatest() MonitoringStats {
	mm.mu.RLock()
	process := mm.process
	mm.mu.RUnlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return MonitoringStats{
		LiveConnections:   atomic.LoadInt64(&mm.liveConnections),
		StaleConnections:  atomic.LoadUint64(&mm.staleConnections),
		FramesIn:          atomic.LoadUint64(&mm.framesIn),
		FramesOut:         atomic.LoadUint64(&mm.framesOut),
		DroppedPushes:     atomic.LoadUint64(&mm.droppedPushes),
		ErrorsSent:        atomic.LoadUint64(&mm.errorsSent),
		Joins:             atomic.LoadUint64(&mm.joins),
		Leaves:            atomic.LoadUint64(&mm.leaves),
		QuestionsAsked:    atomic.LoadUint64(&mm.questionsAsked),
		QuestionsAnswered: atomic.LoadUint64(&mm.questionsAnswered),
		QuestionsTimedOut: atomic.LoadUint64(&mm.questionsTimedOut),
		Process:           process,
		AllocMemMb:        m.Alloc / 1024 / 1024,
		NumGC:             m.NumGC,
		Goroutines:        runtime.NumGoroutine(),
		UptimeSec:         time.Since(mm.startedAt).Seconds(),
	}
}

// LogSnapshot writes the current counters at info level.
func (mm *MonitoringManager) LogSnapshot() {
	s := mm.GetLatest()
	mm.log.Info("Hub stats",
		"live_connections", s.LiveConnections,
		"stale_connections", s.StaleConnections,
		"frames_in", s.FramesIn,
		"frames_out", s.FramesOut,
		"dropped_pushes", s.DroppedPushes,
		"questions_asked", s.QuestionsAsked,
		"questions_answered", s.QuestionsAnswered,
		"questions_timed_out", s.QuestionsTimedOut,
		"rss_bytes", s.Process.RSSBytes,
		"cpu_percent", s.Process.CPUPercent,
		"mem_mb", s.AllocMemMb,
	)
}
