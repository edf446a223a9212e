// Package diagnostics builds failure reports and host snapshots.
package diagnostics

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/posleasing/leasesync/internal/domain"
)

// SystemName identifies this service in error reports
const SystemName = "ServicioSincArrendamiento"

// HostInfo is a static description of the machine running the service
type HostInfo struct {
	Hostname string `json:"hostname"`
	OS       string `json:"os"`
	Platform string `json:"platform"`
	Version  string `json:"version"`
}

// SystemStats is a point-in-time resource snapshot
type SystemStats struct {
	Host          HostInfo `json:"host"`
	UptimeSeconds uint64   `json:"uptime_seconds"`
	MemoryUsedPct float64  `json:"memory_used_percent"`
}

// Reporter builds ExceptionInfo records for the error notification
type Reporter struct {
	user     string
	systemID int
	mode     domain.ReportMode
	log      zerolog.Logger

	hostOnce sync.Once
	host     HostInfo
}

// NewReporter creates a reporter. An empty user defaults to "Sistema".
func NewReporter(user string, systemID int, mode domain.ReportMode, log zerolog.Logger) *Reporter {
	if user == "" {
		user = "Sistema"
	}
	return &Reporter{
		user:     user,
		systemID: systemID,
		mode:     mode,
		log:      log.With().Str("component", "diagnostics").Logger(),
	}
}

// Build describes a failure of function at stage. trace may be empty.
func (r *Reporter) Build(err error, function, stage string, trace []byte, now time.Time) domain.ExceptionInfo {
	msg := "Error desconocido"
	if err != nil {
		msg = err.Error()
	}

	extra := []string{
		"Proceso: Sincronización de Arrendamientos",
		fmt.Sprintf("Configuración: %s", r.mode),
		fmt.Sprintf("IdSistema: %d", r.systemID),
	}
	if stage != "" {
		extra = append(extra, "Etapa: "+stage)
	}
	if h := r.Host(); h.Hostname != "" {
		extra = append(extra, fmt.Sprintf("Servidor: %s (%s %s)", h.Hostname, h.Platform, h.Version))
	}

	return domain.ExceptionInfo{
		Timestamp: now,
		System:    SystemName,
		User:      r.user,
		Function:  function,
		Message:   msg,
		Trace:     string(trace),
		Extra:     strings.Join(extra, "\n"),
	}
}

// Host returns host details, read once.
func (r *Reporter) Host() HostInfo {
	r.hostOnce.Do(func() {
		info, err := host.Info()
		if err != nil {
			r.log.Warn().Err(err).Msg("Failed to read host information")
			return
		}
		r.host = HostInfo{
			Hostname: info.Hostname,
			OS:       info.OS,
			Platform: info.Platform,
			Version:  info.PlatformVersion,
		}
	})
	return r.host
}

// Stats returns a resource snapshot. Unavailable values are left zero.
func (r *Reporter) Stats() SystemStats {
	stats := SystemStats{Host: r.Host()}
	if up, err := host.Uptime(); err == nil {
		stats.UptimeSeconds = up
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemoryUsedPct = vm.UsedPercent
	} else {
		r.log.Warn().Err(err).Msg("Failed to get memory statistics")
	}
	return stats
}
