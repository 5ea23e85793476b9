package rest

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

// Health состояние сервиса и машины. Недоступные метрики пропускаются.
func (h *Handler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	system := gin.H{
		"go_version": runtime.Version(),
		"num_cpu":    runtime.NumCPU(),
	}
	if info, err := host.InfoWithContext(ctx); err == nil {
		system["platform"] = info.Platform + " " + info.PlatformVersion
		system["os"] = info.OS
		system["kernel"] = info.KernelVersion
	}
	if pct, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pct) > 0 {
		system["cpu_percent"] = pct[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		system["memory"] = gin.H{
			"total":     vm.Total,
			"available": vm.Available,
			"percent":   vm.UsedPercent,
		}
	}
	if du, err := disk.UsageWithContext(ctx, "/"); err == nil {
		system["disk"] = gin.H{
			"total":   du.Total,
			"used":    du.Used,
			"free":    du.Free,
			"percent": du.UsedPercent,
		}
	}

	service := gin.H{"pid": os.Getpid()}
	if p, err := process.NewProcessWithContext(ctx, int32(os.Getpid())); err == nil {
		if v, err := p.MemoryPercentWithContext(ctx); err == nil {
			service["memory_percent"] = v
		}
		if v, err := p.CPUPercentWithContext(ctx); err == nil {
			service["cpu_percent"] = v
		}
		if v, err := p.NumThreadsWithContext(ctx); err == nil {
			service["threads"] = v
		}
	} else {
		h.logger.Debug("process stats unavailable", zap.Error(err))
	}
	service["goroutines"] = runtime.NumGoroutine()

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"system":    system,
		"service":   service,
	})
}
