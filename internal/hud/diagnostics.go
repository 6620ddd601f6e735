package hud

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// smoothing - вес нового кадра в экспоненциальном сглаживании
const smoothing = 0.1

// SystemSampler читает загрузку процессора и памяти
type SystemSampler interface {
	CPUPercent() (float64, error)
	MemPercent() (float64, error)
}

// gopsutilSampler читает метрики процесса и системы через gopsutil
type gopsutilSampler struct {
	proc *process.Process
}

// NewSystemSampler создает сэмплер для текущего процесса
func NewSystemSampler() SystemSampler {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		proc = nil
	}
	return &gopsutilSampler{proc: proc}
}

// CPUPercent возвращает использование CPU процессом в процентах
func (s *gopsutilSampler) CPUPercent() (float64, error) {
	if s.proc != nil {
		if percent, err := s.proc.CPUPercent(); err == nil {
			return percent, nil
		}
	}
	// Если не удалось получить метрику процесса, берём системную
	percents, err := cpu.Percent(0, false)
	if err != nil {
		return 0, err
	}
	if len(percents) == 0 {
		return 0, fmt.Errorf("cpu.Percent: no data")
	}
	return percents[0], nil
}

// MemPercent возвращает занятую системную память в процентах
func (s *gopsutilSampler) MemPercent() (float64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.UsedPercent, nil
}

// Diagnostics считает сглаженные FPS и время кадра и периодически опрашивает систему
type Diagnostics struct {
	mu        sync.RWMutex
	sampler   SystemSampler
	interval  time.Duration
	lastPoll  time.Time
	startTime time.Time

	fps       float64
	frameTime float64 // мс
	cpu       float64
	mem       float64
}

// NewDiagnostics создает диагностику. interval - период опроса CPU и памяти.
func NewDiagnostics(sampler SystemSampler, interval time.Duration) *Diagnostics {
	if sampler == nil {
		sampler = NewSystemSampler()
	}
	return &Diagnostics{
		sampler:   sampler,
		interval:  interval,
		startTime: time.Now(),
	}
}

// RecordFrame учитывает кадр длительностью dt секунд
func (d *Diagnostics) RecordFrame(dt float64, now time.Time) {
	d.mu.Lock()
	if dt > 0 {
		ms := dt * 1000
		if d.frameTime == 0 {
			d.frameTime = ms
		} else {
			d.frameTime += (ms - d.frameTime) * smoothing
		}
		d.fps = 1000 / d.frameTime
	}
	poll := d.lastPoll.IsZero() || now.Sub(d.lastPoll) >= d.interval
	if poll {
		d.lastPoll = now
	}
	d.mu.Unlock()

	if poll {
		d.poll()
	}
}

func (d *Diagnostics) poll() {
	cpuPercent, cpuErr := d.sampler.CPUPercent()
	memPercent, memErr := d.sampler.MemPercent()

	d.mu.Lock()
	defer d.mu.Unlock()
	if cpuErr == nil {
		d.cpu = cpuPercent
	}
	if memErr == nil {
		d.mem = memPercent
	}
}

// Values возвращает FPS, время кадра в мс, CPU и память в процентах
func (d *Diagnostics) Values() (fps, frameTime, cpu, mem float64) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.fps, d.frameTime, d.cpu, d.mem
}

// Uptime возвращает время работы в читаемом виде
func (d *Diagnostics) Uptime() string {
	uptime := time.Since(d.startTime)

	hours := int(uptime.Hours())
	minutes := int(uptime.Minutes()) % 60
	seconds := int(uptime.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	}
	return fmt.Sprintf("%dс", seconds)
}
