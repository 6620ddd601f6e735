package api

import (
	"runtime"
)

// RuntimeStats - статистика рантайма Go для /health
type RuntimeStats struct {
	AllocMB     float64 `json:"alloc_mb"`
	SysMB       float64 `json:"sys_mb"`
	HeapAllocMB float64 `json:"heap_alloc_mb"`
	NumGC       uint32  `json:"num_gc"`
	Goroutines  int     `json:"goroutines"`
}

// ReadRuntimeStats снимает статистику памяти и горутин
func ReadRuntimeStats() RuntimeStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return RuntimeStats{
		AllocMB:     bytesToMB(m.Alloc),
		SysMB:       bytesToMB(m.Sys),
		HeapAllocMB: bytesToMB(m.HeapAlloc),
		NumGC:       m.NumGC,
		Goroutines:  runtime.NumGoroutine(),
	}
}

func bytesToMB(b uint64) float64 {
	return float64(b) / 1024 / 1024
}
