package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
	"go.uber.org/zap"
)

// profileCPUAndMem writes "cpu,rss,vms,swap" lines describing this process
// to file once per second until ctx is done.
func profileCPUAndMem(ctx context.Context, file string, logger *zap.SugaredLogger) {
	f, err := os.Create(file)
	if err != nil {
		logger.Errorw("cannot create profile file", "file", file, "error", err)
		return
	}
	defer f.Close()

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		logger.Errorw("cannot inspect own process", "error", err)
		return
	}

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		cpu, err := proc.CPUPercent()
		if err != nil {
			logger.Debugw("cpu sample failed", "error", err)
			continue
		}
		mem, err := proc.MemoryInfo()
		if err != nil {
			logger.Debugw("memory sample failed", "error", err)
			continue
		}
		fmt.Fprintf(f, "%f,%d,%d,%d\n", cpu, mem.RSS, mem.VMS, mem.Swap)
	}
}
