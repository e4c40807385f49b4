// Package process provides utilities for finding and cleaning up stray
// model CLI processes left behind after a crash.
package process

import (
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/calderlane/modelseat/logger"
)

// seatProcessPattern matches CLI invocations made by a supervisor: the
// --no-session-persistence flag is always passed and is distinctive
// enough to avoid matching a user's interactive sessions.
const seatProcessPattern = "claude.*--no-session-persistence"

// SeatProcess represents a running model CLI process found on the system.
type SeatProcess struct {
	PID     int    // Process ID
	Command string // Full command line
}

// FindSeatProcesses finds all model CLI processes on the system that
// look like supervisor spawns. Useful for detecting orphans left behind
// after a crash.
func FindSeatProcesses() ([]SeatProcess, error) {
	var processes []SeatProcess
	log := logger.WithComponent("process")

	switch runtime.GOOS {
	case "darwin", "linux":
		cmd := exec.Command("pgrep", "-f", seatProcessPattern)
		output, err := cmd.Output()
		if err != nil {
			// pgrep returns exit code 1 if no processes found
			if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
				return processes, nil
			}
			return nil, err
		}

		for _, pid := range ParsePIDs(string(output)) {
			psCmd := exec.Command("ps", "-p", strconv.Itoa(pid), "-o", "args=")
			psOutput, err := psCmd.Output()
			if err != nil {
				continue
			}

			processes = append(processes, SeatProcess{
				PID:     pid,
				Command: strings.TrimSpace(string(psOutput)),
			})
		}
	}

	log.Debug("found seat processes", "count", len(processes))
	return processes, nil
}

// ParsePIDs parses whitespace-separated PIDs from pgrep output,
// skipping anything non-numeric.
func ParsePIDs(output string) []int {
	var pids []int
	for _, field := range strings.Fields(output) {
		pid, err := strconv.Atoi(field)
		if err != nil {
			continue
		}
		pids = append(pids, pid)
	}
	return pids
}

// KillProcess kills a process by PID.
func KillProcess(pid int) error {
	switch runtime.GOOS {
	case "darwin", "linux":
		cmd := exec.Command("kill", "-9", strconv.Itoa(pid))
		return cmd.Run()
	case "windows":
		cmd := exec.Command("taskkill", "/F", "/PID", strconv.Itoa(pid))
		return cmd.Run()
	}
	return nil
}

// FindOrphanedSeatProcesses finds seat processes whose PIDs are not in
// the provided set of known live PIDs.
func FindOrphanedSeatProcesses(knownPIDs map[int]bool) ([]SeatProcess, error) {
	all, err := FindSeatProcesses()
	if err != nil {
		return nil, err
	}

	log := logger.WithComponent("process")
	var orphans []SeatProcess
	for _, proc := range all {
		if !knownPIDs[proc.PID] {
			orphans = append(orphans, proc)
			log.Info("found orphaned seat process", "pid", proc.PID)
		}
	}

	return orphans, nil
}

// CleanupOrphanedProcesses kills all seat processes whose PIDs are not
// in the known set. Returns the number of processes killed.
func CleanupOrphanedProcesses(knownPIDs map[int]bool) (int, error) {
	orphans, err := FindOrphanedSeatProcesses(knownPIDs)
	if err != nil {
		return 0, err
	}

	log := logger.WithComponent("process")
	killed := 0
	for _, proc := range orphans {
		log.Info("killing orphaned seat process", "pid", proc.PID)
		if err := KillProcess(proc.PID); err != nil {
			log.Error("failed to kill process", "pid", proc.PID, "error", err)
			continue
		}
		killed++
	}

	return killed, nil
}
