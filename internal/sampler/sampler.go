package sampler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"wisecow/internal/models"
)

// Sampler reads host utilization from /proc. CPU percentages need two reads,
// so Sample blocks for one short measurement window; the window bounds how
// long a single sample can stall its caller.
type Sampler struct {
	Window   time.Duration
	DiskPath string
	TopN     int
}

func New() *Sampler {
	return &Sampler{Window: 500 * time.Millisecond, DiskPath: "/", TopN: 10}
}

// Sample captures CPU, memory and disk percentages plus the busiest
// processes. All percentages are clamped to [0,100].
func (s *Sampler) Sample(ctx context.Context) (models.ResourceSample, error) {
	total1, idle1, err := readCPU()
	if err != nil {
		return models.ResourceSample{}, fmt.Errorf("read cpu: %w", err)
	}
	procs1, _ := readProcTicks()

	select {
	case <-ctx.Done():
		return models.ResourceSample{}, ctx.Err()
	case <-time.After(s.Window):
	}

	total2, idle2, err := readCPU()
	if err != nil {
		return models.ResourceSample{}, fmt.Errorf("read cpu: %w", err)
	}
	procs2, _ := readProcTicks()

	sample := models.ResourceSample{TS: time.Now().UTC()}
	deltaTotal := total2 - total1
	deltaIdle := idle2 - idle1
	if deltaTotal > 0 {
		sample.CPUPct = clampPct(100 * (1 - float64(deltaIdle)/float64(deltaTotal)))
	}

	memTotal, memAvail, err := readMem()
	if err != nil {
		return models.ResourceSample{}, fmt.Errorf("read mem: %w", err)
	}
	sample.MemPct = clampPct(100 * float64(memTotal-memAvail) / float64(memTotal))

	diskTotal, diskUsed, err := readDiskUsage(s.DiskPath)
	if err != nil {
		return models.ResourceSample{}, fmt.Errorf("read disk: %w", err)
	}
	if diskTotal > 0 {
		sample.DiskPct = clampPct(100 * float64(diskUsed) / float64(diskTotal))
	}

	sample.TopProcesses = topProcesses(procs1, procs2, deltaTotal, s.TopN)
	return sample, nil
}

type procTicks struct {
	name  string
	ticks uint64
}

func topProcesses(before, after map[int]procTicks, deltaTotal uint64, n int) []models.ProcessUsage {
	if deltaTotal == 0 || len(after) == 0 {
		return nil
	}
	usage := make([]models.ProcessUsage, 0, len(after))
	for pid, cur := range after {
		prev, ok := before[pid]
		if !ok || cur.ticks < prev.ticks {
			continue
		}
		pct := clampPct(100 * float64(cur.ticks-prev.ticks) / float64(deltaTotal))
		usage = append(usage, models.ProcessUsage{PID: pid, Name: cur.name, CPUPct: pct})
	}
	sort.Slice(usage, func(i, j int) bool {
		if usage[i].CPUPct != usage[j].CPUPct {
			return usage[i].CPUPct > usage[j].CPUPct
		}
		return usage[i].PID < usage[j].PID
	})
	if len(usage) > n {
		usage = usage[:n]
	}
	return usage
}

func readCPU() (total, idle uint64, err error) {
	f, err := os.Open("/proc/stat")
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := s.Text()
		if strings.HasPrefix(line, "cpu ") {
			parts := strings.Fields(line)
			if len(parts) < 5 {
				return 0, 0, errors.New("invalid cpu line")
			}
			vals := make([]uint64, 0, len(parts)-1)
			for _, p := range parts[1:] {
				v, e := strconv.ParseUint(p, 10, 64)
				if e != nil {
					return 0, 0, e
				}
				vals = append(vals, v)
				total += v
			}
			idle = vals[3]
			if len(vals) > 4 {
				idle += vals[4]
			}
			return total, idle, nil
		}
	}
	if err := s.Err(); err != nil {
		return 0, 0, err
	}
	return 0, 0, errors.New("cpu line not found")
}

func readMem() (total, available uint64, err error) {
	f, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	for s.Scan() {
		fields := strings.Fields(s.Text())
		if len(fields) < 2 {
			continue
		}
		if fields[0] == "MemTotal:" {
			total, _ = strconv.ParseUint(fields[1], 10, 64)
		}
		if fields[0] == "MemAvailable:" {
			available, _ = strconv.ParseUint(fields[1], 10, 64)
		}
	}
	if total == 0 {
		return 0, 0, errors.New("meminfo parse failed")
	}
	return total, available, nil
}

func readDiskUsage(path string) (total, used uint64, err error) {
	var st syscall.Statfs_t
	if err := syscall.Statfs(path, &st); err != nil {
		return 0, 0, err
	}
	total = st.Blocks * uint64(st.Bsize)
	free := st.Bavail * uint64(st.Bsize)
	used = total - free
	return total, used, nil
}

func readProcTicks() (map[int]procTicks, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, err
	}
	out := make(map[int]procTicks, len(entries))
	for _, e := range entries {
		pid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		b, err := os.ReadFile(filepath.Join("/proc", e.Name(), "stat"))
		if err != nil {
			continue
		}
		name, ticks, err := parseProcStat(string(b))
		if err != nil {
			continue
		}
		out[pid] = procTicks{name: name, ticks: ticks}
	}
	return out, nil
}

// parseProcStat extracts the comm and utime+stime from a /proc/<pid>/stat
// line. The comm field is parenthesized and may itself contain spaces or
// parentheses, so it is located by the last closing paren.
func parseProcStat(line string) (string, uint64, error) {
	start := strings.IndexByte(line, '(')
	end := strings.LastIndexByte(line, ')')
	if start < 0 || end < 0 || end < start {
		return "", 0, errors.New("malformed stat line")
	}
	name := line[start+1 : end]
	fields := strings.Fields(line[end+1:])
	// After comm: state is the first field, utime and stime are the 12th
	// and 13th.
	if len(fields) < 13 {
		return "", 0, errors.New("short stat line")
	}
	utime, err := strconv.ParseUint(fields[11], 10, 64)
	if err != nil {
		return "", 0, err
	}
	stime, err := strconv.ParseUint(fields[12], 10, 64)
	if err != nil {
		return "", 0, err
	}
	return name, utime + stime, nil
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
