package logger

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	gnet "github.com/shirou/gopsutil/v3/net"

	"github.com/aws/aws-sdk-go-v2/aws"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

type artifactStat struct {
	files int64
	bytes int64
}

var (
	errorsFetch     int64
	errorsWrite     int64
	warnsFetch      int64
	warnsWrite      int64
	apiFetches      int64
	recordsAccepted int64
	recordsRejected int64
	artifacts       sync.Map // map[string]*artifactStat
)

func recordWarn(component string) {
	if strings.Contains(component, "fetcher") {
		atomic.AddInt64(&warnsFetch, 1)
	} else if strings.Contains(component, "writer") {
		atomic.AddInt64(&warnsWrite, 1)
	}
}

func recordError(component string) {
	if strings.Contains(component, "fetcher") {
		atomic.AddInt64(&errorsFetch, 1)
	} else if strings.Contains(component, "writer") {
		atomic.AddInt64(&errorsWrite, 1)
	}
}

// IncrementFetch records one completed API request.
func IncrementFetch() {
	atomic.AddInt64(&apiFetches, 1)
}

// RecordBatch tracks how many records the organizer accepted and rejected.
func RecordBatch(accepted, rejected int) {
	atomic.AddInt64(&recordsAccepted, int64(accepted))
	atomic.AddInt64(&recordsRejected, int64(rejected))
}

// RecordArtifact tracks one written export artifact and its size in bytes.
func RecordArtifact(kind string, size int64) {
	v, _ := artifacts.LoadOrStore(kind, &artifactStat{})
	st := v.(*artifactStat)
	atomic.AddInt64(&st.files, 1)
	atomic.AddInt64(&st.bytes, size)
}

// StartReport begins periodic logging of system and artifact statistics.
func StartReport(ctx context.Context, log *Log, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				logReport(ctx, log)
			}
		}
	}()
}

func logReport(ctx context.Context, log *Log) {
	cpuPercent, _ := cpu.Percent(0, false)
	memStats, _ := mem.VirtualMemory()
	diskStats, _ := disk.Usage("/")
	netStats, _ := gnet.IOCounters(false)

	artifactData := map[string]map[string]int64{}
	artifacts.Range(func(k, v any) bool {
		name := k.(string)
		st := v.(*artifactStat)
		artifactData[name] = map[string]int64{
			"files": atomic.LoadInt64(&st.files),
			"bytes": atomic.LoadInt64(&st.bytes),
		}
		return true
	})

	cpuPct := 0.0
	if len(cpuPercent) > 0 {
		cpuPct = cpuPercent[0]
	}

	bytesSent := uint64(0)
	bytesRecv := uint64(0)
	if len(netStats) > 0 {
		bytesSent = netStats[0].BytesSent
		bytesRecv = netStats[0].BytesRecv
	}

	fields := Fields{
		"errors_fetch":     atomic.LoadInt64(&errorsFetch),
		"errors_write":     atomic.LoadInt64(&errorsWrite),
		"warns_fetch":      atomic.LoadInt64(&warnsFetch),
		"warns_write":      atomic.LoadInt64(&warnsWrite),
		"api_fetches":      atomic.LoadInt64(&apiFetches),
		"records_accepted": atomic.LoadInt64(&recordsAccepted),
		"records_rejected": atomic.LoadInt64(&recordsRejected),
		"goroutines":       runtime.NumGoroutine(),
		"cpu_percent":      cpuPct,
		"memory_mb":        int64(memStats.Used) / 1024 / 1024,
		"disk_mb":          int64(diskStats.Used) / 1024 / 1024,
		"artifacts":        artifactData,
		"net_bytes_sent":   int64(bytesSent),
		"net_bytes_recv":   int64(bytesRecv),
	}

	log.WithComponent("report").WithFields(fields).Info("runtime report")

	var data []cwtypes.MetricDatum
	data = append(data,
		cwtypes.MetricDatum{MetricName: aws.String("CPUPercent"), Unit: cwtypes.StandardUnitPercent, Value: aws.Float64(cpuPct)},
		cwtypes.MetricDatum{MetricName: aws.String("MemoryMB"), Unit: cwtypes.StandardUnitMegabytes, Value: aws.Float64(float64(memStats.Used) / 1024 / 1024)},
		cwtypes.MetricDatum{MetricName: aws.String("ErrorsFetch"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(atomic.LoadInt64(&errorsFetch)))},
		cwtypes.MetricDatum{MetricName: aws.String("ErrorsWrite"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(atomic.LoadInt64(&errorsWrite)))},
		cwtypes.MetricDatum{MetricName: aws.String("ApiFetches"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(atomic.LoadInt64(&apiFetches)))},
		cwtypes.MetricDatum{MetricName: aws.String("RecordsAccepted"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(atomic.LoadInt64(&recordsAccepted)))},
		cwtypes.MetricDatum{MetricName: aws.String("RecordsRejected"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(atomic.LoadInt64(&recordsRejected)))},
		cwtypes.MetricDatum{MetricName: aws.String("NetBytesSent"), Unit: cwtypes.StandardUnitBytes, Value: aws.Float64(float64(bytesSent))},
		cwtypes.MetricDatum{MetricName: aws.String("NetBytesRecv"), Unit: cwtypes.StandardUnitBytes, Value: aws.Float64(float64(bytesRecv))},
	)

	for name, stats := range artifactData {
		data = append(data,
			cwtypes.MetricDatum{
				MetricName: aws.String("ArtifactFiles"),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{{Name: aws.String("Artifact"), Value: aws.String(name)}},
				Value:      aws.Float64(float64(stats["files"])),
			},
			cwtypes.MetricDatum{
				MetricName: aws.String("ArtifactBytes"),
				Unit:       cwtypes.StandardUnitBytes,
				Dimensions: []cwtypes.Dimension{{Name: aws.String("Artifact"), Value: aws.String(name)}},
				Value:      aws.Float64(float64(stats["bytes"])),
			},
		)
	}

	publishMetrics(ctx, data)
}
