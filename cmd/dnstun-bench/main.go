// Command dnstun-bench drives repeated file transfers against a live
// dnstun-recv listener and reports throughput and per-transfer latency
// percentiles, the way cmd/bench measures raw DNS query latency.
package main

import (
	"bytes"
	"crypto/rand"
	"flag"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dnscovert/dnstun/internal/basedomain"
	"github.com/dnscovert/dnstun/internal/events"
	"github.com/dnscovert/dnstun/internal/helpers"
	"github.com/dnscovert/dnstun/internal/session"
	"github.com/dnscovert/dnstun/internal/transport"
)

func main() {
	var (
		server      = flag.String("server", "127.0.0.1:53", "dnstun-recv HOST:PORT")
		baseDomain  = flag.String("base-domain", "tunnel.example.com", "Channel base domain")
		payloadSize = flag.Int("payload-size", 512, "Synthetic payload size in bytes, per transfer")
		concurrency = flag.Int("concurrency", 4, "Number of concurrent sender workers")
		transfers   = flag.Int("transfers", 20, "Total number of transfers to run")
		timeout     = flag.Duration("timeout", 4*time.Second, "Per-packet ack timeout")
		maxAttempts = flag.Int("max-attempts", 3, "Per-packet retry budget")
	)
	flag.Parse()

	base, err := basedomain.Parse(*baseDomain)
	if err != nil {
		fmt.Printf("invalid base domain: %v\n", err)
		return
	}

	conc := helpers.ClampInt(*concurrency, 1, 256)
	total := helpers.ClampInt(*transfers, 1, 1_000_000)
	size := int(helpers.ClampIntToUint16(*payloadSize))
	per := total / conc
	rem := total % conc

	lat := make([]float64, 0, total)
	var latMu sync.Mutex
	var failures int
	var failMu sync.Mutex

	t0 := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < conc; i++ {
		n := per
		if i < rem {
			n++
		}
		if n <= 0 {
			continue
		}
		wg.Add(1)
		go func(workerID, count int) {
			defer wg.Done()
			ep, err := transport.DialSender(*server)
			if err != nil {
				failMu.Lock()
				failures += count
				failMu.Unlock()
				return
			}
			defer ep.Close()

			sender := session.NewSender(ep, base, events.Noop{}, *timeout, *maxAttempts)
			for j := 0; j < count; j++ {
				payload := make([]byte, size)
				if _, err := rand.Read(payload); err != nil {
					failMu.Lock()
					failures++
					failMu.Unlock()
					continue
				}
				filename := fmt.Sprintf("bench-%d-%d.bin", workerID, j)

				start := time.Now()
				err := sender.Send(filename, bytes.NewReader(payload))
				if err != nil {
					failMu.Lock()
					failures++
					failMu.Unlock()
					continue
				}
				ms := float64(time.Since(start).Microseconds()) / 1000.0
				latMu.Lock()
				lat = append(lat, ms)
				latMu.Unlock()
			}
		}(i, n)
	}
	wg.Wait()
	elapsed := time.Since(t0).Seconds()

	fmt.Printf("server=%s base_domain=%s payload_size=%d concurrency=%d transfers=%d failures=%d\n",
		*server, base.Dotted(), size, conc, total, failures)

	if len(lat) == 0 {
		fmt.Printf("no successful transfers\n")
		return
	}
	sort.Float64s(lat)
	tps := float64(len(lat)) / elapsed
	bytesPerSec := tps * float64(size)

	fmt.Printf("elapsed_s=%.3f transfers_per_s=%.2f bytes_per_s=%.0f\n", elapsed, tps, bytesPerSec)
	fmt.Printf("latency_ms p50=%.3f p95=%.3f p99=%.3f min=%.3f max=%.3f\n",
		percentile(lat, 50), percentile(lat, 95), percentile(lat, 99), lat[0], lat[len(lat)-1])
}

func percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	idx := int(float64(len(sorted))*float64(p)/100.0) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
