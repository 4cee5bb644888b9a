// Command defistat signs a batch of messages with DEFIv2 and reports the
// behaviour of the rejection sampling loop: number of candidates per
// signature, size of the signature coefficients, and timings. Results are
// written as a JSON summary and an HTML page of histograms.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/bits"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	sha3 "golang.org/x/crypto/sha3"

	"github.com/pornin/go-defi/defi"
)

type summaryStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

type report struct {
	Keys       int                     `json:"keys"`
	Signatures int                     `json:"signatures"`
	MsgLen     int                     `json:"msg_len"`
	Failures   int                     `json:"failures"`
	Stats      map[string]summaryStats `json:"stats"`
}

func computeStats(x []float64) summaryStats {
	n := len(x)
	if n == 0 {
		return summaryStats{}
	}
	cp := append([]float64(nil), x...)
	sort.Float64s(cp)
	var m float64
	for _, v := range cp {
		m += v
	}
	m /= float64(n)
	var m2 float64
	for _, v := range cp {
		m2 += (v - m) * (v - m)
	}
	var std float64
	if n > 1 {
		std = math.Sqrt(m2 / float64(n-1))
	}
	return summaryStats{
		Count:  n,
		Mean:   m,
		Std:    std,
		Min:    cp[0],
		Q1:     quantileSorted(cp, 0.25),
		Median: quantileSorted(cp, 0.5),
		Q3:     quantileSorted(cp, 0.75),
		Max:    cp[n-1],
	}
}

func quantileSorted(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	l := int(math.Floor(pos))
	r := int(math.Ceil(pos))
	if l == r {
		return sorted[l]
	}
	w := pos - float64(l)
	return sorted[l]*(1-w) + sorted[r]*w
}

// Histogram with one bin per integer value between the extremes; the
// series handled here (candidate counts, bit lengths) are small integers.
func integerHistogram(values []float64) (labels []string, counts []opts.BarData) {
	if len(values) == 0 {
		return nil, nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	nbins := int(hi-lo) + 1
	if nbins > 500 {
		nbins = 500
	}
	width := (hi - lo + 1) / float64(nbins)
	cnt := make([]int, nbins)
	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= nbins {
			idx = nbins - 1
		}
		cnt[idx]++
	}
	labels = make([]string, nbins)
	counts = make([]opts.BarData, nbins)
	for i := 0; i < nbins; i++ {
		labels[i] = fmt.Sprintf("%.0f", lo+float64(i)*width)
		counts[i] = opts.BarData{Value: cnt[i]}
	}
	return labels, counts
}

func newHistogramChart(title string, values []float64) *charts.Bar {
	st := computeStats(values)
	labels, counts := integerHistogram(values)
	bar := charts.NewBar()
	subtitle := fmt.Sprintf("n=%d, mean=%.3f, std=%.3f, median=%.1f, max=%.0f",
		st.Count, st.Mean, st.Std, st.Median, st.Max)
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "600px"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}, opts.DataZoom{Type: "slider"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels).
		AddSeries("count", counts).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}))
	return bar
}

func saveJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Render the page into a new file. The file is closed before returning,
// and a failed close is reported like a failed write.
func saveHTML(path string, page *components.Page) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := page.Render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Bit length of the largest signature coefficient, in absolute value.
func maxCoeffBits(sig []byte) (int, error) {
	c, err := defi.SignatureCoefficients(sig)
	if err != nil {
		return 0, err
	}
	var m uint64
	for _, v := range c {
		if v < 0 {
			v = -v
		}
		if uint64(v) > m {
			m = uint64(v)
		}
	}
	return bits.Len64(m), nil
}

func main() {
	nkeys := flag.Int("keys", 4, "number of key pairs")
	runs := flag.Int("runs", 50, "number of signatures per key pair")
	msgLen := flag.Int("msglen", 32, "message length (bytes)")
	seedHex := flag.String("seed", "", "optional hex seed for reproducible keys and messages")
	outDir := flag.String("out", "defistat_reports", "output directory for reports")
	flag.Parse()

	// All randomness comes either from the OS or from SHAKE256(seed).
	var src io.Reader = rand.Reader
	if *seedHex != "" {
		seed, err := hex.DecodeString(*seedHex)
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
		sh := sha3.NewShake256()
		sh.Write(seed)
		src = sh
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("mkdir: %v", err)
	}

	var attempts, yBits, signUS, verifyUS []float64
	rep := report{Keys: *nkeys, MsgLen: *msgLen}
	msg := make([]byte, *msgLen)
	for k := 0; k < *nkeys; k++ {
		skey, pkey, err := defi.KeyGen(src)
		if err != nil {
			log.Fatalf("keygen: %v", err)
		}
		log.Printf("[defistat] key pair %d/%d", k+1, *nkeys)
		for i := 0; i < *runs; i++ {
			if _, err := io.ReadFull(src, msg); err != nil {
				log.Fatalf("message: %v", err)
			}
			t0 := time.Now()
			sm, n, err := defi.SignCounted(skey, msg)
			t1 := time.Now()
			if err != nil {
				log.Printf("warn: sign: %v", err)
				rep.Failures++
				continue
			}
			_, ok, err := defi.Open(pkey, sm)
			t2 := time.Now()
			if err != nil || !ok {
				log.Printf("warn: verification failed (key %d, run %d): %v", k, i, err)
				rep.Failures++
				continue
			}
			b, err := maxCoeffBits(sm)
			if err != nil {
				log.Fatalf("decode: %v", err)
			}
			rep.Signatures++
			attempts = append(attempts, float64(n))
			yBits = append(yBits, float64(b))
			signUS = append(signUS, float64(t1.Sub(t0).Microseconds()))
			verifyUS = append(verifyUS, float64(t2.Sub(t1).Microseconds()))
		}
	}

	rep.Stats = map[string]summaryStats{
		"attempts":  computeStats(attempts),
		"y_bits":    computeStats(yBits),
		"sign_us":   computeStats(signUS),
		"verify_us": computeStats(verifyUS),
	}
	ts := time.Now().Format("20060102_150405")
	jsonPath := filepath.Join(*outDir, fmt.Sprintf("defistat_%s.json", ts))
	if err := saveJSON(jsonPath, rep); err != nil {
		log.Printf("warn: save stats: %v", err)
	}

	page := components.NewPage()
	if len(attempts) > 0 {
		page.AddCharts(
			newHistogramChart("candidates per signature", attempts),
			newHistogramChart("bit length of max |y|", yBits),
		)
	}
	htmlPath := filepath.Join(*outDir, fmt.Sprintf("defistat_%s.html", ts))
	if err := saveHTML(htmlPath, page); err != nil {
		log.Fatalf("html: %v", err)
	}
	fmt.Printf("signatures: %d, failures: %d\n", rep.Signatures, rep.Failures)
	fmt.Println("Histogram page:", htmlPath)
	fmt.Println("Stats JSON:", jsonPath)
}
