// Package main provides a performance benchmarking tool for the hmpi CLI.
// It generates synthetic monitoring campaigns of increasing size, times 'hmpi batch' on each of
// them with and without run recording, treating the first successful run as cold and averaging
// the rest as warm, and writes a CSV for performance analysis and documentation.
//
// Prerequisites:
// - hmpi binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for generated campaigns and the benchmark SQLite database
package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-store average, cold run and average of warm runs).
type BenchmarkResult struct {
	Samples     int
	Workers     int
	NoStoreTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	Workers     []int
	NoStoreRuns int
	StoreRuns   int
	Sizes       []int
	Metals      []string
	Seed        uint64
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     os.Args[1],
		Timeout:     5 * time.Minute,
		Workers:     []int{1, 8},
		NoStoreRuns: 3,
		StoreRuns:   4,
		Sizes:       []int{100, 1000, 10000},
		Metals:      []string{"Pb", "Cd", "Cr", "As", "Hg", "Co", "Cu", "Fe", "Mn", "Ni", "Zn"},
		Seed:        42,
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results, err := runBenchmarks(config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the hmpi binary and the work directory exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("hmpi"); err != nil {
		return fmt.Errorf("hmpi binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

// writeCampaign generates a reproducible CSV campaign with n samples.
// Concentrations are log-uniform between 1% and 300% of a typical limit so every category appears.
func writeCampaign(config BenchmarkConfig, n int) (string, error) {
	limits := map[string]float64{
		"Pb": 0.01, "Cd": 0.003, "Cr": 0.05, "As": 0.01, "Hg": 0.001, "Co": 0.05,
		"Cu": 0.05, "Fe": 0.3, "Mn": 0.1, "Ni": 0.02, "Zn": 5,
	}
	rng := rand.New(rand.NewPCG(config.Seed, uint64(n)))

	path := filepath.Join(config.WorkDir, fmt.Sprintf("campaign_%d.csv", n))
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write(append([]string{"sample_id"}, config.Metals...)); err != nil {
		return "", err
	}
	for i := range n {
		row := []string{fmt.Sprintf("S%05d", i+1)}
		for _, metal := range config.Metals {
			factor := 0.01 * math.Pow(300, rng.Float64())
			row = append(row, strconv.FormatFloat(limits[metal]*factor, 'g', 6, 64))
		}
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}
	writer.Flush()
	return path, writer.Error()
}

// runBenchmarks executes all benchmark tests across configured campaign sizes
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d sizes, %v timeout, workers %v, no-store: %d runs, store: %d runs\n",
		len(config.Sizes), config.Timeout, config.Workers, config.NoStoreRuns, config.StoreRuns)

	for _, size := range config.Sizes {
		path, err := writeCampaign(config, size)
		if err != nil {
			return nil, fmt.Errorf("failed to generate campaign of %d samples: %w", size, err)
		}
		for _, workers := range config.Workers {
			results = append(results, runBenchmarkSuite(config, path, size, workers))
		}
	}

	return results, nil
}

// runBenchmarkSuite runs both no-store and store benchmarks for a campaign
func runBenchmarkSuite(config BenchmarkConfig, path string, size, workers int) BenchmarkResult {
	fmt.Printf("Running batch on %d samples with %d workers\n", size, workers)
	dbPath := filepath.Join(config.WorkDir, "benchmark_runs.db")
	_ = os.Remove(dbPath)

	// Helper to run a benchmark phase
	runPhase := func(backend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, path, workers, backend, dbPath, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	// Phase 1: nothing recorded
	_, noStoreAvg := runPhase("none", config.NoStoreRuns, "No-store")

	// Phase 2: every sample recorded in SQLite
	coldTime, warmAvg := runPhase("sqlite", config.StoreRuns, "Store")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-store average: %s, Cold time: %s, Warm average: %s\n", noStoreAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Samples:     size,
		Workers:     workers,
		NoStoreTime: noStoreAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes hmpi batch multiple times and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, path string, workers int, backend, dbPath string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{
		"batch", path,
		"--limit", "5",
		"--workers", strconv.Itoa(workers),
		"--run-backend", backend,
		"--run-db-connect", dbPath,
	}

	var times []float64
	for range numRuns {
		start := time.Now()

		cmd := exec.Command("hmpi", args...)
		cmd.Dir = config.WorkDir

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Batch completed in") &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/hmpi_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"samples", "workers", "no_store_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		record := []string{
			strconv.Itoa(result.Samples), strconv.Itoa(result.Workers),
			result.NoStoreTime, result.ColdTime, result.WarmTime,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %6d samples, %2d workers: No-store: %s, Cold: %s, Warm: %s\n",
			result.Samples, result.Workers, result.NoStoreTime, result.ColdTime, result.WarmTime)
	}
}
