// Package main provides a performance benchmarking tool for the fosdash CLI.
// It generates synthetic complaint datasets of increasing size, loads each into a fresh
// SQLite store and times the report commands against it, treating the first successful
// run as cold and averaging the rest as warm, generating CSV output for performance
// analysis and documentation.
//
// Prerequisites:
// - fosdash binary installed and available in PATH
//
// Usage: go run ./benchmark [work-dir]
//
//	work-dir: Directory for generated datasets and stores (defaults to a temp dir)
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (ingest time, cold run and average of warm runs).
type BenchmarkResult struct {
	Firms      int
	Command    string
	IngestTime string
	ColdTime   string
	WarmTime   string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir   string
	Timeout   time.Duration
	Runs      int
	FirmSizes []int
	Years     []int
	Commands  map[string][]string
}

func main() {
	// Parse command line arguments
	if len(os.Args) > 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	workDir := ""
	if len(os.Args) == 2 {
		workDir = os.Args[1]
	} else {
		dir, err := os.MkdirTemp("", "fosdash-benchmark-*")
		if err != nil {
			fmt.Printf("Failed to create work dir: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = os.RemoveAll(dir) }()
		workDir = dir
	}

	config := BenchmarkConfig{
		WorkDir:   workDir,
		Timeout:   2 * time.Minute,
		Runs:      4,
		FirmSizes: []int{100, 1000, 5000},
		Years:     []int{2018, 2019, 2020, 2021, 2022, 2023, 2024},
		Commands: map[string][]string{
			"trends":    {"trends", "--limit", "1000", "--output", "json"},
			"rank":      {"rank", "--limit", "50", "--output", "json"},
			"benchmark": {"benchmark", "--output", "json"},
			"scale":     {"scale", "--output", "json"},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// checkPrerequisites verifies that the fosdash binary and the work dir exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("fosdash"); err != nil {
		return fmt.Errorf("fosdash binary not found in PATH")
	}
	if info, err := os.Stat(config.WorkDir); err != nil || !info.IsDir() {
		return fmt.Errorf("work dir %s is not a directory", config.WorkDir)
	}
	return nil
}

// runBenchmarks loads each dataset size and times every report command against it
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d sizes, %v timeout, %d runs per command\n",
		len(config.FirmSizes), config.Timeout, config.Runs)

	for _, firms := range config.FirmSizes {
		fmt.Printf("Benchmarking %d firms\n", firms)

		csvPath := filepath.Join(config.WorkDir, fmt.Sprintf("complaints_%d.csv", firms))
		if err := generateComplaints(csvPath, firms, config.Years); err != nil {
			fmt.Printf("  Failed to generate dataset: %v\n", err)
			continue
		}

		env := []string{
			"FOSDASH_DB_BACKEND=sqlite",
			"FOSDASH_DB_CONNECT=" + filepath.Join(config.WorkDir, fmt.Sprintf("fosdash_%d.db", firms)),
			"FOSDASH_COLOR=no",
		}

		ingestTime := "FAILED"
		if secs, ok := timeCommand(config, env, "ingest", "complaints", csvPath); ok {
			ingestTime = fmt.Sprintf("%.3fs", secs)
		}
		fmt.Printf("  Ingest: %s\n", ingestTime)

		for _, name := range commandOrder(config) {
			cold, warm := runBenchmark(config, env, config.Commands[name])
			fmt.Printf("  %-10s cold: %s, warm average: %s\n", name, cold, warm)
			results = append(results, BenchmarkResult{
				Firms:      firms,
				Command:    name,
				IngestTime: ingestTime,
				ColdTime:   cold,
				WarmTime:   warm,
			})
		}
	}

	return results
}

// commandOrder returns the benchmarked commands in a stable order
func commandOrder(config BenchmarkConfig) []string {
	order := []string{"trends", "rank", "benchmark", "scale"}
	out := make([]string, 0, len(order))
	for _, name := range order {
		if _, ok := config.Commands[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// runBenchmark executes a fosdash command multiple times and returns the cold time and warm average
func runBenchmark(config BenchmarkConfig, env, args []string) (coldTime, warmAvg string) {
	var times []float64
	for run := 1; run <= config.Runs; run++ {
		if secs, ok := timeCommand(config, env, args...); ok {
			times = append(times, secs)
		}
	}

	coldTime, warmAvg = "TIMEOUT", "TIMEOUT"
	if len(times) > 0 {
		coldTime = fmt.Sprintf("%.3fs", times[0])
	}
	if len(times) > 1 {
		var sum float64
		for _, t := range times[1:] {
			sum += t
		}
		warmAvg = fmt.Sprintf("%.3fs", sum/float64(len(times)-1))
	}
	return coldTime, warmAvg
}

// timeCommand runs fosdash once and reports the wall time of a successful run
func timeCommand(config BenchmarkConfig, env []string, args ...string) (float64, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "fosdash", args...)
	cmd.Dir = config.WorkDir
	cmd.Env = append(os.Environ(), env...)

	start := time.Now()
	if output, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() == nil {
			fmt.Printf("  fosdash %v failed: %v\n%s", args, err, output)
		}
		return 0, false
	}
	return time.Since(start).Seconds(), true
}

// generateComplaints writes a half-yearly complaint dataset for the given number of firms
func generateComplaints(path string, firms int, years []int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	rng := rand.New(rand.NewPCG(uint64(firms), 42))
	writer := csv.NewWriter(file)

	if err := writer.Write([]string{"firm_name", "year", "period", "complaints", "upheld", "closed_within_3_days", "closed_within_8_weeks"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range firms {
		firm := fmt.Sprintf("Firm %05d Ltd", i+1)
		base := 20 + rng.Float64()*40
		drift := rng.Float64()*6 - 3
		for y, year := range years {
			for _, period := range []string{"H1", "H2"} {
				complaints := 50 + rng.IntN(2000)
				rate := min(max(base+drift*float64(y)+rng.Float64()*4-2, 0), 100)
				upheld := int(float64(complaints) * rate / 100)
				record := []string{
					firm,
					strconv.Itoa(year),
					period,
					strconv.Itoa(complaints),
					strconv.Itoa(upheld),
					strconv.FormatFloat(30+rng.Float64()*50, 'f', 1, 64),
					strconv.FormatFloat(70+rng.Float64()*30, 'f', 1, 64),
				}
				if err := writer.Write(record); err != nil {
					return fmt.Errorf("failed to write CSV record: %w", err)
				}
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("fosdash_benchmark_%s.csv", timestamp))

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

	// Write header
	if err := writer.Write([]string{"firms", "cmd", "ingest_time", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{strconv.Itoa(result.Firms), result.Command, result.IngestTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, name := range commandOrder(config) {
		fmt.Printf("%s:\n", name)
		for _, result := range results {
			if result.Command == name {
				fmt.Printf("  %6d firms: Ingest: %s, Cold: %s, Warm: %s\n", result.Firms, result.IngestTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
