package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/luxdoc/doc2quiz"
	"github.com/luxdoc/doc2quiz/internal/fileutil"
	"github.com/luxdoc/doc2quiz/internal/hints"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	ProofPaths []string
	Records    int
	Renderer   string
	Err        error
	Duration   time.Duration
}

// convertBatch processes files concurrently using the converter pool.
// Results keep the order of files.
func convertBatch(ctx context.Context, pool *doc2quiz.ConverterPool, files []FileToConvert, params *conversionParams) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(files))

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conv, err := pool.Acquire(ctx)
			if err != nil {
				for idx := range jobs {
					results[idx] = ConversionResult{InputPath: files[idx].InputPath, Err: err}
				}
				return
			}
			defer pool.Release(conv)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{InputPath: files[idx].InputPath, Err: ctx.Err()}
					continue
				}
				results[idx] = convertFile(ctx, conv, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile converts one document, writes the quiz and, when requested,
// the review sheet next to it.
func convertFile(ctx context.Context, conv *doc2quiz.Converter, f FileToConvert, params *conversionParams) (result ConversionResult) {
	start := time.Now()
	result = ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}
	defer func() { result.Duration = time.Since(start) }()

	if params.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, params.timeout)
		defer cancel()
	}

	res, err := conv.ConvertFile(ctx, f.InputPath, f.OutputPath, params.format)
	if err != nil {
		result.Err = err
		return result
	}
	result.Records = len(res.Records)
	result.Renderer = res.Renderer

	if !params.proof {
		return result
	}

	title := strings.TrimSuffix(filepath.Base(f.InputPath), filepath.Ext(f.InputPath))
	sheet, err := conv.Proof(ctx, title, res.Records, params.proofPDF)
	if err != nil {
		result.Err = err
		return result
	}

	outputs := []struct {
		ext  string
		data []byte
	}{{".html", sheet.HTML}, {".pdf", sheet.PDF}}
	for _, o := range outputs {
		if o.data == nil {
			continue
		}
		path := proofOutputPath(f.OutputPath, o.ext)
		if err := fileutil.WriteFileAtomic(path, o.data, filePermissions); err != nil {
			result.Err = fmt.Errorf("%w: %v", ErrWriteOutput, err)
			return result
		}
		result.ProofPaths = append(result.ProofPaths, path)
	}
	return result
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
	Records   int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
			continue
		}
		summary.Succeeded++
		summary.Records += r.Records
	}
	return summary
}

// printResults outputs conversion results and returns the failure count
// and the first failure.
func printResults(results []ConversionResult, quiet, verbose bool, env *Environment) (int, error) {
	summary := countResults(results)
	var firstErr error

	for _, r := range results {
		if r.Err != nil {
			if firstErr == nil {
				firstErr = r.Err
			}
			if len(results) > 1 {
				fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			}
			continue
		}

		if r.Records == 0 {
			fmt.Fprintf(env.Stderr, "warning: %s: no questions found%s\n", r.InputPath, hints.ForNoRecords())
		}
		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%d questions, %s, %v)\n",
				r.InputPath, r.OutputPath, r.Records, r.Renderer, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s (%d questions)\n", r.OutputPath, r.Records)
		}
		for _, p := range r.ProofPaths {
			fmt.Fprintf(env.Stdout, "Created %s\n", p)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed, %d questions\n", summary.Succeeded, summary.Failed, summary.Records)
	}

	return summary.Failed, firstErr
}

// ensureDir creates dir with CLI permissions.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}
