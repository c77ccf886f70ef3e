package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/township-classifier/app/models"
	"github.com/township-classifier/app/services"
	"github.com/township-classifier/internal/classifier"
	"github.com/township-classifier/internal/export"
	"github.com/township-classifier/internal/parser"
	"github.com/township-classifier/internal/pipeline"
	"github.com/township-classifier/internal/vocab"
	"go.uber.org/zap"
)

// One-shot batch runner: reads a coordinate file, converts every pair to
// WGS84, classifies the townships, and writes the result next to the input.
func main() {
	inputPath := flag.String("in", "", "input file (.txt, .csv, or .xlsx)")
	outputPath := flag.String("out", "", "output file, format chosen by extension (.csv or .xlsx)")
	skipClassify := flag.Bool("convert-only", false, "convert coordinates without township classification")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: worker -in coordinates.txt [-out result.csv] [-convert-only]")
		os.Exit(2)
	}
	if *outputPath == "" {
		*outputPath = strings.TrimSuffix(*inputPath, filepath.Ext(*inputPath)) + "_townships.csv"
	}

	if err := run(*inputPath, *outputPath, *skipClassify, logger); err != nil {
		logger.Fatal("Batch run failed", zap.Error(err))
	}

	logger.Info("Batch run completed", zap.String("output", *outputPath))
}

func run(inputPath, outputPath string, skipClassify bool, logger *zap.Logger) error {
	text, err := readInput(inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	coordinateParser := parser.NewCoordinateParser(logger)
	matcher := vocab.NewMatcher(logger)

	var pipelineService *services.PipelineService
	if skipClassify {
		pipelineService = services.NewPipelineService(coordinateParser, nil, logger)
		records, err := pipelineService.ConvertText(text)
		if err != nil {
			return err
		}
		return writeOutput(outputPath, records)
	}

	geminiClient, err := classifier.NewGeminiClient(
		classifier.DefaultGeminiConfig(os.Getenv("GEMINI_API_KEY")), logger)
	if err != nil {
		return fmt.Errorf("gemini client: %w", err)
	}

	cacheService := services.NewMemoryCacheService(logger)
	cachedClassifier := services.NewCachedClassifier(geminiClient, cacheService, logger)
	orchestrator := pipeline.NewOrchestrator(cachedClassifier, matcher, 0, 0, logger)
	pipelineService = services.NewPipelineService(coordinateParser, orchestrator, logger)

	// Ctrl-C stops classification; converted rows are still written out.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	records, err := pipelineService.RunBatch(ctx, text, func(processed, total int) {
		logger.Info("Progress", zap.Int("processed", processed), zap.Int("total", total))
	})
	if err != nil {
		if len(records) == 0 {
			return err
		}
		logger.Warn("Classification stopped early, writing converted rows", zap.Error(err))
	}

	return writeOutput(outputPath, records)
}

func readInput(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		return export.ReadExcelText(f)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func writeOutput(path string, records []models.CoordinateRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return export.WriteExcel(f, records)
	}
	return export.WriteCSV(f, records)
}
