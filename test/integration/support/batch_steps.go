package support

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cucumber/godog"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/batch"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/testutil"
)

func (testCtx *TestContext) prescriptionScansInTheInputDirectory(count int) error {
	for i := 1; i <= count; i++ {
		img, err := testutil.GeneratePrescriptionImage()
		if err != nil {
			return fmt.Errorf("failed to generate scan: %w", err)
		}
		name := fmt.Sprintf("rx-%d.png", i)
		if err := testutil.WriteImageFile(testCtx.inputPath(name), img); err != nil {
			return err
		}
	}
	return nil
}

func (testCtx *TestContext) runBatch(workers int, continueOnError bool) error {
	proc, err := batch.New(testCtx.Pipeline, batch.Config{
		Workers:         workers,
		OutputDir:       testCtx.OutputDir,
		Format:          batch.FormatJSON,
		ContinueOnError: continueOnError,
	})
	if err != nil {
		return fmt.Errorf("failed to build batch processor: %w", err)
	}
	testCtx.Summary, testCtx.BatchErr = proc.Run(context.Background(), []string{testCtx.InputDir})
	return nil
}

func (testCtx *TestContext) iRunABatchWithWorkers(workers int) error {
	return testCtx.runBatch(workers, false)
}

func (testCtx *TestContext) iRunABatchWithWorkersContinuingOnError(workers int) error {
	return testCtx.runBatch(workers, true)
}

func (testCtx *TestContext) theBatchShouldSucceed() error {
	if testCtx.BatchErr != nil {
		return fmt.Errorf("batch failed: %v", testCtx.BatchErr)
	}
	return nil
}

func (testCtx *TestContext) theBatchShouldFailMentioning(text string) error {
	if testCtx.BatchErr == nil {
		return errors.New("batch succeeded when a failure was expected")
	}
	if !strings.Contains(strings.ToLower(testCtx.BatchErr.Error()), strings.ToLower(text)) {
		return fmt.Errorf("batch failure does not mention %q: %v", text, testCtx.BatchErr)
	}
	return nil
}

func (testCtx *TestContext) theBatchSummaryShouldReport(processed, failed int) error {
	if testCtx.Summary == nil {
		return errors.New("no batch summary was produced")
	}
	if testCtx.Summary.Processed != processed || testCtx.Summary.Failed != failed {
		return fmt.Errorf("summary reports %d processed and %d failed, expected %d and %d",
			testCtx.Summary.Processed, testCtx.Summary.Failed, processed, failed)
	}
	return nil
}

// resultPath mirrors the batch naming rule: scan.png yields scan.json.
func (testCtx *TestContext) resultPath(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return filepath.Join(testCtx.OutputDir, stem+".json")
}

func (testCtx *TestContext) aJSONResultShouldExistFor(name string) error {
	if _, err := os.Stat(testCtx.resultPath(name)); err != nil {
		return fmt.Errorf("no result file for %s: %w", name, err)
	}
	return nil
}

func (testCtx *TestContext) noResultShouldExistFor(name string) error {
	if _, err := os.Stat(testCtx.resultPath(name)); err == nil {
		return fmt.Errorf("unexpected result file for %s", name)
	}
	return nil
}

func (testCtx *TestContext) theResultForShouldMention(name, text string) error {
	data, err := os.ReadFile(testCtx.resultPath(name))
	if err != nil {
		return fmt.Errorf("failed to read result for %s: %w", name, err)
	}
	if !strings.Contains(string(data), text) {
		return fmt.Errorf("result for %s does not mention %q", name, text)
	}
	return nil
}

// RegisterBatchSteps wires the batch processing steps.
func (testCtx *TestContext) RegisterBatchSteps(sc *godog.ScenarioContext) {
	sc.Step(`^(\d+) prescription scans in the input directory$`,
		testCtx.prescriptionScansInTheInputDirectory)
	sc.Step(`^I run a batch over the input directory with (\d+) workers?$`,
		testCtx.iRunABatchWithWorkers)
	sc.Step(`^I run a batch over the input directory with (\d+) workers? continuing on error$`,
		testCtx.iRunABatchWithWorkersContinuingOnError)
	sc.Step(`^the batch should succeed$`, testCtx.theBatchShouldSucceed)
	sc.Step(`^the batch should fail mentioning "([^"]*)"$`, testCtx.theBatchShouldFailMentioning)
	sc.Step(`^the batch summary should report (\d+) processed and (\d+) failed$`,
		testCtx.theBatchSummaryShouldReport)
	sc.Step(`^a JSON result should exist for "([^"]*)"$`, testCtx.aJSONResultShouldExistFor)
	sc.Step(`^no result should exist for "([^"]*)"$`, testCtx.noResultShouldExistFor)
	sc.Step(`^the result for "([^"]*)" should mention "([^"]*)"$`, testCtx.theResultForShouldMention)
}
