package support

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cucumber/godog"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/pipeline"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/testutil"
)

// theRecognizerReads scripts the text every following recognition attempt
// returns, regardless of the image content.
func (testCtx *TestContext) theRecognizerReads(doc *godog.DocString) error {
	testCtx.Engine.SetText(doc.Content)
	return nil
}

// theRecognizerReadsNothing simulates a blank or completely garbled page.
func (testCtx *TestContext) theRecognizerReadsNothing() error {
	testCtx.Engine.SetText("")
	return nil
}

// aPrescriptionImage renders a synthetic prescription page into the input
// directory.
func (testCtx *TestContext) aPrescriptionImage(name string) error {
	img, err := testutil.GeneratePrescriptionImage()
	if err != nil {
		return fmt.Errorf("failed to render prescription: %w", err)
	}
	return testutil.WriteImageFile(testCtx.inputPath(name), img)
}

// aLabReportImage renders a synthetic lab report page.
func (testCtx *TestContext) aLabReportImage(name string) error {
	img, err := testutil.GenerateLabReportImage()
	if err != nil {
		return fmt.Errorf("failed to render lab report: %w", err)
	}
	return testutil.WriteImageFile(testCtx.inputPath(name), img)
}

// aNoisyPrescriptionImage renders a prescription with scanner speckle on it.
func (testCtx *TestContext) aNoisyPrescriptionImage(name string) error {
	img, err := testutil.GeneratePrescriptionImage()
	if err != nil {
		return fmt.Errorf("failed to render prescription: %w", err)
	}
	return testutil.WriteImageFile(testCtx.inputPath(name), testutil.AddScanNoise(img, 0.02, 7))
}

// anUnreadableFile writes bytes no image decoder accepts.
func (testCtx *TestContext) anUnreadableFile(name string) error {
	return os.WriteFile(testCtx.inputPath(name), []byte("these bytes are not an image"), 0o600)
}

func (testCtx *TestContext) iProcess(name string) error {
	testCtx.LastResult, testCtx.LastErr = testCtx.Pipeline.ProcessFile(
		testCtx.inputPath(name), pipeline.Options{})
	return nil
}

func (testCtx *TestContext) iProcessAs(name, documentType string) error {
	testCtx.LastResult, testCtx.LastErr = testCtx.Pipeline.ProcessFile(
		testCtx.inputPath(name), pipeline.Options{DocumentType: documentType})
	return nil
}

// iProcessTheText feeds text straight into matching, skipping recognition.
func (testCtx *TestContext) iProcessTheText(doc *godog.DocString) error {
	testCtx.LastResult, testCtx.LastErr = testCtx.Pipeline.ProcessText(doc.Content, pipeline.Options{})
	return nil
}

func (testCtx *TestContext) processingShouldSucceed() error {
	if testCtx.LastErr != nil {
		return fmt.Errorf("processing failed: %w", testCtx.LastErr)
	}
	if testCtx.LastResult == nil {
		return errors.New("processing produced no result")
	}
	return nil
}

func (testCtx *TestContext) processingShouldFail() error {
	if testCtx.LastErr == nil {
		return errors.New("processing succeeded when it should have failed")
	}
	return nil
}

func (testCtx *TestContext) theFailureShouldMention(text string) error {
	if testCtx.LastErr == nil {
		return fmt.Errorf("no failure recorded, expected one mentioning %q", text)
	}
	if !strings.Contains(strings.ToLower(testCtx.LastErr.Error()), strings.ToLower(text)) {
		return fmt.Errorf("failure does not mention %q: %v", text, testCtx.LastErr)
	}
	return nil
}

// requireResult returns the last successful result or a step error.
func (testCtx *TestContext) requireResult() (*pipeline.StructuredResult, error) {
	if testCtx.LastErr != nil {
		return nil, fmt.Errorf("processing failed: %w", testCtx.LastErr)
	}
	if testCtx.LastResult == nil {
		return nil, errors.New("no processing result available")
	}
	return testCtx.LastResult, nil
}

func (testCtx *TestContext) theDocumentTypeShouldBe(documentType string) error {
	res, err := testCtx.requireResult()
	if err != nil {
		return err
	}
	if res.DocumentType != documentType {
		return fmt.Errorf("document type is %q, expected %q", res.DocumentType, documentType)
	}
	return nil
}

func (testCtx *TestContext) theRawTextShouldContain(text string) error {
	res, err := testCtx.requireResult()
	if err != nil {
		return err
	}
	if !strings.Contains(res.RawText, text) {
		return fmt.Errorf("raw text does not contain %q:\n%s", text, res.RawText)
	}
	return nil
}

func (testCtx *TestContext) theResultShouldRecordEngine(engine string) error {
	res, err := testCtx.requireResult()
	if err != nil {
		return err
	}
	if res.Metadata.OCR.Engine != engine {
		return fmt.Errorf("engine is %q, expected %q", res.Metadata.OCR.Engine, engine)
	}
	return nil
}

func (testCtx *TestContext) thePreparationStagesShouldInclude(stage string) error {
	res, err := testCtx.requireResult()
	if err != nil {
		return err
	}
	for _, s := range res.Metadata.PreprocessStages {
		if s == stage {
			return nil
		}
	}
	return fmt.Errorf("stage %q not among %v", stage, res.Metadata.PreprocessStages)
}

// RegisterDocumentSteps wires the document generation and processing steps.
func (testCtx *TestContext) RegisterDocumentSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the recognizer reads:$`, testCtx.theRecognizerReads)
	sc.Step(`^the recognizer reads nothing$`, testCtx.theRecognizerReadsNothing)
	sc.Step(`^a prescription image "([^"]*)"$`, testCtx.aPrescriptionImage)
	sc.Step(`^a lab report image "([^"]*)"$`, testCtx.aLabReportImage)
	sc.Step(`^a noisy prescription image "([^"]*)"$`, testCtx.aNoisyPrescriptionImage)
	sc.Step(`^an unreadable file "([^"]*)"$`, testCtx.anUnreadableFile)
	sc.Step(`^I process "([^"]*)"$`, testCtx.iProcess)
	sc.Step(`^I process "([^"]*)" as a "([^"]*)"$`, testCtx.iProcessAs)
	sc.Step(`^I process the text:$`, testCtx.iProcessTheText)
	sc.Step(`^processing should succeed$`, testCtx.processingShouldSucceed)
	sc.Step(`^processing should fail$`, testCtx.processingShouldFail)
	sc.Step(`^the failure should mention "([^"]*)"$`, testCtx.theFailureShouldMention)
	sc.Step(`^the document type should be "([^"]*)"$`, testCtx.theDocumentTypeShouldBe)
	sc.Step(`^the raw text should contain "([^"]*)"$`, testCtx.theRawTextShouldContain)
	sc.Step(`^the result should record engine "([^"]*)"$`, testCtx.theResultShouldRecordEngine)
	sc.Step(`^the preparation stages should include "([^"]*)"$`, testCtx.thePreparationStagesShouldInclude)
}
