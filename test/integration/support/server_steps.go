package support

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/cucumber/godog"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/config"
	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/server"
)

// startService stands up the HTTP layer around the scenario's pipeline.
func (testCtx *TestContext) startService(cfg config.ServerConfig) {
	if testCtx.httpServer != nil {
		testCtx.httpServer.Close()
	}
	srv := server.New(testCtx.Pipeline, cfg, "test")
	testCtx.httpServer = httptest.NewServer(srv.Handler())
}

func (testCtx *TestContext) theOCRServiceIsRunning() error {
	testCtx.startService(config.DefaultConfig().Server)
	return nil
}

func (testCtx *TestContext) theOCRServiceIsRunningWithARateLimit(rps int) error {
	cfg := config.DefaultConfig().Server
	cfg.RateLimitRPS = float64(rps)
	cfg.RateLimitBurst = 1
	testCtx.startService(cfg)
	return nil
}

// doRequest executes a request against the scenario server and records the
// response for later assertions.
func (testCtx *TestContext) doRequest(req *http.Request) error {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	testCtx.LastStatus = resp.StatusCode
	testCtx.LastBody = body
	testCtx.LastContentType = resp.Header.Get("Content-Type")
	testCtx.LastHeader = resp.Header
	return nil
}

func (testCtx *TestContext) serviceURL(path string) (string, error) {
	if testCtx.httpServer == nil {
		return "", errors.New("the OCR service is not running")
	}
	return testCtx.httpServer.URL + path, nil
}

func (testCtx *TestContext) iGET(path string) error {
	url, err := testCtx.serviceURL(path)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return testCtx.doRequest(req)
}

// uploadMultipart posts file bytes as the "document" form field, plus any
// extra form fields.
func (testCtx *TestContext) uploadMultipart(filename string, data []byte, query string, fields map[string]string) error {
	url, err := testCtx.serviceURL("/ocr" + query)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("document", filename)
	if err != nil {
		return fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("failed to build upload form: %w", err)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return fmt.Errorf("failed to build upload form: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to build upload form: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, &buf)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return testCtx.doRequest(req)
}

func (testCtx *TestContext) uploadInputFile(name, query string, fields map[string]string) error {
	data, err := os.ReadFile(testCtx.inputPath(name))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	return testCtx.uploadMultipart(name, data, query, fields)
}

func (testCtx *TestContext) iUploadToTheOCREndpoint(name string) error {
	return testCtx.uploadInputFile(name, "", nil)
}

func (testCtx *TestContext) iUploadToTheOCREndpointWithStorage(name string) error {
	return testCtx.uploadInputFile(name, "?store=true", nil)
}

func (testCtx *TestContext) iUploadToTheOCREndpointAsPlainText(name string) error {
	return testCtx.uploadInputFile(name, "?format=text", nil)
}

func (testCtx *TestContext) iUploadToTheOCREndpointWithFormat(name, format string) error {
	return testCtx.uploadInputFile(name, "?format="+format, nil)
}

func (testCtx *TestContext) iUploadToTheOCREndpointAsA(name, documentType string) error {
	return testCtx.uploadInputFile(name, "", map[string]string{"document_type": documentType})
}

func (testCtx *TestContext) iUploadAnEmptyFileToTheOCREndpoint() error {
	return testCtx.uploadMultipart("empty.png", nil, "", nil)
}

func (testCtx *TestContext) iUploadToTheOCREndpointAsBase64JSON(name string) error {
	data, err := os.ReadFile(testCtx.inputPath(name))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	payload, err := json.Marshal(server.OCRRequest{
		Image:    base64.StdEncoding.EncodeToString(data),
		Filename: name,
	})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	url, err := testCtx.serviceURL("/ocr")
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return testCtx.doRequest(req)
}

func (testCtx *TestContext) iPOSTAnEmptyJSONBodyToTheOCREndpoint() error {
	url, err := testCtx.serviceURL("/ocr")
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader("{}"))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return testCtx.doRequest(req)
}

func (testCtx *TestContext) theResponseShouldIncludeAStoredDocumentID() error {
	var resp server.OCRResponse
	if err := json.Unmarshal(testCtx.LastBody, &resp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.ID == "" {
		return errors.New("response carries no stored document ID")
	}
	testCtx.DocumentID = resp.ID
	return nil
}

func (testCtx *TestContext) iGETTheStoredDocument() error {
	if testCtx.DocumentID == "" {
		return errors.New("no stored document ID was remembered")
	}
	return testCtx.iGET("/documents/" + testCtx.DocumentID)
}

func (testCtx *TestContext) iDELETETheStoredDocument() error {
	if testCtx.DocumentID == "" {
		return errors.New("no stored document ID was remembered")
	}
	url, err := testCtx.serviceURL("/documents/" + testCtx.DocumentID)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return testCtx.doRequest(req)
}

func (testCtx *TestContext) iExportTheStoredDocumentAs(format string) error {
	if testCtx.DocumentID == "" {
		return errors.New("no stored document ID was remembered")
	}
	return testCtx.iGET("/documents/" + testCtx.DocumentID + "/export?format=" + format)
}

func (testCtx *TestContext) theResponseStatusShouldBe(status int) error {
	if testCtx.LastStatus != status {
		return fmt.Errorf("got status %d, expected %d: %s",
			testCtx.LastStatus, status, string(testCtx.LastBody))
	}
	return nil
}

func (testCtx *TestContext) theResponseBodyShouldContain(text string) error {
	if !strings.Contains(string(testCtx.LastBody), text) {
		return fmt.Errorf("response body does not contain %q: %s", text, string(testCtx.LastBody))
	}
	return nil
}

func (testCtx *TestContext) theResponseContentTypeShouldStartWith(prefix string) error {
	if !strings.HasPrefix(testCtx.LastContentType, prefix) {
		return fmt.Errorf("content type is %q, expected prefix %q", testCtx.LastContentType, prefix)
	}
	return nil
}

func (testCtx *TestContext) theResponseShouldCarryHeader(name string) error {
	if testCtx.LastHeader.Get(name) == "" {
		return fmt.Errorf("response carries no %s header", name)
	}
	return nil
}

func (testCtx *TestContext) theErrorShouldMention(text string) error {
	var resp server.ErrorResponse
	if err := json.Unmarshal(testCtx.LastBody, &resp); err != nil {
		return fmt.Errorf("failed to decode error response: %w", err)
	}
	if !strings.Contains(strings.ToLower(resp.Error), strings.ToLower(text)) {
		return fmt.Errorf("error %q does not mention %q", resp.Error, text)
	}
	return nil
}

// jsonField walks a dotted path through the last JSON response body.
func (testCtx *TestContext) jsonField(path string) (any, error) {
	var doc any
	if err := json.Unmarshal(testCtx.LastBody, &doc); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}
	current := doc
	for _, key := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q is not reachable in the response", path)
		}
		current, ok = obj[key]
		if !ok {
			return nil, fmt.Errorf("field %q missing from the response", path)
		}
	}
	return current, nil
}

func (testCtx *TestContext) theResponseShouldHaveJSONField(path string) error {
	_, err := testCtx.jsonField(path)
	return err
}

func (testCtx *TestContext) theJSONFieldShouldBe(path, expected string) error {
	val, err := testCtx.jsonField(path)
	if err != nil {
		return err
	}
	actual := fmt.Sprintf("%v", val)
	if actual != expected {
		return fmt.Errorf("field %q is %q, expected %q", path, actual, expected)
	}
	return nil
}

func (testCtx *TestContext) theServiceShouldListDocuments(count int) error {
	if err := testCtx.iGET("/documents"); err != nil {
		return err
	}
	if testCtx.LastStatus != http.StatusOK {
		return fmt.Errorf("document listing returned %d: %s", testCtx.LastStatus, string(testCtx.LastBody))
	}
	var resp server.DocumentsResponse
	if err := json.Unmarshal(testCtx.LastBody, &resp); err != nil {
		return fmt.Errorf("failed to decode document listing: %w", err)
	}
	if resp.Count != count {
		return fmt.Errorf("service lists %d documents, expected %d", resp.Count, count)
	}
	return nil
}

// RegisterServerSteps wires the HTTP API steps.
func (testCtx *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the OCR service is running$`, testCtx.theOCRServiceIsRunning)
	sc.Step(`^the OCR service is running with a rate limit of (\d+) request per second$`,
		testCtx.theOCRServiceIsRunningWithARateLimit)

	sc.Step(`^I GET "([^"]*)"$`, testCtx.iGET)
	sc.Step(`^I upload "([^"]*)" to the OCR endpoint$`, testCtx.iUploadToTheOCREndpoint)
	sc.Step(`^I upload "([^"]*)" to the OCR endpoint with storage$`,
		testCtx.iUploadToTheOCREndpointWithStorage)
	sc.Step(`^I upload "([^"]*)" to the OCR endpoint as plain text$`,
		testCtx.iUploadToTheOCREndpointAsPlainText)
	sc.Step(`^I upload "([^"]*)" to the OCR endpoint with format "([^"]*)"$`,
		testCtx.iUploadToTheOCREndpointWithFormat)
	sc.Step(`^I upload "([^"]*)" to the OCR endpoint as a "([^"]*)"$`,
		testCtx.iUploadToTheOCREndpointAsA)
	sc.Step(`^I upload an empty file to the OCR endpoint$`, testCtx.iUploadAnEmptyFileToTheOCREndpoint)
	sc.Step(`^I upload "([^"]*)" to the OCR endpoint as base64 JSON$`,
		testCtx.iUploadToTheOCREndpointAsBase64JSON)
	sc.Step(`^I POST an empty JSON body to the OCR endpoint$`, testCtx.iPOSTAnEmptyJSONBodyToTheOCREndpoint)

	sc.Step(`^the response should include a stored document ID$`,
		testCtx.theResponseShouldIncludeAStoredDocumentID)
	sc.Step(`^I GET the stored document$`, testCtx.iGETTheStoredDocument)
	sc.Step(`^I DELETE the stored document$`, testCtx.iDELETETheStoredDocument)
	sc.Step(`^I export the stored document as "([^"]*)"$`, testCtx.iExportTheStoredDocumentAs)

	sc.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	sc.Step(`^the response body should contain "([^"]*)"$`, testCtx.theResponseBodyShouldContain)
	sc.Step(`^the response content type should start with "([^"]*)"$`,
		testCtx.theResponseContentTypeShouldStartWith)
	sc.Step(`^the response should carry header "([^"]*)"$`, testCtx.theResponseShouldCarryHeader)
	sc.Step(`^the error should mention "([^"]*)"$`, testCtx.theErrorShouldMention)
	sc.Step(`^the response should have JSON field "([^"]*)"$`, testCtx.theResponseShouldHaveJSONField)
	sc.Step(`^the JSON field "([^"]*)" should be "([^"]*)"$`, testCtx.theJSONFieldShouldBe)
	sc.Step(`^the service should list (\d+) documents?$`, testCtx.theServiceShouldListDocuments)
}
