// Package pdf reads medical documents that arrive as PDF files: scanned
// pages stored as embedded images, digital exports carrying a real text
// layer, and password-protected charts.
package pdf

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ExtractImages pulls the embedded images out of a PDF, grouped by page
// number. An empty pageRange selects every page.
func ExtractImages(filename, pageRange string) (map[int][]image.Image, error) {
	pages, err := parsePageRange(pageRange)
	if err != nil {
		return nil, fmt.Errorf("invalid page range %q: %w", pageRange, err)
	}

	tempDir, err := os.MkdirTemp("", "medocr-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	var selected []string
	for _, n := range pages {
		selected = append(selected, strconv.Itoa(n))
	}
	if err := api.ExtractImagesFile(filename, tempDir, selected, nil); err != nil {
		return nil, fmt.Errorf("extract images from %s: %w", filename, err)
	}

	return imagesByPage(tempDir)
}

// imagesByPage decodes every extracted image in dir and groups the results
// by the page number encoded in the file name.
func imagesByPage(dir string) (map[int][]image.Image, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	byPage := make(map[int][]image.Image)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		page, ok := pageFromName(entry.Name())
		if !ok {
			continue
		}
		img, err := decodeFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			// Embedded images in formats the decoder does not know are
			// dropped rather than failing the whole document.
			continue
		}
		byPage[page] = append(byPage[page], img)
	}
	return byPage, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path comes from our own temp directory
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	return img, err
}

// pageFromName recovers the page number from an extracted image name.
// The extract step writes files as page_<page>_image_<n>.<ext>.
func pageFromName(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, "page_")
	if !ok {
		return 0, false
	}
	num, _, found := strings.Cut(rest, "_")
	if !found {
		num = strings.TrimSuffix(rest, filepath.Ext(rest))
	}
	page, err := strconv.Atoi(num)
	if err != nil || page < 1 {
		return 0, false
	}
	return page, true
}

// parsePageRange parses selections like "3", "1-5" or "1,3,7-9". An empty
// string selects all pages.
func parsePageRange(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var pages []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		from, to, isRange := strings.Cut(part, "-")
		if !isRange {
			page, err := strconv.Atoi(part)
			if err != nil || page < 1 {
				return nil, fmt.Errorf("bad page number %q", part)
			}
			pages = append(pages, page)
			continue
		}

		start, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil || start < 1 {
			return nil, fmt.Errorf("bad range start %q", from)
		}
		end, err := strconv.Atoi(strings.TrimSpace(to))
		if err != nil || end < start {
			return nil, fmt.Errorf("bad range end %q", to)
		}
		for page := start; page <= end; page++ {
			pages = append(pages, page)
		}
	}
	return pages, nil
}
