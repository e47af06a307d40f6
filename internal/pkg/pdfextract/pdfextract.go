package pdfextract

import (
	"bytes"
	"errors"

	"github.com/ledongthuc/pdf"
)

// PageCount parses b as a PDF and returns its number of pages.
func PageCount(b []byte) (n int, err error) {
	if len(b) == 0 {
		return 0, errors.New("empty pdf")
	}
	// the parser panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, errors.New("malformed pdf")
		}
	}()
	pdfReader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return 0, err
	}
	return pdfReader.NumPage(), nil
}
