package pdfdoc

import (
	"fmt"
	"io"
	"os"
	"strings"

	dslipak "github.com/dslipak/pdf"
	ledong "github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

// minTextChars is the threshold below which a parse is treated as a failure
// rather than a success: a real boxscore PDF yields far more than 100
// characters, while a broken parse yields a handful of glyphs.
const minTextChars = 100

// textFromPDF extracts plain text from genuine PDF bytes, trying the
// primary parser and falling back to the secondary when the result is too
// short to be a real extraction. The temp file backing the parsers is
// removed before return on every path.
func textFromPDF(b []byte) (string, error) {
	tmp, err := os.CreateTemp("", "crewscrape-*.pdf")
	if err != nil {
		return "", fmt.Errorf("temp pdf: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp pdf: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp pdf: %w", err)
	}

	text, primaryErr := primaryText(path)
	if primaryErr == nil && len(strings.TrimSpace(text)) >= minTextChars {
		return text, nil
	}
	if primaryErr != nil {
		log.Debug().Err(primaryErr).Msg("primary pdf parser failed, trying secondary")
	} else {
		log.Debug().Int("chars", len(text)).Msg("primary pdf text too short, trying secondary")
	}

	text, secondaryErr := secondaryText(path)
	if secondaryErr == nil && len(strings.TrimSpace(text)) >= minTextChars {
		return text, nil
	}
	if secondaryErr == nil {
		secondaryErr = fmt.Errorf("extracted only %d chars", len(strings.TrimSpace(text)))
	}
	return "", fmt.Errorf("pdf text extraction failed: primary: %v; secondary: %v", primaryErr, secondaryErr)
}

// primaryText uses ledongthuc/pdf. The library panics on some malformed
// files, so the recover is part of the contract here.
func primaryText(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("primary parser panic: %v", r)
		}
	}()
	f, reader, err := ledong.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	r, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if _, err := io.Copy(&sb, r); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func secondaryText(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("secondary parser panic: %v", r)
		}
	}()
	reader, err := dslipak.Open(path)
	if err != nil {
		return "", err
	}
	r, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if _, err := io.Copy(&sb, r); err != nil {
		return "", err
	}
	return sb.String(), nil
}
