package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBodyPart = "word/document.xml"

// extractDOCX returns the non-empty top-level body paragraphs joined by
// newlines. Table cells and text boxes are not part of the paragraph list.
func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == docxBodyPart {
			part = f
			break
		}
	}
	if part == nil {
		return "", fmt.Errorf("%s not found", docxBodyPart)
	}

	rc, err := part.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", docxBodyPart, err)
	}
	defer rc.Close()

	paragraphs, err := readParagraphs(rc)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", docxBodyPart, err)
	}
	return strings.Join(paragraphs, "\n"), nil
}

func readParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		out        []string
		current    strings.Builder
		tableDepth int
		paraDepth  int
		collecting bool
		inProps    bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "tbl":
				tableDepth++
			case "p":
				if paraDepth == 0 && tableDepth == 0 {
					collecting = true
					current.Reset()
				}
				paraDepth++
			case "pPr":
				inProps = true
			case "t":
				if collecting && paraDepth == 1 {
					var text string
					if err := dec.DecodeElement(&text, &el); err != nil {
						return nil, err
					}
					current.WriteString(text)
				}
			case "tab":
				if collecting && paraDepth == 1 && !inProps {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if collecting && paraDepth == 1 {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "tbl":
				tableDepth--
			case "pPr":
				inProps = false
			case "p":
				paraDepth--
				if paraDepth == 0 && collecting {
					if current.Len() > 0 {
						out = append(out, current.String())
					}
					collecting = false
				}
			}
		}
	}
}
