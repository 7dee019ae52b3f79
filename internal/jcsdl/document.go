package jcsdl

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/jcsdl/internal/models"
)

// linesPerFilter is start line, fragment, end marker and the logic separator.
const linesPerFilter = 4

// Decode verifies and parses a full JCSDL document. Any error aborts the decode;
// no partial filter list is returned.
func (c *Codec) Decode(text string) (*models.Document, error) {
	doc, err := c.decode(text)
	if err != nil {
		c.logger.Debug("jcsdl document rejected", zap.String("kind", Kind(err)), zap.Error(err))
		return nil, err
	}
	return doc, nil
}

func (c *Codec) decode(text string) (*models.Document, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimRight(text, "\n")
	lines := strings.Split(text, "\n")
	if len(lines) < 3 {
		return nil, &FormatError{Line: len(lines), Reason: "document needs a version line, a master line and an end marker"}
	}

	version, err := parseVersionLine(lines[0])
	if err != nil {
		return nil, err
	}
	hash, logic, err := parseMasterLine(lines[1])
	if err != nil {
		return nil, err
	}
	if last := len(lines) - 1; strings.TrimSpace(lines[last]) != masterEnd {
		return nil, &FormatError{Line: last + 1, Reason: "expected " + masterEnd}
	}

	// the last line is the end marker; everything between it and the master line is the body
	body := lines[2 : len(lines)-1]
	if err := c.verifier.VerifyDocument(hash, logic, strings.Join(body, "\n")); err != nil {
		return nil, err
	}

	filters, err := c.decodeBody(body)
	if err != nil {
		return nil, err
	}
	return &models.Document{
		Version: version,
		Logic:   models.NormalizeLogic(models.Logic(logic)),
		Filters: filters,
	}, nil
}

// decodeBody reads filter blocks four lines at a time. The separator after the
// last block is absent, so a group may end after its end marker.
func (c *Codec) decodeBody(body []string) ([]*models.Filter, error) {
	filters := make([]*models.Filter, 0, len(body)/linesPerFilter+1)
	if len(body) == 0 || (len(body) == 1 && body[0] == "") {
		return filters, nil
	}

	for i, index := 0, 0; i < len(body); i, index = i+linesPerFilter, index+1 {
		// body starts on the third line of the document
		line := i + 3
		if i+2 >= len(body) {
			return nil, &FormatError{Line: line, Reason: "incomplete filter block"}
		}
		start, fragment, end := body[i], body[i+1], body[i+2]

		if !strings.HasPrefix(start, startPrefix) {
			return nil, &FormatError{Line: line, Reason: "expected " + strings.TrimSpace(startPrefix) + " line"}
		}
		hash, syntax, ok := strings.Cut(strings.TrimPrefix(start, startPrefix), " ")
		if !ok || hash == "" || syntax == "" {
			return nil, &FormatError{Line: line, Reason: "start line needs a hash and a filter syntax"}
		}
		if end != endMarker {
			return nil, &FormatError{Line: line + 2, Reason: "expected " + endMarker}
		}

		if err := c.verifier.VerifyFilter(index, hash, fragment); err != nil {
			return nil, err
		}

		f, err := c.DecodeFilter(syntax, fragment)
		if err != nil {
			var fe *FormatError
			if errors.As(err, &fe) && fe.Line == 0 {
				fe.Line = line
			}
			path, _, _ := strings.Cut(syntax, ",")
			return nil, &FilterError{Index: index, Path: path, Err: err}
		}
		filters = append(filters, f)
	}
	return filters, nil
}

func parseVersionLine(line string) (string, error) {
	if !strings.HasPrefix(line, versionPrefix) {
		return "", &FormatError{Line: 1, Reason: "expected " + versionPrefix + " line"}
	}
	return strings.TrimSpace(strings.TrimPrefix(line, versionPrefix)), nil
}

// parseMasterLine returns the master hash and the logic token as written,
// which is "" when the token is missing.
func parseMasterLine(line string) (string, string, error) {
	if !strings.HasPrefix(line, masterPrefix) {
		return "", "", &FormatError{Line: 2, Reason: "expected " + strings.TrimSpace(masterPrefix) + " line"}
	}
	fields := strings.Split(strings.TrimPrefix(line, masterPrefix), " ")
	if fields[0] == "" {
		return "", "", &FormatError{Line: 2, Reason: "master line has no hash"}
	}
	logic := ""
	if len(fields) > 1 {
		logic = fields[1]
	}
	return fields[0], logic, nil
}

// Encode renders doc as JCSDL, leaving out filters that cannot be encoded.
func (c *Codec) Encode(doc *models.Document) string {
	text, _ := c.EncodeDetailed(doc)
	return text
}

// EncodeDetailed is Encode that also returns a *FilterError for every filter
// left out of the output.
func (c *Codec) EncodeDetailed(doc *models.Document) (string, []error) {
	var (
		logic   = models.LogicAnd
		filters []*models.Filter
	)
	if doc != nil {
		logic = models.NormalizeLogic(doc.Logic)
		filters = doc.Filters
	}

	blocks := make([]string, 0, len(filters))
	var skipped []error
	for i, f := range filters {
		block, err := c.EncodeFilter(f)
		if err != nil {
			fe := &FilterError{Index: i, Err: err}
			if f != nil {
				fe.Path = f.Path()
			}
			c.logger.Warn("skipping filter that cannot be encoded",
				zap.Int("index", i),
				zap.String("path", fe.Path),
				zap.String("kind", Kind(err)),
				zap.Error(err),
			)
			skipped = append(skipped, fe)
			continue
		}
		blocks = append(blocks, block.String())
	}

	body := strings.Join(blocks, "\n"+string(logic)+"\n")
	hash := c.verifier.DocumentHash(string(logic), body)

	var b strings.Builder
	b.WriteString(versionPrefix + " " + c.version + "\n")
	b.WriteString(masterPrefix + hash + " " + string(logic) + "\n")
	b.WriteString(body + "\n")
	b.WriteString(masterEnd)
	return b.String(), skipped
}
