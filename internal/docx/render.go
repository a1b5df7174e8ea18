package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/klauspost/compress/flate"
)

// CompressionLevel is the fixed Deflate level used for rendered documents.
const CompressionLevel = 6

var (
	// renderablePart matches the parts that may hold placeholder text.
	renderablePart = regexp.MustCompile(`^word/(document|header\d*|footer\d*|footnotes|endnotes)\.xml$`)
	// textToken matches a <w:t> run text or the end of a paragraph.
	textToken  = regexp.MustCompile(`<w:t(?:\s[^>]*)?>([^<]*)</w:t>|</w:p>`)
	loopMarker = regexp.MustCompile(`\{\s*[#/^]`)

	xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

const preserveOpen = `<w:t xml:space="preserve">`

// Render substitutes every {tag} in an already validated template with values from data.
// Tags may be split across runs of the same paragraph. Loop markers are not supported and
// render as empty text. Any syntax problem aborts the render with a *RenderError.
func Render(template []byte, data Data) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, newGenericError(fmt.Errorf("open template archive: %w", err))
	}

	type entry struct {
		header  zip.FileHeader
		content []byte
	}
	entries := make([]entry, 0, len(zr.File))

	var (
		issues []TagIssue
		raw    strings.Builder
	)
	for _, f := range zr.File {
		content, err := readPart(f)
		if err != nil {
			return nil, newGenericError(fmt.Errorf("read %s: %w", f.Name, err))
		}
		if renderablePart.MatchString(f.Name) {
			var partIssues []TagIssue
			content, partIssues = renderPart(f.Name, content, data, &raw)
			issues = append(issues, partIssues...)
		}
		entries = append(entries, entry{header: f.FileHeader, content: content})
	}

	if len(issues) > 0 {
		return nil, classify(issues, diagnose(raw.String()))
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, CompressionLevel)
	})
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.header.Name,
			Method:   zip.Deflate,
			Modified: e.header.Modified,
		})
		if err != nil {
			return nil, newGenericError(fmt.Errorf("write %s: %w", e.header.Name, err))
		}
		if len(e.content) == 0 {
			continue
		}
		if _, err := w.Write(e.content); err != nil {
			return nil, newGenericError(fmt.Errorf("write %s: %w", e.header.Name, err))
		}
	}
	if err := zw.Close(); err != nil {
		return nil, newGenericError(fmt.Errorf("finalize document: %w", err))
	}
	return buf.Bytes(), nil
}

// segment is one <w:t> element: the opening tag starts at open, its text spans [start, end).
type segment struct {
	open, start, end int
}

type tagSpan struct {
	start, end int
	name       string
}

// renderPart rewrites the text runs of one XML part, paragraph by paragraph.
// The concatenated run text is appended to raw for diagnostics.
func renderPart(name string, part []byte, data Data, raw *strings.Builder) ([]byte, []TagIssue) {
	var (
		issues     []TagIssue
		paragraphs [][]segment
		current    []segment
	)
	for _, m := range textToken.FindAllSubmatchIndex(part, -1) {
		if m[2] < 0 {
			paragraphs = append(paragraphs, current)
			current = nil
			continue
		}
		current = append(current, segment{open: m[0], start: m[2], end: m[3]})
	}
	paragraphs = append(paragraphs, current)

	var out bytes.Buffer
	last := 0
	for _, segs := range paragraphs {
		if len(segs) == 0 {
			continue
		}
		texts := make([]string, len(segs))
		for i, s := range segs {
			texts[i] = string(part[s.start:s.end])
		}
		full := strings.Join(texts, "")
		raw.WriteString(full)
		raw.WriteByte('\n')

		tags, paraIssues := scanTags(name, full)
		if len(paraIssues) > 0 {
			issues = append(issues, paraIssues...)
			continue
		}
		if len(tags) == 0 {
			continue
		}

		rendered := substitute(texts, tags, data)
		for i, s := range segs {
			if rendered[i] == texts[i] {
				continue
			}
			out.Write(part[last:s.open])
			out.WriteString(preserveOpen)
			out.WriteString(rendered[i])
			last = s.end
		}
	}
	if len(issues) > 0 {
		return part, issues
	}
	out.Write(part[last:])
	return out.Bytes(), nil
}

// scanTags finds {tag} spans in the text of one paragraph.
func scanTags(part, text string) ([]tagSpan, []TagIssue) {
	var (
		tags   []tagSpan
		issues []TagIssue
	)
	open := -1
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '{':
			if open >= 0 {
				issues = append(issues, TagIssue{Kind: KindUnclosedTag, Part: part, Excerpt: excerptAfter(text, open)})
			}
			open = i
		case '}':
			if open < 0 {
				issues = append(issues, TagIssue{Kind: KindUnopenedTag, Part: part, Excerpt: excerptBefore(text, i)})
				continue
			}
			tags = append(tags, tagSpan{start: open, end: i + 1, name: text[open+1 : i]})
			open = -1
		}
	}
	if open >= 0 {
		issues = append(issues, TagIssue{Kind: KindUnclosedTag, Part: part, Excerpt: excerptAfter(text, open)})
	}
	return tags, issues
}

// substitute replaces tags in the joined run texts. A tag's value is written into the run
// where the tag starts; the rest of the tag is removed from the runs it spans.
func substitute(texts []string, tags []tagSpan, data Data) []string {
	owner := make([]int, 0, len(texts))
	for i, t := range texts {
		for range len(t) {
			owner = append(owner, i)
		}
	}
	full := strings.Join(texts, "")

	out := make([]strings.Builder, len(texts))
	ti := 0
	for i := 0; i < len(full); {
		if ti < len(tags) && i == tags[ti].start {
			out[owner[i]].WriteString(xmlEscaper.Replace(resolve(tags[ti].name, data)))
			i = tags[ti].end
			ti++
			continue
		}
		out[owner[i]].WriteByte(full[i])
		i++
	}

	rendered := make([]string, len(texts))
	for i := range out {
		rendered[i] = out[i].String()
	}
	return rendered
}

func resolve(name string, data Data) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name[:1], "#/^") {
		return ""
	}
	return data.Lookup(name)
}

func diagnose(raw string) Diagnostics {
	return Diagnostics{
		OpenBraces:   strings.Count(raw, "{"),
		CloseBraces:  strings.Count(raw, "}"),
		DoubleBraces: strings.Count(raw, "{{"),
		LoopMarkers:  len(loopMarker.FindAllStringIndex(raw, -1)),
	}
}

const excerptLen = 24

func excerptAfter(text string, i int) string {
	end := min(i+excerptLen, len(text))
	return strings.TrimSpace(strings.ToValidUTF8(text[i:end], ""))
}

func excerptBefore(text string, i int) string {
	start := max(0, i+1-excerptLen)
	return strings.TrimSpace(strings.ToValidUTF8(text[start:i+1], ""))
}
