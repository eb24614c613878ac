package siteguard

import (
	"fmt"
	"io"

	"github.com/temirov/siteguard/internal/utils"
)

const annotationTemplateConstant = "::warning::%s\n"

// Reporter receives findings as they are produced.
type Reporter interface {
	Report(finding Finding) error
}

// AnnotationReporter writes findings as CI warning annotations, one line per finding.
type AnnotationReporter struct {
	writer io.Writer
}

// NewAnnotationReporter constructs an AnnotationReporter that flushes each line to writer.
func NewAnnotationReporter(writer io.Writer) *AnnotationReporter {
	return &AnnotationReporter{writer: utils.NewFlushingWriter(writer)}
}

// Report writes the finding's message as a warning annotation.
func (reporter *AnnotationReporter) Report(finding Finding) error {
	_, writeError := fmt.Fprintf(reporter.writer, annotationTemplateConstant, finding.Message)
	return writeError
}
