// This file provides the console summary printed after a labeling run.

package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/linuxmatters/okng/internal/labels"
	"github.com/linuxmatters/okng/internal/processor"
)

// DisplayResults prints the segment table and label counts to w.
func DisplayResults(w io.Writer, source string, res *processor.Result, final []labels.Label) {
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "SEGMENTS: %s\n", source)
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Sample Rate: %d Hz\n", res.Params.SampleRate)
	fmt.Fprintf(w, "Metric:      %s, NG at %d%% change\n", res.Params.Metric, res.Params.ThresholdPercent)
	fmt.Fprintln(w)

	fmt.Fprint(w, SegmentTable(res, final).String())
	fmt.Fprintln(w)

	if final == nil {
		final = res.Auto
	}
	ng := labels.Count(final, labels.NG)
	fmt.Fprintf(w, "%d of %d segments NG\n", ng, len(final))
}
