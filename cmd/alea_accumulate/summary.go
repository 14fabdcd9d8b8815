package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/timescale/tsbs-alea/pkg/alea"
	"github.com/timescale/tsbs-alea/pkg/computed"
)

var summaryQuantiles = []float64{0.05, 0.25, 0.5, 0.75, 0.95}

// writeSummary sends a formatted table of the result into the output writer.
func writeSummary(w io.Writer, r alea.Result) error {
	tbl := tablewriter.NewWriter(w)
	tbl.SetBorder(true)
	tbl.SetAutoFormatHeaders(false)
	tbl.SetCaption(true, fmt.Sprintf("%d samples", r.Count()))

	switch x := r.(type) {
	case *alea.MeanResult[float64]:
		meanRows(tbl, x.Mean())
	case *alea.MeanResult[complex128]:
		meanRows(tbl, x.Mean())
	case *alea.VarResult[float64]:
		varRows(tbl, x)
	case *alea.VarResult[complex128]:
		varRows(tbl, x)
	case *alea.CovResult[float64]:
		covRows(tbl, x)
	case *alea.CovResult[complex128]:
		covRows(tbl, x)
	case *alea.BatchResult[float64]:
		batchRows(tbl, x)
	case *alea.BatchResult[complex128]:
		batchRows(tbl, x)
	case *alea.EllipticVarResult:
		tbl.SetHeader([]string{"Component", "Mean", "Var(re)", "Cov(re,im)", "Var(im)"})
		for i, v := range x.Var() {
			tbl.Append([]string{strconv.Itoa(i), format(x.Mean()[i]), format(v.ReRe), format(v.ReIm), format(v.ImIm)})
		}
	case *alea.QuantileResult:
		header := []string{"Component"}
		for _, q := range summaryQuantiles {
			header = append(header, "q"+strconv.FormatFloat(q*100, 'g', -1, 64))
		}
		tbl.SetHeader(header)
		for i := 0; i < x.Size(); i++ {
			row := []string{strconv.Itoa(i)}
			for _, q := range summaryQuantiles {
				row = append(row, format(x.Quantile(i, q)))
			}
			tbl.Append(row)
		}
	default:
		return fmt.Errorf("no summary for %T", r)
	}

	tbl.Render()
	return nil
}

func meanRows[T computed.Scalar](tbl *tablewriter.Table, mean []T) {
	tbl.SetHeader([]string{"Component", "Mean"})
	for i, m := range mean {
		tbl.Append([]string{strconv.Itoa(i), format(m)})
	}
}

func varRows[T computed.Scalar](tbl *tablewriter.Table, r *alea.VarResult[T]) {
	tbl.SetHeader([]string{"Component", "Mean", "Variance", "Std. Error"})
	stderr := r.StdErr()
	for i, m := range r.Mean() {
		tbl.Append([]string{strconv.Itoa(i), format(m), format(r.Var()[i]), format(stderr[i])})
	}
}

func covRows[T computed.Scalar](tbl *tablewriter.Table, r *alea.CovResult[T]) {
	n := r.Size()
	header := []string{"Component", "Mean"}
	for j := 0; j < n; j++ {
		header = append(header, "Cov[,"+strconv.Itoa(j)+"]")
	}
	tbl.SetHeader(header)
	for i, m := range r.Mean() {
		row := []string{strconv.Itoa(i), format(m)}
		for j := 0; j < n; j++ {
			row = append(row, format(r.At(i, j)))
		}
		tbl.Append(row)
	}
}

func batchRows[T computed.Scalar](tbl *tablewriter.Table, r *alea.BatchResult[T]) {
	tbl.SetHeader([]string{"Component", "Mean", "Std. Error (jackknife)", "Batches"})
	stderr := r.StdErr()
	batches := strconv.Itoa(len(r.BatchMeans()))
	for i, m := range r.Mean() {
		tbl.Append([]string{strconv.Itoa(i), format(m), format(stderr[i]), batches})
	}
}

func format[T computed.Scalar](v T) string {
	switch x := any(v).(type) {
	case complex128:
		return strconv.FormatComplex(x, 'g', 6, 128)
	default:
		return strconv.FormatFloat(any(v).(float64), 'g', 6, 64)
	}
}
