// Package report writes coupling results as summary tables.
package report

import (
	"time"

	"github.com/RyanBlaney/sonido-triad/coupling"
)

// Row is the flat summary of one analyzed recording. Columns of a disabled
// path are nil.
type Row struct {
	// RunID is the batch run the record belongs to
	RunID string `json:"run_id" parquet:"run_id,snappy"`

	// File is the analyzed path or series name
	File string `json:"file" parquet:"file,snappy"`

	// Timestamp is when the analysis started (UTC)
	Timestamp time.Time `json:"timestamp" parquet:"timestamp,snappy"`

	FS      float64 `json:"fs" parquet:"fs,snappy"`
	Samples int64   `json:"samples" parquet:"samples,snappy"`
	SegLen  int32   `json:"seglen" parquet:"seglen,snappy"`

	// Cross-bicoherence peak and its significance
	F1Peak   *float64 `json:"f1_peak" parquet:"f1_peak,optional,snappy"`
	F2Peak   *float64 `json:"f2_peak" parquet:"f2_peak,optional,snappy"`
	B2Peak   *float64 `json:"b2_peak" parquet:"b2_peak,optional,snappy"`
	F3Est    *float64 `json:"f3_est" parquet:"f3_est,optional,snappy"`
	PeakZ    *float64 `json:"peak_z" parquet:"peak_z,optional,snappy"`
	PeakP    *float64 `json:"peak_p" parquet:"peak_p,optional,snappy"`
	PEmp     *float64 `json:"p_emp" parquet:"p_emp,optional,snappy"`
	NullMean *float64 `json:"null_mean" parquet:"null_mean,optional,snappy"`
	NullSD   *float64 `json:"null_sd" parquet:"null_sd,optional,snappy"`
	NullQ95  *float64 `json:"null_q95" parquet:"null_q95,optional,snappy"`

	// Lock path
	F1Est      *float64 `json:"f1_est" parquet:"f1_est,optional,snappy"`
	F2Est      *float64 `json:"f2_est" parquet:"f2_est,optional,snappy"`
	LockStatic *float64 `json:"L_static" parquet:"L_static,optional,snappy"`
	CohTime    *float64 `json:"coh_time" parquet:"coh_time,optional,snappy"`

	// Pairwise phase-locking and phase-amplitude coupling
	PLVLow12     *float64 `json:"plv_low_12" parquet:"plv_low_12,optional,snappy"`
	PLVMid23     *float64 `json:"plv_mid_23" parquet:"plv_mid_23,optional,snappy"`
	PLVHigh13    *float64 `json:"plv_high_13" parquet:"plv_high_13,optional,snappy"`
	PACLowHigh13 *float64 `json:"pac_low_high_13" parquet:"pac_low_high_13,optional,snappy"`
	PACLowMid12  *float64 `json:"pac_low_mid_12" parquet:"pac_low_mid_12,optional,snappy"`

	ElapsedSeconds float64 `json:"elapsed_s" parquet:"elapsed_s,snappy"`
}

// Columns is the CSV header, in Row field order
var Columns = []string{
	"run_id", "file", "timestamp", "fs", "samples", "seglen",
	"f1_peak", "f2_peak", "b2_peak", "f3_est",
	"peak_z", "peak_p", "p_emp", "null_mean", "null_sd", "null_q95",
	"f1_est", "f2_est", "L_static", "coh_time",
	"plv_low_12", "plv_mid_23", "plv_high_13", "pac_low_high_13", "pac_low_mid_12",
	"elapsed_s",
}

// NewRow flattens a result
func NewRow(r *coupling.Result) Row {
	row := Row{
		RunID:          r.RunID,
		File:           r.File,
		Timestamp:      r.Timestamp,
		FS:             r.FS,
		Samples:        int64(r.Samples),
		SegLen:         int32(r.SegLen),
		ElapsedSeconds: r.Elapsed,
	}

	if r.Peak != nil {
		row.F1Peak = ptr(r.Peak.F1)
		row.F2Peak = ptr(r.Peak.F2)
		row.B2Peak = ptr(r.Peak.B2)
		row.F3Est = ptr(r.F3Est)
	}
	if s := r.Significance; s != nil {
		row.PeakZ = ptr(s.Z)
		row.PeakP = ptr(s.P)
		row.PEmp = ptr(s.PEmpirical)
		row.NullMean = ptr(s.NullMean)
		row.NullSD = ptr(s.NullSD)
		row.NullQ95 = ptr(s.NullQ95)
	}
	if r.LockStatic != nil {
		row.F1Est = ptr(r.F1Est)
		row.F2Est = ptr(r.F2Est)
		row.LockStatic = ptr(*r.LockStatic)
	}
	if r.CoherenceTime != nil {
		row.CohTime = ptr(*r.CoherenceTime)
	}
	if pw := r.Pairwise; pw != nil {
		row.PLVLow12 = ptr(pw.PLVLow12)
		row.PLVMid23 = ptr(pw.PLVMid23)
		row.PLVHigh13 = ptr(pw.PLVHigh13)
		row.PACLowHigh13 = ptr(pw.PACLowHigh13)
		row.PACLowMid12 = ptr(pw.PACLowMid12)
	}
	return row
}

// NewRows flattens results, skipping nil entries
func NewRows(results []*coupling.Result) []Row {
	rows := make([]Row, 0, len(results))
	for _, r := range results {
		if r != nil {
			rows = append(rows, NewRow(r))
		}
	}
	return rows
}

func ptr(v float64) *float64 {
	return &v
}
