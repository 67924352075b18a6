// Package collector loads tabular datasets for training and prediction.
//
// The collector package turns a dataset location into a Table of string cells,
// keyed by the header row. Parsing of numbers and missing values is left to the
// feature builder, so every source behaves identically once loaded.
//
// # Supported Sources
//
//   - CSV: files ending in .csv, first row is the header
//   - XLSX: files ending in .xlsx; the first sheet, or the sheet named after a
//     '#' (data.xlsx#Runs)
//   - SQLite: sqlite://path/to/db?table=name, all columns of one table
//
// # Usage Example
//
//	src, err := collector.NewSource("runs/mill.csv")
//	if err != nil {
//		return err
//	}
//	table, err := src.Load(ctx)
//	if err != nil {
//		return err
//	}
//	vb, err := table.Column("VB")
//
// Column names are matched exactly and case-sensitively. Rows shorter than the
// header are padded with empty cells; longer rows are an error.
package collector
