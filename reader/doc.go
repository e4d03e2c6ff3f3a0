// Package reader turns raw input bytes into document trees.
//
// JSON, XML, HTML and Parquet inputs are supported. In auto mode Parquet is
// recognized by its magic bytes, then JSON is tried, then XML:
//
//	root, mode, err := reader.Parse(data, reader.ModeAuto)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// ReadFile additionally unwraps gzip, zstd, lz4 and brotli compressed files,
// and ReadGlob concatenates the rows of several files, tagging each row with
// the file it came from.
package reader
