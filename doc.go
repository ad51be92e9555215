// Package labmeta extracts normalized metadata from laboratory data files.
//
// A single entry point routes each file by suffix to one extractor and
// returns a typed record whose Metadata form is an ordered, serializable
// mapping.
//
// # Quick Start
//
//	rec, err := labmeta.Process("session-12/waveforms.tdms")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	out, _ := json.MarshalIndent(rec.Metadata(), "", "  ")
//	fmt.Println(string(out))
//
// # Supported Files
//
//   - .tdms: TDMS waveform containers. File and channel properties, per
//     channel sample counts, and the derived sample rate and start time.
//   - .bin: raw binary dumps. The leading 64 bytes (WithHeaderSize) as
//     ASCII text, hex, and big-endian uint32 and float32 readings.
//   - .ini: config files. Sections of verbatim key/value strings, or the
//     raw lines when the file has no section headers.
//   - .mat: MATLAB Level 5 MAT-files. Every variable, decoded.
//   - .m: MATLAB scripts. The file's lines.
//
// # Records
//
// Records form a closed set. Switch on the concrete type to read typed
// fields:
//
//	switch r := rec.(type) {
//	case *labmeta.WaveformRecord:
//		fmt.Println(r.ChannelCount, *r.SampleRate)
//	case *labmeta.ConfigRecord:
//		if r.Shape == labmeta.ConfigRawLines {
//			fmt.Println("no sections")
//		}
//	}
//
// Fields that cannot be derived, such as interpreted_integer for a file
// shorter than 4 bytes, are present in the Metadata with a nil value.
//
// # Batches
//
// ProcessMany reads files concurrently and stops at the first failure.
// ProcessAll reads every file and returns per-file results together with
// a combined error:
//
//	results, err := labmeta.ProcessAll(ctx, paths, labmeta.WithConcurrency(8))
//	for _, r := range results {
//		if r.Err != nil {
//			continue
//		}
//		fmt.Println(r.Path, r.Record.Kind())
//	}
//
// # Error Handling
//
// Unsupported suffixes return *UnsupportedFormatError, an expected
// outcome. Malformed files return *CorruptedFileError or, for waveform
// containers without groups or channels, *EmptyContainerError. Config
// files outside the section grammar are not errors; they produce a raw
// lines record. I/O errors are wrapped and remain matchable with
// errors.Is(err, fs.ErrNotExist). Use errors.As to inspect typed errors.
//
// # Ports
//
// MAT-file decoding and TDMS reading sit behind the StructuredDecoder and
// WaveformOpener ports. WithStructuredDecoder and WithWaveformOpener swap
// in other implementations.
package labmeta
