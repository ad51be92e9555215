package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/simonhull/labmeta/internal/tdms"
	"github.com/simonhull/labmeta/internal/types"
)

// Useful test file to confirm what we're able to actually read from a TDMS file's segments.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: tdms-dump <file.tdms>")
		os.Exit(1)
	}

	f, err := tdms.Open(os.Args[1])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	dumpSegments(f)
	fmt.Println()
	dumpObjects(f)
}

func dumpSegments(f *tdms.File) {
	for i, seg := range f.Segments() {
		order := "LE"
		if seg.BigEndian() {
			order = "BE"
		}
		fmt.Printf("segment %d (offset: %d, next: %d, raw: %d, version: %d, %s)\n",
			i, seg.Offset, seg.NextSegmentOffset, seg.RawDataOffset, seg.Version, order)
		fmt.Printf("  toc: %s\n", tocFlags(seg))
		if seg.Incomplete {
			fmt.Println("  incomplete, runs to end of file")
		}
		if seg.HasRawData() {
			fmt.Printf("  data: %d bytes in %d chunk(s)\n", seg.DataSize, seg.Chunks)
		}

		for _, obj := range seg.Objects {
			if !obj.HasData {
				fmt.Printf("  %s\n", obj.Path)
				continue
			}
			fmt.Printf("  %s [%s x %d, chunk %d bytes]\n",
				obj.Path, obj.Index.DataType, obj.Index.Values, obj.Index.ChunkSize())
		}
	}
}

func tocFlags(seg tdms.Segment) string {
	var flags []string
	if seg.HasMetaData() {
		flags = append(flags, "meta")
	}
	if seg.NewObjectList() {
		flags = append(flags, "newobjlist")
	}
	if seg.HasRawData() {
		flags = append(flags, "rawdata")
	}
	if seg.Interleaved() {
		flags = append(flags, "interleaved")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}

func dumpObjects(f *tdms.File) {
	fmt.Println("/")
	dumpProperties(f.Properties(), 1)

	for _, g := range f.GroupList() {
		fmt.Printf("  %s\n", g.Name())
		dumpProperties(g.Properties(), 2)

		for _, c := range g.ChannelList() {
			fmt.Printf("    %s (%s, %d samples)\n", c.Name(), c.DataType(), c.SampleCount())
			dumpProperties(c.Properties(), 3)
		}
	}
}

func dumpProperties(props *types.Metadata, depth int) {
	indent := strings.Repeat("  ", depth)
	for k, v := range props.All() {
		fmt.Printf("%s- %s = %v\n", indent, k, v)
	}
}
