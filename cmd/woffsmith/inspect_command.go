package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"woffsmith/internal/container"
)

func newInspectCommand() *cobra.Command {
	var showPayload bool

	cmd := &cobra.Command{
		Use:         "inspect <file>",
		Short:       "Show the container header of a WOFF/WOFF2 file or the table directory of a font",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			return inspect(cmd.OutOrStdout(), args[0], data, showPayload)
		},
	}
	cmd.Flags().BoolVar(&showPayload, "payload", false, "Inflate a container payload and summarize the embedded font")
	return cmd
}

func inspect(out io.Writer, path string, data []byte, showPayload bool) error {
	if isContainer(data) {
		h, err := container.ParseHeader(data)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, renderHeader(path, h))
		if !showPayload {
			return nil
		}
		payload, err := container.Payload(data)
		if err != nil {
			return err
		}
		data = payload
		path += " (payload)"
	}

	info, err := container.InspectSource(data)
	if err != nil {
		if errors.Is(err, container.ErrMalformedSource) {
			return fmt.Errorf("%s is neither a WOFF/WOFF2 container nor a valid sfnt font: %w", path, err)
		}
		return err
	}
	fmt.Fprintln(out, renderSource(path, info))
	return nil
}

func isContainer(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	sig := binary.BigEndian.Uint32(data)
	return sig == container.SignatureWOFF || sig == container.SignatureWOFF2
}

func renderHeader(path string, h container.Header) string {
	return renderKeyValues([][2]string{
		{"File", path},
		{"Format", h.Format.String()},
		{"Signature", fmt.Sprintf("0x%08X", h.Signature)},
		{"Flavor", fmt.Sprintf("0x%08X", h.Flavor)},
		{"Header size", strconv.Itoa(h.Size())},
		{"Total length", strconv.FormatUint(uint64(h.TotalLength), 10)},
		{"Tables", strconv.Itoa(int(h.NumTables))},
		{"Source size", strconv.FormatUint(uint64(h.TotalSfntSize), 10)},
		{"Compressed size", strconv.FormatUint(uint64(h.CompressedSize), 10)},
		{"Version", fmt.Sprintf("%d.%d", h.MajorVersion, h.MinorVersion)},
	})
}

func renderSource(path string, info container.SourceInfo) string {
	summary := renderKeyValues([][2]string{
		{"File", path},
		{"Flavor", string(info.Flavor)},
		{"Scaler type", fmt.Sprintf("0x%08X", info.ScalerType)},
		{"Size", humanBytes(int64(info.Size))},
		{"Tables", strconv.Itoa(len(info.Tables))},
	})
	rows := make([][]string, 0, len(info.Tables))
	for _, entry := range info.Tables {
		rows = append(rows, []string{
			entry.Tag,
			strconv.FormatUint(uint64(entry.Offset), 10),
			strconv.FormatUint(uint64(entry.Length), 10),
		})
	}
	tables := renderTable([]string{"Tag", "Offset", "Length"}, rows, []columnAlignment{alignLeft, alignRight, alignRight})
	return summary + "\n" + tables
}
