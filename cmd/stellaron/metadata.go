package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skaarfundgandr/Stellaron/internal/checksum"
	"github.com/skaarfundgandr/Stellaron/internal/extract"
)

// metaOutput is the stdout shape of a metadata record: raw cover bytes are
// replaced by presence and media type
type metaOutput struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	PublishedDate *string  `json:"published_date"`
	Publishers    []string `json:"publishers"`
	ISBN          *string  `json:"isbn"`
	FilePath      string   `json:"file_path"`
	HasCover      bool     `json:"has_cover"`
	CoverMimeType string   `json:"cover_mime_type,omitempty"`
	Checksum      string   `json:"checksum"`
}

func newMetaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meta <book.epub>",
		Short: "Print a book's metadata record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := extract.ReadMetadata(args[0])
			if err != nil {
				return err
			}

			if sidecar, _ := cmd.Flags().GetBool("sidecar"); sidecar {
				path, err := extract.WriteSidecar(meta)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			}

			out := metaOutput{
				Title:         meta.Title,
				Authors:       meta.Authors,
				PublishedDate: meta.PublishedDate,
				Publishers:    meta.Publishers,
				ISBN:          meta.ISBN,
				FilePath:      meta.FilePath,
				HasCover:      meta.HasCover(),
				Checksum:      meta.Checksum,
			}
			if meta.CoverData != nil {
				out.CoverMimeType = meta.CoverData.MimeType
			}

			encoded, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode metadata: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
			return nil
		},
	}
	cmd.Flags().Bool("sidecar", false, "Write the record as a .json file next to the book instead of stdout")
	return cmd
}

func newChecksumCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checksum <book.epub> [more files...]",
		Short: "Print the SHA-256 checksum of each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var firstErr error
			for _, path := range args {
				sum, err := checksum.File(path)
				if err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					if firstErr == nil {
						firstErr = err
					}
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", sum, path)
			}
			return firstErr
		},
	}
}
