package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skaarfundgandr/Stellaron/internal/config"
	"github.com/skaarfundgandr/Stellaron/internal/epub"
	"github.com/skaarfundgandr/Stellaron/internal/extract"
)

func newContentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content <book.epub>",
		Short: "Assemble a book's reading order into one HTML fragment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := loggerFromFlags(cmd)
			if err != nil {
				return err
			}

			if outDir, _ := cmd.Flags().GetString("out-dir"); outDir != "" {
				path, err := extract.ExportContent(args[0], outDir, logger)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			}

			content, err := extract.AssembleContent(args[0], logger)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), content)
			return nil
		},
	}
	cmd.Flags().String("out-dir", "", "Write extracted_content.html into this directory instead of stdout")
	return cmd
}

func newCoverCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cover <book.epub>",
		Short: "Export a book's declared cover image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := epub.Open(args[0])
			if err != nil {
				return err
			}
			defer c.Close()

			res, ok := c.CoverResource()
			if !ok {
				return fmt.Errorf("no cover declared in %s", args[0])
			}
			data, err := c.ReadResource(res)
			if err != nil {
				return fmt.Errorf("failed to read cover: %w", err)
			}

			name, _ := cmd.Flags().GetString("name")
			if name == "" {
				if titles := c.Metadata().Titles; len(titles) > 0 {
					name = titles[0]
				} else {
					name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
				}
			}

			dir, _ := cmd.Flags().GetString("dir")
			width, _ := cmd.Flags().GetInt("thumb-width")

			if width > 0 {
				coverPath, thumbPath, err := extract.SaveCoverWithThumbnail(data, res.MediaType, name, dir, width)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), coverPath)
				fmt.Fprintln(cmd.OutOrStdout(), thumbPath)
				return nil
			}

			coverPath, err := extract.SaveCover(data, res.MediaType, name, dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), coverPath)
			return nil
		},
	}
	cmd.Flags().String("dir", cfg.CoverDir, "Directory to write the cover into")
	cmd.Flags().String("name", "", "Base file name (default: the book title)")
	cmd.Flags().Int("thumb-width", 0, "Also write a JPEG thumbnail at most this wide")
	return cmd
}

func newFontsCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fonts <book.epub>",
		Short: "Extract embedded fonts to a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := loggerFromFlags(cmd)
			if err != nil {
				return err
			}

			c, err := epub.Open(args[0])
			if err != nil {
				return err
			}
			defer c.Close()

			dir, _ := cmd.Flags().GetString("dir")
			paths, err := extract.ExtractFonts(c, dir, logger)
			if err != nil {
				return err
			}

			if len(paths) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no embedded fonts")
				return nil
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	cmd.Flags().String("dir", cfg.FontDir, "Directory to write extracted fonts into")
	return cmd
}
