package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jasonyy2018/rresume/internal/output"
	"github.com/jasonyy2018/rresume/pkg/ai"
	"github.com/jasonyy2018/rresume/pkg/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Convert a Reactive Resume or JSON Resume export",
	Long: `Convert an exported resume into a resume document.

Types:
  reactive-resume-json     current Reactive Resume export
  reactive-resume-v4-json  Reactive Resume v4 export
  json-resume-json         jsonresume.org document
  pdf, docx                parsed by an AI provider (see "rresume parse")`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringP("type", "t", string(importer.TypeReactiveResume), "import type")
	addOutputFlags(importCmd, output.FormatJSON)
}

func runImport(cmd *cobra.Command, args []string) error {
	typeStr, _ := cmd.Flags().GetString("type")
	typ, err := importer.ParseType(typeStr)
	if err != nil {
		return err
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	req := ai.ImportRequest{Type: typ, Name: filepath.Base(path), Data: data}
	if typ.UsesAI() {
		creds, err := credentials()
		if err != nil {
			return err
		}
		req.Credentials = &creds
		if typ == importer.TypeDOCX {
			if media, err := mediaTypeFor(path); err == nil {
				req.MediaType = media
			}
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	d, err := newService().Import(ctx, req)
	if err != nil {
		return err
	}
	return writeResult(cmd, d)
}
