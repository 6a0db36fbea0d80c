package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jasonyy2018/rresume/internal/logger"
	"github.com/jasonyy2018/rresume/internal/output"
	"github.com/jasonyy2018/rresume/pkg/ai"
	"github.com/jasonyy2018/rresume/pkg/importer"
)

var testConnectionCmd = &cobra.Command{
	Use:   "test-connection",
	Short: "Check that the configured provider answers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := credentials()
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		ok, err := newService().TestConnection(ctx, creds)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("provider %s answered but did not follow the instruction", creds.Provider)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
		return nil
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Extract a resume from a PDF or Word file with an AI provider",
	Long: `Parse a PDF (.pdf) or Word (.doc, .docx) resume into a resume document.

Only the official OpenAI endpoint and Google Gemini can read files.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

var improveCmd = &cobra.Command{
	Use:   "improve <text|@file>",
	Short: "Rewrite resume content with an AI provider",
	Args:  cobra.ExactArgs(1),
	RunE:  runImprove,
}

func init() {
	rootCmd.AddCommand(testConnectionCmd, parseCmd, improveCmd)

	addOutputFlags(parseCmd, output.FormatJSON)
	addOutputFlags(improveCmd, output.FormatText)

	improveCmd.Flags().StringP("job-description", "j", "", "job description text or @file")
	improveCmd.Flags().StringP("instructions", "i", "", "extra instructions or @file")
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// mediaTypeFor maps a file extension to the parse media type.
func mediaTypeFor(path string) (ai.MediaType, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return ai.MediaPDF, nil
	case ".doc":
		return ai.MediaDOC, nil
	case ".docx":
		return ai.MediaDOCX, nil
	}
	return "", fmt.Errorf("cannot tell the document type of %s (expected .pdf, .doc or .docx)", path)
}

// readArg returns s, or the contents of the file when s starts with @.
func readArg(s string) (string, error) {
	if !strings.HasPrefix(s, "@") {
		return s, nil
	}
	b, err := os.ReadFile(strings.TrimPrefix(s, "@"))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func runParse(cmd *cobra.Command, args []string) error {
	path := args[0]
	media, err := mediaTypeFor(path)
	if err != nil {
		return err
	}
	creds, err := credentials()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	typ := importer.TypePDF
	if media != ai.MediaPDF {
		typ = importer.TypeDOCX
	}
	ctx, cancel := signalContext()
	defer cancel()

	d, err := newService().Import(ctx, ai.ImportRequest{
		Type:        typ,
		Name:        filepath.Base(path),
		Data:        data,
		MediaType:   media,
		Credentials: &creds,
	})
	if err != nil {
		return err
	}
	return writeResult(cmd, d)
}

func runImprove(cmd *cobra.Command, args []string) error {
	content, err := readArg(args[0])
	if err != nil {
		return err
	}
	jdFlag, _ := cmd.Flags().GetString("job-description")
	jd, err := readArg(jdFlag)
	if err != nil {
		return err
	}
	instrFlag, _ := cmd.Flags().GetString("instructions")
	instr, err := readArg(instrFlag)
	if err != nil {
		return err
	}

	creds, err := credentials()
	if err != nil {
		return err
	}

	logger.Debug("improving content", "chars", len(content), "has_job_description", jd != "")
	ctx, cancel := signalContext()
	defer cancel()

	out, err := newService().ImproveText(ctx, creds, ai.ImproveInput{
		Content:        content,
		JobDescription: jd,
		Instructions:   instr,
	})
	if err != nil {
		return err
	}
	return writeResult(cmd, out)
}
