package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage the assistant's reference documents",
	Long:  "Upload, list, search, and read the reference documents the assistant draws on when answering.",
}

var docsUploadTitle string

var docsUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a reference document (- reads stdin)",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocsUpload,
}

func runDocsUpload(cmd *cobra.Command, args []string) error {
	a, err := getApp()
	if err != nil {
		return err
	}

	var content []byte
	title := docsUploadTitle
	if args[0] == "-" {
		content, err = io.ReadAll(cmd.InOrStdin())
	} else {
		content, err = os.ReadFile(args[0])
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		}
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	if strings.TrimSpace(string(content)) == "" {
		return fmt.Errorf("%s is empty", args[0])
	}

	resp, err := a.client.UploadDocument(cmd.Context(), title, string(content))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s\n", resp.Filename)
	return nil
}

var docsListOutput string

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the reference document index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validOutput(docsListOutput); err != nil {
			return err
		}
		a, err := getApp()
		if err != nil {
			return err
		}
		index, err := a.client.ListReferenceDocuments(cmd.Context())
		if err != nil {
			return err
		}
		// The index has no fixed shape, so tables fall back to YAML.
		format := docsListOutput
		if format == outputTable {
			format = outputYAML
		}
		return writeStructured(cmd.OutOrStdout(), format, index)
	},
}

var docsSearchMax int

var docsSearchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search reference documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		res, err := a.client.SearchDocuments(cmd.Context(), args[0], docsSearchMax)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if strings.TrimSpace(res.Context) == "" {
			_, _ = fmt.Fprintf(out, "No matches for %q\n", args[0])
			return nil
		}
		_, _ = fmt.Fprintln(out, res.Context)
		return nil
	},
}

var docsReadCmd = &cobra.Command{
	Use:   "read <filename>",
	Short: "Print a reference document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		doc, err := a.client.ReadDocument(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), doc.Content)
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the backend is up",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp()
		if err != nil {
			return err
		}
		status, err := a.client.Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("backend at %s is unreachable: %w", a.client.BaseURL(), err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "🧭 %s: %s\n", a.client.BaseURL(), status)
		return nil
	},
}

func init() {
	docsUploadCmd.Flags().StringVar(&docsUploadTitle, "title", "", "document title (default: file name)")
	addOutputFlag(docsListCmd, &docsListOutput)
	docsSearchCmd.Flags().IntVar(&docsSearchMax, "max", 0, "maximum number of matches (0 uses the server default)")

	docsCmd.AddCommand(docsUploadCmd, docsListCmd, docsSearchCmd, docsReadCmd)
	rootCmd.AddCommand(docsCmd, healthCmd)
}
