package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperjump/kotae/internal/cli"
	"github.com/hyperjump/kotae/internal/client"
	"github.com/hyperjump/kotae/internal/models"
)

func (o *rootOptions) client() (*client.Client, cli.OutputFormat, error) {
	format, err := o.outputFormat()
	if err != nil {
		return nil, "", err
	}
	c, err := client.New(o.serverURL, client.DefaultTimeout)
	if err != nil {
		return nil, "", err
	}
	return c, format, nil
}

// buildQuery joins all positional args with spaces so multi-word questions work the
// same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func newUploadCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload text documents (.txt, .md, .csv)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, format, err := opts.client()
			if err != nil {
				return err
			}
			for _, path := range args {
				resp, err := c.Upload(cmd.Context(), path)
				if err != nil {
					return err
				}
				if err := cli.WriteUpload(cmd.OutOrStdout(), resp, format); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newAskCmd(opts *rootOptions) *cobra.Command {
	var language, session string
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about the uploaded documents",
		Example: `  kotae ask how many vacation days do I get
  kotae ask --language es "what is the parking policy?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, format, err := opts.client()
			if err != nil {
				return err
			}
			resp, err := c.Query(cmd.Context(), &models.QueryRequest{
				Query:     buildQuery(args),
				Language:  language,
				SessionID: session,
			})
			if err != nil {
				return err
			}
			return cli.WriteAnswer(cmd.OutOrStdout(), resp, format)
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", models.DefaultLanguage, "answer language (en, es, fr, de, hi, zh, ja)")
	cmd.Flags().StringVar(&session, "session", "", "session id")
	return cmd
}

func newSummarizeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <document-id>",
		Short: "Summarize a document in a few bullet points",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, format, err := opts.client()
			if err != nil {
				return err
			}
			resp, err := c.Summarize(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return cli.WriteSummary(cmd.OutOrStdout(), resp, format)
		},
	}
}

func newDocumentsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "documents",
		Aliases: []string{"ls"},
		Short:   "List uploaded documents",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, format, err := opts.client()
			if err != nil {
				return err
			}
			list, err := c.Documents(cmd.Context())
			if err != nil {
				return err
			}
			return cli.WriteDocuments(cmd.OutOrStdout(), list, format)
		},
	}
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <document-id>",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, format, err := opts.client()
			if err != nil {
				return err
			}
			resp, err := c.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return cli.WriteDelete(cmd.OutOrStdout(), args[0], resp, format)
		},
	}
}

func newAnalyticsCmd(opts *rootOptions) *cobra.Command {
	var recent int
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show query statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, format, err := opts.client()
			if err != nil {
				return err
			}
			snap, err := c.Analytics(cmd.Context())
			if err != nil {
				return err
			}
			return cli.WriteAnalytics(cmd.OutOrStdout(), snap, format, recent)
		},
	}
	cmd.Flags().IntVar(&recent, "recent", 10, "number of recent questions to list (0 = all)")
	return cmd
}

func newHealthCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, format, err := opts.client()
			if err != nil {
				return err
			}
			h, err := c.Health(cmd.Context())
			if err != nil {
				return err
			}
			return cli.WriteHealth(cmd.OutOrStdout(), h, format)
		},
	}
}
