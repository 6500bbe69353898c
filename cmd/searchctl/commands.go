package main

import (
	"fmt"
	"strings"

	"github.com/Adda-Baaj/lecture-search-client/internal/app"
	"github.com/Adda-Baaj/lecture-search-client/internal/config"
	"github.com/Adda-Baaj/lecture-search-client/internal/logger"
	"github.com/Adda-Baaj/lecture-search-client/internal/render"
	"github.com/Adda-Baaj/lecture-search-client/pkg/searchapi"
	"github.com/spf13/cobra"
)

// cli carries state shared by all subcommands.
type cli struct {
	baseURL string
	format  string

	out     render.Format
	session *app.Session
}

// newRootCmd builds the command tree. Callers must call the returned cli's
// teardown once Execute returns.
func newRootCmd() (*cobra.Command, *cli) {
	c := &cli{}

	root := &cobra.Command{
		Use:           "searchctl",
		Short:         "Query the lecture search backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return c.setup()
		},
	}
	root.PersistentFlags().StringVar(&c.baseURL, "base-url", "", "backend address (default from API_BASE_URL or "+searchapi.DefaultBaseURL+")")
	root.PersistentFlags().StringVarP(&c.format, "format", "o", "text", "output format: text, json or yaml")

	root.AddCommand(
		c.searchCmd(),
		c.segmentCmd(),
		c.summaryCmd(),
		c.docCmd(),
		c.pingCmd(),
		c.historyCmd(),
	)
	return root, c
}

func (c *cli) setup() error {
	format, err := render.ParseFormat(c.format)
	if err != nil {
		return err
	}
	c.out = format

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.DebugObj("searchctl starting", "config", cfg)

	session, err := app.NewSession(cfg, log, c.baseURL)
	if err != nil {
		logger.ErrorObj("failed to initialize session", "error", err)
		return err
	}
	c.session = session
	return nil
}

func (c *cli) teardown() {
	if c.session != nil {
		c.session.Close()
		c.session = nil
	}
	_ = logger.Close()
}

func (c *cli) searchCmd() *cobra.Command {
	var (
		topK      int
		proximity bool
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search lecture documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := searchapi.NewSearchRequest(strings.Join(args, " "),
				searchapi.WithTopK(topK),
				searchapi.WithProximity(proximity),
			)
			raw, err := c.session.Search(cmd.Context(), req)
			if err != nil {
				return err
			}
			return render.SearchOutput(cmd.OutOrStdout(), raw, c.out)
		},
	}
	cmd.Flags().IntVarP(&topK, "topk", "k", searchapi.DefaultTopK, "maximum number of results")
	cmd.Flags().BoolVarP(&proximity, "proximity", "p", false, "use proximity ranking")
	return cmd
}

func (c *cli) segmentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "segment <text>",
		Short: "Show how the backend tokenizes text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := c.session.Segment(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return render.Write(cmd.OutOrStdout(), tokens, c.out)
		},
	}
}

func (c *cli) summaryCmd() *cobra.Command {
	var (
		topK      int
		proximity bool
	)
	cmd := &cobra.Command{
		Use:   "summary <query>",
		Short: "Search and summarise the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := searchapi.NewSearchRequest(strings.Join(args, " "),
				searchapi.WithTopK(topK),
				searchapi.WithProximity(proximity),
			)
			summary, err := c.session.Summarize(cmd.Context(), req)
			if err != nil {
				return err
			}
			if c.out == render.Text {
				return render.Write(cmd.OutOrStdout(), summary, c.out)
			}
			return render.Write(cmd.OutOrStdout(), map[string]string{"query": req.Query, "summary": summary}, c.out)
		},
	}
	cmd.Flags().IntVarP(&topK, "topk", "k", searchapi.DefaultTopK, "maximum number of results to summarise")
	cmd.Flags().BoolVarP(&proximity, "proximity", "p", false, "use proximity ranking")
	return cmd
}

func (c *cli) docCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doc <id>",
		Short: "Print a stored document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.session.Document(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render.Write(cmd.OutOrStdout(), doc, c.out)
		},
	}
}

func (c *cli) pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.session.Ping(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok %s\n", c.session.Client().BaseURL())
			return nil
		},
	}
}

func (c *cli) historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := c.session.History(limit)
			if err != nil {
				return err
			}
			return render.Write(cmd.OutOrStdout(), entries, c.out)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show (0 for all)")
	return cmd
}
