// ABOUTME: Root command and global flags for the ragveda CLI
// ABOUTME: Registers serve, ask, index, export, eval, mcp, and version subcommands
package commands

import (
	"io"
	"log"

	"github.com/spf13/cobra"
)

// Global flags
var (
	verbose      bool
	quiet        bool
	outputFormat string
	configPath   string
)

const banner = `
 ██████╗  █████╗  ██████╗ ██╗   ██╗███████╗██████╗  █████╗
 ██╔══██╗██╔══██╗██╔════╝ ██║   ██║██╔════╝██╔══██╗██╔══██╗
 ██████╔╝███████║██║  ███╗██║   ██║█████╗  ██║  ██║███████║
 ██╔══██╗██╔══██║██║   ██║╚██╗ ██╔╝██╔══╝  ██║  ██║██╔══██║
 ██║  ██║██║  ██║╚██████╔╝ ╚████╔╝ ███████╗██████╔╝██║  ██║
 ╚═╝  ╚═╝╚═╝  ╚═╝ ╚═════╝   ╚═══╝  ╚══════╝╚═════╝ ╚═╝  ╚═╝`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ragveda",
		Short: "Question answering over the Bhagavad Gita",
		Long: banner + `

Ragveda answers questions about a philosophical text by retrieving the
most relevant passages and, when a generative backend is configured,
synthesizing an answer grounded in them.

Configuration comes from environment variables (and a .env file),
optionally layered over a YAML file passed with --config.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if quiet {
				log.SetOutput(io.Discard)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed progress")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress informational output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, text, json")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewAskCmd())
	cmd.AddCommand(NewIndexCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewEvalCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
