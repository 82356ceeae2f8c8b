package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/agentwatch/internal/classify"
	"github.com/Iron-Ham/agentwatch/internal/config"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [file]",
	Short: "Classify a captured output snippet",
	Long: `Classify reads terminal output from a file (or stdin when no file is
given) and prints the inferred agent state: type, confidence, detail,
and any extracted menu options.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
	} else {
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
	}

	cc, err := buildClassifierConfig(config.Get())
	if err != nil {
		return err
	}

	st := classify.ClassifyWith(string(data), cc)

	fmt.Printf("state:      %s\n", styleState(st.Type))
	fmt.Printf("confidence: %.2f\n", st.Confidence)
	if st.Detail != "" {
		fmt.Printf("detail:     %s\n", st.Detail)
	}
	if len(st.Options) > 0 {
		fmt.Printf("options:    %s\n", strings.Join(st.Options, " | "))
	}
	if st.Type.RequiresHuman() {
		fmt.Println(dimStyle.Render("(waiting on human input)"))
	}
	return nil
}
