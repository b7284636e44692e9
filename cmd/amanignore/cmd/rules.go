package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/amanignore/internal/gitignore"
	"github.com/Aman-CERP/amanignore/internal/output"
)

func newRulesCmd(g *globalFlags) *cobra.Command {
	var (
		jsonOutput bool
		tokens     bool
	)

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the compiled rules",
		Long: `List the rules compiled from the project's ignore file in evaluation
order, with their flags, followed by any compile warnings.

Blank lines and comments do not produce rules. Malformed patterns are
compiled literally and reported as warnings.`,
		Example: `  amanignore rules
  amanignore rules --tokens
  amanignore rules --rules other.ignore --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := g.loadProject()
			if err != nil {
				return jsonErrors(jsonOutput, err)
			}
			rs := p.store.Load()
			if jsonOutput {
				return printRulesJSON(cmd, rs)
			}
			printRules(output.New(cmd.OutOrStdout()), p.displayRulesPath(), rs, tokens)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output rules as JSON")
	cmd.Flags().BoolVar(&tokens, "tokens", false, "Show the compiled tokens of each segment")

	return cmd
}

func printRules(out *output.Writer, source string, rs *gitignore.RuleSet, tokens bool) {
	out.Header(fmt.Sprintf("%s: %d rules", source, rs.Len()))
	for _, r := range rs.Rules() {
		_, _ = fmt.Fprintf(out.Out(), "%4d  %s\n", r.Line, r.String())
		if !tokens {
			continue
		}
		for _, seg := range r.Segments {
			_, _ = fmt.Fprintf(out.Out(), "        %s\n", seg.String())
		}
	}

	warnings := rs.Warnings()
	if len(warnings) == 0 {
		return
	}
	out.Newline()
	for _, w := range warnings {
		out.Warningf("line %d: %s: %s", w.Line, w.Message, w.Pattern)
	}
}

type ruleJSON struct {
	Index         int      `json:"index"`
	Line          int      `json:"line"`
	Pattern       string   `json:"pattern"`
	Negated       bool     `json:"negated"`
	DirectoryOnly bool     `json:"directory_only"`
	Anchored      bool     `json:"anchored"`
	Segments      []string `json:"segments"`
}

type warningJSON struct {
	Line    int    `json:"line"`
	Pattern string `json:"pattern"`
	Message string `json:"message"`
}

func printRulesJSON(cmd *cobra.Command, rs *gitignore.RuleSet) error {
	doc := struct {
		Rules    []ruleJSON    `json:"rules"`
		Warnings []warningJSON `json:"warnings"`
	}{
		Rules:    make([]ruleJSON, 0, rs.Len()),
		Warnings: []warningJSON{},
	}

	for _, r := range rs.Rules() {
		segs := make([]string, len(r.Segments))
		for i, s := range r.Segments {
			segs[i] = s.String()
		}
		doc.Rules = append(doc.Rules, ruleJSON{
			Index:         r.SourceOrder,
			Line:          r.Line,
			Pattern:       r.Pattern,
			Negated:       r.Negated,
			DirectoryOnly: r.DirectoryOnly,
			Anchored:      r.Anchored,
			Segments:      segs,
		})
	}
	for _, w := range rs.Warnings() {
		doc.Warnings = append(doc.Warnings, warningJSON{Line: w.Line, Pattern: w.Pattern, Message: strings.TrimSpace(w.Message)})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
